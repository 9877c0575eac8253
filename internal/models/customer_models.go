package models

import "time"

// Customer represents one entry of the shared customer registry.
// Name and Number are unique among non-deleted customers only; a customer
// in the recovery bin releases both values for reuse.
type Customer struct {
	ID        int64      `json:"id" db:"id"`
	Name      string     `json:"customer_name" db:"customer_name" binding:"required"`
	Number    string     `json:"customer_number" db:"customer_number" binding:"required"`
	IsDeleted bool       `json:"is_deleted" db:"is_deleted"`
	DeletedAt *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
}
