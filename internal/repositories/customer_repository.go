package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"customer_registry_backend/internal/models"

	"github.com/lib/pq" // For pq.Error and pq.Array
)

// Constraint names of the partial unique indexes on active customers.
// A unique violation on either is the backstop against two concurrent
// requests both passing application-level validation.
const (
	ConstraintActiveName   = "customers_name_active_key"
	ConstraintActiveNumber = "customers_number_active_key"
)

// CustomerRepository defines the interface for customer-related database operations.
type CustomerRepository interface {
	CreateCustomer(executor SQLExecutor, customer *models.Customer) (int64, error)
	GetCustomerByID(id int64) (*models.Customer, error)
	FindActiveByName(name string, excludeID int64) (*models.Customer, error)
	FindActiveByNumber(number string, excludeID int64) (*models.Customer, error)
	UpdateCustomer(executor SQLExecutor, customer *models.Customer) error
	SoftDeleteCustomer(executor SQLExecutor, id int64, deletedAt time.Time) error
	SoftDeleteCustomers(executor SQLExecutor, ids []int64, deletedAt time.Time) error
	PermanentDeleteCustomer(executor SQLExecutor, id int64) error
	PermanentDeleteTrashed(executor SQLExecutor) (int64, error)
	ListCustomers(includeDeleted bool, search, orderBy, order string) ([]models.Customer, error)
	ListAllActive() ([]models.Customer, error)
	FindByNameOrNumber(query string) ([]models.Customer, error)
}

type customerRepository struct {
	db *sql.DB
}

// NewCustomerRepository creates a new instance of CustomerRepository.
func NewCustomerRepository(db *sql.DB) CustomerRepository {
	return &customerRepository{db: db}
}

const customerColumns = `id, customer_name, customer_number, is_deleted, deleted_at, created_at, updated_at`

// allowedOrderBy mirrors the sortable columns of the registry view. Anything
// else falls back to customer_name.
var allowedOrderBy = map[string]bool{
	"id":              true,
	"customer_name":   true,
	"customer_number": true,
	"created_at":      true,
}

func normalizeOrderBy(orderBy string) string {
	if allowedOrderBy[orderBy] {
		return orderBy
	}
	return "customer_name"
}

func normalizeOrder(order string) string {
	if strings.EqualFold(order, "desc") {
		return "DESC"
	}
	return "ASC"
}

func scanCustomer(s interface{ Scan(dest ...interface{}) error }) (*models.Customer, error) {
	customer := &models.Customer{}
	var deletedAt sql.NullTime
	err := s.Scan(
		&customer.ID, &customer.Name, &customer.Number, &customer.IsDeleted,
		&deletedAt, &customer.CreatedAt, &customer.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if deletedAt.Valid {
		customer.DeletedAt = &deletedAt.Time
	}
	return customer, nil
}

// CreateCustomer inserts a new active customer.
func (r *customerRepository) CreateCustomer(executor SQLExecutor, customer *models.Customer) (int64, error) {
	query := `INSERT INTO customers (customer_name, customer_number, is_deleted, deleted_at, created_at, updated_at)
	          VALUES ($1, $2, FALSE, NULL, $3, $4)
	          RETURNING id`

	currentTime := time.Now()
	if customer.CreatedAt.IsZero() {
		customer.CreatedAt = currentTime
	}
	if customer.UpdatedAt.IsZero() {
		customer.UpdatedAt = currentTime
	}

	err := executor.QueryRow(query,
		customer.Name, customer.Number, customer.CreatedAt, customer.UpdatedAt,
	).Scan(&customer.ID)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			if pqErr.Code.Name() == "unique_violation" {
				return 0, fmt.Errorf("%w: %s (constraint: %s)", ErrDuplicateKey, pqErr.Message, pqErr.Constraint)
			}
		}
		return 0, fmt.Errorf("%w: creating customer: %v", ErrDatabaseError, err)
	}
	return customer.ID, nil
}

// GetCustomerByID retrieves a customer by its ID, deleted or not.
func (r *customerRepository) GetCustomerByID(id int64) (*models.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE id = $1`

	customer, err := scanCustomer(r.db.QueryRow(query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting customer by ID %d: %v", ErrDatabaseError, id, err)
	}
	return customer, nil
}

// FindActiveByName retrieves the active customer carrying the exact name,
// skipping excludeID when positive (used when validating an update).
func (r *customerRepository) FindActiveByName(name string, excludeID int64) (*models.Customer, error) {
	return r.findActiveBy("customer_name", name, excludeID)
}

// FindActiveByNumber retrieves the active customer carrying the exact number,
// skipping excludeID when positive.
func (r *customerRepository) FindActiveByNumber(number string, excludeID int64) (*models.Customer, error) {
	return r.findActiveBy("customer_number", number, excludeID)
}

func (r *customerRepository) findActiveBy(column, value string, excludeID int64) (*models.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE ` + column + ` = $1 AND is_deleted = FALSE`
	args := []interface{}{value}
	if excludeID > 0 {
		query += ` AND id != $2`
		args = append(args, excludeID)
	}

	customer, err := scanCustomer(r.db.QueryRow(query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: finding active customer by %s: %v", ErrDatabaseError, column, err)
	}
	return customer, nil
}

// UpdateCustomer overwrites name, number and updated_at of an existing row.
// created_at and the deletion state are left untouched.
func (r *customerRepository) UpdateCustomer(executor SQLExecutor, customer *models.Customer) error {
	query := `UPDATE customers SET customer_name = $1, customer_number = $2, updated_at = $3 WHERE id = $4`

	customer.UpdatedAt = time.Now()
	result, err := executor.Exec(query, customer.Name, customer.Number, customer.UpdatedAt, customer.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			if pqErr.Code.Name() == "unique_violation" {
				return fmt.Errorf("%w: %s (constraint: %s)", ErrDuplicateKey, pqErr.Message, pqErr.Constraint)
			}
		}
		return fmt.Errorf("%w: updating customer ID %d: %v", ErrDatabaseError, customer.ID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: getting rows affected for updating customer ID %d: %v", ErrDatabaseError, customer.ID, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SoftDeleteCustomer moves one customer to the recovery bin. Unknown or
// already deleted ids are a silent no-op.
func (r *customerRepository) SoftDeleteCustomer(executor SQLExecutor, id int64, deletedAt time.Time) error {
	query := `UPDATE customers SET is_deleted = TRUE, deleted_at = $1 WHERE id = $2 AND is_deleted = FALSE`
	if _, err := executor.Exec(query, deletedAt, id); err != nil {
		return fmt.Errorf("%w: soft-deleting customer ID %d: %v", ErrDatabaseError, id, err)
	}
	return nil
}

// SoftDeleteCustomers applies the same transition to every matching row at once.
func (r *customerRepository) SoftDeleteCustomers(executor SQLExecutor, ids []int64, deletedAt time.Time) error {
	query := `UPDATE customers SET is_deleted = TRUE, deleted_at = $1 WHERE id = ANY($2) AND is_deleted = FALSE`
	if _, err := executor.Exec(query, deletedAt, pq.Array(ids)); err != nil {
		return fmt.Errorf("%w: soft-deleting %d customers: %v", ErrDatabaseError, len(ids), err)
	}
	return nil
}

// PermanentDeleteCustomer destroys a row unconditionally, active or not.
func (r *customerRepository) PermanentDeleteCustomer(executor SQLExecutor, id int64) error {
	query := `DELETE FROM customers WHERE id = $1`
	if _, err := executor.Exec(query, id); err != nil {
		return fmt.Errorf("%w: permanently deleting customer ID %d: %v", ErrDatabaseError, id, err)
	}
	return nil
}

// PermanentDeleteTrashed empties the recovery bin and reports how many rows went.
func (r *customerRepository) PermanentDeleteTrashed(executor SQLExecutor) (int64, error) {
	query := `DELETE FROM customers WHERE is_deleted = TRUE`
	result, err := executor.Exec(query)
	if err != nil {
		return 0, fmt.Errorf("%w: emptying recovery bin: %v", ErrDatabaseError, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: getting rows affected for emptying recovery bin: %v", ErrDatabaseError, err)
	}
	return rowsAffected, nil
}

// ListCustomers retrieves customers with optional search, ordering and
// inclusion of the recovery bin.
func (r *customerRepository) ListCustomers(includeDeleted bool, search, orderBy, order string) ([]models.Customer, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + customerColumns + ` FROM customers`)

	var conditions []string
	var args []interface{}
	argCount := 1

	if !includeDeleted {
		conditions = append(conditions, "is_deleted = FALSE")
	}
	if search != "" {
		searchPattern := "%" + search + "%"
		conditions = append(conditions, fmt.Sprintf("(customer_name ILIKE $%d OR customer_number ILIKE $%d)", argCount, argCount))
		args = append(args, searchPattern)
		argCount++
	}

	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	}
	queryBuilder.WriteString(fmt.Sprintf(" ORDER BY %s %s", normalizeOrderBy(orderBy), normalizeOrder(order)))

	return r.queryCustomers(queryBuilder.String(), args...)
}

// ListAllActive returns the full active roster ordered by name, for use by
// sibling modules.
func (r *customerRepository) ListAllActive() ([]models.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE is_deleted = FALSE ORDER BY customer_name ASC`
	return r.queryCustomers(query)
}

// FindByNameOrNumber is the lookup used by sibling modules: active customers
// whose name or number contains the query as a substring.
func (r *customerRepository) FindByNameOrNumber(query string) ([]models.Customer, error) {
	sqlQuery := `SELECT ` + customerColumns + ` FROM customers
	             WHERE is_deleted = FALSE AND (customer_name ILIKE $1 OR customer_number ILIKE $1)
	             ORDER BY customer_name ASC`
	return r.queryCustomers(sqlQuery, "%"+query+"%")
}

func (r *customerRepository) queryCustomers(query string, args ...interface{}) ([]models.Customer, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: querying customers: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	customers := []models.Customer{}
	for rows.Next() {
		customer, err := scanCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning customer: %v", ErrDatabaseError, err)
		}
		customers = append(customers, *customer)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating customer rows: %v", ErrDatabaseError, err)
	}
	return customers, nil
}
