package repositories

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeOrderBy(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"id", "id"},
		{"customer_name", "customer_name"},
		{"customer_number", "customer_number"},
		{"created_at", "created_at"},
		{"nonexistent_field", "customer_name"},
		{"updated_at", "customer_name"},
		{"", "customer_name"},
		{"id; DROP TABLE customers", "customer_name"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, normalizeOrderBy(tt.in), "orderBy %q", tt.in)
	}
}

func TestNormalizeOrder(t *testing.T) {
	assert.Equal(t, "DESC", normalizeOrder("desc"))
	assert.Equal(t, "DESC", normalizeOrder("DESC"))
	assert.Equal(t, "ASC", normalizeOrder("asc"))
	assert.Equal(t, "ASC", normalizeOrder(""))
	assert.Equal(t, "ASC", normalizeOrder("sideways"))
}
