package services

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"customer_registry_backend/internal/models"
	"customer_registry_backend/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- Mocks ---

type MockCustomerRepository struct {
	mock.Mock
}

func (m *MockCustomerRepository) CreateCustomer(executor repositories.SQLExecutor, customer *models.Customer) (int64, error) {
	args := m.Called(executor, customer)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCustomerRepository) GetCustomerByID(id int64) (*models.Customer, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Customer), args.Error(1)
}

func (m *MockCustomerRepository) FindActiveByName(name string, excludeID int64) (*models.Customer, error) {
	args := m.Called(name, excludeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Customer), args.Error(1)
}

func (m *MockCustomerRepository) FindActiveByNumber(number string, excludeID int64) (*models.Customer, error) {
	args := m.Called(number, excludeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Customer), args.Error(1)
}

func (m *MockCustomerRepository) UpdateCustomer(executor repositories.SQLExecutor, customer *models.Customer) error {
	args := m.Called(executor, customer)
	return args.Error(0)
}

func (m *MockCustomerRepository) SoftDeleteCustomer(executor repositories.SQLExecutor, id int64, deletedAt time.Time) error {
	args := m.Called(executor, id, deletedAt)
	return args.Error(0)
}

func (m *MockCustomerRepository) SoftDeleteCustomers(executor repositories.SQLExecutor, ids []int64, deletedAt time.Time) error {
	args := m.Called(executor, ids, deletedAt)
	return args.Error(0)
}

func (m *MockCustomerRepository) PermanentDeleteCustomer(executor repositories.SQLExecutor, id int64) error {
	args := m.Called(executor, id)
	return args.Error(0)
}

func (m *MockCustomerRepository) PermanentDeleteTrashed(executor repositories.SQLExecutor) (int64, error) {
	args := m.Called(executor)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCustomerRepository) ListCustomers(includeDeleted bool, search, orderBy, order string) ([]models.Customer, error) {
	args := m.Called(includeDeleted, search, orderBy, order)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Customer), args.Error(1)
}

func (m *MockCustomerRepository) ListAllActive() ([]models.Customer, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Customer), args.Error(1)
}

func (m *MockCustomerRepository) FindByNameOrNumber(query string) ([]models.Customer, error) {
	args := m.Called(query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Customer), args.Error(1)
}

func newCustomerServiceWithMock() (CustomerService, *MockCustomerRepository) {
	repo := new(MockCustomerRepository)
	return NewCustomerService(repo, nil), repo
}

// --- Validator ---

func TestValidateCustomer_FormatErrors(t *testing.T) {
	tests := []struct {
		name     string
		custName string
		number   string
		want     []error
	}{
		{"single digit number", "Acme", "1", []error{ErrInvalidNumberFormat}},
		{"seven digit number", "Acme", "1234567", []error{ErrInvalidNumberFormat}},
		{"non-digit in number", "Acme", "12a", []error{ErrInvalidNumberFormat}},
		{"empty name", "", "12", []error{ErrEmptyName}},
		{"whitespace-only name", "   ", "123", []error{ErrEmptyName}},
		{"both fields bad", "", "x", []error{ErrEmptyName, ErrInvalidNumberFormat}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// No repository expectations: format failures must short-circuit
			// before any duplicate lookup.
			service, repo := newCustomerServiceWithMock()

			err := service.ValidateCustomer(tt.custName, tt.number, 0)
			require.Error(t, err)

			var verrs ValidationErrors
			require.ErrorAs(t, err, &verrs)
			assert.Len(t, verrs, len(tt.want))
			for _, want := range tt.want {
				assert.True(t, verrs.Has(want), "expected %v in %v", want, verrs)
			}
			repo.AssertNotCalled(t, "FindActiveByName", mock.Anything, mock.Anything)
			repo.AssertNotCalled(t, "FindActiveByNumber", mock.Anything, mock.Anything)
		})
	}
}

func TestValidateCustomer_ValidFormatsPass(t *testing.T) {
	for _, number := range []string{"12", "123456"} {
		service, repo := newCustomerServiceWithMock()
		repo.On("FindActiveByName", "Acme", int64(0)).Return(nil, repositories.ErrNotFound)
		repo.On("FindActiveByNumber", number, int64(0)).Return(nil, repositories.ErrNotFound)

		assert.NoError(t, service.ValidateCustomer("Acme", number, 0))
	}
}

func TestValidateCustomer_TrimsInputs(t *testing.T) {
	service, repo := newCustomerServiceWithMock()
	repo.On("FindActiveByName", "Acme", int64(0)).Return(nil, repositories.ErrNotFound)
	repo.On("FindActiveByNumber", "123", int64(0)).Return(nil, repositories.ErrNotFound)

	require.NoError(t, service.ValidateCustomer("  Acme  ", " 123 ", 0))
	repo.AssertExpectations(t)
}

func TestValidateCustomer_AccumulatesBothDuplicates(t *testing.T) {
	service, repo := newCustomerServiceWithMock()
	repo.On("FindActiveByName", "Acme", int64(0)).Return(&models.Customer{ID: 1}, nil)
	repo.On("FindActiveByNumber", "123", int64(0)).Return(&models.Customer{ID: 2}, nil)

	err := service.ValidateCustomer("Acme", "123", 0)
	var verrs ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Len(t, verrs, 2)
	assert.True(t, verrs.Has(ErrDuplicateName))
	assert.True(t, verrs.Has(ErrDuplicateNumber))
}

func TestValidateCustomer_ExcludesRecordUnderUpdate(t *testing.T) {
	service, repo := newCustomerServiceWithMock()
	repo.On("FindActiveByName", "Acme", int64(7)).Return(nil, repositories.ErrNotFound)
	repo.On("FindActiveByNumber", "123", int64(7)).Return(nil, repositories.ErrNotFound)

	require.NoError(t, service.ValidateCustomer("Acme", "123", 7))
	repo.AssertExpectations(t)
}

// --- Store operations ---

func TestCreateCustomer_Success(t *testing.T) {
	service, repo := newCustomerServiceWithMock()
	repo.On("FindActiveByName", "Acme", int64(0)).Return(nil, repositories.ErrNotFound)
	repo.On("FindActiveByNumber", "123", int64(0)).Return(nil, repositories.ErrNotFound)
	repo.On("CreateCustomer", mock.Anything, mock.AnythingOfType("*models.Customer")).Return(int64(42), nil)
	repo.On("GetCustomerByID", int64(42)).Return(&models.Customer{ID: 42, Name: "Acme", Number: "123"}, nil)

	customer, err := service.CreateCustomer(CustomerRequest{Name: " Acme ", Number: "123"})
	require.NoError(t, err)
	assert.Equal(t, int64(42), customer.ID)
	assert.Equal(t, "Acme", customer.Name)
	repo.AssertExpectations(t)
}

func TestCreateCustomer_ValidationFailureSkipsInsert(t *testing.T) {
	service, repo := newCustomerServiceWithMock()

	_, err := service.CreateCustomer(CustomerRequest{Name: "Acme", Number: "1"})
	var verrs ValidationErrors
	require.ErrorAs(t, err, &verrs)
	repo.AssertNotCalled(t, "CreateCustomer", mock.Anything, mock.Anything)
}

func TestCreateCustomer_ConstraintConflictBecomesDuplicateError(t *testing.T) {
	// Two concurrent requests can both pass validation; the partial unique
	// index catches the loser and the conflict must fold back into the same
	// duplicate error the pre-check produces.
	service, repo := newCustomerServiceWithMock()
	repo.On("FindActiveByName", "Acme", int64(0)).Return(nil, repositories.ErrNotFound)
	repo.On("FindActiveByNumber", "123", int64(0)).Return(nil, repositories.ErrNotFound)
	conflict := fmt.Errorf("%w: duplicate key (constraint: %s)", repositories.ErrDuplicateKey, repositories.ConstraintActiveName)
	repo.On("CreateCustomer", mock.Anything, mock.Anything).Return(int64(0), conflict)

	_, err := service.CreateCustomer(CustomerRequest{Name: "Acme", Number: "123"})
	var verrs ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.True(t, verrs.Has(ErrDuplicateName))
	assert.False(t, verrs.Has(ErrDuplicateNumber))
}

func TestUpdateCustomer_NotFound(t *testing.T) {
	service, repo := newCustomerServiceWithMock()
	repo.On("GetCustomerByID", int64(99)).Return(nil, repositories.ErrNotFound)

	_, err := service.UpdateCustomer(99, CustomerRequest{Name: "Acme", Number: "123"})
	assert.ErrorIs(t, err, ErrCustomerNotFound)
}

func TestUpdateCustomer_Success(t *testing.T) {
	service, repo := newCustomerServiceWithMock()
	existing := &models.Customer{ID: 7, Name: "Old Name", Number: "11"}
	repo.On("GetCustomerByID", int64(7)).Return(existing, nil)
	repo.On("FindActiveByName", "New Name", int64(7)).Return(nil, repositories.ErrNotFound)
	repo.On("FindActiveByNumber", "2222", int64(7)).Return(nil, repositories.ErrNotFound)
	repo.On("UpdateCustomer", mock.Anything, existing).Return(nil)

	customer, err := service.UpdateCustomer(7, CustomerRequest{Name: "New Name", Number: "2222"})
	require.NoError(t, err)
	assert.Equal(t, "New Name", customer.Name)
	assert.Equal(t, "2222", customer.Number)
	repo.AssertExpectations(t)
}

func TestSoftDeleteCustomer_InvalidIDIsSilentNoOp(t *testing.T) {
	service, repo := newCustomerServiceWithMock()

	require.NoError(t, service.SoftDeleteCustomer(0))
	require.NoError(t, service.SoftDeleteCustomer(-3))
	repo.AssertNotCalled(t, "SoftDeleteCustomer", mock.Anything, mock.Anything, mock.Anything)
}

func TestSoftDeleteCustomers_FiltersInvalidIDs(t *testing.T) {
	service, repo := newCustomerServiceWithMock()
	repo.On("SoftDeleteCustomers", mock.Anything, []int64{5, 9}, mock.AnythingOfType("time.Time")).Return(nil)

	require.NoError(t, service.SoftDeleteCustomers([]int64{0, 5, -1, 9}))
	repo.AssertExpectations(t)
}

func TestSoftDeleteCustomers_AllInvalidIsSilentNoOp(t *testing.T) {
	service, repo := newCustomerServiceWithMock()

	require.NoError(t, service.SoftDeleteCustomers([]int64{0, -2}))
	require.NoError(t, service.SoftDeleteCustomers(nil))
	repo.AssertNotCalled(t, "SoftDeleteCustomers", mock.Anything, mock.Anything, mock.Anything)
}

func TestPermanentDeleteTrashed_ReportsCount(t *testing.T) {
	service, repo := newCustomerServiceWithMock()
	repo.On("PermanentDeleteTrashed", mock.Anything).Return(int64(3), nil)

	deleted, err := service.PermanentDeleteTrashed()
	require.NoError(t, err)
	assert.Equal(t, int64(3), deleted)
}

func TestGetCustomers_PropagatesRepositoryError(t *testing.T) {
	service, repo := newCustomerServiceWithMock()
	repo.On("ListCustomers", false, "acme", "customer_name", "asc").Return(nil, errors.New("boom"))

	_, err := service.GetCustomers(false, " acme ", "customer_name", "asc")
	assert.Error(t, err)
}
