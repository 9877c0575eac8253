package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"customer_registry_backend/internal/flash"
	"customer_registry_backend/internal/models"
	"customer_registry_backend/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubCustomerService lets each test pin down just the call it cares about.
type stubCustomerService struct {
	createFn func(req services.CustomerRequest) (*models.Customer, error)
}

func (s *stubCustomerService) ValidateCustomer(name, number string, excludeID int64) error {
	return nil
}

func (s *stubCustomerService) CreateCustomer(req services.CustomerRequest) (*models.Customer, error) {
	return s.createFn(req)
}

func (s *stubCustomerService) UpdateCustomer(customerID int64, req services.CustomerRequest) (*models.Customer, error) {
	return nil, services.ErrCustomerNotFound
}

func (s *stubCustomerService) GetCustomerByID(customerID int64) (*models.Customer, error) {
	return nil, services.ErrCustomerNotFound
}

func (s *stubCustomerService) SoftDeleteCustomer(customerID int64) error        { return nil }
func (s *stubCustomerService) SoftDeleteCustomers(customerIDs []int64) error    { return nil }
func (s *stubCustomerService) PermanentDeleteCustomer(customerID int64) error   { return nil }
func (s *stubCustomerService) PermanentDeleteTrashed() (int64, error)           { return 0, nil }

func (s *stubCustomerService) GetCustomers(includeDeleted bool, search, orderBy, order string) ([]models.Customer, error) {
	return []models.Customer{}, nil
}

func (s *stubCustomerService) GetAllActiveCustomers() ([]models.Customer, error) {
	return []models.Customer{}, nil
}

func (s *stubCustomerService) FindCustomersByNameOrNumber(query string) ([]models.Customer, error) {
	return []models.Customer{}, nil
}

func TestCreateCustomer_ValidationFeedbackReachesFlashStore(t *testing.T) {
	gin.SetMode(gin.TestMode)
	flashStore := flash.NewStore()
	stub := &stubCustomerService{
		createFn: func(req services.CustomerRequest) (*models.Customer, error) {
			return nil, services.ValidationErrors{services.ErrDuplicateName, services.ErrDuplicateNumber}
		},
	}
	handler := NewCustomerHandler(stub, flashStore)

	engine := gin.New()
	engine.POST("/customers", handler.CreateCustomer)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/customers",
		strings.NewReader(`{"customer_name":"Acme","customer_number":"123"}`))
	req.Header.Set("Content-Type", "application/json")
	engine.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)

	var body struct {
		Errors   []string `json:"errors"`
		FlashKey string   `json:"flash_key"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Len(t, body.Errors, 2)
	require.NotEmpty(t, body.FlashKey)

	// The same messages wait in the flash store, exactly once.
	messages, ok := flashStore.Pop(body.FlashKey)
	require.True(t, ok)
	assert.Equal(t, body.Errors, messages)
	_, ok = flashStore.Pop(body.FlashKey)
	assert.False(t, ok)
}

func TestCreateCustomer_Success(t *testing.T) {
	gin.SetMode(gin.TestMode)
	stub := &stubCustomerService{
		createFn: func(req services.CustomerRequest) (*models.Customer, error) {
			return &models.Customer{ID: 1, Name: req.Name, Number: req.Number}, nil
		},
	}
	handler := NewCustomerHandler(stub, flash.NewStore())

	engine := gin.New()
	engine.POST("/customers", handler.CreateCustomer)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/customers",
		strings.NewReader(`{"customer_name":"Acme","customer_number":"123"}`))
	req.Header.Set("Content-Type", "application/json")
	engine.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)

	var customer models.Customer
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &customer))
	assert.Equal(t, "Acme", customer.Name)
	assert.False(t, customer.IsDeleted)
}
