package services

import (
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"customer_registry_backend/internal/models"
	"customer_registry_backend/internal/repositories"
)

// --- Custom Service Errors for Customer ---
var (
	ErrCustomerNotFound    = errors.New("customer not found")
	ErrEmptyName           = errors.New("customer name is required")
	ErrInvalidNumberFormat = errors.New("customer number must be a number of 2 to 6 digits")
	ErrDuplicateName       = errors.New("customer name already exists")
	ErrDuplicateNumber     = errors.New("customer number already exists")
)

// ValidationErrors collects every validation failure of a single write so the
// caller can surface all of them together.
type ValidationErrors []error

func (v ValidationErrors) Error() string {
	return strings.Join(v.Messages(), "; ")
}

// Messages renders the individual failures as human-readable strings.
func (v ValidationErrors) Messages() []string {
	messages := make([]string, 0, len(v))
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return messages
}

// Has reports whether the collection contains the given sentinel error.
func (v ValidationErrors) Has(target error) bool {
	for _, err := range v {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

var customerNumberRegex = regexp.MustCompile(`^[0-9]{2,6}$`)

// --- Customer DTOs ---
type CustomerRequest struct {
	Name   string `json:"customer_name"`
	Number string `json:"customer_number"`
}

type BulkSoftDeleteRequest struct {
	IDs []int64 `json:"ids"`
}

// --- CustomerService Interface ---
type CustomerService interface {
	ValidateCustomer(name, number string, excludeID int64) error
	CreateCustomer(req CustomerRequest) (*models.Customer, error)
	UpdateCustomer(customerID int64, req CustomerRequest) (*models.Customer, error)
	GetCustomerByID(customerID int64) (*models.Customer, error)
	SoftDeleteCustomer(customerID int64) error
	SoftDeleteCustomers(customerIDs []int64) error
	PermanentDeleteCustomer(customerID int64) error
	PermanentDeleteTrashed() (int64, error)
	GetCustomers(includeDeleted bool, search, orderBy, order string) ([]models.Customer, error)
	GetAllActiveCustomers() ([]models.Customer, error)
	FindCustomersByNameOrNumber(query string) ([]models.Customer, error)
}

// --- customerService Implementation ---
type customerService struct {
	customerRepo repositories.CustomerRepository
	db           *sql.DB
}

// NewCustomerService creates a new instance of CustomerService.
func NewCustomerService(repo repositories.CustomerRepository, db *sql.DB) CustomerService {
	return &customerService{
		customerRepo: repo,
		db:           db,
	}
}

// ValidateCustomer enforces field syntax and active-row uniqueness. Format
// failures are accumulated and returned before any duplicate lookup; once the
// format is valid, both duplicate checks run so the caller sees every
// conflict in one pass. excludeID skips the record being updated.
func (s *customerService) ValidateCustomer(name, number string, excludeID int64) error {
	name = strings.TrimSpace(name)
	number = strings.TrimSpace(number)

	var verrs ValidationErrors
	if name == "" {
		verrs = append(verrs, ErrEmptyName)
	}
	if !customerNumberRegex.MatchString(number) {
		verrs = append(verrs, ErrInvalidNumberFormat)
	}
	if len(verrs) > 0 {
		return verrs
	}

	if _, err := s.customerRepo.FindActiveByName(name, excludeID); err == nil {
		verrs = append(verrs, ErrDuplicateName)
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return fmt.Errorf("failed to check name uniqueness: %w", err)
	}

	if _, err := s.customerRepo.FindActiveByNumber(number, excludeID); err == nil {
		verrs = append(verrs, ErrDuplicateNumber)
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return fmt.Errorf("failed to check number uniqueness: %w", err)
	}

	if len(verrs) > 0 {
		return verrs
	}
	return nil
}

// duplicateKeyToValidation folds a unique-violation raised by the partial
// indexes at commit time into the same validation errors the pre-write check
// produces. This closes the validate-then-write race without serializing
// requests.
func duplicateKeyToValidation(err error) error {
	if strings.Contains(err.Error(), repositories.ConstraintActiveName) {
		return ValidationErrors{ErrDuplicateName}
	}
	if strings.Contains(err.Error(), repositories.ConstraintActiveNumber) {
		return ValidationErrors{ErrDuplicateNumber}
	}
	return fmt.Errorf("failed to write customer due to duplicate data: %w", err)
}

func (s *customerService) CreateCustomer(req CustomerRequest) (*models.Customer, error) {
	if err := s.ValidateCustomer(req.Name, req.Number, 0); err != nil {
		return nil, err
	}

	customer := &models.Customer{
		Name:   strings.TrimSpace(req.Name),
		Number: strings.TrimSpace(req.Number),
	}
	id, err := s.customerRepo.CreateCustomer(s.db, customer)
	if err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, duplicateKeyToValidation(err)
		}
		return nil, fmt.Errorf("failed to create customer in repository: %w", err)
	}
	return s.customerRepo.GetCustomerByID(id)
}

func (s *customerService) UpdateCustomer(customerID int64, req CustomerRequest) (*models.Customer, error) {
	customer, err := s.customerRepo.GetCustomerByID(customerID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrCustomerNotFound
		}
		return nil, fmt.Errorf("failed to find customer for update: %w", err)
	}

	if err := s.ValidateCustomer(req.Name, req.Number, customerID); err != nil {
		return nil, err
	}

	customer.Name = strings.TrimSpace(req.Name)
	customer.Number = strings.TrimSpace(req.Number)

	err = s.customerRepo.UpdateCustomer(s.db, customer)
	if err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, duplicateKeyToValidation(err)
		}
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrCustomerNotFound
		}
		return nil, fmt.Errorf("failed to update customer in repository: %w", err)
	}
	return s.customerRepo.GetCustomerByID(customerID)
}

func (s *customerService) GetCustomerByID(customerID int64) (*models.Customer, error) {
	customer, err := s.customerRepo.GetCustomerByID(customerID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrCustomerNotFound
		}
		return nil, fmt.Errorf("failed to get customer by ID: %w", err)
	}
	return customer, nil
}

// SoftDeleteCustomer moves one record to the recovery bin. Unknown or already
// deleted ids are deliberately silent.
func (s *customerService) SoftDeleteCustomer(customerID int64) error {
	if customerID <= 0 {
		return nil
	}
	if err := s.customerRepo.SoftDeleteCustomer(s.db, customerID, time.Now()); err != nil {
		return fmt.Errorf("failed to soft-delete customer: %w", err)
	}
	return nil
}

// SoftDeleteCustomers filters out non-positive ids before dispatch; an empty
// or all-invalid set is a silent no-op.
func (s *customerService) SoftDeleteCustomers(customerIDs []int64) error {
	ids := make([]int64, 0, len(customerIDs))
	for _, id := range customerIDs {
		if id > 0 {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil
	}
	if err := s.customerRepo.SoftDeleteCustomers(s.db, ids, time.Now()); err != nil {
		return fmt.Errorf("failed to soft-delete customers: %w", err)
	}
	return nil
}

// PermanentDeleteCustomer destroys a row regardless of its deletion state.
// The registry never guarded this against active rows; callers gate it behind
// the Admin role instead.
func (s *customerService) PermanentDeleteCustomer(customerID int64) error {
	if customerID <= 0 {
		return nil
	}
	if err := s.customerRepo.PermanentDeleteCustomer(s.db, customerID); err != nil {
		return fmt.Errorf("failed to permanently delete customer: %w", err)
	}
	return nil
}

// PermanentDeleteTrashed destroys every record currently in the recovery bin.
func (s *customerService) PermanentDeleteTrashed() (int64, error) {
	deleted, err := s.customerRepo.PermanentDeleteTrashed(s.db)
	if err != nil {
		return 0, fmt.Errorf("failed to empty recovery bin: %w", err)
	}
	return deleted, nil
}

func (s *customerService) GetCustomers(includeDeleted bool, search, orderBy, order string) ([]models.Customer, error) {
	customers, err := s.customerRepo.ListCustomers(includeDeleted, strings.TrimSpace(search), orderBy, order)
	if err != nil {
		return nil, fmt.Errorf("failed to get customers: %w", err)
	}
	return customers, nil
}

func (s *customerService) GetAllActiveCustomers() ([]models.Customer, error) {
	customers, err := s.customerRepo.ListAllActive()
	if err != nil {
		return nil, fmt.Errorf("failed to get active customers: %w", err)
	}
	return customers, nil
}

func (s *customerService) FindCustomersByNameOrNumber(query string) ([]models.Customer, error) {
	customers, err := s.customerRepo.FindByNameOrNumber(strings.TrimSpace(query))
	if err != nil {
		return nil, fmt.Errorf("failed to look up customers: %w", err)
	}
	return customers, nil
}
