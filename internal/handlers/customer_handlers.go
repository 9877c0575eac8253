package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"customer_registry_backend/internal/flash"
	"customer_registry_backend/internal/services"
	"customer_registry_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// CustomerHandler holds the customer service and the flash store used to
// carry validation feedback across a redirect boundary.
type CustomerHandler struct {
	customerService services.CustomerService
	flashStore      *flash.Store
}

// NewCustomerHandler creates a new CustomerHandler.
func NewCustomerHandler(cs services.CustomerService, fs *flash.Store) *CustomerHandler {
	return &CustomerHandler{customerService: cs, flashStore: fs}
}

// respondValidationFailed reports every accumulated validation message and
// parks a copy in the flash store so the next view render can pick it up.
func (h *CustomerHandler) respondValidationFailed(c *gin.Context, verrs services.ValidationErrors) {
	key := h.flashStore.Put(verrs.Messages(), flash.DefaultTTL)
	c.JSON(http.StatusBadRequest, gin.H{
		"code":      utils.ErrCodeValidationFailed,
		"errors":    verrs.Messages(),
		"flash_key": key,
	})
}

// CreateCustomer handles the creation of a new registry entry.
func (h *CustomerHandler) CreateCustomer(c *gin.Context) {
	var req services.CustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "CreateCustomer: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeBadRequest, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	customer, err := h.customerService.CreateCustomer(req)
	if err != nil {
		var verrs services.ValidationErrors
		if errors.As(err, &verrs) {
			h.respondValidationFailed(c, verrs)
			return
		}
		utils.LogError(err, "CreateCustomer: Error from customerService.CreateCustomer")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to create customer.", "Internal error"))
		return
	}
	c.JSON(http.StatusCreated, customer)
}

// UpdateCustomer handles overwriting name and number of an existing entry.
func (h *CustomerHandler) UpdateCustomer(c *gin.Context) {
	customerID, err := parseIDParam(c)
	if err != nil {
		return
	}

	var req services.CustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "UpdateCustomer: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeBadRequest, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	customer, err := h.customerService.UpdateCustomer(customerID, req)
	if err != nil {
		var verrs services.ValidationErrors
		if errors.As(err, &verrs) {
			h.respondValidationFailed(c, verrs)
			return
		}
		if errors.Is(err, services.ErrCustomerNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Customer not found to update.", err.Error()))
			return
		}
		utils.LogError(err, "UpdateCustomer: Error from customerService.UpdateCustomer")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to update customer.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, customer)
}

// GetCustomers handles the registry view: filter, search and sort.
func (h *CustomerHandler) GetCustomers(c *gin.Context) {
	includeDeleted, _ := strconv.ParseBool(c.DefaultQuery("include_deleted", "false"))
	search := c.Query("search")
	orderBy := c.DefaultQuery("order_by", "customer_name")
	order := c.DefaultQuery("order", "asc")

	customers, err := h.customerService.GetCustomers(includeDeleted, search, orderBy, order)
	if err != nil {
		utils.LogError(err, "GetCustomers: Error from customerService.GetCustomers")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch customers.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": customers})
}

// GetCustomerByID handles fetching a single customer by ID.
func (h *CustomerHandler) GetCustomerByID(c *gin.Context) {
	customerID, err := parseIDParam(c)
	if err != nil {
		return
	}

	customer, err := h.customerService.GetCustomerByID(customerID)
	if err != nil {
		if errors.Is(err, services.ErrCustomerNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Customer not found.", err.Error()))
			return
		}
		utils.LogError(err, "GetCustomerByID: Error from customerService.GetCustomerByID")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch customer.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, customer)
}

// SoftDeleteCustomer moves one customer to the recovery bin. Unknown ids are
// a silent success, matching the store semantics.
func (h *CustomerHandler) SoftDeleteCustomer(c *gin.Context) {
	customerID, err := parseIDParam(c)
	if err != nil {
		return
	}

	if err := h.customerService.SoftDeleteCustomer(customerID); err != nil {
		utils.LogError(err, "SoftDeleteCustomer: Error from customerService.SoftDeleteCustomer")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to delete customer.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Customer moved to recovery bin"})
}

// SoftDeleteCustomersBulk moves every listed customer to the recovery bin.
func (h *CustomerHandler) SoftDeleteCustomersBulk(c *gin.Context) {
	var req services.BulkSoftDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "SoftDeleteCustomersBulk: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeBadRequest, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	if err := h.customerService.SoftDeleteCustomers(req.IDs); err != nil {
		utils.LogError(err, "SoftDeleteCustomersBulk: Error from customerService.SoftDeleteCustomers")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to delete customers.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Customers moved to recovery bin"})
}

// PermanentDeleteCustomer destroys one row for good, active or trashed.
func (h *CustomerHandler) PermanentDeleteCustomer(c *gin.Context) {
	customerID, err := parseIDParam(c)
	if err != nil {
		return
	}

	if err := h.customerService.PermanentDeleteCustomer(customerID); err != nil {
		utils.LogError(err, "PermanentDeleteCustomer: Error from customerService.PermanentDeleteCustomer")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to delete customer.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Customer deleted permanently"})
}

// PermanentDeleteTrashed empties the recovery bin.
func (h *CustomerHandler) PermanentDeleteTrashed(c *gin.Context) {
	deleted, err := h.customerService.PermanentDeleteTrashed()
	if err != nil {
		utils.LogError(err, "PermanentDeleteTrashed: Error from customerService.PermanentDeleteTrashed")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to empty recovery bin.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Recovery bin emptied", "deleted": deleted})
}

// GetAllActiveCustomers serves the full active roster to sibling modules.
func (h *CustomerHandler) GetAllActiveCustomers(c *gin.Context) {
	customers, err := h.customerService.GetAllActiveCustomers()
	if err != nil {
		utils.LogError(err, "GetAllActiveCustomers: Error from customerService.GetAllActiveCustomers")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch customers.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": customers})
}

// FindCustomers serves the substring lookup for sibling modules.
func (h *CustomerHandler) FindCustomers(c *gin.Context) {
	customers, err := h.customerService.FindCustomersByNameOrNumber(c.Query("q"))
	if err != nil {
		utils.LogError(err, "FindCustomers: Error from customerService.FindCustomersByNameOrNumber")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to look up customers.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": customers})
}

func parseIDParam(c *gin.Context) (int64, error) {
	idStr := c.Param("id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeBadRequest, "Invalid customer ID format.", err.Error()))
		return 0, err
	}
	return id, nil
}
