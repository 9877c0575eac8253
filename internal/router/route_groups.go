package router

import (
	"customer_registry_backend/internal/handlers"
	"customer_registry_backend/internal/middleware"

	"github.com/gin-gonic/gin"
)

// SetupPublicAuthRoutes sets up the unauthenticated auth routes.
func SetupPublicAuthRoutes(group *gin.RouterGroup, authHandler *handlers.AuthHandler) {
	group.POST("/register", authHandler.RegisterUser)
	group.POST("/login", authHandler.LoginUser)
}

// SetupAuthenticatedAuthRoutes sets up the auth routes that require a session.
func SetupAuthenticatedAuthRoutes(group *gin.RouterGroup, authHandler *handlers.AuthHandler) {
	group.GET("/me", authHandler.GetCurrentUser)
}

// SetupActionTokenRoutes sets up minting of per-action anti-forgery tokens.
func SetupActionTokenRoutes(authenticatedGroup *gin.RouterGroup, authHandler *handlers.AuthHandler) {
	authenticatedGroup.GET("/action-token/:action", authHandler.GetActionToken)
}

// SetupCustomerRoutes sets up the customer registry routes. Every write is
// double-gated: a role check plus an anti-forgery token bound to the action.
func SetupCustomerRoutes(authenticatedGroup *gin.RouterGroup, customerHandler *handlers.CustomerHandler) {
	customerRoutes := authenticatedGroup.Group("/customers")
	customerRoutes.Use(middleware.RoleAuthMiddleware("Admin", "Staff"))
	{
		customerRoutes.GET("", customerHandler.GetCustomers)
		customerRoutes.GET("/:id", customerHandler.GetCustomerByID)

		customerRoutes.POST("",
			middleware.ActionTokenMiddleware(middleware.ActionCreateOrUpdate),
			customerHandler.CreateCustomer)
		customerRoutes.PUT("/:id",
			middleware.ActionTokenMiddleware(middleware.ActionCreateOrUpdate),
			customerHandler.UpdateCustomer)
		customerRoutes.POST("/:id/soft-delete",
			middleware.ActionTokenMiddleware(middleware.ActionSoftDelete),
			customerHandler.SoftDeleteCustomer)
		customerRoutes.POST("/soft-delete-bulk",
			middleware.ActionTokenMiddleware(middleware.ActionSoftDeleteBulk),
			customerHandler.SoftDeleteCustomersBulk)
	}

	// Permanent deletion is reserved for administrators.
	adminRoutes := authenticatedGroup.Group("/customers")
	adminRoutes.Use(middleware.RoleAuthMiddleware("Admin"))
	{
		adminRoutes.DELETE("/trash",
			middleware.ActionTokenMiddleware(middleware.ActionDeletePermanentAll),
			customerHandler.PermanentDeleteTrashed)
		adminRoutes.DELETE("/:id",
			middleware.ActionTokenMiddleware(middleware.ActionDeletePermanent),
			customerHandler.PermanentDeleteCustomer)
	}
}

// SetupImportExportRoutes sets up CSV import/export, Admin only. Export ends
// the response cycle with the file itself, so it carries no action token.
func SetupImportExportRoutes(authenticatedGroup *gin.RouterGroup, importExportHandler *handlers.ImportExportHandler) {
	importExportRoutes := authenticatedGroup.Group("/customers")
	importExportRoutes.Use(middleware.RoleAuthMiddleware("Admin"))
	{
		importExportRoutes.POST("/import",
			middleware.ActionTokenMiddleware(middleware.ActionImportCSV),
			importExportHandler.ImportCustomers)
		importExportRoutes.GET("/export", importExportHandler.ExportCustomers)
	}
}

// SetupLookupRoutes sets up the read-only lookup API consumed by sibling
// modules. Deleted customers are never visible here.
func SetupLookupRoutes(authenticatedGroup *gin.RouterGroup, customerHandler *handlers.CustomerHandler) {
	lookupRoutes := authenticatedGroup.Group("/lookup")
	{
		lookupRoutes.GET("/customers", customerHandler.GetAllActiveCustomers)
		lookupRoutes.GET("/customers/search", customerHandler.FindCustomers)
	}
}

// SetupFlashRoutes sets up the read-once message channel.
func SetupFlashRoutes(authenticatedGroup *gin.RouterGroup, flashHandler *handlers.FlashHandler) {
	authenticatedGroup.GET("/messages/:key", flashHandler.PopMessages)
}
