package router

import (
	"database/sql"

	"customer_registry_backend/internal/flash"
	"customer_registry_backend/internal/handlers"
	"customer_registry_backend/internal/middleware"
	"customer_registry_backend/internal/repositories"
	"customer_registry_backend/internal/services"

	"github.com/gin-gonic/gin"
)

// Setup initializes the routing for the application. The store handle is
// constructed here once and passed down explicitly; nothing reaches for a
// global manager instance.
func Setup(engine *gin.Engine, db *sql.DB) {
	// Initialize Repositories
	customerRepo := repositories.NewCustomerRepository(db)
	authRepo := repositories.NewAuthRepository(db)

	// Initialize the ephemeral message channel shared by the write handlers.
	flashStore := flash.NewStore()

	// Initialize Services
	customerService := services.NewCustomerService(customerRepo, db)
	importExportService := services.NewImportExportService(customerService, customerRepo)
	authService := services.NewAuthService(authRepo, db)

	// Initialize Handlers
	customerHandler := handlers.NewCustomerHandler(customerService, flashStore)
	importExportHandler := handlers.NewImportExportHandler(importExportService, flashStore)
	authHandler := handlers.NewAuthHandler(authService)
	flashHandler := handlers.NewFlashHandler(flashStore)

	apiV1 := engine.Group("/api/v1")

	SetupPublicAuthRoutes(apiV1.Group("/auth"), authHandler)

	authenticated := apiV1.Group("")
	authenticated.Use(middleware.AuthMiddleware())
	{
		SetupAuthenticatedAuthRoutes(authenticated.Group("/auth"), authHandler)
		SetupActionTokenRoutes(authenticated, authHandler)
		SetupCustomerRoutes(authenticated, customerHandler)
		SetupImportExportRoutes(authenticated, importExportHandler)
		SetupLookupRoutes(authenticated, customerHandler)
		SetupFlashRoutes(authenticated, flashHandler)
	}
}
