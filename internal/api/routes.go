// routes.go - Route registration helpers
// This file provides a clean way to register all API routes
package api

import (
	"github.com/labstack/echo/v4"
	"github.com/settings-generator/backend/internal/storage"
)

// Dependencies holds all handler dependencies
type Dependencies struct {
	Workspaces  WorkspaceManager
	Store       storage.Store
	Version     string
	SnifferName string
}

// Handlers holds all handler instances
type Handlers struct {
	Health    HealthHandler
	Workspace WorkspaceHandler
	Settings  SettingsHandler
}

// NewHandlers creates all handler instances
func NewHandlers(deps *Dependencies) *Handlers {
	return &Handlers{
		Health:    NewHealthHandler(deps.Version, deps.SnifferName, deps.Store),
		Workspace: NewWorkspaceHandler(deps.Workspaces),
		Settings:  NewSettingsHandler(deps.Workspaces),
	}
}

// RegisterRoutes registers all API routes with the Echo instance
func RegisterRoutes(e *echo.Echo, handlers *Handlers) {
	apiGroup := e.Group("/api")

	// Health check
	apiGroup.GET("/health", handlers.Health.HandleHealth)

	// Workspace routes
	wsGroup := apiGroup.Group("/workspaces")
	wsGroup.POST("", handlers.Workspace.HandleCreateWorkspace)
	wsGroup.GET("/:id", handlers.Workspace.HandleGetWorkspace)
	wsGroup.DELETE("/:id", handlers.Workspace.HandleDeleteWorkspace)
	wsGroup.POST("/:id/keepalive", handlers.Workspace.HandleKeepAlive)
	wsGroup.POST("/:id/slots/:slot", handlers.Workspace.HandleSelectFile)
	wsGroup.POST("/:id/slots/:slot/parse", handlers.Workspace.HandleStartParse)
	wsGroup.GET("/:id/jobs/:jobId", handlers.Workspace.HandleGetJob)

	// Settings routes
	wsGroup.GET("/:id/settings", handlers.Settings.HandleGetSettings)
	wsGroup.GET("/:id/settings.yaml", handlers.Settings.HandleGetSettingsYAML)
	wsGroup.GET("/:id/settings/msgpack", handlers.Settings.HandleGetSettingsMsgpack)
	wsGroup.POST("/:id/copied", handlers.Settings.HandleMarkCopied)
}

// SetupMiddleware configures common middleware
func SetupMiddleware(e *echo.Echo) {
	e.HTTPErrorHandler = ErrorHandler
}
