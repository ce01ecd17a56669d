// interfaces.go - Handler interface definitions for clean separation of concerns
package api

import (
	"io"

	"github.com/labstack/echo/v4"
	"github.com/settings-generator/backend/internal/models"
	"github.com/settings-generator/backend/internal/session"
	"github.com/settings-generator/backend/internal/upload"
)

// HealthHandler handles health check operations
type HealthHandler interface {
	HandleHealth(c echo.Context) error
}

// WorkspaceHandler handles workspace lifecycle, file selection and parsing
type WorkspaceHandler interface {
	HandleCreateWorkspace(c echo.Context) error
	HandleGetWorkspace(c echo.Context) error
	HandleDeleteWorkspace(c echo.Context) error
	HandleKeepAlive(c echo.Context) error
	HandleSelectFile(c echo.Context) error
	HandleStartParse(c echo.Context) error
	HandleGetJob(c echo.Context) error
}

// SettingsHandler renders the generated configuration
type SettingsHandler interface {
	HandleGetSettings(c echo.Context) error
	HandleGetSettingsYAML(c echo.Context) error
	HandleGetSettingsMsgpack(c echo.Context) error
	HandleMarkCopied(c echo.Context) error
}

// WorkspaceManager defines the interface for workspace management
// This allows mocking in tests
type WorkspaceManager interface {
	CreateWorkspace() *models.Workspace
	GetWorkspace(id string) (*models.Workspace, bool)
	TouchWorkspace(id string) bool
	DeleteWorkspace(id string) error
	SelectFile(id string, slot models.Slot, sel upload.Selection, content io.Reader) (*models.UploadedFile, error)
	StartParse(id string, slot models.Slot) (*session.Job, error)
	GetJob(id, jobID string) (*session.Job, bool)
	Settings(id string) (models.Configuration, bool)
	MarkCopied(id string) (*models.Workspace, error)
}

var _ WorkspaceManager = (*session.Manager)(nil)
