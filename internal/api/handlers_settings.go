// handlers_settings.go - Generated configuration export handlers
package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/settings-generator/backend/internal/session"
	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"
)

// MIMEApplicationYAML is the content type of the YAML export.
const MIMEApplicationYAML = "application/yaml"

// SettingsHandlerImpl implements the SettingsHandler interface
type SettingsHandlerImpl struct {
	workspaces WorkspaceManager
}

// NewSettingsHandler creates a new settings handler instance
func NewSettingsHandler(workspaces WorkspaceManager) SettingsHandler {
	return &SettingsHandlerImpl{workspaces: workspaces}
}

// HandleGetSettings returns the configuration as the indented JSON text
// shown in the read-only view
func (h *SettingsHandlerImpl) HandleGetSettings(c echo.Context) error {
	id := c.Param("id")
	settings, ok := h.workspaces.Settings(id)
	if !ok {
		return NewNotFoundError("workspace", id)
	}

	text, err := settings.IndentedJSON()
	if err != nil {
		return NewInternalError("failed to render settings", err)
	}
	return c.Blob(http.StatusOK, echo.MIMEApplicationJSONCharsetUTF8, text)
}

// HandleGetSettingsYAML returns the configuration as YAML
func (h *SettingsHandlerImpl) HandleGetSettingsYAML(c echo.Context) error {
	id := c.Param("id")
	settings, ok := h.workspaces.Settings(id)
	if !ok {
		return NewNotFoundError("workspace", id)
	}

	data, err := yaml.Marshal(settings)
	if err != nil {
		return NewInternalError("failed to render settings", err)
	}
	return c.Blob(http.StatusOK, MIMEApplicationYAML, data)
}

// HandleGetSettingsMsgpack returns the configuration encoded with msgpack
func (h *SettingsHandlerImpl) HandleGetSettingsMsgpack(c echo.Context) error {
	id := c.Param("id")
	settings, ok := h.workspaces.Settings(id)
	if !ok {
		return NewNotFoundError("workspace", id)
	}

	data, err := msgpack.Marshal(settings)
	if err != nil {
		return NewInternalError("failed to encode settings", err)
	}
	return c.Blob(http.StatusOK, "application/x-msgpack", data)
}

// HandleMarkCopied records that the user copied the JSON text
func (h *SettingsHandlerImpl) HandleMarkCopied(c echo.Context) error {
	id := c.Param("id")
	ws, err := h.workspaces.MarkCopied(id)
	if err != nil {
		if errors.Is(err, session.ErrWorkspaceNotFound) {
			return NewNotFoundError("workspace", id)
		}
		return NewInternalError("failed to update workspace", err)
	}
	return respondWorkspace(c, http.StatusOK, ws)
}
