// handlers_health.go - Health check handlers
package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/settings-generator/backend/internal/storage"
)

// HealthHandlerImpl implements the HealthHandler interface
type HealthHandlerImpl struct {
	version string
	sniffer string
	store   storage.Store
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(version, sniffer string, store storage.Store) HealthHandler {
	return &HealthHandlerImpl{
		version: version,
		sniffer: sniffer,
		store:   store,
	}
}

// HandleHealth returns server health status
func (h *HealthHandlerImpl) HandleHealth(c echo.Context) error {
	resp := map[string]interface{}{
		"status":  "ok",
		"version": h.version,
		"sniffer": h.sniffer,
	}
	if h.store != nil {
		if files, err := h.store.List(0); err == nil {
			resp["storedFiles"] = len(files)
		}
	}
	return c.JSON(http.StatusOK, resp)
}
