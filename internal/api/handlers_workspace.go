// handlers_workspace.go - Workspace, file selection and parse handlers
package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/settings-generator/backend/internal/models"
	"github.com/settings-generator/backend/internal/session"
	"github.com/settings-generator/backend/internal/upload"
)

// WorkspaceHandlerImpl implements the WorkspaceHandler interface
type WorkspaceHandlerImpl struct {
	workspaces WorkspaceManager
}

// NewWorkspaceHandler creates a new workspace handler instance
func NewWorkspaceHandler(workspaces WorkspaceManager) WorkspaceHandler {
	return &WorkspaceHandlerImpl{workspaces: workspaces}
}

// workspaceResponse is the form state the frontend renders.
type workspaceResponse struct {
	*models.Workspace
	Selected     map[models.Slot]bool `json:"selected"`
	SettingsText string               `json:"settingsText"`
}

func newWorkspaceResponse(ws *models.Workspace) (*workspaceResponse, error) {
	text, err := ws.Settings.IndentedJSON()
	if err != nil {
		return nil, err
	}
	selected := make(map[models.Slot]bool, len(models.Slots()))
	for _, slot := range models.Slots() {
		selected[slot] = ws.Selected(slot)
	}
	return &workspaceResponse{Workspace: ws, Selected: selected, SettingsText: string(text)}, nil
}

func respondWorkspace(c echo.Context, status int, ws *models.Workspace) error {
	resp, err := newWorkspaceResponse(ws)
	if err != nil {
		return NewInternalError("failed to render settings", err)
	}
	return c.JSON(status, resp)
}

// HandleCreateWorkspace starts an empty form
func (h *WorkspaceHandlerImpl) HandleCreateWorkspace(c echo.Context) error {
	return respondWorkspace(c, http.StatusCreated, h.workspaces.CreateWorkspace())
}

// HandleGetWorkspace returns the current form state
func (h *WorkspaceHandlerImpl) HandleGetWorkspace(c echo.Context) error {
	id := c.Param("id")
	ws, ok := h.workspaces.GetWorkspace(id)
	if !ok {
		return NewNotFoundError("workspace", id)
	}
	return respondWorkspace(c, http.StatusOK, ws)
}

// HandleDeleteWorkspace discards the form and its files
func (h *WorkspaceHandlerImpl) HandleDeleteWorkspace(c echo.Context) error {
	id := c.Param("id")
	if err := h.workspaces.DeleteWorkspace(id); err != nil {
		if errors.Is(err, session.ErrWorkspaceNotFound) {
			return NewNotFoundError("workspace", id)
		}
		return NewInternalError("failed to delete workspace", err)
	}
	return c.NoContent(http.StatusNoContent)
}

// HandleKeepAlive extends workspace lifetime while the page is open
func (h *WorkspaceHandlerImpl) HandleKeepAlive(c echo.Context) error {
	id := c.Param("id")
	if ok := h.workspaces.TouchWorkspace(id); !ok {
		return NewNotFoundError("workspace", id)
	}
	return c.NoContent(http.StatusNoContent)
}

// HandleSelectFile runs intake for a multipart "file" field. A rejected file
// still returns the workspace so the inline error can be shown.
func (h *WorkspaceHandlerImpl) HandleSelectFile(c echo.Context) error {
	id := c.Param("id")
	slot, err := models.ParseSlot(c.Param("slot"))
	if err != nil {
		return NewBadRequestError("invalid slot", err)
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return NewBadRequestError("missing file field", err)
	}

	src, err := fh.Open()
	if err != nil {
		return NewBadRequestError("failed to read upload", err)
	}
	defer src.Close()

	sel := upload.Selection{
		Name:      fh.Filename,
		MediaType: fh.Header.Get(echo.HeaderContentType),
		Size:      fh.Size,
	}

	_, err = h.workspaces.SelectFile(id, slot, sel, src)
	switch {
	case errors.Is(err, session.ErrWorkspaceNotFound):
		return NewNotFoundError("workspace", id)
	case err != nil:
		var verr *upload.ValidationError
		if !errors.As(err, &verr) {
			return NewInternalError("failed to store file", err)
		}
		ws, ok := h.workspaces.GetWorkspace(id)
		if !ok {
			return NewNotFoundError("workspace", id)
		}
		apiErr := NewDomainError(err)
		return c.JSON(apiErr.Status, struct {
			*APIError
			Workspace *workspaceResponse `json:"workspace"`
		}{apiErr, mustWorkspaceResponse(ws)})
	}

	ws, ok := h.workspaces.GetWorkspace(id)
	if !ok {
		return NewNotFoundError("workspace", id)
	}
	return respondWorkspace(c, http.StatusOK, ws)
}

// HandleStartParse infers the schema of a slot's file. By default the request
// waits for the result; wait=false returns the job for polling.
func (h *WorkspaceHandlerImpl) HandleStartParse(c echo.Context) error {
	id := c.Param("id")
	slot, err := models.ParseSlot(c.Param("slot"))
	if err != nil {
		return NewBadRequestError("invalid slot", err)
	}

	wait := true
	if v := c.QueryParam("wait"); v != "" {
		if wait, err = strconv.ParseBool(v); err != nil {
			return NewBadRequestError("invalid wait parameter", err)
		}
	}

	job, err := h.workspaces.StartParse(id, slot)
	if err != nil {
		if errors.Is(err, session.ErrWorkspaceNotFound) {
			return NewNotFoundError("workspace", id)
		}
		return NewDomainError(err)
	}

	if !wait {
		return c.JSON(http.StatusAccepted, job.Snapshot())
	}

	if _, err := job.Wait(c.Request().Context()); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return c.JSON(http.StatusAccepted, job.Snapshot())
		}
		return NewDomainError(err)
	}

	ws, ok := h.workspaces.GetWorkspace(id)
	if !ok {
		return NewNotFoundError("workspace", id)
	}
	return respondWorkspace(c, http.StatusOK, ws)
}

// HandleGetJob returns the status of a parse job
func (h *WorkspaceHandlerImpl) HandleGetJob(c echo.Context) error {
	id := c.Param("id")
	jobID := c.Param("jobId")

	job, ok := h.workspaces.GetJob(id, jobID)
	if !ok {
		return NewNotFoundError("job", jobID)
	}
	h.workspaces.TouchWorkspace(id)
	return c.JSON(http.StatusOK, job.Snapshot())
}

func mustWorkspaceResponse(ws *models.Workspace) *workspaceResponse {
	resp, err := newWorkspaceResponse(ws)
	if err != nil {
		return &workspaceResponse{Workspace: ws}
	}
	return resp
}
