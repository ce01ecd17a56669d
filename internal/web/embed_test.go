package web

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStaticServer(t *testing.T) *echo.Echo {
	t.Helper()
	e := echo.New()
	e.GET("/api/health", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	require.NoError(t, RegisterStaticRoutes(e))
	return e
}

func get(e *echo.Echo, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHasEmbeddedFiles(t *testing.T) {
	assert.True(t, HasEmbeddedFiles())
}

func TestRegisterStaticRoutes(t *testing.T) {
	e := newStaticServer(t)

	t.Run("root serves the form", func(t *testing.T) {
		rec := get(e, "/")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Settings Generator")
	})

	t.Run("assets are served", func(t *testing.T) {
		rec := get(e, "/app.js")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "/api/workspaces")
	})

	t.Run("unknown page falls back to index", func(t *testing.T) {
		rec := get(e, "/somewhere")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "covariates.csv")
	})

	t.Run("api routes take precedence", func(t *testing.T) {
		rec := get(e, "/api/health")
		assert.Equal(t, "ok", rec.Body.String())
	})

	t.Run("unknown api path is not the form", func(t *testing.T) {
		rec := get(e, "/api/nothing")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
