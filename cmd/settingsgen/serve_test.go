package main

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/settings-generator/backend/internal/config"
	"github.com/settings-generator/backend/internal/parser"
	"github.com/settings-generator/backend/internal/session"
	"github.com/settings-generator/backend/internal/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNewEcho(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Processing.EnableCompression = false
	store := testutil.NewMockStorage()
	workspaces := session.NewManager(store, parser.NewSchemaParser(nil), nil)
	defer workspaces.Close()

	e := newEcho(cfg, workspaces, store, "guess")

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"sniffer":"guess"`)

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Settings Generator")

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/workspaces", nil))
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestResolveConfigPath(t *testing.T) {
	path, err := resolveConfigPath("/etc/settingsgen.config")
	assert.NoError(t, err)
	assert.Equal(t, "/etc/settingsgen.config", path)

	path, err = resolveConfigPath("")
	assert.NoError(t, err)
	assert.Equal(t, "settingsgen.config", filepath.Base(path))
}
