package api

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/settings-generator/backend/internal/parser"
	"github.com/settings-generator/backend/internal/session"
	"github.com/settings-generator/backend/internal/upload"
	"github.com/stretchr/testify/assert"
)

func TestNewDomainError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"wrong type", &upload.ValidationError{Kind: upload.WrongType, Message: "Please input a csv file"}, http.StatusBadRequest, CodeWrongType},
		{"wrong name", &upload.ValidationError{Kind: upload.WrongName, Message: "Please select your data.csv file"}, http.StatusBadRequest, CodeWrongName},
		{"missing file", session.ErrMissingFile, http.StatusConflict, CodeMissingFile},
		{"wrapped empty sample", fmt.Errorf("data.csv: %w", parser.ErrEmptySample), http.StatusUnprocessableEntity, CodeEmptySample},
		{"read failure", fmt.Errorf("%w: boom", parser.ErrReadFailure), http.StatusInternalServerError, CodeReadFailure},
		{"other", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			apiErr := NewDomainError(tt.err)
			assert.Equal(t, tt.status, apiErr.Status)
			assert.Equal(t, tt.code, apiErr.Code)
		})
	}
}

func TestErrorHandler(t *testing.T) {
	e := echo.New()

	t.Run("api error", func(t *testing.T) {
		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
		ErrorHandler(NewNotFoundError("workspace", "x"), c)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, rec.Body.String(), `"code":"NOT_FOUND"`)
	})

	t.Run("echo error", func(t *testing.T) {
		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
		ErrorHandler(echo.NewHTTPError(http.StatusMethodNotAllowed, "nope"), c)
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
		assert.Contains(t, rec.Body.String(), `"message":"nope"`)
	})

	t.Run("plain error", func(t *testing.T) {
		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
		ErrorHandler(errors.New("boom"), c)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Contains(t, rec.Body.String(), `"details":"boom"`)
	})
}
