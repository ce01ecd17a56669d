// Package upload validates file selections before they are attached to a slot.
package upload

import (
	"fmt"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"github.com/settings-generator/backend/internal/models"
)

// allowedSubtypes lists the accepted media subtypes.
var allowedSubtypes = map[string]struct{}{
	"csv": {},
}

// ErrorKind classifies a rejected selection.
type ErrorKind string

const (
	WrongType ErrorKind = "wrong_type"
	WrongName ErrorKind = "wrong_name"
)

// ValidationError is returned when a selection cannot be attached to a slot.
// Message is the text shown to the user.
type ValidationError struct {
	Kind    ErrorKind
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Is lets errors.Is match on the kind alone.
func (e *ValidationError) Is(target error) bool {
	t, ok := target.(*ValidationError)
	return ok && t.Kind == e.Kind
}

var (
	ErrWrongType = &ValidationError{Kind: WrongType}
	ErrWrongName = &ValidationError{Kind: WrongName}
)

// Selection is what the user picked: a name and a declared media type.
type Selection struct {
	Name      string
	MediaType string
	Size      int64
}

// ValidateSelection checks sel against the slot whose expected filename is
// expectedName. The media type is checked first, then the exact filename.
func ValidateSelection(sel Selection, expectedName string) (*models.UploadedFile, error) {
	if _, ok := allowedSubtypes[Subtype(sel.MediaType)]; !ok {
		return nil, &ValidationError{Kind: WrongType, Message: "Please input a csv file"}
	}

	if sel.Name != expectedName {
		return nil, &ValidationError{
			Kind:    WrongName,
			Message: fmt.Sprintf("Please select your %s file", expectedName),
		}
	}

	slot, err := slotFor(expectedName)
	if err != nil {
		return nil, err
	}

	return &models.UploadedFile{
		Slot:       slot,
		Name:       sel.Name,
		MediaType:  sel.MediaType,
		Size:       sel.Size,
		SelectedAt: time.Now(),
	}, nil
}

// Subtype returns the part of a media type after the slash, without
// parameters. "text/csv; charset=utf-8" yields "csv".
func Subtype(mediaType string) string {
	if mt, _, err := mime.ParseMediaType(mediaType); err == nil {
		mediaType = mt
	}
	_, sub, ok := strings.Cut(mediaType, "/")
	if !ok {
		return ""
	}
	return strings.TrimSpace(sub)
}

// MediaTypeForPath guesses the media type a browser would declare for a local
// file, for callers that only have a path.
func MediaTypeForPath(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".csv" {
		return "text/csv"
	}
	if mt := mime.TypeByExtension(ext); mt != "" {
		return mt
	}
	return "application/octet-stream"
}

func slotFor(expectedName string) (models.Slot, error) {
	for _, s := range models.Slots() {
		if s.ExpectedFileName() == expectedName {
			return s, nil
		}
	}
	return "", fmt.Errorf("no slot expects file %q", expectedName)
}
