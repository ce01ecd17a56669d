package models

import "time"

// JobStatus represents the status of a parse job.
type JobStatus string

const (
	JobStatusPending  JobStatus = "pending"
	JobStatusParsing  JobStatus = "parsing"
	JobStatusComplete JobStatus = "complete"
	JobStatusError    JobStatus = "error"
)

// ParseJob describes one schema inference run for a slot.
type ParseJob struct {
	ID               string    `json:"id"`
	WorkspaceID      string    `json:"workspaceId"`
	Slot             Slot      `json:"slot"`
	FileID           string    `json:"fileId"`
	Status           JobStatus `json:"status"`
	ColumnCount      int       `json:"columnCount,omitempty"`
	Error            string    `json:"error,omitempty"`
	StartedAt        time.Time `json:"startedAt"`
	ProcessingTimeMs int64     `json:"processingTimeMs,omitempty"`
}

// Workspace is a snapshot of one user's form state: the selected files, the
// inline error message, the generated configuration and the copy indicator.
type Workspace struct {
	ID           string                 `json:"id"`
	Files        map[Slot]*UploadedFile `json:"files"`
	Error        string                 `json:"error,omitempty"`
	Settings     Configuration          `json:"settings"`
	Copied       bool                   `json:"copied"`
	Revision     int                    `json:"revision"`
	CreatedAt    time.Time              `json:"createdAt"`
	LastAccessed time.Time              `json:"lastAccessed"`
}

// Selected reports whether a validated file is held for the slot.
func (w *Workspace) Selected(slot Slot) bool {
	f, ok := w.Files[slot]
	return ok && f != nil
}
