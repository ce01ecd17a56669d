package session

import (
	"context"
	"sync"
	"time"

	"github.com/settings-generator/backend/internal/models"
)

// Job is a running or finished schema inference for one slot. It resolves
// exactly once; Wait blocks until then.
type Job struct {
	mu     sync.RWMutex
	info   models.ParseJob
	result models.ColumnTypeMap
	err    error
	done   chan struct{}
}

func newJob(id, workspaceID string, file *models.UploadedFile) *Job {
	return &Job{
		info: models.ParseJob{
			ID:          id,
			WorkspaceID: workspaceID,
			Slot:        file.Slot,
			FileID:      file.FileID,
			Status:      models.JobStatusPending,
			StartedAt:   time.Now(),
		},
		done: make(chan struct{}),
	}
}

// ID returns the job identifier.
func (j *Job) ID() string {
	return j.info.ID
}

// Done is closed once the job has a result or an error.
func (j *Job) Done() <-chan struct{} {
	return j.done
}

// Wait blocks until the job finishes or ctx ends. Cancelling ctx only stops
// waiting; the job keeps running and still updates the workspace.
func (j *Job) Wait(ctx context.Context) (models.ColumnTypeMap, error) {
	select {
	case <-j.done:
		j.mu.RLock()
		defer j.mu.RUnlock()
		return j.result, j.err
	case <-ctx.Done():
		return models.ColumnTypeMap{}, ctx.Err()
	}
}

// Snapshot returns the current job status.
func (j *Job) Snapshot() models.ParseJob {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.info
}

func (j *Job) running() bool {
	select {
	case <-j.done:
		return false
	default:
		return true
	}
}

func (j *Job) setStatus(status models.JobStatus) {
	j.mu.Lock()
	j.info.Status = status
	j.mu.Unlock()
}

func (j *Job) finish(result models.ColumnTypeMap, err error) {
	j.mu.Lock()
	j.result = result
	j.err = err
	j.info.ProcessingTimeMs = time.Since(j.info.StartedAt).Milliseconds()
	if err != nil {
		j.info.Status = models.JobStatusError
		j.info.Error = err.Error()
	} else {
		j.info.Status = models.JobStatusComplete
		j.info.ColumnCount = result.Len()
	}
	j.mu.Unlock()
	close(j.done)
}
