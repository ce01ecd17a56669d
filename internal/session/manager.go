// Package session holds per-user workspace state: selected files, the inline
// error, the generated configuration and the copy indicator.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/settings-generator/backend/internal/models"
	"github.com/settings-generator/backend/internal/parser"
	"github.com/settings-generator/backend/internal/storage"
	"github.com/settings-generator/backend/internal/upload"
	"go.uber.org/zap"
)

// DefaultMaxWorkspaces limits concurrent workspaces to bound upload storage.
const DefaultMaxWorkspaces = 100

// WorkspaceKeepAliveWindow protects recently used workspaces from cleanup.
const WorkspaceKeepAliveWindow = 5 * time.Minute

var (
	// ErrMissingFile means parse was requested for a slot with no file.
	ErrMissingFile = errors.New("no file selected for slot")
	// ErrWorkspaceNotFound means the workspace expired or never existed.
	ErrWorkspaceNotFound = errors.New("workspace not found")
)

// Inferrer turns file content into a column type map.
type Inferrer interface {
	InferSchema(ctx context.Context, src parser.Source) (models.ColumnTypeMap, error)
}

// Manager owns every workspace. All workspace mutation happens under mu and
// replaces the configuration snapshot wholesale.
type Manager struct {
	workspaces    map[string]*workspaceState
	mu            sync.RWMutex
	store         storage.Store
	inferrer      Inferrer
	logger        *zap.Logger
	maxWorkspaces int

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

type workspaceState struct {
	ws   *models.Workspace
	jobs map[string]*Job
}

// NewManager creates a workspace manager. Uploaded content goes to store and
// is parsed with inferrer.
func NewManager(store storage.Store, inferrer Inferrer, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		workspaces:    make(map[string]*workspaceState),
		store:         store,
		inferrer:      inferrer,
		logger:        logger,
		maxWorkspaces: DefaultMaxWorkspaces,
		ctx:           ctx,
		cancel:        cancel,
	}
}

// SetMaxWorkspaces changes the workspace limit. Values below 1 are ignored.
func (m *Manager) SetMaxWorkspaces(n int) {
	if n < 1 {
		return
	}
	m.mu.Lock()
	m.maxWorkspaces = n
	m.mu.Unlock()
}

// Close cancels running jobs and waits for them to return.
func (m *Manager) Close() {
	m.cancel()
	m.wg.Wait()
}

// CreateWorkspace starts a fresh workspace with an empty configuration.
func (m *Manager) CreateWorkspace() *models.Workspace {
	m.evictIfNeeded()

	now := time.Now()
	ws := &models.Workspace{
		ID:           uuid.New().String(),
		Files:        make(map[models.Slot]*models.UploadedFile),
		Settings:     models.NewConfiguration(),
		CreatedAt:    now,
		LastAccessed: now,
	}

	m.mu.Lock()
	m.workspaces[ws.ID] = &workspaceState{ws: ws, jobs: make(map[string]*Job)}
	snap := snapshot(ws)
	m.mu.Unlock()

	m.logger.Info("workspace created", zap.String("workspace", shortID(ws.ID)))
	return snap
}

// GetWorkspace returns a copy of the workspace state and marks it as used.
func (m *Manager) GetWorkspace(id string) (*models.Workspace, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	state, ok := m.workspaces[id]
	if !ok {
		return nil, false
	}
	state.ws.LastAccessed = time.Now()
	return snapshot(state.ws), true
}

// Settings returns the current configuration snapshot.
func (m *Manager) Settings(id string) (models.Configuration, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	state, ok := m.workspaces[id]
	if !ok {
		return models.Configuration{}, false
	}
	return state.ws.Settings, true
}

// TouchWorkspace updates the last-access time to keep a workspace alive.
func (m *Manager) TouchWorkspace(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	state, ok := m.workspaces[id]
	if !ok {
		return false
	}
	state.ws.LastAccessed = time.Now()
	return true
}

// DeleteWorkspace discards a workspace and its uploaded content.
func (m *Manager) DeleteWorkspace(id string) error {
	m.mu.Lock()
	state, ok := m.workspaces[id]
	if !ok {
		m.mu.Unlock()
		return ErrWorkspaceNotFound
	}
	delete(m.workspaces, id)
	blobs := blobsOf(state)
	m.mu.Unlock()

	m.deleteBlobs(blobs)
	m.logger.Info("workspace deleted", zap.String("workspace", shortID(id)))
	return nil
}

// SelectFile runs intake for a slot. The workspace error is cleared first
// whatever the outcome. A rejected selection records its message and keeps
// the slot's previous file; an accepted one replaces it.
func (m *Manager) SelectFile(id string, slot models.Slot, sel upload.Selection, content io.Reader) (*models.UploadedFile, error) {
	m.mu.Lock()
	state, ok := m.workspaces[id]
	if !ok {
		m.mu.Unlock()
		return nil, ErrWorkspaceNotFound
	}
	state.ws.Error = ""
	state.ws.LastAccessed = time.Now()
	m.mu.Unlock()

	file, err := upload.ValidateSelection(sel, slot.ExpectedFileName())
	if err != nil {
		m.setError(id, err.Error())
		m.logger.Info("selection rejected",
			zap.String("workspace", shortID(id)),
			zap.String("slot", string(slot)),
			zap.String("name", sel.Name),
			zap.String("mediaType", sel.MediaType),
			zap.Error(err))
		return nil, err
	}

	info, err := m.store.Save(sel.Name, sel.MediaType, content)
	if err != nil {
		m.setError(id, "failed to store file")
		return nil, fmt.Errorf("storing %s: %w", sel.Name, err)
	}
	file.FileID = info.ID
	file.Size = info.Size

	m.mu.Lock()
	state, ok = m.workspaces[id]
	if !ok {
		m.mu.Unlock()
		m.deleteBlobs([]string{info.ID})
		return nil, ErrWorkspaceNotFound
	}
	prev := state.ws.Files[slot]
	state.ws.Files[slot] = file
	var stale []string
	if prev != nil && !blobInUse(state, prev.FileID) {
		stale = append(stale, prev.FileID)
	}
	out := *file
	m.mu.Unlock()

	m.deleteBlobs(stale)
	m.logger.Info("file selected",
		zap.String("workspace", shortID(id)),
		zap.String("slot", string(slot)),
		zap.String("fileId", shortID(info.ID)),
		zap.Int64("size", info.Size))
	return &out, nil
}

// StartParse begins schema inference for the file held in slot and returns
// the job to wait on. Without a file it fails with ErrMissingFile and leaves
// the workspace untouched.
//
// Nothing prevents two jobs for the same slot from overlapping; whichever
// finishes last determines the section.
func (m *Manager) StartParse(id string, slot models.Slot) (*Job, error) {
	m.mu.Lock()
	state, ok := m.workspaces[id]
	if !ok {
		m.mu.Unlock()
		return nil, ErrWorkspaceNotFound
	}
	file := state.ws.Files[slot]
	if file == nil {
		m.mu.Unlock()
		return nil, ErrMissingFile
	}
	state.ws.LastAccessed = time.Now()
	job := newJob(uuid.New().String(), id, file)
	state.jobs[job.ID()] = job
	fileCopy := *file
	m.wg.Add(1)
	m.mu.Unlock()

	go m.runParse(id, job, &fileCopy)

	return job, nil
}

// GetJob looks up a parse job of a workspace.
func (m *Manager) GetJob(id, jobID string) (*Job, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	state, ok := m.workspaces[id]
	if !ok {
		return nil, false
	}
	job, ok := state.jobs[jobID]
	return job, ok
}

// MarkCopied sets the copy indicator. It is reset by the next configuration
// change.
func (m *Manager) MarkCopied(id string) (*models.Workspace, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	state, ok := m.workspaces[id]
	if !ok {
		return nil, ErrWorkspaceNotFound
	}
	state.ws.Copied = true
	state.ws.LastAccessed = time.Now()
	return snapshot(state.ws), nil
}

func (m *Manager) runParse(id string, job *Job, file *models.UploadedFile) {
	defer m.wg.Done()

	var (
		result models.ColumnTypeMap
		err    error
	)

	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("parse panicked",
				zap.String("workspace", shortID(id)),
				zap.String("job", shortID(job.ID())),
				zap.Any("panic", r))
			err = fmt.Errorf("parse panicked: %v", r)
		}
		m.complete(id, job, file, result, err)
	}()

	job.setStatus(models.JobStatusParsing)
	m.logger.Info("parse started",
		zap.String("workspace", shortID(id)),
		zap.String("job", shortID(job.ID())),
		zap.String("slot", string(file.Slot)),
		zap.String("file", file.Name))

	result, err = m.inferrer.InferSchema(m.ctx, storeSource{store: m.store, id: file.FileID})
}

// complete applies a finished job to its workspace and resolves the job.
func (m *Manager) complete(id string, job *Job, file *models.UploadedFile, result models.ColumnTypeMap, err error) {
	var stale []string

	m.mu.Lock()
	state, ok := m.workspaces[id]
	if ok {
		if err != nil {
			state.ws.Error = fmt.Sprintf("%s: %v", file.Name, err)
		} else {
			next, applyErr := state.ws.Settings.WithSection(file.Slot.Section(), result)
			if applyErr != nil {
				err = applyErr
				state.ws.Error = applyErr.Error()
			} else {
				state.ws.Settings = next
				state.ws.Revision++
				state.ws.Copied = false
			}
		}
	}
	// finish before the blob check so this job no longer counts as a reader
	job.finish(result, err)
	if ok {
		if cur := state.ws.Files[file.Slot]; (cur == nil || cur.FileID != file.FileID) && !blobInUse(state, file.FileID) {
			stale = append(stale, file.FileID)
		}
	}
	m.mu.Unlock()

	m.deleteBlobs(stale)

	if err != nil {
		m.logger.Warn("parse failed",
			zap.String("workspace", shortID(id)),
			zap.String("job", shortID(job.ID())),
			zap.String("slot", string(file.Slot)),
			zap.Error(err))
		return
	}
	m.logger.Info("parse complete",
		zap.String("workspace", shortID(id)),
		zap.String("job", shortID(job.ID())),
		zap.String("slot", string(file.Slot)),
		zap.Int("columns", result.Len()),
		zap.Bool("applied", ok))
}

func (m *Manager) setError(id, msg string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if state, ok := m.workspaces[id]; ok {
		state.ws.Error = msg
	}
}

// CleanupOldWorkspaces removes idle workspaces older than maxAge. Workspaces
// with running jobs or recent activity are kept.
func (m *Manager) CleanupOldWorkspaces(maxAge time.Duration) int {
	cutoff := time.Now().Add(-maxAge)
	keepAliveCutoff := time.Now().Add(-WorkspaceKeepAliveWindow)

	var blobs []string
	removed := 0

	m.mu.Lock()
	for id, state := range m.workspaces {
		if hasRunningJobs(state) {
			continue
		}
		last := state.ws.LastAccessed
		if last.After(keepAliveCutoff) || !last.Before(cutoff) {
			continue
		}
		blobs = append(blobs, blobsOf(state)...)
		delete(m.workspaces, id)
		removed++
		m.logger.Info("cleaned up aged workspace",
			zap.String("workspace", shortID(id)),
			zap.Duration("idle", time.Since(last).Round(time.Second)))
	}
	m.mu.Unlock()

	m.deleteBlobs(blobs)
	return removed
}

// evictIfNeeded drops the least recently used idle workspaces when the
// limit is reached.
func (m *Manager) evictIfNeeded() {
	var blobs []string

	m.mu.Lock()
	if len(m.workspaces) < m.maxWorkspaces {
		m.mu.Unlock()
		return
	}

	candidates := make([]*workspaceState, 0, len(m.workspaces))
	for _, state := range m.workspaces {
		if !hasRunningJobs(state) {
			candidates = append(candidates, state)
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].ws.LastAccessed.Before(candidates[j].ws.LastAccessed)
	})

	toFree := len(m.workspaces) - m.maxWorkspaces + 1
	for i := 0; i < toFree && i < len(candidates); i++ {
		id := candidates[i].ws.ID
		blobs = append(blobs, blobsOf(candidates[i])...)
		delete(m.workspaces, id)
		m.logger.Info("evicted workspace to stay under limit", zap.String("workspace", shortID(id)))
	}
	m.mu.Unlock()

	m.deleteBlobs(blobs)
}

// WorkspaceCount returns the number of live workspaces.
func (m *Manager) WorkspaceCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.workspaces)
}

func (m *Manager) deleteBlobs(ids []string) {
	for _, id := range ids {
		if id == "" {
			continue
		}
		if err := m.store.Delete(id); err != nil {
			m.logger.Debug("blob already gone", zap.String("fileId", shortID(id)), zap.Error(err))
		}
	}
}

// storeSource adapts a stored blob to parser.Source.
type storeSource struct {
	store storage.Store
	id    string
}

func (s storeSource) Open() (io.ReadCloser, error) {
	return s.store.Open(s.id)
}

func snapshot(ws *models.Workspace) *models.Workspace {
	out := *ws
	out.Files = make(map[models.Slot]*models.UploadedFile, len(ws.Files))
	for slot, f := range ws.Files {
		if f == nil {
			continue
		}
		fc := *f
		out.Files[slot] = &fc
	}
	return &out
}

func blobInUse(state *workspaceState, fileID string) bool {
	for _, f := range state.ws.Files {
		if f != nil && f.FileID == fileID {
			return true
		}
	}
	for _, j := range state.jobs {
		if j.running() && j.info.FileID == fileID {
			return true
		}
	}
	return false
}

func blobsOf(state *workspaceState) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, f := range state.ws.Files {
		if f == nil {
			continue
		}
		if _, ok := seen[f.FileID]; !ok {
			seen[f.FileID] = struct{}{}
			out = append(out, f.FileID)
		}
	}
	for _, j := range state.jobs {
		if _, ok := seen[j.info.FileID]; !ok {
			seen[j.info.FileID] = struct{}{}
			out = append(out, j.info.FileID)
		}
	}
	return out
}

func hasRunningJobs(state *workspaceState) bool {
	for _, j := range state.jobs {
		if j.running() {
			return true
		}
	}
	return false
}

// shortID safely truncates an ID for logging (handles short IDs gracefully)
func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}
