// Package testutil provides shared test utilities and mock implementations.
package testutil

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/liang/fanqie/internal/domain"
)

// MockClock is a test double for domain.Clock.
type MockClock struct {
	NowTime time.Time
}

// Now returns the configured time.
func (m *MockClock) Now() time.Time {
	return m.NowTime
}

// MockTaskRepository is a test double for domain.TaskRepository.
// Tasks are kept newest first, like the real store.
// Fields are ordered to minimize memory padding.
type MockTaskRepository struct {
	Tasks []*domain.Task

	// Error injection. CreateErrAt fails only the Nth create call (1-based).
	ListErr     error
	GetErr      error
	CreateErr   error
	UpdateErr   error
	DeleteErr   error
	Now         func() time.Time
	CreateErrAt map[int]error

	Deleted     []string
	Patches     []domain.TaskPatch
	Drafts      []domain.TaskDraft
	CreateCalls int
	nextID      int
	mu          sync.Mutex
}

// NewMockTaskRepository creates an empty MockTaskRepository.
func NewMockTaskRepository() *MockTaskRepository {
	return &MockTaskRepository{
		Now: func() time.Time { return time.Date(2026, 10, 14, 9, 0, 0, 0, time.Local) },
	}
}

// Seed adds tasks as if they were already stored.
func (m *MockTaskRepository) Seed(tasks ...*domain.Task) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Tasks = append(m.Tasks, tasks...)
}

// List returns copies of all tasks.
func (m *MockTaskRepository) List(_ context.Context) ([]*domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	result := make([]*domain.Task, 0, len(m.Tasks))
	for _, t := range m.Tasks {
		result = append(result, t.Clone())
	}
	return result, nil
}

// Get retrieves a task by ID.
func (m *MockTaskRepository) Get(_ context.Context, id string) (*domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	if t := m.find(id); t != nil {
		return t.Clone(), nil
	}
	return nil, nil
}

// Create stores a task with a sequential ID ("task-1", "task-2", ...).
func (m *MockTaskRepository) Create(_ context.Context, draft domain.TaskDraft) (*domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CreateCalls++
	m.Drafts = append(m.Drafts, draft)
	if m.CreateErr != nil {
		return nil, m.CreateErr
	}
	if err, ok := m.CreateErrAt[m.CreateCalls]; ok {
		return nil, err
	}
	if draft.Title == "" {
		return nil, domain.ErrEmptyTitle
	}
	if draft.ParentID != nil && m.find(*draft.ParentID) == nil {
		return nil, domain.ErrParentNotFound
	}

	m.nextID++
	now := m.Now()
	task := &domain.Task{
		ID:          fmt.Sprintf("task-%d", m.nextID),
		Title:       draft.Title,
		Description: draft.Description,
		Category:    draft.Category,
		Status:      domain.StatusPending,
		Priority:    draft.Priority.OrDefault(),
		DueDate:     draft.DueDate,
		ParentID:    draft.ParentID,
		AIGenerated: draft.AIGenerated,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	m.Tasks = append([]*domain.Task{task}, m.Tasks...)
	return task.Clone(), nil
}

// Update applies the non-nil fields of patch.
func (m *MockTaskRepository) Update(_ context.Context, patch domain.TaskPatch) (*domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Patches = append(m.Patches, patch)
	if m.UpdateErr != nil {
		return nil, m.UpdateErr
	}
	t := m.find(patch.ID)
	if t == nil {
		return nil, domain.ErrTaskNotFound
	}
	if patch.Title != nil {
		t.Title = *patch.Title
	}
	if patch.Description != nil {
		t.Description = *patch.Description
	}
	if patch.Category != nil {
		t.Category = *patch.Category
	}
	if patch.Status != nil {
		t.Status = *patch.Status
	}
	if patch.Priority != nil {
		t.Priority = *patch.Priority
	}
	switch {
	case patch.DueDate != nil:
		due := *patch.DueDate
		t.DueDate = &due
	case patch.ClearDueDate:
		t.DueDate = nil
	}
	t.UpdatedAt = m.Now()
	return t.Clone(), nil
}

// Delete removes a task and its descendants.
func (m *MockTaskRepository) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Deleted = append(m.Deleted, id)
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	victims := map[string]bool{id: true}
	for changed := true; changed; {
		changed = false
		for _, t := range m.Tasks {
			if t.ParentID != nil && victims[*t.ParentID] && !victims[t.ID] {
				victims[t.ID] = true
				changed = true
			}
		}
	}
	m.Tasks = slices.DeleteFunc(m.Tasks, func(t *domain.Task) bool { return victims[t.ID] })
	return nil
}

func (m *MockTaskRepository) find(id string) *domain.Task {
	for _, t := range m.Tasks {
		if t.ID == id {
			return t
		}
	}
	return nil
}

// MockLanguageModel is a test double for domain.LanguageModel.
// Fields are ordered to minimize memory padding.
type MockLanguageModel struct {
	Intent        *domain.RemoteIntent
	InterpretErr  error
	DecomposeErr  error
	Subtasks      []domain.SubtaskDraft
	LastCreds     domain.ModelCredentials
	LastInput     string
	InterpretCall int
	DecomposeCall int
}

// Interpret returns the configured intent.
func (m *MockLanguageModel) Interpret(_ context.Context, creds domain.ModelCredentials, raw string) (*domain.RemoteIntent, error) {
	m.InterpretCall++
	m.LastCreds = creds
	m.LastInput = raw
	if m.InterpretErr != nil {
		return nil, m.InterpretErr
	}
	if m.Intent == nil {
		return &domain.RemoteIntent{}, nil
	}
	intent := *m.Intent
	return &intent, nil
}

// Decompose returns the configured subtasks.
func (m *MockLanguageModel) Decompose(_ context.Context, creds domain.ModelCredentials, title string) ([]domain.SubtaskDraft, error) {
	m.DecomposeCall++
	m.LastCreds = creds
	m.LastInput = title
	if m.DecomposeErr != nil {
		return nil, m.DecomposeErr
	}
	return slices.Clone(m.Subtasks), nil
}

// MockCredentialStore is a test double for domain.CredentialStore.
type MockCredentialStore struct {
	GetErr    error
	SetErr    error
	DeleteErr error
	Key       string
}

// APIKey returns the stored key.
func (m *MockCredentialStore) APIKey() (string, bool, error) {
	if m.GetErr != nil {
		return "", false, m.GetErr
	}
	return m.Key, m.Key != "", nil
}

// SetAPIKey stores the key.
func (m *MockCredentialStore) SetAPIKey(key string) error {
	if m.SetErr != nil {
		return m.SetErr
	}
	if key == "" {
		return domain.ErrEmptyAPIKey
	}
	m.Key = key
	return nil
}

// DeleteAPIKey removes the key.
func (m *MockCredentialStore) DeleteAPIKey() error {
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	m.Key = ""
	return nil
}

// MockSettingsStore is a test double for domain.SettingsStore.
type MockSettingsStore struct {
	Settings  *domain.Settings
	LoadErr   error
	SaveErr   error
	SaveCalls int
}

// NewMockSettingsStore returns a store holding the default settings.
func NewMockSettingsStore() *MockSettingsStore {
	return &MockSettingsStore{Settings: domain.NewDefaultSettings()}
}

// Load returns a copy of the stored settings.
func (m *MockSettingsStore) Load() (*domain.Settings, error) {
	if m.LoadErr != nil {
		return nil, m.LoadErr
	}
	if m.Settings == nil {
		return domain.NewDefaultSettings(), nil
	}
	s := *m.Settings
	return &s, nil
}

// Save stores a copy of settings.
func (m *MockSettingsStore) Save(settings *domain.Settings) error {
	m.SaveCalls++
	if m.SaveErr != nil {
		return m.SaveErr
	}
	s := *settings
	m.Settings = &s
	return nil
}

// LogEntry is a single recorded log call.
type LogEntry struct {
	Level    string
	TaskID   string
	Category string
	Msg      string
}

// MockLogger records log calls.
type MockLogger struct {
	Entries []LogEntry
	mu      sync.Mutex
}

// Debug records a debug entry.
func (m *MockLogger) Debug(taskID, category, msg string) { m.record("DEBUG", taskID, category, msg) }

// Info records an info entry.
func (m *MockLogger) Info(taskID, category, msg string) { m.record("INFO", taskID, category, msg) }

// Warn records a warning entry.
func (m *MockLogger) Warn(taskID, category, msg string) { m.record("WARN", taskID, category, msg) }

// Error records an error entry.
func (m *MockLogger) Error(taskID, category, msg string) { m.record("ERROR", taskID, category, msg) }

// Count returns the number of entries at level.
func (m *MockLogger) Count(level string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, e := range m.Entries {
		if e.Level == level {
			n++
		}
	}
	return n
}

func (m *MockLogger) record(level, taskID, category, msg string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Entries = append(m.Entries, LogEntry{Level: level, TaskID: taskID, Category: category, Msg: msg})
}

// Ensure mocks implement their interfaces.
var (
	_ domain.TaskRepository  = (*MockTaskRepository)(nil)
	_ domain.LanguageModel   = (*MockLanguageModel)(nil)
	_ domain.CredentialStore = (*MockCredentialStore)(nil)
	_ domain.SettingsStore   = (*MockSettingsStore)(nil)
	_ domain.Logger          = (*MockLogger)(nil)
	_ domain.Clock           = (*MockClock)(nil)
)
