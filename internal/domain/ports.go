package domain

import (
	"context"
	"time"
)

// TaskRepository manages task persistence.
// It is the authoritative copy; TaskTree caches its results.
type TaskRepository interface {
	// List retrieves all tasks, newest first.
	List(ctx context.Context) ([]*Task, error)

	// Get retrieves a task by ID. Returns nil if not found.
	Get(ctx context.Context, id string) (*Task, error)

	// Create stores a new task and returns it with ID and timestamps assigned.
	Create(ctx context.Context, draft TaskDraft) (*Task, error)

	// Update applies a patch and returns the updated task.
	Update(ctx context.Context, patch TaskPatch) (*Task, error)

	// Delete removes a task and all of its descendants.
	Delete(ctx context.Context, id string) error
}

// StoreInitializer initializes the data store.
type StoreInitializer interface {
	// Initialize creates the store if it doesn't exist.
	Initialize() error
}

// ModelCredentials identifies the remote model and how to reach it.
type ModelCredentials struct {
	APIKey string
	Model  string
}

// LanguageModel is the remote model used for interpretation and breakdown.
type LanguageModel interface {
	// Interpret extracts task fields from free-form text.
	Interpret(ctx context.Context, creds ModelCredentials, raw string) (*RemoteIntent, error)

	// Decompose suggests subtasks for a task title.
	Decompose(ctx context.Context, creds ModelCredentials, title string) ([]SubtaskDraft, error)
}

// CredentialStore keeps the model API key in secure storage.
type CredentialStore interface {
	// APIKey returns the stored key. ok is false if no key is stored.
	APIKey() (key string, ok bool, err error)

	// SetAPIKey stores the key.
	SetAPIKey(key string) error

	// DeleteAPIKey removes the key. Deleting a missing key is not an error.
	DeleteAPIKey() error
}

// SettingsStore loads and saves non-sensitive settings.
type SettingsStore interface {
	// Load returns the settings, or defaults if none are saved.
	Load() (*Settings, error)

	// Save persists the settings.
	Save(settings *Settings) error
}

// Logger records operational events.
// taskID may be empty for events not tied to a task.
type Logger interface {
	Debug(taskID, category, msg string)
	Info(taskID, category, msg string)
	Warn(taskID, category, msg string)
	Error(taskID, category, msg string)
}

// Clock provides time operations for testability.
type Clock interface {
	// Now returns the current time.
	Now() time.Time
}

// RealClock implements Clock using the system clock.
type RealClock struct{}

// Now returns the current time.
func (RealClock) Now() time.Time {
	return time.Now()
}
