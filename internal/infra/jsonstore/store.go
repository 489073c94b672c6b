// Package jsonstore provides a JSON file-based implementation of TaskRepository.
package jsonstore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/liang/fanqie/internal/domain"
)

// storeData represents the JSON file structure.
type storeData struct {
	Tasks   map[string]*taskRecord `json:"tasks"`
	Version int                    `json:"version"`
}

const storeVersion = 1

// taskRecord is the JSON representation of a task.
// Timestamps are stored as whole Unix seconds.
// Fields are ordered to minimize memory padding.
type taskRecord struct {
	DueDate     *int64  `json:"due_date,omitempty"`
	ParentID    *string `json:"parent_id,omitempty"`
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	Category    string  `json:"category,omitempty"`
	Status      string  `json:"status"`
	CreatedAt   int64   `json:"created_at"`
	UpdatedAt   int64   `json:"updated_at"`
	Priority    int     `json:"priority"`
	AIGenerated bool    `json:"ai_generated"`
}

func (r *taskRecord) toDomain() *domain.Task {
	task := &domain.Task{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Category:    r.Category,
		Status:      domain.Status(r.Status),
		Priority:    domain.Priority(r.Priority),
		ParentID:    r.ParentID,
		AIGenerated: r.AIGenerated,
		CreatedAt:   time.Unix(r.CreatedAt, 0),
		UpdatedAt:   time.Unix(r.UpdatedAt, 0),
	}
	if r.DueDate != nil {
		due := time.Unix(*r.DueDate, 0)
		task.DueDate = &due
	}
	return task
}

func unixPtr(t *time.Time) *int64 {
	if t == nil {
		return nil
	}
	s := t.Unix()
	return &s
}

// Store implements domain.TaskRepository using a JSON file.
type Store struct {
	clock    domain.Clock
	newID    func() string
	path     string
	lockPath string
}

// New creates a new Store for the given file path.
// The file does not need to exist; it will be created on first write.
func New(path string, clock domain.Clock) *Store {
	return &Store{
		path:     path,
		lockPath: path + ".lock",
		clock:    clock,
		newID:    uuid.NewString,
	}
}

// List retrieves all tasks ordered by creation time, newest first.
func (s *Store) List(_ context.Context) ([]*domain.Task, error) {
	var tasks []*domain.Task
	err := s.withLock(func(data *storeData) error {
		for _, r := range data.Tasks {
			tasks = append(tasks, r.toDomain())
		}
		return nil
	})

	slices.SortFunc(tasks, func(a, b *domain.Task) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		// Same second: fall back to ID so the order is stable
		if a.ID < b.ID {
			return -1
		}
		if a.ID > b.ID {
			return 1
		}
		return 0
	})

	return tasks, err
}

// Get retrieves a task by ID.
func (s *Store) Get(_ context.Context, id string) (*domain.Task, error) {
	var task *domain.Task
	err := s.withLock(func(data *storeData) error {
		if r, ok := data.Tasks[id]; ok {
			task = r.toDomain()
		}
		return nil
	})
	return task, err
}

// Create stores a new pending task.
func (s *Store) Create(_ context.Context, draft domain.TaskDraft) (*domain.Task, error) {
	if draft.Title == "" {
		return nil, domain.ErrEmptyTitle
	}

	var created *domain.Task
	err := s.withLockWrite(func(data *storeData) error {
		if draft.ParentID != nil {
			if _, ok := data.Tasks[*draft.ParentID]; !ok {
				return domain.ErrParentNotFound
			}
		}

		now := s.clock.Now().Unix()
		r := &taskRecord{
			ID:          s.newID(),
			Title:       draft.Title,
			Description: draft.Description,
			Category:    draft.Category,
			Status:      string(domain.StatusPending),
			Priority:    int(draft.Priority.OrDefault()),
			DueDate:     unixPtr(draft.DueDate),
			ParentID:    draft.ParentID,
			AIGenerated: draft.AIGenerated,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		data.Tasks[r.ID] = r
		created = r.toDomain()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Update applies the non-nil fields of patch.
func (s *Store) Update(_ context.Context, patch domain.TaskPatch) (*domain.Task, error) {
	var updated *domain.Task
	err := s.withLockWrite(func(data *storeData) error {
		r, ok := data.Tasks[patch.ID]
		if !ok {
			return domain.ErrTaskNotFound
		}

		if patch.Title != nil {
			r.Title = *patch.Title
		}
		if patch.Description != nil {
			r.Description = *patch.Description
		}
		if patch.Category != nil {
			r.Category = *patch.Category
		}
		if patch.Status != nil {
			r.Status = string(*patch.Status)
		}
		if patch.Priority != nil {
			r.Priority = int(*patch.Priority)
		}
		switch {
		case patch.DueDate != nil:
			r.DueDate = unixPtr(patch.DueDate)
		case patch.ClearDueDate:
			r.DueDate = nil
		}
		r.UpdatedAt = s.clock.Now().Unix()

		updated = r.toDomain()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes a task and all of its descendants.
// Deleting a missing task is not an error.
func (s *Store) Delete(_ context.Context, id string) error {
	return s.withLockWrite(func(data *storeData) error {
		for _, victim := range descendants(data.Tasks, id) {
			delete(data.Tasks, victim)
		}
		return nil
	})
}

// descendants returns id and every task below it.
func descendants(tasks map[string]*taskRecord, id string) []string {
	seen := map[string]bool{}
	queue := []string{id}
	var result []string
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if seen[current] {
			continue
		}
		seen[current] = true
		if _, ok := tasks[current]; ok {
			result = append(result, current)
		}
		for childID, r := range tasks {
			if r.ParentID != nil && *r.ParentID == current {
				queue = append(queue, childID)
			}
		}
	}
	return result
}

// IsInitialized checks if the store file exists.
func (s *Store) IsInitialized() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

// Initialize creates an empty store file if it doesn't exist.
func (s *Store) Initialize() error {
	// Ensure parent directory exists
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	if _, err := os.Stat(s.path); err == nil {
		return nil // Already exists
	}

	return s.write(&storeData{
		Version: storeVersion,
		Tasks:   make(map[string]*taskRecord),
	})
}

// withLock executes fn with a shared (read) lock.
func (s *Store) withLock(fn func(*storeData) error) error {
	lock, err := s.acquireLock(syscall.LOCK_SH)
	if err != nil {
		return err
	}
	defer s.releaseLock(lock)

	data, err := s.read()
	if err != nil {
		return err
	}

	return fn(data)
}

// withLockWrite executes fn with an exclusive (write) lock and writes the result.
func (s *Store) withLockWrite(fn func(*storeData) error) error {
	lock, err := s.acquireLock(syscall.LOCK_EX)
	if err != nil {
		return err
	}
	defer s.releaseLock(lock)

	data, err := s.read()
	if err != nil {
		return err
	}

	if err := fn(data); err != nil {
		return err
	}

	return s.write(data)
}

func (s *Store) acquireLock(lockType int) (*os.File, error) {
	dir := filepath.Dir(s.lockPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}

	lock, err := os.OpenFile(s.lockPath, os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open lock file: %w", err)
	}

	if err := syscall.Flock(int(lock.Fd()), lockType); err != nil {
		_ = lock.Close()
		return nil, fmt.Errorf("acquire lock: %w", err)
	}

	return lock, nil
}

func (s *Store) releaseLock(lock *os.File) {
	_ = syscall.Flock(int(lock.Fd()), syscall.LOCK_UN)
	_ = lock.Close()
}

// read loads the store file. A missing file reads as an empty store.
func (s *Store) read() (*storeData, error) {
	content, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return &storeData{Version: storeVersion, Tasks: make(map[string]*taskRecord)}, nil
		}
		return nil, fmt.Errorf("read store file: %w", err)
	}

	var data storeData
	if err := json.Unmarshal(content, &data); err != nil {
		return nil, fmt.Errorf("parse store file: %w", err)
	}

	if data.Tasks == nil {
		data.Tasks = make(map[string]*taskRecord)
	}

	return &data, nil
}

func (s *Store) write(data *storeData) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o750); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	content, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal store data: %w", err)
	}

	// Write to temp file first, then rename for atomicity
	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, content, 0o600); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}

	return nil
}

// Ensure Store implements TaskRepository.
var (
	_ domain.TaskRepository   = (*Store)(nil)
	_ domain.StoreInitializer = (*Store)(nil)
)
