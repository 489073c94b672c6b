// Package domain contains core business entities and interfaces.
package domain

import "time"

// UntitledTask replaces an empty title when an edit is saved.
const UntitledTask = "未命名任务"

// Task represents a single tracked item.
// Fields are ordered to minimize memory padding.
type Task struct {
	CreatedAt   time.Time  `json:"created_at"`            // Set by the store
	UpdatedAt   time.Time  `json:"updated_at"`            // Set by the store
	DueDate     *time.Time `json:"due_date,omitempty"`    // Day granularity (nil = no due date)
	ParentID    *string    `json:"parent_id,omitempty"`   // Parent task ID (nil = top-level task)
	ID          string     `json:"id"`                    // Opaque ID assigned by the store
	Title       string     `json:"title"`                 // Title (required)
	Description string     `json:"description,omitempty"` // Description (optional)
	Category    string     `json:"category,omitempty"`    // Category (optional)
	Status      Status     `json:"status"`                // Current status
	Priority    Priority   `json:"priority"`              // 1 = high, 3 = low
	AIGenerated bool       `json:"ai_generated"`          // Created by decomposition
}

// IsTopLevel returns true if the task has no parent.
func (t *Task) IsTopLevel() bool {
	return t.ParentID == nil
}

// IsChildOf returns true if the task's parent is id.
func (t *Task) IsChildOf(id string) bool {
	return t.ParentID != nil && *t.ParentID == id
}

// IsCompleted returns true if the task is completed.
func (t *Task) IsCompleted() bool {
	return t.Status == StatusCompleted
}

// IsDueOn reports whether the due date falls on now's calendar date.
// Both are compared in now's location. A task without a due date is never due.
func (t *Task) IsDueOn(now time.Time) bool {
	if t.DueDate == nil {
		return false
	}
	return DateOf(t.DueDate.In(now.Location())) == DateOf(now)
}

// Clone returns a deep copy of the task.
func (t *Task) Clone() *Task {
	c := *t
	if t.DueDate != nil {
		due := *t.DueDate
		c.DueDate = &due
	}
	if t.ParentID != nil {
		parent := *t.ParentID
		c.ParentID = &parent
	}
	return &c
}

// TaskDraft contains the fields of a task to be created.
// Fields are ordered to minimize memory padding.
type TaskDraft struct {
	DueDate     *time.Time
	ParentID    *string
	Title       string
	Description string
	Category    string
	Priority    Priority // 0 = DefaultPriority
	AIGenerated bool
}

// TaskPatch contains a partial update of a task.
// Nil fields are left unchanged.
// Fields are ordered to minimize memory padding.
type TaskPatch struct {
	Title        *string
	Description  *string
	Category     *string
	Status       *Status
	Priority     *Priority
	DueDate      *time.Time
	ID           string
	ClearDueDate bool // Remove the due date (ignored if DueDate is set)
}

// IsEmpty returns true if the patch changes nothing.
func (p TaskPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Category == nil &&
		p.Status == nil && p.Priority == nil && p.DueDate == nil && !p.ClearDueDate
}

// SubtaskDraft is a subtask suggested by the language model.
type SubtaskDraft struct {
	Priority *Priority `json:"priority,omitempty"`
	Title    string    `json:"title"`
}

// RemoteIntent is the interpretation returned by the language model.
// DueDate is an absolute instant; callers convert it to a calendar date.
type RemoteIntent struct {
	Priority *Priority
	DueDate  *time.Time
	Title    string
	Category string
}
