package domain

// Status represents the lifecycle state of a task.
type Status string

const (
	StatusPending    Status = "pending"     // Created, not started
	StatusInProgress Status = "in_progress" // Being worked on
	StatusCompleted  Status = "completed"   // Done
)

// AllStatuses returns all valid status values.
func AllStatuses() []Status {
	return []Status{
		StatusPending,
		StatusInProgress,
		StatusCompleted,
	}
}

// IsValid returns true if the status is a known valid value.
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	default:
		return false
	}
}

// CanTransitionTo returns true if the status can transition to the target status.
// Every pair of distinct valid statuses is connected.
func (s Status) CanTransitionTo(target Status) bool {
	return s.IsValid() && target.IsValid() && s != target
}

// Toggle returns the status reached by the done/undone toggle.
// Completed tasks reopen as pending; anything else, including
// in_progress, becomes completed.
func (s Status) Toggle() Status {
	if s == StatusCompleted {
		return StatusPending
	}
	return StatusCompleted
}

// Display returns a human-readable representation of the status.
func (s Status) Display() string {
	switch s {
	case StatusPending:
		return "Pending"
	case StatusInProgress:
		return "In Progress"
	case StatusCompleted:
		return "Completed"
	default:
		return string(s)
	}
}
