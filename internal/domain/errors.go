package domain

import "errors"

// Domain errors.
var (
	ErrTaskNotFound             = errors.New("task not found")
	ErrParentNotFound           = errors.New("parent task not found")
	ErrNestedSubtask            = errors.New("subtasks cannot have subtasks")
	ErrAmbiguousTaskID          = errors.New("task ID prefix matches more than one task")
	ErrEmptyTitle               = errors.New("title cannot be empty")
	ErrNoFieldsToUpdate         = errors.New("no fields to update")
	ErrInvalidStatus            = errors.New("invalid status")
	ErrInvalidTransition        = errors.New("invalid status transition")
	ErrInvalidFilter            = errors.New("invalid filter (valid: all, today, completed)")
	ErrEmptyAPIKey              = errors.New("API key cannot be empty")
	ErrEmptyImport              = errors.New("no tasks to import")
	ErrRemoteUnavailable        = errors.New("language model is not configured")
	ErrRemoteCallFailed         = errors.New("language model call failed")
	ErrPersistenceFailed        = errors.New("task store operation failed")
	ErrDecompositionUnavailable = errors.New("task breakdown requires a configured API key")
)
