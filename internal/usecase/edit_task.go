package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/liang/fanqie/internal/domain"
)

// EditTaskInput contains the parameters for editing a task.
// All fields except TaskID are optional. Only non-nil fields are updated.
// Fields are ordered to minimize memory padding.
type EditTaskInput struct {
	Title        *string          // New title (empty = placeholder title)
	Priority     *domain.Priority // New priority
	DueDate      *domain.Date     // New due date
	TaskID       string           // Task ID to edit (required)
	ClearDueDate bool             // Remove the due date
}

// EditTaskOutput contains the result of editing a task.
type EditTaskOutput struct {
	Task *domain.Task // The updated task
}

// EditTask is the use case for editing an existing task.
type EditTask struct {
	tasks  domain.TaskRepository
	tree   *domain.TaskTree
	clock  domain.Clock
	logger domain.Logger
}

// NewEditTask creates a new EditTask use case.
func NewEditTask(tasks domain.TaskRepository, tree *domain.TaskTree, clock domain.Clock, logger domain.Logger) *EditTask {
	return &EditTask{
		tasks:  tasks,
		tree:   tree,
		clock:  clock,
		logger: logger,
	}
}

// Execute edits a task with the given input.
func (uc *EditTask) Execute(ctx context.Context, in EditTaskInput) (*EditTaskOutput, error) {
	patch := domain.TaskPatch{
		ID:           in.TaskID,
		Priority:     in.Priority,
		ClearDueDate: in.ClearDueDate,
	}
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			title = domain.UntitledTask
		}
		patch.Title = &title
	}
	if in.DueDate != nil {
		due := in.DueDate.Midnight(uc.clock.Now().Location())
		patch.DueDate = &due
	}
	if patch.IsEmpty() {
		return nil, domain.ErrNoFieldsToUpdate
	}

	if uc.tree.Get(in.TaskID) == nil {
		return nil, domain.ErrTaskNotFound
	}

	task, err := uc.tasks.Update(ctx, patch)
	if err != nil {
		return nil, persistenceError("update task", err)
	}
	uc.tree.RecordUpdated(task)

	if uc.logger != nil {
		uc.logger.Info(task.ID, "task", fmt.Sprintf("edited: %q", task.Title))
	}

	return &EditTaskOutput{Task: task}, nil
}
