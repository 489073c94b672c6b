package usecase

import (
	"context"
	"fmt"

	"github.com/liang/fanqie/internal/domain"
)

// ToggleTaskInput contains the parameters for toggling a task.
type ToggleTaskInput struct {
	TaskID string
}

// ToggleTaskOutput contains the result of toggling a task.
type ToggleTaskOutput struct {
	Task *domain.Task
}

// ToggleTask flips a task between done and not done.
type ToggleTask struct {
	tasks  domain.TaskRepository
	tree   *domain.TaskTree
	logger domain.Logger
}

// NewToggleTask creates a new ToggleTask use case.
func NewToggleTask(tasks domain.TaskRepository, tree *domain.TaskTree, logger domain.Logger) *ToggleTask {
	return &ToggleTask{
		tasks:  tasks,
		tree:   tree,
		logger: logger,
	}
}

// Execute toggles the task: completed becomes pending, anything else
// becomes completed.
func (uc *ToggleTask) Execute(ctx context.Context, in ToggleTaskInput) (*ToggleTaskOutput, error) {
	current := uc.tree.Get(in.TaskID)
	if current == nil {
		return nil, domain.ErrTaskNotFound
	}

	task, err := applyStatus(ctx, uc.tasks, uc.tree, current.ID, current.Status.Toggle())
	if err != nil {
		return nil, err
	}

	if uc.logger != nil {
		uc.logger.Info(task.ID, "status", fmt.Sprintf("%s -> %s", current.Status, task.Status))
	}

	return &ToggleTaskOutput{Task: task}, nil
}
