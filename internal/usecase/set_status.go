package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/liang/fanqie/internal/domain"
)

// SetStatusInput contains the parameters for changing a task's status.
type SetStatusInput struct {
	TaskID string
	Status domain.Status
}

// SetStatusOutput contains the result of changing a task's status.
type SetStatusOutput struct {
	Task     *domain.Task
	Previous domain.Status
}

// SetStatus moves a task to an explicit status.
type SetStatus struct {
	tasks  domain.TaskRepository
	tree   *domain.TaskTree
	logger domain.Logger
}

// NewSetStatus creates a new SetStatus use case.
func NewSetStatus(tasks domain.TaskRepository, tree *domain.TaskTree, logger domain.Logger) *SetStatus {
	return &SetStatus{
		tasks:  tasks,
		tree:   tree,
		logger: logger,
	}
}

// Execute changes the status. Setting the current status is a no-op.
func (uc *SetStatus) Execute(ctx context.Context, in SetStatusInput) (*SetStatusOutput, error) {
	if !in.Status.IsValid() {
		return nil, fmt.Errorf("%w: %q (valid: %s)", domain.ErrInvalidStatus, in.Status, validStatuses())
	}

	current := uc.tree.Get(in.TaskID)
	if current == nil {
		return nil, domain.ErrTaskNotFound
	}
	if current.Status == in.Status {
		return &SetStatusOutput{Task: current, Previous: current.Status}, nil
	}
	if !current.Status.CanTransitionTo(in.Status) {
		return nil, fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, current.Status, in.Status)
	}

	task, err := applyStatus(ctx, uc.tasks, uc.tree, current.ID, in.Status)
	if err != nil {
		return nil, err
	}

	if uc.logger != nil {
		uc.logger.Info(task.ID, "status", fmt.Sprintf("%s -> %s", current.Status, task.Status))
	}

	return &SetStatusOutput{Task: task, Previous: current.Status}, nil
}

func validStatuses() string {
	names := make([]string, 0, 3)
	for _, s := range domain.AllStatuses() {
		names = append(names, string(s))
	}
	return strings.Join(names, ", ")
}

// applyStatus persists a status change and records it in the tree.
func applyStatus(ctx context.Context, tasks domain.TaskRepository, tree *domain.TaskTree, id string, status domain.Status) (*domain.Task, error) {
	task, err := tasks.Update(ctx, domain.TaskPatch{ID: id, Status: &status})
	if err != nil {
		return nil, persistenceError("update status", err)
	}
	tree.RecordUpdated(task)
	return task, nil
}
