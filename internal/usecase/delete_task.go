package usecase

import (
	"context"
	"fmt"

	"github.com/liang/fanqie/internal/domain"
)

// DeleteTaskInput contains the parameters for deleting a task.
type DeleteTaskInput struct {
	TaskID string // Task ID to delete
}

// DeleteTaskOutput contains the result of deleting a task.
type DeleteTaskOutput struct {
	DeletedIDs map[string]struct{} // The task and all of its descendants
}

// DeleteTask is the use case for deleting a task and its subtasks.
type DeleteTask struct {
	tasks  domain.TaskRepository
	tree   *domain.TaskTree
	logger domain.Logger
}

// NewDeleteTask creates a new DeleteTask use case.
func NewDeleteTask(tasks domain.TaskRepository, tree *domain.TaskTree, logger domain.Logger) *DeleteTask {
	return &DeleteTask{
		tasks:  tasks,
		tree:   tree,
		logger: logger,
	}
}

// Execute deletes the task. The repository removes descendants itself;
// the tree is pruned of the whole cascade set once the delete succeeds.
func (uc *DeleteTask) Execute(ctx context.Context, in DeleteTaskInput) (*DeleteTaskOutput, error) {
	if uc.tree.Get(in.TaskID) == nil {
		return nil, domain.ErrTaskNotFound
	}

	ids := uc.tree.CascadeDeleteIDs(in.TaskID)

	if err := uc.tasks.Delete(ctx, in.TaskID); err != nil {
		return nil, persistenceError("delete task", err)
	}
	uc.tree.RecordDeletedSet(ids)

	if uc.logger != nil {
		uc.logger.Info(in.TaskID, "task", fmt.Sprintf("deleted with %d subtask(s)", len(ids)-1))
	}

	return &DeleteTaskOutput{DeletedIDs: ids}, nil
}
