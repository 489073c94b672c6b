package usecase

import (
	"context"

	"github.com/liang/fanqie/internal/domain"
)

// LoadTasksInput contains the parameters for loading tasks.
type LoadTasksInput struct{}

// LoadTasksOutput contains the result of loading tasks.
type LoadTasksOutput struct {
	Count int // Number of tasks loaded
}

// LoadTasks fills the task tree from the repository.
type LoadTasks struct {
	tasks domain.TaskRepository
	tree  *domain.TaskTree
}

// NewLoadTasks creates a new LoadTasks use case.
func NewLoadTasks(tasks domain.TaskRepository, tree *domain.TaskTree) *LoadTasks {
	return &LoadTasks{
		tasks: tasks,
		tree:  tree,
	}
}

// Execute replaces the cached collection with the stored one.
// On failure the cache is left as it was.
func (uc *LoadTasks) Execute(ctx context.Context, _ LoadTasksInput) (*LoadTasksOutput, error) {
	tasks, err := uc.tasks.List(ctx)
	if err != nil {
		return nil, persistenceError("list tasks", err)
	}
	uc.tree.Replace(tasks)
	return &LoadTasksOutput{Count: len(tasks)}, nil
}
