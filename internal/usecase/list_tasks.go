package usecase

import (
	"context"

	"github.com/liang/fanqie/internal/domain"
)

// ListTasksInput contains the parameters for listing tasks.
type ListTasksInput struct {
	Filter domain.FilterKey // Filter over top-level tasks (empty = all)
}

// TaskNode is a top-level task with its direct subtasks.
type TaskNode struct {
	Task     *domain.Task
	Children []*domain.Task
}

// ListTasksOutput contains the result of listing tasks.
type ListTasksOutput struct {
	Nodes []TaskNode
	Stats domain.TaskStats
}

// ListTasks reads the filtered view from the tree.
type ListTasks struct {
	tree  *domain.TaskTree
	clock domain.Clock
}

// NewListTasks creates a new ListTasks use case.
func NewListTasks(tree *domain.TaskTree, clock domain.Clock) *ListTasks {
	return &ListTasks{
		tree:  tree,
		clock: clock,
	}
}

// Execute lists the top-level tasks matching the filter, each with its
// direct children, plus statistics over the whole collection.
func (uc *ListTasks) Execute(_ context.Context, in ListTasksInput) (*ListTasksOutput, error) {
	key, err := domain.ParseFilterKey(string(in.Filter))
	if err != nil {
		return nil, err
	}

	now := uc.clock.Now()
	top := uc.tree.Filter(key, now)
	nodes := make([]TaskNode, 0, len(top))
	for _, task := range top {
		nodes = append(nodes, TaskNode{
			Task:     task,
			Children: uc.tree.ChildrenOf(task.ID),
		})
	}

	return &ListTasksOutput{
		Nodes: nodes,
		Stats: uc.tree.Stats(now),
	}, nil
}
