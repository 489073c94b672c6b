package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/liang/fanqie/internal/domain"
)

// AddTaskInput contains the parameters for adding a task.
// Priority and DueDate are the form values; hints found in Text win over them.
// Fields are ordered to minimize memory padding.
type AddTaskInput struct {
	DueDate  *domain.Date     // Due date from the form (optional)
	Priority *domain.Priority // Priority from the form (optional, nil = medium)
	ParentID *string          // Parent task ID (optional, nil = top-level)
	Text     string           // Free-form text (required)
	Category string           // Category (optional)
}

// AddTaskOutput contains the result of adding a task.
type AddTaskOutput struct {
	Task   *domain.Task
	Source IntentSource // Parser that interpreted Text
}

// AddTask is the use case for creating a task from free-form text.
type AddTask struct {
	tasks    domain.TaskRepository
	tree     *domain.TaskTree
	resolver *IntentResolver
	access   *ModelAccess
	clock    domain.Clock
	logger   domain.Logger
}

// NewAddTask creates a new AddTask use case.
func NewAddTask(
	tasks domain.TaskRepository,
	tree *domain.TaskTree,
	resolver *IntentResolver,
	access *ModelAccess,
	clock domain.Clock,
	logger domain.Logger,
) *AddTask {
	return &AddTask{
		tasks:    tasks,
		tree:     tree,
		resolver: resolver,
		access:   access,
		clock:    clock,
		logger:   logger,
	}
}

// Execute interprets the text, creates the task and records it in the tree.
// Remote interpretation failures are not reported; the local rules are used.
func (uc *AddTask) Execute(ctx context.Context, in AddTaskInput) (*AddTaskOutput, error) {
	text := strings.TrimSpace(in.Text)
	if text == "" {
		return nil, domain.ErrEmptyTitle
	}

	if in.ParentID != nil {
		parent := uc.tree.Get(*in.ParentID)
		if parent == nil {
			return nil, domain.ErrParentNotFound
		}
		if !parent.IsTopLevel() {
			return nil, domain.ErrNestedSubtask
		}
	}

	result := uc.resolver.Resolve(ctx, text, uc.access.Ready())
	intent := result.Intent

	draft := domain.TaskDraft{
		Title:    intent.Title,
		Category: in.Category,
		ParentID: in.ParentID,
		Priority: domain.DefaultPriority,
	}
	if in.Priority != nil {
		draft.Priority = *in.Priority
	}
	if intent.Priority != nil {
		draft.Priority = *intent.Priority
	}

	due := in.DueDate
	if intent.DueDate != nil {
		due = intent.DueDate
	}
	if due != nil {
		midnight := due.Midnight(uc.clock.Now().Location())
		draft.DueDate = &midnight
	}

	task, err := uc.tasks.Create(ctx, draft)
	if err != nil {
		return nil, persistenceError("create task", err)
	}
	uc.tree.RecordCreated(task)

	if uc.logger != nil {
		uc.logger.Info(task.ID, "task", fmt.Sprintf("created (%s): %q", result.Source, task.Title))
	}

	return &AddTaskOutput{Task: task, Source: result.Source}, nil
}
