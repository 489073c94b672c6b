package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/liang/fanqie/internal/domain"
)

// DecomposeTaskInput contains the parameters for breaking a task down.
type DecomposeTaskInput struct {
	TaskID string // Parent task ID
}

// SubtaskFailure is a suggested subtask that could not be created.
type SubtaskFailure struct {
	Err   error
	Draft domain.SubtaskDraft
}

// DecomposeTaskOutput contains the result of breaking a task down.
type DecomposeTaskOutput struct {
	Created []*domain.Task   // Subtasks created, in suggestion order
	Failed  []SubtaskFailure // Suggestions whose creation failed
}

// DecomposeTask asks the language model for subtasks and creates them.
type DecomposeTask struct {
	tasks  domain.TaskRepository
	tree   *domain.TaskTree
	model  domain.LanguageModel
	access *ModelAccess
	logger domain.Logger
}

// NewDecomposeTask creates a new DecomposeTask use case.
func NewDecomposeTask(
	tasks domain.TaskRepository,
	tree *domain.TaskTree,
	model domain.LanguageModel,
	access *ModelAccess,
	logger domain.Logger,
) *DecomposeTask {
	return &DecomposeTask{
		tasks:  tasks,
		tree:   tree,
		model:  model,
		access: access,
		logger: logger,
	}
}

// Execute creates one AI-generated subtask per suggestion.
// Creation is best effort: a failed subtask is recorded and the rest are
// still attempted. Nothing is rolled back or retried. If every creation
// fails, the joined errors are returned wrapped in domain.ErrPersistenceFailed.
func (uc *DecomposeTask) Execute(ctx context.Context, in DecomposeTaskInput) (*DecomposeTaskOutput, error) {
	parent := uc.tree.Get(in.TaskID)
	if parent == nil {
		return nil, domain.ErrTaskNotFound
	}
	if !parent.IsTopLevel() {
		return nil, domain.ErrNestedSubtask
	}

	creds, err := uc.access.Credentials()
	if err != nil {
		if errors.Is(err, domain.ErrRemoteUnavailable) {
			return nil, domain.ErrDecompositionUnavailable
		}
		return nil, err
	}
	if uc.model == nil {
		return nil, domain.ErrDecompositionUnavailable
	}

	drafts, err := uc.model.Decompose(ctx, creds, parent.Title)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrRemoteCallFailed, err)
	}

	out := &DecomposeTaskOutput{}
	var errs []error
	for _, draft := range drafts {
		priority := domain.DefaultPriority
		if draft.Priority != nil {
			priority = *draft.Priority
		}
		parentID := parent.ID

		task, err := uc.tasks.Create(ctx, domain.TaskDraft{
			Title:       draft.Title,
			Priority:    priority,
			ParentID:    &parentID,
			AIGenerated: true,
		})
		if err != nil {
			out.Failed = append(out.Failed, SubtaskFailure{Draft: draft, Err: err})
			errs = append(errs, fmt.Errorf("create subtask %q: %w", draft.Title, err))
			if uc.logger != nil {
				uc.logger.Error(parent.ID, "breakdown", fmt.Sprintf("create subtask %q: %v", draft.Title, err))
			}
			continue
		}
		uc.tree.RecordCreated(task)
		out.Created = append(out.Created, task)
	}

	if uc.logger != nil {
		uc.logger.Info(parent.ID, "breakdown", fmt.Sprintf("created %d of %d subtask(s)", len(out.Created), len(drafts)))
	}

	if len(out.Created) == 0 && len(errs) > 0 {
		return out, fmt.Errorf("%w: %w", domain.ErrPersistenceFailed, errors.Join(errs...))
	}
	return out, nil
}
