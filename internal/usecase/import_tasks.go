package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/liang/fanqie/internal/domain"
	"gopkg.in/yaml.v3"
)

// ImportTasksInput contains the parameters for importing tasks.
type ImportTasksInput struct {
	Content string // YAML list of tasks
}

// ImportTasksOutput contains the result of importing tasks.
type ImportTasksOutput struct {
	Created []*domain.Task // Created tasks, parents before their subtasks
}

// importItem is one entry of an import file.
//
//	- title: 写论文
//	  priority: 1
//	  due: 2026-10-20
//	  subtasks:
//	    - title: 查资料
type importItem struct {
	Title    string       `yaml:"title"`
	Category string       `yaml:"category"`
	Due      yamlScalar   `yaml:"due"`
	Subtasks []importItem `yaml:"subtasks"`
	Priority int          `yaml:"priority"`
}

// yamlScalar keeps the literal text of a scalar, so unquoted dates are
// not turned into timestamps.
type yamlScalar string

func (s *yamlScalar) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: expected a scalar", node.Line)
	}
	*s = yamlScalar(node.Value)
	return nil
}

// ImportTasks creates a batch of tasks from a YAML document.
type ImportTasks struct {
	tasks  domain.TaskRepository
	tree   *domain.TaskTree
	clock  domain.Clock
	logger domain.Logger
}

// NewImportTasks creates a new ImportTasks use case.
func NewImportTasks(tasks domain.TaskRepository, tree *domain.TaskTree, clock domain.Clock, logger domain.Logger) *ImportTasks {
	return &ImportTasks{
		tasks:  tasks,
		tree:   tree,
		clock:  clock,
		logger: logger,
	}
}

// Execute validates the whole document, then creates the tasks in order.
// Nothing is created if validation fails. A store failure stops the import;
// tasks created before it are kept and returned with the error.
func (uc *ImportTasks) Execute(ctx context.Context, in ImportTasksInput) (*ImportTasksOutput, error) {
	var items []importItem
	if err := yaml.Unmarshal([]byte(in.Content), &items); err != nil {
		return nil, fmt.Errorf("parse import file: %w", err)
	}
	if len(items) == 0 {
		return nil, domain.ErrEmptyImport
	}

	loc := uc.clock.Now().Location()
	for i := range items {
		if err := validateImportItem(&items[i], fmt.Sprintf("task %d", i+1), true); err != nil {
			return nil, err
		}
	}

	out := &ImportTasksOutput{}
	for _, item := range items {
		if err := uc.create(ctx, item, nil, loc, out); err != nil {
			return out, err
		}
	}

	if uc.logger != nil {
		uc.logger.Info("", "import", fmt.Sprintf("imported %d task(s)", len(out.Created)))
	}
	return out, nil
}

func (uc *ImportTasks) create(ctx context.Context, item importItem, parentID *string, loc *time.Location, out *ImportTasksOutput) error {
	draft := domain.TaskDraft{
		Title:    item.Title,
		Category: item.Category,
		Priority: domain.Priority(item.Priority),
		ParentID: parentID,
	}
	if item.Due != "" {
		due, _ := domain.ParseDate(string(item.Due)) // validated already
		midnight := due.Midnight(loc)
		draft.DueDate = &midnight
	}

	task, err := uc.tasks.Create(ctx, draft)
	if err != nil {
		return persistenceError(fmt.Sprintf("create task %q", item.Title), err)
	}
	uc.tree.RecordCreated(task)
	out.Created = append(out.Created, task)

	for _, sub := range item.Subtasks {
		id := task.ID
		if err := uc.create(ctx, sub, &id, loc, out); err != nil {
			return err
		}
	}
	return nil
}

// validateImportItem checks one entry. Only top-level entries may list subtasks.
func validateImportItem(item *importItem, path string, topLevel bool) error {
	item.Title = strings.TrimSpace(item.Title)
	if item.Title == "" {
		return fmt.Errorf("%s: %w", path, domain.ErrEmptyTitle)
	}
	if item.Due != "" {
		if _, err := domain.ParseDate(string(item.Due)); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}
	if !topLevel && len(item.Subtasks) > 0 {
		return fmt.Errorf("%s: %w", path, domain.ErrNestedSubtask)
	}
	for i := range item.Subtasks {
		if err := validateImportItem(&item.Subtasks[i], fmt.Sprintf("%s.%d", path, i+1), false); err != nil {
			return err
		}
	}
	return nil
}
