package usecase

import (
	"context"
	"testing"

	"github.com/liang/fanqie/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImportTasks(t *testing.T) {
	f := newFixture(t)
	uc := NewImportTasks(f.repo, f.tree, f.clock, f.logger)

	out, err := uc.Execute(context.Background(), ImportTasksInput{Content: `
- title: 写论文
  priority: 1
  due: 2026-10-20
  subtasks:
    - title: 查资料
    - title: 写初稿
      priority: 3
- title: 买菜
  category: 生活
`})

	require.NoError(t, err)
	require.Len(t, out.Created, 4)
	assert.Equal(t, "写论文", out.Created[0].Title)
	assert.Equal(t, domain.PriorityHigh, out.Created[0].Priority)
	assert.Equal(t, "2026-10-20", domain.DateOf(*out.Created[0].DueDate).String())

	parentID := out.Created[0].ID
	assert.Equal(t, parentID, *out.Created[1].ParentID)
	assert.Equal(t, parentID, *out.Created[2].ParentID)
	assert.Equal(t, domain.PriorityMedium, out.Created[1].Priority)
	assert.Equal(t, domain.PriorityLow, out.Created[2].Priority)

	assert.Equal(t, "买菜", out.Created[3].Title)
	assert.Equal(t, "生活", out.Created[3].Category)
	assert.Nil(t, out.Created[3].ParentID)

	assert.Len(t, f.tree.TopLevel(), 2)
	assert.Len(t, f.tree.ChildrenOf(parentID), 2)
}

func TestImportTasks_ValidatesBeforeCreating(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{name: "empty document", content: "", wantErr: domain.ErrEmptyImport},
		{name: "empty list", content: "[]", wantErr: domain.ErrEmptyImport},
		{name: "blank subtask title", content: "- title: ok\n  subtasks:\n    - title: ' '\n", wantErr: domain.ErrEmptyTitle},
		{name: "subtask with subtasks", content: "- title: ok\n  subtasks:\n    - title: child\n      subtasks:\n        - title: grandchild\n", wantErr: domain.ErrNestedSubtask},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			_, err := NewImportTasks(f.repo, f.tree, f.clock, f.logger).Execute(context.Background(), ImportTasksInput{Content: tt.content})

			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, 0, f.repo.CreateCalls)
		})
	}
}

func TestImportTasks_InvalidInput(t *testing.T) {
	f := newFixture(t)
	uc := NewImportTasks(f.repo, f.tree, f.clock, f.logger)

	_, err := uc.Execute(context.Background(), ImportTasksInput{Content: "title: not a list"})
	require.Error(t, err)

	_, err = uc.Execute(context.Background(), ImportTasksInput{Content: "- title: x\n  due: someday\n"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "task 1")

	assert.Equal(t, 0, f.repo.CreateCalls)
}

func TestImportTasks_StopsOnStoreFailure(t *testing.T) {
	f := newFixture(t)
	f.repo.CreateErrAt = map[int]error{2: assert.AnError}

	out, err := NewImportTasks(f.repo, f.tree, f.clock, f.logger).Execute(context.Background(), ImportTasksInput{Content: "- title: a\n- title: b\n- title: c\n"})

	assert.ErrorIs(t, err, domain.ErrPersistenceFailed)
	require.NotNil(t, out)
	require.Len(t, out.Created, 1)
	assert.Equal(t, 1, f.tree.Len())
}
