package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/liang/fanqie/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

var today = domain.DateOf(testNow)

// =============================================================================
// add / parse
// =============================================================================

func TestAddCommand_LocalKeywords(t *testing.T) {
	env := newTestEnv()

	stdout, _, err := env.run(t, "", "add", "完成报告", "高", "明天")

	require.NoError(t, err)
	assert.Contains(t, stdout, "Created task task-1: 完成报告")
	require.Len(t, env.repo.Tasks, 1)
	created := env.repo.Tasks[0]
	assert.Equal(t, "完成报告", created.Title)
	assert.Equal(t, domain.PriorityHigh, created.Priority)
	require.NotNil(t, created.DueDate)
	assert.Equal(t, today.AddDays(1), domain.DateOf(*created.DueDate))
}

func TestAddCommand_Flags(t *testing.T) {
	env := newTestEnv()
	env.repo.Seed(newTask("parent-1", "写论文"))

	_, _, err := env.run(t, "", "add", "--parent", "parent", "--priority", "3", "--due", "2026-10-20", "--category", "学习", "查资料")

	require.NoError(t, err)
	created := env.repo.Tasks[0]
	require.NotNil(t, created.ParentID)
	assert.Equal(t, "parent-1", *created.ParentID)
	assert.Equal(t, domain.PriorityLow, created.Priority)
	assert.Equal(t, "学习", created.Category)
	require.NotNil(t, created.DueDate)
	assert.Equal(t, "2026-10-20", domain.DateOf(*created.DueDate).String())
}

func TestAddCommand_RejectsSubtaskParent(t *testing.T) {
	env := newTestEnv()
	env.repo.Seed(newTask("paper-1", "写论文"), newSubtask("sub-1", "查资料", "paper-1"))

	_, _, err := env.run(t, "", "add", "--parent", "sub-1", "孙任务")

	assert.ErrorIs(t, err, domain.ErrNestedSubtask)
	assert.Len(t, env.repo.Tasks, 2)
}

func TestAddCommand_InvalidDue(t *testing.T) {
	env := newTestEnv()

	_, _, err := env.run(t, "", "add", "--due", "next week", "x")

	require.Error(t, err)
	assert.Empty(t, env.repo.Tasks)
}

func TestAddCommand_UnknownParent(t *testing.T) {
	env := newTestEnv()

	_, _, err := env.run(t, "", "add", "--parent", "nope", "x")

	assert.ErrorIs(t, err, domain.ErrTaskNotFound)
}

func TestAddCommand_RemoteFailureFallsBackSilently(t *testing.T) {
	env := newTestEnv()
	env.creds.Key = "sk-test"
	env.model.InterpretErr = assert.AnError

	stdout, _, err := env.run(t, "", "add", "买菜", "低")

	require.NoError(t, err)
	assert.Contains(t, stdout, "Created task")
	assert.Equal(t, 1, env.model.InterpretCall)
	assert.Equal(t, domain.PriorityLow, env.repo.Tasks[0].Priority)
}

func TestAddCommand_RequiresText(t *testing.T) {
	env := newTestEnv()

	_, _, err := env.run(t, "", "add")

	assert.Error(t, err)
}

func TestParseCommand_Local(t *testing.T) {
	env := newTestEnv()

	stdout, _, err := env.run(t, "", "parse", "完成报告", "高", "今天")

	require.NoError(t, err)
	assert.Contains(t, stdout, "Title:    完成报告")
	assert.Contains(t, stdout, "Due:      "+today.String())
	assert.Contains(t, stdout, "Source:   local")
	assert.Empty(t, env.repo.Tasks, "parse never creates a task")
}

func TestParseCommand_RemoteFailureShowsLocalResult(t *testing.T) {
	env := newTestEnv()
	env.creds.Key = "sk-test"
	env.model.InterpretErr = assert.AnError

	stdout, _, err := env.run(t, "", "parse", "买菜")

	assert.ErrorIs(t, err, domain.ErrRemoteCallFailed)
	assert.Contains(t, stdout, "Title:    买菜")
	assert.Contains(t, stdout, "Source:   local")
}

func TestParseCommand_Remote(t *testing.T) {
	env := newTestEnv()
	env.creds.Key = "sk-test"
	env.model.Intent = &domain.RemoteIntent{Title: "整理房间", Priority: domain.PriorityPtr(domain.PriorityHigh)}

	stdout, _, err := env.run(t, "", "parse", "今天得把房间收拾一下")

	require.NoError(t, err)
	assert.Contains(t, stdout, "Title:    整理房间")
	assert.Contains(t, stdout, "Due:      -")
	assert.Contains(t, stdout, "Source:   remote")
}

// =============================================================================
// list
// =============================================================================

func seedTree(env *testEnv) {
	done := newTask("done-1", "买菜")
	done.Status = domain.StatusCompleted
	paper := newTask("paper-1", "写论文")
	paper.DueDate = dueOn(today)
	env.repo.Seed(
		paper,
		newSubtask("sub-1", "查资料", "paper-1"),
		done,
	)
}

func TestListCommand_Text(t *testing.T) {
	env := newTestEnv()
	seedTree(env)

	stdout, _, err := env.run(t, "", "list")

	require.NoError(t, err)
	assert.Contains(t, stdout, "3 tasks · 1 completed · 1 due today")
	assert.Contains(t, stdout, "写论文")
	assert.Contains(t, stdout, "("+today.String()+")")
	assert.Contains(t, stdout, "    [ ] sub-1")
	assert.Contains(t, stdout, "[x] done-1")
}

func TestListCommand_Empty(t *testing.T) {
	env := newTestEnv()

	stdout, _, err := env.run(t, "", "list")

	require.NoError(t, err)
	assert.Contains(t, stdout, "No tasks.")
}

func TestListCommand_FilterCompleted(t *testing.T) {
	env := newTestEnv()
	seedTree(env)

	stdout, _, err := env.run(t, "", "list", "--filter", "completed")

	require.NoError(t, err)
	assert.Contains(t, stdout, "买菜")
	assert.NotContains(t, stdout, "写论文")
}

func TestListCommand_InvalidFilter(t *testing.T) {
	env := newTestEnv()

	_, _, err := env.run(t, "", "list", "--filter", "week")

	assert.ErrorIs(t, err, domain.ErrInvalidFilter)
}

func TestListCommand_JSON(t *testing.T) {
	env := newTestEnv()
	seedTree(env)

	stdout, _, err := env.run(t, "", "list", "--filter", "today", "--format", "json")
	require.NoError(t, err)

	var view listedView
	require.NoError(t, json.Unmarshal([]byte(stdout), &view))
	require.Len(t, view.Tasks, 1)
	assert.Equal(t, "paper-1", view.Tasks[0].ID)
	require.NotNil(t, view.Tasks[0].DueDate)
	assert.Equal(t, today.String(), *view.Tasks[0].DueDate)
	require.Len(t, view.Tasks[0].Subtasks, 1)
	assert.Equal(t, "查资料", view.Tasks[0].Subtasks[0].Title)
	assert.Equal(t, 3, view.Stats.Total)
}

func TestListCommand_YAML(t *testing.T) {
	env := newTestEnv()
	seedTree(env)

	stdout, _, err := env.run(t, "", "list", "-o", "yaml")
	require.NoError(t, err)

	var view listedView
	require.NoError(t, yaml.Unmarshal([]byte(stdout), &view))
	assert.Len(t, view.Tasks, 2)
	assert.Equal(t, 1, view.Stats.Completed)
}

func TestListCommand_UnknownFormat(t *testing.T) {
	env := newTestEnv()

	_, _, err := env.run(t, "", "list", "--format", "xml")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown format")
}

// =============================================================================
// done / start / edit / rm
// =============================================================================

func TestDoneCommand_Toggles(t *testing.T) {
	env := newTestEnv()
	env.repo.Seed(newTask("task-a", "买菜"))

	stdout, _, err := env.run(t, "", "done", "task-a")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Completed task task-a")
	assert.Equal(t, domain.StatusCompleted, env.repo.Tasks[0].Status)

	stdout, _, err = env.run(t, "", "done", "task-a")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Reopened task task-a")
	assert.Equal(t, domain.StatusPending, env.repo.Tasks[0].Status)
}

func TestDoneCommand_AmbiguousPrefix(t *testing.T) {
	env := newTestEnv()
	env.repo.Seed(newTask("abc-1", "a"), newTask("abc-2", "b"))

	_, _, err := env.run(t, "", "done", "abc")

	assert.ErrorIs(t, err, domain.ErrAmbiguousTaskID)
}

func TestStartCommand(t *testing.T) {
	env := newTestEnv()
	env.repo.Seed(newTask("task-a", "买菜"))

	stdout, _, err := env.run(t, "", "start", "task-a")

	require.NoError(t, err)
	assert.Contains(t, stdout, "Started task task-a: 买菜 (was Pending)")
	assert.Equal(t, domain.StatusInProgress, env.repo.Tasks[0].Status)
}

func TestEditCommand_Fields(t *testing.T) {
	env := newTestEnv()
	env.repo.Seed(newTask("task-a", "买菜"))

	stdout, _, err := env.run(t, "", "edit", "task-a", "--title", "买水果", "--priority", "1", "--due", "2026-10-16")

	require.NoError(t, err)
	assert.Contains(t, stdout, "Updated task task-a: 买水果")
	edited := env.repo.Tasks[0]
	assert.Equal(t, "买水果", edited.Title)
	assert.Equal(t, domain.PriorityHigh, edited.Priority)
	require.NotNil(t, edited.DueDate)
	assert.Equal(t, "2026-10-16", domain.DateOf(*edited.DueDate).String())
}

func TestEditCommand_EmptyTitleUsesPlaceholder(t *testing.T) {
	env := newTestEnv()
	env.repo.Seed(newTask("task-a", "买菜"))

	_, _, err := env.run(t, "", "edit", "task-a", "--title", "")

	require.NoError(t, err)
	assert.Equal(t, domain.UntitledTask, env.repo.Tasks[0].Title)
}

func TestEditCommand_ClearDue(t *testing.T) {
	env := newTestEnv()
	task := newTask("task-a", "买菜")
	task.DueDate = dueOn(today)
	env.repo.Seed(task)

	_, _, err := env.run(t, "", "edit", "task-a", "--clear-due")

	require.NoError(t, err)
	assert.Nil(t, env.repo.Tasks[0].DueDate)
}

func TestEditCommand_Errors(t *testing.T) {
	env := newTestEnv()
	env.repo.Seed(newTask("task-a", "买菜"))

	_, _, err := env.run(t, "", "edit", "task-a")
	assert.ErrorIs(t, err, domain.ErrNoFieldsToUpdate)

	_, _, err = env.run(t, "", "edit", "task-a", "--due", "2026-10-16", "--clear-due")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--clear-due")

	_, _, err = env.run(t, "", "edit", "missing", "--title", "x")
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)
}

func TestRmCommand_Cascades(t *testing.T) {
	env := newTestEnv()
	seedTree(env)

	stdout, _, err := env.run(t, "", "rm", "paper-1")

	require.NoError(t, err)
	assert.Contains(t, stdout, "Deleted task paper-1: 写论文 (and 1 subtask(s))")
	assert.Equal(t, []string{"paper-1"}, env.repo.Deleted)
	require.Len(t, env.repo.Tasks, 1)
	assert.Equal(t, "done-1", env.repo.Tasks[0].ID)
}

func TestRmCommand_Leaf(t *testing.T) {
	env := newTestEnv()
	env.repo.Seed(newTask("task-a", "买菜"))

	stdout, _, err := env.run(t, "", "rm", "task-a")

	require.NoError(t, err)
	assert.Contains(t, stdout, "Deleted task task-a: 买菜\n")
}

// =============================================================================
// breakdown / import
// =============================================================================

func TestBreakdownCommand_NeedsKey(t *testing.T) {
	env := newTestEnv()
	env.repo.Seed(newTask("task-a", "写论文"))

	_, _, err := env.run(t, "", "breakdown", "task-a")

	assert.ErrorIs(t, err, domain.ErrDecompositionUnavailable)
	assert.Contains(t, err.Error(), "fanqie ai set")
	assert.Zero(t, env.model.DecomposeCall)
}

func TestBreakdownCommand_CreatesSubtasks(t *testing.T) {
	env := newTestEnv()
	env.creds.Key = "sk-test"
	env.repo.Seed(newTask("task-a", "写论文"))
	env.model.Subtasks = []domain.SubtaskDraft{
		{Title: "查资料", Priority: domain.PriorityPtr(domain.PriorityHigh)},
		{Title: "写初稿"},
	}

	stdout, _, err := env.run(t, "", "breakdown", "task-a")

	require.NoError(t, err)
	assert.Contains(t, stdout, "Created subtask task-1: 查资料")
	assert.Contains(t, stdout, "Created subtask task-2: 写初稿")
	assert.Equal(t, "写论文", env.model.LastInput)
	for _, sub := range env.repo.Tasks[:2] {
		assert.True(t, sub.AIGenerated)
		require.NotNil(t, sub.ParentID)
		assert.Equal(t, "task-a", *sub.ParentID)
	}
}

func TestBreakdownCommand_ReportsFailures(t *testing.T) {
	env := newTestEnv()
	env.creds.Key = "sk-test"
	env.repo.Seed(newTask("task-a", "写论文"))
	env.repo.CreateErrAt = map[int]error{2: assert.AnError}
	env.model.Subtasks = []domain.SubtaskDraft{{Title: "查资料"}, {Title: "写初稿"}}

	stdout, stderr, err := env.run(t, "", "breakdown", "task-a")

	require.NoError(t, err)
	assert.Contains(t, stdout, "查资料")
	assert.Contains(t, stderr, `Failed to create "写初稿"`)
}

const importYAML = `
- title: 写论文
  priority: 1
  due: 2026-10-20
  subtasks:
    - title: 查资料
- title: 买菜
`

func TestImportCommand_Stdin(t *testing.T) {
	env := newTestEnv()

	stdout, _, err := env.run(t, importYAML, "import", "-")

	require.NoError(t, err)
	assert.Contains(t, stdout, "Created task task-1: 写论文")
	assert.Contains(t, stdout, "  Created task task-2: 查资料")
	assert.Contains(t, stdout, "Created task task-3: 买菜")
	assert.Len(t, env.repo.Tasks, 3)
}

func TestImportCommand_File(t *testing.T) {
	env := newTestEnv()
	path := filepath.Join(t.TempDir(), "tasks.yaml")
	require.NoError(t, os.WriteFile(path, []byte(importYAML), 0o600))

	_, _, err := env.run(t, "", "import", path)

	require.NoError(t, err)
	paper := env.repo.Tasks[2]
	assert.Equal(t, "写论文", paper.Title)
	require.NotNil(t, paper.DueDate)
	assert.Equal(t, time.Month(10), paper.DueDate.Month())
	assert.Equal(t, 20, paper.DueDate.Day())
}

func TestImportCommand_MissingFile(t *testing.T) {
	env := newTestEnv()

	_, _, err := env.run(t, "", "import", filepath.Join(t.TempDir(), "missing.yaml"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "read file")
}
