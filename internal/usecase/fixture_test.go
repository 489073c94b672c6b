package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/liang/fanqie/internal/domain"
	"github.com/liang/fanqie/internal/testutil"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 10, 14, 9, 30, 0, 0, time.Local)

// fixture wires the use cases to in-memory doubles.
type fixture struct {
	repo     *testutil.MockTaskRepository
	tree     *domain.TaskTree
	clock    *testutil.MockClock
	model    *testutil.MockLanguageModel
	creds    *testutil.MockCredentialStore
	settings *testutil.MockSettingsStore
	logger   *testutil.MockLogger
	access   *ModelAccess
	resolver *IntentResolver
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		repo:     testutil.NewMockTaskRepository(),
		tree:     domain.NewTaskTree(),
		clock:    &testutil.MockClock{NowTime: testNow},
		model:    &testutil.MockLanguageModel{},
		creds:    &testutil.MockCredentialStore{},
		settings: testutil.NewMockSettingsStore(),
		logger:   &testutil.MockLogger{},
	}
	f.repo.Now = f.clock.Now
	f.access = NewModelAccess(f.creds, f.settings)
	f.resolver = NewIntentResolver(
		domain.NewLocalIntentParser(f.clock),
		NewRemoteIntentParser(f.model, f.access, f.clock),
		f.logger,
	)
	return f
}

// seed stores tasks and loads them into the tree.
func (f *fixture) seed(t *testing.T, tasks ...*domain.Task) {
	t.Helper()
	f.repo.Seed(tasks...)
	_, err := NewLoadTasks(f.repo, f.tree).Execute(context.Background(), LoadTasksInput{})
	require.NoError(t, err)
}

func task(id, title string) *domain.Task {
	return &domain.Task{
		ID:        id,
		Title:     title,
		Status:    domain.StatusPending,
		Priority:  domain.DefaultPriority,
		CreatedAt: testNow.Add(-time.Hour),
		UpdatedAt: testNow.Add(-time.Hour),
	}
}

func subtask(id, title, parentID string) *domain.Task {
	t := task(id, title)
	t.ParentID = &parentID
	return t
}

func datePtr(d domain.Date) *domain.Date {
	return &d
}

func strPtr(s string) *string {
	return &s
}

func today() domain.Date {
	return domain.DateOf(testNow)
}
