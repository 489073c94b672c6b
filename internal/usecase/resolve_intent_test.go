package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/liang/fanqie/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntentResolver_LocalWhenModelNotReady(t *testing.T) {
	f := newFixture(t)
	f.creds.Key = "sk-test"

	result := f.resolver.Resolve(context.Background(), "完成报告 高 明天", false)

	assert.Equal(t, IntentSourceLocal, result.Source)
	assert.NoError(t, result.RemoteErr)
	assert.Equal(t, 0, f.model.InterpretCall, "remote is not attempted")
	assert.Equal(t, "完成报告", result.Intent.Title)
	require.NotNil(t, result.Intent.Priority)
	assert.Equal(t, domain.PriorityHigh, *result.Intent.Priority)
	require.NotNil(t, result.Intent.DueDate)
	assert.Equal(t, today().AddDays(1), *result.Intent.DueDate)
}

func TestIntentResolver_Remote(t *testing.T) {
	f := newFixture(t)
	f.creds.Key = "sk-test"
	due := time.Date(2026, 10, 20, 0, 0, 0, 0, time.Local)
	f.model.Intent = &domain.RemoteIntent{
		Title:    "交周报",
		Priority: domain.PriorityPtr(domain.PriorityLow),
		DueDate:  &due,
	}

	result := f.resolver.Resolve(context.Background(), "下周一交周报", true)

	assert.Equal(t, IntentSourceRemote, result.Source)
	assert.NoError(t, result.RemoteErr)
	assert.Equal(t, "下周一交周报", f.model.LastInput)
	assert.Equal(t, domain.ModelCredentials{APIKey: "sk-test", Model: domain.DefaultModel}, f.model.LastCreds)
	assert.Equal(t, "交周报", result.Intent.Title)
	assert.Equal(t, domain.PriorityLow, *result.Intent.Priority)
	assert.Equal(t, domain.Date{Year: 2026, Month: time.October, Day: 20}, *result.Intent.DueDate)
}

func TestIntentResolver_FallsBackOnRemoteFailure(t *testing.T) {
	f := newFixture(t)
	f.creds.Key = "sk-test"
	f.model.InterpretErr = context.DeadlineExceeded

	result := f.resolver.Resolve(context.Background(), "买牛奶 今天", true)

	assert.Equal(t, IntentSourceLocal, result.Source)
	assert.ErrorIs(t, result.RemoteErr, domain.ErrRemoteCallFailed)
	assert.ErrorIs(t, result.RemoteErr, context.DeadlineExceeded)
	assert.Equal(t, "买牛奶", result.Intent.Title)
	assert.Equal(t, today(), *result.Intent.DueDate)
	assert.Equal(t, 1, f.logger.Count("WARN"))
}

func TestIntentResolver_FallsBackWhenKeyMissing(t *testing.T) {
	f := newFixture(t)

	result := f.resolver.Resolve(context.Background(), "买牛奶", true)

	assert.Equal(t, IntentSourceLocal, result.Source)
	assert.ErrorIs(t, result.RemoteErr, domain.ErrRemoteUnavailable)
	assert.Equal(t, "买牛奶", result.Intent.Title)
}

func TestIntentResolver_NeverReturnsEmptyTitle(t *testing.T) {
	inputs := []string{"高", "  明天  ", "今天 高", "x", "后天 低 中"}

	for _, ready := range []bool{false, true} {
		for _, remoteErr := range []error{nil, assert.AnError} {
			f := newFixture(t)
			f.creds.Key = "sk-test"
			f.model.InterpretErr = remoteErr
			f.model.Intent = &domain.RemoteIntent{Title: "  "}

			for _, in := range inputs {
				result := f.resolver.Resolve(context.Background(), in, ready)
				assert.NotEmpty(t, result.Intent.Title, "input %q ready=%v err=%v", in, ready, remoteErr)
			}
		}
	}
}

func TestRemoteIntentParser_Normalizes(t *testing.T) {
	f := newFixture(t)
	f.creds.Key = "sk-test"
	f.model.Intent = &domain.RemoteIntent{Title: "", Priority: domain.PriorityPtr(0)}
	parser := NewRemoteIntentParser(f.model, f.access, f.clock)

	intent, err := parser.Parse(context.Background(), "  随便记一下  ")

	require.NoError(t, err)
	assert.Equal(t, "随便记一下", intent.Title)
	assert.Nil(t, intent.Priority)
	assert.Nil(t, intent.DueDate)
}

func TestRemoteIntentParser_DateInClockLocation(t *testing.T) {
	f := newFixture(t)
	f.creds.Key = "sk-test"
	shanghai := time.FixedZone("CST", 8*3600)
	f.clock.NowTime = time.Date(2026, 10, 14, 9, 0, 0, 0, shanghai)
	// 2026-10-15 00:00 in Shanghai is still the 14th in UTC
	due := time.Date(2026, 10, 14, 16, 0, 0, 0, time.UTC)
	f.model.Intent = &domain.RemoteIntent{Title: "x", DueDate: &due}
	parser := NewRemoteIntentParser(f.model, f.access, f.clock)

	intent, err := parser.Parse(context.Background(), "x")

	require.NoError(t, err)
	assert.Equal(t, domain.Date{Year: 2026, Month: time.October, Day: 15}, *intent.DueDate)
}

func TestRemoteIntentParser_Unavailable(t *testing.T) {
	f := newFixture(t)
	parser := NewRemoteIntentParser(f.model, f.access, f.clock)

	_, err := parser.Parse(context.Background(), "x")

	assert.ErrorIs(t, err, domain.ErrRemoteUnavailable)
	assert.Equal(t, 0, f.model.InterpretCall)
}
