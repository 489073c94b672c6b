package llm

import (
	"testing"

	"github.com/liang/fanqie/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "bare object", raw: ` {"a":1} `, want: `{"a":1}`},
		{name: "fenced with tag", raw: "```json\n{\"a\":1}\n```", want: `{"a":1}`},
		{name: "fenced without tag", raw: "```\n[1,2]\n```", want: `[1,2]`},
		{name: "fenced inline", raw: "```{\"a\":1}```", want: `{"a":1}`},
		{name: "surrounding prose", raw: `结果如下 {"a":{"b":2}} 完毕`, want: `{"a":{"b":2}}`},
		{name: "array of objects", raw: `输出: [{"t":1},{"t":2}]`, want: `[{"t":1},{"t":2}]`},
		{name: "no json", raw: "sorry", want: "sorry"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractJSON(tt.raw))
		})
	}
}

func TestParseIntentReply(t *testing.T) {
	intent, err := ParseIntentReply(`{"title": " 买菜 ", "due_date": null, "priority": null, "category": "生活"}`)

	require.NoError(t, err)
	assert.Equal(t, "买菜", intent.Title)
	assert.Nil(t, intent.DueDate)
	assert.Nil(t, intent.Priority)
	assert.Equal(t, "生活", intent.Category)
}

func TestParseIntentReply_NullString(t *testing.T) {
	intent, err := ParseIntentReply(`{"title": "x", "due_date": "null", "priority": 0}`)

	require.NoError(t, err)
	assert.Nil(t, intent.DueDate)
	assert.Nil(t, intent.Priority, "zero priority means absent")
}

func TestParseIntentReply_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "not json", content: "无法理解"},
		{name: "array", content: `[{"title":"x"}]`},
		{name: "title not string", content: `{"title": 3}`},
		{name: "priority not integer", content: `{"title": "x", "priority": "高"}`},
		{name: "fractional priority", content: `{"title": "x", "priority": 1.5}`},
		{name: "bad date", content: `{"title": "x", "due_date": "明天"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseIntentReply(tt.content)
			assert.ErrorIs(t, err, ErrMalformedReply)
		})
	}
}

func TestParseSubtaskReply(t *testing.T) {
	drafts, err := ParseSubtaskReply(`[{"title": " a ", "priority": 3}, {"title": "b", "priority": 0}]`)

	require.NoError(t, err)
	require.Len(t, drafts, 2)
	assert.Equal(t, "a", drafts[0].Title)
	assert.Equal(t, domain.PriorityLow, *drafts[0].Priority)
	assert.Nil(t, drafts[1].Priority)
}

func TestParseSubtaskReply_Rejects(t *testing.T) {
	_, err := ParseSubtaskReply(`[]`)
	assert.ErrorIs(t, err, ErrEmptySubtasks)

	_, err = ParseSubtaskReply(`[{"title": "  "}]`)
	assert.ErrorIs(t, err, ErrMalformedReply)

	_, err = ParseSubtaskReply(`{"title": "x"}`)
	assert.ErrorIs(t, err, ErrMalformedReply)

	_, err = ParseSubtaskReply(`[{"title": "x", "priority": "low"}]`)
	assert.ErrorIs(t, err, ErrMalformedReply)
}
