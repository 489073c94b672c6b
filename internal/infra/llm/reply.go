package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/liang/fanqie/internal/domain"
)

// Reply validation errors.
var (
	ErrMalformedReply = errors.New("malformed model reply")
	ErrEmptySubtasks  = errors.New("model suggested no subtasks")
)

// ExtractJSON reduces a model reply to its JSON payload.
// A fenced code block is unwrapped; otherwise the text from the first
// opening bracket to the matching last closing bracket is kept.
func ExtractJSON(raw string) string {
	text := strings.TrimSpace(raw)

	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		// Drop the language tag on the fence line
		if nl := strings.IndexByte(text, '\n'); nl >= 0 {
			if tag := strings.TrimSpace(text[:nl]); !strings.ContainsAny(tag, "{[") {
				text = text[nl+1:]
			}
		}
		if end := strings.LastIndex(text, "```"); end >= 0 {
			text = text[:end]
		}
		return strings.TrimSpace(text)
	}

	start := strings.IndexAny(text, "{[")
	if start < 0 {
		return text
	}
	closing := "}"
	if text[start] == '[' {
		closing = "]"
	}
	end := strings.LastIndex(text, closing)
	if end <= start {
		return text
	}
	return text[start : end+1]
}

// intentReply is the object the model returns for interpretation.
// Null and absent fields both mean "not found".
type intentReply struct {
	Title    *string `json:"title"`
	DueDate  *string `json:"due_date"`
	Priority *int    `json:"priority"`
	Category *string `json:"category"`
}

// ParseIntentReply validates an interpretation reply.
// title must be a string, priority an integer and due_date a YYYY-MM-DD
// string; each may be null. The due date is returned at local midnight.
func ParseIntentReply(content string) (*domain.RemoteIntent, error) {
	payload := ExtractJSON(content)
	if !strings.HasPrefix(payload, "{") {
		return nil, fmt.Errorf("%w: expected a JSON object", ErrMalformedReply)
	}

	var reply intentReply
	if err := decodeStrict(payload, &reply); err != nil {
		return nil, err
	}

	intent := &domain.RemoteIntent{}
	if reply.Title != nil {
		intent.Title = strings.TrimSpace(*reply.Title)
	}
	if reply.Category != nil {
		intent.Category = strings.TrimSpace(*reply.Category)
	}
	if reply.Priority != nil && *reply.Priority != 0 {
		p := domain.Priority(*reply.Priority)
		intent.Priority = &p
	}
	if reply.DueDate != nil {
		value := strings.TrimSpace(*reply.DueDate)
		if value != "" && value != "null" {
			due, err := time.ParseInLocation(domain.DateLayout, value, time.Local)
			if err != nil {
				return nil, fmt.Errorf("%w: due_date %q is not YYYY-MM-DD", ErrMalformedReply, value)
			}
			intent.DueDate = &due
		}
	}
	return intent, nil
}

// ParseSubtaskReply validates a decomposition reply: a non-empty array of
// objects with a non-empty title and an optional integer priority.
func ParseSubtaskReply(content string) ([]domain.SubtaskDraft, error) {
	payload := ExtractJSON(content)
	if !strings.HasPrefix(payload, "[") {
		return nil, fmt.Errorf("%w: expected a JSON array", ErrMalformedReply)
	}

	var drafts []domain.SubtaskDraft
	if err := decodeStrict(payload, &drafts); err != nil {
		return nil, err
	}
	if len(drafts) == 0 {
		return nil, ErrEmptySubtasks
	}

	for i := range drafts {
		drafts[i].Title = strings.TrimSpace(drafts[i].Title)
		if drafts[i].Title == "" {
			return nil, fmt.Errorf("%w: subtask %d has no title", ErrMalformedReply, i+1)
		}
		if drafts[i].Priority != nil && *drafts[i].Priority == 0 {
			drafts[i].Priority = nil
		}
	}
	return drafts, nil
}

func decodeStrict(payload string, v any) error {
	if err := json.Unmarshal([]byte(payload), v); err != nil {
		return fmt.Errorf("%w: %v (%s)", ErrMalformedReply, err, payload)
	}
	return nil
}
