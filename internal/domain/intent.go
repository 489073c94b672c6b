package domain

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// ParsedIntent is the task draft derived from free-form text.
// Nil fields were not found in the text.
type ParsedIntent struct {
	Priority *Priority
	DueDate  *Date
	Title    string
}

// PriorityRule maps a token to a priority.
type PriorityRule struct {
	Token    string
	Priority Priority
}

// DateRule maps a token to a day offset from today.
type DateRule struct {
	Token  string
	Offset int
}

// DefaultPriorityRules are evaluated top to bottom; the first token found wins.
// High is tested first, so text containing it is always high priority.
var DefaultPriorityRules = []PriorityRule{
	{Token: "高", Priority: PriorityHigh},
	{Token: "低", Priority: PriorityLow},
	{Token: "中", Priority: PriorityMedium},
}

// DefaultDateRules are evaluated top to bottom; only the first token found
// is honoured and removed from the title.
var DefaultDateRules = []DateRule{
	{Token: "今天", Offset: 0},
	{Token: "明天", Offset: 1},
	{Token: "后天", Offset: 2},
}

// LocalIntentParser extracts priority and due date hints from text
// using keyword rules. It works offline and never fails.
type LocalIntentParser struct {
	clock         Clock
	priorityRules []PriorityRule
	dateRules     []DateRule
}

// NewLocalIntentParser creates a parser with the default rules.
func NewLocalIntentParser(clock Clock) *LocalIntentParser {
	return &LocalIntentParser{
		clock:         clock,
		priorityRules: DefaultPriorityRules,
		dateRules:     DefaultDateRules,
	}
}

// Parse interprets raw text.
// Priority tokens are matched anywhere in the text but only removed from the
// title when they stand alone as a word. The matched date token is removed
// once wherever it appears. The title is never empty: if stripping leaves
// nothing, the trimmed input is returned as the title.
func (p *LocalIntentParser) Parse(raw string) ParsedIntent {
	input := strings.TrimSpace(raw)
	title := input
	var intent ParsedIntent

	if rule, ok := p.matchPriority(input); ok {
		priority := rule.Priority
		intent.Priority = &priority
		title = removeWord(title, rule.Token)
	}

	if rule, ok := p.matchDate(input); ok {
		due := Today(p.clock).AddDays(rule.Offset)
		intent.DueDate = &due
		title = strings.TrimSpace(strings.Replace(title, rule.Token, "", 1))
	}

	title = strings.TrimSpace(title)
	if title == "" {
		title = input
	}
	intent.Title = title
	return intent
}

func (p *LocalIntentParser) matchPriority(text string) (PriorityRule, bool) {
	for _, rule := range p.priorityRules {
		if strings.Contains(text, rule.Token) {
			return rule, true
		}
	}
	return PriorityRule{}, false
}

func (p *LocalIntentParser) matchDate(text string) (DateRule, bool) {
	for _, rule := range p.dateRules {
		if strings.Contains(text, rule.Token) {
			return rule, true
		}
	}
	return DateRule{}, false
}

// removeWord cuts the first whitespace-delimited occurrence of word out of
// text, together with the whitespace in front of it (or after it, at the
// start of text). The rest of text keeps its spacing.
func removeWord(text, word string) string {
	for start := 0; start < len(text); {
		i := strings.Index(text[start:], word)
		if i < 0 {
			break
		}
		i += start
		end := i + len(word)
		if spaceBefore(text, i) && spaceAfter(text, end) {
			before := strings.TrimRightFunc(text[:i], unicode.IsSpace)
			if before == "" {
				return strings.TrimLeftFunc(text[end:], unicode.IsSpace)
			}
			return before + text[end:]
		}
		start = end
	}
	return text
}

func spaceBefore(text string, i int) bool {
	if i == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(text[:i])
	return unicode.IsSpace(r)
}

func spaceAfter(text string, i int) bool {
	if i == len(text) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(text[i:])
	return unicode.IsSpace(r)
}
