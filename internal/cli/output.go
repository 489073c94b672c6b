package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/liang/fanqie/internal/domain"
	"github.com/liang/fanqie/internal/usecase"
	"gopkg.in/yaml.v3"
)

// Supported list output formats.
const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

const shortIDLen = 8

// shortID returns the display prefix of a task ID.
func shortID(id string) string {
	if len(id) <= shortIDLen {
		return id
	}
	return id[:shortIDLen]
}

// describeTask renders the title with priority and due date, plain text.
func describeTask(task *domain.Task) string {
	parts := []string{task.Title, task.Priority.Urgency().Label()}
	if task.DueDate != nil {
		parts = append(parts, "due "+domain.DateOf(*task.DueDate).String())
	}
	return strings.Join(parts, " · ")
}

// listedTask is the serialized form of a task in json and yaml output.
// Fields are ordered to minimize memory padding.
type listedTask struct {
	DueDate     *string      `json:"due_date,omitempty" yaml:"due_date,omitempty"`
	ID          string       `json:"id" yaml:"id"`
	Title       string       `json:"title" yaml:"title"`
	Category    string       `json:"category,omitempty" yaml:"category,omitempty"`
	Status      string       `json:"status" yaml:"status"`
	CreatedAt   string       `json:"created_at" yaml:"created_at"`
	Subtasks    []listedTask `json:"subtasks,omitempty" yaml:"subtasks,omitempty"`
	Priority    int          `json:"priority" yaml:"priority"`
	AIGenerated bool         `json:"ai_generated" yaml:"ai_generated"`
}

type listedStats struct {
	Total     int `json:"total" yaml:"total"`
	Completed int `json:"completed" yaml:"completed"`
	Today     int `json:"today" yaml:"today"`
}

type listedView struct {
	Tasks []listedTask `json:"tasks" yaml:"tasks"`
	Stats listedStats  `json:"stats" yaml:"stats"`
}

func toListed(task *domain.Task) listedTask {
	lt := listedTask{
		ID:          task.ID,
		Title:       task.Title,
		Category:    task.Category,
		Status:      string(task.Status),
		Priority:    int(task.Priority),
		AIGenerated: task.AIGenerated,
		CreatedAt:   task.CreatedAt.Format(time.RFC3339),
	}
	if task.DueDate != nil {
		due := domain.DateOf(*task.DueDate).String()
		lt.DueDate = &due
	}
	return lt
}

func toView(out *usecase.ListTasksOutput) listedView {
	view := listedView{
		Tasks: make([]listedTask, 0, len(out.Nodes)),
		Stats: listedStats{
			Total:     out.Stats.Total,
			Completed: out.Stats.Completed,
			Today:     out.Stats.Today,
		},
	}
	for _, node := range out.Nodes {
		lt := toListed(node.Task)
		for _, child := range node.Children {
			lt.Subtasks = append(lt.Subtasks, toListed(child))
		}
		view.Tasks = append(view.Tasks, lt)
	}
	return view
}

// printList writes the list view in the requested format.
func printList(w io.Writer, out *usecase.ListTasksOutput, format string, today domain.Date) error {
	switch format {
	case "", formatText:
		printTaskTree(w, out, today)
		return nil
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(toView(out))
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(toView(out)); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown format %q (valid: text, json, yaml)", format)
	}
}

func printTaskTree(w io.Writer, out *usecase.ListTasksOutput, today domain.Date) {
	stats := out.Stats
	header := fmt.Sprintf("%d tasks · %d completed · %d due today", stats.Total, stats.Completed, stats.Today)
	_, _ = fmt.Fprintln(w, styleHeader.Render(header))

	if len(out.Nodes) == 0 {
		_, _ = fmt.Fprintln(w, "No tasks.")
		return
	}

	for _, node := range out.Nodes {
		_, _ = fmt.Fprintln(w, taskLine(node.Task, today, ""))
		for _, child := range node.Children {
			_, _ = fmt.Fprintln(w, taskLine(child, today, "    "))
		}
	}
}

func taskLine(task *domain.Task, today domain.Date, indent string) string {
	title := task.Title
	if task.IsCompleted() {
		title = styleDone.Render(title)
	}

	var b strings.Builder
	b.WriteString(indent)
	b.WriteString(statusMark(task.Status))
	b.WriteString(" ")
	b.WriteString(styleID.Render(shortID(task.ID)))
	b.WriteString(" ")
	b.WriteString(priorityLabel(task.Priority))
	b.WriteString(" ")
	b.WriteString(title)
	if task.DueDate != nil {
		due := domain.DateOf(*task.DueDate)
		style := styleDue
		if !task.IsCompleted() && due.Before(today) {
			style = styleOverdue
		}
		b.WriteString(" ")
		b.WriteString(style.Render("(" + due.String() + ")"))
	}
	if task.AIGenerated {
		b.WriteString(" ")
		b.WriteString(styleAI.Render("AI"))
	}
	return b.String()
}
