package cli

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/liang/fanqie/internal/domain"
)

// Colors defines the palette for terminal output.
var Colors = struct {
	High    lipgloss.Color
	Medium  lipgloss.Color
	Low     lipgloss.Color
	Muted   lipgloss.Color
	Success lipgloss.Color
	Accent  lipgloss.Color
	Error   lipgloss.Color
}{
	High:    lipgloss.Color("#D63031"), // Red
	Medium:  lipgloss.Color("#FDCB6E"), // Yellow
	Low:     lipgloss.Color("#00B894"), // Green
	Muted:   lipgloss.Color("#636E72"), // Gray
	Success: lipgloss.Color("#00B894"), // Green
	Accent:  lipgloss.Color("#6C5CE7"), // Purple
	Error:   lipgloss.Color("#D63031"), // Red
}

var (
	styleID         = lipgloss.NewStyle().Foreground(Colors.Muted)
	styleDone       = lipgloss.NewStyle().Foreground(Colors.Muted).Strikethrough(true)
	styleDue        = lipgloss.NewStyle().Foreground(Colors.Muted)
	styleOverdue    = lipgloss.NewStyle().Foreground(Colors.Error)
	styleAI         = lipgloss.NewStyle().Foreground(Colors.Accent)
	styleHeader     = lipgloss.NewStyle().Bold(true)
	styleInProgress = lipgloss.NewStyle().Foreground(Colors.Medium)
)

// urgencyStyle returns the color style for an urgency level.
func urgencyStyle(u domain.Urgency) lipgloss.Style {
	switch u {
	case domain.UrgencyHigh:
		return lipgloss.NewStyle().Foreground(Colors.High)
	case domain.UrgencyMedium:
		return lipgloss.NewStyle().Foreground(Colors.Medium)
	default:
		return lipgloss.NewStyle().Foreground(Colors.Low)
	}
}

// priorityLabel renders the colored urgency label of p.
func priorityLabel(p domain.Priority) string {
	u := p.Urgency()
	return urgencyStyle(u).Render(u.Label())
}

// statusMark renders the checkbox for a status.
func statusMark(s domain.Status) string {
	switch s {
	case domain.StatusCompleted:
		return lipgloss.NewStyle().Foreground(Colors.Success).Render("[x]")
	case domain.StatusInProgress:
		return styleInProgress.Render("[~]")
	default:
		return "[ ]"
	}
}
