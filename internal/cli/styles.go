package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/missionctl/internal/models"
)

const progressBarWidth = 20

var (
	activeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true)

	doneStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	dangerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Italic(true)
)

// HabitStatusLabel renders a habit status for terminal output
func HabitStatusLabel(s models.HabitStatus) string {
	switch s {
	case models.HabitStatusCompleted:
		return doneStyle.Render(string(s))
	case models.HabitStatusFailed:
		return dangerStyle.Render(string(s))
	default:
		return activeStyle.Render(string(s))
	}
}

// MissionStatusLabel renders a mission status for terminal output
func MissionStatusLabel(s models.MissionStatus) string {
	switch s {
	case models.MissionCompleted:
		return doneStyle.Render(string(s))
	case models.MissionInProgress:
		return activeStyle.Render(string(s))
	case models.MissionCancelled:
		return mutedStyle.Render(string(s))
	default:
		return warningStyle.Render(string(s))
	}
}

// Warning renders text in the warning style
func Warning(text string) string {
	return warningStyle.Render(text)
}

// ProgressBar renders ratio (0..1) as a fixed-width bar
func ProgressBar(ratio float64) string {
	ratio = min(1, max(0, ratio))
	filled := int(ratio * progressBarWidth)
	bar := strings.Repeat("█", filled) + strings.Repeat("░", progressBarWidth-filled)
	return fmt.Sprintf("%s %3.0f%%", bar, ratio*100)
}
