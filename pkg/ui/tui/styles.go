package tui

import (
	"github.com/charmbracelet/lipgloss"

	"gradewatch/pkg/notify"
)

var (
	accentCyan    = lipgloss.Color("#00D7FF")
	accentMagenta = lipgloss.Color("#D75FD7")
	accentGreen   = lipgloss.Color("#5FD75F")
	accentYellow  = lipgloss.Color("#FFD75F")
	accentOrange  = lipgloss.Color("#FF8700")
	accentRed     = lipgloss.Color("#FF5F5F")
	panelBg       = lipgloss.Color("#1C1C2E")
	dimWhite      = lipgloss.Color("#B0B0B0")

	logoStyle = lipgloss.NewStyle().
			Foreground(accentCyan).
			Bold(true).
			Padding(1, 0, 0, 2)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accentMagenta).
			Background(panelBg).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Background(accentMagenta).
			Foreground(panelBg).
			Bold(true).
			Padding(0, 1)

	statsLabelStyle = lipgloss.NewStyle().
			Foreground(accentCyan).
			Bold(true)

	statsValueStyle = lipgloss.NewStyle().
			Foreground(accentYellow)

	successStyle = lipgloss.NewStyle().
			Foreground(accentGreen).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(accentRed).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(accentOrange).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(dimWhite)

	logTimestampStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#666666"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262")).
			Padding(0, 0, 0, 2)
)

// levelColor returns the color of a log level badge
func levelColor(level string) lipgloss.Color {
	switch level {
	case "ERROR", "FATAL":
		return accentRed
	case "WARN":
		return accentOrange
	case "DEBUG":
		return dimWhite
	default:
		return accentCyan
	}
}

// gradeStyle colors a grade the way its notification embed is colored
func gradeStyle(grade string) lipgloss.Style {
	switch notify.ClassifyGrade(grade) {
	case notify.Unfavorable:
		return errorStyle
	case notify.Borderline:
		return warningStyle
	default:
		return successStyle
	}
}
