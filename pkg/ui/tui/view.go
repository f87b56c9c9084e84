package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"gradewatch/pkg/ui"
)

// View renders the entire TUI
func (m *Model) View() string {
	m.mu.RLock()
	width, height, showHelp := m.width, m.height, m.showHelp
	m.mu.RUnlock()

	if width == 0 || height == 0 {
		return "Initializing..."
	}

	colWidth := (width - 4) / 2
	left := lipgloss.JoinVertical(lipgloss.Left,
		m.renderStatsPanel(colWidth),
		m.renderCyclePanel(colWidth),
		m.renderHistoryPanel(colWidth),
	)
	right := lipgloss.JoinVertical(lipgloss.Left,
		m.renderGradesPanel(colWidth),
		m.renderLogsPanel(colWidth, height),
	)

	sections := []string{
		logoStyle.Render(strings.TrimSpace(ui.Banner)),
		lipgloss.JoinHorizontal(lipgloss.Top, left, "  ", right),
	}
	if showHelp {
		sections = append(sections, m.renderHelp(width))
	} else {
		sections = append(sections, helpStyle.Render("Press ? for help"))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func panel(width int, title string, lines ...string) string {
	return panelStyle.Width(width).Render(
		lipgloss.JoinVertical(lipgloss.Left, append([]string{titleStyle.Render(" " + title + " ")}, lines...)...),
	)
}

func stat(label, value string) string {
	return fmt.Sprintf("%s %s", statsLabelStyle.Render(label), statsValueStyle.Render(value))
}

// renderStatsPanel renders the run loop counters
func (m *Model) renderStatsPanel(width int) string {
	s := m.Stats()

	next := "-"
	if !s.NextCycle.IsZero() {
		next = s.NextCycle.Format("15:04:05") + " (in " + formatDuration(time.Until(s.NextCycle)) + ")"
	}

	lines := []string{
		stat("Uptime:", formatDuration(s.Uptime)),
		stat("Cycles:", fmt.Sprintf("%d", s.Cycles)),
		stat("Failed cycles:", fmt.Sprintf("%d", s.Failed)),
		stat("Grades reported:", fmt.Sprintf("%d", s.Reported)),
		stat("Next cycle:", next),
	}
	if m.Paused() {
		lines = append(lines, warningStyle.Render("⏸  PAUSED"))
	}
	return panel(width, "RUN LOOP", lines...)
}

// renderCyclePanel renders the cycle in progress
func (m *Model) renderCyclePanel(width int) string {
	current := m.Stats().Current
	if current == nil {
		return panel(width, "CURRENT CYCLE", dimStyle.Render("Idle"))
	}

	phase := string(current.Phase)
	if phase == "" {
		phase = "starting"
	}
	m.bar.Width = max(width-6, 10)
	return panel(width, "CURRENT CYCLE",
		fmt.Sprintf("%s %s %s", m.spinner.View(), statsLabelStyle.Render(shortID(current.ID)), statsValueStyle.Render(phase)),
		m.bar.ViewAs(phaseProgress(current.Phase)),
		dimStyle.Render("running for "+formatDuration(time.Since(current.StartedAt))),
	)
}

// renderHistoryPanel renders the last finished cycles
func (m *Model) renderHistoryPanel(width int) string {
	var lines []string
	for _, c := range m.RecentCycles() {
		if !c.Done {
			continue
		}
		switch {
		case c.Failed():
			lines = append(lines, errorStyle.Render("✗ "+shortID(c.ID))+dimStyle.Render(" "+truncate(c.Err.Error(), width-16)))
		default:
			lines = append(lines, successStyle.Render("✓ "+shortID(c.ID))+
				dimStyle.Render(fmt.Sprintf(" %d scanned, %d new, %s", c.Scanned, c.Reported, formatDuration(c.Duration))))
		}
	}
	if len(lines) == 0 {
		lines = append(lines, dimStyle.Render("No finished cycle yet"))
	}
	return panel(width, "RECENT CYCLES", lines...)
}

// renderGradesPanel renders the last reported grades
func (m *Model) renderGradesPanel(width int) string {
	grades := m.RecentGrades()
	if len(grades) == 0 {
		return panel(width, "REPORTED GRADES", dimStyle.Render("No grade reported yet"))
	}

	lines := make([]string, 0, len(grades))
	for i := len(grades) - 1; i >= 0; i-- {
		g := grades[i]
		lines = append(lines, fmt.Sprintf("%s %s %s",
			gradeStyle(g.Grade).Render(fmt.Sprintf("%-7s", g.Grade)),
			truncate(g.Subject, width-24),
			dimStyle.Render(g.Date),
		))
	}
	return panel(width, "REPORTED GRADES", lines...)
}

// renderLogsPanel renders the logs panel
func (m *Model) renderLogsPanel(width, height int) string {
	m.mu.RLock()
	start := len(m.logMessages) - 10
	if start < 0 {
		start = 0
	}
	recent := append([]LogMessage(nil), m.logMessages[start:]...)
	m.mu.RUnlock()

	var logs []string
	for _, log := range recent {
		timestamp := logTimestampStyle.Render(log.Time.Format("15:04:05"))
		level := lipgloss.NewStyle().Foreground(log.Color).Bold(true).Render(fmt.Sprintf("[%-5s]", log.Level))
		logs = append(logs, fmt.Sprintf("%s %s %s", timestamp, level, truncate(log.Message, width-22)))
	}

	content := strings.Join(logs, "\n")
	if content == "" {
		content = dimStyle.Render("No logs yet...")
	}

	logsHeight := height - 30
	if logsHeight < 5 {
		logsHeight = 5
	}
	return panelStyle.Width(width).Height(logsHeight).Render(
		lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render(" LOGS "), content),
	)
}

// renderHelp renders the help panel
func (m *Model) renderHelp(width int) string {
	help := `
  Keys:
    q/Q      - Quit after the current cycle
    p/P      - Pause/Resume scheduled cycles
    ctrl+l   - Clear logs
    ?        - Toggle this help

  Grades:
    ` + successStyle.Render("Green") + `    - 10/20 or more
    ` + warningStyle.Render("Orange") + `   - from 8/20 to 10/20
    ` + errorStyle.Render("Red") + `      - under 8/20
`
	return panelStyle.Width(width).Render(help)
}

// truncate shortens s to n runes
func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 3 || len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// formatDuration formats a duration in a human-readable way
func formatDuration(d time.Duration) string {
	if d < 0 {
		return "00:00"
	}

	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60

	if h > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}
