package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"gradewatch/pkg/models"
	"gradewatch/pkg/ui"
)

// Message types for the TUI

// CycleStartMsg is sent when a run cycle starts
type CycleStartMsg struct {
	ID string
}

// PhaseMsg is sent when a cycle moves to another step
type PhaseMsg struct {
	ID    string
	Phase ui.Phase
}

// GradeMsg is sent for each grade notified
type GradeMsg struct {
	Record models.GradeRecord
}

// CycleDoneMsg is sent when a cycle ends
type CycleDoneMsg struct {
	ID       string
	Scanned  int
	Reported int
	Err      error
}

// NextCycleMsg is sent when the scheduler goes to sleep
type NextCycleMsg struct {
	At time.Time
}

// LogMsg is sent to add a log message
type LogMsg struct {
	Level   string
	Message string
}

// TickMsg is sent periodically to update the UI
type TickMsg time.Time

// Update handles all messages and updates the model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.mu.Lock()
		m.width = msg.Width
		m.height = msg.Height
		m.mu.Unlock()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case TickMsg:
		return m, tickCmd()

	case CycleStartMsg:
		m.StartCycle(msg.ID)
		m.AddLogMessage("INFO", "Cycle "+shortID(msg.ID)+" started")
		return m, nil

	case PhaseMsg:
		m.SetPhase(msg.ID, msg.Phase)
		return m, nil

	case GradeMsg:
		m.AddGrade(msg.Record)
		return m, nil

	case CycleDoneMsg:
		m.FinishCycle(msg.ID, msg.Scanned, msg.Reported, msg.Err)
		if msg.Err != nil {
			m.AddLogMessage("ERROR", "Cycle "+shortID(msg.ID)+" failed: "+msg.Err.Error())
		}
		return m, nil

	case NextCycleMsg:
		m.SetNextCycle(msg.At)
		return m, nil

	case LogMsg:
		m.AddLogMessage(msg.Level, msg.Message)
		return m, nil
	}

	return m, nil
}

// handleKeyPress handles keyboard input
func (m *Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "Q", "ctrl+c":
		return m, tea.Quit

	case "p", "P":
		if m.TogglePause() {
			m.AddLogMessage("WARN", "Cycles paused by user")
		} else {
			m.AddLogMessage("INFO", "Cycles resumed by user")
		}
		return m, nil

	case "?":
		m.mu.Lock()
		m.showHelp = !m.showHelp
		m.mu.Unlock()
		return m, nil

	case "ctrl+l":
		m.ClearLogs()
		return m, nil
	}

	return m, nil
}

// tickCmd returns a command that sends a tick message
func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
