package tui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"gradewatch/pkg/models"
	"gradewatch/pkg/ui"
)

// TUI represents the terminal user interface
type TUI struct {
	program *tea.Program
	model   *Model
	queue   chan tea.Msg
}

var _ ui.Dashboard = (*TUI)(nil)

// NewTUI creates a new TUI instance
func NewTUI(opts ...tea.ProgramOption) *TUI {
	model := NewModel()
	program := tea.NewProgram(model, append([]tea.ProgramOption{tea.WithAltScreen()}, opts...)...)

	t := &TUI{
		program: program,
		model:   model,
		queue:   make(chan tea.Msg, 256),
	}
	go t.forward()
	return t
}

// forward hands queued messages to the program in order. Program.Send
// blocks until Start is called and returns immediately once it has exited.
func (t *TUI) forward() {
	for msg := range t.queue {
		t.program.Send(msg)
	}
}

// Start runs the TUI until the user quits or Stop is called
func (t *TUI) Start() error {
	_, err := t.program.Run()
	return err
}

// Stop stops the TUI gracefully
func (t *TUI) Stop() {
	t.program.Quit()
}

// Send queues a message for the TUI. It is safe to call before Start.
func (t *TUI) Send(msg tea.Msg) {
	if t.program != nil {
		t.queue <- msg
	}
}

// CycleStarted notifies the TUI that a run cycle has started
func (t *TUI) CycleStarted(id string) {
	t.Send(CycleStartMsg{ID: id})
}

// PhaseChanged notifies the TUI that a cycle reached phase
func (t *TUI) PhaseChanged(id string, phase ui.Phase) {
	t.Send(PhaseMsg{ID: id, Phase: phase})
}

// GradeReported notifies the TUI that a grade was sent to the webhook
func (t *TUI) GradeReported(rec models.GradeRecord) {
	t.Send(GradeMsg{Record: rec})
}

// CycleFinished notifies the TUI that a cycle has ended
func (t *TUI) CycleFinished(id string, scanned, reported int, err error) {
	t.Send(CycleDoneMsg{ID: id, Scanned: scanned, Reported: reported, Err: err})
}

// NextCycleAt updates the next cycle time
func (t *TUI) NextCycleAt(at time.Time) {
	t.Send(NextCycleMsg{At: at})
}

// Log sends a log message to the TUI
func (t *TUI) Log(level, format string, args ...interface{}) {
	t.Send(LogMsg{Level: level, Message: fmt.Sprintf(format, args...)})
}

// IsPaused returns whether scheduled cycles are paused
func (t *TUI) IsPaused() bool {
	return t.model.Paused()
}
