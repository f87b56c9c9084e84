package tui

import (
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"gradewatch/pkg/models"
	"gradewatch/pkg/ui"
)

// CycleItem tracks one run cycle
type CycleItem struct {
	ID        string
	Phase     ui.Phase
	StartedAt time.Time
	Duration  time.Duration
	Scanned   int
	Reported  int
	Err       error
	Done      bool
}

// Failed reports whether the cycle ended with an error
func (c *CycleItem) Failed() bool {
	return c.Done && c.Err != nil
}

// Model represents the TUI model
type Model struct {
	spinner spinner.Model
	bar     progress.Model

	current *CycleItem
	cycles  []*CycleItem
	grades  []models.GradeRecord

	totalCycles   int
	failedCycles  int
	totalReported int
	startTime     time.Time
	nextCycle     time.Time

	width          int
	height         int
	showHelp       bool
	isPaused       bool
	logMessages    []LogMessage
	maxLogMessages int
	maxCycles      int
	maxGrades      int

	mu sync.RWMutex
}

// LogMessage represents a log entry
type LogMessage struct {
	Time    time.Time
	Level   string
	Message string
	Color   lipgloss.Color
}

// NewModel creates a new TUI model
func NewModel() *Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(accentCyan)

	bar := progress.New(progress.WithDefaultGradient())
	bar.Width = 30

	return &Model{
		spinner:        s,
		bar:            bar,
		startTime:      time.Now(),
		maxLogMessages: 50,
		maxCycles:      8,
		maxGrades:      10,
	}
}

// Init initializes the model
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, tickCmd())
}

// StartCycle makes id the current cycle
func (m *Model) StartCycle(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	item := &CycleItem{ID: id, StartedAt: time.Now()}
	m.current = item
	m.cycles = append(m.cycles, item)
	if len(m.cycles) > m.maxCycles {
		m.cycles = m.cycles[len(m.cycles)-m.maxCycles:]
	}
	m.totalCycles++
}

// SetPhase records the step the current cycle reached. Updates for
// another cycle are ignored.
func (m *Model) SetPhase(id string, phase ui.Phase) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current != nil && m.current.ID == id {
		m.current.Phase = phase
	}
}

// AddGrade records a reported grade
func (m *Model) AddGrade(rec models.GradeRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.grades = append(m.grades, rec)
	if len(m.grades) > m.maxGrades {
		m.grades = m.grades[len(m.grades)-m.maxGrades:]
	}
	m.totalReported++
}

// FinishCycle closes the cycle id
func (m *Model) FinishCycle(id string, scanned, reported int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	item := m.findCycle(id)
	if item == nil {
		return
	}
	item.Done = true
	item.Duration = time.Since(item.StartedAt)
	item.Scanned = scanned
	item.Reported = reported
	item.Err = err
	if err != nil {
		m.failedCycles++
	}
	if m.current == item {
		m.current = nil
	}
}

func (m *Model) findCycle(id string) *CycleItem {
	for i := len(m.cycles) - 1; i >= 0; i-- {
		if m.cycles[i].ID == id {
			return m.cycles[i]
		}
	}
	return nil
}

// SetNextCycle records when the next cycle starts
func (m *Model) SetNextCycle(at time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextCycle = at
}

// TogglePause flips the pause flag and returns the new value
func (m *Model) TogglePause() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.isPaused = !m.isPaused
	return m.isPaused
}

// Paused reports whether cycles are paused
func (m *Model) Paused() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.isPaused
}

// AddLogMessage adds a log message
func (m *Model) AddLogMessage(level, message string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.logMessages = append(m.logMessages, LogMessage{
		Time:    time.Now(),
		Level:   level,
		Message: message,
		Color:   levelColor(level),
	})

	// Keep only the last N messages
	if len(m.logMessages) > m.maxLogMessages {
		m.logMessages = m.logMessages[len(m.logMessages)-m.maxLogMessages:]
	}
}

// ClearLogs drops every log message
func (m *Model) ClearLogs() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logMessages = nil
}

// Stats is a snapshot of the run loop counters
type Stats struct {
	Cycles    int
	Failed    int
	Reported  int
	Uptime    time.Duration
	NextCycle time.Time
	Current   *CycleItem
}

// Stats returns a snapshot of the counters
func (m *Model) Stats() Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var current *CycleItem
	if m.current != nil {
		c := *m.current
		current = &c
	}
	return Stats{
		Cycles:    m.totalCycles,
		Failed:    m.failedCycles,
		Reported:  m.totalReported,
		Uptime:    time.Since(m.startTime),
		NextCycle: m.nextCycle,
		Current:   current,
	}
}

// RecentCycles returns copies of the last cycles, oldest first
func (m *Model) RecentCycles() []CycleItem {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]CycleItem, 0, len(m.cycles))
	for _, c := range m.cycles {
		out = append(out, *c)
	}
	return out
}

// RecentGrades returns the last reported grades, oldest first
func (m *Model) RecentGrades() []models.GradeRecord {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]models.GradeRecord(nil), m.grades...)
}

// phaseProgress returns how far a cycle at phase has gone, in [0, 1]
func phaseProgress(phase ui.Phase) float64 {
	i := phase.Index()
	if i < 0 {
		return 0
	}
	return float64(i+1) / float64(len(ui.Phases))
}
