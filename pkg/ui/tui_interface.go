package ui

import (
	"time"

	"gradewatch/pkg/models"
)

// Phase names a step of a run cycle
type Phase string

const (
	PhaseLaunch    Phase = "launch"
	PhaseSession   Phase = "session"
	PhaseResults   Phase = "results"
	PhaseScan      Phase = "scan"
	PhaseReconcile Phase = "reconcile"
	PhaseNotify    Phase = "notify"
)

// Phases lists the cycle steps in execution order
var Phases = []Phase{PhaseLaunch, PhaseSession, PhaseResults, PhaseScan, PhaseReconcile, PhaseNotify}

// Index returns the position of p in Phases, or -1
func (p Phase) Index() int {
	for i, phase := range Phases {
		if phase == p {
			return i
		}
	}
	return -1
}

// Dashboard is an interface for live views of the run loop
type Dashboard interface {
	CycleStarted(id string)
	PhaseChanged(id string, phase Phase)
	GradeReported(rec models.GradeRecord)
	CycleFinished(id string, scanned, reported int, err error)
	NextCycleAt(at time.Time)
	IsPaused() bool
}

// NopDashboard discards every update and is never paused
type NopDashboard struct{}

func (NopDashboard) CycleStarted(string)                   {}
func (NopDashboard) PhaseChanged(string, Phase)            {}
func (NopDashboard) GradeReported(models.GradeRecord)      {}
func (NopDashboard) CycleFinished(string, int, int, error) {}
func (NopDashboard) NextCycleAt(time.Time)                 {}
func (NopDashboard) IsPaused() bool                        { return false }
