package scraper

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"gradewatch/pkg/config"
	gwerrors "gradewatch/pkg/errors"
	"gradewatch/pkg/logger"
	"gradewatch/pkg/notify"
	"gradewatch/pkg/portal"
	"gradewatch/pkg/reconcile"
	"gradewatch/pkg/ui"
)

// Deps are the collaborators of a Scraper
type Deps struct {
	Launch      LaunchFunc
	Sessions    SessionStore
	History     HistoryStore
	Credentials portal.CredentialSource
	Notifier    notify.Notifier
	// Sleep replaces portal.Sleep for the interval and settle waits
	Sleep portal.SleepFunc
	// AuthOptions customize the login flow, e.g. the login detector
	AuthOptions []portal.AuthOption
	// Dashboard receives cycle progress; nil means none
	Dashboard ui.Dashboard
}

// CycleReport summarizes one run cycle
type CycleReport struct {
	ID              string
	StartedAt       time.Time
	Duration        time.Duration
	Reauthenticated bool
	Periods         int
	SkippedPeriods  int
	SkippedRows     int
	Scanned         int
	New             int
}

// Scraper orchestrates run cycles
type Scraper struct {
	config   *config.Config
	launch   LaunchFunc
	sessions SessionStore
	history  HistoryStore
	creds    portal.CredentialSource
	notifier notify.Notifier
	schedule *IntervalSchedule
	sleep    portal.SleepFunc
	authOpts []portal.AuthOption
	board    ui.Dashboard
	logger   logger.Logger
}

// New creates a Scraper. All Deps except Sleep and AuthOptions are required.
func New(cfg *config.Config, deps Deps, log logger.Logger) (*Scraper, error) {
	switch {
	case cfg == nil:
		return nil, errors.New("config is required")
	case deps.Launch == nil:
		return nil, errors.New("browser launcher is required")
	case deps.Sessions == nil:
		return nil, errors.New("session store is required")
	case deps.History == nil:
		return nil, errors.New("history store is required")
	case deps.Credentials == nil:
		return nil, errors.New("credential source is required")
	case deps.Notifier == nil:
		return nil, errors.New("notifier is required")
	}
	if log == nil {
		log = logger.NewNopLogger()
	}
	sleep := deps.Sleep
	if sleep == nil {
		sleep = portal.Sleep
	}
	board := deps.Dashboard
	if board == nil {
		board = ui.NopDashboard{}
	}

	return &Scraper{
		config:   cfg,
		launch:   deps.Launch,
		sessions: deps.Sessions,
		history:  deps.History,
		creds:    deps.Credentials,
		notifier: deps.Notifier,
		schedule: NewIntervalSchedule(cfg.Schedule.Interval),
		sleep:    sleep,
		authOpts: append([]portal.AuthOption{portal.WithAuthSleep(sleep)}, deps.AuthOptions...),
		board:    board,
		logger:   log,
	}, nil
}

// Run executes cycles until ctx is cancelled. Cycle failures are reported
// and never end the loop.
func (s *Scraper) Run(ctx context.Context) error {
	logger.LogComponentStart(s.logger, "scheduler", map[string]interface{}{
		"schedule": s.schedule.String(),
		"portal":   s.config.Portal.URL,
		"headless": s.config.Browser.Headless,
	})

	for {
		if s.board.IsPaused() {
			s.logger.Info("Cycle skipped while paused")
		} else {
			_, _ = s.RunOnce(ctx)
		}

		next := s.schedule.Next(time.Now())
		s.board.NextCycleAt(next)
		s.logger.InfoWithFields("Sleeping until next cycle", map[string]interface{}{
			"next_cycle": next.In(s.config.Location()).Format(time.RFC3339),
		})
		if err := s.sleep(ctx, time.Until(next)); err != nil {
			s.logger.Info("Scheduler stopped")
			return nil
		}
	}
}

// RunOnce executes one cycle and reports its failure, if any, through
// the notifier. Panics are recovered into errors.
func (s *Scraper) RunOnce(ctx context.Context) (report *CycleReport, err error) {
	// Cancelling ctx must not abort a cycle midway.
	cycleCtx := context.WithoutCancel(ctx)

	defer func() {
		if r := recover(); r != nil {
			err = gwerrors.Newf(gwerrors.ErrorTypeUnknown, "unexpected failure during run cycle: %v", r)
		}
		if err != nil {
			s.reportFailure(cycleCtx, report, err)
		}
		if report != nil {
			s.board.CycleFinished(report.ID, report.Scanned, report.New, err)
		}
	}()

	report = newCycleReport()
	return report, s.runCycle(cycleCtx, report)
}

// RunCycle executes one cycle without error reporting. The browser is
// closed before it returns, whatever the outcome.
func (s *Scraper) RunCycle(ctx context.Context) (*CycleReport, error) {
	report := newCycleReport()
	return report, s.runCycle(ctx, report)
}

func newCycleReport() *CycleReport {
	return &CycleReport{ID: uuid.NewString(), StartedAt: time.Now()}
}

func (s *Scraper) runCycle(ctx context.Context, report *CycleReport) error {
	log := logger.ForCycle(s.logger, report.ID)
	defer func() { report.Duration = time.Since(report.StartedAt) }()

	log.InfoWithFields("Starting run cycle", map[string]interface{}{
		"headless": s.config.Browser.Headless,
	})
	s.board.CycleStarted(report.ID)

	s.board.PhaseChanged(report.ID, ui.PhaseLaunch)
	browser, err := s.launch(ctx)
	if err != nil {
		return gwerrors.Wrap(gwerrors.ErrorTypeUnknown, "failed to start browser", err)
	}
	defer func() {
		if err := browser.Close(); err != nil {
			log.WithError(err).Warn("Failed to close browser")
		}
	}()

	page, err := s.openPage(ctx, browser, log)
	if err != nil {
		return err
	}

	s.board.PhaseChanged(report.ID, ui.PhaseSession)
	auth := portal.NewAuthController(&s.config.Portal, s.creds, s.sessions, log, s.authOpts...)
	authResult, err := auth.EstablishSession(ctx, page)
	if err != nil {
		return err
	}
	report.Reauthenticated = authResult.Reauthenticated

	s.board.PhaseChanged(report.ID, ui.PhaseResults)
	if err := portal.OpenResults(ctx, page, &s.config.Portal); err != nil {
		return err
	}

	s.board.PhaseChanged(report.ID, ui.PhaseScan)
	scan, err := portal.NewPeriodScanner(&s.config.Portal, s.sleep, log).Scan(ctx, page)
	if err != nil {
		return err
	}
	report.Periods = len(scan.Periods)
	report.SkippedPeriods = scan.SkippedPeriods()
	report.SkippedRows = scan.SkippedRows()
	report.Scanned = len(scan.Records)

	s.board.PhaseChanged(report.ID, ui.PhaseReconcile)
	// Re-read so edits made to the file between cycles are honoured.
	result := reconcile.Reconcile(scan.Records, s.history.Load())
	report.New = len(result.New)

	s.board.PhaseChanged(report.ID, ui.PhaseNotify)
	for _, rec := range result.New {
		log.InfoWithFields("New grade", map[string]interface{}{
			"subject": rec.Subject,
			"grade":   rec.Grade,
			"date":    rec.Date,
		})
		s.notifier.NotifyGrade(ctx, rec)
		s.board.GradeReported(rec)
	}

	if result.Changed() {
		if err := s.history.Save(result.History); err != nil {
			return err
		}
	}

	log.InfoWithFields("Run cycle complete", map[string]interface{}{
		"scanned":         report.Scanned,
		"new":             report.New,
		"periods":         report.Periods,
		"skipped_periods": report.SkippedPeriods,
		"reauthenticated": report.Reauthenticated,
		"duration_ms":     time.Since(report.StartedAt).Milliseconds(),
	})
	return nil
}

// openPage restores the stored session into a new page. An unreadable or
// rejected session falls back to a blank page so the login flow can
// recover it.
func (s *Scraper) openPage(ctx context.Context, browser BrowserSession, log logger.Logger) (portal.Page, error) {
	state, err := s.sessions.Load()
	if err != nil {
		log.WithError(err).Warn("Stored session unusable, starting unauthenticated")
		state = nil
	}

	page, err := browser.OpenPage(ctx, state)
	if err != nil && state != nil {
		log.WithError(err).Warn("Failed to restore stored session, starting unauthenticated")
		page, err = browser.OpenPage(ctx, nil)
	}
	if err != nil {
		return nil, gwerrors.Wrap(gwerrors.ErrorTypeUnknown, "failed to open browser page", err)
	}
	return page, nil
}

// reportFailure logs err and posts it to the error sink. Error types that
// are normally handled inside a component are logged as a degraded cycle.
func (s *Scraper) reportFailure(ctx context.Context, report *CycleReport, err error) {
	errType := gwerrors.TypeOf(err)
	fields := map[string]interface{}{"error_type": string(errType)}
	log := s.logger
	if report != nil {
		log = logger.ForCycle(log, report.ID)
	}
	if gwerrors.IsCycleFatal(errType) {
		log.WithError(err).ErrorWithFields("Run cycle failed", fields)
	} else {
		log.WithError(err).WarnWithFields("Run cycle degraded", fields)
	}

	s.notifier.NotifyError(ctx, failureMessage(err))
}

// failureMessage renders err for the error notification
func failureMessage(err error) string {
	switch gwerrors.TypeOf(err) {
	case gwerrors.ErrorTypeConfiguration:
		return fmt.Sprintf("Configuration incomplète : %v", err)
	case gwerrors.ErrorTypeAuth:
		return fmt.Sprintf("Échec de la connexion au portail : %v", err)
	case gwerrors.ErrorTypeNavigation:
		return fmt.Sprintf("Erreur pendant la navigation : %v", err)
	case gwerrors.ErrorTypeStorage:
		return fmt.Sprintf("Impossible d'enregistrer l'historique : %v", err)
	default:
		return fmt.Sprintf("Erreur critique lors de l'exécution : %v", err)
	}
}
