package portal

import (
	"context"
	"errors"
	"fmt"

	"gradewatch/pkg/config"
	gwerrors "gradewatch/pkg/errors"
	"gradewatch/pkg/logger"
	"gradewatch/pkg/models"
)

// PeriodOutcome summarizes the scan of one reporting period
type PeriodOutcome struct {
	Index   int
	Records int
	Skipped []string
	// Err is set when the whole period was skipped
	Err error
}

// ScanReport is the result of one scan over all periods
type ScanReport struct {
	Records []models.GradeRecord
	Periods []PeriodOutcome
}

// SkippedPeriods counts periods that yielded nothing because they failed
func (r *ScanReport) SkippedPeriods() int {
	n := 0
	for _, p := range r.Periods {
		if p.Err != nil {
			n++
		}
	}
	return n
}

// SkippedRows counts rows skipped across all periods
func (r *ScanReport) SkippedRows() int {
	n := 0
	for _, p := range r.Periods {
		n += len(p.Skipped)
	}
	return n
}

// PeriodScanner visits every reporting period and collects grade records
type PeriodScanner struct {
	cfg    *config.PortalConfig
	sleep  SleepFunc
	logger logger.Logger
}

// NewPeriodScanner creates a scanner. A nil sleep uses Sleep.
func NewPeriodScanner(cfg *config.PortalConfig, sleep SleepFunc, log logger.Logger) *PeriodScanner {
	if sleep == nil {
		sleep = Sleep
	}
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &PeriodScanner{cfg: cfg, sleep: sleep, logger: log.WithField("component", "scanner")}
}

// ScanAllPeriods returns the records of every period in period-then-row order
func (s *PeriodScanner) ScanAllPeriods(ctx context.Context, page Page) ([]models.GradeRecord, error) {
	report, err := s.Scan(ctx, page)
	if err != nil {
		return nil, err
	}
	return report.Records, nil
}

// Scan visits each period listed by the period selector once. Failures
// within a period skip that period or row; only losing the period count
// or the page itself aborts the scan.
func (s *PeriodScanner) Scan(ctx context.Context, page Page) (*ScanReport, error) {
	control := newPeriodControl(page, s.cfg.Selectors, s.cfg.ResultsTimeout)

	count, err := control.ensureOpen(ctx)
	if err != nil {
		return nil, gwerrors.Wrap(gwerrors.ErrorTypeNavigation, "failed to read the list of periods", err)
	}
	s.logger.InfoWithFields("Scanning periods", map[string]interface{}{"periods": count})

	report := &ScanReport{Records: []models.GradeRecord{}}
	cursor := &SubjectCursor{}

	for i := 0; i < count; i++ {
		if err := ctx.Err(); err != nil {
			return nil, gwerrors.Wrap(gwerrors.ErrorTypeNavigation, "scan interrupted", err)
		}

		outcome, records := s.scanPeriod(ctx, page, control, i, cursor)
		if outcome.Err != nil && errors.Is(outcome.Err, ErrPageClosed) {
			return nil, gwerrors.Wrap(gwerrors.ErrorTypeNavigation, "browser page lost during scan", outcome.Err)
		}
		report.Periods = append(report.Periods, outcome)
		report.Records = append(report.Records, records...)
	}

	s.logger.InfoWithFields("Scan complete", map[string]interface{}{
		"periods":         count,
		"records":         len(report.Records),
		"skipped_periods": report.SkippedPeriods(),
		"skipped_rows":    report.SkippedRows(),
	})
	return report, nil
}

func (s *PeriodScanner) scanPeriod(ctx context.Context, page Page, control *periodControl, index int, cursor *SubjectCursor) (PeriodOutcome, []models.GradeRecord) {
	outcome := PeriodOutcome{Index: index}
	log := s.logger.WithField("period", index)

	fail := func(err error) (PeriodOutcome, []models.GradeRecord) {
		outcome.Err = gwerrors.Wrap(gwerrors.ErrorTypeExtraction, fmt.Sprintf("period %d skipped", index), err)
		log.WithError(err).Warn("Skipping period")
		return outcome, nil
	}

	if err := control.selectPeriod(ctx, index); err != nil {
		return fail(err)
	}
	if err := page.WaitStable(ctx, s.cfg.ResultsTimeout); err != nil {
		if errors.Is(err, ErrPageClosed) {
			return fail(err)
		}
		log.WithError(err).Debug("Results view did not settle in time")
	}
	if err := s.sleep(ctx, s.cfg.SettleDelay); err != nil {
		return fail(err)
	}

	markup, err := page.OuterHTML(ctx, s.cfg.Selectors.ResultsTree)
	if err != nil {
		return fail(err)
	}
	rows, err := ParseResultsTree(markup, s.cfg.Selectors, cursor)
	if err != nil {
		return fail(err)
	}

	var records []models.GradeRecord
	for _, row := range rows {
		if row.Skipped() {
			outcome.Skipped = append(outcome.Skipped, row.Skip)
			log.DebugWithFields("Skipping row", map[string]interface{}{"row": row.Row, "reason": row.Skip})
			continue
		}
		records = append(records, *row.Record)
	}
	outcome.Records = len(records)

	log.DebugWithFields("Period scanned", map[string]interface{}{
		"records": outcome.Records,
		"skipped": len(outcome.Skipped),
	})
	return outcome, records
}
