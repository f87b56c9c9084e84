package portal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gradewatch/pkg/config"
)

// controlState is what the period selector was last observed to be.
// Observations go stale after any interaction with the page.
type controlState int

const (
	stateUnknown controlState = iota
	stateClosed
	stateOpen
)

func (s controlState) String() string {
	switch s {
	case stateClosed:
		return "closed"
	case stateOpen:
		return "open"
	default:
		return "unknown"
	}
}

// periodControl drives the dropdown listing reporting periods. The
// dropdown closes or re-renders on selection, so every read or selection
// goes through ensureOpen instead of trusting the recorded state.
type periodControl struct {
	page    Page
	trigger string
	option  string
	timeout time.Duration

	state   controlState
	options int
}

func newPeriodControl(page Page, sel config.SelectorsConfig, timeout time.Duration) *periodControl {
	return &periodControl{
		page:    page,
		trigger: sel.PeriodTrigger,
		option:  sel.PeriodOption,
		timeout: timeout,
	}
}

// ensureOpen opens the dropdown if its options are not rendered and
// returns how many options it lists. Calling it on an open dropdown only
// re-counts the options.
func (c *periodControl) ensureOpen(ctx context.Context) (int, error) {
	n, err := c.page.Count(ctx, c.option)
	if err != nil {
		c.state = stateUnknown
		return 0, fmt.Errorf("failed to count period options: %w", err)
	}
	if n > 0 {
		c.state, c.options = stateOpen, n
		return n, nil
	}

	c.state = stateClosed
	if err := c.page.Click(ctx, c.trigger); err != nil {
		return 0, fmt.Errorf("failed to open period selector: %w", err)
	}
	if err := c.page.WaitFor(ctx, c.option, c.timeout); err != nil {
		return 0, fmt.Errorf("period options did not appear: %w", err)
	}

	n, err = c.page.Count(ctx, c.option)
	if err != nil {
		c.state = stateUnknown
		return 0, fmt.Errorf("failed to count period options: %w", err)
	}
	if n == 0 {
		c.state = stateUnknown
		return 0, errors.New("period selector opened without options")
	}
	c.state, c.options = stateOpen, n
	return n, nil
}

// selectPeriod re-opens the dropdown and picks the option at index
func (c *periodControl) selectPeriod(ctx context.Context, index int) error {
	n, err := c.ensureOpen(ctx)
	if err != nil {
		return err
	}
	if index >= n {
		return fmt.Errorf("period %d not listed (%d options available)", index, n)
	}
	if err := c.page.ClickNth(ctx, c.option, index); err != nil {
		c.state = stateUnknown
		return fmt.Errorf("failed to select period %d: %w", index, err)
	}
	c.state = stateUnknown
	return nil
}
