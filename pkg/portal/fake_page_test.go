package portal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gradewatch/pkg/session"
)

// fakePage is an in-memory Page. counts drives Count; hooks let a test
// react to clicks the way the real portal would.
type fakePage struct {
	url    string
	counts map[string]int

	navigateErr error
	onNavigate  func(p *fakePage, url string)
	onClick     func(p *fakePage, selector string, index int) error
	markup      func(p *fakePage, selector string) (string, error)
	waitForErr  error
	stableErr   error
	state       *session.State
	stateErr    error

	navigations []string
	fills       map[string]string
	clicks      []string
}

func newFakePage(url string) *fakePage {
	return &fakePage{url: url, counts: map[string]int{}, fills: map[string]string{}}
}

func (p *fakePage) Navigate(ctx context.Context, url string) error {
	p.navigations = append(p.navigations, url)
	if p.navigateErr != nil {
		return p.navigateErr
	}
	p.url = url
	if p.onNavigate != nil {
		p.onNavigate(p, url)
	}
	return nil
}

func (p *fakePage) URL() string { return p.url }

func (p *fakePage) Count(ctx context.Context, selector string) (int, error) {
	return p.counts[selector], nil
}

func (p *fakePage) Fill(ctx context.Context, selector, value string) error {
	if p.counts[selector] == 0 {
		return fmt.Errorf("no element matches %s", selector)
	}
	p.fills[selector] = value
	return nil
}

func (p *fakePage) Click(ctx context.Context, selector string) error {
	return p.ClickNth(ctx, selector, 0)
}

func (p *fakePage) ClickNth(ctx context.Context, selector string, index int) error {
	p.clicks = append(p.clicks, fmt.Sprintf("%s#%d", selector, index))
	if p.onClick != nil {
		return p.onClick(p, selector, index)
	}
	return nil
}

func (p *fakePage) WaitFor(ctx context.Context, selector string, timeout time.Duration) error {
	if p.waitForErr != nil {
		return p.waitForErr
	}
	if p.counts[selector] == 0 {
		return errors.New("timed out")
	}
	return nil
}

func (p *fakePage) WaitStable(ctx context.Context, timeout time.Duration) error {
	return p.stableErr
}

func (p *fakePage) OuterHTML(ctx context.Context, selector string) (string, error) {
	if p.markup == nil {
		return "", errors.New("no markup")
	}
	return p.markup(p, selector)
}

func (p *fakePage) StorageState(ctx context.Context) (*session.State, error) {
	return p.state, p.stateErr
}

func (p *fakePage) clickCount(prefix string) int {
	n := 0
	for _, c := range p.clicks {
		if len(c) >= len(prefix) && c[:len(prefix)] == prefix {
			n++
		}
	}
	return n
}

func noSleep(ctx context.Context, d time.Duration) error { return ctx.Err() }
