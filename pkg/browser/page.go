package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"

	"gradewatch/pkg/portal"
	"gradewatch/pkg/session"
)

// stableWindow is how long network and DOM must stay quiet for WaitStable
const stableWindow = 500 * time.Millisecond

// Page adapts a rod page to portal.Page
type Page struct {
	page    *rod.Page
	browser *Browser
	router  *rod.HijackRouter
}

var _ portal.Page = (*Page)(nil)

func (p *Page) Navigate(ctx context.Context, url string) error {
	page := p.page.Context(ctx)
	if err := page.Navigate(url); err != nil {
		return p.classify(fmt.Errorf("navigate %s: %w", url, err))
	}
	if err := page.WaitLoad(); err != nil {
		return p.classify(fmt.Errorf("wait load %s: %w", url, err))
	}
	return nil
}

func (p *Page) URL() string {
	info, err := p.page.Info()
	if err != nil {
		return ""
	}
	return info.URL
}

func (p *Page) Count(ctx context.Context, selector string) (int, error) {
	els, err := p.page.Context(ctx).Elements(selector)
	if err != nil {
		return 0, p.classify(err)
	}
	return len(els), nil
}

func (p *Page) Fill(ctx context.Context, selector, value string) error {
	el, err := p.first(ctx, selector)
	if err != nil {
		return err
	}
	if err := el.SelectAllText(); err != nil {
		return p.classify(fmt.Errorf("select %s: %w", selector, err))
	}
	if err := el.Input(value); err != nil {
		return p.classify(fmt.Errorf("input %s: %w", selector, err))
	}
	return nil
}

func (p *Page) Click(ctx context.Context, selector string) error {
	return p.ClickNth(ctx, selector, 0)
}

func (p *Page) ClickNth(ctx context.Context, selector string, index int) error {
	els, err := p.page.Context(ctx).Elements(selector)
	if err != nil {
		return p.classify(err)
	}
	if index < 0 || index >= len(els) {
		return fmt.Errorf("no element %d for %s (%d found)", index, selector, len(els))
	}
	el := els[index]
	if err := el.ScrollIntoView(); err != nil {
		return p.classify(fmt.Errorf("scroll to %s: %w", selector, err))
	}
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return p.classify(fmt.Errorf("click %s: %w", selector, err))
	}
	return nil
}

func (p *Page) WaitFor(ctx context.Context, selector string, timeout time.Duration) error {
	el, err := p.page.Context(ctx).Timeout(timeout).Element(selector)
	if err != nil {
		return p.classify(fmt.Errorf("wait for %s: %w", selector, err))
	}
	if err := el.Timeout(timeout).WaitVisible(); err != nil {
		return p.classify(fmt.Errorf("wait visible %s: %w", selector, err))
	}
	return nil
}

func (p *Page) WaitStable(ctx context.Context, timeout time.Duration) error {
	if err := p.page.Context(ctx).Timeout(timeout).WaitStable(stableWindow); err != nil {
		return p.classify(err)
	}
	return nil
}

func (p *Page) OuterHTML(ctx context.Context, selector string) (string, error) {
	el, err := p.first(ctx, selector)
	if err != nil {
		return "", err
	}
	html, err := el.HTML()
	if err != nil {
		return "", p.classify(err)
	}
	return html, nil
}

// StorageState snapshots the cookies of the incognito context and the
// local storage of the current origin. Origins restored at page creation
// but not visited are carried over.
func (p *Page) StorageState(ctx context.Context) (*session.State, error) {
	cookies, err := p.browser.ctx.GetCookies()
	if err != nil {
		return nil, p.classify(fmt.Errorf("read cookies: %w", err))
	}
	state := &session.State{Cookies: fromNetworkCookies(cookies)}

	res, err := p.page.Context(ctx).Eval(`() => JSON.stringify({
		origin: location.origin,
		entries: Object.entries(window.localStorage || {}),
	})`)
	if err != nil {
		return nil, p.classify(fmt.Errorf("read local storage: %w", err))
	}

	var current struct {
		Origin  string      `json:"origin"`
		Entries [][2]string `json:"entries"`
	}
	if err := json.Unmarshal([]byte(res.Value.Str()), &current); err != nil {
		return nil, fmt.Errorf("decode local storage: %w", err)
	}
	state.Origins = mergeOrigins(p.browser.restored, current.Origin, current.Entries)
	return state, nil
}

// Close stops request interception and closes the tab
func (p *Page) Close() error {
	if p.router != nil {
		_ = p.router.Stop()
		p.router = nil
	}
	if p.page == nil {
		return nil
	}
	err := p.page.Close()
	p.page = nil
	return err
}

func (p *Page) first(ctx context.Context, selector string) (*rod.Element, error) {
	els, err := p.page.Context(ctx).Elements(selector)
	if err != nil {
		return nil, p.classify(err)
	}
	if len(els) == 0 {
		return nil, fmt.Errorf("no element matches %s", selector)
	}
	return els[0], nil
}

// classify marks err with portal.ErrPageClosed when the target no longer
// answers, so callers can tell a lost page from a failed interaction.
func (p *Page) classify(err error) error {
	if err == nil {
		return nil
	}
	if _, infoErr := p.page.Info(); infoErr != nil {
		return fmt.Errorf("%w: %v", portal.ErrPageClosed, err)
	}
	return err
}
