package browser

import (
	"context"
	"fmt"
	"io"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/cdp"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"

	"gradewatch/pkg/config"
	"gradewatch/pkg/logger"
	"gradewatch/pkg/portal"
	"gradewatch/pkg/session"
)

// Browser is a Chrome instance scoped to one run cycle
type Browser struct {
	cfg    *config.BrowserConfig
	root   *rod.Browser
	ctx    *rod.Browser
	lnch   *launcher.Launcher
	conn   io.Closer
	logger logger.Logger

	restored []session.Origin
	pages    []*Page
}

// Launch starts a local Chrome, or connects to RemoteURL when set, and
// opens an incognito context for the cycle.
func Launch(ctx context.Context, cfg *config.BrowserConfig, log logger.Logger) (*Browser, error) {
	if log == nil {
		log = logger.NewNopLogger()
	}
	b := &Browser{cfg: cfg, logger: log.WithField("component", "browser")}

	wsURL := cfg.RemoteURL
	if wsURL != "" {
		b.logger.InfoWithFields("Connecting to remote browser", map[string]interface{}{"url": wsURL})
	} else {
		l := launcher.New().
			Context(ctx).
			Headless(cfg.Headless).
			Set("disable-blink-features", "AutomationControlled")

		u, err := l.Launch()
		if err != nil {
			return nil, fmt.Errorf("failed to launch browser: %w", err)
		}
		wsURL = u
		b.lnch = l
		b.logger.DebugWithFields("Launched local browser", map[string]interface{}{
			"headless": cfg.Headless,
			"url":      wsURL,
		})
	}

	// The websocket is dialed here so Close can release it without
	// shutting down a remote browser.
	ws := &cdp.WebSocket{}
	if err := ws.Connect(ctx, wsURL, nil); err != nil {
		b.cleanupLauncher()
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}
	b.conn = ws

	root := rod.New().Client(cdp.New().Start(ws)).Context(ctx)
	if err := root.Connect(); err != nil {
		_ = b.Close()
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}
	b.root = root

	incognito, err := root.Incognito()
	if err != nil {
		_ = b.Close()
		return nil, fmt.Errorf("failed to create browser context: %w", err)
	}
	b.ctx = incognito

	return b, nil
}

// NewPage opens a tab with stealth evasions and resource blocking applied
// and the session snapshot restored.
func (b *Browser) NewPage(ctx context.Context, state *session.State) (*Page, error) {
	var (
		page *rod.Page
		err  error
	)
	if b.cfg.Stealth {
		page, err = stealth.Page(b.ctx)
	} else {
		page, err = b.ctx.Page(proto.TargetCreateTarget{URL: ""})
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open page: %w", err)
	}

	if b.cfg.UserAgent != "" {
		if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: b.cfg.UserAgent}); err != nil {
			b.logger.WithError(err).Warn("Failed to override user agent")
		}
	}

	if err := b.restore(page, state); err != nil {
		_ = page.Close()
		return nil, err
	}

	p := &Page{page: page, browser: b}
	if len(b.cfg.BlockedTypes) > 0 {
		p.router = applyResourceBlocking(page, b.cfg.BlockedTypes)
	}
	b.pages = append(b.pages, p)
	return p, nil
}

// OpenPage is NewPage returning the portal interface
func (b *Browser) OpenPage(ctx context.Context, state *session.State) (portal.Page, error) {
	p, err := b.NewPage(ctx, state)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (b *Browser) restore(page *rod.Page, state *session.State) error {
	if state.Empty() {
		return nil
	}

	if cookies := cookieParams(state.Cookies); len(cookies) > 0 {
		if err := b.ctx.SetCookies(cookies); err != nil {
			return fmt.Errorf("failed to restore session cookies: %w", err)
		}
	}

	if script, ok := localStorageScript(state.Origins); ok {
		if _, err := page.EvalOnNewDocument(script); err != nil {
			return fmt.Errorf("failed to restore local storage: %w", err)
		}
	}
	b.restored = state.Origins

	b.logger.DebugWithFields("Session restored", map[string]interface{}{
		"cookies": len(state.Cookies),
		"origins": len(state.Origins),
	})
	return nil
}

// Close releases pages, the incognito context and the DevTools
// connection. A locally launched browser is shut down, a remote one is
// left running. It is safe to call more than once.
func (b *Browser) Close() error {
	for _, p := range b.pages {
		_ = p.Close()
	}
	b.pages = nil

	var firstErr error
	if b.ctx != nil {
		if err := b.ctx.Close(); err != nil {
			firstErr = err
		}
		b.ctx = nil
	}
	if b.root != nil {
		if b.lnch != nil {
			if err := b.root.Close(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
		b.root = nil
	}
	if b.conn != nil {
		// Shutting down a local browser already dropped the socket.
		if err := b.conn.Close(); err != nil && b.lnch == nil && firstErr == nil {
			firstErr = err
		}
		b.conn = nil
	}
	b.cleanupLauncher()

	if firstErr != nil {
		return fmt.Errorf("failed to close browser: %w", firstErr)
	}
	return nil
}

func (b *Browser) cleanupLauncher() {
	if b.lnch != nil {
		b.lnch.Cleanup()
		b.lnch = nil
	}
}
