package portal

import (
	"context"
	"errors"
	"fmt"

	"gradewatch/pkg/config"
	gwerrors "gradewatch/pkg/errors"
	"gradewatch/pkg/logger"
	"gradewatch/pkg/session"
)

// CredentialSource supplies the portal username and password
type CredentialSource interface {
	Credentials() (username, password string, err error)
}

// SessionSaver persists a refreshed session snapshot
type SessionSaver interface {
	Save(state *session.State) error
}

// AuthResult describes how the session was established
type AuthResult struct {
	// Reauthenticated is true when the login form had to be submitted
	Reauthenticated bool
	// SessionPersisted is true when the refreshed session was saved
	SessionPersisted bool
	// LandingURL is the page location once authenticated
	LandingURL string
}

// AuthController brings a page to an authenticated portal view
type AuthController struct {
	cfg      *config.PortalConfig
	detector LoginDetector
	creds    CredentialSource
	sessions SessionSaver
	sleep    SleepFunc
	logger   logger.Logger
}

// AuthOption customizes an AuthController
type AuthOption func(*AuthController)

// WithDetector replaces the default login detector
func WithDetector(d LoginDetector) AuthOption {
	return func(a *AuthController) { a.detector = d }
}

// WithAuthSleep replaces the sleep used for the post-login grace period
func WithAuthSleep(fn SleepFunc) AuthOption {
	return func(a *AuthController) { a.sleep = fn }
}

// NewAuthController creates a controller. The default detector combines
// the configured URL markers with the password field selector.
func NewAuthController(cfg *config.PortalConfig, creds CredentialSource, sessions SessionSaver, log logger.Logger, opts ...AuthOption) *AuthController {
	if log == nil {
		log = logger.NewNopLogger()
	}
	a := &AuthController{
		cfg:      cfg,
		detector: NewSignalDetector(cfg.LoginMarkers, cfg.Selectors.PasswordField),
		creds:    creds,
		sessions: sessions,
		sleep:    Sleep,
		logger:   log.WithField("component", "auth"),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// EstablishSession navigates to the portal and logs in if the session is
// not valid. It never retries; the next cycle does.
func (a *AuthController) EstablishSession(ctx context.Context, page Page) (AuthResult, error) {
	var result AuthResult

	navCtx, cancel := context.WithTimeout(ctx, a.cfg.NavigationTimeout)
	err := page.Navigate(navCtx, a.cfg.URL)
	cancel()
	if err != nil {
		return result, gwerrors.Wrap(gwerrors.ErrorTypeNavigation, fmt.Sprintf("failed to reach portal %s", a.cfg.URL), err)
	}

	required, err := a.detector.RequiresLogin(ctx, page)
	if err != nil {
		return result, gwerrors.Wrap(gwerrors.ErrorTypeNavigation, "failed to inspect portal landing page", err)
	}
	if !required {
		result.LandingURL = page.URL()
		a.logger.DebugWithFields("Stored session is valid", map[string]interface{}{"url": result.LandingURL})
		return result, nil
	}

	a.logger.InfoWithFields("Session expired, logging in again", map[string]interface{}{"url": page.URL()})

	username, password, err := a.creds.Credentials()
	if err != nil || username == "" || password == "" {
		if err == nil {
			err = errors.New("empty username or password")
		}
		return result, gwerrors.Wrap(gwerrors.ErrorTypeConfiguration, "portal credentials are required for automatic re-login (HP_USERNAME/HP_PASSWORD)", err)
	}

	if err := a.submitLogin(ctx, page, username, password); err != nil {
		return result, err
	}
	result.Reauthenticated = true

	if err := page.WaitStable(ctx, a.cfg.NavigationTimeout); err != nil {
		a.logger.WithError(err).Warn("Page did not settle after login submission")
	}
	if err := a.sleep(ctx, a.cfg.LoginGrace); err != nil {
		return result, gwerrors.Wrap(gwerrors.ErrorTypeAuth, "login interrupted", err)
	}

	still, err := a.detector.RequiresLogin(ctx, page)
	if err != nil {
		return result, gwerrors.Wrap(gwerrors.ErrorTypeAuth, "failed to verify login outcome", err)
	}
	if still {
		return result, gwerrors.Newf(gwerrors.ErrorTypeAuth,
			"still on the login page after submitting the form (%s): check credentials", page.URL())
	}
	result.LandingURL = page.URL()

	a.logger.InfoWithFields("Logged in", map[string]interface{}{"url": result.LandingURL})

	state, err := page.StorageState(ctx)
	if err == nil {
		err = a.sessions.Save(state)
	}
	if err != nil {
		a.logger.WithError(err).Error("Failed to persist refreshed session")
		return result, nil
	}
	result.SessionPersisted = true
	return result, nil
}

// submitLogin fills the first matching username and password fields and
// activates the first matching submit control.
func (a *AuthController) submitLogin(ctx context.Context, page Page, username, password string) error {
	sel := a.cfg.Selectors

	userField, ok := firstMatch(ctx, page, sel.UsernameCandidates)
	if !ok {
		return gwerrors.New(gwerrors.ErrorTypeAuth, "login form not recognized: no username field found")
	}
	passField, ok := firstMatch(ctx, page, sel.PasswordCandidates)
	if !ok {
		return gwerrors.New(gwerrors.ErrorTypeAuth, "login form not recognized: no password field found")
	}

	if err := page.Fill(ctx, userField, username); err != nil {
		return gwerrors.Wrap(gwerrors.ErrorTypeAuth, "failed to fill username", err)
	}
	if err := page.Fill(ctx, passField, password); err != nil {
		return gwerrors.Wrap(gwerrors.ErrorTypeAuth, "failed to fill password", err)
	}

	submit, ok := firstMatch(ctx, page, sel.SubmitCandidates)
	if !ok {
		return gwerrors.New(gwerrors.ErrorTypeAuth, "login form not recognized: no submit control found")
	}
	if err := page.Click(ctx, submit); err != nil {
		return gwerrors.Wrap(gwerrors.ErrorTypeAuth, "failed to submit login form", err)
	}

	a.logger.DebugWithFields("Login form submitted", map[string]interface{}{
		"username_field": userField,
		"password_field": passField,
		"submit":         submit,
	})
	return nil
}
