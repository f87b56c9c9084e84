package portal

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gradewatch/pkg/config"
	gwerrors "gradewatch/pkg/errors"
	"gradewatch/pkg/logger"
	"gradewatch/pkg/session"
)

const (
	portalURL = "https://portal.example.fr/hp/etudiant"
	ssoURL    = "https://cas.example.fr/login?service=hp"
)

type staticCreds struct {
	user, pass string
	err        error
}

func (c staticCreds) Credentials() (string, string, error) { return c.user, c.pass, c.err }

type recordingSaver struct {
	saved []*session.State
	err   error
}

func (s *recordingSaver) Save(state *session.State) error {
	if s.err != nil {
		return s.err
	}
	s.saved = append(s.saved, state)
	return nil
}

func testPortalConfig() *config.PortalConfig {
	cfg := config.DefaultConfig().Portal
	cfg.URL = portalURL
	cfg.NavigationTimeout = time.Second
	cfg.ResultsTimeout = time.Second
	return &cfg
}

// ssoPage redirects to the gateway and lands on the portal once the
// submit control is clicked with the expected credentials.
func ssoPage(user, pass string) *fakePage {
	page := newFakePage("")
	page.onNavigate = func(p *fakePage, url string) {
		p.url = ssoURL
		p.counts["input[type='password']"] = 1
		p.counts["#username"] = 1
		p.counts["input[name='password']"] = 1
		p.counts["button[type='submit']"] = 1
	}
	page.onClick = func(p *fakePage, selector string, _ int) error {
		if selector != "button[type='submit']" {
			return nil
		}
		if p.fills["#username"] == user && p.fills["input[name='password']"] == pass {
			p.url = portalURL
			p.counts = map[string]int{}
		}
		return nil
	}
	page.state = &session.State{Cookies: []session.Cookie{{Name: "JSESSIONID", Value: "abc", Domain: "portal.example.fr", Path: "/"}}}
	return page
}

func TestEstablishSessionValidSession(t *testing.T) {
	page := newFakePage("")
	saver := &recordingSaver{}
	a := NewAuthController(testPortalConfig(), staticCreds{}, saver, logger.NewNopLogger(), WithAuthSleep(noSleep))

	result, err := a.EstablishSession(context.Background(), page)
	require.NoError(t, err)

	assert.False(t, result.Reauthenticated)
	assert.Equal(t, portalURL, result.LandingURL)
	assert.Equal(t, []string{portalURL}, page.navigations)
	assert.Empty(t, page.fills)
	assert.Empty(t, saver.saved)
}

func TestEstablishSessionRelogin(t *testing.T) {
	page := ssoPage("jdoe", "s3cret")
	saver := &recordingSaver{}
	log := logger.NewTestLogger()
	a := NewAuthController(testPortalConfig(), staticCreds{user: "jdoe", pass: "s3cret"}, saver, log, WithAuthSleep(noSleep))

	result, err := a.EstablishSession(context.Background(), page)
	require.NoError(t, err)

	assert.True(t, result.Reauthenticated)
	assert.True(t, result.SessionPersisted)
	assert.Equal(t, portalURL, result.LandingURL)
	assert.Equal(t, "jdoe", page.fills["#username"])
	assert.Equal(t, "s3cret", page.fills["input[name='password']"])
	require.Len(t, saver.saved, 1)
	assert.Equal(t, "JSESSIONID", saver.saved[0].Cookies[0].Name)
	assert.True(t, log.HasMessage("Logged in"))
}

func TestEstablishSessionMissingCredentials(t *testing.T) {
	page := ssoPage("jdoe", "s3cret")
	saver := &recordingSaver{}
	a := NewAuthController(testPortalConfig(), staticCreds{err: errors.New("not found")}, saver, nil, WithAuthSleep(noSleep))

	_, err := a.EstablishSession(context.Background(), page)
	require.Error(t, err)
	assert.True(t, gwerrors.Is(err, gwerrors.ErrorTypeConfiguration))
	assert.Empty(t, page.fills)
	assert.Empty(t, saver.saved)
}

func TestEstablishSessionBadCredentials(t *testing.T) {
	page := ssoPage("jdoe", "s3cret")
	saver := &recordingSaver{}
	a := NewAuthController(testPortalConfig(), staticCreds{user: "jdoe", pass: "wrong"}, saver, nil, WithAuthSleep(noSleep))

	_, err := a.EstablishSession(context.Background(), page)
	require.Error(t, err)
	assert.True(t, gwerrors.Is(err, gwerrors.ErrorTypeAuth))
	assert.Contains(t, err.Error(), "still on the login page")
	assert.Empty(t, saver.saved)
}

func TestEstablishSessionUnrecognizedForm(t *testing.T) {
	page := newFakePage("")
	page.onNavigate = func(p *fakePage, url string) {
		p.url = ssoURL
		p.counts["#login-field"] = 1
	}
	a := NewAuthController(testPortalConfig(), staticCreds{user: "jdoe", pass: "x"}, &recordingSaver{}, nil, WithAuthSleep(noSleep))

	_, err := a.EstablishSession(context.Background(), page)
	require.Error(t, err)
	assert.True(t, gwerrors.Is(err, gwerrors.ErrorTypeAuth))
	assert.Contains(t, err.Error(), "no username field")
}

func TestEstablishSessionNavigationFailure(t *testing.T) {
	page := newFakePage("")
	page.navigateErr = errors.New("net::ERR_NAME_NOT_RESOLVED")
	a := NewAuthController(testPortalConfig(), staticCreds{}, &recordingSaver{}, nil)

	_, err := a.EstablishSession(context.Background(), page)
	require.Error(t, err)
	assert.True(t, gwerrors.Is(err, gwerrors.ErrorTypeNavigation))
}

func TestEstablishSessionPersistFailureIsNotFatal(t *testing.T) {
	page := ssoPage("jdoe", "s3cret")
	saver := &recordingSaver{err: errors.New("disk full")}
	log := logger.NewTestLogger()
	a := NewAuthController(testPortalConfig(), staticCreds{user: "jdoe", pass: "s3cret"}, saver, log, WithAuthSleep(noSleep))

	result, err := a.EstablishSession(context.Background(), page)
	require.NoError(t, err)
	assert.True(t, result.Reauthenticated)
	assert.False(t, result.SessionPersisted)
	assert.True(t, log.HasError())
}

type alwaysLogin struct{}

func (alwaysLogin) RequiresLogin(ctx context.Context, page Page) (bool, error) { return true, nil }

func TestEstablishSessionCustomDetector(t *testing.T) {
	page := ssoPage("jdoe", "s3cret")
	a := NewAuthController(testPortalConfig(), staticCreds{user: "jdoe", pass: "s3cret"}, &recordingSaver{}, nil,
		WithAuthSleep(noSleep), WithDetector(alwaysLogin{}))

	_, err := a.EstablishSession(context.Background(), page)
	require.Error(t, err)
	assert.True(t, gwerrors.Is(err, gwerrors.ErrorTypeAuth))
}
