package admin

import (
	"crypto/subtle"
	"time"

	"github.com/ghaggin/openvpn-admin/internal/config"
	"github.com/ghaggin/openvpn-admin/internal/model"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

var (
	ErrRateLimited        = errors.New("rate limit exceeded")
	ErrCSRFMismatch       = errors.New("security token mismatch")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Clock returns the current time.
type Clock func() time.Time

type LoginForm struct {
	CSRFToken string
	Username  string
	Password  string
}

// Controller holds the session state machine. It never touches HTTP or the
// session store, so every transition can be driven with a fixed clock.
type Controller struct {
	window  SlidingWindow
	timeout time.Duration
	now     Clock
	tokens  TokenSource
}

type ControllerParams struct {
	fx.In

	Config *config.Config
	Clock  Clock       `optional:"true"`
	Tokens TokenSource `optional:"true"`
}

func NewController(p ControllerParams) (*Controller, error) {
	c := &Controller{
		window: SlidingWindow{
			Window: p.Config.RateLimit.Window,
			Limit:  p.Config.RateLimit.MaxRequests,
		},
		timeout: p.Config.Auth.SessionTimeout,
		now:     p.Clock,
		tokens:  p.Tokens,
	}
	if c.now == nil {
		c.now = time.Now
	}
	if c.tokens == nil {
		c.tokens = randomToken
	}

	return c, nil
}

func (c *Controller) Now() time.Time {
	return c.now()
}

// Track records the request in the session log and returns ErrRateLimited
// once the window holds more than the limit. Rejected requests are recorded
// too.
func (c *Controller) Track(s *model.Session) error {
	var ok bool
	s.Requests, ok = c.window.Record(s.Requests, c.now())
	if !ok {
		return ErrRateLimited
	}
	return nil
}

// EnsureCSRF issues the session's token on first use. An existing token is
// kept for the life of the session.
func (c *Controller) EnsureCSRF(s *model.Session) error {
	if s.CSRFToken != "" {
		return nil
	}

	token, err := c.tokens()
	if err != nil {
		return errors.Wrap(err, "generate csrf token")
	}
	s.CSRFToken = token
	return nil
}

// Login checks the CSRF token first, then the credentials. On success the
// session becomes authenticated with the login time set to now.
func (c *Controller) Login(s *model.Session, creds config.Credentials, form LoginForm) error {
	if !validToken(s.CSRFToken, form.CSRFToken) {
		return ErrCSRFMismatch
	}

	if !equal(form.Username, creds.Username) || !equal(form.Password, creds.Password) {
		return ErrInvalidCredentials
	}

	s.Authenticated = true
	s.User = creds.Username
	s.LoginTime = c.now()
	return nil
}

// Expired reports whether an authenticated session is older than the
// session timeout.
func (c *Controller) Expired(s *model.Session) bool {
	if !s.Authenticated || s.LoginTime.IsZero() {
		return false
	}
	return c.now().Sub(s.LoginTime) > c.timeout
}

func equal(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
