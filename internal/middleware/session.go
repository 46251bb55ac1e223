package middleware

import (
	"context"
	"encoding/gob"
	"net/http"

	"github.com/alexedwards/scs/v2"
	"github.com/ghaggin/openvpn-admin/internal/config"
	"github.com/ghaggin/openvpn-admin/internal/model"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	sessionKey = "session_key"
)

type SessionManager struct {
	impl *scs.SessionManager
	log  *zap.Logger
}

type SessionParams struct {
	fx.In

	Config *config.Config
	Store  scs.Store
	Log    *zap.Logger
}

func NewSessionManager(p SessionParams) (*SessionManager, error) {
	gob.Register(&model.Session{})

	sm := &SessionManager{log: p.Log}
	sm.impl = scs.New()
	sm.impl.Store = p.Store
	sm.impl.Lifetime = p.Config.Session.Lifetime
	sm.impl.IdleTimeout = p.Config.Session.IdleTimeout
	sm.impl.Cookie.Name = p.Config.Session.CookieName
	sm.impl.Cookie.HttpOnly = true
	sm.impl.Cookie.Secure = p.Config.Session.CookieSecure
	sm.impl.Cookie.SameSite = http.SameSiteLaxMode
	sm.impl.ErrorFunc = sm.serverError

	return sm, nil
}

func (s *SessionManager) Wrap(next http.Handler) http.Handler {
	return s.impl.LoadAndSave(next)
}

func (s *SessionManager) serverError(w http.ResponseWriter, r *http.Request, err error) {
	s.log.Error("session store failure",
		zap.Error(err),
		zap.String("path", r.URL.Path),
		zap.String("request_id", RequestID(r.Context())))
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

// Load returns the session for the request, or an empty one if the client
// has none yet.
func (s *SessionManager) Load(ctx context.Context) *model.Session {
	session, ok := s.impl.Get(ctx, sessionKey).(*model.Session)
	if !ok {
		return &model.Session{}
	}

	return session
}

// Save must run before the response is written.
func (s *SessionManager) Save(ctx context.Context, session *model.Session) {
	s.impl.Put(ctx, sessionKey, session)
}

// Renew issues a new session token while keeping the data, so a token
// captured before login is useless afterwards.
func (s *SessionManager) Renew(ctx context.Context) error {
	return s.impl.RenewToken(ctx)
}

func (s *SessionManager) Destroy(ctx context.Context) error {
	return s.impl.Destroy(ctx)
}
