package admin

import (
	"context"
	"net"
	"net/http"

	"github.com/ghaggin/openvpn-admin/internal/config"
	"github.com/ghaggin/openvpn-admin/internal/middleware"
	"github.com/ghaggin/openvpn-admin/internal/template"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/pkg/errors"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const maxFormBytes = 64 << 10

// CredentialSource yields the admin credentials for a request.
type CredentialSource interface {
	Load() (config.Credentials, error)
}

type Admin struct {
	log      *zap.Logger
	cfg      *config.Config
	ctrl     *Controller
	creds    CredentialSource
	sessions *middleware.SessionManager
	renderer *template.Renderer
	prober   Prober
	limiter  *middleware.ClientLimiter

	server *http.Server
	addr   net.Addr
}

type Params struct {
	fx.In

	Log         *zap.Logger
	Config      *config.Config
	Controller  *Controller
	Credentials CredentialSource
	Sessions    *middleware.SessionManager
	Renderer    *template.Renderer
	Prober      Prober
}

func New(p Params) (*Admin, error) {
	a := &Admin{
		log:      p.Log,
		cfg:      p.Config,
		ctrl:     p.Controller,
		creds:    p.Credentials,
		sessions: p.Sessions,
		renderer: p.Renderer,
		prober:   p.Prober,
	}

	if p.Config.ClientRateLimit.Enabled {
		a.limiter = middleware.NewClientLimiter(p.Config.ClientRateLimit)
	}

	a.server = &http.Server{
		Addr:              p.Config.Server.ListenAddr,
		Handler:           a.Handler(),
		ReadHeaderTimeout: p.Config.Server.ReadHeaderTimeout,
	}

	return a, nil
}

// Handler builds the router. /health sits outside the session middleware,
// which keeps it clear of sessions, credentials and rate limiting.
func (a *Admin) Handler() http.Handler {
	root := chi.NewRouter()
	if a.cfg.Server.TrustProxy {
		root.Use(chimw.RealIP)
	}
	root.Use(middleware.RequestLogger(a.log))
	root.Use(chimw.Recoverer)
	root.Use(middleware.SecurityHeaders)

	// No session
	root.Get("/health", a.health)

	// Session
	root.Group(func(r chi.Router) {
		if a.limiter != nil {
			r.Use(a.limiter.Middleware)
		}
		r.Use(a.sessions.Wrap)
		r.Get("/", a.index)
		r.Post("/", a.index)
	})

	return root
}

// RegisterHooks should be invoked by fx
func RegisterHooks(lc fx.Lifecycle, a *Admin) {
	lc.Append(fx.Hook{
		OnStart: a.Start,
		OnStop:  a.Stop,
	})
}

func (a *Admin) Start(_ context.Context) error {
	ln, err := net.Listen("tcp", a.server.Addr)
	if err != nil {
		return errors.Wrapf(err, "listen on %s", a.server.Addr)
	}

	a.addr = ln.Addr()
	if a.limiter != nil {
		a.limiter.Start()
	}

	a.log.Info("admin dashboard listening", zap.String("addr", a.addr.String()))
	go func() {
		err := a.server.Serve(ln)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Error("error serving admin dashboard", zap.Error(err))
		}
	}()
	return nil
}

// Addr is the bound listen address once Start has returned.
func (a *Admin) Addr() net.Addr {
	return a.addr
}

func (a *Admin) Stop(ctx context.Context) error {
	err := a.server.Shutdown(ctx)
	if a.limiter != nil {
		a.limiter.Close()
	}
	return err
}
