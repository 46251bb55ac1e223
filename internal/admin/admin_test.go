package admin

import (
	"context"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/alexedwards/scs/v2/memstore"
	"github.com/ghaggin/openvpn-admin/internal/config"
	"github.com/ghaggin/openvpn-admin/internal/middleware"
	"github.com/ghaggin/openvpn-admin/internal/template"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap"
)

func TestAdmin_Lifecycle(t *testing.T) {
	require := require.New(t)

	cfg := config.Default()
	cfg.Server.ListenAddr = "127.0.0.1:0"
	cfg.ClientRateLimit.Enabled = true

	ctrl, err := NewController(ControllerParams{Config: cfg})
	require.NoError(err)
	store := memstore.NewWithCleanupInterval(time.Minute)
	defer store.StopCleanup()
	sessions, err := middleware.NewSessionManager(middleware.SessionParams{Config: cfg, Store: store, Log: zap.NewNop()})
	require.NoError(err)
	renderer, err := template.New()
	require.NoError(err)

	a, err := New(Params{
		Log:         zap.NewNop(),
		Config:      cfg,
		Controller:  ctrl,
		Credentials: &staticCreds{creds: testCreds},
		Sessions:    sessions,
		Renderer:    renderer,
		Prober:      &staticProber{status: StatusUnknown},
	})
	require.NoError(err)

	lc := fxtest.NewLifecycle(t)
	RegisterHooks(lc, a)
	lc.RequireStart()

	resp, err := http.Get("http://" + a.Addr().String() + "/health")
	require.NoError(err)
	b, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(b), "healthy")

	lc.RequireStop()

	_, err = http.Get("http://" + a.Addr().String() + "/health")
	assert.Error(t, err)
}

func TestAdmin_StartListenError(t *testing.T) {
	cfg := config.Default()
	cfg.Server.ListenAddr = "256.0.0.1:bad"

	a := &Admin{log: zap.NewNop(), server: &http.Server{Addr: cfg.Server.ListenAddr}}
	assert.Error(t, a.Start(context.Background()))
}
