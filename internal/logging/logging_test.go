package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ghaggin/openvpn-admin/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap"
)

func TestNew_File(t *testing.T) {
	require := require.New(t)

	path := filepath.Join(t.TempDir(), "admin.log")
	log, closeFile, err := New(config.Log{Level: "info", File: path, MaxSizeMB: 1, MaxBackups: 1})
	require.NoError(err)

	log.Debug("hidden")
	log.Info("failed login attempt", zap.String("remote_addr", "10.0.0.1:5555"))
	require.NoError(closeFile())

	b, err := os.ReadFile(path)
	require.NoError(err)
	assert.Contains(t, string(b), `"msg":"failed login attempt"`)
	assert.Contains(t, string(b), `"remote_addr":"10.0.0.1:5555"`)
	assert.NotContains(t, string(b), "hidden")
}

func TestNew_Development(t *testing.T) {
	log, closeFile, err := New(config.Log{Level: "debug", Development: true})
	require.NoError(t, err)
	assert.True(t, log.Core().Enabled(zap.DebugLevel))
	assert.NoError(t, closeFile())
}

func TestNew_BadLevel(t *testing.T) {
	_, _, err := New(config.Log{Level: "loud"})
	assert.Error(t, err)
}

func TestProvide(t *testing.T) {
	lc := fxtest.NewLifecycle(t)
	cfg := config.Default()
	cfg.Log.File = filepath.Join(t.TempDir(), "admin.log")

	log, err := Provide(Params{LC: lc, Config: cfg})
	require.NoError(t, err)
	require.NotNil(t, log)

	lc.RequireStart()
	log.Info("hello")
	lc.RequireStop()
}
