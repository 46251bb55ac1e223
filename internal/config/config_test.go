package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Defaults(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	c, err := New("")
	require.NoError(err)

	assert.Equal(StoreMemory, c.Session.Store)
	assert.Equal(300*time.Second, c.RateLimit.Window)
	assert.Equal(50, c.RateLimit.MaxRequests)
	assert.Equal(1800*time.Second, c.Auth.SessionTimeout)
	assert.Equal("openvpn-server", c.Probe.Host)
	assert.Equal(7505, c.Probe.Port)
}

func TestNew_File(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(os.WriteFile(path, []byte(`
server:
  listen_addr: "127.0.0.1:9000"
session:
  store: redis
redis:
  addr: "redis:6379"
rate_limit:
  window: 1m
  max_requests: 10
probe:
  timeout: 500ms
`), 0o600))

	c, err := New(Path(path))
	require.NoError(err)

	assert.Equal("127.0.0.1:9000", c.Server.ListenAddr)
	assert.Equal(StoreRedis, c.Session.Store)
	assert.Equal("redis:6379", c.Redis.Addr)
	assert.Equal(time.Minute, c.RateLimit.Window)
	assert.Equal(10, c.RateLimit.MaxRequests)
	assert.Equal(500*time.Millisecond, c.Probe.Timeout)
	// untouched keys keep their defaults
	assert.Equal(7505, c.Probe.Port)
}

func TestNew_EmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, nil, 0o600))

	c, err := New(Path(path))
	require.NoError(t, err)
	assert.Equal(t, Default(), c)
}

func TestNew_FileErrors(t *testing.T) {
	_, err := New(Path(filepath.Join(t.TempDir(), "missing.yaml")))
	assert.Error(t, err)

	_, err = New(Path(t.TempDir()))
	assert.ErrorIs(t, err, errConfigFileIsDir)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("bogus_key: 1\n"), 0o600))
	_, err = New(Path(path))
	assert.Error(t, err)
}

func TestNew_Env(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	t.Setenv("OPENVPN_ADMIN_LISTEN_ADDR", ":9999")
	t.Setenv("OPENVPN_ADMIN_SESSION_STORE", "REDIS")
	t.Setenv("OPENVPN_ADMIN_REDIS_ADDR", "cache:6380")
	t.Setenv("OPENVPN_ADMIN_PROBE_ADDR", "vpn.internal:7506")
	t.Setenv("OPENVPN_ADMIN_LOG_LEVEL", "debug")

	c, err := New("")
	require.NoError(err)

	assert.Equal(":9999", c.Server.ListenAddr)
	assert.Equal(StoreRedis, c.Session.Store)
	assert.Equal("cache:6380", c.Redis.Addr)
	assert.Equal("vpn.internal", c.Probe.Host)
	assert.Equal(7506, c.Probe.Port)
	assert.Equal("debug", c.Log.Level)
}

func TestNew_InvalidEnv(t *testing.T) {
	t.Setenv("OPENVPN_ADMIN_PROBE_ADDR", "no-port")
	_, err := New("")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"unknown store", func(c *Config) { c.Session.Store = "etcd" }},
		{"zero window", func(c *Config) { c.RateLimit.Window = 0 }},
		{"zero max", func(c *Config) { c.RateLimit.MaxRequests = 0 }},
		{"zero timeout", func(c *Config) { c.Auth.SessionTimeout = 0 }},
		{"bad probe port", func(c *Config) { c.Probe.Port = 70000 }},
		{"client limiter without rate", func(c *Config) {
			c.ClientRateLimit.Enabled = true
			c.ClientRateLimit.RequestsPerSecond = 0
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.mutate(c)
			assert.Error(t, c.Validate())
		})
	}

	assert.NoError(t, Default().Validate())
}
