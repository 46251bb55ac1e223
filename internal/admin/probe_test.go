package admin

import (
	"context"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/ghaggin/openvpn-admin/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func proberFor(t *testing.T, addr string, log *zap.Logger) *TCPProber {
	t.Helper()

	host, port, err := net.SplitHostPort(addr)
	require.NoError(t, err)
	p, err := strconv.Atoi(port)
	require.NoError(t, err)

	cfg := config.Default()
	cfg.Probe.Host = host
	cfg.Probe.Port = p
	cfg.Probe.Timeout = time.Second
	return NewTCPProber(cfg, log)
}

func TestTCPProber_Running(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			conn.Close()
		}
	}()

	p := proberFor(t, ln.Addr().String(), zap.NewNop())
	assert.Equal(t, StatusRunning, p.Probe(context.Background()))
}

func TestTCPProber_Unreachable(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	core, logs := observer.New(zap.WarnLevel)
	p := proberFor(t, addr, zap.New(core))

	assert.Equal(t, StatusUnknown, p.Probe(context.Background()))
	assert.Equal(t, 1, logs.FilterMessage("status check failed").Len())
}
