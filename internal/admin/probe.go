package admin

import (
	"context"
	"net"
	"strconv"
	"time"

	"github.com/ghaggin/openvpn-admin/internal/config"
	"go.uber.org/zap"
)

type Status string

const (
	StatusRunning Status = "Running"
	StatusUnknown Status = "Unknown"
)

// Prober reports the reachability of the OpenVPN server. Implementations
// never fail; anything short of a confirmed connection is StatusUnknown.
type Prober interface {
	Probe(ctx context.Context) Status
}

// TCPProber connects to the management port and closes the connection
// straight away.
type TCPProber struct {
	addr    string
	timeout time.Duration
	dialer  *net.Dialer
	log     *zap.Logger
}

func NewTCPProber(c *config.Config, log *zap.Logger) *TCPProber {
	return &TCPProber{
		addr:    net.JoinHostPort(c.Probe.Host, strconv.Itoa(c.Probe.Port)),
		timeout: c.Probe.Timeout,
		dialer:  &net.Dialer{},
		log:     log,
	}
}

func (p *TCPProber) Probe(ctx context.Context) Status {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	conn, err := p.dialer.DialContext(ctx, "tcp", p.addr)
	if err != nil {
		p.log.Warn("status check failed", zap.String("addr", p.addr), zap.Error(err))
		return StatusUnknown
	}
	_ = conn.Close()

	return StatusRunning
}
