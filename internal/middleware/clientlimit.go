package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/ghaggin/openvpn-admin/internal/config"
	"golang.org/x/time/rate"
)

type clientEntry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// ClientLimiter is a token bucket per remote IP. It sits in front of the
// per-session limiter, which a client can reset by dropping its cookie.
type ClientLimiter struct {
	mu      sync.Mutex
	clients map[string]*clientEntry
	limit   rate.Limit
	burst   int
	ttl     time.Duration
	now     func() time.Time

	stop chan struct{}
	done chan struct{}
}

func NewClientLimiter(c config.ClientRateLimit) *ClientLimiter {
	return &ClientLimiter{
		clients: make(map[string]*clientEntry),
		limit:   rate.Limit(c.RequestsPerSecond),
		burst:   c.Burst,
		ttl:     c.EntryTTL,
		now:     time.Now,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// Start runs the eviction loop until Close.
func (l *ClientLimiter) Start() {
	interval := l.ttl
	if interval <= 0 {
		interval = time.Minute
	}

	go func() {
		defer close(l.done)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-l.stop:
				return
			case <-ticker.C:
				l.evict()
			}
		}
	}()
}

func (l *ClientLimiter) Close() {
	close(l.stop)
	<-l.done
}

func (l *ClientLimiter) Allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	entry, ok := l.clients[ip]
	if !ok {
		entry = &clientEntry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.clients[ip] = entry
	}
	entry.lastAccess = now

	return entry.limiter.AllowN(now, 1)
}

func (l *ClientLimiter) evict() {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().Add(-l.ttl)
	for ip, entry := range l.clients {
		if entry.lastAccess.Before(cutoff) {
			delete(l.clients, ip)
		}
	}
}

func (l *ClientLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.Allow(clientIP(r)) {
			w.Header().Set("Retry-After", "1")
			http.Error(w, "Rate limit exceeded", http.StatusTooManyRequests)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
