package config

import (
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Path is the location of the optional YAML config file.
type Path string

type Config struct {
	Server          Server          `yaml:"server"`
	Session         Session         `yaml:"session"`
	Redis           Redis           `yaml:"redis"`
	RateLimit       RateLimit       `yaml:"rate_limit"`
	ClientRateLimit ClientRateLimit `yaml:"client_rate_limit"`
	Auth            Auth            `yaml:"auth"`
	Probe           Probe           `yaml:"probe"`
	Dashboard       Dashboard       `yaml:"dashboard"`
	Log             Log             `yaml:"log"`
}

type Server struct {
	ListenAddr        string        `yaml:"listen_addr"`
	TrustProxy        bool          `yaml:"trust_proxy"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout"`
}

type Session struct {
	// Store is either "memory" or "redis".
	Store        string        `yaml:"store"`
	CookieName   string        `yaml:"cookie_name"`
	CookieSecure bool          `yaml:"cookie_secure"`
	Lifetime     time.Duration `yaml:"lifetime"`
	IdleTimeout  time.Duration `yaml:"idle_timeout"`
}

type Redis struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix"`
}

type RateLimit struct {
	Window      time.Duration `yaml:"window"`
	MaxRequests int           `yaml:"max_requests"`
}

type ClientRateLimit struct {
	Enabled           bool          `yaml:"enabled"`
	RequestsPerSecond float64       `yaml:"requests_per_second"`
	Burst             int           `yaml:"burst"`
	EntryTTL          time.Duration `yaml:"entry_ttl"`
}

type Auth struct {
	SessionTimeout time.Duration `yaml:"session_timeout"`
	Env            CredentialEnv `yaml:"env"`
}

type Probe struct {
	Host    string        `yaml:"host"`
	Port    int           `yaml:"port"`
	Timeout time.Duration `yaml:"timeout"`
}

type Dashboard struct {
	StatusPagePort  int           `yaml:"status_page_port"`
	ContainerName   string        `yaml:"container_name"`
	RefreshInterval time.Duration `yaml:"refresh_interval"`
}

type Log struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
	File        string `yaml:"file"`
	MaxSizeMB   int    `yaml:"max_size_mb"`
	MaxBackups  int    `yaml:"max_backups"`
}

const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

// Default returns the configuration used when no file or environment
// overrides are present.
func Default() *Config {
	return &Config{
		Server: Server{
			ListenAddr:        ":8080",
			ReadHeaderTimeout: 10 * time.Second,
		},
		Session: Session{
			Store:       StoreMemory,
			CookieName:  "openvpn_admin_session",
			Lifetime:    12 * time.Hour,
			IdleTimeout: time.Hour,
		},
		Redis: Redis{
			Addr:   "localhost:6379",
			Prefix: "openvpn-admin:session:",
		},
		RateLimit: RateLimit{
			Window:      300 * time.Second,
			MaxRequests: 50,
		},
		ClientRateLimit: ClientRateLimit{
			RequestsPerSecond: 5,
			Burst:             100,
			EntryTTL:          10 * time.Minute,
		},
		Auth: Auth{
			SessionTimeout: 1800 * time.Second,
			Env:            DefaultCredentialEnv(),
		},
		Probe: Probe{
			Host:    "openvpn-server",
			Port:    7505,
			Timeout: 2 * time.Second,
		},
		Dashboard: Dashboard{
			StatusPagePort:  8081,
			ContainerName:   "openvpn-server",
			RefreshInterval: 30 * time.Second,
		},
		Log: Log{
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
	}
}

// New loads defaults, the YAML file at path (if any) and then environment
// overrides, in that order.
func New(path Path) (*Config, error) {
	c := Default()

	if path != "" {
		if err := loadFile(string(path), c); err != nil {
			return nil, err
		}
	}

	if err := applyEnv(c, os.LookupEnv); err != nil {
		return nil, err
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}

	return c, nil
}

func applyEnv(c *Config, lookup func(string) (string, bool)) error {
	if v, ok := lookup("OPENVPN_ADMIN_LISTEN_ADDR"); ok && v != "" {
		c.Server.ListenAddr = v
	}
	if v, ok := lookup("OPENVPN_ADMIN_SESSION_STORE"); ok && v != "" {
		c.Session.Store = strings.ToLower(v)
	}
	if v, ok := lookup("OPENVPN_ADMIN_REDIS_ADDR"); ok && v != "" {
		c.Redis.Addr = v
	}
	if v, ok := lookup("OPENVPN_ADMIN_REDIS_PASSWORD"); ok {
		c.Redis.Password = v
	}
	if v, ok := lookup("OPENVPN_ADMIN_PROBE_ADDR"); ok && v != "" {
		host, port, err := splitHostPort(v)
		if err != nil {
			return errors.Wrap(err, "OPENVPN_ADMIN_PROBE_ADDR")
		}
		c.Probe.Host = host
		c.Probe.Port = port
	}
	if v, ok := lookup("OPENVPN_ADMIN_LOG_LEVEL"); ok && v != "" {
		c.Log.Level = v
	}
	return nil
}

func splitHostPort(addr string) (string, int, error) {
	host, p, err := net.SplitHostPort(addr)
	if err != nil {
		return "", 0, err
	}
	port, err := strconv.Atoi(p)
	if err != nil {
		return "", 0, errors.Wrapf(err, "invalid port in %q", addr)
	}
	return host, port, nil
}

func (c *Config) Validate() error {
	switch c.Session.Store {
	case StoreMemory, StoreRedis:
	default:
		return errors.Errorf("unknown session store %q", c.Session.Store)
	}
	if c.RateLimit.Window <= 0 || c.RateLimit.MaxRequests <= 0 {
		return errors.New("rate_limit window and max_requests must be positive")
	}
	if c.Auth.SessionTimeout <= 0 {
		return errors.New("auth session_timeout must be positive")
	}
	if c.Probe.Port <= 0 || c.Probe.Port > 65535 {
		return errors.Errorf("invalid probe port %d", c.Probe.Port)
	}
	if c.ClientRateLimit.Enabled && (c.ClientRateLimit.RequestsPerSecond <= 0 || c.ClientRateLimit.Burst <= 0) {
		return errors.New("client_rate_limit requires positive requests_per_second and burst")
	}
	return nil
}
