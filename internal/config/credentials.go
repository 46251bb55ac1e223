package config

import (
	"os"
	"strings"

	"github.com/pkg/errors"
)

// DefaultPassword is the placeholder shipped in sample deployments. It is
// never accepted.
const DefaultPassword = "changeme"

var (
	// ErrConfiguration marks any credential problem that must surface as
	// 503 to clients.
	ErrConfiguration = errors.New("configuration error")

	ErrMissingCredentials = errors.Wrap(ErrConfiguration, "admin username or password not set")
	ErrDefaultPassword    = errors.Wrap(ErrConfiguration, "admin password is the default placeholder")
)

// CredentialEnv names the environment variables credentials are read from.
type CredentialEnv struct {
	Username     string `yaml:"username"`
	UsernameFile string `yaml:"username_file"`
	Password     string `yaml:"password"`
	PasswordFile string `yaml:"password_file"`
}

func DefaultCredentialEnv() CredentialEnv {
	return CredentialEnv{
		Username:     "OPENVPN_ADMIN_USERNAME",
		UsernameFile: "OPENVPN_ADMIN_USERNAME_FILE",
		Password:     "OPENVPN_ADMIN_PASSWORD",
		PasswordFile: "OPENVPN_ADMIN_PASSWORD_FILE",
	}
}

type Credentials struct {
	Username string
	Password string
}

// CredentialReader resolves the admin credentials from the environment on
// every call so rotated secrets are picked up without a restart.
type CredentialReader struct {
	env      CredentialEnv
	lookup   func(string) (string, bool)
	readFile func(string) ([]byte, error)
}

func NewCredentialReader(c *Config) *CredentialReader {
	return &CredentialReader{
		env:      c.Auth.Env,
		lookup:   os.LookupEnv,
		readFile: os.ReadFile,
	}
}

// Load returns the credentials or an error wrapping ErrConfiguration.
func (r *CredentialReader) Load() (Credentials, error) {
	creds := Credentials{
		Username: r.resolve(r.env.UsernameFile, r.env.Username),
		Password: r.resolve(r.env.PasswordFile, r.env.Password),
	}

	if creds.Username == "" || creds.Password == "" {
		return Credentials{}, ErrMissingCredentials
	}
	if creds.Password == DefaultPassword {
		return Credentials{}, ErrDefaultPassword
	}

	return creds, nil
}

// resolve prefers the trimmed contents of the file named by fileVar. A
// missing or unreadable file falls back to the direct variable.
func (r *CredentialReader) resolve(fileVar, directVar string) string {
	if path, ok := r.lookup(fileVar); ok && path != "" {
		if b, err := r.readFile(path); err == nil {
			return strings.TrimSpace(string(b))
		}
	}

	v, _ := r.lookup(directVar)
	return v
}
