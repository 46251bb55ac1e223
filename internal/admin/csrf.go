package admin

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
)

// csrfTokenLength is 32 bytes, 256 bits.
const csrfTokenLength = 32

// TokenSource produces new CSRF tokens.
type TokenSource func() (string, error)

func randomToken() (string, error) {
	b := make([]byte, csrfTokenLength)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// validToken compares in constant time. An empty expected token never
// matches.
func validToken(expected, got string) bool {
	if expected == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(expected), []byte(got)) == 1
}
