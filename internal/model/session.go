package model

import "time"

// Session is the server-side record stored under the session cookie token.
type Session struct {
	Authenticated bool
	User          string
	LoginTime     time.Time
	CSRFToken     string
	Requests      []time.Time
}
