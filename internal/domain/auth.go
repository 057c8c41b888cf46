package domain

import "time"

// Credentials identify a user to the query service.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email,omitempty"`
}

// AuthSession is the service's answer to a login or registration.
type AuthSession struct {
	Token   string
	Details Fields
}

// TokenInfo describes a stored bearer token.
type TokenInfo struct {
	Present   bool
	Opaque    bool
	Subject   string
	ExpiresAt time.Time
}

// Expired reports whether the token carries an expiry in the past.
func (t TokenInfo) Expired(now time.Time) bool {
	return !t.ExpiresAt.IsZero() && now.After(t.ExpiresAt)
}
