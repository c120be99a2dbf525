package domain

import "time"

// SessionRecord is the registry entry naming an account's single active
// session. At most one exists per account at any instant.
type SessionRecord struct {
	AccountID    string
	SessionID    string
	IP           string
	UserAgent    string
	DeviceName   string
	CreatedAt    time.Time
	LastActivity time.Time
}

// SessionInfo describes the caller attempting to register a session.
type SessionInfo struct {
	SessionID  string
	IP         string
	UserAgent  string
	DeviceName string
}

// Transport session stages. A session is pending between credential check and
// OTP verification, active afterwards.
const (
	SessionStagePending = "pending"
	SessionStageActive  = "active"
)

// TransportSession is the server-side record backing a cookie or bearer
// session identifier. Deleting it is what actually logs a device out.
type TransportSession struct {
	ID         string // equals the registry SessionID
	AccountID  string
	CookieHash string // fingerprint of the cookie token; empty until OTP verify
	Stage      string
	CreatedAt  time.Time
	ExpiresAt  time.Time
}

// RefreshToken is an opaque rotating credential bound to a transport session.
type RefreshToken struct {
	ID        string
	AccountID string
	SessionID string
	TokenHash string
	ExpiresAt time.Time
	Revoked   bool
	CreatedAt time.Time
}
