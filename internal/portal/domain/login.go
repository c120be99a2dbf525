package domain

import "time"

// Login outcome statuses returned to the client. Each maps to a distinct
// screen; the client UI branches on the status value.
const (
	StatusOTPRequired       = "OTP_REQUIRED"
	StatusSessionConflict   = "SESSION_CONFLICT"
	StatusTempPasswordReset = "TEMP_PASSWORD_RESET_REQUIRED"
	StatusLogoutSuccess     = "LOGOUT_SUCCESS"
	StatusSuccess           = "SUCCESS"
	StatusMaintenanceActive = "MAINTENANCE_MODE_ACTIVE"
)

// ConflictInfo describes the other device holding the account's session so
// the caller can decide whether to force it out.
type ConflictInfo struct {
	DeviceName   string    `json:"device"`
	IP           string    `json:"ip"`
	LastActivity time.Time `json:"last_login"`
}

// LoginOutcome is the result of a credential-valid login attempt.
type LoginOutcome struct {
	Status   string
	Handle   string
	Conflict *ConflictInfo // set when Status == StatusSessionConflict
}

// TokenPair is issued after successful OTP verification.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}
