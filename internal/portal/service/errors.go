package service

import "errors"

// Error taxonomy surfaced to the HTTP layer. Each maps to a distinct client
// state; none of these may be swallowed into a generic failure.
var (
	ErrInvalidCredentials        = errors.New("invalid credentials")
	ErrTempPasswordResetRequired = errors.New("temporary password must be reset")
	ErrOTPInvalidOrExpired       = errors.New("invalid or expired OTP")
	ErrAccountNotFound           = errors.New("account not found")
	ErrPermissionDenied          = errors.New("permission denied")
	ErrDuplicateHandle           = errors.New("handle already exists")
	ErrWeakPassword              = errors.New("password does not meet policy")
	ErrLoginExpired              = errors.New("login attempt expired")
	ErrInvalidRefreshToken       = errors.New("invalid refresh token")
	ErrResetNotRequired          = errors.New("account has no pending password reset")
)
