package domain

import "time"

// Account roles. The portal has exactly two.
const (
	RoleSuperAdmin = "super_admin"
	RoleAdmin      = "admin"
)

// Account is a portal administrator.
type Account struct {
	ID           string
	Handle       string // unique login handle
	Email        string
	PasswordHash string // argon2id PHC encoded
	Role         string // RoleSuperAdmin or RoleAdmin

	// TempPassword marks a system-issued password that must be changed
	// before any other action is permitted.
	TempPassword bool

	// OTP state. A single pending code per account; generating a new code
	// overwrites the old one.
	OTPCode      *string
	OTPCreatedAt *time.Time
	OTPVerified  bool

	LastPasswordChange time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// IsSuperAdmin reports whether the account holds the elevated role.
func (a Account) IsSuperAdmin() bool { return a.Role == RoleSuperAdmin }
