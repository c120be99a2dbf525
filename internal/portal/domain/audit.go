package domain

import "time"

// Audit action tags for privileged operations.
const (
	AuditLoginSucceeded     = "login_succeeded"
	AuditLoginFailed        = "login_failed"
	AuditOTPGenerated       = "otp_generated"
	AuditOTPVerified        = "otp_verified"
	AuditForceLogout        = "force_logout"
	AuditLogout             = "logout"
	AuditPasswordReset      = "password_reset"
	AuditAdminCreated       = "admin_created"
	AuditMaintenanceToggled = "maintenance_toggled"
	AuditNotifyFailed       = "notify_failed"
)

// AuditEntry is an immutable record of a privileged action.
type AuditEntry struct {
	ID        string
	Actor     string // account handle, or "system"
	Action    string // one of the Audit* tags
	Detail    string
	IP        string
	CreatedAt time.Time
}
