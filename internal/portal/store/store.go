package store

import (
	"context"
	"errors"
	"time"

	"github.com/campusworks/portal/internal/portal/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite for now)
// implement this. It exposes sub-repositories to keep concerns tidy and
// testable.
type Store interface {
	Accounts() Accounts
	Sessions() Sessions
	TransportSessions() TransportSessions
	RefreshTokens() RefreshTokens
	Maintenance() Maintenance
	Audit() Audit
	Stats() Stats

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction, rolling back on error and
	// committing on nil. This is the recommended way to run the multi-step
	// registry operations that must be atomic.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Accounts interface {
	// GetByID returns an account by id.
	GetByID(ctx context.Context, id string) (domain.Account, error)

	// GetByHandle is used during credential verification.
	GetByHandle(ctx context.Context, handle string) (domain.Account, error)

	// Create inserts a new account (id is provided by the app via ULID).
	// Returns ErrAlreadyExists on a duplicate handle.
	Create(ctx context.Context, a domain.Account) error

	// UpdatePasswordHash sets the hash, clears temp_password and bumps
	// last_password_change.
	UpdatePasswordHash(ctx context.Context, accountID, newHash string) error

	// SetOTP overwrites the pending OTP state for the account.
	SetOTP(ctx context.Context, accountID, code string, createdAt time.Time) error

	// ConsumeOTP clears the stored code and marks it verified.
	ConsumeOTP(ctx context.Context, accountID string) error

	// CountByRole returns the number of accounts holding a role.
	CountByRole(ctx context.Context, role string) (int64, error)
}

type Sessions interface {
	// Get returns the registry record for an account, ErrNotFound when the
	// account has no active session.
	Get(ctx context.Context, accountID string) (domain.SessionRecord, error)

	// Create inserts the record. The account_id primary key makes a second
	// concurrent insert fail with ErrAlreadyExists.
	Create(ctx context.Context, rec domain.SessionRecord) error

	// Touch bumps last_activity for a no-op refresh.
	Touch(ctx context.Context, accountID string, at time.Time) error

	// Delete removes the record (logout / force-replace).
	Delete(ctx context.Context, accountID string) error
}

type TransportSessions interface {
	Create(ctx context.Context, s domain.TransportSession) error

	// GetByID returns a transport session regardless of stage.
	GetByID(ctx context.Context, id string) (domain.TransportSession, error)

	// GetActiveByCookieHash resolves a cookie token fingerprint to an
	// active, unexpired session.
	GetActiveByCookieHash(ctx context.Context, hash string) (domain.TransportSession, error)

	// Activate attaches the cookie hash and promotes the session to active.
	Activate(ctx context.Context, id, cookieHash string, expiresAt time.Time) error

	// Delete removes a transport session, logging that device out.
	Delete(ctx context.Context, id string) error

	// DeleteExpired is housekeeping.
	DeleteExpired(ctx context.Context) error
}

type RefreshTokens interface {
	Create(ctx context.Context, t domain.RefreshToken) error

	// GetByHash returns the token by its fingerprint.
	GetByHash(ctx context.Context, hash string) (domain.RefreshToken, error)

	// Revoke flips revoked for a single token.
	Revoke(ctx context.Context, hash string) error

	// RevokeBySession bulk-revokes all tokens minted for a session
	// (force-replace / logout).
	RevokeBySession(ctx context.Context, sessionID string) error

	// DeleteExpired is housekeeping.
	DeleteExpired(ctx context.Context) error
}

type Maintenance interface {
	// Get returns the singleton state. A missing row reads as disabled.
	Get(ctx context.Context) (domain.MaintenanceState, error)

	// Set atomically replaces the singleton row.
	Set(ctx context.Context, st domain.MaintenanceState) error
}

type Audit interface {
	// Append writes an immutable entry.
	Append(ctx context.Context, e domain.AuditEntry) error

	// ListRecent returns entries newest-first.
	ListRecent(ctx context.Context, limit int) ([]domain.AuditEntry, error)
}

type Stats interface {
	// Dashboard aggregates the CRUD-side counters in one round trip.
	Dashboard(ctx context.Context) (domain.DashboardStats, error)
}
