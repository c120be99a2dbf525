package sqlite

import (
	"context"
	"database/sql"

	"github.com/campusworks/portal/internal/portal/store"
)

type txStore struct {
	tx *sql.Tx
}

func (t *txStore) Commit() error   { return t.tx.Commit() }
func (t *txStore) Rollback() error { return t.tx.Rollback() }

func (t *txStore) Close() error { return nil } // caller will commit/rollback; outer DB stays open

// Ping is a no-op for transactions.
func (t *txStore) Ping(ctx context.Context) error { return nil }

func (t *txStore) Tx(ctx context.Context) (store.Tx, error) {
	// Nested tx not supported; could emulate with SAVEPOINT if needed
	return nil, sql.ErrTxDone
}

func (t *txStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	return sql.ErrTxDone
}

func (t *txStore) Accounts() store.Accounts                   { return &accountsRepo{db: t.tx} }
func (t *txStore) Sessions() store.Sessions                   { return &sessionsRepo{db: t.tx} }
func (t *txStore) TransportSessions() store.TransportSessions { return &transportRepo{db: t.tx} }
func (t *txStore) RefreshTokens() store.RefreshTokens         { return &refreshTokensRepo{db: t.tx} }
func (t *txStore) Maintenance() store.Maintenance             { return &maintenanceRepo{db: t.tx} }
func (t *txStore) Audit() store.Audit                         { return &auditRepo{db: t.tx} }
func (t *txStore) Stats() store.Stats                         { return &statsRepo{db: t.tx} }

func (t *txStore) ApplyMigrations() error { return nil } // migrations run before any tx starts
