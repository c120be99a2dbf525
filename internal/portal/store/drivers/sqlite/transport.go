package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/campusworks/portal/internal/portal/domain"
)

type transportRepo struct {
	db dbtx
}

func (r *transportRepo) Create(ctx context.Context, s domain.TransportSession) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO transport_sessions (id, account_id, cookie_hash, stage, created_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		s.ID, s.AccountID, nullIfEmpty(s.CookieHash), s.Stage,
		s.CreatedAt.UTC(), s.ExpiresAt.UTC())
	return mapConstraint(err)
}

func (r *transportRepo) GetByID(ctx context.Context, id string) (domain.TransportSession, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, account_id, cookie_hash, stage, created_at, expires_at
		FROM transport_sessions WHERE id = ?`, id)
	return scanTransport(row)
}

func (r *transportRepo) GetActiveByCookieHash(ctx context.Context, hash string) (domain.TransportSession, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, account_id, cookie_hash, stage, created_at, expires_at
		FROM transport_sessions
		WHERE cookie_hash = ? AND stage = ? AND expires_at > ?`,
		hash, domain.SessionStageActive, time.Now().UTC())
	return scanTransport(row)
}

func (r *transportRepo) Activate(ctx context.Context, id, cookieHash string, expiresAt time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE transport_sessions SET cookie_hash = ?, stage = ?, expires_at = ?
		WHERE id = ?`,
		cookieHash, domain.SessionStageActive, expiresAt.UTC(), id)
	return err
}

func (r *transportRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM transport_sessions WHERE id = ?`, id)
	return err
}

func (r *transportRepo) DeleteExpired(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM transport_sessions WHERE expires_at <= ?`, time.Now().UTC())
	return err
}

func scanTransport(row *sql.Row) (domain.TransportSession, error) {
	var s domain.TransportSession
	var cookieHash sql.NullString

	err := row.Scan(&s.ID, &s.AccountID, &cookieHash, &s.Stage, &s.CreatedAt, &s.ExpiresAt)
	if err != nil {
		return domain.TransportSession{}, mapNotFound(err)
	}

	if cookieHash.Valid {
		s.CookieHash = cookieHash.String
	}
	return s, nil
}

func nullIfEmpty(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
