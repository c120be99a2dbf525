package sqlite

import (
	"context"
	"time"

	"github.com/campusworks/portal/internal/portal/domain"
)

type refreshTokensRepo struct {
	db dbtx
}

func (r *refreshTokensRepo) Create(ctx context.Context, t domain.RefreshToken) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO refresh_tokens (id, account_id, session_id, token_hash, expires_at, revoked, created_at)
		VALUES (?, ?, ?, ?, ?, 0, ?)`,
		t.ID, t.AccountID, t.SessionID, t.TokenHash, t.ExpiresAt.UTC(), t.CreatedAt.UTC())
	return mapConstraint(err)
}

func (r *refreshTokensRepo) GetByHash(ctx context.Context, hash string) (domain.RefreshToken, error) {
	var t domain.RefreshToken
	err := r.db.QueryRowContext(ctx, `
		SELECT id, account_id, session_id, token_hash, expires_at, revoked, created_at
		FROM refresh_tokens WHERE token_hash = ?`, hash).
		Scan(&t.ID, &t.AccountID, &t.SessionID, &t.TokenHash, &t.ExpiresAt, &t.Revoked, &t.CreatedAt)
	if err != nil {
		return domain.RefreshToken{}, mapNotFound(err)
	}
	return t, nil
}

func (r *refreshTokensRepo) Revoke(ctx context.Context, hash string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE refresh_tokens SET revoked = 1 WHERE token_hash = ?`, hash)
	return err
}

func (r *refreshTokensRepo) RevokeBySession(ctx context.Context, sessionID string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE refresh_tokens SET revoked = 1 WHERE session_id = ?`, sessionID)
	return err
}

func (r *refreshTokensRepo) DeleteExpired(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM refresh_tokens WHERE expires_at <= ?`, time.Now().UTC())
	return err
}
