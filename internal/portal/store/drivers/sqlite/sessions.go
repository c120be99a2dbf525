package sqlite

import (
	"context"
	"time"

	"github.com/campusworks/portal/internal/portal/domain"
)

type sessionsRepo struct {
	db dbtx
}

func (r *sessionsRepo) Get(ctx context.Context, accountID string) (domain.SessionRecord, error) {
	var rec domain.SessionRecord
	err := r.db.QueryRowContext(ctx, `
		SELECT account_id, session_id, ip, user_agent, device_name, created_at, last_activity
		FROM session_records WHERE account_id = ?`, accountID).
		Scan(&rec.AccountID, &rec.SessionID, &rec.IP, &rec.UserAgent,
			&rec.DeviceName, &rec.CreatedAt, &rec.LastActivity)
	if err != nil {
		return domain.SessionRecord{}, mapNotFound(err)
	}
	return rec, nil
}

func (r *sessionsRepo) Create(ctx context.Context, rec domain.SessionRecord) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO session_records (account_id, session_id, ip, user_agent, device_name, created_at, last_activity)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.AccountID, rec.SessionID, rec.IP, rec.UserAgent, rec.DeviceName,
		rec.CreatedAt.UTC(), rec.LastActivity.UTC())
	return mapConstraint(err)
}

func (r *sessionsRepo) Touch(ctx context.Context, accountID string, at time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE session_records SET last_activity = ? WHERE account_id = ?`,
		at.UTC(), accountID)
	return err
}

func (r *sessionsRepo) Delete(ctx context.Context, accountID string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM session_records WHERE account_id = ?`, accountID)
	return err
}
