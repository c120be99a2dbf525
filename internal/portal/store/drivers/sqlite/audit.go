package sqlite

import (
	"context"

	"github.com/campusworks/portal/internal/portal/domain"
)

type auditRepo struct {
	db dbtx
}

func (r *auditRepo) Append(ctx context.Context, e domain.AuditEntry) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO audit_entries (id, actor, action, detail, ip, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		e.ID, e.Actor, e.Action, e.Detail, e.IP, e.CreatedAt.UTC())
	return err
}

func (r *auditRepo) ListRecent(ctx context.Context, limit int) ([]domain.AuditEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, actor, action, detail, ip, created_at
		FROM audit_entries ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.AuditEntry
	for rows.Next() {
		var e domain.AuditEntry
		if err := rows.Scan(&e.ID, &e.Actor, &e.Action, &e.Detail, &e.IP, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
