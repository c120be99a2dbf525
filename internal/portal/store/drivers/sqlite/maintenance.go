package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/campusworks/portal/internal/portal/domain"
)

type maintenanceRepo struct {
	db dbtx
}

// The CHECK (id = 1) in the schema plus the upsert below keeps this table at
// exactly one row.
func (r *maintenanceRepo) Get(ctx context.Context) (domain.MaintenanceState, error) {
	var st domain.MaintenanceState
	err := r.db.QueryRowContext(ctx, `
		SELECT enabled, announcement, updated_by, updated_at
		FROM maintenance_state WHERE id = 1`).
		Scan(&st.Enabled, &st.Announcement, &st.UpdatedBy, &st.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		// No row yet means maintenance was never toggled: disabled.
		return domain.MaintenanceState{}, nil
	}
	if err != nil {
		return domain.MaintenanceState{}, err
	}
	return st, nil
}

func (r *maintenanceRepo) Set(ctx context.Context, st domain.MaintenanceState) error {
	if st.UpdatedAt.IsZero() {
		st.UpdatedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO maintenance_state (id, enabled, announcement, updated_by, updated_at)
		VALUES (1, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			enabled = excluded.enabled,
			announcement = excluded.announcement,
			updated_by = excluded.updated_by,
			updated_at = excluded.updated_at`,
		st.Enabled, st.Announcement, st.UpdatedBy, st.UpdatedAt.UTC())
	return err
}
