package sqlite

import (
	"context"

	"github.com/campusworks/portal/internal/portal/domain"
)

type statsRepo struct {
	db dbtx
}

func (r *statsRepo) Dashboard(ctx context.Context) (domain.DashboardStats, error) {
	var st domain.DashboardStats
	err := r.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM students),
			(SELECT COUNT(*) FROM colleges),
			(SELECT COUNT(*) FROM applications WHERE status = 'pending'),
			(SELECT COUNT(*) FROM applications),
			(SELECT COALESCE(SUM(view_count), 0) FROM colleges)`).
		Scan(&st.TotalStudents, &st.ActiveColleges, &st.ApplicationsPending,
			&st.TotalApplications, &st.TotalViews)
	return st, err
}
