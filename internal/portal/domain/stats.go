package domain

// DashboardStats are the aggregate counters shown on the portal landing page.
type DashboardStats struct {
	TotalStudents       int64 `json:"total_students"`
	ActiveColleges      int64 `json:"active_colleges"`
	ApplicationsPending int64 `json:"applications_pending"`
	TotalApplications   int64 `json:"total_applications"`
	TotalViews          int64 `json:"total_views"`
}
