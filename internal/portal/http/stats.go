package http

import (
	"net/http"

	"github.com/campusworks/portal/internal/portal/service"
	"github.com/campusworks/portal/pkg/httpx"
	"github.com/campusworks/portal/pkg/slogx"
)

// StatsHandler serves GET /api/dashboard-stats for authenticated admins.
type StatsHandler struct {
	StatsService *service.StatsService
}

// ServeHTTP godoc
//
//	@Summary	Dashboard counters
//	@Tags		Dashboard
//	@Produce	json
//	@Success	200	{object}	domain.DashboardStats
//	@Failure	401	{object}	map[string]string	"error, error_description"
//	@Security	BearerAuth
//	@Router		/api/dashboard-stats [get].
func (h *StatsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	stats, err := h.StatsService.Dashboard(ctx)
	if err != nil {
		slogx.FromContext(ctx).Error("dashboard stats failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "stats unavailable")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, stats)
}
