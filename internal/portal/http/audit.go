package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/campusworks/portal/internal/portal/service"
	"github.com/campusworks/portal/pkg/httpx"
	"github.com/campusworks/portal/pkg/slogx"
)

// AuditLogHandler serves GET /api/audit-log (super admin only).
type AuditLogHandler struct {
	AuditService *service.AuditService
}

type auditEntryResponse struct {
	Actor     string    `json:"actor"`
	Action    string    `json:"action"`
	Detail    string    `json:"detail"`
	IP        string    `json:"ip,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ServeHTTP godoc
//
//	@Summary	Recent audit entries
//	@Tags		Audit
//	@Produce	json
//	@Param		limit	query		int	false	"Max entries (default 100, cap 500)"
//	@Success	200		{array}		auditEntryResponse
//	@Failure	403		{object}	map[string]string	"error, error_description"
//	@Security	BearerAuth
//	@Router		/api/audit-log [get].
func (h *AuditLogHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	entries, err := h.AuditService.ListRecent(ctx, limit)
	if err != nil {
		slogx.FromContext(ctx).Error("audit log read failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "audit log unavailable")
		return
	}

	out := make([]auditEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, auditEntryResponse{
			Actor:     e.Actor,
			Action:    e.Action,
			Detail:    e.Detail,
			IP:        e.IP,
			CreatedAt: e.CreatedAt,
		})
	}

	httpx.WriteJSON(w, http.StatusOK, out)
}
