package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/campusworks/portal/internal/portal/service"
	"github.com/campusworks/portal/pkg/httpx"
	"github.com/campusworks/portal/pkg/slogx"
)

// MaintenanceHandler serves GET and POST /api/maintenance-mode. Reading the
// state is open to any caller so clients can render the banner; toggling
// requires a super admin.
type MaintenanceHandler struct {
	MaintenanceService *service.MaintenanceService
}

type maintenanceResponse struct {
	Enabled      bool      `json:"enabled"`
	Announcement string    `json:"announcement"`
	UpdatedBy    string    `json:"updated_by,omitempty"`
	UpdatedAt    time.Time `json:"updated_at,omitempty"`
}

type maintenanceSetRequest struct {
	Enabled      bool   `json:"enabled"`
	Announcement string `json:"announcement"`
}

// HandleGet godoc
//
//	@Summary	Read maintenance mode
//	@Tags		Maintenance
//	@Produce	json
//	@Success	200	{object}	maintenanceResponse
//	@Router		/api/maintenance-mode [get].
func (h *MaintenanceHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	st, err := h.MaintenanceService.Current(ctx)
	if err != nil {
		slogx.FromContext(ctx).Error("maintenance read failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "maintenance state unavailable")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, maintenanceResponse{
		Enabled:      st.Enabled,
		Announcement: st.Announcement,
		UpdatedBy:    st.UpdatedBy,
		UpdatedAt:    st.UpdatedAt,
	})
}

// HandlePost godoc
//
//	@Summary		Toggle maintenance mode
//	@Description	Enables or disables the portal-wide killswitch with an optional announcement. Super admin only; takes effect on the next request.
//	@Tags			Maintenance
//	@Accept			json
//	@Produce		json
//	@Param			body	body		maintenanceSetRequest	true	"Desired state"
//	@Success		200		{object}	maintenanceResponse
//	@Failure		401		{object}	map[string]string	"error, error_description"
//	@Failure		403		{object}	map[string]string	"error, error_description"
//	@Security		BearerAuth
//	@Router			/api/maintenance-mode [post].
func (h *MaintenanceHandler) HandlePost(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	id, ok := IdentityFromContext(ctx)
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthenticated", "valid session required")
		return
	}

	var req maintenanceSetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "malformed JSON body")
		return
	}

	st, err := h.MaintenanceService.Set(ctx, id.Account, req.Enabled, req.Announcement)
	if err != nil {
		if errors.Is(err, service.ErrPermissionDenied) {
			httpx.WriteError(w, http.StatusForbidden, "forbidden", "super admin role required")
			return
		}
		log.Error("maintenance toggle failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "maintenance toggle failed")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, maintenanceResponse{
		Enabled:      st.Enabled,
		Announcement: st.Announcement,
		UpdatedBy:    st.UpdatedBy,
		UpdatedAt:    st.UpdatedAt,
	})
}
