package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/campusworks/portal/internal/portal/service"
	"github.com/campusworks/portal/pkg/httpx"
	"github.com/campusworks/portal/pkg/slogx"
)

// CreateAdminHandler serves POST /api/auth/create-admin (super admin only).
type CreateAdminHandler struct {
	AdminService *service.AdminService
}

type createAdminRequest struct {
	Handle string `json:"handle"`
	Email  string `json:"email"`
}

type createAdminResponse struct {
	Handle       string `json:"handle"`
	TempPassword string `json:"temp_password"`
}

// ServeHTTP godoc
//
//	@Summary		Create an admin account
//	@Description	Creates a regular admin with a generated temporary password. The password is returned once and also mailed to the new admin; they must change it on first login.
//	@Tags			Admin
//	@Accept			json
//	@Produce		json
//	@Param			body	body		createAdminRequest	true	"Handle and email for the new admin"
//	@Success		201		{object}	createAdminResponse
//	@Failure		400		{object}	map[string]string	"bad request or duplicate handle"
//	@Failure		403		{object}	map[string]string	"error, error_description"
//	@Security		BearerAuth
//	@Router			/api/auth/create-admin [post].
func (h *CreateAdminHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	id, ok := IdentityFromContext(ctx)
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthenticated", "valid session required")
		return
	}

	var req createAdminRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "malformed JSON body")
		return
	}

	req.Handle = strings.TrimSpace(req.Handle)
	req.Email = strings.TrimSpace(req.Email)
	if req.Handle == "" || req.Email == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "handle and email are required")
		return
	}

	temp, err := h.AdminService.CreateAdmin(ctx, id.Account, req.Handle, req.Email)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPermissionDenied):
			httpx.WriteError(w, http.StatusForbidden, "forbidden", "super admin role required")
		case errors.Is(err, service.ErrDuplicateHandle):
			httpx.WriteError(w, http.StatusBadRequest, "duplicate_handle", "handle already exists")
		default:
			log.Error("create admin failed", "err", err)
			httpx.WriteError(w, http.StatusInternalServerError, "server_error", "create admin failed")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, createAdminResponse{
		Handle:       req.Handle,
		TempPassword: temp,
	})
}
