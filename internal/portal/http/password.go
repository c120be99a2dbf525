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

// ResetPasswordHandler serves POST /api/auth/reset-password: exchanging a
// temporary password for a permanent one. Success re-enters the login
// pipeline, so the response is a login outcome (usually OTP_REQUIRED).
type ResetPasswordHandler struct {
	LoginService *service.LoginService
}

type resetPasswordRequest struct {
	Handle       string `json:"handle"`
	TempPassword string `json:"temp_password"`
	NewPassword  string `json:"new_password"`
	DeviceName   string `json:"device_name"`
}

// ServeHTTP godoc
//
//	@Summary		Reset a temporary password
//	@Description	Replaces a system-issued temporary password. Requires at least 8 characters including one digit, one uppercase letter and one symbol. On success the login pipeline continues at the session check.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		resetPasswordRequest	true	"Handle, temporary and new password"
//	@Success		200		{object}	loginOutcomeResponse
//	@Failure		400		{object}	map[string]string	"error, error_description"
//	@Failure		401		{object}	map[string]string	"error, error_description"
//	@Failure		409		{object}	loginOutcomeResponse	"session conflict"
//	@Router			/api/auth/reset-password [post].
func (h *ResetPasswordHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req resetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "malformed JSON body")
		return
	}

	req.Handle = strings.TrimSpace(req.Handle)
	if req.Handle == "" || req.TempPassword == "" || req.NewPassword == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "handle, temp_password and new_password are required")
		return
	}

	outcome, err := h.LoginService.CompleteReset(ctx, req.Handle, req.TempPassword, req.NewPassword, sessionInfoFromRequest(r, req.DeviceName))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			httpx.WriteError(w, http.StatusUnauthorized, "invalid_credentials", "handle or temporary password incorrect")
		case errors.Is(err, service.ErrWeakPassword):
			httpx.WriteError(w, http.StatusBadRequest, "weak_password",
				"password needs 8+ characters with a digit, an uppercase letter and a symbol")
		case errors.Is(err, service.ErrResetNotRequired):
			httpx.WriteError(w, http.StatusBadRequest, "reset_not_required", "account has no pending password reset")
		default:
			log.Error("password reset failed", "err", err)
			httpx.WriteError(w, http.StatusInternalServerError, "server_error", "password reset failed")
		}
		return
	}

	writeLoginOutcome(w, outcome)
}
