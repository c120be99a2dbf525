package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/campusworks/portal/internal/portal/domain"
	"github.com/campusworks/portal/internal/portal/service"
	"github.com/campusworks/portal/pkg/httpx"
	"github.com/campusworks/portal/pkg/slogx"
)

// ForceLogoutHandler serves POST /api/auth/force-logout: evicting the session
// that currently holds the account's slot and restarting the pipeline for the
// caller. Credentials are required; this endpoint is reached by a device that
// is not (yet) authenticated.
type ForceLogoutHandler struct {
	LoginService *service.LoginService
}

type forceLogoutRequest struct {
	Handle     string `json:"handle"`
	Password   string `json:"password"`
	DeviceName string `json:"device_name"`
}

// ServeHTTP godoc
//
//	@Summary		Force out the active session
//	@Description	Evicts whatever device currently holds the account's session and issues a fresh OTP to the caller. The evicted device's tokens stop working immediately.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		forceLogoutRequest	true	"Credentials and device name"
//	@Success		200		{object}	loginOutcomeResponse	"status LOGOUT_SUCCESS, then verify the new OTP"
//	@Failure		400		{object}	map[string]string	"error, error_description"
//	@Failure		401		{object}	map[string]string	"error, error_description"
//	@Router			/api/auth/force-logout [post].
func (h *ForceLogoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req forceLogoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "malformed JSON body")
		return
	}

	req.Handle = strings.TrimSpace(req.Handle)
	if req.Handle == "" || req.Password == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "handle and password are required")
		return
	}

	outcome, err := h.LoginService.ForceLogout(ctx, req.Handle, req.Password, sessionInfoFromRequest(r, req.DeviceName))
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			httpx.WriteError(w, http.StatusUnauthorized, "invalid_credentials", "handle or password incorrect")
			return
		}
		log.Error("force logout failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "force logout failed")
		return
	}

	writeLoginOutcome(w, outcome)
}

// LogoutHandler serves POST /api/auth/logout for an authenticated caller.
type LogoutHandler struct {
	LoginService *service.LoginService
}

// ServeHTTP godoc
//
//	@Summary	Log out
//	@Description	Releases the caller's session slot and invalidates the session cookie and refresh tokens.
//	@Tags		Auth
//	@Produce	json
//	@Success	200	{object}	map[string]string	"status LOGOUT_SUCCESS"
//	@Failure	401	{object}	map[string]string	"error, error_description"
//	@Security	BearerAuth
//	@Router		/api/auth/logout [post].
func (h *LogoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	id, ok := IdentityFromContext(ctx)
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthenticated", "valid session required")
		return
	}

	if err := h.LoginService.Logout(ctx, id.Account.ID, id.Account.Handle, httpx.IPKeyExtractor(r)); err != nil {
		log.Error("logout failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "logout failed")
		return
	}

	// Expire the cookie on the way out.
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})

	httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": domain.StatusLogoutSuccess})
}

// RefreshHandler serves POST /api/auth/refresh, rotating a refresh token.
type RefreshHandler struct {
	TokenService *service.TokenService
}

type refreshRequest struct {
	Refresh string `json:"refresh"`
}

// ServeHTTP godoc
//
//	@Summary	Rotate a refresh token
//	@Description	Exchanges a live refresh token for a fresh access/refresh pair. The presented token is revoked; tokens from an evicted session are rejected.
//	@Tags		Auth
//	@Accept		json
//	@Produce	json
//	@Param		body	body		refreshRequest	true	"Refresh token"
//	@Success	200		{object}	domain.TokenPair
//	@Failure	400		{object}	map[string]string	"error, error_description"
//	@Failure	401		{object}	map[string]string	"error, error_description"
//	@Router		/api/auth/refresh [post].
func (h *RefreshHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "malformed JSON body")
		return
	}
	if req.Refresh == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "refresh token is required")
		return
	}

	pair, err := h.TokenService.Refresh(ctx, req.Refresh)
	if err != nil {
		if errors.Is(err, service.ErrInvalidRefreshToken) {
			httpx.WriteError(w, http.StatusUnauthorized, "invalid_refresh_token", "refresh token is invalid, expired or revoked")
			return
		}
		log.Error("token refresh failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "token refresh failed")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, pair)
}
