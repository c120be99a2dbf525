package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/campusworks/portal/internal/portal/domain"
	"github.com/campusworks/portal/internal/portal/service"
	"github.com/campusworks/portal/pkg/httpx"
	"github.com/campusworks/portal/pkg/slogx"
)

// VerifyOTPHandler serves POST /api/auth/verify-otp, the final step of the
// login pipeline. Success yields the token pair and sets the session cookie.
type VerifyOTPHandler struct {
	LoginService *service.LoginService
	CookieSecure bool
	CookieMaxAge time.Duration
}

type verifyOTPRequest struct {
	Handle string `json:"handle"`
	OTP    string `json:"otp"`
}

type verifyOTPResponse struct {
	Status string           `json:"status"`
	Handle string           `json:"handle"`
	Role   string           `json:"role"`
	Tokens domain.TokenPair `json:"tokens"`
}

// ServeHTTP godoc
//
//	@Summary		Verify login OTP
//	@Description	Verifies the one-time code issued at login. On success the session is activated, access/refresh tokens are returned and the session cookie is set.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		verifyOTPRequest	true	"Handle and 6-digit code"
//	@Success		200		{object}	verifyOTPResponse
//	@Failure		400		{object}	map[string]string	"invalid or expired code"
//	@Failure		404		{object}	map[string]string	"unknown handle"
//	@Header			200		{string}	Cache-Control		"no-store"
//	@Router			/api/auth/verify-otp [post].
func (h *VerifyOTPHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req verifyOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "malformed JSON body")
		return
	}

	req.Handle = strings.TrimSpace(req.Handle)
	req.OTP = strings.TrimSpace(req.OTP)
	if req.Handle == "" || req.OTP == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "handle and otp are required")
		return
	}

	pair, cookieToken, account, err := h.LoginService.VerifyOTP(ctx, req.Handle, req.OTP, httpx.IPKeyExtractor(r))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAccountNotFound):
			httpx.WriteError(w, http.StatusNotFound, "unknown_handle", "no account for that handle")
		case errors.Is(err, service.ErrOTPInvalidOrExpired):
			httpx.WriteError(w, http.StatusBadRequest, "invalid_otp", "code is invalid or expired")
		case errors.Is(err, service.ErrLoginExpired):
			httpx.WriteError(w, http.StatusBadRequest, "login_expired", "login attempt expired, start over")
		default:
			log.Error("otp verification failed", "err", err)
			httpx.WriteError(w, http.StatusInternalServerError, "server_error", "verification failed")
		}
		return
	}

	maxAge := h.CookieMaxAge
	if maxAge <= 0 {
		maxAge = 7 * 24 * time.Hour
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    cookieToken,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: true,
		Secure:   h.CookieSecure,
		SameSite: http.SameSiteStrictMode,
	})

	httpx.WriteJSON(w, http.StatusOK, verifyOTPResponse{
		Status: domain.StatusSuccess,
		Handle: account.Handle,
		Role:   account.Role,
		Tokens: pair,
	})
}
