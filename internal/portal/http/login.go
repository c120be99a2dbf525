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

// LoginHandler serves POST /api/auth/login, the entry point of the login
// pipeline. A successful credential check never returns tokens directly; the
// response status tells the client which screen comes next.
type LoginHandler struct {
	LoginService *service.LoginService
}

type loginRequest struct {
	Handle     string `json:"handle"`
	Password   string `json:"password"`
	DeviceName string `json:"device_name"`
}

// loginOutcomeResponse is shared by login, reset-password and force-logout.
type loginOutcomeResponse struct {
	Status   string               `json:"status"`
	Handle   string               `json:"handle,omitempty"`
	Conflict *domain.ConflictInfo `json:"conflict,omitempty"`
}

func sessionInfoFromRequest(r *http.Request, deviceName string) domain.SessionInfo {
	if deviceName == "" {
		deviceName = "unknown device"
	}
	return domain.SessionInfo{
		IP:         httpx.IPKeyExtractor(r),
		UserAgent:  r.UserAgent(),
		DeviceName: deviceName,
	}
}

func writeLoginOutcome(w http.ResponseWriter, outcome domain.LoginOutcome) {
	code := http.StatusOK
	if outcome.Status == domain.StatusSessionConflict {
		code = http.StatusConflict
	}
	httpx.WriteJSON(w, code, loginOutcomeResponse{
		Status:   outcome.Status,
		Handle:   outcome.Handle,
		Conflict: outcome.Conflict,
	})
}

// ServeHTTP godoc
//
//	@Summary		Begin login
//	@Description	Verifies credentials and advances the login state machine. Responds with OTP_REQUIRED once a one-time code has been issued, SESSION_CONFLICT when another device holds the session, or TEMP_PASSWORD_RESET_REQUIRED when the password must be changed first.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		loginRequest	true	"Credentials and device name"
//	@Success		200		{object}	loginOutcomeResponse
//	@Failure		400		{object}	map[string]string	"error, error_description"
//	@Failure		401		{object}	map[string]string	"error, error_description"
//	@Failure		409		{object}	loginOutcomeResponse	"session conflict"
//	@Router			/api/auth/login [post].
func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "malformed JSON body")
		return
	}

	req.Handle = strings.TrimSpace(req.Handle)
	if req.Handle == "" || req.Password == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "handle and password are required")
		return
	}

	outcome, err := h.LoginService.Login(ctx, req.Handle, req.Password, sessionInfoFromRequest(r, req.DeviceName))
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			httpx.WriteError(w, http.StatusUnauthorized, "invalid_credentials", "handle or password incorrect")
			return
		}
		log.Error("login failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "login failed")
		return
	}

	writeLoginOutcome(w, outcome)
}
