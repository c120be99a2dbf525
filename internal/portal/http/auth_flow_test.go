package http

import (
	"net/http"
	"testing"

	"github.com/campusworks/portal/internal/portal/domain"
	"github.com/stretchr/testify/require"
)

type outcomeBody struct {
	Status   string               `json:"status"`
	Handle   string               `json:"handle"`
	Conflict *domain.ConflictInfo `json:"conflict"`
}

type verifyBody struct {
	Status string `json:"status"`
	Handle string `json:"handle"`
	Role   string `json:"role"`
	Tokens struct {
		Access  string `json:"access"`
		Refresh string `json:"refresh"`
	} `json:"tokens"`
}

func TestVerifyOTPFailureStatuses(t *testing.T) {
	t.Parallel()

	router, st := newTestRouter(t)
	createAccount(t, st, "alice", "Password1!", domain.RoleAdmin, false)

	w := do(t, router, testRequest{
		method: http.MethodPost,
		path:   "/api/auth/login",
		body:   map[string]string{"handle": "alice", "password": "Password1!"},
	})
	require.Equal(t, http.StatusOK, w.Code)

	code := storedOTP(t, st, "alice")
	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}

	// A bad code is a 400, not an authentication failure.
	w = do(t, router, testRequest{
		method: http.MethodPost,
		path:   "/api/auth/verify-otp",
		body:   map[string]string{"handle": "alice", "otp": wrong},
	})
	require.Equal(t, http.StatusBadRequest, w.Code)

	// An unknown handle is a 404.
	w = do(t, router, testRequest{
		method: http.MethodPost,
		path:   "/api/auth/verify-otp",
		body:   map[string]string{"handle": "ghost", "otp": wrong},
	})
	require.Equal(t, http.StatusNotFound, w.Code)

	// The pending code is still usable after both failures.
	w = do(t, router, testRequest{
		method: http.MethodPost,
		path:   "/api/auth/verify-otp",
		body:   map[string]string{"handle": "alice", "otp": code},
	})
	require.Equal(t, http.StatusOK, w.Code)
}

func TestFullLoginFlow(t *testing.T) {
	t.Parallel()

	router, st := newTestRouter(t)
	createAccount(t, st, "alice", "Password1!", domain.RoleAdmin, false)

	// Device A logs in and lands on the OTP screen.
	w := do(t, router, testRequest{
		method: http.MethodPost,
		path:   "/api/auth/login",
		body: map[string]string{
			"handle": "alice", "password": "Password1!", "device_name": "office desktop",
		},
	})
	require.Equal(t, http.StatusOK, w.Code)

	var outcome outcomeBody
	decodeBody(t, w, &outcome)
	require.Equal(t, domain.StatusOTPRequired, outcome.Status)

	// Device A verifies its code and is fully authenticated.
	w = do(t, router, testRequest{
		method: http.MethodPost,
		path:   "/api/auth/verify-otp",
		body:   map[string]string{"handle": "alice", "otp": storedOTP(t, st, "alice")},
	})
	require.Equal(t, http.StatusOK, w.Code)

	var verified verifyBody
	decodeBody(t, w, &verified)
	require.Equal(t, domain.StatusSuccess, verified.Status)
	require.NotEmpty(t, verified.Tokens.Access)
	accessA := verified.Tokens.Access

	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)
	require.Equal(t, SessionCookieName, cookies[0].Name)
	cookieA := cookies[0].Value

	// Both transports reach an authenticated endpoint.
	w = do(t, router, testRequest{method: http.MethodGet, path: "/api/dashboard-stats", bearer: accessA})
	require.Equal(t, http.StatusOK, w.Code)
	w = do(t, router, testRequest{method: http.MethodGet, path: "/api/dashboard-stats", cookie: cookieA})
	require.Equal(t, http.StatusOK, w.Code)

	// Device B presents valid credentials and hits the conflict screen.
	w = do(t, router, testRequest{
		method: http.MethodPost,
		path:   "/api/auth/login",
		body: map[string]string{
			"handle": "alice", "password": "Password1!", "device_name": "home laptop",
		},
	})
	require.Equal(t, http.StatusConflict, w.Code)

	decodeBody(t, w, &outcome)
	require.Equal(t, domain.StatusSessionConflict, outcome.Status)
	require.NotNil(t, outcome.Conflict)
	require.Equal(t, "office desktop", outcome.Conflict.DeviceName)

	// Device B forces A out and completes its own login.
	w = do(t, router, testRequest{
		method: http.MethodPost,
		path:   "/api/auth/force-logout",
		body: map[string]string{
			"handle": "alice", "password": "Password1!", "device_name": "home laptop",
		},
	})
	require.Equal(t, http.StatusOK, w.Code)
	decodeBody(t, w, &outcome)
	require.Equal(t, domain.StatusLogoutSuccess, outcome.Status)

	w = do(t, router, testRequest{
		method: http.MethodPost,
		path:   "/api/auth/verify-otp",
		body:   map[string]string{"handle": "alice", "otp": storedOTP(t, st, "alice")},
	})
	require.Equal(t, http.StatusOK, w.Code)
	decodeBody(t, w, &verified)
	accessB := verified.Tokens.Access

	// A's stale credentials are simply unauthenticated, not a conflict.
	w = do(t, router, testRequest{method: http.MethodGet, path: "/api/dashboard-stats", bearer: accessA})
	require.Equal(t, http.StatusUnauthorized, w.Code)
	w = do(t, router, testRequest{method: http.MethodGet, path: "/api/dashboard-stats", cookie: cookieA})
	require.Equal(t, http.StatusUnauthorized, w.Code)

	// B works.
	w = do(t, router, testRequest{method: http.MethodGet, path: "/api/dashboard-stats", bearer: accessB})
	require.Equal(t, http.StatusOK, w.Code)

	// B logs out; the slot frees up for a clean login.
	w = do(t, router, testRequest{method: http.MethodPost, path: "/api/auth/logout", bearer: accessB})
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, router, testRequest{method: http.MethodGet, path: "/api/dashboard-stats", bearer: accessB})
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestTempPasswordFlow(t *testing.T) {
	t.Parallel()

	router, st := newTestRouter(t)
	createAccount(t, st, "bob", "TempPass9!", domain.RoleAdmin, true)

	// Login with a temporary password is redirected to the reset screen.
	w := do(t, router, testRequest{
		method: http.MethodPost,
		path:   "/api/auth/login",
		body:   map[string]string{"handle": "bob", "password": "TempPass9!"},
	})
	require.Equal(t, http.StatusOK, w.Code)

	var outcome outcomeBody
	decodeBody(t, w, &outcome)
	require.Equal(t, domain.StatusTempPasswordReset, outcome.Status)

	// A weak replacement is refused with a policy hint.
	w = do(t, router, testRequest{
		method: http.MethodPost,
		path:   "/api/auth/reset-password",
		body: map[string]string{
			"handle": "bob", "temp_password": "TempPass9!", "new_password": "weakpass",
		},
	})
	require.Equal(t, http.StatusBadRequest, w.Code)

	// A good one continues straight into the OTP step.
	w = do(t, router, testRequest{
		method: http.MethodPost,
		path:   "/api/auth/reset-password",
		body: map[string]string{
			"handle": "bob", "temp_password": "TempPass9!", "new_password": "BrandNew1!",
		},
	})
	require.Equal(t, http.StatusOK, w.Code)
	decodeBody(t, w, &outcome)
	require.Equal(t, domain.StatusOTPRequired, outcome.Status)

	w = do(t, router, testRequest{
		method: http.MethodPost,
		path:   "/api/auth/verify-otp",
		body:   map[string]string{"handle": "bob", "otp": storedOTP(t, st, "bob")},
	})
	require.Equal(t, http.StatusOK, w.Code)
}

func TestRefreshRotation(t *testing.T) {
	t.Parallel()

	router, st := newTestRouter(t)
	createAccount(t, st, "alice", "Password1!", domain.RoleAdmin, false)

	w := do(t, router, testRequest{
		method: http.MethodPost,
		path:   "/api/auth/login",
		body:   map[string]string{"handle": "alice", "password": "Password1!"},
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, router, testRequest{
		method: http.MethodPost,
		path:   "/api/auth/verify-otp",
		body:   map[string]string{"handle": "alice", "otp": storedOTP(t, st, "alice")},
	})
	require.Equal(t, http.StatusOK, w.Code)

	var verified verifyBody
	decodeBody(t, w, &verified)

	w = do(t, router, testRequest{
		method: http.MethodPost,
		path:   "/api/auth/refresh",
		body:   map[string]string{"refresh": verified.Tokens.Refresh},
	})
	require.Equal(t, http.StatusOK, w.Code)

	var pair domain.TokenPair
	decodeBody(t, w, &pair)
	require.NotEmpty(t, pair.Access)

	// The spent refresh token is dead.
	w = do(t, router, testRequest{
		method: http.MethodPost,
		path:   "/api/auth/refresh",
		body:   map[string]string{"refresh": verified.Tokens.Refresh},
	})
	require.Equal(t, http.StatusUnauthorized, w.Code)
}
