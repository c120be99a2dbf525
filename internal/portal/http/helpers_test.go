package http

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/campusworks/portal/internal/portal/domain"
	"github.com/campusworks/portal/internal/portal/notify"
	"github.com/campusworks/portal/internal/portal/service"
	"github.com/campusworks/portal/internal/portal/store"
	"github.com/campusworks/portal/internal/portal/store/drivers/sqlite"
	"github.com/campusworks/portal/pkg/cryptox"
	"github.com/campusworks/portal/pkg/idx"
	"github.com/campusworks/portal/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "portal-http-test")
	if err != nil {
		panic(err)
	}
	cryptox.SetPepperPath(filepath.Join(dir, "pepper"))

	code := m.Run()
	_ = os.RemoveAll(dir)
	os.Exit(code)
}

// newTestRouter wires the full stack over an in-memory database, identical to
// the production wiring except for the ephemeral signer and log-only mailer.
func newTestRouter(t *testing.T) (*Router, store.Store) {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, st.ApplyMigrations())
	t.Cleanup(func() { _ = st.Close() })

	logger := slog.Default()

	signer, err := jwtx.NewEphemeralSigner("test-1")
	require.NoError(t, err)
	keys := jwtx.NewKeySet()
	keys.AddSigner(signer)
	verifier := jwtx.NewVerifier(keys, "portal-test")

	audit := service.NewAuditService(st, logger, 16)
	t.Cleanup(audit.Close)

	mailer := &notify.LogMailer{Logger: logger}
	sessions := &service.SessionService{Store: st}
	otp := &service.OTPService{Store: st, Mailer: mailer, Audit: audit}
	tokens := &service.TokenService{Signer: signer, Store: st, Issuer: "portal-test"}

	router := NewRouter(keys, verifier, "test", st, logger, false)
	router.LoginService = &service.LoginService{
		Store:    st,
		Sessions: sessions,
		OTP:      otp,
		Tokens:   tokens,
		Audit:    audit,
	}
	router.TokenService = tokens
	router.AdminService = &service.AdminService{Store: st, Mailer: mailer, Audit: audit}
	router.SessionService = sessions
	router.MaintenanceService = &service.MaintenanceService{Store: st, Audit: audit}
	router.StatsService = &service.StatsService{Store: st}
	router.AuditService = audit
	router.ApplyRoutes()

	return router, st
}

func createAccount(t *testing.T, st store.Store, handle, password, role string, temp bool) domain.Account {
	t.Helper()

	hash, err := cryptox.HashPassword(password)
	require.NoError(t, err)

	now := time.Now().UTC()
	account := domain.Account{
		ID:                 idx.New().String(),
		Handle:             handle,
		Email:              handle + "@campus.test",
		PasswordHash:       hash,
		Role:               role,
		TempPassword:       temp,
		LastPasswordChange: now,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	require.NoError(t, st.Accounts().Create(context.Background(), account))
	return account
}

type testRequest struct {
	method string
	path   string
	body   any
	bearer string
	cookie string
}

func do(t *testing.T, router *Router, req testRequest) *httptest.ResponseRecorder {
	t.Helper()

	var body *bytes.Buffer
	if req.body != nil {
		raw, err := json.Marshal(req.body)
		require.NoError(t, err)
		body = bytes.NewBuffer(raw)
	} else {
		body = bytes.NewBuffer(nil)
	}

	r := httptest.NewRequest(req.method, req.path, body)
	r.Header.Set("Content-Type", "application/json")
	if req.bearer != "" {
		r.Header.Set("Authorization", "Bearer "+req.bearer)
	}
	if req.cookie != "" {
		r.AddCookie(&http.Cookie{Name: SessionCookieName, Value: req.cookie})
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(w.Body).Decode(v))
}

func storedOTP(t *testing.T, st store.Store, handle string) string {
	t.Helper()

	account, err := st.Accounts().GetByHandle(context.Background(), handle)
	require.NoError(t, err)
	require.NotNil(t, account.OTPCode)
	return *account.OTPCode
}
