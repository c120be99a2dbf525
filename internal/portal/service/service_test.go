package service

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/campusworks/portal/internal/portal/domain"
	"github.com/campusworks/portal/internal/portal/notify"
	"github.com/campusworks/portal/internal/portal/store"
	"github.com/campusworks/portal/internal/portal/store/drivers/sqlite"
	"github.com/campusworks/portal/pkg/cryptox"
	"github.com/campusworks/portal/pkg/idx"
	"github.com/campusworks/portal/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "portal-test")
	if err != nil {
		panic(err)
	}
	cryptox.SetPepperPath(filepath.Join(dir, "pepper"))

	code := m.Run()
	_ = os.RemoveAll(dir)
	os.Exit(code)
}

func newTestStore(t *testing.T) store.Store {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, st.ApplyMigrations())
	t.Cleanup(func() { _ = st.Close() })

	return st
}

func newTestAudit(t *testing.T, st store.Store) *AuditService {
	t.Helper()

	audit := NewAuditService(st, slog.Default(), 16)
	t.Cleanup(audit.Close)
	return audit
}

func createTestAccount(t *testing.T, st store.Store, handle, password, role string, temp bool) domain.Account {
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

// newLoginStack wires a full login pipeline over the given store with an
// ephemeral signer and a log-only mailer.
func newLoginStack(t *testing.T, st store.Store) *LoginService {
	t.Helper()

	signer, err := jwtx.NewEphemeralSigner("test-1")
	require.NoError(t, err)

	audit := newTestAudit(t, st)

	return &LoginService{
		Store:    st,
		Sessions: &SessionService{Store: st},
		OTP: &OTPService{
			Store:  st,
			Mailer: &notify.LogMailer{},
			Audit:  audit,
		},
		Tokens: &TokenService{
			Signer: signer,
			Store:  st,
			Issuer: "portal-test",
		},
		Audit: audit,
	}
}

// pendingOTP reads the code currently stored for a handle.
func pendingOTP(t *testing.T, st store.Store, handle string) string {
	t.Helper()

	account, err := st.Accounts().GetByHandle(context.Background(), handle)
	require.NoError(t, err)
	require.NotNil(t, account.OTPCode)
	return *account.OTPCode
}
