package service

import (
	"context"
	"testing"
	"time"

	"github.com/campusworks/portal/internal/portal/domain"
	"github.com/campusworks/portal/pkg/idx"
	"github.com/campusworks/portal/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func newTokenStack(t *testing.T) (*TokenService, domain.Account, string) {
	t.Helper()

	st := newTestStore(t)
	account := createTestAccount(t, st, "alice", "Password1!", domain.RoleAdmin, false)

	sid := idx.New().String()
	now := time.Now().UTC()
	require.NoError(t, st.TransportSessions().Create(context.Background(), domain.TransportSession{
		ID:        sid,
		AccountID: account.ID,
		Stage:     domain.SessionStageActive,
		CreatedAt: now,
		ExpiresAt: now.Add(time.Hour),
	}))

	signer, err := jwtx.NewEphemeralSigner("test-1")
	require.NoError(t, err)

	return &TokenService{
		Signer: signer,
		Store:  st,
		Issuer: "portal-test",
	}, account, sid
}

func TestTokenIssueAndRefresh(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("access token carries the session id", func(t *testing.T) {
		svc, account, sid := newTokenStack(t)

		pair, err := svc.Issue(ctx, account, sid)
		require.NoError(t, err)

		keys := jwtx.NewKeySet()
		keys.AddSigner(svc.Signer)
		verifier := jwtx.NewVerifier(keys, "portal-test")

		claims, err := verifier.Verify(pair.Access)
		require.NoError(t, err)
		require.Equal(t, sid, claims.SID)
		require.Equal(t, account.ID, claims.Subject)
		require.Equal(t, "alice", claims.Handle)
		require.Equal(t, domain.RoleAdmin, claims.Role)
	})

	t.Run("refresh rotates and revokes the old token", func(t *testing.T) {
		svc, account, sid := newTokenStack(t)

		pair, err := svc.Issue(ctx, account, sid)
		require.NoError(t, err)

		rotated, err := svc.Refresh(ctx, pair.Refresh)
		require.NoError(t, err)
		require.NotEqual(t, pair.Refresh, rotated.Refresh)

		// The spent token is gone for good.
		_, err = svc.Refresh(ctx, pair.Refresh)
		require.ErrorIs(t, err, ErrInvalidRefreshToken)
	})

	t.Run("refresh fails once the session is gone", func(t *testing.T) {
		svc, account, sid := newTokenStack(t)

		pair, err := svc.Issue(ctx, account, sid)
		require.NoError(t, err)

		require.NoError(t, svc.Store.TransportSessions().Delete(ctx, sid))

		_, err = svc.Refresh(ctx, pair.Refresh)
		require.ErrorIs(t, err, ErrInvalidRefreshToken)
	})

	t.Run("garbage tokens are rejected", func(t *testing.T) {
		svc, _, _ := newTokenStack(t)

		_, err := svc.Refresh(ctx, "not-a-token")
		require.ErrorIs(t, err, ErrInvalidRefreshToken)
	})
}
