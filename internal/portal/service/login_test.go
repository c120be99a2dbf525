package service

import (
	"context"
	"testing"

	"github.com/campusworks/portal/internal/portal/domain"
	"github.com/stretchr/testify/require"
)

func TestLoginPipeline(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("wrong credentials fail without leaking handle existence", func(t *testing.T) {
		st := newTestStore(t)
		createTestAccount(t, st, "alice", "Password1!", domain.RoleAdmin, false)
		svc := newLoginStack(t, st)

		_, err := svc.Login(ctx, "alice", "wrong-password", domain.SessionInfo{DeviceName: "laptop"})
		require.ErrorIs(t, err, ErrInvalidCredentials)

		_, err = svc.Login(ctx, "nobody", "whatever", domain.SessionInfo{DeviceName: "laptop"})
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("valid credentials end at the otp screen", func(t *testing.T) {
		st := newTestStore(t)
		createTestAccount(t, st, "alice", "Password1!", domain.RoleAdmin, false)
		svc := newLoginStack(t, st)

		outcome, err := svc.Login(ctx, "alice", "Password1!", domain.SessionInfo{DeviceName: "laptop"})
		require.NoError(t, err)
		require.Equal(t, domain.StatusOTPRequired, outcome.Status)
		require.Equal(t, "alice", outcome.Handle)

		code := pendingOTP(t, st, "alice")
		pair, cookie, account, err := svc.VerifyOTP(ctx, "alice", code, "10.0.0.1")
		require.NoError(t, err)
		require.NotEmpty(t, pair.Access)
		require.NotEmpty(t, pair.Refresh)
		require.NotEmpty(t, cookie)
		require.Equal(t, "alice", account.Handle)
	})

	t.Run("temporary password blocks the pipeline", func(t *testing.T) {
		st := newTestStore(t)
		createTestAccount(t, st, "bob", "TempPass9!", domain.RoleAdmin, true)
		svc := newLoginStack(t, st)

		outcome, err := svc.Login(ctx, "bob", "TempPass9!", domain.SessionInfo{DeviceName: "laptop"})
		require.NoError(t, err)
		require.Equal(t, domain.StatusTempPasswordReset, outcome.Status)

		// Weak replacements are rejected.
		_, err = svc.CompleteReset(ctx, "bob", "TempPass9!", "weakpass", domain.SessionInfo{})
		require.ErrorIs(t, err, ErrWeakPassword)

		// A policy-passing replacement continues straight into the pipeline.
		outcome, err = svc.CompleteReset(ctx, "bob", "TempPass9!", "NewPassword1!", domain.SessionInfo{DeviceName: "laptop"})
		require.NoError(t, err)
		require.Equal(t, domain.StatusOTPRequired, outcome.Status)

		// The old temporary password no longer works, the new one does.
		_, err = svc.Authenticate(ctx, "bob", "TempPass9!")
		require.ErrorIs(t, err, ErrInvalidCredentials)
		account, err := svc.Authenticate(ctx, "bob", "NewPassword1!")
		require.NoError(t, err)
		require.False(t, account.TempPassword)
	})

	t.Run("reset refused when no temporary password is pending", func(t *testing.T) {
		st := newTestStore(t)
		createTestAccount(t, st, "carol", "Password1!", domain.RoleAdmin, false)
		svc := newLoginStack(t, st)

		_, err := svc.CompleteReset(ctx, "carol", "Password1!", "NewPassword1!", domain.SessionInfo{})
		require.ErrorIs(t, err, ErrResetNotRequired)
	})

	t.Run("second device conflicts, force logout resolves it", func(t *testing.T) {
		st := newTestStore(t)
		createTestAccount(t, st, "alice", "Password1!", domain.RoleAdmin, false)
		svc := newLoginStack(t, st)

		// Device A completes a full login.
		outcome, err := svc.Login(ctx, "alice", "Password1!", domain.SessionInfo{IP: "10.0.0.1", DeviceName: "office desktop"})
		require.NoError(t, err)
		require.Equal(t, domain.StatusOTPRequired, outcome.Status)

		pairA, _, _, err := svc.VerifyOTP(ctx, "alice", pendingOTP(t, st, "alice"), "10.0.0.1")
		require.NoError(t, err)

		// Device B hits the conflict screen and sees who holds the session.
		outcome, err = svc.Login(ctx, "alice", "Password1!", domain.SessionInfo{IP: "10.0.0.2", DeviceName: "home laptop"})
		require.NoError(t, err)
		require.Equal(t, domain.StatusSessionConflict, outcome.Status)
		require.NotNil(t, outcome.Conflict)
		require.Equal(t, "office desktop", outcome.Conflict.DeviceName)

		// Device B forces A out and finishes its own login.
		outcome, err = svc.ForceLogout(ctx, "alice", "Password1!", domain.SessionInfo{IP: "10.0.0.2", DeviceName: "home laptop"})
		require.NoError(t, err)
		require.Equal(t, domain.StatusLogoutSuccess, outcome.Status)

		pairB, _, _, err := svc.VerifyOTP(ctx, "alice", pendingOTP(t, st, "alice"), "10.0.0.2")
		require.NoError(t, err)
		require.NotEmpty(t, pairB.Access)

		// A's refresh token was revoked by the eviction.
		_, err = svc.Tokens.Refresh(ctx, pairA.Refresh)
		require.ErrorIs(t, err, ErrInvalidRefreshToken)

		// B's still rotates normally.
		rotated, err := svc.Tokens.Refresh(ctx, pairB.Refresh)
		require.NoError(t, err)
		require.NotEmpty(t, rotated.Access)
	})

	t.Run("logout releases the slot for a fresh login", func(t *testing.T) {
		st := newTestStore(t)
		createTestAccount(t, st, "alice", "Password1!", domain.RoleAdmin, false)
		svc := newLoginStack(t, st)

		_, err := svc.Login(ctx, "alice", "Password1!", domain.SessionInfo{DeviceName: "laptop"})
		require.NoError(t, err)
		_, _, account, err := svc.VerifyOTP(ctx, "alice", pendingOTP(t, st, "alice"), "")
		require.NoError(t, err)

		require.NoError(t, svc.Logout(ctx, account.ID, account.Handle, ""))

		outcome, err := svc.Login(ctx, "alice", "Password1!", domain.SessionInfo{DeviceName: "laptop"})
		require.NoError(t, err)
		require.Equal(t, domain.StatusOTPRequired, outcome.Status)
	})

	t.Run("wrong otp is retryable inside the window", func(t *testing.T) {
		st := newTestStore(t)
		createTestAccount(t, st, "alice", "Password1!", domain.RoleAdmin, false)
		svc := newLoginStack(t, st)

		_, err := svc.Login(ctx, "alice", "Password1!", domain.SessionInfo{DeviceName: "laptop"})
		require.NoError(t, err)

		code := pendingOTP(t, st, "alice")
		wrong := "000000"
		if wrong == code {
			wrong = "000001"
		}

		_, _, _, err = svc.VerifyOTP(ctx, "alice", wrong, "")
		require.ErrorIs(t, err, ErrOTPInvalidOrExpired)

		// The real code still works afterwards.
		_, _, _, err = svc.VerifyOTP(ctx, "alice", code, "")
		require.NoError(t, err)
	})
}
