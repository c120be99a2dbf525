package service

import (
	"context"
	"testing"
	"time"

	"github.com/campusworks/portal/internal/portal/domain"
	"github.com/stretchr/testify/require"
)

func TestMaintenance(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("defaults to disabled", func(t *testing.T) {
		st := newTestStore(t)
		svc := &MaintenanceService{Store: st, Audit: newTestAudit(t, st)}

		state, err := svc.Current(ctx)
		require.NoError(t, err)
		require.False(t, state.Enabled)
	})

	t.Run("only super admins may toggle", func(t *testing.T) {
		st := newTestStore(t)
		svc := &MaintenanceService{Store: st, Audit: newTestAudit(t, st)}

		admin := domain.Account{Handle: "admin", Role: domain.RoleAdmin}
		_, err := svc.Set(ctx, admin, true, "down for patching")
		require.ErrorIs(t, err, ErrPermissionDenied)
	})

	t.Run("toggle is visible immediately through the cache", func(t *testing.T) {
		st := newTestStore(t)
		svc := &MaintenanceService{Store: st, Audit: newTestAudit(t, st)}

		// Prime the cache with the disabled state.
		state, err := svc.Current(ctx)
		require.NoError(t, err)
		require.False(t, state.Enabled)

		root := domain.Account{Handle: "root", Role: domain.RoleSuperAdmin}
		state, err = svc.Set(ctx, root, true, "down for patching")
		require.NoError(t, err)
		require.True(t, state.Enabled)
		require.Equal(t, "root", state.UpdatedBy)

		// The write went through the cache: no TTL wait needed.
		state, err = svc.Current(ctx)
		require.NoError(t, err)
		require.True(t, state.Enabled)
		require.Equal(t, "down for patching", state.Announcement)

		state, err = svc.Set(ctx, root, false, "")
		require.NoError(t, err)
		require.False(t, state.Enabled)
	})

	t.Run("external writes surface after the cache expires", func(t *testing.T) {
		st := newTestStore(t)
		svc := &MaintenanceService{Store: st, Audit: newTestAudit(t, st)}

		base := time.Now().UTC()
		svc.Now = func() time.Time { return base }

		state, err := svc.Current(ctx)
		require.NoError(t, err)
		require.False(t, state.Enabled)

		// Another process flips the row behind our back.
		require.NoError(t, st.Maintenance().Set(ctx, domain.MaintenanceState{
			Enabled:   true,
			UpdatedBy: "other-process",
			UpdatedAt: base,
		}))

		// Still cached.
		state, err = svc.Current(ctx)
		require.NoError(t, err)
		require.False(t, state.Enabled)

		// Past the TTL the fresh state is read.
		svc.Now = func() time.Time { return base.Add(3 * time.Second) }
		state, err = svc.Current(ctx)
		require.NoError(t, err)
		require.True(t, state.Enabled)
	})
}
