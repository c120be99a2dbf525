package service

import (
	"context"
	"testing"

	"github.com/campusworks/portal/internal/portal/domain"
	"github.com/campusworks/portal/internal/portal/notify"
	"github.com/stretchr/testify/require"
)

func TestCreateAdmin(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	newAdminService := func(t *testing.T) *AdminService {
		st := newTestStore(t)
		return &AdminService{
			Store:  st,
			Mailer: &notify.LogMailer{},
			Audit:  newTestAudit(t, st),
		}
	}

	root := domain.Account{Handle: "root", Role: domain.RoleSuperAdmin}

	t.Run("issues a temporary password", func(t *testing.T) {
		svc := newAdminService(t)

		temp, err := svc.CreateAdmin(ctx, root, "newadmin", "newadmin@campus.test")
		require.NoError(t, err)
		require.Len(t, temp, 12)

		account, err := svc.Store.Accounts().GetByHandle(ctx, "newadmin")
		require.NoError(t, err)
		require.True(t, account.TempPassword)
		require.Equal(t, domain.RoleAdmin, account.Role)
	})

	t.Run("regular admins may not create accounts", func(t *testing.T) {
		svc := newAdminService(t)

		admin := domain.Account{Handle: "admin", Role: domain.RoleAdmin}
		_, err := svc.CreateAdmin(ctx, admin, "sneaky", "sneaky@campus.test")
		require.ErrorIs(t, err, ErrPermissionDenied)
	})

	t.Run("duplicate handles are rejected", func(t *testing.T) {
		svc := newAdminService(t)

		_, err := svc.CreateAdmin(ctx, root, "taken", "one@campus.test")
		require.NoError(t, err)

		_, err = svc.CreateAdmin(ctx, root, "taken", "two@campus.test")
		require.ErrorIs(t, err, ErrDuplicateHandle)
	})

	t.Run("super admin bootstrap validates chosen passwords", func(t *testing.T) {
		svc := newAdminService(t)

		err := svc.CreateSuperAdmin(ctx, "root", "root@campus.test", "weak", false)
		require.ErrorIs(t, err, ErrWeakPassword)

		require.NoError(t, svc.CreateSuperAdmin(ctx, "root", "root@campus.test", "RootPass1!", false))

		account, err := svc.Store.Accounts().GetByHandle(ctx, "root")
		require.NoError(t, err)
		require.True(t, account.IsSuperAdmin())
		require.False(t, account.TempPassword)
	})
}
