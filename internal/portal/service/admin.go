package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/campusworks/portal/internal/portal/domain"
	"github.com/campusworks/portal/internal/portal/notify"
	"github.com/campusworks/portal/internal/portal/store"
	"github.com/campusworks/portal/pkg/cryptox"
	"github.com/campusworks/portal/pkg/idx"
	"github.com/campusworks/portal/pkg/slogx"
)

// AdminService provisions accounts. New admins receive a generated temporary
// password they must replace on first login.
type AdminService struct {
	Store         store.Store
	Mailer        notify.Mailer
	Audit         *AuditService
	NotifyTimeout time.Duration

	Now func() time.Time
}

func (s *AdminService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

// CreateAdmin creates a regular admin account on behalf of a super admin.
// Returns the generated temporary password so the caller can display it once;
// delivery by mail is best-effort.
func (s *AdminService) CreateAdmin(ctx context.Context, actor domain.Account, handle, email string) (string, error) {
	if !actor.IsSuperAdmin() {
		return "", ErrPermissionDenied
	}

	temp, err := cryptox.GenerateTempPassword()
	if err != nil {
		return "", fmt.Errorf("generate temp password: %w", err)
	}

	if err := s.create(ctx, handle, email, temp, domain.RoleAdmin, true); err != nil {
		return "", err
	}

	s.Audit.Record(actor.Handle, domain.AuditAdminCreated, "admin "+handle, "")

	s.notifyCredentials(ctx, handle, email, temp)

	return temp, nil
}

// CreateSuperAdmin bootstraps the elevated account from the CLI. The caller
// supplies the password (or a generated temporary one) directly; no actor
// check applies since this runs on the host, not over HTTP.
func (s *AdminService) CreateSuperAdmin(ctx context.Context, handle, email, password string, temp bool) error {
	if !temp {
		if err := ValidatePassword(password); err != nil {
			return err
		}
	}

	if err := s.create(ctx, handle, email, password, domain.RoleSuperAdmin, temp); err != nil {
		return err
	}

	s.Audit.Record("cli", domain.AuditAdminCreated, "super admin "+handle, "")
	return nil
}

func (s *AdminService) create(ctx context.Context, handle, email, password, role string, temp bool) error {
	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	now := s.now()
	err = s.Store.Accounts().Create(ctx, domain.Account{
		ID:                 idx.New().String(),
		Handle:             handle,
		Email:              email,
		PasswordHash:       hash,
		Role:               role,
		TempPassword:       temp,
		LastPasswordChange: now,
		CreatedAt:          now,
		UpdatedAt:          now,
	})
	if errors.Is(err, store.ErrAlreadyExists) {
		return ErrDuplicateHandle
	}
	if err != nil {
		return fmt.Errorf("create account: %w", err)
	}
	return nil
}

func (s *AdminService) notifyCredentials(ctx context.Context, handle, email, temp string) {
	if s.Mailer == nil {
		return
	}

	timeout := s.NotifyTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	notifyCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	body := fmt.Sprintf(
		"Hello %s,\n\nYour admin account is ready.\nTemporary password: %s\n\nYou must change it on first login.",
		handle, temp,
	)

	if err := s.Mailer.Send(notifyCtx, email, "Your Admin Portal Account", body); err != nil {
		slogx.FromContext(ctx).Warn("credential notification failed", "handle", handle, "err", err)
		s.Audit.Record("system", domain.AuditNotifyFailed, "credential delivery to "+handle, "")
	}
}
