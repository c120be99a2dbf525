package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/campusworks/portal/internal/portal/domain"
	"github.com/campusworks/portal/internal/portal/store"
	"github.com/campusworks/portal/pkg/cryptox"
	"github.com/campusworks/portal/pkg/idx"
	"github.com/campusworks/portal/pkg/slogx"
)

// PendingLoginTTL bounds how long a credential-checked login may sit waiting
// for its OTP before the whole attempt must restart.
const PendingLoginTTL = 10 * time.Minute

// LoginService orchestrates the login pipeline: credential check, temporary
// password gate, session arbitration, OTP issuance and finally token
// issuance. Each step either advances the state machine or returns a status
// the client must act on.
type LoginService struct {
	Store    store.Store
	Sessions *SessionService
	OTP      *OTPService
	Tokens   *TokenService
	Audit    *AuditService

	Now func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

func (s *LoginService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

// Authenticate verifies a handle/password pair. Unknown handles burn a hash
// verification against a throwaway digest so response timing does not reveal
// whether the handle exists.
func (s *LoginService) Authenticate(ctx context.Context, handle, password string) (domain.Account, error) {
	account, err := s.Store.Accounts().GetByHandle(ctx, handle)
	if errors.Is(err, store.ErrNotFound) {
		_ = cryptox.VerifyPassword(password, s.decoyHash())
		return domain.Account{}, ErrInvalidCredentials
	}
	if err != nil {
		return domain.Account{}, fmt.Errorf("lookup account: %w", err)
	}

	if err := cryptox.VerifyPassword(password, account.PasswordHash); err != nil {
		if errors.Is(err, cryptox.ErrPasswordMismatch) {
			s.Audit.Record(handle, domain.AuditLoginFailed, "wrong password", "")
			return domain.Account{}, ErrInvalidCredentials
		}
		return domain.Account{}, fmt.Errorf("verify password: %w", err)
	}

	return account, nil
}

func (s *LoginService) decoyHash() string {
	s.dummyOnce.Do(func() {
		h, err := cryptox.HashPassword("decoy-" + idx.New().String())
		if err == nil {
			s.dummyHash = h
		}
	})
	return s.dummyHash
}

// Login runs the pipeline up to OTP issuance.
//
// Outcomes: TEMP_PASSWORD_RESET_REQUIRED when the account still holds a
// system-issued password, SESSION_CONFLICT when another device owns the
// session slot, OTP_REQUIRED when a code was generated and a pending
// transport session created. Wrong credentials are an error, not an outcome.
func (s *LoginService) Login(ctx context.Context, handle, password string, info domain.SessionInfo) (domain.LoginOutcome, error) {
	account, err := s.Authenticate(ctx, handle, password)
	if err != nil {
		return domain.LoginOutcome{}, err
	}

	if account.TempPassword {
		return domain.LoginOutcome{
			Status: domain.StatusTempPasswordReset,
			Handle: account.Handle,
		}, nil
	}

	info.SessionID = idx.New().String()

	return s.enterSessionCheck(ctx, account, info)
}

// enterSessionCheck is the shared tail of Login, CompleteReset and
// ForceLogout: claim the session slot, open a pending transport session and
// issue the OTP.
func (s *LoginService) enterSessionCheck(ctx context.Context, account domain.Account, info domain.SessionInfo) (domain.LoginOutcome, error) {
	reg, err := s.Sessions.TryRegister(ctx, account.ID, info)
	if err != nil {
		return domain.LoginOutcome{}, err
	}

	if reg.Conflict != nil {
		s.Audit.Record(account.Handle, domain.AuditLoginFailed, "session conflict with "+reg.Conflict.DeviceName, info.IP)
		return domain.LoginOutcome{
			Status:   domain.StatusSessionConflict,
			Handle:   account.Handle,
			Conflict: reg.Conflict,
		}, nil
	}

	now := s.now()
	if err := s.Store.TransportSessions().Create(ctx, domain.TransportSession{
		ID:        info.SessionID,
		AccountID: account.ID,
		Stage:     domain.SessionStagePending,
		CreatedAt: now,
		ExpiresAt: now.Add(PendingLoginTTL),
	}); err != nil {
		return domain.LoginOutcome{}, fmt.Errorf("create pending session: %w", err)
	}

	if _, err := s.OTP.Generate(ctx, account); err != nil {
		return domain.LoginOutcome{}, err
	}

	s.Audit.Record(account.Handle, domain.AuditLoginSucceeded, "credentials accepted, awaiting otp", info.IP)

	return domain.LoginOutcome{
		Status: domain.StatusOTPRequired,
		Handle: account.Handle,
	}, nil
}

// VerifyOTP completes the login. On a valid code the pending transport
// session is activated with a fresh cookie token, access/refresh tokens are
// minted and the registry record is touched. Returns the pair, the raw cookie
// token for the Set-Cookie header and the account.
func (s *LoginService) VerifyOTP(ctx context.Context, handle, code, ip string) (domain.TokenPair, string, domain.Account, error) {
	account, err := s.Store.Accounts().GetByHandle(ctx, handle)
	if errors.Is(err, store.ErrNotFound) {
		return domain.TokenPair{}, "", domain.Account{}, ErrAccountNotFound
	}
	if err != nil {
		return domain.TokenPair{}, "", domain.Account{}, fmt.Errorf("lookup account: %w", err)
	}

	ok, err := s.OTP.Verify(ctx, account, code)
	if err != nil {
		return domain.TokenPair{}, "", domain.Account{}, err
	}
	if !ok {
		s.Audit.Record(handle, domain.AuditLoginFailed, "otp rejected", ip)
		return domain.TokenPair{}, "", domain.Account{}, ErrOTPInvalidOrExpired
	}

	rec, err := s.Sessions.Get(ctx, account.ID)
	if errors.Is(err, store.ErrNotFound) {
		// The registry record evaporated between login and verify (force
		// logout from elsewhere, or admin cleanup). Start over.
		return domain.TokenPair{}, "", domain.Account{}, ErrLoginExpired
	}
	if err != nil {
		return domain.TokenPair{}, "", domain.Account{}, fmt.Errorf("lookup session record: %w", err)
	}

	transport, err := s.Store.TransportSessions().GetByID(ctx, rec.SessionID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.TokenPair{}, "", domain.Account{}, ErrLoginExpired
	}
	if err != nil {
		return domain.TokenPair{}, "", domain.Account{}, fmt.Errorf("lookup transport session: %w", err)
	}

	now := s.now()
	if now.After(transport.ExpiresAt) {
		return domain.TokenPair{}, "", domain.Account{}, ErrLoginExpired
	}

	cookieToken, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return domain.TokenPair{}, "", domain.Account{}, fmt.Errorf("generate cookie token: %w", err)
	}

	if err := s.Store.TransportSessions().Activate(
		ctx, transport.ID, cryptox.FingerprintToken(cookieToken), now.Add(s.Tokens.refreshTTL()),
	); err != nil {
		return domain.TokenPair{}, "", domain.Account{}, fmt.Errorf("activate session: %w", err)
	}

	pair, err := s.Tokens.Issue(ctx, account, transport.ID)
	if err != nil {
		return domain.TokenPair{}, "", domain.Account{}, err
	}

	if err := s.Sessions.Touch(ctx, account.ID); err != nil {
		slogx.FromContext(ctx).Warn("session touch failed", "handle", handle, "err", err)
	}

	return pair, cookieToken, account, nil
}

// ForceLogout evicts whatever session currently holds the account's slot and
// immediately re-enters the pipeline for the caller, ending at OTP issuance.
// Credentials are re-verified; this is not an authenticated endpoint.
func (s *LoginService) ForceLogout(ctx context.Context, handle, password string, info domain.SessionInfo) (domain.LoginOutcome, error) {
	account, err := s.Authenticate(ctx, handle, password)
	if err != nil {
		return domain.LoginOutcome{}, err
	}

	if account.TempPassword {
		return domain.LoginOutcome{
			Status: domain.StatusTempPasswordReset,
			Handle: account.Handle,
		}, nil
	}

	info.SessionID = idx.New().String()

	if err := s.Sessions.ForceReplace(ctx, account.ID, info); err != nil {
		return domain.LoginOutcome{}, err
	}

	s.Audit.Record(account.Handle, domain.AuditForceLogout, "previous session evicted", info.IP)

	now := s.now()
	if err := s.Store.TransportSessions().Create(ctx, domain.TransportSession{
		ID:        info.SessionID,
		AccountID: account.ID,
		Stage:     domain.SessionStagePending,
		CreatedAt: now,
		ExpiresAt: now.Add(PendingLoginTTL),
	}); err != nil {
		return domain.LoginOutcome{}, fmt.Errorf("create pending session: %w", err)
	}

	if _, err := s.OTP.Generate(ctx, account); err != nil {
		return domain.LoginOutcome{}, err
	}

	return domain.LoginOutcome{
		Status: domain.StatusLogoutSuccess,
		Handle: account.Handle,
	}, nil
}

// Logout releases the account's session slot and invalidates its transport
// session and refresh tokens.
func (s *LoginService) Logout(ctx context.Context, accountID, handle, ip string) error {
	if err := s.Sessions.Clear(ctx, accountID); err != nil {
		return err
	}
	s.Audit.Record(handle, domain.AuditLogout, "session released", ip)
	return nil
}

// CompleteReset exchanges a temporary password for a permanent one and then
// re-enters the login pipeline at the session check, so a successful reset
// flows straight into OTP issuance (or a conflict).
func (s *LoginService) CompleteReset(ctx context.Context, handle, tempPassword, newPassword string, info domain.SessionInfo) (domain.LoginOutcome, error) {
	account, err := s.Authenticate(ctx, handle, tempPassword)
	if err != nil {
		return domain.LoginOutcome{}, err
	}

	if !account.TempPassword {
		return domain.LoginOutcome{}, ErrResetNotRequired
	}

	if err := ValidatePassword(newPassword); err != nil {
		return domain.LoginOutcome{}, err
	}

	hash, err := cryptox.HashPassword(newPassword)
	if err != nil {
		return domain.LoginOutcome{}, fmt.Errorf("hash password: %w", err)
	}

	if err := s.Store.Accounts().UpdatePasswordHash(ctx, account.ID, hash); err != nil {
		return domain.LoginOutcome{}, fmt.Errorf("update password: %w", err)
	}

	s.Audit.Record(account.Handle, domain.AuditPasswordReset, "temporary password replaced", info.IP)

	account.TempPassword = false
	info.SessionID = idx.New().String()

	return s.enterSessionCheck(ctx, account, info)
}
