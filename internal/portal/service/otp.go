package service

import (
	"context"
	"fmt"
	"time"

	"github.com/campusworks/portal/internal/portal/domain"
	"github.com/campusworks/portal/internal/portal/notify"
	"github.com/campusworks/portal/internal/portal/store"
	"github.com/campusworks/portal/pkg/cryptox"
	"github.com/campusworks/portal/pkg/slogx"
)

// OTPTTL is how long a generated code stays verifiable.
const OTPTTL = 180 * time.Second

// OTPService generates and verifies the emailed one-time passcodes used as
// the login second factor. One pending code per account; generating a new
// code invalidates the old one.
type OTPService struct {
	Store         store.Store
	Mailer        notify.Mailer
	Audit         *AuditService
	NotifyTimeout time.Duration

	// Now is swappable for TTL tests.
	Now func() time.Time
}

func (s *OTPService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

// Generate mints a fresh 6-digit code for the account, overwriting any prior
// code, and dispatches it to the notifier. A notifier failure is logged and
// audited but does not fail generation: the stored code stays valid and can
// be delivered out-of-band.
func (s *OTPService) Generate(ctx context.Context, account domain.Account) (string, error) {
	code, err := cryptox.GenerateOTP()
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}

	if err := s.Store.Accounts().SetOTP(ctx, account.ID, code, s.now()); err != nil {
		return "", fmt.Errorf("store otp: %w", err)
	}

	s.Audit.Record(account.Handle, domain.AuditOTPGenerated, "login second factor issued", "")

	s.dispatch(ctx, account, code)

	return code, nil
}

func (s *OTPService) dispatch(ctx context.Context, account domain.Account, code string) {
	log := slogx.FromContext(ctx)

	timeout := s.NotifyTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	notifyCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	body := fmt.Sprintf(
		"Hello %s,\n\nYour OTP is: %s\n\nIt expires in %d minutes.",
		account.Handle, code, int(OTPTTL.Minutes()),
	)

	if err := s.Mailer.Send(notifyCtx, account.Email, "Your Login OTP for Admin Portal", body); err != nil {
		// Non-fatal: the code is still valid for manual delivery.
		log.Warn("otp notification failed", "handle", account.Handle, "err", err)
		s.Audit.Record("system", domain.AuditNotifyFailed, "otp delivery to "+account.Handle, "")
	}
}

// Verify checks a candidate against the account's pending code.
//
// Returns false without mutating state when no code is pending, when the code
// is older than OTPTTL (the stale code is left in place but unusable), or on
// a mismatch (the code stays valid for retries inside the window). On a match
// the code is consumed and cannot be replayed.
func (s *OTPService) Verify(ctx context.Context, account domain.Account, candidate string) (bool, error) {
	if account.OTPCode == nil || account.OTPCreatedAt == nil {
		return false, nil
	}

	if s.now().Sub(*account.OTPCreatedAt) > OTPTTL {
		return false, nil
	}

	// Constant-time with respect to the candidate.
	if !cryptox.EqualOTP(*account.OTPCode, candidate) {
		return false, nil
	}

	if err := s.Store.Accounts().ConsumeOTP(ctx, account.ID); err != nil {
		return false, fmt.Errorf("consume otp: %w", err)
	}

	s.Audit.Record(account.Handle, domain.AuditOTPVerified, "login second factor verified", "")

	return true, nil
}
