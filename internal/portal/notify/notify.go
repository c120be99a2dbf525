// Package notify delivers out-of-band messages (OTP codes, temporary
// credentials). Delivery is best-effort from the core's perspective: a failed
// send is logged and audited but never fails the operation that triggered it,
// since the artifact (code or password) stays valid for manual delivery.
package notify

import (
	"context"
	"log/slog"
)

// Mailer sends a message to an account's email address.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// LogMailer writes messages to the log instead of delivering them. Used in
// dev and tests where no SMTP relay exists.
type LogMailer struct {
	Logger *slog.Logger
}

func (m *LogMailer) Send(ctx context.Context, to, subject, body string) error {
	logger := m.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("mail (log only)", "to", to, "subject", subject, "body", body)
	return nil
}
