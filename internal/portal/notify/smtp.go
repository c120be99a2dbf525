package notify

import (
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"
)

// SMTPMailer delivers mail over a plain SMTP relay. The dial carries a hard
// timeout so a dead relay can't stall a login request.
type SMTPMailer struct {
	Addr        string // host:port
	From        string
	DialTimeout time.Duration
}

func (m *SMTPMailer) Send(ctx context.Context, to, subject, body string) error {
	timeout := m.DialTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if deadline, ok := ctx.Deadline(); ok {
		if until := time.Until(deadline); until < timeout {
			timeout = until
		}
	}

	conn, err := net.DialTimeout("tcp", m.Addr, timeout)
	if err != nil {
		return fmt.Errorf("notify: dial smtp relay: %w", err)
	}
	// The write deadline bounds the whole exchange, not just the dial.
	_ = conn.SetDeadline(time.Now().Add(timeout))

	host, _, err := net.SplitHostPort(m.Addr)
	if err != nil {
		host = m.Addr
	}

	client, err := smtp.NewClient(conn, host)
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("notify: smtp handshake: %w", err)
	}
	defer client.Close()

	if err := client.Mail(m.From); err != nil {
		return fmt.Errorf("notify: MAIL FROM: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("notify: RCPT TO: %w", err)
	}

	wc, err := client.Data()
	if err != nil {
		return fmt.Errorf("notify: DATA: %w", err)
	}

	msg := strings.Join([]string{
		"From: " + m.From,
		"To: " + to,
		"Subject: " + subject,
		"",
		body,
	}, "\r\n")

	if _, err := wc.Write([]byte(msg)); err != nil {
		_ = wc.Close()
		return fmt.Errorf("notify: write body: %w", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("notify: close body: %w", err)
	}

	return client.Quit()
}
