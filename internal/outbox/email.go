// Launchpad - Marketing Site and Admin Dashboard Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

package outbox

import (
	"context"
	"crypto/tls"
	"fmt"
	"mime"
	"net"
	"net/mail"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/launchpad/internal/config"
	"github.com/tomtom215/launchpad/internal/logging"
)

// EmailChannel delivers messages over SMTP with optional STARTTLS.
type EmailChannel struct {
	cfg     config.EmailConfig
	timeout time.Duration
	dial    func(ctx context.Context, network, addr string) (net.Conn, error)
}

// NewEmailChannel returns an SMTP sender for cfg.
func NewEmailChannel(cfg config.EmailConfig) *EmailChannel {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	d := &net.Dialer{Timeout: timeout}
	return &EmailChannel{cfg: cfg, timeout: timeout, dial: d.DialContext}
}

// Send implements Sender.
func (c *EmailChannel) Send(ctx context.Context, msg *Message) error {
	if _, err := mail.ParseAddress(msg.To); err != nil {
		return &SendError{Code: ErrorCodeInvalidRecipient, Err: err}
	}
	if c.cfg.SMTPHost == "" || c.cfg.From == "" {
		return &SendError{Code: ErrorCodeInvalidConfig, Err: fmt.Errorf("smtp host and from address are required")}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.sendSMTP(ctx, msg.To, c.buildMessage(msg)); err != nil {
		return classifySMTPError(err)
	}
	logging.Ctx(ctx).Debug().
		Str("outbox_id", msg.ID).
		Str("to", logging.SanitizeEmail(msg.To)).
		Msg("Email delivered")
	return nil
}

// buildMessage renders headers and a text, HTML or multipart/alternative body.
func (c *EmailChannel) buildMessage(msg *Message) string {
	var b strings.Builder

	fromName := c.cfg.FromName
	if fromName == "" {
		fromName = "Launchpad"
	}
	from := mail.Address{Name: fromName, Address: c.cfg.From}

	b.WriteString("From: " + from.String() + "\r\n")
	b.WriteString("To: " + msg.To + "\r\n")
	b.WriteString("Subject: " + mime.QEncoding.Encode("utf-8", msg.Subject) + "\r\n")
	b.WriteString("Date: " + time.Now().UTC().Format(time.RFC1123Z) + "\r\n")
	b.WriteString("Message-ID: <" + uuid.NewString() + "@" + domainOf(c.cfg.From) + ">\r\n")
	if msg.ID != "" {
		b.WriteString("X-Launchpad-Outbox-ID: " + msg.ID + "\r\n")
	}
	b.WriteString("MIME-Version: 1.0\r\n")

	hasHTML := msg.HTMLBody != ""
	hasText := msg.TextBody != ""

	switch {
	case hasHTML && hasText:
		boundary := "lp_" + strings.ReplaceAll(uuid.NewString(), "-", "")
		b.WriteString("Content-Type: multipart/alternative; boundary=\"" + boundary + "\"\r\n\r\n")

		b.WriteString("--" + boundary + "\r\n")
		b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n\r\n")
		b.WriteString(msg.TextBody + "\r\n")

		b.WriteString("--" + boundary + "\r\n")
		b.WriteString("Content-Type: text/html; charset=UTF-8\r\n\r\n")
		b.WriteString(msg.HTMLBody + "\r\n")

		b.WriteString("--" + boundary + "--\r\n")
	case hasHTML:
		b.WriteString("Content-Type: text/html; charset=UTF-8\r\n\r\n")
		b.WriteString(msg.HTMLBody)
	default:
		b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n\r\n")
		b.WriteString(msg.TextBody)
	}
	return b.String()
}

func (c *EmailChannel) sendSMTP(ctx context.Context, to, body string) error {
	addr := net.JoinHostPort(c.cfg.SMTPHost, strconv.Itoa(c.cfg.SMTPPort))

	conn, err := c.dial(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	defer func() { _ = conn.Close() }() //nolint:errcheck // best effort
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	client, err := smtp.NewClient(conn, c.cfg.SMTPHost)
	if err != nil {
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}
	defer func() { _ = client.Close() }() //nolint:errcheck // best effort

	if c.cfg.UseTLS {
		if ok, _ := client.Extension("STARTTLS"); ok {
			if err := client.StartTLS(&tls.Config{ServerName: c.cfg.SMTPHost, MinVersion: tls.VersionTLS12}); err != nil {
				return fmt.Errorf("failed to start TLS: %w", err)
			}
		} else {
			return fmt.Errorf("server %s does not offer STARTTLS", c.cfg.SMTPHost)
		}
	}

	if c.cfg.Username != "" && c.cfg.Password != "" {
		auth := smtp.PlainAuth("", c.cfg.Username, c.cfg.Password, c.cfg.SMTPHost)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("SMTP authentication failed: %w", err)
		}
	}

	if err := client.Mail(c.cfg.From); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("failed to set recipient: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to start message: %w", err)
	}
	if _, err := w.Write([]byte(body)); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close message: %w", err)
	}

	// The message is accepted once DATA closes; a failed QUIT is ignored.
	_ = client.Quit()
	return nil
}

func domainOf(addr string) string {
	if i := strings.LastIndex(addr, "@"); i >= 0 && i < len(addr)-1 {
		return addr[i+1:]
	}
	return "localhost"
}
