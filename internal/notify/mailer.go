package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"go.uber.org/zap"

	"github.com/megazord/team-search/internal/config"
)

// Mailer sends a single email.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// NewMailer picks an SMTP-backed mailer when an address is configured
// and a log-only mailer otherwise, so local development works without a
// mail server.
func NewMailer(cfg config.NotificationConfig, logger *zap.Logger) Mailer {
	if cfg.SMTPAddr == "" {
		logger.Warn("NOTIFY_SMTP_ADDR not provided; emails will only be logged")
		return &logMailer{logger: logger}
	}
	return &smtpMailer{cfg: cfg}
}

type smtpMailer struct {
	cfg config.NotificationConfig
}

func (m *smtpMailer) Send(_ context.Context, to, subject, body string) error {
	var auth smtp.Auth
	if m.cfg.SMTPUser != "" {
		host := m.cfg.SMTPAddr
		if i := strings.IndexByte(host, ':'); i >= 0 {
			host = host[:i]
		}
		auth = smtp.PlainAuth("", m.cfg.SMTPUser, m.cfg.SMTPPassword, host)
	}

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=\"utf-8\"\r\n\r\n%s",
		m.cfg.EmailFrom, to, subject, body)

	return smtp.SendMail(m.cfg.SMTPAddr, auth, m.cfg.EmailFrom, []string{to}, []byte(msg))
}

type logMailer struct {
	logger *zap.Logger
}

func (m *logMailer) Send(_ context.Context, to, subject, _ string) error {
	m.logger.Info("email send skipped (no SMTP configured)",
		zap.String("to", to),
		zap.String("subject", subject))
	return nil
}
