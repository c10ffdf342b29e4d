// Package notify sends operator e-mails about failed set jobs and runs.
package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"go.uber.org/zap"
)

// Notifier delivers one message to the operators.
type Notifier interface {
	Notify(ctx context.Context, subject, body string) error
}

// SMTPConfig holds the mail server and recipients.
type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
	To       []string
}

type sendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

type smtpNotifier struct {
	cfg      SMTPConfig
	sendMail sendMailFunc
}

// NewSMTPNotifier creates a notifier that delivers through an SMTP relay.
func NewSMTPNotifier(cfg SMTPConfig) (Notifier, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("notify: smtp host not set")
	}
	if len(cfg.To) == 0 {
		return nil, fmt.Errorf("notify: no recipients")
	}
	if cfg.Port == "" {
		cfg.Port = "25"
	}
	if cfg.From == "" {
		cfg.From = cfg.Username
	}
	return &smtpNotifier{cfg: cfg, sendMail: smtp.SendMail}, nil
}

func (n *smtpNotifier) Notify(_ context.Context, subject, body string) error {
	addr := fmt.Sprintf("%s:%s", n.cfg.Host, n.cfg.Port)
	var auth smtp.Auth
	if n.cfg.Username != "" {
		auth = smtp.PlainAuth("", n.cfg.Username, n.cfg.Password, n.cfg.Host)
	}

	msg := []byte(
		"From: " + n.cfg.From + "\r\n" +
			"To: " + strings.Join(n.cfg.To, ", ") + "\r\n" +
			"Subject: " + subject + "\r\n" +
			"MIME-Version: 1.0\r\n" +
			"Content-Type: text/plain; charset=UTF-8\r\n" +
			"\r\n" +
			body,
	)

	if err := n.sendMail(addr, auth, n.cfg.From, n.cfg.To, msg); err != nil {
		return fmt.Errorf("notify: smtp send failed: %w", err)
	}
	return nil
}

type logNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier is used when no mail relay is configured; messages are logged only.
func NewLogNotifier(logger *zap.Logger) Notifier {
	return &logNotifier{logger: logger}
}

func (n *logNotifier) Notify(_ context.Context, subject, body string) error {
	n.logger.Warn("Notification (mail disabled)",
		zap.String("subject", subject),
		zap.String("body", body),
	)
	return nil
}
