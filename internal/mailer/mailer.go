// Package mailer delivers generated reports over SMTP. Delivery is
// best-effort; the workflow never depends on it.
package mailer

import (
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"
	"time"
)

// Config holds SMTP delivery settings.
type Config struct {
	Enabled  bool
	TestMode bool // send to the first recipient only
	Host     string
	Port     int
	Username string
	Password string
	From     string
	To       []string
}

// Mailer sends plain-text report mail.
type Mailer struct {
	cfg    Config
	logger *slog.Logger
	send   func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func New(cfg Config, logger *slog.Logger) *Mailer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Mailer{cfg: cfg, logger: logger, send: smtp.SendMail}
}

// SendReport mails the report body to the configured recipients. It
// returns false without error when mail is disabled or misconfigured.
func (m *Mailer) SendReport(subject, body string) (bool, error) {
	if !m.cfg.Enabled {
		return false, nil
	}
	if m.cfg.Host == "" || m.cfg.From == "" || len(m.cfg.To) == 0 {
		m.logger.Warn("mail configuration incomplete, skipping send")
		return false, nil
	}

	recipients := m.cfg.To
	if m.cfg.TestMode {
		recipients = recipients[:1]
	}
	if subject == "" {
		subject = fmt.Sprintf("Daily Trader Logic Update [%s]", time.Now().UTC().Format("2006-01-02"))
	}

	msg := buildMessage(m.cfg.From, recipients, subject, body)

	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}
	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	if err := m.send(addr, auth, m.cfg.From, recipients, msg); err != nil {
		return false, fmt.Errorf("send mail: %w", err)
	}

	m.logger.Info("report mailed", "recipients", len(recipients))
	return true, nil
}

func buildMessage(from string, to []string, subject, body string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(to, ", "))
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)
	return []byte(b.String())
}
