// Package notification delivers alert messages to operators.
package notification

import (
	"fmt"
	"net/smtp"
	"strings"
	"time"

	"github.com/Tayebwa-ian/DDoS-Detection/internal/config"
)

// EmailNotifier sends HTML alert mail over SMTP. The configured "to"
// field may list several recipients separated by commas.
type EmailNotifier struct {
	cfg        config.SMTPConfig
	auth       smtp.Auth
	recipients []string
}

// NewEmailNotifier creates an EmailNotifier from the SMTP config.
func NewEmailNotifier(cfg config.SMTPConfig) *EmailNotifier {
	// PlainAuth will not send credentials until the server identifies itself as a trusted one.
	auth := smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	return &EmailNotifier{
		cfg:        cfg,
		auth:       auth,
		recipients: splitRecipients(cfg.To),
	}
}

// splitRecipients turns a comma-separated address list into clean
// entries, dropping empty fragments and surrounding whitespace.
func splitRecipients(to string) []string {
	var out []string
	for _, addr := range strings.Split(to, ",") {
		addr = strings.TrimSpace(addr)
		if addr != "" {
			out = append(out, addr)
		}
	}
	return out
}

// Send delivers one HTML email to every configured recipient.
func (n *EmailNotifier) Send(subject, body string) error {
	if len(n.recipients) == 0 {
		return fmt.Errorf("no alert recipients configured")
	}

	addr := fmt.Sprintf("%s:%d", n.cfg.Host, n.cfg.Port)
	msg := buildMessage(n.cfg.From, n.recipients, subject, body, time.Now())

	if err := smtp.SendMail(addr, n.auth, n.cfg.From, n.recipients, msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// buildMessage assembles the RFC 5322 header block and HTML body.
func buildMessage(from string, recipients []string, subject, body string, now time.Time) []byte {
	var b strings.Builder
	headers := []string{
		"From: " + from,
		"To: " + strings.Join(recipients, ", "),
		"Subject: " + subject,
		"Date: " + now.Format(time.RFC1123Z),
		"MIME-Version: 1.0",
		"Content-Type: text/html; charset=UTF-8",
	}
	for _, h := range headers {
		b.WriteString(h)
		b.WriteString("\r\n")
	}
	b.WriteString("\r\n")
	b.WriteString(body)
	return []byte(b.String())
}
