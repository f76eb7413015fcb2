package messaging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/mailersend/mailersend-go"
)

// EmailService implements the Service interface over MailerSend.
type EmailService struct {
	client *mailersend.Mailersend
	from   mailersend.From
}

// EmailOpts holds configuration options for the email service.
type EmailOpts struct {
	APIKey    string
	FromName  string
	FromEmail string
}

// EmailOption defines a configuration option for the email service.
type EmailOption func(*EmailOpts)

// WithAPIKey sets the MailerSend API key.
func WithAPIKey(key string) EmailOption {
	return func(o *EmailOpts) { o.APIKey = key }
}

// WithFrom sets the sender identity.
func WithFrom(name, email string) EmailOption {
	return func(o *EmailOpts) {
		o.FromName = name
		o.FromEmail = email
	}
}

// NewEmailService creates a MailerSend-backed email service.
func NewEmailService(opts ...EmailOption) (*EmailService, error) {
	var cfg EmailOpts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("mailersend API key must be provided")
	}
	if cfg.FromEmail == "" {
		return nil, fmt.Errorf("from email must be provided")
	}
	slog.Debug("EmailService initialized", "fromEmail", cfg.FromEmail)
	return &EmailService{
		client: mailersend.NewMailersend(cfg.APIKey),
		from:   mailersend.From{Name: cfg.FromName, Email: cfg.FromEmail},
	}, nil
}

// ValidateAndCanonicalizeRecipient lowercases and validates an email address.
func (s *EmailService) ValidateAndCanonicalizeRecipient(recipient string) (string, error) {
	return canonicalizeEmail(recipient)
}

// SendMessage sends a plain-text email with a generic subject.
func (s *EmailService) SendMessage(ctx context.Context, to string, body string) error {
	return s.SendEmail(ctx, to, "Message from the front desk", body)
}

// SendEmail sends a plain-text email. Satisfies the OTP delivery interface.
func (s *EmailService) SendEmail(ctx context.Context, to, subject, body string) error {
	canonicalTo, err := s.ValidateAndCanonicalizeRecipient(to)
	if err != nil {
		slog.Error("EmailService SendEmail validation error", "error", err, "to", to)
		return err
	}

	msg := s.client.Email.NewMessage()
	msg.SetFrom(s.from)
	msg.SetRecipients([]mailersend.Recipient{{Email: canonicalTo}})
	msg.SetSubject(subject)
	msg.SetText(body)

	res, err := s.client.Email.Send(ctx, msg)
	if err != nil {
		slog.Error("EmailService SendEmail failed", "error", err, "to", canonicalTo)
		return fmt.Errorf("failed to send email to %s: %w", canonicalTo, err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		raw, _ := io.ReadAll(res.Body)
		slog.Error("EmailService SendEmail rejected", "status", res.StatusCode, "to", canonicalTo)
		return fmt.Errorf("mailersend error: status=%d body=%s", res.StatusCode, strings.TrimSpace(string(raw)))
	}

	slog.Debug("EmailService SendEmail succeeded", "to", canonicalTo, "messageID", res.Header.Get("X-Message-Id"))
	return nil
}
