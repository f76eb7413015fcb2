package messaging

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/infoservices/clara/internal/models"
)

// HostResolver resolves the spoken host name to a directory record.
type HostResolver interface {
	LookupByName(name string) (*models.EmployeeRecord, error)
}

// HostNotifier tells a host employee their visitor has arrived. Channels are
// tried in order chat, SMS, email; the first accepted delivery wins.
type HostNotifier struct {
	resolver HostResolver
	chat     *WhatsAppService
	sms      *SMSService
	email    *EmailService
}

// NotifierOption configures a HostNotifier channel.
type NotifierOption func(*HostNotifier)

// WithNotifierChat adds a WhatsApp channel.
func WithNotifierChat(s *WhatsAppService) NotifierOption {
	return func(n *HostNotifier) { n.chat = s }
}

// WithNotifierSMS adds an SMS channel.
func WithNotifierSMS(s *SMSService) NotifierOption {
	return func(n *HostNotifier) { n.sms = s }
}

// WithNotifierEmail adds an email channel.
func WithNotifierEmail(s *EmailService) NotifierOption {
	return func(n *HostNotifier) { n.email = s }
}

// NewHostNotifier creates a notifier over the given directory resolver.
func NewHostNotifier(resolver HostResolver, opts ...NotifierOption) *HostNotifier {
	n := &HostNotifier{resolver: resolver}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// NotifyHost delivers an arrival notice for the visitor entry.
func (n *HostNotifier) NotifyHost(ctx context.Context, entry models.VisitorEntry) error {
	rec, err := n.resolver.LookupByName(entry.HostEmployee)
	if err != nil {
		return fmt.Errorf("host %q could not be resolved: %w", entry.HostEmployee, err)
	}

	body := fmt.Sprintf("Visitor %s is waiting for you at reception. Purpose: %s. Contact: %s.",
		entry.Name, entry.Purpose, entry.Phone)

	var lastErr error
	if n.chat != nil && rec.Phone != "" {
		if err := n.chat.SendMessage(ctx, rec.Phone, body); err == nil {
			slog.Info("HostNotifier delivered via chat", "host", rec.EmployeeID)
			return nil
		} else {
			slog.Warn("HostNotifier chat delivery failed, trying SMS", "host", rec.EmployeeID, "error", err)
			lastErr = err
		}
	}
	if n.sms != nil && rec.Phone != "" {
		if err := n.sms.SendMessage(ctx, rec.Phone, body); err == nil {
			slog.Info("HostNotifier delivered via SMS", "host", rec.EmployeeID)
			return nil
		} else {
			slog.Warn("HostNotifier SMS delivery failed, trying email", "host", rec.EmployeeID, "error", err)
			lastErr = err
		}
	}
	if n.email != nil && rec.Email != "" {
		if err := n.email.SendEmail(ctx, rec.Email, "Your visitor has arrived", body); err == nil {
			slog.Info("HostNotifier delivered via email", "host", rec.EmployeeID)
			return nil
		} else {
			slog.Warn("HostNotifier email delivery failed", "host", rec.EmployeeID, "error", err)
			lastErr = err
		}
	}

	if lastErr != nil {
		return fmt.Errorf("%w: %v", models.ErrNoDeliveryChannel, lastErr)
	}
	return models.ErrNoDeliveryChannel
}
