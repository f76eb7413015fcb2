package messaging

import (
	"context"
	"log/slog"

	"github.com/infoservices/clara/internal/whatsapp"
)

// WhatsAppService implements the Service interface over the whatsmeow client.
type WhatsAppService struct {
	client whatsapp.WhatsAppSender
}

// NewWhatsAppService creates a WhatsApp delivery service. The client may be
// a real whatsmeow-backed client or a mock.
func NewWhatsAppService(client whatsapp.WhatsAppSender) *WhatsAppService {
	return &WhatsAppService{client: client}
}

// ValidateAndCanonicalizeRecipient reduces a phone number to digits; the JID
// suffix is added by the underlying client.
func (s *WhatsAppService) ValidateAndCanonicalizeRecipient(recipient string) (string, error) {
	canonical, err := canonicalizePhone(recipient)
	if err != nil {
		return "", err
	}
	if recipient != canonical {
		slog.Debug("WhatsAppService canonicalized recipient", "original", recipient, "canonical", canonical)
	}
	return canonical, nil
}

// SendMessage sends a WhatsApp message.
func (s *WhatsAppService) SendMessage(ctx context.Context, to string, body string) error {
	canonicalTo, err := s.ValidateAndCanonicalizeRecipient(to)
	if err != nil {
		slog.Error("WhatsAppService SendMessage validation error", "error", err, "to", to)
		return err
	}
	return s.client.SendMessage(ctx, canonicalTo, body)
}

// SendChat adapts the service to the OTP chat fallback interface.
func (s *WhatsAppService) SendChat(ctx context.Context, to string, body string) error {
	return s.SendMessage(ctx, to, body)
}
