package messaging

import (
	"context"
	"log/slog"

	"github.com/infoservices/clara/internal/twiliosms"
)

// SMSService implements the Service interface over the Twilio SMS client.
type SMSService struct {
	client twiliosms.SMSSender
}

// NewSMSService creates an SMS delivery service. The client may be a real
// Twilio client or a mock.
func NewSMSService(client twiliosms.SMSSender) *SMSService {
	return &SMSService{client: client}
}

// ValidateAndCanonicalizeRecipient reduces a phone number to digits.
func (s *SMSService) ValidateAndCanonicalizeRecipient(recipient string) (string, error) {
	canonical, err := canonicalizePhone(recipient)
	if err != nil {
		return "", err
	}
	if recipient != canonical {
		slog.Debug("SMSService canonicalized recipient", "original", recipient, "canonical", canonical)
	}
	return canonical, nil
}

// SendMessage sends a text message via Twilio.
func (s *SMSService) SendMessage(ctx context.Context, to string, body string) error {
	canonicalTo, err := s.ValidateAndCanonicalizeRecipient(to)
	if err != nil {
		slog.Error("SMSService SendMessage validation error", "error", err, "to", to)
		return err
	}
	return s.client.SendSMS(ctx, "+"+canonicalTo, body)
}

// SendSMS adapts the service to the OTP delivery interface.
func (s *SMSService) SendSMS(ctx context.Context, to string, body string) error {
	return s.SendMessage(ctx, to, body)
}
