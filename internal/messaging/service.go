// Package messaging provides pluggable delivery channels for Clara.
//
// Three channels exist: Twilio SMS, WhatsApp, and MailerSend email. The flow
// and OTP layers talk to the narrow Service interface; each implementation
// owns its recipient validation rules.
package messaging

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrServiceStopped is returned when a send is attempted on a stopped service.
var ErrServiceStopped = errors.New("messaging service stopped")

// phoneNumberRegex strips everything that is not a digit.
var phoneNumberRegex = regexp.MustCompile(`[^0-9]`)

// Service defines a pluggable message delivery abstraction.
type Service interface {
	// ValidateAndCanonicalizeRecipient validates and canonicalizes a
	// recipient identifier. Each service implements its own rules.
	ValidateAndCanonicalizeRecipient(recipient string) (string, error)

	// SendMessage sends a message to a recipient.
	SendMessage(ctx context.Context, to string, body string) error
}

// canonicalizePhone validates a phone-like recipient and reduces it to
// digits. At least 6 digits are required.
func canonicalizePhone(recipient string) (string, error) {
	if recipient == "" {
		return "", fmt.Errorf("recipient cannot be empty")
	}
	canonical := phoneNumberRegex.ReplaceAllString(recipient, "")
	if canonical == "" {
		return "", fmt.Errorf("invalid phone number: no digits found in recipient %q", recipient)
	}
	if len(canonical) < 6 {
		return "", fmt.Errorf("invalid phone number: %q is too short (minimum 6 digits required)", canonical)
	}
	return canonical, nil
}

// canonicalizeEmail validates an email-like recipient.
func canonicalizeEmail(recipient string) (string, error) {
	canonical := strings.ToLower(strings.TrimSpace(recipient))
	if canonical == "" {
		return "", fmt.Errorf("recipient cannot be empty")
	}
	at := strings.Index(canonical, "@")
	if at <= 0 || at == len(canonical)-1 || strings.Count(canonical, "@") != 1 {
		return "", fmt.Errorf("invalid email address %q", recipient)
	}
	return canonical, nil
}
