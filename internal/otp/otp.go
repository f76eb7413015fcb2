// Package otp implements manual employee verification with one-time codes.
//
// Issue resolves the employee id against the directory, generates a
// six-digit code, and dispatches it over the first channel that works: SMS
// when a phone number is on file, then email, then chat. Verify checks the
// spoken code against the stored session and caps failed attempts.
package otp

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/infoservices/clara/internal/models"
	"github.com/infoservices/clara/internal/store"
	"github.com/infoservices/clara/internal/util"
)

// Delivery method tags recorded on the OTP session.
const (
	DeliverySMS   = "sms"
	DeliveryEmail = "email"
	DeliveryChat  = "chat"
	DeliveryDev   = "dev"
)

// EmployeeResolver looks up directory records. directory.Service satisfies
// this.
type EmployeeResolver interface {
	Lookup(employeeID string) (*models.EmployeeRecord, error)
}

// SMSSender delivers a short text message to a phone number.
type SMSSender interface {
	SendSMS(ctx context.Context, to, body string) error
}

// EmailSender delivers a plain-text email.
type EmailSender interface {
	SendEmail(ctx context.Context, to, subject, body string) error
}

// ChatSender delivers a chat message (WhatsApp) to a phone number.
type ChatSender interface {
	SendChat(ctx context.Context, to, body string) error
}

// Service owns OTP sessions and delivery dispatch.
type Service struct {
	store     store.Store
	directory EmployeeResolver
	sms       SMSSender
	email     EmailSender
	chat      ChatSender
	devMode   bool
	now       func() time.Time
	generate  func() string
}

// Opts holds configuration for the OTP service.
type Opts struct {
	SMS      SMSSender
	Email    EmailSender
	Chat     ChatSender
	DevMode  bool
	Clock    func() time.Time
	Generate func() string
}

// Option configures OTP service construction.
type Option func(*Opts)

// WithSMS wires the SMS delivery channel.
func WithSMS(s SMSSender) Option {
	return func(o *Opts) { o.SMS = s }
}

// WithEmail wires the email delivery channel.
func WithEmail(e EmailSender) Option {
	return func(o *Opts) { o.Email = e }
}

// WithChat wires the chat fallback channel.
func WithChat(c ChatSender) Option {
	return func(o *Opts) { o.Chat = c }
}

// WithDevMode skips delivery and surfaces the code directly. Local
// development only.
func WithDevMode(enabled bool) Option {
	return func(o *Opts) { o.DevMode = enabled }
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(o *Opts) { o.Clock = now }
}

// WithGenerator overrides code generation, for tests.
func WithGenerator(g func() string) Option {
	return func(o *Opts) { o.Generate = g }
}

// NewService creates the OTP service.
func NewService(st store.Store, dir EmployeeResolver, opts ...Option) *Service {
	cfg := Opts{Clock: time.Now, Generate: util.GenerateOTPCode}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Service{
		store:     st,
		directory: dir,
		sms:       cfg.SMS,
		email:     cfg.Email,
		chat:      cfg.Chat,
		devMode:   cfg.DevMode,
		now:       cfg.Clock,
		generate:  cfg.Generate,
	}
}

// IssueResult describes a dispatched (or dev-mode) code.
type IssueResult struct {
	Record *models.EmployeeRecord
	Method string
	Detail string // where the code went, e.g. the masked phone or email
	Code   string // populated only in dev mode
}

// normalizeEmail lowercases and trims an address for use as a session key.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// resolve maps an employee id to its directory record and session key.
func (s *Service) resolve(employeeID string) (*models.EmployeeRecord, string, error) {
	rec, err := s.directory.Lookup(employeeID)
	if err != nil {
		return nil, "", err
	}
	emailKey := normalizeEmail(rec.Email)
	if emailKey == "" {
		slog.Warn("OTP.resolve: employee has no email on file", "employeeID", rec.EmployeeID)
		return nil, "", models.ErrNoDeliveryChannel
	}
	return rec, emailKey, nil
}

// Issue generates a fresh code for the employee and dispatches it. Any
// previous session for the same employee is replaced, with attempts reset.
func (s *Service) Issue(ctx context.Context, employeeID string) (*IssueResult, error) {
	rec, emailKey, err := s.resolve(employeeID)
	if err != nil {
		return nil, err
	}

	code := s.generate()
	sess := models.OTPSession{
		Email:      emailKey,
		EmployeeID: rec.EmployeeID,
		Name:       rec.Name,
		Code:       code,
		IssuedAt:   s.now(),
	}

	result := &IssueResult{Record: rec}
	if s.devMode {
		result.Method = DeliveryDev
		result.Detail = "dev mode, not dispatched"
		result.Code = code
		slog.Warn("OTP.Issue: dev mode, code not dispatched", "employeeID", rec.EmployeeID, "code", code)
	} else {
		method, detail, err := s.dispatch(ctx, rec, emailKey, code)
		if err != nil {
			return nil, err
		}
		result.Method = method
		result.Detail = detail
	}

	sess.DeliveryMethod = result.Method
	sess.DeliveryDetail = result.Detail
	if err := s.store.SaveOTPSession(sess); err != nil {
		slog.Error("OTP.Issue: session save failed", "error", err, "employeeID", rec.EmployeeID)
		return nil, fmt.Errorf("failed to save OTP session: %w", err)
	}
	slog.Info("OTP.Issue dispatched", "employeeID", rec.EmployeeID, "method", result.Method, "detail", result.Detail)
	return result, nil
}

// dispatch tries SMS, then email, then chat. The first channel that accepts
// the message wins.
func (s *Service) dispatch(ctx context.Context, rec *models.EmployeeRecord, emailKey, code string) (string, string, error) {
	body := fmt.Sprintf("Hello %s, your OTP is: %s", displayName(rec), code)

	var lastErr error
	if rec.Phone != "" && s.sms != nil {
		if err := s.sms.SendSMS(ctx, rec.Phone, body); err == nil {
			return DeliverySMS, "to " + rec.Phone, nil
		} else {
			slog.Warn("OTP.dispatch: SMS failed, trying email", "error", err, "employeeID", rec.EmployeeID)
			lastErr = err
		}
	}
	if s.email != nil {
		if err := s.email.SendEmail(ctx, emailKey, "Your One-Time Password (OTP)", body); err == nil {
			return DeliveryEmail, "to " + emailKey, nil
		} else {
			slog.Warn("OTP.dispatch: email failed", "error", err, "employeeID", rec.EmployeeID)
			lastErr = err
		}
	}
	if rec.Phone != "" && s.chat != nil {
		if err := s.chat.SendChat(ctx, rec.Phone, body); err == nil {
			return DeliveryChat, "to " + rec.Phone, nil
		} else {
			slog.Warn("OTP.dispatch: chat failed", "error", err, "employeeID", rec.EmployeeID)
			lastErr = err
		}
	}

	if lastErr != nil {
		return "", "", fmt.Errorf("%w: %v", models.ErrNoDeliveryChannel, lastErr)
	}
	return "", "", models.ErrNoDeliveryChannel
}

func displayName(rec *models.EmployeeRecord) string {
	if rec.Name != "" {
		return rec.Name
	}
	return "there"
}

// VerifyResult describes a successful verification.
type VerifyResult struct {
	Record *models.EmployeeRecord
}

// Verify checks a spoken code. Returns models.ErrOTPMismatch with the
// attempt recorded, models.ErrOTPExhausted once the cap is hit (the session
// is reset so the employee must request a new code), or models.ErrNoOTPSession
// when Issue never ran.
func (s *Service) Verify(ctx context.Context, employeeID, code string) (*VerifyResult, error) {
	rec, emailKey, err := s.resolve(employeeID)
	if err != nil {
		return nil, err
	}

	sess, err := s.store.GetOTPSession(emailKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load OTP session: %w", err)
	}
	if sess == nil {
		return nil, models.ErrNoOTPSession
	}

	if sess.Attempts >= models.MaxVerificationAttempts {
		// Drop the session so a fresh Issue is required before more guesses.
		if err := s.store.DeleteOTPSession(emailKey); err != nil {
			slog.Error("OTP.Verify: session delete failed", "error", err, "employeeID", rec.EmployeeID)
		}
		slog.Warn("OTP.Verify: attempts exhausted", "employeeID", rec.EmployeeID)
		return nil, models.ErrOTPExhausted
	}

	provided := strings.TrimSpace(code)
	if sess.Code != "" && provided == sess.Code {
		// Codes are single use.
		if err := s.store.DeleteOTPSession(emailKey); err != nil {
			slog.Error("OTP.Verify: session delete failed", "error", err, "employeeID", rec.EmployeeID)
		}
		slog.Info("OTP.Verify succeeded", "employeeID", rec.EmployeeID)
		return &VerifyResult{Record: rec}, nil
	}

	sess.Attempts++
	if err := s.store.SaveOTPSession(*sess); err != nil {
		slog.Error("OTP.Verify: attempt save failed", "error", err, "employeeID", rec.EmployeeID)
	}
	remaining := models.MaxVerificationAttempts - sess.Attempts
	slog.Debug("OTP.Verify: code mismatch", "employeeID", rec.EmployeeID, "remaining", remaining)
	return nil, fmt.Errorf("%w: %d attempts left", models.ErrOTPMismatch, remaining)
}

// AttemptsLeft reports the remaining guesses for an employee's session, or
// the full allowance when no session exists.
func (s *Service) AttemptsLeft(employeeID string) int {
	_, emailKey, err := s.resolve(employeeID)
	if err != nil {
		return models.MaxVerificationAttempts
	}
	sess, err := s.store.GetOTPSession(emailKey)
	if err != nil || sess == nil {
		return models.MaxVerificationAttempts
	}
	remaining := models.MaxVerificationAttempts - sess.Attempts
	if remaining < 0 {
		return 0
	}
	return remaining
}
