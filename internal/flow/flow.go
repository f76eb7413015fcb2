// Package flow implements the reception flow state machine.
//
// A Manager owns the session table and the single current-session pointer.
// Every mutating operation persists the whole table through the store so a
// restart resumes where the conversation left off. Collaborator failures are
// converted into localized user-facing messages; they never escape to the
// caller's dialogue loop.
package flow

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/infoservices/clara/internal/agentstate"
	"github.com/infoservices/clara/internal/i18n"
	"github.com/infoservices/clara/internal/models"
	"github.com/infoservices/clara/internal/otp"
	"github.com/infoservices/clara/internal/signal"
	"github.com/infoservices/clara/internal/store"
	"github.com/infoservices/clara/internal/util"
)

// DefaultSessionMaxAge is how long an inactive session survives before
// cleanup removes it.
const DefaultSessionMaxAge = 2 * time.Hour

// DirectoryResolver is the employee-directory surface the flow needs.
type DirectoryResolver interface {
	Lookup(employeeID string) (*models.EmployeeRecord, error)
	TodayVisit(employeeID string) *models.ManagerVisit
}

// OTPService issues and verifies one-time codes for manual verification.
type OTPService interface {
	Issue(ctx context.Context, employeeID string) (*otp.IssueResult, error)
	Verify(ctx context.Context, employeeID, code string) (*otp.VerifyResult, error)
	AttemptsLeft(employeeID string) int
}

// HostNotifier tells a host employee that their visitor has arrived.
// Notification is best-effort; failures are recorded on the session.
type HostNotifier interface {
	NotifyHost(ctx context.Context, entry models.VisitorEntry) error
}

// Manager drives reception sessions through the flow state machine.
type Manager struct {
	mu        sync.Mutex
	store     store.Store
	agent     *agentstate.Manager
	signals   *signal.Register
	directory DirectoryResolver
	otp       OTPService
	notifier  HostNotifier

	faceMatchEnabled bool
	sessionMaxAge    time.Duration
	now              func() time.Time

	doc models.FlowDocument
}

// Option configures a Manager.
type Option func(*Manager)

// WithHostNotifier sets the collaborator used to notify visitor hosts.
func WithHostNotifier(n HostNotifier) Option {
	return func(m *Manager) { m.notifier = n }
}

// WithFaceMatchEnabled toggles the face recognition path. When disabled,
// face results always degrade to manual verification.
func WithFaceMatchEnabled(enabled bool) Option {
	return func(m *Manager) { m.faceMatchEnabled = enabled }
}

// WithSessionMaxAge overrides the inactivity threshold for session cleanup.
func WithSessionMaxAge(d time.Duration) Option {
	return func(m *Manager) { m.sessionMaxAge = d }
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// NewManager restores the session table from the store and runs an initial
// cleanup pass over it.
func NewManager(st store.Store, agent *agentstate.Manager, signals *signal.Register, dir DirectoryResolver, otpSvc OTPService, opts ...Option) *Manager {
	m := &Manager{
		store:            st,
		agent:            agent,
		signals:          signals,
		directory:        dir,
		otp:              otpSvc,
		faceMatchEnabled: true,
		sessionMaxAge:    DefaultSessionMaxAge,
		now:              time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}

	doc, err := st.GetFlowDocument()
	if err != nil {
		slog.Error("FlowManager failed to load session table, starting empty", "error", err)
	}
	if doc != nil {
		m.doc = *doc
	}
	if m.doc.Sessions == nil {
		m.doc.Sessions = make(map[string]models.FlowSession)
	}

	if removed := m.cleanupLocked(); removed > 0 {
		slog.Info("FlowManager removed stale sessions on load", "removed", removed)
		m.persistLocked()
	}
	slog.Debug("FlowManager initialized", "sessions", len(m.doc.Sessions), "currentSessionID", m.doc.CurrentSessionID)
	return m
}

// lang returns the active response language.
func (m *Manager) lang() string {
	return i18n.ResolveLanguage(m.agent.PreferredLanguage())
}

// persistLocked writes the full session table through the store. Persistence
// failures are logged and swallowed; the in-memory table stays authoritative
// for the rest of the process lifetime.
func (m *Manager) persistLocked() {
	m.doc.LastUpdated = m.now()
	if err := m.store.SaveFlowDocument(m.doc); err != nil {
		slog.Error("FlowManager failed to persist session table", "error", err)
	}
}

// createSessionLocked makes a fresh Idle session and installs it as current.
func (m *Manager) createSessionLocked() models.FlowSession {
	now := m.now()
	sess := models.FlowSession{
		SessionID:    util.GenerateSessionID(),
		CurrentState: models.StateIdle,
		UserType:     models.UserTypeUnknown,
		StartTime:    now,
		LastActivity: now,
		UserData:     make(map[string]string),
	}
	m.doc.Sessions[sess.SessionID] = sess
	m.doc.CurrentSessionID = sess.SessionID
	slog.Debug("FlowManager created session", "sessionID", sess.SessionID)
	return sess
}

// currentLocked returns a copy of the current session, or nil when none.
func (m *Manager) currentLocked() *models.FlowSession {
	if m.doc.CurrentSessionID == "" {
		return nil
	}
	sess, ok := m.doc.Sessions[m.doc.CurrentSessionID]
	if !ok {
		return nil
	}
	return &sess
}

// currentOrCreateLocked never blocks an operation on a missing session.
func (m *Manager) currentOrCreateLocked() models.FlowSession {
	if sess := m.currentLocked(); sess != nil {
		return *sess
	}
	sess := m.createSessionLocked()
	return sess
}

// putLocked writes a session back into the table.
func (m *Manager) putLocked(sess models.FlowSession) {
	sess.LastActivity = m.now()
	m.doc.Sessions[sess.SessionID] = sess
}

// post emits a front-end signal; failures only affect the file mirror and
// are logged inside the register.
func (m *Manager) post(name string, payload map[string]string) {
	if m.signals == nil {
		return
	}
	if err := m.signals.Post(name, payload); err != nil {
		slog.Error("FlowManager signal post failed", "signal", name, "error", err)
	}
}

// CreateSession starts a fresh session and makes it current.
func (m *Manager) CreateSession() models.FlowSession {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess := m.createSessionLocked()
	m.persistLocked()
	return sess
}

// ProcessWakeWord starts a new session for a detected wake word and asks for
// a language. A previous session's dialogue is abandoned; its audit data
// stays in the table until cleanup.
func (m *Manager) ProcessWakeWord() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess := m.createSessionLocked()
	sess.CurrentState = models.StateLanguageSelection
	m.putLocked(sess)
	m.persistLocked()
	m.agent.UpdateActivity()

	lang := m.lang()
	slog.Info("FlowManager wake word handled", "sessionID", sess.SessionID, "lang", lang)
	return i18n.Message("wake_intro", lang) + " " + i18n.Message("language_selection_prompt", lang)
}

// Classification keyword tables. An employee/visitor keyword in any
// supported language wins immediately, even during language selection.
var employeeKeywords = []string{
	"employee", "staff", "worker", "work here",
	"ஊழியர்", "பணியாளர்",
	"ఉద్యోగి", "సిబ్బంది",
	"कर्मचारी", "स्टाफ",
}

var visitorKeywords = []string{
	"visitor", "guest", "visiting", "meeting",
	"வருகையாளர்", "விருந்தினர்",
	"అతిథి", "సందర్శకుడు",
	"आगंतुक", "अतिथि", "मेहमान",
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// ProcessUserClassification routes free text into the employee or visitor
// branch. While the session sits in LanguageSelection, non-keyword input is
// treated as a language choice; elsewhere, text naming another supported
// language switches the preference without leaving classification.
func (m *Manager) ProcessUserClassification(text string) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess := m.currentOrCreateLocked()
	if sess.CurrentState == models.StateIdle {
		sess.CurrentState = models.StateLanguageSelection
	}
	m.agent.UpdateActivity()

	lang := m.lang()
	normalized := strings.ToLower(strings.TrimSpace(text))

	switch {
	case containsAny(normalized, employeeKeywords):
		sess.UserType = models.UserTypeEmployee
		sess.CurrentState = models.StateFaceRecognition
		m.putLocked(sess)
		m.persistLocked()
		m.post(models.SignalStartFaceCapture, map[string]string{"session_id": sess.SessionID})
		slog.Info("FlowManager classified user", "sessionID", sess.SessionID, "userType", sess.UserType)
		return i18n.Message("classification_employee", lang)

	case containsAny(normalized, visitorKeywords):
		sess.UserType = models.UserTypeVisitor
		sess.CurrentState = models.StateVisitorInfoCollection
		m.putLocked(sess)
		m.persistLocked()
		m.post(models.SignalStartVisitorInfo, map[string]string{"session_id": sess.SessionID})
		slog.Info("FlowManager classified user", "sessionID", sess.SessionID, "userType", sess.UserType)
		return i18n.Message("classification_visitor", lang)
	}

	if sess.CurrentState == models.StateLanguageSelection {
		choice := i18n.DetectFromText(text)
		if !i18n.IsSupported(choice) {
			m.putLocked(sess)
			m.persistLocked()
			return i18n.Message("language_selection_retry", lang)
		}
		m.agent.SetPreferredLanguage(choice)
		sess.CurrentState = models.StateUserClassification
		m.putLocked(sess)
		m.persistLocked()
		slog.Info("FlowManager language selected", "sessionID", sess.SessionID, "lang", choice)
		return i18n.Message("language_selection_confirmed", choice)
	}

	// Free text naming another supported language mid-classification
	// re-confirms that language and stays put.
	if switched := i18n.DetectFromText(text); i18n.IsSupported(switched) && switched != lang {
		m.agent.SetPreferredLanguage(switched)
		m.putLocked(sess)
		m.persistLocked()
		slog.Info("FlowManager language switched mid-classification", "sessionID", sess.SessionID, "lang", switched)
		return i18n.Message("language_selection_confirmed", switched)
	}

	m.putLocked(sess)
	m.persistLocked()
	return i18n.Message("classification_retry", lang)
}

// EndSession discards the current session entirely and returns a closing
// message. Safe to call with no session.
func (m *Manager) EndSession() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	if sess := m.currentLocked(); sess != nil {
		delete(m.doc.Sessions, sess.SessionID)
		m.doc.CurrentSessionID = ""
		m.persistLocked()
		slog.Info("FlowManager session ended", "sessionID", sess.SessionID)
	}
	return i18n.Message("flow_end_prompt", m.lang())
}

// CleanupOldSessions removes sessions idle longer than the configured
// threshold and reports how many were dropped.
func (m *Manager) CleanupOldSessions() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := m.cleanupLocked()
	if removed > 0 {
		m.persistLocked()
	}
	return removed
}

func (m *Manager) cleanupLocked() int {
	cutoff := m.now().Add(-m.sessionMaxAge)
	removed := 0
	for id, sess := range m.doc.Sessions {
		if sess.LastActivity.Before(cutoff) {
			delete(m.doc.Sessions, id)
			if m.doc.CurrentSessionID == id {
				m.doc.CurrentSessionID = ""
			}
			removed++
		}
	}
	return removed
}

// CurrentSession returns a copy of the current session, or nil.
func (m *Manager) CurrentSession() *models.FlowSession {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.currentLocked()
}

// Status reports a debugging snapshot of the current session.
func (m *Manager) Status() models.FlowStatus {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess := m.currentLocked()
	if sess == nil {
		return models.FlowStatus{Status: "no_active_session"}
	}
	keys := make([]string, 0, len(sess.UserData))
	for k := range sess.UserData {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return models.FlowStatus{
		SessionID:          sess.SessionID,
		CurrentState:       sess.CurrentState,
		UserType:           sess.UserType,
		IsVerified:         sess.IsVerified,
		VerificationMethod: sess.VerificationMethod,
		UserDataKeys:       keys,
		LastActivity:       sess.LastActivity.Format(time.RFC3339),
		Status:             "active",
	}
}
