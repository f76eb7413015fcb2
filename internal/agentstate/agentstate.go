// Package agentstate implements the wake/sleep gate in front of the
// reception flow.
//
// The receptionist starts asleep and answers only its wake phrase. Every
// utterance passes through ProcessInput, which yields exactly one of three
// outcomes: no response at all, a canned gate response, or pass-through to
// the flow and dialogue layers. The manager also owns the preferred language
// and persists a snapshot after every mutation so other processes can read
// the current state.
package agentstate

import (
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/infoservices/clara/internal/i18n"
	"github.com/infoservices/clara/internal/models"
	"github.com/infoservices/clara/internal/store"
)

// DefaultAutoSleepTimeout is how long the gate stays awake without input.
const DefaultAutoSleepTimeout = 180 * time.Second

// Decision is the gate's verdict on one utterance. Respond=false means stay
// silent. Respond=true with an empty Reply means the utterance passes
// through to the flow.
type Decision struct {
	Respond  bool
	Reply    string
	Language string
}

// PassThrough reports whether the utterance should reach the flow.
func (d Decision) PassThrough() bool {
	return d.Respond && d.Reply == ""
}

// Manager owns the wake/sleep state, the preferred language, and the shared
// verification snapshot.
type Manager struct {
	mu    sync.Mutex
	store store.Store
	now   func() time.Time

	isAwake          bool
	isVerified       bool
	verifiedUserName string
	verifiedUserID   string
	lastActivity     time.Time
	language         string

	autoSleepTimeout time.Duration
}

// Opts holds configuration for the agent state manager.
type Opts struct {
	AutoSleepTimeout time.Duration
	Clock            func() time.Time
}

// Option configures manager construction.
type Option func(*Opts)

// WithAutoSleepTimeout overrides the idle timeout before auto-sleep.
func WithAutoSleepTimeout(d time.Duration) Option {
	return func(o *Opts) { o.AutoSleepTimeout = d }
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(o *Opts) { o.Clock = now }
}

// NewManager creates the gate, restoring any persisted snapshot. The gate
// starts asleep when no snapshot exists.
func NewManager(st store.Store, opts ...Option) *Manager {
	cfg := Opts{AutoSleepTimeout: DefaultAutoSleepTimeout, Clock: time.Now}
	for _, opt := range opts {
		opt(&cfg)
	}
	m := &Manager{
		store:            st,
		now:              cfg.Clock,
		language:         i18n.DefaultLanguage,
		autoSleepTimeout: cfg.AutoSleepTimeout,
	}
	m.lastActivity = m.now()
	m.Refresh()
	return m
}

// Refresh reloads the persisted snapshot, discarding in-memory state. Other
// processes may have mutated the store since the last call.
func (m *Manager) Refresh() {
	if m.store == nil {
		return
	}
	snap, err := m.store.GetAgentSnapshot()
	if err != nil {
		slog.Warn("AgentState.Refresh: snapshot load failed", "error", err)
		return
	}
	if snap == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.isAwake = snap.IsAwake
	m.isVerified = snap.IsVerified
	m.verifiedUserName = snap.VerifiedUserName
	m.verifiedUserID = snap.VerifiedUserID
	if !snap.LastActivity.IsZero() {
		m.lastActivity = snap.LastActivity
	}
	m.language = i18n.ResolveLanguage(snap.PreferredLanguage)
	slog.Debug("AgentState.Refresh loaded snapshot", "isAwake", m.isAwake, "isVerified", m.isVerified, "language", m.language)
}

// persistLocked writes the snapshot. Callers hold m.mu. Failures are logged
// and swallowed; the in-memory state stays authoritative for this process.
func (m *Manager) persistLocked() {
	if m.store == nil {
		return
	}
	snap := models.AgentSnapshot{
		IsAwake:           m.isAwake,
		IsVerified:        m.isVerified,
		VerifiedUserName:  m.verifiedUserName,
		VerifiedUserID:    m.verifiedUserID,
		LastActivity:      m.lastActivity,
		PreferredLanguage: m.language,
		UpdatedAt:         m.now(),
	}
	if err := m.store.SaveAgentSnapshot(snap); err != nil {
		slog.Warn("AgentState: snapshot save failed", "error", err)
	}
}

// ProcessInput gates one utterance.
//
// The language-switch check runs before the sleep gate, so an explicit
// "speak tamil" is honored even while asleep. After that the order is:
// language inference, auto-sleep check, sleep gate, then sleep/wake command
// handling for an awake agent. Anything left passes through.
func (m *Manager) ProcessInput(input string) Decision {
	m.mu.Lock()
	defer m.mu.Unlock()

	if switchLang := detectLanguageSwitchRequest(input); switchLang != "" {
		m.language = switchLang
		m.lastActivity = m.now()
		m.persistLocked()
		slog.Debug("AgentState.ProcessInput: language switch", "language", switchLang)
		return Decision{Respond: true, Reply: i18n.Message("language_support_affirm", switchLang), Language: switchLang}
	}

	if inferred := m.inferLanguageLocked(input); inferred != m.language {
		slog.Debug("AgentState.ProcessInput: language inferred", "from", m.language, "to", inferred)
		m.language = inferred
		m.persistLocked()
	}
	lang := m.language

	normalized := i18n.NormalizeTranscript(strings.TrimSpace(input), lang)
	wakePhrases := i18n.WakePhrases(lang)
	sleepPhrases := i18n.SleepPhrases(lang)

	if m.isAwake && m.now().Sub(m.lastActivity) > m.autoSleepTimeout {
		m.isAwake = false
		m.persistLocked()
		slog.Info("AgentState.ProcessInput: auto-sleep after inactivity")
		return Decision{Respond: true, Reply: i18n.Message("auto_sleep_notice", lang), Language: lang}
	}

	if !m.isAwake {
		if i18n.AnyPhraseIn(normalized, wakePhrases) {
			m.isAwake = true
			m.lastActivity = m.now()
			m.persistLocked()
			slog.Info("AgentState.ProcessInput: woke up", "language", lang)
			return Decision{Respond: true, Reply: i18n.Message("wake_ack", lang), Language: lang}
		}
		// Asleep: everything except the wake phrase is ignored outright.
		return Decision{Respond: false, Language: lang}
	}

	m.lastActivity = m.now()
	m.persistLocked()

	if i18n.AnyPhraseIn(normalized, sleepPhrases) {
		m.isAwake = false
		m.persistLocked()
		slog.Info("AgentState.ProcessInput: going to sleep")
		return Decision{Respond: true, Reply: i18n.Message("sleep_ack", lang), Language: lang}
	}
	if i18n.AnyPhraseIn(normalized, wakePhrases) {
		return Decision{Respond: true, Reply: i18n.Message("already_awake", lang), Language: lang}
	}

	return Decision{Respond: true, Language: lang}
}

// inferLanguageLocked guesses the utterance language. Script detection wins;
// otherwise a wake or sleep phrase in any supported language identifies it.
// Falls back to the current preference.
func (m *Manager) inferLanguageLocked(input string) string {
	text := strings.TrimSpace(input)
	if lang := i18n.DetectFromText(text); lang != "" && i18n.IsSupported(lang) {
		if hasScript(text) {
			return lang
		}
	}
	lowered := strings.ToLower(text)
	for _, candidate := range i18n.SupportedLanguages() {
		normalized := i18n.NormalizeTranscript(lowered, candidate)
		if i18n.AnyPhraseIn(normalized, i18n.WakePhrases(candidate)) ||
			i18n.AnyPhraseIn(normalized, i18n.SleepPhrases(candidate)) {
			return candidate
		}
	}
	return m.language
}

// hasScript reports whether the text carries a non-Latin script signal.
func hasScript(text string) bool {
	count := 0
	for _, r := range text {
		if (r >= 0x0900 && r <= 0x097F) || (r >= 0x0B80 && r <= 0x0BFF) || (r >= 0x0C00 && r <= 0x0C7F) {
			count++
			if count >= 2 {
				return true
			}
		}
	}
	return false
}

// languageSwitchTriggers are explicit requests to change the reply language,
// checked as lowercase substrings.
var languageSwitchTriggers = map[string][]string{
	"ta": {"talk in tamil", "speak tamil", "tamil la", "tamil lo"},
	"te": {"talk in telugu", "speak telugu", "telugu lo", "telugu please"},
	"hi": {"talk in hindi", "speak hindi", "hindi mein", "hindi please"},
	"en": {"talk in english", "speak english", "english please"},
}

// detectLanguageSwitchRequest returns the requested language code, or "".
// Longer free-form requests ("could you do hindi please") resolve through
// keyword detection; short utterances never trigger a switch so that a bare
// "hi" greeting does not flip to Hindi.
func detectLanguageSwitchRequest(input string) string {
	lowered := strings.ToLower(input)
	for lang, triggers := range languageSwitchTriggers {
		for _, phrase := range triggers {
			if strings.Contains(lowered, phrase) {
				return lang
			}
		}
	}
	stripped := strings.TrimSpace(input)
	if len(stripped) >= 4 && (strings.Contains(stripped, " ") || strings.Contains(stripped, "-")) {
		if detected := i18n.ResolveLanguage(strings.ToLower(stripped)); detected != i18n.DefaultLanguage {
			return detected
		}
	}
	return ""
}

// Wake forces the agent awake, for external control surfaces.
func (m *Manager) Wake() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.isAwake = true
	m.lastActivity = m.now()
	m.persistLocked()
	return i18n.Message("wake_ack", m.language)
}

// Sleep forces the agent asleep.
func (m *Manager) Sleep() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.isAwake = false
	m.persistLocked()
	return i18n.Message("sleep_ack", m.language)
}

// IsAwake reports the current gate state.
func (m *Manager) IsAwake() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.isAwake
}

// UpdateActivity refreshes the idle timer.
func (m *Manager) UpdateActivity() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastActivity = m.now()
	m.persistLocked()
}

// PreferredLanguage returns the current reply language.
func (m *Manager) PreferredLanguage() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.language
}

// SetPreferredLanguage resolves and stores a language preference.
func (m *Manager) SetPreferredLanguage(label string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.language = i18n.ResolveLanguage(label)
	m.persistLocked()
}

// SetUserVerified records a verified identity in the shared snapshot.
func (m *Manager) SetUserVerified(name, userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.isVerified = true
	m.verifiedUserName = name
	m.verifiedUserID = userID
	m.lastActivity = m.now()
	m.persistLocked()
	slog.Info("AgentState.SetUserVerified", "name", name, "userID", userID)
}

// ClearVerification drops the verified identity.
func (m *Manager) ClearVerification() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.isVerified = false
	m.verifiedUserName = ""
	m.verifiedUserID = ""
	m.persistLocked()
}

// IsVerified reports whether a verified identity is recorded.
func (m *Manager) IsVerified() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.isVerified
}

// Snapshot returns a copy of the current state.
func (m *Manager) Snapshot() models.AgentSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return models.AgentSnapshot{
		IsAwake:           m.isAwake,
		IsVerified:        m.isVerified,
		VerifiedUserName:  m.verifiedUserName,
		VerifiedUserID:    m.verifiedUserID,
		LastActivity:      m.lastActivity,
		PreferredLanguage: m.language,
		UpdatedAt:         m.now(),
	}
}

// AutoSleepIn reports how long until auto-sleep, zero when already asleep.
func (m *Manager) AutoSleepIn() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.isAwake {
		return 0
	}
	remaining := m.autoSleepTimeout - m.now().Sub(m.lastActivity)
	if remaining < 0 {
		return 0
	}
	return remaining
}
