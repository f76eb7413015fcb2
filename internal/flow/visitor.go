package flow

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/infoservices/clara/internal/i18n"
	"github.com/infoservices/clara/internal/models"
)

// VisitorFields is one (possibly partial) visitor-info submission. Empty
// fields leave the stored values untouched.
type VisitorFields struct {
	Name    string
	Phone   string
	Purpose string
	Host    string
}

// ProcessVisitorInfo merges the submitted fields into the session and asks
// for the first one still missing, in the fixed order name, phone, purpose,
// host. Once all four are present it logs the visit and notifies the host
// exactly once, then moves on to the photo capture step.
func (m *Manager) ProcessVisitorInfo(ctx context.Context, fields VisitorFields) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess := m.currentOrCreateLocked()
	if sess.UserType == models.UserTypeUnknown {
		sess.UserType = models.UserTypeVisitor
	}
	if sess.CurrentState == models.StateIdle || sess.CurrentState == models.StateLanguageSelection || sess.CurrentState == models.StateUserClassification {
		sess.CurrentState = models.StateVisitorInfoCollection
	}
	m.agent.UpdateActivity()
	lang := m.lang()

	merge := func(key, value string) {
		if v := strings.TrimSpace(value); v != "" {
			sess.UserData[key] = v
		}
	}
	merge(models.DataVisitorName, fields.Name)
	merge(models.DataVisitorPhone, fields.Phone)
	merge(models.DataVisitorPurpose, fields.Purpose)
	merge(models.DataVisitorHost, fields.Host)

	required := []struct {
		key    string
		prompt string
	}{
		{models.DataVisitorName, "visitor_need_name"},
		{models.DataVisitorPhone, "visitor_need_phone"},
		{models.DataVisitorPurpose, "visitor_need_purpose"},
		{models.DataVisitorHost, "visitor_need_host"},
	}
	for _, r := range required {
		if sess.UserData[r.key] == "" {
			m.putLocked(sess)
			m.persistLocked()
			return i18n.Message(r.prompt, lang)
		}
	}

	if sess.UserData[models.DataVisitorLogged] != "true" {
		m.logAndNotifyLocked(ctx, &sess)
	}

	sess.CurrentState = models.StateVisitorFaceCapture
	m.putLocked(sess)
	m.persistLocked()
	m.post(models.SignalStartVisitorPhoto, map[string]string{
		"session_id": sess.SessionID,
		"host":       sess.UserData[models.DataVisitorHost],
	})
	return i18n.MessageWith("visitor_photo_prompt", lang, map[string]string{
		"host": sess.UserData[models.DataVisitorHost],
	})
}

// logAndNotifyLocked records the visit and pings the host. Best-effort: a
// failure is stored on the session, never surfaced to the visitor, and the
// attempt is not repeated within the session.
func (m *Manager) logAndNotifyLocked(ctx context.Context, sess *models.FlowSession) {
	entry := models.VisitorEntry{
		Name:         sess.UserData[models.DataVisitorName],
		Phone:        sess.UserData[models.DataVisitorPhone],
		Purpose:      sess.UserData[models.DataVisitorPurpose],
		HostEmployee: sess.UserData[models.DataVisitorHost],
		LoggedAt:     m.now(),
	}
	if err := m.store.AddVisitorEntry(entry); err != nil {
		slog.Error("FlowManager visitor log failed", "sessionID", sess.SessionID, "error", err)
		sess.UserData[models.DataVisitorLogError] = err.Error()
	}
	if m.notifier != nil {
		if err := m.notifier.NotifyHost(ctx, entry); err != nil {
			slog.Error("FlowManager host notification failed", "sessionID", sess.SessionID, "host", entry.HostEmployee, "error", err)
			sess.UserData[models.DataVisitorLogError] = err.Error()
		}
	}
	sess.UserData[models.DataVisitorLogged] = "true"
	slog.Info("FlowManager visitor logged", "sessionID", sess.SessionID, "host", entry.HostEmployee)
}

// ProcessVisitorFaceCapture acknowledges the photo step. The session moves
// to HostNotification either way; the photo no longer gates progress. The
// location is where the capture front-end stored the image, empty when it
// kept none.
func (m *Manager) ProcessVisitorFaceCapture(captured bool, location string) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess := m.currentLocked()
	if sess == nil {
		return i18n.Message("manual_no_session", m.lang())
	}
	m.agent.UpdateActivity()
	lang := m.lang()

	sess.CurrentState = models.StateHostNotification
	if captured {
		sess.UserData[models.DataFaceCaptured] = "true"
		sess.UserData[models.DataFaceCaptureTime] = m.now().Format(time.RFC3339)
		if loc := strings.TrimSpace(location); loc != "" {
			sess.UserData[models.DataPhotoLocation] = loc
		}
	}
	m.putLocked(*sess)
	m.persistLocked()

	if captured {
		return i18n.Message("visitor_photo_captured", lang)
	}
	return i18n.Message("host_notification_prompt", lang)
}
