package flow

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"

	"github.com/infoservices/clara/internal/i18n"
	"github.com/infoservices/clara/internal/models"
)

// ProcessFaceRecognitionResult folds a face-match outcome into the current
// session. A full success (status, name, and id all present) verifies the
// session; anything less degrades to manual verification. The returned bool
// reports whether the session is now verified.
func (m *Manager) ProcessFaceRecognitionResult(result models.FaceResult) (bool, string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess := m.currentOrCreateLocked()
	if sess.CurrentState == models.StateFlowEnd {
		// Stale terminal session; the camera result belongs to a new visit.
		sess = m.createSessionLocked()
	}
	if sess.UserType != models.UserTypeEmployee {
		sess.UserType = models.UserTypeEmployee
	}
	m.agent.UpdateActivity()
	m.post(models.SignalStopFaceCapture, map[string]string{"session_id": sess.SessionID})

	lang := m.lang()

	if !m.faceMatchEnabled {
		sess.CurrentState = models.StateManualVerification
		m.putLocked(sess)
		m.persistLocked()
		slog.Info("FlowManager face match disabled, degrading to manual", "sessionID", sess.SessionID)
		return false, i18n.Message("manual_face_not_recognized", lang)
	}

	if result.Status != models.FaceMatchSuccess || result.Name == "" || result.EmployeeID == "" {
		sess.VerificationAttempts++
		sess.CurrentState = models.StateManualVerification
		m.putLocked(sess)
		m.persistLocked()
		slog.Info("FlowManager face not recognized", "sessionID", sess.SessionID, "status", result.Status, "attempts", sess.VerificationAttempts)
		return false, i18n.Message("manual_face_not_recognized", lang)
	}

	sess.UserData[models.DataEmployeeName] = result.Name
	sess.UserData[models.DataEmployeeID] = result.EmployeeID
	delete(sess.UserData, models.DataManualName)
	delete(sess.UserData, models.DataManualEmployeeID)
	delete(sess.UserData, models.DataManualEmail)
	delete(sess.UserData, models.DataManualPhone)
	sess.IsVerified = true
	sess.VerificationMethod = models.VerifiedByFace
	sess.CurrentState = models.StateEmployeeVerified
	m.putLocked(sess)
	m.persistLocked()
	m.agent.SetUserVerified(result.Name, result.EmployeeID)
	slog.Info("FlowManager face recognized", "sessionID", sess.SessionID, "employeeID", result.EmployeeID)

	if visit := m.directory.TodayVisit(result.EmployeeID); visit != nil {
		return true, i18n.MessageWith("manager_visit_welcome", lang, map[string]string{
			"name":    result.Name,
			"office":  visit.Office,
			"manager": visit.ManagerName,
		})
	}
	return true, i18n.MessageWith("face_recognition_success", lang, map[string]string{"name": result.Name})
}

// ManualVerificationRequest carries one step of the manual verification
// dialogue. Fields the user has not spoken yet are empty.
type ManualVerificationRequest struct {
	Name       string
	Email      string
	EmployeeID string
	OTP        string
}

// ProcessManualVerificationStep advances manual verification. Without an OTP
// it dispatches a fresh code; with one it verifies. Every failure keeps the
// session in ManualVerification with a next action, and the returned error
// carries the matching sentinel for callers that branch on it.
func (m *Manager) ProcessManualVerificationStep(ctx context.Context, req ManualVerificationRequest) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess := m.currentLocked()
	if sess == nil {
		return i18n.Message("manual_no_session", m.lang()), models.ErrNoActiveSession
	}
	m.agent.UpdateActivity()
	lang := m.lang()

	if name := strings.TrimSpace(req.Name); name != "" {
		sess.UserData[models.DataManualName] = name
	}
	if email := strings.TrimSpace(req.Email); email != "" {
		sess.UserData[models.DataManualEmail] = email
	}

	employeeID := strings.TrimSpace(req.EmployeeID)
	if employeeID == "" {
		employeeID = sess.UserData[models.DataManualEmployeeID]
	}
	if employeeID == "" {
		m.putLocked(*sess)
		m.persistLocked()
		return i18n.Message("manual_missing_employee_id", lang), models.ErrMissingEmployeeID
	}
	sess.UserData[models.DataManualEmployeeID] = employeeID
	sess.UserType = models.UserTypeEmployee
	sess.CurrentState = models.StateManualVerification

	if strings.TrimSpace(req.OTP) == "" {
		return m.issueOTPLocked(ctx, *sess, employeeID, lang)
	}
	return m.verifyOTPLocked(ctx, *sess, employeeID, req.OTP, lang)
}

func (m *Manager) issueOTPLocked(ctx context.Context, sess models.FlowSession, employeeID, lang string) (string, error) {
	res, err := m.otp.Issue(ctx, employeeID)
	if err != nil {
		m.putLocked(sess)
		m.persistLocked()
		slog.Error("FlowManager OTP issue failed", "sessionID", sess.SessionID, "employeeID", employeeID, "error", err)
		switch {
		case errors.Is(err, models.ErrEmployeeNotFound):
			return i18n.Message("manual_id_not_found", lang), err
		case errors.Is(err, models.ErrDirectoryUnavailable):
			return i18n.Message("manual_lookup_error", lang), err
		case errors.Is(err, models.ErrNoDeliveryChannel):
			return i18n.Message("manual_no_email_on_file", lang), err
		default:
			return i18n.MessageWith("manual_otp_send_failed", lang, map[string]string{"error": err.Error()}), err
		}
	}

	if res.Record.Email != "" {
		sess.UserData[models.DataManualEmail] = res.Record.Email
	}
	if res.Record.Phone != "" {
		sess.UserData[models.DataManualPhone] = res.Record.Phone
	}
	m.putLocked(sess)
	m.persistLocked()
	slog.Info("FlowManager OTP dispatched", "sessionID", sess.SessionID, "employeeID", employeeID, "method", res.Method)
	return i18n.MessageWith("manual_otp_sent", lang, map[string]string{
		"name":   res.Record.Name,
		"method": res.Method,
		"detail": res.Detail,
	}), nil
}

func (m *Manager) verifyOTPLocked(ctx context.Context, sess models.FlowSession, employeeID, code, lang string) (string, error) {
	res, err := m.otp.Verify(ctx, employeeID, code)
	if err != nil {
		sess.VerificationAttempts++
		m.putLocked(sess)
		m.persistLocked()
		slog.Info("FlowManager OTP verify failed", "sessionID", sess.SessionID, "employeeID", employeeID, "error", err)
		switch {
		case errors.Is(err, models.ErrNoOTPSession):
			return i18n.Message("manual_otp_not_requested", lang), err
		case errors.Is(err, models.ErrOTPExhausted):
			return i18n.Message("manual_otp_exhausted", lang), err
		case errors.Is(err, models.ErrOTPMismatch):
			remaining := strconv.Itoa(m.otp.AttemptsLeft(employeeID))
			return i18n.MessageWith("manual_otp_failed", lang, map[string]string{"remaining": remaining}), err
		case errors.Is(err, models.ErrEmployeeNotFound):
			return i18n.Message("manual_id_not_found", lang), err
		case errors.Is(err, models.ErrDirectoryUnavailable):
			return i18n.Message("manual_lookup_error", lang), err
		default:
			return i18n.Message("manual_internal_error_retry", lang), err
		}
	}

	rec := res.Record
	sess.UserData[models.DataManualName] = rec.Name
	sess.UserData[models.DataEmployeeName] = rec.Name
	sess.UserData[models.DataEmployeeID] = rec.EmployeeID
	sess.IsVerified = true
	sess.VerificationMethod = models.VerifiedByManualOTP
	sess.CurrentState = models.StateEmployeeVerified
	m.putLocked(sess)
	m.persistLocked()
	m.agent.SetUserVerified(rec.Name, rec.EmployeeID)
	slog.Info("FlowManager OTP verified", "sessionID", sess.SessionID, "employeeID", rec.EmployeeID)
	return i18n.MessageWith("manual_otp_verified", lang, map[string]string{"name": rec.Name}), nil
}

// ProcessFaceRegistrationChoice records whether a verified employee wants to
// enroll their face. Accepting emits the start signal and moves to
// FaceRegistration; declining settles back into EmployeeVerified.
func (m *Manager) ProcessFaceRegistrationChoice(register bool) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess := m.currentLocked()
	if sess == nil {
		return i18n.Message("manual_no_session", m.lang()), models.ErrNoActiveSession
	}
	m.agent.UpdateActivity()
	lang := m.lang()

	if !sess.IsVerified {
		return i18n.Message("manual_not_verified", lang), models.ErrSessionNotVerified
	}

	if !register {
		sess.CurrentState = models.StateEmployeeVerified
		m.putLocked(*sess)
		m.persistLocked()
		return i18n.Message("face_registration_skip_ack", lang), nil
	}

	sess.CurrentState = models.StateFaceRegistration
	m.putLocked(*sess)
	m.persistLocked()
	m.post(models.SignalStartFaceRegistration, map[string]string{
		"session_id":  sess.SessionID,
		"employee_id": sess.IdentityID(),
	})
	slog.Info("FlowManager face registration started", "sessionID", sess.SessionID, "employeeID", sess.IdentityID())
	return i18n.Message("face_registration_ready", lang), nil
}

// ProcessFaceRegistrationCompletion settles the session back into
// EmployeeVerified whatever the enrollment outcome; a failed registration
// only skips the future face shortcut, it never blocks access.
func (m *Manager) ProcessFaceRegistrationCompletion(success bool, detail string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess := m.currentLocked()
	if sess == nil {
		return i18n.Message("manual_no_session", m.lang()), models.ErrNoActiveSession
	}
	m.agent.UpdateActivity()
	lang := m.lang()

	if !sess.IsVerified {
		return i18n.Message("manual_not_verified", lang), models.ErrSessionNotVerified
	}

	sess.CurrentState = models.StateEmployeeVerified
	if success {
		sess.UserData[models.DataFaceRegistered] = "true"
	}
	m.putLocked(*sess)
	m.persistLocked()
	slog.Info("FlowManager face registration completed", "sessionID", sess.SessionID, "success", success)

	if success {
		return i18n.Message("face_registration_success", lang), nil
	}
	msg := i18n.Message("face_registration_skip_ack", lang)
	if detail != "" {
		msg += " (" + detail + ")"
	}
	return msg, nil
}
