// Package models defines the core data structures for Clara.
//
// It includes the reception flow session types, the shared agent snapshot,
// face recognition results, and the sentinel errors shared across modules.
package models

import "time"

// FlowState identifies a state of the reception flow state machine.
type FlowState string

const (
	StateIdle                  FlowState = "idle"
	StateWakeDetected          FlowState = "wake_detected"
	StateLanguageSelection     FlowState = "language_selection"
	StateUserClassification    FlowState = "user_classification"
	StateFaceRecognition       FlowState = "face_recognition"
	StateFaceMatchCheck        FlowState = "face_match_check"
	StateManualVerification    FlowState = "manual_verification"
	StateCredentialCheck       FlowState = "credential_check"
	StateFaceRegistration      FlowState = "face_registration"
	StateEmployeeVerified      FlowState = "employee_verified"
	StateVisitorInfoCollection FlowState = "visitor_info_collection"
	StateVisitorFaceCapture    FlowState = "visitor_face_capture"
	StateHostNotification      FlowState = "host_notification"
	StateFlowEnd               FlowState = "flow_end"
)

// UserType classifies who the flow session is talking to.
type UserType string

const (
	UserTypeUnknown  UserType = "unknown"
	UserTypeEmployee UserType = "employee"
	UserTypeVisitor  UserType = "visitor"
)

// Verification method tags recorded on a verified session.
const (
	VerifiedByFace      = "face_recognition"
	VerifiedByManualOTP = "manual_with_otp"
)

// UserData keys used by the flow manager. UserData has no fixed schema;
// these constants name the keys the flow itself reads back.
const (
	DataEmployeeName     = "employee_name"
	DataEmployeeID       = "employee_id"
	DataManualName       = "manual_name"
	DataManualEmployeeID = "manual_employee_id"
	DataManualEmail      = "manual_email"
	DataManualPhone      = "manual_phone"
	DataVisitorName      = "visitor_name"
	DataVisitorPhone     = "visitor_phone"
	DataVisitorPurpose   = "visitor_purpose"
	DataVisitorHost      = "host_employee"
	DataVisitorLogged    = "visitor_logged"
	DataVisitorLogError  = "visitor_log_error"
	DataFaceRegistered   = "face_registered"
	DataFaceCaptured     = "face_captured"
	DataFaceCaptureTime  = "face_capture_time"
	DataPhotoLocation    = "photo_location"
)

// MaxVerificationAttempts caps manual verification retries before the
// session must be restarted.
const MaxVerificationAttempts = 3

// FlowSession tracks one visitor/employee interaction through the flow.
type FlowSession struct {
	SessionID            string            `json:"session_id"`
	CurrentState         FlowState         `json:"current_state"`
	UserType             UserType          `json:"user_type"`
	StartTime            time.Time         `json:"start_time"`
	LastActivity         time.Time         `json:"last_activity"`
	VerificationAttempts int               `json:"verification_attempts"`
	UserData             map[string]string `json:"user_data"`
	IsVerified           bool              `json:"is_verified"`
	VerificationMethod   string            `json:"verification_method,omitempty"`
}

// Touch refreshes the session's last-activity timestamp.
func (s *FlowSession) Touch() {
	s.LastActivity = time.Now()
}

// IdentityName reports the best known display name for the session, or ""
// when the session carries no identity yet.
func (s *FlowSession) IdentityName() string {
	if v := s.UserData[DataEmployeeName]; v != "" {
		return v
	}
	if v := s.UserData[DataManualName]; v != "" {
		return v
	}
	return s.UserData[DataVisitorName]
}

// IdentityID reports the best known employee id for the session.
func (s *FlowSession) IdentityID() string {
	if v := s.UserData[DataEmployeeID]; v != "" {
		return v
	}
	return s.UserData[DataManualEmployeeID]
}

// FlowDocument is the persisted shape of the whole session table. It is an
// internal document format, not an external contract.
type FlowDocument struct {
	Sessions         map[string]FlowSession `json:"sessions"`
	CurrentSessionID string                 `json:"current_session_id,omitempty"`
	LastUpdated      time.Time              `json:"last_updated"`
}

// FlowStatus is a debugging snapshot of the current session.
type FlowStatus struct {
	SessionID          string    `json:"session_id,omitempty"`
	CurrentState       FlowState `json:"current_state,omitempty"`
	UserType           UserType  `json:"user_type,omitempty"`
	IsVerified         bool      `json:"is_verified"`
	VerificationMethod string    `json:"verification_method,omitempty"`
	UserDataKeys       []string  `json:"user_data_keys,omitempty"`
	LastActivity       string    `json:"last_activity,omitempty"`
	Status             string    `json:"status"`
}
