package models

import (
	"errors"
	"time"
)

// Error variables for better error handling and testability
var (
	ErrNoActiveSession      = errors.New("no active flow session")
	ErrSessionNotVerified   = errors.New("session is not verified")
	ErrMissingEmployeeID    = errors.New("employee id is required")
	ErrEmployeeNotFound     = errors.New("employee not found in directory")
	ErrDirectoryUnavailable = errors.New("employee directory unavailable")
	ErrNoOTPSession         = errors.New("no OTP session found")
	ErrOTPExhausted         = errors.New("too many failed OTP attempts")
	ErrOTPMismatch          = errors.New("OTP does not match")
	ErrNoDeliveryChannel    = errors.New("no OTP delivery channel available")
	ErrGalleryUnavailable   = errors.New("face gallery unavailable")
	ErrNoFaceDetected       = errors.New("no face detected in image")
	ErrIdentityRegistered   = errors.New("identity already has a gallery entry")
	ErrIdentityNotFound     = errors.New("identity not found in gallery")
	ErrEmbeddingDimension   = errors.New("embedding dimension mismatch")
)

// EmployeeRecord is a directory entry resolved for verification.
type EmployeeRecord struct {
	EmployeeID string `json:"employee_id"`
	Name       string `json:"name"`
	Email      string `json:"email,omitempty"`
	Phone      string `json:"phone,omitempty"`
	Department string `json:"department,omitempty"`
}

// ManagerVisit is a scheduled visit record used to enrich the post-verification
// greeting for an employee visiting from another office.
type ManagerVisit struct {
	EmployeeID  string `json:"employee_id"`
	VisitDate   string `json:"visit_date"` // YYYY-MM-DD
	Office      string `json:"office,omitempty"`
	ManagerName string `json:"manager_name,omitempty"`
}

// VisitorEntry is one row of the visitor log, written best-effort when the
// visitor branch completes information collection.
type VisitorEntry struct {
	Name          string    `json:"name"`
	Phone         string    `json:"phone"`
	Purpose       string    `json:"purpose"`
	HostEmployee  string    `json:"host_employee"`
	PhotoLocation string    `json:"photo_location,omitempty"`
	LoggedAt      time.Time `json:"logged_at"`
}

// OTPSession holds the one-time code issued for an employee during manual
// verification. Keyed by the employee's resolved email address.
type OTPSession struct {
	EmployeeID     string    `json:"employee_id"`
	Name           string    `json:"name,omitempty"`
	Email          string    `json:"email"`
	Code           string    `json:"code,omitempty"`
	Attempts       int       `json:"attempts"`
	Verified       bool      `json:"verified"`
	DeliveryMethod string    `json:"delivery_method,omitempty"`
	DeliveryDetail string    `json:"delivery_detail,omitempty"`
	IssuedAt       time.Time `json:"issued_at"`
}

// Outcome is the recorded result of a best-effort side effect (visitor
// logging, host notification). Failures are kept, never raised.
type Outcome struct {
	OK     bool   `json:"ok"`
	Detail string `json:"detail,omitempty"`
}

// Signal is a one-shot instruction for the external front-end. The signal
// channel holds at most one; a new post overwrites the pending one.
type Signal struct {
	Name     string            `json:"name"`
	Payload  map[string]string `json:"payload,omitempty"`
	PostedAt time.Time         `json:"posted_at"`
}

// Signal names the flow manager emits.
const (
	SignalStartFaceCapture      = "start_face_capture"
	SignalStartVisitorInfo      = "start_visitor_info"
	SignalStartVisitorPhoto     = "start_visitor_photo"
	SignalStartFaceRegistration = "start_face_registration"
	SignalStopFaceCapture       = "stop_face_capture"
)

// AgentSnapshot mirrors the verification and wake state for components that
// cannot reach the authoritative FlowSession (for example a different
// process). Persisted after every mutation; readers reload before trusting.
type AgentSnapshot struct {
	IsAwake           bool      `json:"is_awake"`
	IsVerified        bool      `json:"is_verified"`
	VerifiedUserName  string    `json:"verified_user_name,omitempty"`
	VerifiedUserID    string    `json:"verified_user_id,omitempty"`
	LastActivity      time.Time `json:"last_activity"`
	PreferredLanguage string    `json:"preferred_language"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// FaceStatus classifies the outcome of a face match attempt.
type FaceStatus string

const (
	// FaceMatchSuccess means a gallery identity was accepted.
	FaceMatchSuccess FaceStatus = "success"
	// FaceNotRecognized means the input face matched nobody (or the gallery
	// is empty); callers fall back to manual verification.
	FaceNotRecognized FaceStatus = "not_recognized"
	// FaceError means the input itself was unusable (no face, bad image) or
	// the gallery could not be read.
	FaceError FaceStatus = "error"
)

// FaceResult is the outcome of a face match attempt as consumed by the flow.
type FaceResult struct {
	Status     FaceStatus `json:"status"`
	EmployeeID string     `json:"employeeId,omitempty"`
	Name       string     `json:"name,omitempty"`
	Message    string     `json:"message,omitempty"`
	Distance   float64    `json:"distance,omitempty"`
}

// GalleryEntry is one known identity with its face embedding.
type GalleryEntry struct {
	EmployeeID   string    `json:"employee_id"`
	Embedding    []float64 `json:"embedding"`
	RegisteredAt time.Time `json:"registered_at"`
}

// FaceGallery is the persisted collection of known face embeddings.
// Append-only except for explicit admin removal.
type FaceGallery struct {
	Entries []GalleryEntry `json:"entries"`
}

// Find returns the entry for an employee id, or nil.
func (g *FaceGallery) Find(employeeID string) *GalleryEntry {
	for i := range g.Entries {
		if g.Entries[i].EmployeeID == employeeID {
			return &g.Entries[i]
		}
	}
	return nil
}
