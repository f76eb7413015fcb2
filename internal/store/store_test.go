package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/infoservices/clara/internal/models"
)

func TestInMemoryStoreFlowDocumentRoundTrip(t *testing.T) {
	s := NewInMemoryStore()

	doc, err := s.GetFlowDocument()
	if err != nil {
		t.Fatalf("GetFlowDocument failed: %v", err)
	}
	if doc != nil {
		t.Fatalf("expected nil document before first save, got %+v", doc)
	}

	saved := models.FlowDocument{
		Sessions: map[string]models.FlowSession{
			"session_abc": {
				SessionID:    "session_abc",
				CurrentState: models.StateUserClassification,
				UserType:     models.UserTypeEmployee,
				UserData:     map[string]string{models.DataEmployeeName: "Priya"},
			},
		},
		CurrentSessionID: "session_abc",
	}
	if err := s.SaveFlowDocument(saved); err != nil {
		t.Fatalf("SaveFlowDocument failed: %v", err)
	}

	doc, err = s.GetFlowDocument()
	if err != nil {
		t.Fatalf("GetFlowDocument failed: %v", err)
	}
	if doc == nil {
		t.Fatal("expected document after save")
	}
	if doc.CurrentSessionID != "session_abc" {
		t.Errorf("CurrentSessionID = %q, want session_abc", doc.CurrentSessionID)
	}
	sess, ok := doc.Sessions["session_abc"]
	if !ok {
		t.Fatal("expected session_abc in document")
	}
	if sess.CurrentState != models.StateUserClassification {
		t.Errorf("CurrentState = %q, want %q", sess.CurrentState, models.StateUserClassification)
	}
	if doc.LastUpdated.IsZero() {
		t.Error("expected LastUpdated to be set on save")
	}
}

func TestInMemoryStoreOTPSessions(t *testing.T) {
	s := NewInMemoryStore()

	sess, err := s.GetOTPSession("priya@example.com")
	if err != nil {
		t.Fatalf("GetOTPSession failed: %v", err)
	}
	if sess != nil {
		t.Fatal("expected nil for unknown email")
	}

	if err := s.SaveOTPSession(models.OTPSession{
		Email:      "priya@example.com",
		EmployeeID: "E1001",
		Code:       "482913",
		IssuedAt:   time.Now(),
	}); err != nil {
		t.Fatalf("SaveOTPSession failed: %v", err)
	}

	sess, err = s.GetOTPSession("priya@example.com")
	if err != nil {
		t.Fatalf("GetOTPSession failed: %v", err)
	}
	if sess == nil || sess.Code != "482913" {
		t.Fatalf("expected stored code, got %+v", sess)
	}

	if err := s.DeleteOTPSession("priya@example.com"); err != nil {
		t.Fatalf("DeleteOTPSession failed: %v", err)
	}
	sess, _ = s.GetOTPSession("priya@example.com")
	if sess != nil {
		t.Fatal("expected session gone after delete")
	}
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "clara.db")
	s, err := NewSQLiteStore(WithSQLiteDSN(dbPath))
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	defer s.Close()

	now := time.Now().UTC().Truncate(time.Second)

	if err := s.UpsertEmployee(models.EmployeeRecord{
		EmployeeID: "E1001", Name: "Priya Sharma", Email: "priya@example.com", Phone: "+14155550100",
	}); err != nil {
		t.Fatalf("UpsertEmployee failed: %v", err)
	}
	rec, err := s.GetEmployee("E1001")
	if err != nil {
		t.Fatalf("GetEmployee failed: %v", err)
	}
	if rec == nil || rec.Name != "Priya Sharma" {
		t.Fatalf("GetEmployee = %+v, want Priya Sharma", rec)
	}
	missing, err := s.GetEmployee("E9999")
	if err != nil {
		t.Fatalf("GetEmployee unknown failed: %v", err)
	}
	if missing != nil {
		t.Fatalf("expected nil for unknown employee, got %+v", missing)
	}

	if err := s.AddVisitorEntry(models.VisitorEntry{
		Name: "Guest One", Phone: "+14155550123", Purpose: "interview",
		HostEmployee: "Priya Sharma", LoggedAt: now,
	}); err != nil {
		t.Fatalf("AddVisitorEntry failed: %v", err)
	}
	entries, err := s.GetVisitorEntries()
	if err != nil {
		t.Fatalf("GetVisitorEntries failed: %v", err)
	}
	if len(entries) != 1 || entries[0].Name != "Guest One" {
		t.Fatalf("GetVisitorEntries = %+v, want one Guest One row", entries)
	}
	if entries[0].PhotoLocation != "" {
		t.Errorf("PhotoLocation = %q, want empty", entries[0].PhotoLocation)
	}

	if err := s.UpsertManagerVisit(models.ManagerVisit{
		EmployeeID: "E1001", VisitDate: "2026-08-29", Office: "Chennai", ManagerName: "Anand",
	}); err != nil {
		t.Fatalf("UpsertManagerVisit failed: %v", err)
	}
	visit, err := s.GetManagerVisit("E1001", "2026-08-29")
	if err != nil {
		t.Fatalf("GetManagerVisit failed: %v", err)
	}
	if visit == nil || visit.Office != "Chennai" {
		t.Fatalf("GetManagerVisit = %+v, want Chennai visit", visit)
	}
	noVisit, err := s.GetManagerVisit("E1001", "2026-08-30")
	if err != nil {
		t.Fatalf("GetManagerVisit wrong date failed: %v", err)
	}
	if noVisit != nil {
		t.Fatalf("expected nil for other date, got %+v", noVisit)
	}
}

func TestSQLiteStorePersistsAcrossReopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "clara.db")

	s1, err := NewSQLiteStore(WithSQLiteDSN(dbPath))
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	doc := models.FlowDocument{
		Sessions: map[string]models.FlowSession{
			"session_1": {
				SessionID:    "session_1",
				CurrentState: models.StateEmployeeVerified,
				UserType:     models.UserTypeEmployee,
				IsVerified:   true,
				UserData:     map[string]string{models.DataEmployeeID: "E1001"},
			},
		},
		CurrentSessionID: "session_1",
		LastUpdated:      time.Now(),
	}
	if err := s1.SaveFlowDocument(doc); err != nil {
		t.Fatalf("SaveFlowDocument failed: %v", err)
	}
	if err := s1.SaveAgentSnapshot(models.AgentSnapshot{
		IsAwake: true, IsVerified: true, VerifiedUserID: "E1001",
		PreferredLanguage: "ta", UpdatedAt: time.Now(),
	}); err != nil {
		t.Fatalf("SaveAgentSnapshot failed: %v", err)
	}
	if err := s1.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	s2, err := NewSQLiteStore(WithSQLiteDSN(dbPath))
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer s2.Close()

	got, err := s2.GetFlowDocument()
	if err != nil {
		t.Fatalf("GetFlowDocument after reopen failed: %v", err)
	}
	if got == nil || got.CurrentSessionID != "session_1" {
		t.Fatalf("document after reopen = %+v, want session_1 current", got)
	}
	sess := got.Sessions["session_1"]
	if !sess.IsVerified || sess.UserData[models.DataEmployeeID] != "E1001" {
		t.Errorf("session after reopen = %+v, want verified E1001", sess)
	}

	snap, err := s2.GetAgentSnapshot()
	if err != nil {
		t.Fatalf("GetAgentSnapshot after reopen failed: %v", err)
	}
	if snap == nil || !snap.IsAwake || snap.PreferredLanguage != "ta" {
		t.Fatalf("snapshot after reopen = %+v, want awake ta", snap)
	}
}

func TestSQLiteStoreOTPUpsert(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "clara.db")
	s, err := NewSQLiteStore(WithSQLiteDSN(dbPath))
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	defer s.Close()

	sess := models.OTPSession{
		Email: "priya@example.com", EmployeeID: "E1001", Code: "111111",
		DeliveryMethod: "sms", IssuedAt: time.Now().UTC(),
	}
	if err := s.SaveOTPSession(sess); err != nil {
		t.Fatalf("SaveOTPSession failed: %v", err)
	}

	sess.Attempts = 2
	if err := s.SaveOTPSession(sess); err != nil {
		t.Fatalf("SaveOTPSession update failed: %v", err)
	}

	got, err := s.GetOTPSession("priya@example.com")
	if err != nil {
		t.Fatalf("GetOTPSession failed: %v", err)
	}
	if got == nil || got.Attempts != 2 || got.DeliveryMethod != "sms" {
		t.Fatalf("GetOTPSession = %+v, want attempts=2 via sms", got)
	}
}
