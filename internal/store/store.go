// Package store provides storage backends for Clara.
//
// It persists the reception flow document, the shared agent snapshot, the
// visitor log, employee directory rows, scheduled manager visits, and manual
// verification OTP sessions. SQLite and Postgres backends share embedded
// migrations; the in-memory backend backs tests and throwaway runs.
package store

import (
	"sort"
	"sync"
	"time"

	"github.com/infoservices/clara/internal/models"
)

// Store is the persistence interface used by the flow manager, the agent
// state manager, and the verification services.
type Store interface {
	SaveFlowDocument(doc models.FlowDocument) error
	GetFlowDocument() (*models.FlowDocument, error)

	SaveAgentSnapshot(snap models.AgentSnapshot) error
	GetAgentSnapshot() (*models.AgentSnapshot, error)

	AddVisitorEntry(e models.VisitorEntry) error
	GetVisitorEntries() ([]models.VisitorEntry, error)

	SaveOTPSession(sess models.OTPSession) error
	GetOTPSession(email string) (*models.OTPSession, error)
	DeleteOTPSession(email string) error

	UpsertEmployee(rec models.EmployeeRecord) error
	GetEmployee(employeeID string) (*models.EmployeeRecord, error)
	ListEmployees() ([]models.EmployeeRecord, error)

	UpsertManagerVisit(v models.ManagerVisit) error
	GetManagerVisit(employeeID, visitDate string) (*models.ManagerVisit, error)

	Close() error
}

// InMemoryStore keeps everything in process memory. Used by tests and by
// runs that do not configure a database.
type InMemoryStore struct {
	mu            sync.RWMutex
	flowDoc       *models.FlowDocument
	snapshot      *models.AgentSnapshot
	visitors      []models.VisitorEntry
	otpSessions   map[string]models.OTPSession
	employees     map[string]models.EmployeeRecord
	managerVisits map[string]models.ManagerVisit
}

// NewInMemoryStore creates an empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		otpSessions:   make(map[string]models.OTPSession),
		employees:     make(map[string]models.EmployeeRecord),
		managerVisits: make(map[string]models.ManagerVisit),
	}
}

func visitKey(employeeID, visitDate string) string {
	return employeeID + "|" + visitDate
}

func (s *InMemoryStore) SaveFlowDocument(doc models.FlowDocument) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc.LastUpdated = time.Now()
	s.flowDoc = &doc
	return nil
}

func (s *InMemoryStore) GetFlowDocument() (*models.FlowDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.flowDoc == nil {
		return nil, nil
	}
	doc := *s.flowDoc
	return &doc, nil
}

func (s *InMemoryStore) SaveAgentSnapshot(snap models.AgentSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap.UpdatedAt = time.Now()
	s.snapshot = &snap
	return nil
}

func (s *InMemoryStore) GetAgentSnapshot() (*models.AgentSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snapshot == nil {
		return nil, nil
	}
	snap := *s.snapshot
	return &snap, nil
}

func (s *InMemoryStore) AddVisitorEntry(e models.VisitorEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.visitors = append(s.visitors, e)
	return nil
}

func (s *InMemoryStore) GetVisitorEntries() ([]models.VisitorEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.VisitorEntry, len(s.visitors))
	copy(out, s.visitors)
	return out, nil
}

func (s *InMemoryStore) SaveOTPSession(sess models.OTPSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.otpSessions[sess.Email] = sess
	return nil
}

func (s *InMemoryStore) GetOTPSession(email string) (*models.OTPSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.otpSessions[email]
	if !ok {
		return nil, nil
	}
	return &sess, nil
}

func (s *InMemoryStore) DeleteOTPSession(email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.otpSessions, email)
	return nil
}

func (s *InMemoryStore) UpsertEmployee(rec models.EmployeeRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.employees[rec.EmployeeID] = rec
	return nil
}

func (s *InMemoryStore) GetEmployee(employeeID string) (*models.EmployeeRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.employees[employeeID]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (s *InMemoryStore) ListEmployees() ([]models.EmployeeRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.EmployeeRecord, 0, len(s.employees))
	for _, rec := range s.employees {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EmployeeID < out[j].EmployeeID })
	return out, nil
}

func (s *InMemoryStore) UpsertManagerVisit(v models.ManagerVisit) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.managerVisits[visitKey(v.EmployeeID, v.VisitDate)] = v
	return nil
}

func (s *InMemoryStore) GetManagerVisit(employeeID, visitDate string) (*models.ManagerVisit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.managerVisits[visitKey(employeeID, visitDate)]
	if !ok {
		return nil, nil
	}
	return &v, nil
}

func (s *InMemoryStore) Close() error {
	return nil
}
