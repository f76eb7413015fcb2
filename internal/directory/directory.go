// Package directory resolves employee records and scheduled manager visits.
//
// The directory backs manual verification (looking up an employee id before
// issuing an OTP) and the post-verification greeting (checking whether the
// verified employee is a manager visiting from another office today).
package directory

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/infoservices/clara/internal/models"
	"github.com/infoservices/clara/internal/store"
)

// Service answers identity questions against the employee directory.
type Service struct {
	store store.Store
	now   func() time.Time
}

// Option configures directory service construction.
type Option func(*Service)

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a directory service backed by the given store.
func NewService(st store.Store, opts ...Option) *Service {
	s := &Service{store: st, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Lookup resolves an employee id to a directory record. Returns
// models.ErrEmployeeNotFound when the id is unknown and
// models.ErrDirectoryUnavailable when the backing store fails.
func (s *Service) Lookup(employeeID string) (*models.EmployeeRecord, error) {
	id := strings.TrimSpace(employeeID)
	if id == "" {
		return nil, models.ErrMissingEmployeeID
	}
	rec, err := s.store.GetEmployee(id)
	if err != nil {
		slog.Error("Directory.Lookup store failed", "error", err, "employeeID", id)
		return nil, fmt.Errorf("%w: %v", models.ErrDirectoryUnavailable, err)
	}
	if rec == nil {
		slog.Debug("Directory.Lookup: employee not found", "employeeID", id)
		return nil, models.ErrEmployeeNotFound
	}
	return rec, nil
}

// LookupByEmail resolves a directory record by email, case-insensitively.
func (s *Service) LookupByEmail(email string) (*models.EmployeeRecord, error) {
	addr := strings.TrimSpace(email)
	if addr == "" {
		return nil, models.ErrEmployeeNotFound
	}
	return s.scan(func(rec models.EmployeeRecord) bool {
		return rec.Email != "" && strings.EqualFold(addr, rec.Email)
	})
}

// LookupByName resolves a directory record by display name. The match is
// case-insensitive and tolerates the spoken name being a prefix of the full
// name ("Asha" finds "Asha Rao").
func (s *Service) LookupByName(name string) (*models.EmployeeRecord, error) {
	spoken := strings.ToLower(strings.TrimSpace(name))
	if spoken == "" {
		return nil, models.ErrEmployeeNotFound
	}
	return s.scan(func(rec models.EmployeeRecord) bool {
		full := strings.ToLower(rec.Name)
		return full == spoken || strings.HasPrefix(full, spoken+" ")
	})
}

func (s *Service) scan(match func(models.EmployeeRecord) bool) (*models.EmployeeRecord, error) {
	recs, err := s.store.ListEmployees()
	if err != nil {
		slog.Error("Directory.scan store failed", "error", err)
		return nil, fmt.Errorf("%w: %v", models.ErrDirectoryUnavailable, err)
	}
	for _, rec := range recs {
		if match(rec) {
			return &rec, nil
		}
	}
	return nil, models.ErrEmployeeNotFound
}

// TodayVisit reports the manager visit scheduled for the employee today, or
// nil when none is on record. Lookup failures degrade to nil; the greeting
// enrichment is best-effort.
func (s *Service) TodayVisit(employeeID string) *models.ManagerVisit {
	today := s.now().Format("2006-01-02")
	visit, err := s.store.GetManagerVisit(employeeID, today)
	if err != nil {
		slog.Warn("Directory.TodayVisit lookup failed", "error", err, "employeeID", employeeID)
		return nil
	}
	return visit
}

// seedFile is the on-disk shape accepted by LoadSeed.
type seedFile struct {
	Employees     []models.EmployeeRecord `json:"employees"`
	ManagerVisits []models.ManagerVisit   `json:"manager_visits,omitempty"`
}

// LoadSeed imports employees and manager visits from a JSON file into the
// store. Existing rows with the same keys are overwritten.
func (s *Service) LoadSeed(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read directory seed %s: %w", path, err)
	}
	var seed seedFile
	if err := json.Unmarshal(data, &seed); err != nil {
		return 0, fmt.Errorf("failed to parse directory seed %s: %w", path, err)
	}

	count := 0
	for _, rec := range seed.Employees {
		if strings.TrimSpace(rec.EmployeeID) == "" || strings.TrimSpace(rec.Name) == "" {
			slog.Warn("Directory.LoadSeed: skipping row without id or name")
			continue
		}
		if err := s.store.UpsertEmployee(rec); err != nil {
			return count, fmt.Errorf("failed to import employee %s: %w", rec.EmployeeID, err)
		}
		count++
	}
	for _, visit := range seed.ManagerVisits {
		if visit.EmployeeID == "" || visit.VisitDate == "" {
			continue
		}
		if err := s.store.UpsertManagerVisit(visit); err != nil {
			return count, fmt.Errorf("failed to import manager visit for %s: %w", visit.EmployeeID, err)
		}
	}
	slog.Info("Directory.LoadSeed imported records", "employees", count, "visits", len(seed.ManagerVisits), "path", path)
	return count, nil
}
