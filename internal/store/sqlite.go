// Package store provides storage backends for Clara.
//
// This file implements the SQLite-backed store.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "embed"

	"github.com/infoservices/clara/internal/models"
	_ "github.com/mattn/go-sqlite3"
)

// DefaultDirPermissions defines the default permissions for database directories
const DefaultDirPermissions = 0755

//go:embed migrations_sqlite.sql
var sqliteMigrations string

type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store with the given DSN.
// The DSN should be a file path to the SQLite database file.
// If the directory doesn't exist, it will be created.
func NewSQLiteStore(opts ...Option) (*SQLiteStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("NewSQLiteStore invoked", "DSN_set", cfg.DSN != "")

	dsn := cfg.DSN
	if dsn == "" {
		slog.Error("SQLiteStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	dir := filepath.Dir(dsn)
	if err := os.MkdirAll(dir, DefaultDirPermissions); err != nil {
		slog.Error("Failed to create database directory", "error", err, "dir", dir)
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		slog.Error("Failed to open SQLite connection", "error", err)
		return nil, err
	}

	if err := db.Ping(); err != nil {
		slog.Error("SQLite ping failed", "error", err)
		return nil, err
	}

	slog.Debug("Running SQLite migrations")
	if _, err := db.Exec(sqliteMigrations); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("SQLite migrations applied successfully")

	return &SQLiteStore{db: db}, nil
}

// SaveFlowDocument stores the whole session document as one row.
func (s *SQLiteStore) SaveFlowDocument(doc models.FlowDocument) error {
	data, err := json.Marshal(doc)
	if err != nil {
		slog.Error("SQLiteStore SaveFlowDocument marshal failed", "error", err)
		return fmt.Errorf("failed to marshal flow document: %w", err)
	}
	_, err = s.db.Exec(`INSERT OR REPLACE INTO flow_documents (id, document, updated_at) VALUES (1, ?, ?)`,
		string(data), doc.LastUpdated)
	if err != nil {
		slog.Error("SQLiteStore SaveFlowDocument failed", "error", err)
		return fmt.Errorf("failed to save flow document: %w", err)
	}
	slog.Debug("SQLiteStore SaveFlowDocument succeeded", "sessions", len(doc.Sessions))
	return nil
}

// GetFlowDocument loads the session document, or nil if never saved.
func (s *SQLiteStore) GetFlowDocument() (*models.FlowDocument, error) {
	var data string
	err := s.db.QueryRow(`SELECT document FROM flow_documents WHERE id = 1`).Scan(&data)
	if err == sql.ErrNoRows {
		slog.Debug("SQLiteStore GetFlowDocument: no document stored")
		return nil, nil
	}
	if err != nil {
		slog.Error("SQLiteStore GetFlowDocument failed", "error", err)
		return nil, fmt.Errorf("failed to load flow document: %w", err)
	}
	var doc models.FlowDocument
	if err := json.Unmarshal([]byte(data), &doc); err != nil {
		slog.Error("SQLiteStore GetFlowDocument unmarshal failed", "error", err)
		return nil, fmt.Errorf("failed to unmarshal flow document: %w", err)
	}
	return &doc, nil
}

// SaveAgentSnapshot stores the shared agent state as one row.
func (s *SQLiteStore) SaveAgentSnapshot(snap models.AgentSnapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		slog.Error("SQLiteStore SaveAgentSnapshot marshal failed", "error", err)
		return fmt.Errorf("failed to marshal agent snapshot: %w", err)
	}
	_, err = s.db.Exec(`INSERT OR REPLACE INTO agent_snapshots (id, snapshot, updated_at) VALUES (1, ?, ?)`,
		string(data), snap.UpdatedAt)
	if err != nil {
		slog.Error("SQLiteStore SaveAgentSnapshot failed", "error", err)
		return fmt.Errorf("failed to save agent snapshot: %w", err)
	}
	return nil
}

// GetAgentSnapshot loads the shared agent state, or nil if never saved.
func (s *SQLiteStore) GetAgentSnapshot() (*models.AgentSnapshot, error) {
	var data string
	err := s.db.QueryRow(`SELECT snapshot FROM agent_snapshots WHERE id = 1`).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		slog.Error("SQLiteStore GetAgentSnapshot failed", "error", err)
		return nil, fmt.Errorf("failed to load agent snapshot: %w", err)
	}
	var snap models.AgentSnapshot
	if err := json.Unmarshal([]byte(data), &snap); err != nil {
		slog.Error("SQLiteStore GetAgentSnapshot unmarshal failed", "error", err)
		return nil, fmt.Errorf("failed to unmarshal agent snapshot: %w", err)
	}
	return &snap, nil
}

func (s *SQLiteStore) AddVisitorEntry(e models.VisitorEntry) error {
	_, err := s.db.Exec(
		`INSERT INTO visitor_entries (name, phone, purpose, host_employee, photo_location, logged_at) VALUES (?, ?, ?, ?, ?, ?)`,
		e.Name, e.Phone, e.Purpose, e.HostEmployee, nilIfEmpty(e.PhotoLocation), e.LoggedAt)
	if err != nil {
		slog.Error("SQLiteStore AddVisitorEntry failed", "error", err, "name", e.Name)
		return fmt.Errorf("failed to insert visitor entry for %s: %w", e.Name, err)
	}
	slog.Debug("SQLiteStore AddVisitorEntry succeeded", "name", e.Name, "host", e.HostEmployee)
	return nil
}

func (s *SQLiteStore) GetVisitorEntries() ([]models.VisitorEntry, error) {
	rows, err := s.db.Query(`SELECT name, phone, purpose, host_employee, photo_location, logged_at FROM visitor_entries ORDER BY logged_at`)
	if err != nil {
		slog.Error("SQLiteStore GetVisitorEntries query failed", "error", err)
		return nil, fmt.Errorf("failed to query visitor entries: %w", err)
	}
	defer rows.Close()

	var entries []models.VisitorEntry
	for rows.Next() {
		e, err := scanVisitorEntry(rows)
		if err != nil {
			slog.Error("SQLiteStore GetVisitorEntries scan failed", "error", err)
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		slog.Error("SQLiteStore GetVisitorEntries rows iteration failed", "error", err)
		return nil, fmt.Errorf("failed to iterate visitor rows: %w", err)
	}
	slog.Debug("SQLiteStore GetVisitorEntries succeeded", "count", len(entries))
	return entries, nil
}

func (s *SQLiteStore) SaveOTPSession(sess models.OTPSession) error {
	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO otp_sessions (email, employee_id, name, code, attempts, verified, delivery_method, delivery_detail, issued_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sess.Email, sess.EmployeeID, nilIfEmpty(sess.Name), nilIfEmpty(sess.Code),
		sess.Attempts, sess.Verified, nilIfEmpty(sess.DeliveryMethod), nilIfEmpty(sess.DeliveryDetail), sess.IssuedAt)
	if err != nil {
		slog.Error("SQLiteStore SaveOTPSession failed", "error", err, "employeeID", sess.EmployeeID)
		return fmt.Errorf("failed to save OTP session for %s: %w", sess.EmployeeID, err)
	}
	return nil
}

func (s *SQLiteStore) GetOTPSession(email string) (*models.OTPSession, error) {
	row := s.db.QueryRow(
		`SELECT email, employee_id, name, code, attempts, verified, delivery_method, delivery_detail, issued_at
		 FROM otp_sessions WHERE email = ?`, email)
	sess, err := scanOTPSession(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		slog.Error("SQLiteStore GetOTPSession failed", "error", err, "email", email)
		return nil, fmt.Errorf("failed to load OTP session: %w", err)
	}
	return sess, nil
}

func (s *SQLiteStore) DeleteOTPSession(email string) error {
	_, err := s.db.Exec(`DELETE FROM otp_sessions WHERE email = ?`, email)
	if err != nil {
		slog.Error("SQLiteStore DeleteOTPSession failed", "error", err, "email", email)
		return fmt.Errorf("failed to delete OTP session: %w", err)
	}
	return nil
}

func (s *SQLiteStore) UpsertEmployee(rec models.EmployeeRecord) error {
	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO employees (employee_id, name, email, phone, department) VALUES (?, ?, ?, ?, ?)`,
		rec.EmployeeID, rec.Name, nilIfEmpty(rec.Email), nilIfEmpty(rec.Phone), nilIfEmpty(rec.Department))
	if err != nil {
		slog.Error("SQLiteStore UpsertEmployee failed", "error", err, "employeeID", rec.EmployeeID)
		return fmt.Errorf("failed to upsert employee %s: %w", rec.EmployeeID, err)
	}
	return nil
}

func (s *SQLiteStore) GetEmployee(employeeID string) (*models.EmployeeRecord, error) {
	row := s.db.QueryRow(`SELECT employee_id, name, email, phone, department FROM employees WHERE employee_id = ?`, employeeID)
	rec, err := scanEmployee(row)
	if err == sql.ErrNoRows {
		slog.Debug("SQLiteStore GetEmployee not found", "employeeID", employeeID)
		return nil, nil
	}
	if err != nil {
		slog.Error("SQLiteStore GetEmployee failed", "error", err, "employeeID", employeeID)
		return nil, fmt.Errorf("failed to load employee %s: %w", employeeID, err)
	}
	return rec, nil
}

func (s *SQLiteStore) ListEmployees() ([]models.EmployeeRecord, error) {
	rows, err := s.db.Query(`SELECT employee_id, name, email, phone, department FROM employees ORDER BY employee_id`)
	if err != nil {
		slog.Error("SQLiteStore ListEmployees query failed", "error", err)
		return nil, fmt.Errorf("failed to query employees: %w", err)
	}
	defer rows.Close()

	var records []models.EmployeeRecord
	for rows.Next() {
		var rec models.EmployeeRecord
		var email, phone, department sql.NullString
		if err := rows.Scan(&rec.EmployeeID, &rec.Name, &email, &phone, &department); err != nil {
			slog.Error("SQLiteStore ListEmployees scan failed", "error", err)
			return nil, fmt.Errorf("failed to scan employee row: %w", err)
		}
		rec.Email = email.String
		rec.Phone = phone.String
		rec.Department = department.String
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate employee rows: %w", err)
	}
	return records, nil
}

func (s *SQLiteStore) UpsertManagerVisit(v models.ManagerVisit) error {
	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO manager_visits (employee_id, visit_date, office, manager_name) VALUES (?, ?, ?, ?)`,
		v.EmployeeID, v.VisitDate, nilIfEmpty(v.Office), nilIfEmpty(v.ManagerName))
	if err != nil {
		slog.Error("SQLiteStore UpsertManagerVisit failed", "error", err, "employeeID", v.EmployeeID)
		return fmt.Errorf("failed to upsert manager visit for %s: %w", v.EmployeeID, err)
	}
	return nil
}

func (s *SQLiteStore) GetManagerVisit(employeeID, visitDate string) (*models.ManagerVisit, error) {
	row := s.db.QueryRow(
		`SELECT employee_id, visit_date, office, manager_name FROM manager_visits WHERE employee_id = ? AND visit_date = ?`,
		employeeID, visitDate)
	v, err := scanManagerVisit(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		slog.Error("SQLiteStore GetManagerVisit failed", "error", err, "employeeID", employeeID)
		return nil, fmt.Errorf("failed to load manager visit: %w", err)
	}
	return v, nil
}

// Close closes the SQLite database connection.
func (s *SQLiteStore) Close() error {
	slog.Debug("Closing SQLite database connection")
	err := s.db.Close()
	if err != nil {
		slog.Error("Failed to close SQLite database", "error", err)
	}
	return err
}
