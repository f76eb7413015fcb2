// Package store provides storage backends for Clara.
//
// This file implements the PostgreSQL-backed store.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	_ "embed"

	"github.com/infoservices/clara/internal/models"
	_ "github.com/lib/pq"
)

// Database connection pool configuration constants
const (
	// DefaultMaxOpenConns is the default maximum number of open connections to the database
	DefaultMaxOpenConns = 25
	// DefaultMaxIdleConns is the default maximum number of idle connections in the pool
	DefaultMaxIdleConns = 25
	// DefaultConnMaxLifetime is the default maximum amount of time a connection may be reused
	DefaultConnMaxLifetime = 5 * time.Minute
)

//go:embed migrations_postgres.sql
var postgresMigrations string

type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new Postgres store based on provided options.
func NewPostgresStore(opts ...Option) (*PostgresStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("PostgresStore.NewPostgresStore: creating Postgres store", "DSN_set", cfg.DSN != "")

	dsn := cfg.DSN
	if dsn == "" {
		slog.Error("PostgresStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		slog.Error("Failed to open Postgres connection", "error", err)
		return nil, err
	}

	db.SetMaxOpenConns(DefaultMaxOpenConns)
	db.SetMaxIdleConns(DefaultMaxIdleConns)
	db.SetConnMaxLifetime(DefaultConnMaxLifetime)

	if err := db.Ping(); err != nil {
		slog.Error("Postgres ping failed", "error", err)
		return nil, err
	}

	slog.Debug("Running Postgres migrations")
	if _, err := db.Exec(postgresMigrations); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("Postgres migrations applied successfully")
	return &PostgresStore{db: db}, nil
}

// SaveFlowDocument stores the whole session document as one row.
func (s *PostgresStore) SaveFlowDocument(doc models.FlowDocument) error {
	data, err := json.Marshal(doc)
	if err != nil {
		slog.Error("PostgresStore SaveFlowDocument marshal failed", "error", err)
		return fmt.Errorf("failed to marshal flow document: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT INTO flow_documents (id, document, updated_at) VALUES (1, $1, $2)
		 ON CONFLICT (id) DO UPDATE SET document = EXCLUDED.document, updated_at = EXCLUDED.updated_at`,
		string(data), doc.LastUpdated)
	if err != nil {
		slog.Error("PostgresStore SaveFlowDocument failed", "error", err)
		return fmt.Errorf("failed to save flow document: %w", err)
	}
	slog.Debug("PostgresStore SaveFlowDocument succeeded", "sessions", len(doc.Sessions))
	return nil
}

// GetFlowDocument loads the session document, or nil if never saved.
func (s *PostgresStore) GetFlowDocument() (*models.FlowDocument, error) {
	var data string
	err := s.db.QueryRow(`SELECT document FROM flow_documents WHERE id = 1`).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		slog.Error("PostgresStore GetFlowDocument failed", "error", err)
		return nil, fmt.Errorf("failed to load flow document: %w", err)
	}
	var doc models.FlowDocument
	if err := json.Unmarshal([]byte(data), &doc); err != nil {
		slog.Error("PostgresStore GetFlowDocument unmarshal failed", "error", err)
		return nil, fmt.Errorf("failed to unmarshal flow document: %w", err)
	}
	return &doc, nil
}

// SaveAgentSnapshot stores the shared agent state as one row.
func (s *PostgresStore) SaveAgentSnapshot(snap models.AgentSnapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		slog.Error("PostgresStore SaveAgentSnapshot marshal failed", "error", err)
		return fmt.Errorf("failed to marshal agent snapshot: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT INTO agent_snapshots (id, snapshot, updated_at) VALUES (1, $1, $2)
		 ON CONFLICT (id) DO UPDATE SET snapshot = EXCLUDED.snapshot, updated_at = EXCLUDED.updated_at`,
		string(data), snap.UpdatedAt)
	if err != nil {
		slog.Error("PostgresStore SaveAgentSnapshot failed", "error", err)
		return fmt.Errorf("failed to save agent snapshot: %w", err)
	}
	return nil
}

// GetAgentSnapshot loads the shared agent state, or nil if never saved.
func (s *PostgresStore) GetAgentSnapshot() (*models.AgentSnapshot, error) {
	var data string
	err := s.db.QueryRow(`SELECT snapshot FROM agent_snapshots WHERE id = 1`).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		slog.Error("PostgresStore GetAgentSnapshot failed", "error", err)
		return nil, fmt.Errorf("failed to load agent snapshot: %w", err)
	}
	var snap models.AgentSnapshot
	if err := json.Unmarshal([]byte(data), &snap); err != nil {
		slog.Error("PostgresStore GetAgentSnapshot unmarshal failed", "error", err)
		return nil, fmt.Errorf("failed to unmarshal agent snapshot: %w", err)
	}
	return &snap, nil
}

func (s *PostgresStore) AddVisitorEntry(e models.VisitorEntry) error {
	_, err := s.db.Exec(
		`INSERT INTO visitor_entries (name, phone, purpose, host_employee, photo_location, logged_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		e.Name, e.Phone, e.Purpose, e.HostEmployee, nilIfEmpty(e.PhotoLocation), e.LoggedAt)
	if err != nil {
		slog.Error("PostgresStore AddVisitorEntry failed", "error", err, "name", e.Name)
		return fmt.Errorf("failed to insert visitor entry for %s: %w", e.Name, err)
	}
	slog.Debug("PostgresStore AddVisitorEntry succeeded", "name", e.Name, "host", e.HostEmployee)
	return nil
}

func (s *PostgresStore) GetVisitorEntries() ([]models.VisitorEntry, error) {
	rows, err := s.db.Query(`SELECT name, phone, purpose, host_employee, photo_location, logged_at FROM visitor_entries ORDER BY logged_at`)
	if err != nil {
		slog.Error("PostgresStore GetVisitorEntries query failed", "error", err)
		return nil, fmt.Errorf("failed to query visitor entries: %w", err)
	}
	defer rows.Close()

	var entries []models.VisitorEntry
	for rows.Next() {
		e, err := scanVisitorEntry(rows)
		if err != nil {
			slog.Error("PostgresStore GetVisitorEntries scan failed", "error", err)
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		slog.Error("PostgresStore GetVisitorEntries rows iteration failed", "error", err)
		return nil, fmt.Errorf("failed to iterate visitor rows: %w", err)
	}
	slog.Debug("PostgresStore GetVisitorEntries succeeded", "count", len(entries))
	return entries, nil
}

func (s *PostgresStore) SaveOTPSession(sess models.OTPSession) error {
	_, err := s.db.Exec(
		`INSERT INTO otp_sessions (email, employee_id, name, code, attempts, verified, delivery_method, delivery_detail, issued_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 ON CONFLICT (email) DO UPDATE SET
			employee_id = EXCLUDED.employee_id, name = EXCLUDED.name, code = EXCLUDED.code,
			attempts = EXCLUDED.attempts, verified = EXCLUDED.verified,
			delivery_method = EXCLUDED.delivery_method, delivery_detail = EXCLUDED.delivery_detail,
			issued_at = EXCLUDED.issued_at`,
		sess.Email, sess.EmployeeID, nilIfEmpty(sess.Name), nilIfEmpty(sess.Code),
		sess.Attempts, sess.Verified, nilIfEmpty(sess.DeliveryMethod), nilIfEmpty(sess.DeliveryDetail), sess.IssuedAt)
	if err != nil {
		slog.Error("PostgresStore SaveOTPSession failed", "error", err, "employeeID", sess.EmployeeID)
		return fmt.Errorf("failed to save OTP session for %s: %w", sess.EmployeeID, err)
	}
	return nil
}

func (s *PostgresStore) GetOTPSession(email string) (*models.OTPSession, error) {
	row := s.db.QueryRow(
		`SELECT email, employee_id, name, code, attempts, verified, delivery_method, delivery_detail, issued_at
		 FROM otp_sessions WHERE email = $1`, email)
	sess, err := scanOTPSession(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		slog.Error("PostgresStore GetOTPSession failed", "error", err, "email", email)
		return nil, fmt.Errorf("failed to load OTP session: %w", err)
	}
	return sess, nil
}

func (s *PostgresStore) DeleteOTPSession(email string) error {
	_, err := s.db.Exec(`DELETE FROM otp_sessions WHERE email = $1`, email)
	if err != nil {
		slog.Error("PostgresStore DeleteOTPSession failed", "error", err, "email", email)
		return fmt.Errorf("failed to delete OTP session: %w", err)
	}
	return nil
}

func (s *PostgresStore) UpsertEmployee(rec models.EmployeeRecord) error {
	_, err := s.db.Exec(
		`INSERT INTO employees (employee_id, name, email, phone, department) VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (employee_id) DO UPDATE SET
			name = EXCLUDED.name, email = EXCLUDED.email, phone = EXCLUDED.phone, department = EXCLUDED.department`,
		rec.EmployeeID, rec.Name, nilIfEmpty(rec.Email), nilIfEmpty(rec.Phone), nilIfEmpty(rec.Department))
	if err != nil {
		slog.Error("PostgresStore UpsertEmployee failed", "error", err, "employeeID", rec.EmployeeID)
		return fmt.Errorf("failed to upsert employee %s: %w", rec.EmployeeID, err)
	}
	return nil
}

func (s *PostgresStore) GetEmployee(employeeID string) (*models.EmployeeRecord, error) {
	row := s.db.QueryRow(`SELECT employee_id, name, email, phone, department FROM employees WHERE employee_id = $1`, employeeID)
	rec, err := scanEmployee(row)
	if err == sql.ErrNoRows {
		slog.Debug("PostgresStore GetEmployee not found", "employeeID", employeeID)
		return nil, nil
	}
	if err != nil {
		slog.Error("PostgresStore GetEmployee failed", "error", err, "employeeID", employeeID)
		return nil, fmt.Errorf("failed to load employee %s: %w", employeeID, err)
	}
	return rec, nil
}

func (s *PostgresStore) ListEmployees() ([]models.EmployeeRecord, error) {
	rows, err := s.db.Query(`SELECT employee_id, name, email, phone, department FROM employees ORDER BY employee_id`)
	if err != nil {
		slog.Error("PostgresStore ListEmployees query failed", "error", err)
		return nil, fmt.Errorf("failed to query employees: %w", err)
	}
	defer rows.Close()

	var records []models.EmployeeRecord
	for rows.Next() {
		var rec models.EmployeeRecord
		var email, phone, department sql.NullString
		if err := rows.Scan(&rec.EmployeeID, &rec.Name, &email, &phone, &department); err != nil {
			slog.Error("PostgresStore ListEmployees scan failed", "error", err)
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

func (s *PostgresStore) UpsertManagerVisit(v models.ManagerVisit) error {
	_, err := s.db.Exec(
		`INSERT INTO manager_visits (employee_id, visit_date, office, manager_name) VALUES ($1, $2, $3, $4)
		 ON CONFLICT (employee_id, visit_date) DO UPDATE SET
			office = EXCLUDED.office, manager_name = EXCLUDED.manager_name`,
		v.EmployeeID, v.VisitDate, nilIfEmpty(v.Office), nilIfEmpty(v.ManagerName))
	if err != nil {
		slog.Error("PostgresStore UpsertManagerVisit failed", "error", err, "employeeID", v.EmployeeID)
		return fmt.Errorf("failed to upsert manager visit for %s: %w", v.EmployeeID, err)
	}
	return nil
}

func (s *PostgresStore) GetManagerVisit(employeeID, visitDate string) (*models.ManagerVisit, error) {
	row := s.db.QueryRow(
		`SELECT employee_id, visit_date, office, manager_name FROM manager_visits WHERE employee_id = $1 AND visit_date = $2`,
		employeeID, visitDate)
	v, err := scanManagerVisit(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		slog.Error("PostgresStore GetManagerVisit failed", "error", err, "employeeID", employeeID)
		return nil, fmt.Errorf("failed to load manager visit: %w", err)
	}
	return v, nil
}

// Close closes the Postgres database connection.
func (s *PostgresStore) Close() error {
	slog.Debug("Closing Postgres database connection")
	err := s.db.Close()
	if err != nil {
		slog.Error("Failed to close Postgres database", "error", err)
	}
	return err
}
