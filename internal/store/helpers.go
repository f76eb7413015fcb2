package store

import (
	"database/sql"
	"fmt"

	"github.com/infoservices/clara/internal/models"
)

// nilIfEmpty returns nil if s is empty, otherwise returns s.
// Used for nullable database columns.
func nilIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// scanVisitorEntry scans a VisitorEntry from sql.Rows.
func scanVisitorEntry(rows *sql.Rows) (models.VisitorEntry, error) {
	var e models.VisitorEntry
	var photoLocation sql.NullString
	err := rows.Scan(&e.Name, &e.Phone, &e.Purpose, &e.HostEmployee, &photoLocation, &e.LoggedAt)
	if err != nil {
		return e, fmt.Errorf("scan visitor entry failed: %w", err)
	}
	e.PhotoLocation = photoLocation.String
	return e, nil
}

// scanOTPSession scans an OTPSession from a single sql.Row.
func scanOTPSession(row *sql.Row) (*models.OTPSession, error) {
	var sess models.OTPSession
	var name, code, deliveryMethod, deliveryDetail sql.NullString
	err := row.Scan(&sess.Email, &sess.EmployeeID, &name, &code, &sess.Attempts,
		&sess.Verified, &deliveryMethod, &deliveryDetail, &sess.IssuedAt)
	if err != nil {
		return nil, err
	}
	sess.Name = name.String
	sess.Code = code.String
	sess.DeliveryMethod = deliveryMethod.String
	sess.DeliveryDetail = deliveryDetail.String
	return &sess, nil
}

// scanEmployee scans an EmployeeRecord from a single sql.Row.
func scanEmployee(row *sql.Row) (*models.EmployeeRecord, error) {
	var rec models.EmployeeRecord
	var email, phone, department sql.NullString
	err := row.Scan(&rec.EmployeeID, &rec.Name, &email, &phone, &department)
	if err != nil {
		return nil, err
	}
	rec.Email = email.String
	rec.Phone = phone.String
	rec.Department = department.String
	return &rec, nil
}

// scanManagerVisit scans a ManagerVisit from a single sql.Row.
func scanManagerVisit(row *sql.Row) (*models.ManagerVisit, error) {
	var v models.ManagerVisit
	var office, managerName sql.NullString
	err := row.Scan(&v.EmployeeID, &v.VisitDate, &office, &managerName)
	if err != nil {
		return nil, err
	}
	v.Office = office.String
	v.ManagerName = managerName.String
	return &v, nil
}
