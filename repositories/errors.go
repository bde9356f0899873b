package repositories

import (
	"errors"
	"strings"
)

// Sentinel errors the handlers map onto HTTP statuses.
var (
	ErrPatientNotFound = errors.New("patient not found")
	ErrVisitNotFound   = errors.New("visit not found")
	ErrNoVisits        = errors.New("patient has no visits to attach photos to")
	ErrDNIConflict     = errors.New("dni already belongs to another patient")
	ErrVersionMismatch = errors.New("etag does not match current resource version")
	ErrDuplicatePhoto  = errors.New("a photo already exists for this visit, type and index")

	// ErrVisitPatientRequired rejects a visit create-by-id with no owning patient.
	ErrVisitPatientRequired = errors.New("patient is required to create a visit")
)

// isUniqueViolation recognizes unique-constraint failures from postgres
// (SQLSTATE 23505) and sqlite without importing driver-specific error types.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "23505") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint")
}
