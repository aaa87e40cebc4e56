package postgres

import (
	"errors"

	"github.com/lib/pq"
)

const pqUniqueViolation = "23505"

// reportDedupConstraint is the unique index backing report
// deduplication per (message id, room id).
const reportDedupConstraint = "reports_message_room_key"

// IsUniqueViolation checks if an error is a PostgreSQL unique
// constraint violation. With an empty constraint name it matches any
// unique violation, otherwise only the named one.
func IsUniqueViolation(err error, constraint string) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}

	if string(pqErr.Code) != pqUniqueViolation {
		return false
	}

	if constraint == "" {
		return true
	}

	return pqErr.Constraint == constraint
}

// IsDuplicateReport reports whether err is the unique violation raised
// when two reports race for the same (message, room) pair.
func IsDuplicateReport(err error) bool {
	return IsUniqueViolation(err, reportDedupConstraint)
}
