package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const UniqueViolationCode = "23505"

func AsPgError(err error) (*pgconn.PgError, bool) {
	var pe *pgconn.PgError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}

// IsUniqueViolation reports whether err is a unique violation, optionally on a specific constraint.
func IsUniqueViolation(err error, constraint string) bool {
	pe, ok := AsPgError(err)
	if !ok || pe.Code != UniqueViolationCode {
		return false
	}
	return constraint == "" || pe.ConstraintName == constraint
}
