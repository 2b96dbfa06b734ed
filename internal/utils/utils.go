package utils

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// UniqueViolationConstraint returns the violated constraint name when err is
// a PostgreSQL unique constraint violation (code 23505).
func UniqueViolationConstraint(err error) (string, bool) {
	var pge *pgconn.PgError
	if errors.As(err, &pge) && pge.Code == "23505" {
		return pge.ConstraintName, true
	}
	return "", false
}

// IsPGError reports whether error came from PostgreSQL itself, as opposed to
// a driver or application fault. Used to pick the 500 message without
// inspecting error text.
func IsPGError(err error) bool {
	var pge *pgconn.PgError
	return errors.As(err, &pge)
}
