// Package postgres implements link storage on top of PostgreSQL.
package postgres

import (
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

const shortCodeConstraint = "uq_links_short_code"

// isShortCodeViolation reports whether err is a unique violation raised by
// the short code constraint. Violations of other constraints are not treated
// as code collisions.
func isShortCodeViolation(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgerrcode.UniqueViolation {
		return false
	}
	return pgErr.ConstraintName == "" || pgErr.ConstraintName == shortCodeConstraint
}
