package repository

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// isUniqueViolation reports whether a DB error is a unique-constraint
// violation. Postgres is detected via SQLSTATE 23505; the string fallback
// covers SQLite in tests.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "23505")
}

// conflictField names the identity column behind a unique violation so the
// conflict message says which value is taken. Postgres reports the constraint
// name and detail, SQLite names the column in the error text.
func conflictField(err error) string {
	msg := err.Error()
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		msg = pgErr.ConstraintName + " " + pgErr.Detail
	}
	if strings.Contains(strings.ToLower(msg), "email") {
		return "Email"
	}
	return "Username"
}
