package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// uniqueViolation is the SQLSTATE Postgres raises when an insert hits
// a unique constraint.
const uniqueViolation = "23505"

// isUniqueViolation reports whether err is a unique-constraint failure
// from Postgres.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
