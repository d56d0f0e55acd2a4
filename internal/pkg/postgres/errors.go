package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// SQLSTATE codes of the integrity constraint violation class.
const (
	CodeForeignKeyViolation = "23503"
	CodeUniqueViolation     = "23505"
	CodeCheckViolation      = "23514"
)

// ConstraintCode returns the SQLSTATE of an integrity violation, if err is one.
func ConstraintCode(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return "", false
	}
	switch pgErr.Code {
	case CodeForeignKeyViolation, CodeUniqueViolation, CodeCheckViolation:
		return pgErr.Code, true
	}
	return "", false
}
