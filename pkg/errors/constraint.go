package errors

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

// integrityClass is the SQLSTATE class for integrity constraint violations.
const integrityClass = "23"

// IsConstraintViolation reports whether err came from a database integrity
// constraint (SQLSTATE class 23, or SQLite's "constraint failed").
func IsConstraintViolation(err error) bool {
	if err == nil {
		return false
	}
	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) {
		return strings.HasPrefix(pgxErr.Code, integrityClass)
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code.Class() == integrityClass
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code == sqlite3.ErrConstraint
	}
	return strings.Contains(strings.ToLower(err.Error()), "constraint failed")
}

// FromDatabase converts a persistence error into a typed error. Constraint
// violations become CodeDBConstraint, everything else CodeInternal.
func FromDatabase(err error, message string) *Error {
	if err == nil {
		return nil
	}
	if typed := As(err); typed != nil {
		return typed
	}
	if IsConstraintViolation(err) {
		return Wrap(CodeDBConstraint, err, message)
	}
	return Wrap(CodeInternal, err, message)
}
