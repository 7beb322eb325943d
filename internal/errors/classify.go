package errors

import (
	"context"
	stderrors "errors"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
)

// Postgres SQLSTATE codes.
const (
	pgLockNotAvailable     = "55P03"
	pgQueryCanceled        = "57014"
	pgDeadlockDetected     = "40P01"
	pgSerializationFailure = "40001"
	pgUniqueViolation      = "23505"
)

// MySQL server error numbers.
const (
	myLockWaitTimeout = 1205
	myDeadlock        = 1213
	myDuplicateEntry  = 1062
)

// Classify maps storage driver failures onto the concurrency taxonomy.
// Errors that already carry a DomainError, or that are not lock related,
// are returned unchanged.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := As(err); ok {
		return err
	}

	var pgErr *pgconn.PgError
	if stderrors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgLockNotAvailable, pgQueryCanceled:
			return ErrLockTimeout.Wrap(err)
		case pgDeadlockDetected, pgSerializationFailure:
			return ErrConflict.Wrap(err)
		}
		return err
	}

	var myErr *mysql.MySQLError
	if stderrors.As(err, &myErr) {
		switch myErr.Number {
		case myLockWaitTimeout:
			return ErrLockTimeout.Wrap(err)
		case myDeadlock:
			return ErrConflict.Wrap(err)
		}
		return err
	}

	if stderrors.Is(err, context.DeadlineExceeded) {
		return ErrLockTimeout.Wrap(err)
	}
	return err
}

// IsUniqueViolation reports whether err is a unique-constraint failure from
// Postgres or MySQL.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if stderrors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	var myErr *mysql.MySQLError
	if stderrors.As(err, &myErr) {
		return myErr.Number == myDuplicateEntry
	}
	return false
}
