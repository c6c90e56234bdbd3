package repository

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrNotFound is returned when a lookup matches no row.
	ErrNotFound = errors.New("not found")

	// ErrStateChanged is returned when a conditional update matched no row
	// because the row left the state the caller expected.
	ErrStateChanged = errors.New("row state changed")
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// ConflictError reports a uniqueness violation translated into a stable reason.
type ConflictError struct {
	Reason     string
	Constraint string
	// Key identifies the offending row from the caller's perspective, e.g. a user id.
	Key string
}

func (e *ConflictError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("conflict %s on %s (%s)", e.Reason, e.Constraint, e.Key)
	}
	return fmt.Sprintf("conflict %s on %s", e.Reason, e.Constraint)
}

// AsConflict extracts a *ConflictError from err.
func AsConflict(err error) (*ConflictError, bool) {
	var ce *ConflictError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

func isUniqueViolation(err error) (*pgconn.PgError, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return pgErr, true
	}
	return nil, false
}

// translate maps driver errors onto the repository error set. key is attached
// to conflicts so callers can name the offending entity.
func translate(err error, op, key string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if pgErr, ok := isUniqueViolation(err); ok {
		return &ConflictError{
			Reason:     ConflictReason(pgErr.ConstraintName),
			Constraint: pgErr.ConstraintName,
			Key:        key,
		}
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
		return fmt.Errorf("%s: %w (%s)", op, ErrNotFound, pgErr.ConstraintName)
	}
	return fmt.Errorf("%s: %w", op, err)
}
