package repository

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrNotFound marks an expected absence (missing row on a lookup).
	ErrNotFound = errors.New("not found")

	// ErrConflict marks a uniqueness violation, e.g. a second Brief or DoD
	// for the same task.
	ErrConflict = errors.New("already exists")

	// ErrInvalidReference marks a foreign-key violation, e.g. a write that
	// points at a user or project row that does not exist.
	ErrInvalidReference = errors.New("referenced row does not exist")
)

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

// mapError translates driver errors into the repository sentinels so callers
// can branch with errors.Is instead of inspecting pg internals.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolation:
			return ErrConflict
		case foreignKeyViolation:
			return ErrInvalidReference
		}
	}
	return err
}
