package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrNotFound = errors.New("record not found")

	// ErrDuplicate maps the store's unique-key rejection; the unique
	// indexes, not the workflow pre-checks, are the authority on
	// duplicates.
	ErrDuplicate = errors.New("duplicate key")

	// ErrVerificationNotFound covers missing, expired and mismatched
	// verification records alike.
	ErrVerificationNotFound = errors.New("verification record not found")

	ErrNoPendingUser = errors.New("no pending user")
)

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
