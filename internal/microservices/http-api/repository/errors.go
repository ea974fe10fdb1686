package repository

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"popcornhour/internal/apperr"
)

// notFound maps gorm's miss onto the shared taxonomy and passes anything else through.
func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.ErrNotFound
	}
	return err
}

// isUniqueViolation recognises a uniqueness breach from postgres (SQLSTATE 23505),
// sqlite, or gorm's translated ErrDuplicatedKey.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}

	// Fallback: string match (covers sqlite and wrapped errors that lose type info).
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "sqlstate 23505") ||
		strings.Contains(msg, "unique constraint failed") ||
		strings.Contains(msg, "duplicate key")
}

// constraintViolation wraps a uniqueness breach, naming the first candidate
// column that appears in the constraint name or driver message.
func constraintViolation(err error, candidates ...string) error {
	detail := strings.ToLower(err.Error())
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		detail = strings.ToLower(pgErr.ConstraintName + " " + pgErr.Detail)
	}

	field := ""
	for _, c := range candidates {
		if strings.Contains(detail, c) {
			field = c
			break
		}
	}
	return &apperr.ConstraintViolationError{Field: field, Err: err}
}
