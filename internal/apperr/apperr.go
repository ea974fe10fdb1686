// Package apperr holds the error taxonomy shared by the stores, the session
// gate and the catalog service. Handlers map these onto HTTP statuses.
package apperr

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrValidation tags malformed input; the concrete error is *ValidationError.
	ErrValidation = errors.New("validation failed")

	// ErrConstraintViolation tags a storage uniqueness breach; see *ConstraintViolationError.
	ErrConstraintViolation = errors.New("constraint violation")

	// ErrInvalidCredentials never says whether the email exists.
	ErrInvalidCredentials = errors.New("invalid credentials")

	ErrAuthenticationRequired = errors.New("authentication required")
	ErrForbidden              = errors.New("insufficient permissions")
	ErrNotFound               = errors.New("resource not found")

	// ErrConflict is a race the built-in retry could not resolve.
	ErrConflict = errors.New("conflicting concurrent update")
)

// FieldErrors maps a form field to its violation messages in the order found.
type FieldErrors map[string][]string

func (f FieldErrors) Add(field, msg string) {
	f[field] = append(f[field], msg)
}

func (f FieldErrors) Has(field string) bool {
	return len(f[field]) > 0
}

func (f FieldErrors) Empty() bool {
	return len(f) == 0
}

// Fields returns the field names sorted, for stable messages.
func (f FieldErrors) Fields() []string {
	out := make([]string, 0, len(f))
	for k := range f {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// ValidationError lists every violated field of one submission.
type ValidationError struct {
	Fields FieldErrors
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s", strings.Join(e.Fields.Fields(), ", "))
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// Validation returns nil when fields is empty, a *ValidationError otherwise.
func Validation(fields FieldErrors) error {
	if fields.Empty() {
		return nil
	}
	return &ValidationError{Fields: fields}
}

// InvalidField is shorthand for a single-field validation error.
func InvalidField(field, msg string) error {
	fe := FieldErrors{}
	fe.Add(field, msg)
	return &ValidationError{Fields: fe}
}

// ConstraintViolationError reports a uniqueness breach caught by storage.
// Field is empty when the offending column could not be identified.
type ConstraintViolationError struct {
	Field   string
	Message string
	Err     error
}

func (e *ConstraintViolationError) Error() string {
	switch {
	case e.Message != "":
		return e.Message
	case e.Field != "":
		return fmt.Sprintf("constraint violation on %s", e.Field)
	default:
		return ErrConstraintViolation.Error()
	}
}

func (e *ConstraintViolationError) Is(target error) bool { return target == ErrConstraintViolation }

func (e *ConstraintViolationError) Unwrap() error { return e.Err }

// FieldErrors renders the violation the same way a ValidationError would.
func (e *ConstraintViolationError) FieldErrors() FieldErrors {
	fe := FieldErrors{}
	field := e.Field
	if field == "" {
		field = "form"
	}
	fe.Add(field, e.Error())
	return fe
}
