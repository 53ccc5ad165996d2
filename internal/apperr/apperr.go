// Package apperr defines the error categories shared by the repository,
// the settlement workflow, and the RPC layer.
package apperr

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	// ErrNotFound means a referenced receipt, item, user, or join code does not exist.
	ErrNotFound = errors.New("not found")

	// ErrRepositoryWrite means a mutation against the receipt store failed.
	// Local state is left unmodified and the caller may retry manually.
	ErrRepositoryWrite = errors.New("could not save changes")

	// ErrValidation means the input was rejected before any repository call.
	ErrValidation = errors.New("invalid input")

	// ErrExternalLinkUnavailable means no handler could open a payment link.
	ErrExternalLinkUnavailable = errors.New("cannot open payment link")

	// ErrCheckoutDisabled is returned when checkout preconditions do not hold
	// (nothing selected, no payment method chosen).
	ErrCheckoutDisabled = errors.New("checkout is not available")

	// ErrPermissionDenied means the caller is not allowed to perform the operation.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrVersionConflict means a conditional write lost against a newer version.
	ErrVersionConflict = errors.New("receipt was modified by someone else")
)

// ValidationError describes a rejected input field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Is makes errors.Is(err, ErrValidation) true for every ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Invalid returns a ValidationError for field.
func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// NotFound wraps ErrNotFound with the kind and key that were looked up.
func NotFound(kind, key string) error {
	return fmt.Errorf("%s %q: %w", kind, key, ErrNotFound)
}

// FromValidator converts go-playground validation failures into a
// ValidationError naming the first failing field. Other errors pass through.
func FromValidator(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	return &ValidationError{
		Field:  toSnake(fe.Field()),
		Reason: reasonFor(fe),
	}
}

func reasonFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "required_without_all":
		return "at least one payment method is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "oneof":
		return "must be one of " + fe.Param()
	case "len":
		return "must be exactly " + fe.Param() + " characters"
	default:
		return "failed " + fe.Tag() + " check"
	}
}

func toSnake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Message returns the text shown to a user for err.
func Message(err error) string {
	var verr *ValidationError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &verr):
		return verr.Error()
	case errors.Is(err, ErrNotFound):
		return "We couldn't find that receipt or user."
	case errors.Is(err, ErrVersionConflict):
		return "This receipt changed while you were editing. Reload and try again."
	case errors.Is(err, ErrRepositoryWrite):
		return "Your changes could not be saved. Please try again."
	case errors.Is(err, ErrExternalLinkUnavailable):
		return "The payment app could not be opened. Is it installed?"
	case errors.Is(err, ErrCheckoutDisabled):
		return "Select at least one item and a payment method to check out."
	case errors.Is(err, ErrPermissionDenied):
		return "Only the host can do that."
	default:
		return "Something went wrong."
	}
}
