package service

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"connectrpc.com/connect"
	"github.com/go-playground/validator/v10"

	"github.com/mmynk/tabshare/internal/apperr"
	"github.com/mmynk/tabshare/internal/auth"
	"github.com/mmynk/tabshare/internal/middleware"
	"github.com/mmynk/tabshare/internal/selection"
	"github.com/mmynk/tabshare/internal/settlement"
)

var validate = newValidator()

// newValidator reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateRequest checks msg's validate tags.
func validateRequest(msg any) error {
	if err := validate.Struct(msg); err != nil {
		return apperr.FromValidator(err)
	}
	return nil
}

// requireSession returns the caller's session or an unauthenticated error.
func requireSession(ctx context.Context) (settlement.Session, error) {
	sess, ok := middleware.SessionFromContext(ctx)
	if !ok {
		return settlement.Session{}, connect.NewError(connect.CodeUnauthenticated, auth.ErrMissingToken)
	}
	return sess, nil
}

// toConnectError maps domain errors onto Connect codes.
func toConnectError(err error) error {
	var connectErr *connect.Error
	if errors.As(err, &connectErr) {
		return err
	}

	code := connect.CodeInternal
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		code = connect.CodeNotFound
	case errors.Is(err, apperr.ErrValidation),
		errors.Is(err, apperr.ErrCheckoutDisabled),
		errors.Is(err, selection.ErrItemPaid),
		errors.Is(err, auth.ErrWeakPassword):
		code = connect.CodeInvalidArgument
	case errors.Is(err, apperr.ErrPermissionDenied):
		code = connect.CodePermissionDenied
	case errors.Is(err, apperr.ErrVersionConflict):
		code = connect.CodeAborted
	case errors.Is(err, auth.ErrEmailExists):
		code = connect.CodeAlreadyExists
	case errors.Is(err, auth.ErrInvalidCredentials):
		code = connect.CodeUnauthenticated
	}
	return connect.NewError(code, err)
}

// hostOnly is returned when a guest attempts a host action.
func hostOnly(action string) error {
	return fmt.Errorf("only the host can %s: %w", action, apperr.ErrPermissionDenied)
}
