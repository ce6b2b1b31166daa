package domain

import (
	"errors"
	"fmt"
)

// Base errors of the taxonomy. Services wrap these with fmt.Errorf and %w,
// the HTTP layer maps them to status codes with errors.Is.
var (
	ErrValidation      = errors.New("invalid input")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("already exists")
	ErrExternalService = errors.New("external service unavailable")
	ErrInternal        = errors.New("internal server error")
)

var (
	ErrInvalidCredentials = fmt.Errorf("%w: invalid credentials", ErrUnauthorized)
	ErrEmailNotVerified   = fmt.Errorf("%w: email not verified", ErrUnauthorized)
	ErrInvalidToken       = fmt.Errorf("%w: invalid token", ErrUnauthorized)
	ErrTokenExpired       = fmt.Errorf("%w: token expired", ErrUnauthorized)
	ErrWrongTokenKind     = fmt.Errorf("%w: wrong token kind", ErrUnauthorized)
	ErrInvalidCode        = fmt.Errorf("%w: invalid verification code", ErrUnauthorized)
	ErrCodeExpired        = fmt.Errorf("%w: verification code expired", ErrUnauthorized)

	ErrUserNotFound = fmt.Errorf("user %w", ErrNotFound)
	ErrUserExists   = fmt.Errorf("user %w", ErrConflict)
)
