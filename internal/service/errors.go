package service

import "errors"

var (
	ErrValidation        = errors.New("validation failed")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrForbidden         = errors.New("forbidden")
	ErrDuplicateIdentity = errors.New("login or email already registered")
	// ErrTokenReuse means a refresh token was presented that is no longer on
	// record. All sessions of its owner have been revoked by then.
	ErrTokenReuse = errors.New("refresh token reuse")
	ErrNotFound   = errors.New("not found")
)

// ValidationError names the offending input field. errors.Is(err,
// ErrValidation) holds for it.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Reason
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
