package tokens

import "errors"

var (
	ErrMalformedToken    = errors.New("malformed token")
	ErrInvalidSignature  = errors.New("invalid token signature")
	ErrExpired           = errors.New("token expired")
	ErrNotYetValid       = errors.New("token not yet valid")
	ErrTokenTypeMismatch = errors.New("token type mismatch")

	ErrConfig = errors.New("invalid token codec config")
)
