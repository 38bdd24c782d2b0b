// Package common defines shared constants and sentinel errors used across
// the relay server, its transports and the client. Callers should use
// errors.Is to match these values.
package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors.
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorForbidden    = errors.New("forbidden")

	// Validation errors are produced by the transports before calling services.
	ErrorValidation = errors.New("validation error")

	ErrAttachmentsDisabled = errors.New("attachments are disabled")

	// ErrPublicKeyNotFound is returned for an identity without a stored key.
	ErrPublicKeyNotFound = fmt.Errorf("%w: public key not found for user", ErrorNotFound)

	// Session guard rejection reasons. All of them are unauthorized.
	ErrMissingCredentials = fmt.Errorf("%w: missing credentials", ErrorUnauthorized)
	ErrInvalidToken       = fmt.Errorf("%w: invalid token", ErrorUnauthorized)
	ErrTokenExpired       = fmt.Errorf("%w: token expired", ErrorUnauthorized)
	ErrUnknownSubject     = fmt.Errorf("%w: unknown subject", ErrorUnauthorized)
)
