package client

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/securechat/internal/common"
)

var ErrUnavailable = errors.New("server unavailable")

// APIError is a non-2xx answer from the relay. It unwraps to the matching
// sentinel from the common package so callers can use errors.Is.
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("relay returned %d", e.Status)
	}
	return fmt.Sprintf("relay returned %d: %s", e.Status, e.Detail)
}

func (e *APIError) Unwrap() error {
	switch e.Status {
	case http.StatusBadRequest:
		return common.ErrorAlreadyExists
	case http.StatusUnauthorized:
		return common.ErrorUnauthorized
	case http.StatusForbidden:
		return common.ErrorForbidden
	case http.StatusNotFound:
		if e.Detail == "Public key not found for user" {
			return common.ErrPublicKeyNotFound
		}
		return common.ErrorNotFound
	case http.StatusUnprocessableEntity:
		return common.ErrorValidation
	case http.StatusNotImplemented:
		return common.ErrAttachmentsDisabled
	default:
		return common.ErrorInternal
	}
}
