package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/securechat/internal/common"
)

type errorBody struct {
	Detail string `json:"detail"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	if status == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", "Bearer")
	}
	writeJSON(w, status, errorBody{Detail: detail})
}

// statusFor maps service errors onto HTTP status codes and client-facing
// messages. Unknown errors are internal.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, common.ErrorAlreadyExists):
		return http.StatusBadRequest, "Username already registered"
	case errors.Is(err, common.ErrorUnauthorized):
		return http.StatusUnauthorized, "Could not validate credentials"
	case errors.Is(err, common.ErrPublicKeyNotFound):
		return http.StatusNotFound, "Public key not found for user"
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound, "Not found"
	case errors.Is(err, common.ErrorValidation):
		return http.StatusUnprocessableEntity, err.Error()
	case errors.Is(err, common.ErrorForbidden):
		return http.StatusForbidden, "Forbidden"
	case errors.Is(err, common.ErrAttachmentsDisabled):
		return http.StatusNotImplemented, "Attachments are disabled"
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}

func (s *HTTPServer) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, detail := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error(r.Context(), "request failed", "error", err.Error(), "request_id", requestIDFrom(r.Context()))
	}
	writeDetail(w, status, detail)
}
