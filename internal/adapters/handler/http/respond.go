package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/aicompanion/api/internal/core/domain"
)

type errorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}

// writeError maps the error taxonomy to HTTP statuses. Outside debug mode
// only the sanitized taxonomy message is returned.
func writeError(w http.ResponseWriter, err error, debug bool) {
	status := http.StatusInternalServerError
	message := domain.ErrInternal.Error()

	switch {
	case errors.Is(err, domain.ErrValidation):
		status = http.StatusBadRequest
		message = domain.ErrValidation.Error()
	case errors.Is(err, domain.ErrUnauthorized):
		status = http.StatusUnauthorized
		message = domain.ErrUnauthorized.Error()
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
		message = domain.ErrNotFound.Error()
	case errors.Is(err, domain.ErrConflict):
		status = http.StatusConflict
		message = domain.ErrConflict.Error()
	case errors.Is(err, domain.ErrExternalService):
		status = http.StatusBadGateway
		message = domain.ErrExternalService.Error()
	}

	resp := errorResponse{Error: message}
	if debug {
		resp.Detail = err.Error()
	}
	writeJSON(w, status, resp)
}

func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return domain.ErrValidation
	}
	return nil
}
