package httpx

import (
	"encoding/json"
	"errors"
	"github.com/ariefcatur/go-marketplace/internal/apperr"
	"github.com/go-chi/chi/v5/middleware"
	"log/slog"
	"net/http"
)

const internalMessage = "an unexpected error occurred"

// envelope is the shape of every JSON response.
type envelope struct {
	Data             any      `json:"data,omitempty"`
	Error            string   `json:"error,omitempty"`
	ValidationErrors []string `json:"validationErrors,omitempty"`
	Meta             any      `json:"meta,omitempty"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func ok(w http.ResponseWriter, code int, data any) {
	writeJSON(w, code, envelope{Data: data})
}

func okMeta(w http.ResponseWriter, code int, data, meta any) {
	writeJSON(w, code, envelope{Data: data, Meta: meta})
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperr.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, apperr.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, apperr.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, apperr.ErrBusinessRule):
		return http.StatusUnprocessableEntity
	case errors.Is(err, apperr.ErrConflict):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// fail writes err as an envelope. Errors without a kind are logged and hidden from the client.
func fail(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	code := statusOf(err)
	if code == http.StatusInternalServerError {
		log.ErrorContext(r.Context(), "request failed",
			"method", r.Method,
			"uri", r.RequestURI,
			"request_id", middleware.GetReqID(r.Context()),
			"err", err,
		)
		writeJSON(w, code, envelope{Error: internalMessage})
		return
	}
	writeJSON(w, code, envelope{Error: err.Error(), ValidationErrors: apperr.Fields(err)})
}
