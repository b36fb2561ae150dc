package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/Strob0t/notestream/internal/domain"
)

type errorResponse struct {
	Error string `json:"error"`
}

// readJSON decodes a request body of at most bodyLimit bytes into T. On
// failure it has already written the 400/413 response.
func readJSON[T any](w http.ResponseWriter, r *http.Request) (T, bool) {
	var v T
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, bodyLimit))
	if err := dec.Decode(&v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
		} else {
			writeError(w, http.StatusBadRequest, "invalid request body")
		}
		return v, false
	}
	return v, true
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Warn("write json response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeNoteError maps note service errors: not found is 404, validation is
// 400 with the validation detail, anything else is a logged 500.
func writeNoteError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "note not found")
	case errors.Is(err, domain.ErrValidation):
		prefix := domain.ErrValidation.Error() + ": "
		msg := err.Error()
		if _, detail, ok := strings.Cut(msg, prefix); ok {
			msg = detail
		}
		writeError(w, http.StatusBadRequest, msg)
	default:
		slog.Error("note request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
