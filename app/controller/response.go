package controller

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"catalogo-armazones/service"

	"go.uber.org/zap"
)

// pathRequest is the body of the endpoints that load a file from disk
type pathRequest struct {
	Path string `json:"path"`
}

func writeJSON(w http.ResponseWriter, log *zap.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("failed to encode response", zap.Error(err))
	}
}

func decodeJSON(r *http.Request, v any) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// statusForError maps service errors to HTTP status codes: missing configuration
// and incomplete data are client errors, anything else is a server error
func statusForError(err error) int {
	switch {
	case errors.Is(err, service.ErrRowNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrMissingImages):
		return http.StatusUnprocessableEntity
	case errors.Is(err, service.ErrMissingSentinel),
		errors.Is(err, service.ErrNoCardTemplate):
		return http.StatusUnprocessableEntity
	case errors.Is(err, service.ErrNoSheet),
		errors.Is(err, service.ErrNoCards),
		errors.Is(err, service.ErrNoCatalog),
		errors.Is(err, service.ErrMissingTemplate),
		errors.Is(err, service.ErrMissingMapping):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, log *zap.Logger, op string, err error) {
	status := statusForError(err)
	if status >= http.StatusInternalServerError {
		log.Error(op+" failed", zap.Error(err))
	} else {
		log.Warn(op+" rejected", zap.Error(err), zap.Int("status", status))
	}
	http.Error(w, err.Error(), status)
}
