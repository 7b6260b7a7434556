package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/jpcardenas/archivador/internal/logging"
	"github.com/jpcardenas/archivador/internal/records"
)

// ErrorResponse is the JSON body of every non-2xx API response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondJSON writes the body as JSON. Encode failures are logged
// since the headers are already sent.
func respondJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logging.FromContext(r.Context()).Error("encode response",
			"path", r.URL.Path,
			"error", err,
		)
	}
}

func respondError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	logging.FromContext(r.Context()).Error("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", msg,
	)
	respondJSON(w, r, status, ErrorResponse{Error: msg})
}

// respondStoreError maps store sentinel errors onto HTTP statuses.
func respondStoreError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, records.ErrNotFound):
		respondError(w, r, http.StatusNotFound, err.Error())
	case errors.Is(err, records.ErrDuplicateCode), errors.Is(err, records.ErrDuplicateEmail):
		respondError(w, r, http.StatusConflict, err.Error())
	default:
		respondError(w, r, http.StatusInternalServerError, err.Error())
	}
}
