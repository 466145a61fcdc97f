package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"gorm.io/gorm"

	"github.com/traindesk/traindesk/internal/services"
)

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func decodeJSON(r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(nil, r.Body, 1<<20) // 1 MB limit
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// writeServiceError maps service-layer failures onto HTTP statuses with
// friendly text. Validation rejections keep their specific message (they
// already name the offending delegate or course); infrastructure failures
// collapse to a generic 500 so internals don't leak.
func writeServiceError(w http.ResponseWriter, err error) {
	var rejection *services.RejectionError
	switch {
	case errors.As(err, &rejection):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: rejection.Reason, Kind: "validation"})
	case errors.Is(err, services.ErrFormNotFound):
		writeError(w, http.StatusNotFound, "booking form not found")
	case errors.Is(err, services.ErrFormExpired):
		writeError(w, http.StatusGone, "this booking form link has expired; ask us to send a fresh one")
	case errors.Is(err, services.ErrFormAlreadySigned):
		writeError(w, http.StatusConflict, "this booking form has already been signed")
	case errors.Is(err, gorm.ErrRecordNotFound):
		writeError(w, http.StatusNotFound, "not found")
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
