package handler

import (
	"encoding/json"
	"net/http"

	ledgerdomain "occasion-ledger/internal/domain/ledger"
)

const msgInvalidJSON = "invalid json body"

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// writeFieldErrors renders {"field": ["message", ...]} with 400.
func writeFieldErrors(w http.ResponseWriter, fields map[string][]string) {
	writeJSON(w, http.StatusBadRequest, fields)
}

func writeNonFieldError(w http.ResponseWriter, message string) {
	writeFieldErrors(w, map[string][]string{ledgerdomain.NonFieldErrors: {message}})
}

func writeInternalError(w http.ResponseWriter) {
	writeError(w, http.StatusInternalServerError, "internal error")
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func decodeJSON(r *http.Request, dst interface{}) error {
	return json.NewDecoder(r.Body).Decode(dst)
}
