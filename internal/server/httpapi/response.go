// Package httpapi exposes the sync and account contracts over JSON HTTP.
package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/daybook-app/daybook/internal/api"
)

func writeJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, statusCode int, msg string) {
	writeJSON(w, statusCode, api.ErrorResponse{Error: msg})
}

func writeValidationError(w http.ResponseWriter, fields map[string][]string) {
	writeJSON(w, http.StatusUnprocessableEntity, api.ErrorResponse{
		Error:  "validation failed",
		Errors: fields,
	})
}
