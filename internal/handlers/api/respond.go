package api

import (
	"encoding/json"
	"log"
	"net/http"

	sheeterr "github.com/KirkDiggler/aionia-sheet/internal/errors"
)

type errorResponse struct {
	Error string `json:"error"`
}

type successResponse struct {
	Success bool `json:"success"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("API: failed to write response: %v", err)
	}
}

// writeError maps err to a status; upstream failures are logged and not echoed
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := sheeterr.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		log.Printf("API: %s %s failed: %v", r.Method, r.URL.Path, err)
		writeErrorMessage(w, status, "internal server error")
		return
	}
	writeErrorMessage(w, status, err.Error())
}

func writeErrorMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}
