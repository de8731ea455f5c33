package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
)

type failure struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeFailure(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, failure{Success: false, Error: msg})
}

// maxBodyBytes caps request bodies; a full appliance list is a few kilobytes.
const maxBodyBytes = 1 << 20

func limitBody(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
}

// writeDecodeFailure answers a body that could not be read or parsed.
func writeDecodeFailure(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeFailure(w, http.StatusRequestEntityTooLarge, "request body too large")
		return
	}
	writeFailure(w, http.StatusBadRequest, "invalid request body")
}

// sessionFailure answers a request whose session could not be resolved.
func sessionFailure(w http.ResponseWriter) {
	writeFailure(w, http.StatusServiceUnavailable, "session unavailable, please retry")
}

// isJSON reports whether the request body is JSON rather than a form.
func isJSON(r *http.Request) bool {
	ct := r.Header.Get("Content-Type")
	return ct == "" || strings.HasPrefix(ct, "application/json")
}
