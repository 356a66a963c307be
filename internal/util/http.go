package util

import (
	"encoding/json"
	"net/http"
)

// ErrorResponse is the envelope every failed API call returns. Code is
// a stable machine-readable identifier; Message is safe to show to the
// user as-is.
type ErrorResponse struct {
	Code      string `json:"error"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func WriteError(w http.ResponseWriter, status int, code, msg, reqID string) {
	WriteJSON(w, status, ErrorResponse{Code: code, Message: msg, RequestID: reqID})
}
