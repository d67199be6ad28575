package utils

import (
	"encoding/json"
	"net/http"

	"github.com/brizzai/tokenctl/internal/logger"
	"github.com/brizzai/tokenctl/internal/requester"
	"go.uber.org/zap"
)

// ErrorResponse is the error body of the authorizations API
type ErrorResponse struct {
	Message          string                 `json:"message"`
	DocumentationURL string                 `json:"documentation_url,omitempty"`
	Errors           []requester.FieldError `json:"errors,omitempty"`
}

// WriteJSON writes a JSON response with the given status
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("Failed to encode JSON response", zap.Error(err))
	}
}

// WriteError writes an API error body
func WriteError(w http.ResponseWriter, status int, message string, fieldErrors ...requester.FieldError) {
	WriteJSON(w, status, ErrorResponse{
		Message: message,
		Errors:  fieldErrors,
	})
}
