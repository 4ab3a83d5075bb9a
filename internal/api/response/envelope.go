package response

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// Error is the body of every failed API response.
type Error struct {
	Success   bool   `json:"success"`
	Error     string `json:"error"`
	Details   any    `json:"details,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

// Message is the body of success responses that carry only a message.
type Message struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// JSON writes v as a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// OK writes a 200 response with a success message.
func OK(w http.ResponseWriter, message string) {
	JSON(w, http.StatusOK, Message{Success: true, Message: message})
}

// Err writes an error JSON response.
func Err(w http.ResponseWriter, status int, message string, requestID string) {
	JSON(w, status, Error{
		Success:   false,
		Error:     message,
		RequestID: requestID,
	})
}

// ErrWithDetails writes an error JSON response with additional details.
func ErrWithDetails(w http.ResponseWriter, status int, message string, details any, requestID string) {
	JSON(w, status, Error{
		Success:   false,
		Error:     message,
		Details:   details,
		RequestID: requestID,
	})
}
