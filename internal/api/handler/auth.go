package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/teamfolio/teamfolio/internal/api/middleware"
	"github.com/teamfolio/teamfolio/internal/api/response"
	"github.com/teamfolio/teamfolio/internal/auth"
)

type verifyResponse struct {
	Success bool `json:"success"`
}

// AuthHandler handles admin login and logout.
type AuthHandler struct {
	auth *auth.Service
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *auth.Service) *AuthHandler {
	return &AuthHandler{auth: authService}
}

// Verify handles POST /api/verify-password. A correct password also starts an
// admin session for the browser.
func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req passwordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.JSON(w, http.StatusOK, verifyResponse{Success: false})
		return
	}

	if !h.auth.Verify(req.Password) {
		response.JSON(w, http.StatusOK, verifyResponse{Success: false})
		return
	}

	if sessions := h.auth.Sessions(); sessions != nil {
		if err := sessions.Login(w, r); err != nil {
			slog.Error("failed to save admin session", "error", err, "requestId", requestID)
		}
	}

	response.JSON(w, http.StatusOK, verifyResponse{Success: true})
}

// Logout handles POST /api/logout.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	if sessions := h.auth.Sessions(); sessions != nil {
		if err := sessions.Logout(w, r); err != nil {
			slog.Error("failed to clear admin session", "error", err, "requestId", requestID)
		}
	}

	response.OK(w, "Logged out")
}
