package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/teamfolio/teamfolio/internal/api/middleware"
	"github.com/teamfolio/teamfolio/internal/api/response"
	"github.com/teamfolio/teamfolio/internal/api/validation"
	"github.com/teamfolio/teamfolio/internal/auth"
	"github.com/teamfolio/teamfolio/internal/roster"
)

// MaxBodyBytes caps JSON request bodies; a 2 MiB photo as a data URL fits.
const MaxBodyBytes = 10 << 20

type addMemberRequest struct {
	Name        string `json:"name"`
	Role        string `json:"role"`
	Portfolio   string `json:"portfolio"`
	ImageBase64 string `json:"imageBase64"`
	ImageURL    string `json:"imageUrl"`
	Password    string `json:"password"`
}

type passwordRequest struct {
	Password string `json:"password"`
}

type listResponse struct {
	Success     bool            `json:"success"`
	Members     []roster.Member `json:"team_members"`
	Total       int             `json:"total"`
	LastUpdated string          `json:"last_updated,omitempty"`
}

type addResponse struct {
	Success bool           `json:"success"`
	Message string         `json:"message"`
	Member  *roster.Member `json:"member"`
}

// MemberHandler handles the team member endpoints.
type MemberHandler struct {
	svc  *roster.Service
	auth *auth.Service
}

// NewMemberHandler creates a new MemberHandler.
func NewMemberHandler(svc *roster.Service, authService *auth.Service) *MemberHandler {
	return &MemberHandler{svc: svc, auth: authService}
}

// List handles GET /api/team-members.
func (h *MemberHandler) List(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	doc, err := h.svc.List(r.Context())
	if err != nil {
		slog.Error("failed to fetch team members", "error", err, "requestId", requestID)
		response.Err(w, http.StatusInternalServerError, "Failed to fetch team members", requestID)
		return
	}

	response.JSON(w, http.StatusOK, listResponse{
		Success:     true,
		Members:     doc.Members,
		Total:       len(doc.Members),
		LastUpdated: doc.LastUpdated,
	})
}

// Add handles POST /api/add-member.
func (h *MemberHandler) Add(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	var req addMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "Request body must be valid JSON", requestID)
		return
	}

	msg, fieldErrors := validation.ValidateAddMemberRequest(validation.AddMemberRequest{
		Name:      req.Name,
		Role:      req.Role,
		Portfolio: req.Portfolio,
	})
	if msg != "" {
		response.ErrWithDetails(w, http.StatusBadRequest, msg, fieldErrors, requestID)
		return
	}

	if !h.authorize(w, r, req.Password) {
		return
	}

	m, err := h.svc.Add(r.Context(), roster.NewMember{
		Name:        req.Name,
		Role:        req.Role,
		Portfolio:   req.Portfolio,
		ImageBase64: req.ImageBase64,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		switch {
		case errors.Is(err, roster.ErrDuplicatePortfolio):
			response.Err(w, http.StatusBadRequest, "This portfolio URL already exists", requestID)
		case errors.Is(err, roster.ErrConflict):
			response.Err(w, http.StatusConflict, "Team roster was modified concurrently, please retry", requestID)
		default:
			slog.Error("failed to add team member", "error", err, "requestId", requestID)
			response.Err(w, http.StatusInternalServerError, "Failed to add team member", requestID)
		}
		return
	}

	slog.Info("team member added", "id", m.ID, "requestId", requestID)

	response.JSON(w, http.StatusOK, addResponse{
		Success: true,
		Message: "Team member added successfully",
		Member:  m,
	})
}

// Delete handles DELETE /api/delete-member/{id}.
func (h *MemberHandler) Delete(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	var req passwordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		response.Err(w, http.StatusBadRequest, "Request body must be valid JSON", requestID)
		return
	}

	if !h.authorize(w, r, req.Password) {
		return
	}

	id := chi.URLParam(r, "id")
	removed, err := h.svc.Delete(r.Context(), id)
	if err != nil {
		if errors.Is(err, roster.ErrConflict) {
			response.Err(w, http.StatusConflict, "Team roster was modified concurrently, please retry", requestID)
			return
		}
		slog.Error("failed to delete team member", "error", err, "id", id, "requestId", requestID)
		response.Err(w, http.StatusInternalServerError, "Failed to delete team member", requestID)
		return
	}

	slog.Info("team member delete processed", "id", id, "removed", removed, "requestId", requestID)

	response.OK(w, "Team member deleted successfully")
}

func (h *MemberHandler) authorize(w http.ResponseWriter, r *http.Request, password string) bool {
	err := h.auth.Authorize(password, middleware.HasAdminSession(r.Context()))
	if err == nil {
		return true
	}
	requestID := middleware.GetRequestID(r.Context())
	slog.Warn("rejected admin request", "path", r.URL.Path, "requestId", requestID)
	response.Err(w, http.StatusUnauthorized, "Invalid admin password", requestID)
	return false
}
