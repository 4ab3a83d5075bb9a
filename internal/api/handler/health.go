package handler

import (
	"net/http"
	"time"

	"github.com/teamfolio/teamfolio/internal/api/response"
)

// HealthInfo describes the static facts reported by the health endpoint.
type HealthInfo struct {
	Version           string
	StoreDriver       string
	JSONBinConfigured bool
}

// HealthHandler handles the GET /api/health endpoint. It reports
// configuration only and never probes the store.
type HealthHandler struct {
	info HealthInfo
	now  func() time.Time
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(info HealthInfo) *HealthHandler {
	return &HealthHandler{info: info, now: time.Now}
}

type healthData struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
	Backend   string `json:"backend"`
	JSONBin   string `json:"jsonbin"`
	Store     string `json:"store"`
	Version   string `json:"version"`
}

// ServeHTTP handles the health check request.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	jsonbin := "Not configured"
	if h.info.JSONBinConfigured {
		jsonbin = "Configured"
	}

	response.JSON(w, http.StatusOK, healthData{
		Success:   true,
		Message:   "Team Portfolio API is running",
		Timestamp: h.now().UTC().Format("2006-01-02T15:04:05.000Z"),
		Backend:   "Go/chi",
		JSONBin:   jsonbin,
		Store:     h.info.StoreDriver,
		Version:   h.info.Version,
	})
}
