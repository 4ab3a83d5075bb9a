package handler

import (
	"log/slog"
	"net/http"
	"sync"

	"sigs.k8s.io/yaml"

	"github.com/teamfolio/teamfolio/internal/api/middleware"
	"github.com/teamfolio/teamfolio/internal/api/response"
)

const openAPICacheControl = "public, max-age=300"

// OpenAPIHandler serves the embedded API description as YAML and as JSON.
type OpenAPIHandler struct {
	doc []byte

	once    sync.Once
	asJSON  []byte
	convErr error
}

// NewOpenAPIHandler creates a handler for the given YAML document.
func NewOpenAPIHandler(yamlDoc []byte) *OpenAPIHandler {
	return &OpenAPIHandler{doc: yamlDoc}
}

// ServeHTTP handles GET /openapi.json. The YAML is converted once and reused.
func (h *OpenAPIHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.once.Do(func() {
		h.asJSON, h.convErr = yaml.YAMLToJSON(h.doc)
	})

	if h.convErr != nil {
		requestID := middleware.GetRequestID(r.Context())
		slog.Error("failed to convert OpenAPI document to JSON", "error", h.convErr, "requestId", requestID)
		response.Err(w, http.StatusInternalServerError, "Failed to convert OpenAPI document", requestID)
		return
	}

	h.write(w, "application/json", h.asJSON)
}

// YAML handles GET /openapi.yaml with the document as embedded.
func (h *OpenAPIHandler) YAML(w http.ResponseWriter, _ *http.Request) {
	h.write(w, "application/yaml", h.doc)
}

func (h *OpenAPIHandler) write(w http.ResponseWriter, contentType string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", openAPICacheControl)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		slog.Error("failed to write OpenAPI response", "contentType", contentType, "error", err)
	}
}
