package response_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teamfolio/teamfolio/internal/api/response"
)

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestOK(t *testing.T) {
	w := httptest.NewRecorder()

	response.OK(w, "Team member deleted successfully")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	body := decode(t, w)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Team member deleted successfully", body["message"])
}

func TestErr(t *testing.T) {
	w := httptest.NewRecorder()

	response.Err(w, http.StatusUnauthorized, "Invalid admin password", "req-1")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	body := decode(t, w)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Invalid admin password", body["error"])
	assert.Equal(t, "req-1", body["requestId"])
	assert.NotContains(t, body, "details")
}

func TestErr_OmitsEmptyRequestID(t *testing.T) {
	w := httptest.NewRecorder()

	response.Err(w, http.StatusInternalServerError, "boom", "")

	assert.NotContains(t, decode(t, w), "requestId")
}

func TestErrWithDetails(t *testing.T) {
	w := httptest.NewRecorder()
	details := []map[string]string{{"field": "name", "message": "name is required"}}

	response.ErrWithDetails(w, http.StatusBadRequest, "Name, role and portfolio are required", details, "req-2")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decode(t, w)
	got, ok := body["details"].([]interface{})
	require.True(t, ok)
	require.Len(t, got, 1)
	assert.Equal(t, "name", got[0].(map[string]interface{})["field"])
}
