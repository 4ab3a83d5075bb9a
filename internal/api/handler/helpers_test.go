package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/teamfolio/teamfolio/internal/auth"
	"github.com/teamfolio/teamfolio/internal/roster"
)

const (
	testPassword    = "s3cret"
	testPlaceholder = "https://placeholder.test/member.png"
)

var fixedNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

// --- Mock Store ---

type mockStore struct {
	getFn func(ctx context.Context) (*roster.Document, error)
	putFn func(ctx context.Context, doc *roster.Document) error
}

func (m *mockStore) Get(ctx context.Context) (*roster.Document, error) {
	if m.getFn != nil {
		return m.getFn(ctx)
	}
	return &roster.Document{Members: []roster.Member{}}, nil
}

func (m *mockStore) Put(ctx context.Context, doc *roster.Document) error {
	if m.putFn != nil {
		return m.putFn(ctx, doc)
	}
	return nil
}

// --- Helpers ---

func newRosterService(store roster.Store) *roster.Service {
	return roster.NewService(store,
		roster.WithPlaceholder(testPlaceholder),
		roster.WithClock(func() time.Time { return fixedNow }),
	)
}

func newAuthService(t *testing.T) *auth.Service {
	t.Helper()
	svc, err := auth.NewService(testPassword, bcrypt.MinCost, auth.NewSessionStore("test-secret", false))
	require.NoError(t, err)
	return svc
}

// makeChiRequest builds a request with a JSON body and chi URL params attached.
func makeChiRequest(t *testing.T, method, path string, body any, params map[string]string) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	if len(params) > 0 {
		rctx := chi.NewRouteContext()
		for k, v := range params {
			rctx.URLParams.Add(k, v)
		}
		req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	}
	return req
}

func parseBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func seededStore(t *testing.T, members ...roster.Member) *roster.MemoryStore {
	t.Helper()
	store := roster.NewMemoryStore()
	if len(members) > 0 {
		require.NoError(t, store.Put(context.Background(), &roster.Document{Members: members}))
	}
	return store
}
