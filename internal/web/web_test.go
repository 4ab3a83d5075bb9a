package web_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teamfolio/teamfolio/internal/auth"
	"github.com/teamfolio/teamfolio/internal/roster"
	"github.com/teamfolio/teamfolio/internal/web"
)

const placeholder = "https://placeholder.test/member.png"

type failingStore struct{}

func (failingStore) Get(context.Context) (*roster.Document, error) {
	return nil, errors.New("upstream down")
}

func (failingStore) Put(context.Context, *roster.Document) error {
	return errors.New("upstream down")
}

func newHandler(t *testing.T, store roster.Store, opts web.Options) (*web.Handler, *auth.SessionStore) {
	t.Helper()
	if opts.Placeholder == "" {
		opts.Placeholder = placeholder
	}
	sessions := auth.NewSessionStore("web-secret", false)
	return web.NewHandler(roster.NewService(store), sessions, opts), sessions
}

func serve(h http.HandlerFunc, req *http.Request) (*httptest.ResponseRecorder, string) {
	w := httptest.NewRecorder()
	h(w, req)
	body, _ := io.ReadAll(w.Body)
	return w, string(body)
}

func TestTeam_EscapesMemberFields(t *testing.T) {
	store := roster.NewMemoryStore()
	require.NoError(t, store.Put(context.Background(), &roster.Document{Members: []roster.Member{
		{ID: 1, Name: `<script>alert("x")</script>`, Role: "Eng & Ops", Portfolio: "javascript:alert(1)"},
		{ID: 2, Name: "Grace", Role: "Admiral", Portfolio: "https://grace.dev", Image: "https://img.test/g.png"},
	}}))
	h, _ := newHandler(t, store, web.Options{})

	w, body := serve(h.Team, httptest.NewRequest(http.MethodGet, "/embed/team", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, body, "Our Team")
	assert.NotContains(t, body, "<script>alert")
	assert.Contains(t, body, "&lt;script&gt;")
	assert.Contains(t, body, "Eng &amp; Ops")
	assert.NotContains(t, body, `href="javascript:`)
	assert.Contains(t, body, `href="https://grace.dev"`)
	assert.Contains(t, body, `src="https://img.test/g.png"`)
	assert.Contains(t, body, `src="`+placeholder+`"`)
}

func TestTeam_StoreFailureRendersPlaceholder(t *testing.T) {
	h, _ := newHandler(t, failingStore{}, web.Options{})

	w, body := serve(h.Team, httptest.NewRequest(http.MethodGet, "/embed/team", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, body, "Team members will be displayed here soon.")
	assert.NotContains(t, body, "Our Team")
}

func TestAdmin_LoginState(t *testing.T) {
	h, sessions := newHandler(t, roster.NewMemoryStore(), web.Options{Version: "1.2.3"})

	_, body := serve(h.Admin, httptest.NewRequest(http.MethodGet, "/admin", nil))
	assert.Contains(t, body, `data-logged-in="false"`)
	assert.Contains(t, body, "teamfolio 1.2.3")

	login := httptest.NewRecorder()
	require.NoError(t, sessions.Login(login, httptest.NewRequest(http.MethodPost, "/", nil)))
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	for _, c := range login.Result().Cookies() {
		req.AddCookie(c)
	}

	_, body = serve(h.Admin, req)
	assert.Contains(t, body, `data-logged-in="true"`)
}

func TestAdmin_NeverEmbedsPassword(t *testing.T) {
	h, _ := newHandler(t, roster.NewMemoryStore(), web.Options{})

	_, body := serve(h.Admin, httptest.NewRequest(http.MethodGet, "/admin", nil))

	assert.NotContains(t, body, "ADMIN_PASSWORD")
	assert.NotContains(t, body, "admin123")
}

func TestTeamDisplayScript_DefaultsToRequestOrigin(t *testing.T) {
	h, _ := newHandler(t, roster.NewMemoryStore(), web.Options{})
	req := httptest.NewRequest(http.MethodGet, "/team-display.js", nil)
	req.Host = "team.example.com"
	req.Header.Set("X-Forwarded-Proto", "https")

	w, body := serve(h.TeamDisplayScript, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/javascript; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, body, `var TEAM_API_URL = "https://team.example.com/api/team-members";`)
	assert.Contains(t, body, `var PLACEHOLDER = "`+placeholder+`";`)
}

func TestTeamDisplayScript_ConfiguredURLIsQuoted(t *testing.T) {
	h, _ := newHandler(t, roster.NewMemoryStore(), web.Options{PortfolioAPIURL: `https://api.test/x"</script>`})

	_, body := serve(h.TeamDisplayScript, httptest.NewRequest(http.MethodGet, "/team-display.js", nil))

	assert.NotContains(t, body, "</script>")
	assert.Contains(t, body, `https://api.test/x\"\u003c/script\u003e`)
}

func TestStatic_ServesAdminAssets(t *testing.T) {
	h, _ := newHandler(t, roster.NewMemoryStore(), web.Options{})
	static := h.Static()

	for _, path := range []string{"/static/admin.js", "/static/admin.css"} {
		w := httptest.NewRecorder()
		static.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, w.Code, path)
	}
}
