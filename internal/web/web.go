// Package web serves the admin panel and the public portfolio widget.
package web

import (
	"bytes"
	"embed"
	"encoding/json"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	texttemplate "text/template"

	"github.com/teamfolio/teamfolio/internal/auth"
	"github.com/teamfolio/teamfolio/internal/roster"
)

//go:embed templates
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

var (
	pageTemplates  = template.Must(template.ParseFS(templateFS, "templates/*.html"))
	scriptTemplate = texttemplate.Must(texttemplate.New("team-display.js").Funcs(texttemplate.FuncMap{
		"json": jsonString,
	}).ParseFS(templateFS, "templates/team-display.js"))
)

// Options configures the web Handler.
type Options struct {
	Placeholder     string
	PortfolioAPIURL string
	Version         string
}

// Handler renders the admin panel, the team fragment and the widget script.
type Handler struct {
	svc      *roster.Service
	sessions *auth.SessionStore
	opts     Options
}

// NewHandler creates a new web Handler.
func NewHandler(svc *roster.Service, sessions *auth.SessionStore, opts Options) *Handler {
	return &Handler{svc: svc, sessions: sessions, opts: opts}
}

type adminPage struct {
	LoggedIn    bool
	Placeholder string
	Version     string
}

// Admin handles GET /admin. The login gate or the panel is chosen from the
// admin session; the password itself never reaches the browser.
func (h *Handler) Admin(w http.ResponseWriter, r *http.Request) {
	page := adminPage{
		LoggedIn:    h.sessions != nil && h.sessions.IsAdmin(r),
		Placeholder: h.opts.Placeholder,
		Version:     h.opts.Version,
	}
	h.render(w, "admin.html", page)
}

type teamFragment struct {
	Members     []roster.Member
	Placeholder string
	Failed      bool
}

// Team handles GET /embed/team, an HTML fragment for portfolio pages. Store
// failures render a friendly placeholder instead of an error.
func (h *Handler) Team(w http.ResponseWriter, r *http.Request) {
	data := teamFragment{Placeholder: h.opts.Placeholder}

	doc, err := h.svc.List(r.Context())
	if err != nil {
		slog.Error("failed to load team for portfolio fragment", "error", err)
		data.Failed = true
	} else {
		data.Members = doc.Members
	}

	h.render(w, "team.html", data)
}

type displayScript struct {
	APIURL      string
	Placeholder string
}

// TeamDisplayScript handles GET /team-display.js.
func (h *Handler) TeamDisplayScript(w http.ResponseWriter, r *http.Request) {
	apiURL := h.opts.PortfolioAPIURL
	if apiURL == "" {
		apiURL = requestOrigin(r) + "/api/team-members"
	}

	var buf bytes.Buffer
	err := scriptTemplate.ExecuteTemplate(&buf, "team-display.js", displayScript{
		APIURL:      apiURL,
		Placeholder: h.opts.Placeholder,
	})
	if err != nil {
		slog.Error("failed to render team display script", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

// Static serves the embedded admin assets under /static/.
func (h *Handler) Static() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
}

func (h *Handler) render(w http.ResponseWriter, name string, data any) {
	var buf bytes.Buffer
	if err := pageTemplates.ExecuteTemplate(&buf, name, data); err != nil {
		slog.Error("failed to render template", "template", name, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

func requestOrigin(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto == "https" || proto == "http" {
		scheme = proto
	}
	return scheme + "://" + r.Host
}

// jsonString renders s as a JavaScript string literal safe inside a script.
func jsonString(s string) (string, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
