package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/teamfolio/teamfolio/internal/api/handler"
	"github.com/teamfolio/teamfolio/internal/api/middleware"
	"github.com/teamfolio/teamfolio/internal/auth"
	"github.com/teamfolio/teamfolio/internal/roster"
	"github.com/teamfolio/teamfolio/internal/web"
)

// RouterDeps holds all dependencies needed by the router.
type RouterDeps struct {
	Roster        *roster.Service
	Auth          *auth.Service
	Health        handler.HealthInfo
	Web           *web.Handler
	AllowedOrigin string
	OpenAPISpec   []byte
}

// NewRouter creates and configures a Chi router with all middleware and routes.
func NewRouter(deps RouterDeps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery)
	r.Use(chimiddleware.Logger)
	r.Use(corsHandler(deps.AllowedOrigin))

	healthHandler := handler.NewHealthHandler(deps.Health)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", healthHandler.ServeHTTP)

		if deps.Roster == nil || deps.Auth == nil {
			return
		}

		memberHandler := handler.NewMemberHandler(deps.Roster, deps.Auth)
		authHandler := handler.NewAuthHandler(deps.Auth)

		r.Get("/team-members", memberHandler.List)
		r.Post("/verify-password", authHandler.Verify)
		r.Post("/logout", authHandler.Logout)

		r.Group(func(r chi.Router) {
			r.Use(middleware.AdminSession(deps.Auth.Sessions()))
			r.Post("/add-member", memberHandler.Add)
			r.Delete("/delete-member/{id}", memberHandler.Delete)
		})
	})

	if len(deps.OpenAPISpec) > 0 {
		openapiHandler := handler.NewOpenAPIHandler(deps.OpenAPISpec)
		r.Get("/openapi.json", openapiHandler.ServeHTTP)
		r.Get("/openapi.yaml", openapiHandler.YAML)
	}

	if deps.Web != nil {
		r.Get("/", func(w http.ResponseWriter, req *http.Request) {
			http.Redirect(w, req, "/admin", http.StatusFound)
		})
		r.Get("/admin", deps.Web.Admin)
		r.Get("/embed/team", deps.Web.Team)
		r.Get("/team-display.js", deps.Web.TeamDisplayScript)
		r.Handle("/static/*", deps.Web.Static())
	}

	return r
}

// corsHandler allows the configured frontend origin. "*" or an empty origin
// allows any origin without credentials; a specific origin may send cookies.
func corsHandler(origin string) func(http.Handler) http.Handler {
	opts := cors.Options{
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", middleware.RequestIDHeader},
		ExposedHeaders: []string{middleware.RequestIDHeader},
		MaxAge:         300,
	}
	if origin == "" || origin == "*" {
		opts.AllowedOrigins = []string{"*"}
	} else {
		opts.AllowedOrigins = []string{origin}
		opts.AllowCredentials = true
	}
	return cors.Handler(opts)
}
