package main

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	specpkg "github.com/teamfolio/teamfolio/api"
	"github.com/teamfolio/teamfolio/internal/api"
	"github.com/teamfolio/teamfolio/internal/api/handler"
	"github.com/teamfolio/teamfolio/internal/auth"
	"github.com/teamfolio/teamfolio/internal/config"
	"github.com/teamfolio/teamfolio/internal/database"
	"github.com/teamfolio/teamfolio/internal/imgbb"
	"github.com/teamfolio/teamfolio/internal/jsonbin"
	"github.com/teamfolio/teamfolio/internal/roster"
	"github.com/teamfolio/teamfolio/internal/web"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("failed to load .env file", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	setupLogger(cfg.LogLevel)

	ctx := context.Background()

	store, closeStore, err := initStore(ctx, cfg)
	if err != nil {
		slog.Error("failed to initialize store", "driver", cfg.StoreDriver, "error", err)
		os.Exit(1)
	}
	defer closeStore()

	svc := roster.NewService(store, serviceOptions(cfg)...)

	sessions := auth.NewSessionStore(sessionSecret(cfg), cfg.SessionSecure)
	authService, err := auth.NewService(cfg.AdminPassword, cfg.BcryptCost, sessions)
	if err != nil {
		slog.Error("failed to initialize admin auth", "error", err)
		os.Exit(1)
	}

	router := api.NewRouter(api.RouterDeps{
		Roster: svc,
		Auth:   authService,
		Health: handler.HealthInfo{
			Version:           cfg.Version,
			StoreDriver:       cfg.StoreDriver,
			JSONBinConfigured: cfg.JSONBinConfigured(),
		},
		Web: web.NewHandler(svc, sessions, web.Options{
			Placeholder:     cfg.PlaceholderImageURL,
			PortfolioAPIURL: cfg.PortfolioAPIURL,
			Version:         cfg.Version,
		}),
		AllowedOrigin: cfg.FrontendURL,
		OpenAPISpec:   specpkg.OpenAPISpec,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf("0.0.0.0:%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("starting teamfolio server",
			"port", cfg.Port,
			"version", cfg.Version,
			"store", cfg.StoreDriver,
			"frontendUrl", cfg.FrontendURL,
			"jsonbinConfigured", cfg.JSONBinConfigured())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		slog.Info("shutting down server", "signal", sig.String())
	case err := <-serverErr:
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}

func setupLogger(level string) {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))
}

func initStore(ctx context.Context, cfg *config.Config) (roster.Store, func(), error) {
	noop := func() {}

	switch cfg.StoreDriver {
	case config.StoreMemory:
		slog.Warn("using in-memory store; the roster is lost on restart")
		return roster.NewMemoryStore(), noop, nil

	case config.StorePostgres:
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()

		db, err := database.New(connectCtx, cfg.DatabaseURL)
		if err != nil {
			return nil, noop, err
		}
		store := roster.NewPostgresStore(db.Pool(), cfg.DocumentID)
		if err := store.EnsureSchema(connectCtx); err != nil {
			db.Close()
			return nil, noop, err
		}
		return store, db.Close, nil

	default:
		if !cfg.JSONBinConfigured() {
			slog.Warn("JSONBIN_BIN_ID is not set; roster reads and writes will fail")
		}
		hc := &http.Client{Timeout: cfg.UpstreamTimeoutDuration()}
		return jsonbin.NewClient(cfg.JSONBinBinID, cfg.JSONBinMasterKey,
			jsonbin.WithBaseURL(cfg.JSONBinBaseURL),
			jsonbin.WithHTTPClient(hc),
		), noop, nil
	}
}

func serviceOptions(cfg *config.Config) []roster.ServiceOption {
	opts := []roster.ServiceOption{roster.WithPlaceholder(cfg.PlaceholderImageURL)}

	if cfg.ImgBBAPIKey == "" {
		slog.Warn("IMGBB_API_KEY is not set; uploaded photos fall back to the placeholder")
		return opts
	}

	hc := &http.Client{Timeout: cfg.UpstreamTimeoutDuration()}
	uploader := imgbb.NewClient(cfg.ImgBBAPIKey,
		imgbb.WithBaseURL(cfg.ImgBBBaseURL),
		imgbb.WithHTTPClient(hc),
	)
	return append(opts, roster.WithImageUploader(uploader))
}

// sessionSecret falls back to a key derived from the admin password so that
// sessions survive restarts without extra configuration.
func sessionSecret(cfg *config.Config) string {
	if cfg.SessionSecret != "" {
		return cfg.SessionSecret
	}
	sum := sha256.Sum256([]byte("teamfolio-session:" + cfg.AdminPassword))
	return hex.EncodeToString(sum[:])
}
