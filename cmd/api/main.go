// Package main is the entry point for the museum companion server.
// Its sole responsibility is wiring dependencies together and starting the server.
// No business logic belongs here.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/pkordes/museo-companion/internal/config"
	"github.com/pkordes/museo-companion/internal/generation"
	"github.com/pkordes/museo-companion/internal/handler"
	"github.com/pkordes/museo-companion/internal/live"
	"github.com/pkordes/museo-companion/internal/middleware"
	"github.com/pkordes/museo-companion/internal/museum"
	"github.com/pkordes/museo-companion/internal/repo"
	"github.com/pkordes/museo-companion/internal/service"
	"github.com/pkordes/museo-companion/internal/session"
	"github.com/pkordes/museo-companion/migrations"
	"github.com/pkordes/museo-companion/spec"
)

// The museum client serves every backend port the services declare.
var (
	_ service.AuthBackend      = (*museum.Client)(nil)
	_ service.ProfileBackend   = (*museum.Client)(nil)
	_ service.AreaBackend      = (*museum.Client)(nil)
	_ service.ItineraryBackend = (*museum.Client)(nil)
	_ service.VisitBackend     = (*museum.Client)(nil)
	_ service.StatsBackend     = (*museum.Client)(nil)
	_ generation.StatusSource  = (*museum.Client)(nil)
)

func main() {
	// --- Config -----------------------------------------------------------
	cfg, err := config.Load()
	if err != nil {
		// Use plain stderr before the logger is configured.
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	// --- Logger -----------------------------------------------------------
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// --- Database ---------------------------------------------------------
	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to create database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := pool.Ping(context.Background()); err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	slog.Info("database connection established")

	if err := migrate(context.Background(), pool); err != nil {
		slog.Error("failed to apply migrations", "error", err)
		os.Exit(1)
	}

	// --- Services ---------------------------------------------------------
	// Backend calls carry no client timeout; the request context bounds them.
	client := museum.NewClient(cfg.MuseumAPIURL, nil, logger)

	sessions := repo.NewSessionRepo(pool)
	storage := repo.NewStorageRepo(pool)
	visits := service.NewVisitService(client, repo.NewVisitRepo(pool), logger)

	srv := handler.NewServer(handler.Deps{
		Auth:        service.NewAuthService(client, logger),
		Profiles:    service.NewProfileService(client),
		Areas:       service.NewAreaService(client),
		Itineraries: service.NewItineraryService(client, logger),
		Visits:      visits,
		Admin:       service.NewAdminService(client),
		Live:        live.NewServer(cfg.CORSOrigins, cfg.TickInterval, logger),
		Poller:      generation.NewPoller(client, cfg.PollInterval, logger),
		PublicURL:   cfg.PublicURL,
		OpenAPI:     spec.OpenAPI,
		Log:         logger,
	})

	withSession := middleware.NewSessionHandler(middleware.SessionOptions{
		Sessions: sessions,
		Store:    storage,
		Tokens:   session.NewTokens(cfg.SessionSecret, 0),
		Secure:   strings.HasPrefix(cfg.PublicURL, "https://"),
		Log:      logger,
	})

	// --- Router -----------------------------------------------------------
	// Middleware is applied in order: RequestID → RealIP → Logger → Recoverer
	// → CORS → rate limit → body cap. Sessions attach inside the API routes.
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewSlogLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
	r.Use(middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst).Limit)
	r.Use(middleware.NewMaxBodySizeHandler(cfg.MaxBodyBytes))
	r.Mount("/", srv.Routes(withSession))

	// --- HTTP Server ------------------------------------------------------
	// WriteTimeout stays unset: live views hold their connection open.
	httpSrv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "addr", httpSrv.Addr, "museum_api", cfg.MuseumAPIURL)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-stop
	slog.Info("shutting down server")

	// Live views end first so their handlers return before Shutdown waits on them.
	visits.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

// migrate brings the schema up to date before traffic is accepted.
func migrate(ctx context.Context, pool *pgxpool.Pool) error {
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations.FS)
	if err != nil {
		return err
	}
	results, err := provider.Up(ctx)
	if err != nil {
		return err
	}
	for _, res := range results {
		slog.Info("migration applied", "version", res.Source.Version, "duration", res.Duration)
	}
	return nil
}
