package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"galaxy-server/internal/auth"
	"galaxy-server/internal/galaxy"
	"galaxy-server/internal/middleware"
	"galaxy-server/internal/panel"
	"galaxy-server/internal/preset"
	"galaxy-server/internal/scene"
	"galaxy-server/internal/server"
	"galaxy-server/internal/shared/config"
	"galaxy-server/internal/shared/database"
	"galaxy-server/internal/shared/logger"
	"galaxy-server/internal/shared/redis"
)

func main() {
	if err := config.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize configuration: %v\n", err)
		os.Exit(1)
	}
	logger.Init()

	if err := run(); err != nil {
		slog.Error("Server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.GlobalConfig
	log := slog.With("component", "main")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect()
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if db != nil {
		if err := db.RunMigrations(cfg.Database.MigrationsPath); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	rdb, err := redis.Connect()
	if err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}
	defer rdb.Close()

	stage := scene.NewStage(slog.Default())
	defer stage.Clear()

	var cache galaxy.Cache
	var states auth.StateStore
	if rdb != nil {
		cache = galaxy.NewRedisCache(rdb.Client, cfg.Galaxy.CacheTTL)
		states = auth.NewRedisStateStore(rdb.Client)
	} else {
		memoryStates := auth.NewMemoryStateStore()
		go memoryStates.StartCleanup(ctx, 5*time.Minute)
		states = memoryStates
	}

	galaxyService := galaxy.NewService(stage, cache, slog.Default())

	params, err := galaxy.ParametersFromConfig(cfg.Galaxy)
	if err != nil {
		return fmt.Errorf("invalid startup galaxy: %w", err)
	}
	galaxyPanel := panel.New(galaxyService, params, slog.Default())

	// seed 0 asks for a random one
	var seed *uint64
	if cfg.Galaxy.Seed != 0 {
		seed = &cfg.Galaxy.Seed
	}
	summary, err := galaxyPanel.CommitWithSeed(ctx, seed)
	if err != nil {
		return fmt.Errorf("failed to generate startup galaxy: %w", err)
	}
	log.Info("Startup galaxy ready", "summary", summary.String(), "elapsed_ms", summary.Elapsed)

	var presetService *preset.Service
	if db != nil {
		repo := preset.NewRepository(db.DB, slog.Default())
		presetService = preset.NewService(repo, galaxyPanel, galaxyService, slog.Default())
	}

	routes := server.NewRoutes(server.RoutesDeps{
		DB:            db,
		Redis:         rdb,
		GalaxyService: galaxyService,
		Panel:         galaxyPanel,
		Stage:         stage,
		PresetService: presetService,
		OAuthConfig:   auth.InitOAuth(),
		States:        states,
		Render:        cfg.Render,
	})
	mux := routes.Setup()

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimit)
	go rateLimiter.StartCleanup(ctx)

	corsMiddleware := middleware.NewCORS(cfg.Frontend)
	handler := corsMiddleware.Middleware(rateLimiter.Middleware(mux))

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("Galaxy server starting",
			"port", cfg.Server.Port,
			"environment", cfg.Server.Environment,
			"auth_enabled", cfg.Auth.Enabled,
			"database_enabled", db != nil,
			"redis_enabled", rdb != nil)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}
