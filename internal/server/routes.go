package server

import (
	"log/slog"
	"net/http"

	"galaxy-server/internal/auth"
	authHandlers "galaxy-server/internal/auth/handlers"
	"galaxy-server/internal/galaxy"
	galaxyHandlers "galaxy-server/internal/galaxy/handlers"
	"galaxy-server/internal/middleware"
	"galaxy-server/internal/panel"
	"galaxy-server/internal/preset"
	presetHandlers "galaxy-server/internal/preset/handlers"
	"galaxy-server/internal/scene"
	serverHandlers "galaxy-server/internal/server/handlers"
	"galaxy-server/internal/shared/config"
	"galaxy-server/internal/shared/database"
	"galaxy-server/internal/shared/redis"
)

type Routes struct {
	db            *database.DB
	redis         *redis.Client
	galaxyService *galaxy.Service
	panel         *panel.Panel
	stage         *scene.Stage
	presetService *preset.Service
	oauthConfig   *auth.OAuthConfig
	states        auth.StateStore
	render        config.RenderConfig
}

type RoutesDeps struct {
	DB            *database.DB
	Redis         *redis.Client
	GalaxyService *galaxy.Service
	Panel         *panel.Panel
	Stage         *scene.Stage
	PresetService *preset.Service // nil without a database
	OAuthConfig   *auth.OAuthConfig
	States        auth.StateStore
	Render        config.RenderConfig
}

func NewRoutes(deps RoutesDeps) *Routes {
	return &Routes{
		db:            deps.DB,
		redis:         deps.Redis,
		galaxyService: deps.GalaxyService,
		panel:         deps.Panel,
		stage:         deps.Stage,
		presetService: deps.PresetService,
		oauthConfig:   deps.OAuthConfig,
		states:        deps.States,
		render:        deps.Render,
	}
}

func (r *Routes) Setup() *http.ServeMux {
	logger := slog.With("component", "routes", "operation", "setup")
	logger.Debug("Setting up application routes")

	mux := http.NewServeMux()

	healthHandler := serverHandlers.NewHealthHandler(r.db, r.redis, r.galaxyService)
	galaxyHandler := galaxyHandlers.NewGalaxyHandler(r.galaxyService, r.panel, r.stage, r.render)
	githubAuthHandler := authHandlers.NewOAuthHandler(
		r.oauthConfig.GitHubProvider,
		r.states,
		r.oauthConfig.GitHubConfigured,
	)

	// Public endpoints
	mux.Handle("/api/server/health", healthHandler)
	mux.HandleFunc("/api/galaxy", galaxyHandler.GetGalaxy)
	mux.HandleFunc("/api/galaxy/fields", galaxyHandler.GetFields)
	mux.HandleFunc("/api/galaxy/buffers", galaxyHandler.GetBuffers)
	mux.HandleFunc("/api/galaxy/positions", galaxyHandler.GetPositions)
	mux.HandleFunc("/api/galaxy/colors", galaxyHandler.GetColors)
	mux.HandleFunc("/api/galaxy/snapshot.png", galaxyHandler.GetSnapshot)
	mux.HandleFunc("/api/quantile", galaxyHandler.GetQuantile)

	// Operator endpoints
	mux.Handle("/api/galaxy/parameters", middleware.RequireOperator(http.HandlerFunc(galaxyHandler.UpdateParameters)))
	mux.Handle("/api/galaxy/regenerate", middleware.RequireOperator(http.HandlerFunc(galaxyHandler.Regenerate)))

	presetEndpoints := []string{}
	if r.presetService != nil {
		presetHandler := presetHandlers.NewPresetHandler(r.presetService)

		mux.HandleFunc("GET /api/presets", presetHandler.ListPresets)
		mux.HandleFunc("GET /api/presets/{id}", presetHandler.GetPreset)
		mux.Handle("POST /api/presets", middleware.RequireOperator(http.HandlerFunc(presetHandler.CreatePreset)))
		mux.Handle("POST /api/presets/{id}/apply", middleware.RequireOperator(http.HandlerFunc(presetHandler.ApplyPreset)))
		mux.Handle("DELETE /api/presets/{id}", middleware.RequireOperator(http.HandlerFunc(presetHandler.DeletePreset)))
		presetEndpoints = append(presetEndpoints, "/api/presets", "/api/presets/{id}", "/api/presets/{id}/apply")
	}

	// Session endpoints
	mux.Handle("/api/me", middleware.JWTMiddleware(authHandlers.NewMeHandler()))
	mux.HandleFunc("/auth/github", githubAuthHandler.HandleAuth)
	mux.HandleFunc("/auth/github/callback", githubAuthHandler.HandleCallback)
	mux.Handle("/auth/logout", authHandlers.NewLogoutHandler())

	logger.Info("Routes configured successfully",
		"public_endpoints", []string{"/api/server/health", "/api/galaxy", "/api/galaxy/fields", "/api/galaxy/buffers", "/api/galaxy/snapshot.png", "/api/quantile"},
		"operator_endpoints", []string{"/api/galaxy/parameters", "/api/galaxy/regenerate"},
		"preset_endpoints", presetEndpoints,
		"auth_endpoints", []string{"/auth/github", "/auth/logout", "/api/me"},
	)

	return mux
}
