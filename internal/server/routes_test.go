package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"galaxy-server/internal/auth"
	"galaxy-server/internal/auth/providers"
	"galaxy-server/internal/galaxy"
	"galaxy-server/internal/panel"
	"galaxy-server/internal/scene"
	serverHandlers "galaxy-server/internal/server/handlers"
	"galaxy-server/internal/shared/config"

	"golang.org/x/oauth2"
)

func newTestMux(t *testing.T, authEnabled bool) *http.ServeMux {
	t.Helper()

	config.GlobalConfig = &config.Config{
		Auth: config.AuthConfig{
			Enabled:         authEnabled,
			JWTSecret:       "0123456789abcdef0123456789abcdef",
			TokenExpiration: time.Hour,
		},
		Frontend: config.FrontendConfig{URL: "http://localhost:3000"},
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	stage := scene.NewStage(logger)
	service := galaxy.NewService(stage, nil, logger)
	params := galaxy.DefaultParameters()
	params.Count = 100
	p := panel.New(service, params, logger)

	seed := uint64(3)
	if _, err := p.CommitWithSeed(context.Background(), &seed); err != nil {
		t.Fatal(err)
	}

	routes := NewRoutes(RoutesDeps{
		GalaxyService: service,
		Panel:         p,
		Stage:         stage,
		OAuthConfig: &auth.OAuthConfig{
			GitHubProvider: providers.NewGitHubProvider(&oauth2.Config{}, providers.GitHubAPIURL),
		},
		States: auth.NewMemoryStateStore(),
		Render: config.RenderConfig{SnapshotWidth: 16, SnapshotHeight: 16, MaxSnapshotSide: 64, CameraZ: 5, FOV: 75, Near: 0.1, Far: 100},
	})
	return routes.Setup()
}

func serve(mux *http.ServeMux, method, target, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(method, target, strings.NewReader(body)))
	return rec
}

func TestHealth(t *testing.T) {
	mux := newTestMux(t, false)

	rec := serve(mux, http.MethodGet, "/api/server/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var body serverHandlers.HealthResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Status != "healthy" || body.Generation != 1 || body.Database != "disconnected" || body.Redis != "disconnected" {
		t.Errorf("health = %+v", body)
	}
}

func TestOperatorRoutesOpenWithoutAuth(t *testing.T) {
	mux := newTestMux(t, false)

	rec := serve(mux, http.MethodPut, "/api/galaxy/parameters", `{"branches": 2}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("PUT = %d: %s", rec.Code, rec.Body)
	}
	if rec := serve(mux, http.MethodGet, "/api/galaxy", ""); !strings.Contains(rec.Body.String(), `"branches":2`) {
		t.Errorf("galaxy = %s", rec.Body)
	}
}

func TestOperatorRoutesGuarded(t *testing.T) {
	mux := newTestMux(t, true)

	for _, target := range []string{"/api/galaxy/parameters", "/api/galaxy/regenerate"} {
		method := http.MethodPost
		if strings.HasSuffix(target, "parameters") {
			method = http.MethodPut
		}
		if rec := serve(mux, method, target, `{}`); rec.Code != http.StatusUnauthorized {
			t.Errorf("%s %s = %d", method, target, rec.Code)
		}
	}

	// reads stay public
	if rec := serve(mux, http.MethodGet, "/api/galaxy/buffers", ""); rec.Code != http.StatusOK {
		t.Errorf("buffers = %d", rec.Code)
	}
}

func TestPresetRoutesAbsentWithoutDatabase(t *testing.T) {
	mux := newTestMux(t, false)
	if rec := serve(mux, http.MethodGet, "/api/presets", ""); rec.Code != http.StatusNotFound {
		t.Errorf("presets = %d", rec.Code)
	}
}

func TestGitHubLoginNotConfigured(t *testing.T) {
	mux := newTestMux(t, true)
	if rec := serve(mux, http.MethodGet, "/auth/github", ""); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("login = %d", rec.Code)
	}
}
