package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"galaxy-server/internal/galaxy"
	"galaxy-server/internal/shared/response"
)

type HealthResponse struct {
	Status     string `json:"status"`
	Timestamp  string `json:"timestamp"`
	Database   string `json:"database"`
	Redis      string `json:"redis"`
	Generation uint64 `json:"generation"`
}

// Pinger is satisfied by the database and redis connections; both are nil-safe
type Pinger interface {
	Ping(ctx context.Context) error
}

type redisPinger interface {
	Healthy(ctx context.Context) error
}

type HealthHandler struct {
	db     Pinger
	redis  redisPinger
	galaxy *galaxy.Service
}

func NewHealthHandler(db Pinger, redis redisPinger, galaxy *galaxy.Service) *HealthHandler {
	return &HealthHandler{db: db, redis: redis, galaxy: galaxy}
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "health")

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	resp := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().Format(time.RFC3339),
		Database:  status(ctx, logger, "database", h.db.Ping),
		Redis:     status(ctx, logger, "redis", h.redis.Healthy),
	}

	if summary, ok := h.galaxy.Current(); ok {
		resp.Generation = summary.Generation
	} else {
		resp.Status = "starting"
	}

	response.Success(w, http.StatusOK, resp)
}

func status(ctx context.Context, logger *slog.Logger, name string, ping func(context.Context) error) string {
	err := ping(ctx)
	if err == nil {
		return "connected"
	}
	logger.Debug("Dependency unavailable", "dependency", name, "error", err)
	return "disconnected"
}
