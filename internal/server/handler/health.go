package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// Pinger checks connectivity to a backing store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler serves the health-check endpoint.
type HealthHandler struct {
	sources map[string]bool
	redis   Pinger
	logger  *slog.Logger
}

// NewHealthHandler creates a HealthHandler. sources maps each upstream name to
// whether its credentials are configured.
func NewHealthHandler(sources map[string]bool, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{sources: sources, logger: logger}
}

// WithRedis adds a Redis connectivity check to the response.
func (h *HealthHandler) WithRedis(p Pinger) *HealthHandler {
	h.redis = p
	return h
}

// HealthCheck responds with the process status and which sources are usable.
// It never calls upstream. A Redis outage is reported but does not change the
// status, since the rate limiter fails open.
// GET /api/health
func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	body := map[string]any{
		"status":    "ok",
		"sources":   h.sources,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	if h.redis != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.redis.Ping(ctx); err != nil {
			h.logger.WarnContext(ctx, "handler: redis ping failed", slog.String("error", err.Error()))
			body["redis"] = "down"
		} else {
			body["redis"] = "ok"
		}
	}
	writeJSON(w, http.StatusOK, body)
}
