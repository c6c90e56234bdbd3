package handler

import (
	"context"
	"net/http"
	"time"

	"fest-backend/internal/response"
	"fest-backend/pkg/logger"
)

// Pinger is anything the health check can probe.
type Pinger interface {
	Health(ctx context.Context) error
}

// HealthHandler handles health check requests
type HealthHandler struct {
	database Pinger
	cache    Pinger
	version  string
	log      *logger.Logger
}

// NewHealthHandler creates a new health handler. cache may be nil when Redis
// is not configured.
func NewHealthHandler(database, cache Pinger, version string, log *logger.Logger) *HealthHandler {
	return &HealthHandler{
		database: database,
		cache:    cache,
		version:  version,
		log:      log,
	}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Version   string            `json:"version"`
	Service   string            `json:"service"`
	Checks    map[string]string `json:"checks"`
}

// Check handles GET /health. The database is required; a failing cache only
// degrades the service since reads fall back to the database.
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	resp := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Version:   h.version,
		Service:   "fest-backend",
		Checks:    map[string]string{},
	}
	code := http.StatusOK

	if err := h.database.Health(ctx); err != nil {
		h.log.WithError(err).Error("Database health check failed")
		resp.Status = "unhealthy"
		resp.Checks["database"] = "down"
		code = http.StatusServiceUnavailable
	} else {
		resp.Checks["database"] = "up"
	}

	switch {
	case h.cache == nil:
		resp.Checks["cache"] = "disabled"
	case h.cache.Health(ctx) != nil:
		h.log.Warn("Cache health check failed")
		resp.Checks["cache"] = "down"
		if code == http.StatusOK {
			resp.Status = "degraded"
		}
	default:
		resp.Checks["cache"] = "up"
	}

	status := response.StatusSuccess
	if code != http.StatusOK {
		status = response.StatusError
	}
	response.JSON(w, code, response.Envelope{Status: status, Data: resp})
}
