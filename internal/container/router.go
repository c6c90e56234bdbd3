package container

import (
	"net/http"
	"time"

	"fest-backend/internal/handler"
	"fest-backend/internal/middleware"
	"fest-backend/internal/response"
	"fest-backend/pkg/errors"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// Router configures and returns the HTTP router
func (c *Container) Router() *chi.Mux {
	log := c.Logger
	r := chi.NewRouter()

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowedOrigins = c.Config.AllowedOrigins

	r.Use(middleware.CORS(corsConfig, log))
	r.Use(middleware.RequestID(log))
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.Metrics(c.Metrics))
	r.Use(chiMiddleware.Timeout(60 * time.Second))

	// Health check and metrics (no auth required)
	r.Get("/health", c.Health.Check)
	r.Method(http.MethodGet, "/metrics", c.Metrics.Handler())

	r.Mount("/api/v1", handler.Routes(
		c.Handlers,
		middleware.Auth(c.Auth, log),
		middleware.RateLimit(c.ScanLimiter, log),
	))

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		response.Error(w, req, errors.NewNotFoundError("route_not_found", "Endpoint not found"), log)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		response.JSON(w, http.StatusMethodNotAllowed, response.Envelope{
			Status:  response.StatusError,
			Message: "Method not allowed",
			Error:   &response.ErrorBody{Type: errors.ErrorTypeValidation, Reason: "method_not_allowed"},
		})
	})

	log.Info("Router configured successfully")
	return r
}
