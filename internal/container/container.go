package container

import (
	"fest-backend/internal/config"
	"fest-backend/internal/handler"
	"fest-backend/internal/middleware"
	"fest-backend/internal/repository"
	"fest-backend/internal/service"
	"fest-backend/internal/service/auth"
	"fest-backend/pkg/database"
	"fest-backend/pkg/logger"
	"fest-backend/pkg/metrics"
	"fest-backend/pkg/redis"

	"golang.org/x/time/rate"
)

// Version is reported by the health endpoint.
const Version = "1.0.0"

// Container holds all application dependencies
type Container struct {
	Config      *config.Config
	Logger      *logger.Logger
	DB          *database.PostgresDB
	RedisClient *redis.Client
	Metrics     *metrics.Metrics
	Auth        *auth.Service
	Services    *service.Services
	Handlers    handler.Handlers
	Health      *handler.HealthHandler
	ScanLimiter *middleware.KeyedRateLimiter
}

// New wires repositories, services and handlers on top of an open database.
// Redis is optional: when it is not configured or unreachable the service
// runs without caching.
func New(cfg *config.Config, log *logger.Logger, db *database.PostgresDB) (*Container, error) {
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		client, err := redis.NewClient(cfg.RedisURL, cfg.Environment, log.Logger)
		if err != nil {
			log.WithError(err).Warn("Failed to initialize Redis client, proceeding without caching")
		} else {
			redisClient = client
			log.Info("Redis client initialized successfully")
		}
	} else {
		log.Info("Redis URL not configured, proceeding without caching")
	}

	m := metrics.New()
	store := repository.NewPostgresStore(db)
	accounts := service.StoredAccountStatus{}

	cache := service.NewCacheService(redisClient, m, log.Logger, cfg.EventCacheTTL, cfg.ResultsCacheTTL)
	registrations := service.NewRegistrationService(store, log.Logger)
	services := &service.Services{
		Teams:         service.NewTeamService(store, accounts, accounts, registrations, log.Logger),
		Registrations: registrations,
		CheckIns:      service.NewCheckInService(store, accounts, m, log.Logger),
		Results:       service.NewResultService(store, cache, m, log.Logger),
		Events:        service.NewEventService(store, cache, log.Logger),
		Cache:         cache,
	}

	// Without Redis the health check reports the cache as disabled.
	var cachePinger handler.Pinger
	if redisClient != nil {
		cachePinger = cache
	}

	return &Container{
		Config:      cfg,
		Logger:      log,
		DB:          db,
		RedisClient: redisClient,
		Metrics:     m,
		Auth:        auth.NewService(cfg.JWTSecret, auth.Issuer, log.Named("auth")),
		Services:    services,
		Handlers: handler.Handlers{
			Teams:  handler.NewTeamHandler(services.Teams, log),
			Events: handler.NewEventHandler(services.Events, services.Registrations, log),
			Rounds: handler.NewRoundHandler(services.CheckIns, services.Results, log),
		},
		Health:      handler.NewHealthHandler(db, cachePinger, Version, log),
		ScanLimiter: middleware.NewKeyedRateLimiter(rate.Limit(cfg.ScanRateLimit), cfg.ScanRateBurst),
	}, nil
}

// HasRedis returns true if Redis client is available
func (c *Container) HasRedis() bool {
	return c.RedisClient != nil
}
