package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration values for the application
type Config struct {
	Port            string        `yaml:"port" env:"PORT"`
	AllowedOrigins  []string      `yaml:"allowed_origins" env:"ALLOWED_ORIGINS"`
	LogLevel        string        `yaml:"log_level" env:"LOG_LEVEL"`
	DatabaseURL     string        `yaml:"database_url" env:"DATABASE_URL"`
	DatabaseReadURL string        `yaml:"database_read_url" env:"DATABASE_READ_URL"` // Read replica URL for SELECT queries
	RedisURL        string        `yaml:"redis_url" env:"REDIS_URL"`
	JWTSecret       string        `yaml:"jwt_secret" env:"JWT_SECRET"`
	Environment     string        `yaml:"environment" env:"ENVIRONMENT"`
	ScanRateLimit   float64       `yaml:"scan_rate_limit" env:"SCAN_RATE_LIMIT"`
	ScanRateBurst   int           `yaml:"scan_rate_burst" env:"SCAN_RATE_BURST"`
	ResultsCacheTTL time.Duration `yaml:"results_cache_ttl" env:"RESULTS_CACHE_TTL"`
	EventCacheTTL   time.Duration `yaml:"event_cache_ttl" env:"EVENT_CACHE_TTL"`
}

// Default returns the values used when neither the config file nor the
// environment sets a key.
func Default() *Config {
	return &Config{
		Port:            "8080",
		AllowedOrigins:  []string{"http://localhost:5173", "http://localhost:5174"},
		LogLevel:        "info",
		Environment:     "production",
		ScanRateLimit:   5,
		ScanRateBurst:   10,
		ResultsCacheTTL: 30 * time.Second,
		EventCacheTTL:   5 * time.Minute,
	}
}

// Load layers configuration: defaults, then the YAML file named by
// CONFIG_FILE, then environment variables. A .env file in the working
// directory is loaded into the environment first if present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	cfg.AllowedOrigins = parseOrigins(cfg.AllowedOrigins)
	if cfg.DatabaseReadURL == "" {
		cfg.DatabaseReadURL = cfg.DatabaseURL // Falls back to write DB if not set
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

// Validate reports every missing or out-of-range setting at once.
func (c *Config) Validate() error {
	var errs []error
	if c.DatabaseURL == "" {
		errs = append(errs, errors.New("DATABASE_URL is required"))
	}
	if c.JWTSecret == "" && c.IsProduction() {
		errs = append(errs, errors.New("JWT_SECRET is required in production"))
	}
	if c.ScanRateLimit <= 0 {
		errs = append(errs, errors.New("SCAN_RATE_LIMIT must be positive"))
	}
	if c.ScanRateBurst < 1 {
		errs = append(errs, errors.New("SCAN_RATE_BURST must be at least 1"))
	}
	if c.ResultsCacheTTL <= 0 || c.EventCacheTTL <= 0 {
		errs = append(errs, errors.New("cache TTLs must be positive"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}

// IsProduction treats anything that is not an explicit dev/staging/test
// environment as production.
func (c *Config) IsProduction() bool {
	switch strings.ToLower(c.Environment) {
	case "development", "local", "staging", "test":
		return false
	}
	return true
}

// parseOrigins trims entries and drops empty ones
func parseOrigins(origins []string) []string {
	result := make([]string, 0, len(origins))
	for _, origin := range origins {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
