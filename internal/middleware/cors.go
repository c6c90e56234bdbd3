package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"fest-backend/pkg/logger"
)

// CORSConfig holds CORS configuration. An empty AllowedOrigins list or a "*"
// entry reflects any origin back, which credentialed requests require.
type CORSConfig struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	ExposedHeaders   []string
	AllowCredentials bool
	MaxAge           int
}

// DefaultCORSConfig returns the methods and headers used by the fest API.
func DefaultCORSConfig() *CORSConfig {
	return &CORSConfig{
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPatch,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", requestIDHeader},
		ExposedHeaders:   []string{"Content-Length", requestIDHeader},
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}
}

type corsPolicy struct {
	anyOrigin bool
	origins   map[string]struct{}
	headers   map[string]string
}

func newCORSPolicy(config *CORSConfig) *corsPolicy {
	p := &corsPolicy{
		anyOrigin: len(config.AllowedOrigins) == 0,
		origins:   make(map[string]struct{}, len(config.AllowedOrigins)),
		headers:   make(map[string]string),
	}
	for _, origin := range config.AllowedOrigins {
		if origin == "*" {
			p.anyOrigin = true
		}
		p.origins[origin] = struct{}{}
	}

	if config.AllowCredentials {
		p.headers["Access-Control-Allow-Credentials"] = "true"
	}
	if len(config.AllowedMethods) > 0 {
		p.headers["Access-Control-Allow-Methods"] = strings.Join(config.AllowedMethods, ", ")
	}
	if len(config.AllowedHeaders) > 0 {
		p.headers["Access-Control-Allow-Headers"] = strings.Join(config.AllowedHeaders, ", ")
	}
	if len(config.ExposedHeaders) > 0 {
		p.headers["Access-Control-Expose-Headers"] = strings.Join(config.ExposedHeaders, ", ")
	}
	if config.MaxAge > 0 {
		p.headers["Access-Control-Max-Age"] = strconv.Itoa(config.MaxAge)
	}
	return p
}

func (p *corsPolicy) allows(origin string) bool {
	if p.anyOrigin {
		return true
	}
	_, ok := p.origins[origin]
	return ok
}

// CORS creates a CORS middleware. Preflight requests are answered directly
// with 204.
func CORS(config *CORSConfig, log *logger.Logger) func(http.Handler) http.Handler {
	if config == nil {
		config = DefaultCORSConfig()
	}
	policy := newCORSPolicy(config)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin != "" {
				if policy.allows(origin) {
					h := w.Header()
					h.Set("Access-Control-Allow-Origin", origin)
					h.Add("Vary", "Origin")
					for k, v := range policy.headers {
						h.Set(k, v)
					}
				} else if log != nil {
					log.WithFields(map[string]interface{}{
						"origin": origin,
						"method": r.Method,
						"path":   r.URL.Path,
					}).Debug("CORS origin not allowed")
				}
			}

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
