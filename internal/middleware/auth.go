package middleware

import (
	"context"
	"net/http"
	"strings"

	"fest-backend/internal/domain"
	"fest-backend/internal/response"
	"fest-backend/pkg/errors"
	"fest-backend/pkg/logger"
)

// ContextKey represents keys used in request context
type ContextKey string

const (
	// IdentityContextKey is the key for the verified caller in context
	IdentityContextKey ContextKey = "identity"
	// RequestIDContextKey is the key for request ID in context
	RequestIDContextKey ContextKey = "request_id"
)

// TokenVerifier turns a bearer token into the caller identity.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (domain.Identity, error)
}

// Auth creates an authentication middleware
func Auth(verifier TokenVerifier, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				response.Error(w, r, errors.NewAuthenticationError("Authorization header is required"), log)
				return
			}

			if !strings.HasPrefix(authHeader, "Bearer ") {
				response.Error(w, r, errors.NewAuthenticationError("Invalid authorization header format"), log)
				return
			}

			token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
			if token == "" {
				response.Error(w, r, errors.NewAuthenticationError("Token is required"), log)
				return
			}

			identity, err := verifier.Verify(r.Context(), token)
			if err != nil {
				response.Error(w, r, err, log)
				return
			}

			ctx := WithIdentity(r.Context(), identity)
			if reqLog := logger.FromContext(ctx, log); reqLog != nil {
				ctx = logger.IntoContext(ctx, reqLog.WithField("user_id", identity.UserID))
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// WithIdentity stores the verified caller in ctx.
func WithIdentity(ctx context.Context, identity domain.Identity) context.Context {
	return context.WithValue(ctx, IdentityContextKey, identity)
}

// IdentityFrom returns the caller set by Auth.
func IdentityFrom(ctx context.Context) (domain.Identity, bool) {
	identity, ok := ctx.Value(IdentityContextKey).(domain.Identity)
	return identity, ok
}
