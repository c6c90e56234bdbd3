// Package auth verifies session tokens issued by the fest identity service.
package auth

import (
	"context"
	"errors"
	"time"

	"fest-backend/internal/domain"
	apperrors "fest-backend/pkg/errors"
	"fest-backend/pkg/logger"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Issuer is the iss claim of fest session tokens.
const Issuer = "fest"

// SessionClaims is the payload of an HS256 session token.
type SessionClaims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

// Service verifies and, for tooling, issues session tokens.
type Service struct {
	secret []byte
	issuer string
	logger *logger.Logger
	now    func() time.Time
}

// NewService creates a new auth service
func NewService(secret, issuer string, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewNop()
	}
	return &Service{
		secret: []byte(secret),
		issuer: issuer,
		logger: log,
		now:    time.Now,
	}
}

// Verify validates the token signature, expiry and issuer and returns the caller identity.
func (s *Service) Verify(ctx context.Context, tokenString string) (domain.Identity, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}

	log := logger.FromContext(ctx, s.logger)
	claims := &SessionClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			log.Debug("Session token expired")
			return domain.Identity{}, apperrors.NewAuthenticationError("Session has expired")
		}
		log.WithError(err).Debug("Session token rejected")
		return domain.Identity{}, apperrors.NewAuthenticationError("Invalid session token")
	}

	if _, err := uuid.Parse(claims.Subject); err != nil {
		log.WithField("subject", claims.Subject).Warn("Session token subject is not a user id")
		return domain.Identity{}, apperrors.NewAuthenticationError("Invalid session token")
	}
	role := domain.Role(claims.Role)
	if !role.Valid() {
		log.WithField("role", claims.Role).Warn("Session token carries unknown role")
		return domain.Identity{}, apperrors.NewAuthenticationError("Invalid session token")
	}

	return domain.Identity{UserID: claims.Subject, Role: role}, nil
}

// Issue signs a session token. The identity service normally does this; the
// migrate tool uses it to mint tokens for seeded accounts.
func (s *Service) Issue(userID string, role domain.Role, ttl time.Duration) (string, error) {
	now := s.now()
	claims := &SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
		Role: string(role),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", apperrors.NewInternalError("Failed to sign session token", err)
	}
	return signed, nil
}
