// Package security issues and validates the bearer tokens of the API
package security

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alchemorsel/cookbook/internal/infrastructure/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Used when no secret is configured outside production
const developmentSecret = "cookbook-development-secret-change-me"

var (
	ErrInvalidToken   = errors.New("invalid or expired token")
	ErrMissingSubject = errors.New("token carries no user id")
)

// Claims represents JWT claims structure
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// TokenService signs and verifies HS256 access tokens
type TokenService struct {
	secret     []byte
	issuer     string
	audience   string
	expiration time.Duration
	logger     *zap.Logger
	now        func() time.Time
}

// NewTokenService creates the token service
func NewTokenService(cfg config.AuthConfig, logger *zap.Logger) *TokenService {
	log := logger.Named("auth")
	secret := cfg.JWTSecret
	if secret == "" {
		log.Warn("auth.jwt_secret is not set, using the development secret")
		secret = developmentSecret
	}
	expiration := cfg.JWTExpiration
	if expiration <= 0 {
		expiration = 24 * time.Hour
	}
	return &TokenService{
		secret:     []byte(secret),
		issuer:     cfg.Issuer,
		audience:   cfg.Audience,
		expiration: expiration,
		logger:     log,
		now:        time.Now,
	}
}

// GenerateAccessToken creates a new access token
func (s *TokenService) GenerateAccessToken(userID uuid.UUID, email string) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(s.expiration)
	claims := &Claims{
		UserID: userID.String(),
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}
	if s.audience != "" {
		claims.Audience = jwt.ClaimStrings{s.audience}
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// ValidateToken validates and parses a JWT token
func (s *TokenService) ValidateToken(tokenString string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
		jwt.WithLeeway(30 * time.Second),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}
	if s.audience != "" {
		opts = append(opts, jwt.WithAudience(s.audience))
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, opts...)
	if err != nil || !token.Valid {
		s.logger.Debug("Token validation failed", zap.Error(err))
		return nil, ErrInvalidToken
	}

	if claims.UserID == "" {
		return nil, ErrMissingSubject
	}
	if _, err := uuid.Parse(claims.UserID); err != nil {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// UserUUID returns the parsed user id of validated claims
func (c *Claims) UserUUID() uuid.UUID {
	id, _ := uuid.Parse(c.UserID)
	return id
}

type contextKey struct{}

// ContextWithUser stores the authenticated user id
func ContextWithUser(ctx context.Context, userID uuid.UUID) context.Context {
	return context.WithValue(ctx, contextKey{}, userID)
}

// UserIDFromContext returns the authenticated user id, if any
func UserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(contextKey{}).(uuid.UUID)
	return id, ok && id != uuid.Nil
}
