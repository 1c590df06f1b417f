package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stemsi/survey-seeder/internal/config"
	"github.com/stemsi/survey-seeder/internal/model"
)

// Common auth errors.
var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenRevoked = errors.New("token has been revoked")
)

// TokenType distinguishes the kinds of bearer tokens the server accepts.
type TokenType string

const (
	TokenTypeService TokenType = "service"
)

// Claims extends JWT standard claims with app-specific fields.
type Claims struct {
	jwt.RegisteredClaims
	TokenType   TokenType `json:"token_type"`
	Permissions []string  `json:"permissions,omitempty"`
}

// HasPermission reports whether the claims grant perm.
func (c *Claims) HasPermission(perm model.Permission) bool {
	for _, p := range c.Permissions {
		if p == string(perm) {
			return true
		}
	}
	return false
}

// AuthService issues and validates service tokens.
type AuthService struct {
	cfg *config.Config
	rdb *redis.Client
}

// NewAuthService creates a new AuthService. rdb may be nil, in which case
// revocation is not supported.
func NewAuthService(cfg *config.Config, rdb *redis.Client) *AuthService {
	return &AuthService{cfg: cfg, rdb: rdb}
}

// GenerateServiceToken creates a signed JWT for a machine client.
// A zero ttl uses the configured JWT expiry.
func (s *AuthService) GenerateServiceToken(subject string, permissions []string, ttl time.Duration) (string, *Claims, error) {
	if subject == "" {
		return "", nil, errors.New("subject is required")
	}
	for _, p := range permissions {
		if !model.IsValidPermission(p) {
			return "", nil, fmt.Errorf("unknown permission %q", p)
		}
	}
	if ttl <= 0 {
		ttl = s.cfg.JWTExpiry
	}

	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		TokenType:   TokenTypeService,
		Permissions: permissions,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", nil, err
	}
	return signed, claims, nil
}

// ValidateToken parses and validates a JWT, returning the claims.
func (s *AuthService) ValidateToken(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.TokenType != TokenTypeService {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// CheckRevoked returns ErrTokenRevoked when the token id was revoked.
func (s *AuthService) CheckRevoked(ctx context.Context, jti string) error {
	if s.rdb == nil || jti == "" {
		return nil
	}
	n, err := s.rdb.Exists(ctx, config.CacheKey.RevokedTokenKey(jti)).Result()
	if err != nil {
		return fmt.Errorf("check revocation: %w", err)
	}
	if n > 0 {
		return ErrTokenRevoked
	}
	return nil
}

// RevokeToken marks a token id as revoked until the token would have expired anyway.
func (s *AuthService) RevokeToken(ctx context.Context, claims *Claims) error {
	if s.rdb == nil {
		return errors.New("revocation requires redis")
	}
	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return nil
	}
	return s.rdb.Set(ctx, config.CacheKey.RevokedTokenKey(claims.ID), 1, ttl).Err()
}
