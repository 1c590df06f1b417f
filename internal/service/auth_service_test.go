package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stemsi/survey-seeder/internal/config"
	"github.com/stemsi/survey-seeder/internal/model"
)

func testAuth() *AuthService {
	return NewAuthService(&config.Config{JWTSecret: "test-secret", JWTExpiry: time.Hour}, nil)
}

func TestGenerateAndValidateServiceToken(t *testing.T) {
	auth := testAuth()

	token, issued, err := auth.GenerateServiceToken("ci-pipeline", []string{string(model.PermissionSeedRun)}, 0)
	if err != nil {
		t.Fatalf("GenerateServiceToken: %v", err)
	}
	if issued.ID == "" {
		t.Error("expected a token id")
	}

	claims, err := auth.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.Subject != "ci-pipeline" || claims.TokenType != TokenTypeService {
		t.Errorf("unexpected claims: %+v", claims)
	}
	if !claims.HasPermission(model.PermissionSeedRun) || claims.HasPermission(model.PermissionCatalogWrite) {
		t.Errorf("unexpected permissions: %v", claims.Permissions)
	}
	if err := auth.CheckRevoked(context.Background(), claims.ID); err != nil {
		t.Errorf("CheckRevoked without redis should pass, got %v", err)
	}
}

func TestGenerateServiceToken_RejectsUnknownPermission(t *testing.T) {
	if _, _, err := testAuth().GenerateServiceToken("x", []string{"exam:delete"}, 0); err == nil {
		t.Fatal("expected an error for an unknown permission")
	}
	if _, _, err := testAuth().GenerateServiceToken("", nil, 0); err == nil {
		t.Fatal("expected an error for an empty subject")
	}
}

func TestValidateToken_Rejects(t *testing.T) {
	auth := testAuth()

	t.Run("wrong secret", func(t *testing.T) {
		other := NewAuthService(&config.Config{JWTSecret: "other", JWTExpiry: time.Hour}, nil)
		token, _, err := other.GenerateServiceToken("x", nil, 0)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := auth.ValidateToken(token); err == nil {
			t.Error("expected signature failure")
		}
	})

	t.Run("expired", func(t *testing.T) {
		claims := &Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   "x",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
			},
			TokenType: TokenTypeService,
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
		if err != nil {
			t.Fatal(err)
		}
		if _, err := auth.ValidateToken(token); !errors.Is(err, jwt.ErrTokenExpired) {
			t.Errorf("expected ErrTokenExpired, got %v", err)
		}
	})

	t.Run("wrong token type", func(t *testing.T) {
		claims := &Claims{
			RegisteredClaims: jwt.RegisteredClaims{Subject: "x", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
			TokenType:        "student",
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
		if err != nil {
			t.Fatal(err)
		}
		if _, err := auth.ValidateToken(token); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("expected ErrInvalidToken, got %v", err)
		}
	})
}
