package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/abduss/artifactrepo/internal/config"
	"github.com/golang-jwt/jwt/v5"
)

func TestRemoteValidatorResolvesPrincipal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer session-123" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"user_id":"u1","roles":["user","admin"]}`))
	}))
	defer srv.Close()

	validator := NewRemoteValidator(config.AuthConfig{
		AuthenticateURL: srv.URL,
		RequestTimeout:  time.Second,
	})

	principal, err := validator.Validate(context.Background(), "session-123")
	if err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}
	if principal.UserID != "u1" {
		t.Fatalf("unexpected user: %s", principal.UserID)
	}
	if !principal.IsAdmin() {
		t.Fatalf("expected admin role")
	}

	if _, err := validator.Validate(context.Background(), "wrong-token"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestRemoteValidatorRejectsEmptyIdentity(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"user_id":"","roles":[]}`))
	}))
	defer srv.Close()

	validator := NewRemoteValidator(config.AuthConfig{AuthenticateURL: srv.URL, RequestTimeout: time.Second})
	if _, err := validator.Validate(context.Background(), "anything"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func signToken(t *testing.T, secret string, claims jwt.Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func TestJWTValidatorAcceptsValidToken(t *testing.T) {
	const secret = "test-secret"
	validator := NewJWTValidator(config.AuthConfig{JWTSecret: secret})

	token := signToken(t, secret, accessClaims{
		Roles: []string{"user"},
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "u1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	principal, err := validator.Validate(context.Background(), token)
	if err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}
	if principal.UserID != "u1" || principal.IsAdmin() {
		t.Fatalf("unexpected principal: %+v", principal)
	}
}

func TestJWTValidatorRejectsBadTokens(t *testing.T) {
	const secret = "test-secret"
	validator := NewJWTValidator(config.AuthConfig{JWTSecret: secret})

	expired := signToken(t, secret, accessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "u1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	})
	wrongKey := signToken(t, "other-secret", accessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "u1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	noSubject := signToken(t, secret, accessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	for name, token := range map[string]string{
		"expired":    expired,
		"wrong key":  wrongKey,
		"no subject": noSubject,
		"garbage":    "not-a-token",
	} {
		if _, err := validator.Validate(context.Background(), token); !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("%s: expected ErrUnauthorized, got %v", name, err)
		}
	}
}

func TestNewValidatorSelectsMode(t *testing.T) {
	if _, err := NewValidator(config.AuthConfig{Mode: config.AuthModeJWT, JWTSecret: "s"}); err != nil {
		t.Fatalf("jwt mode: %v", err)
	}
	if _, err := NewValidator(config.AuthConfig{Mode: config.AuthModeRemote}); err != nil {
		t.Fatalf("remote mode: %v", err)
	}
	if _, err := NewValidator(config.AuthConfig{Mode: "ldap"}); err == nil {
		t.Fatalf("expected error for unknown mode")
	}
}
