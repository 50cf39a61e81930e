package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/abduss/artifactrepo/internal/config"
	"github.com/golang-jwt/jwt/v5"
)

// TokenValidator resolves an opaque session token into a Principal. The
// service never parses tokens itself beyond the chosen implementation.
type TokenValidator interface {
	Validate(ctx context.Context, token string) (Principal, error)
}

// RemoteValidator delegates validation to the authentication service: the
// token is forwarded as a bearer credential and a 2xx response body carries
// the resolved identity.
type RemoteValidator struct {
	client          *http.Client
	authenticateURL string
}

// NewRemoteValidator builds a validator against the configured auth endpoint.
func NewRemoteValidator(cfg config.AuthConfig) *RemoteValidator {
	return &RemoteValidator{
		client:          &http.Client{Timeout: cfg.RequestTimeout},
		authenticateURL: cfg.AuthenticateURL,
	}
}

func (v *RemoteValidator) Validate(ctx context.Context, token string) (Principal, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.authenticateURL, nil)
	if err != nil {
		return Principal{}, fmt.Errorf("build authenticate request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := v.client.Do(req)
	if err != nil {
		return Principal{}, fmt.Errorf("call auth service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Principal{}, ErrUnauthorized
	}

	var principal Principal
	if err := json.NewDecoder(resp.Body).Decode(&principal); err != nil {
		return Principal{}, fmt.Errorf("decode auth response: %w", err)
	}
	if !principal.Authenticated() {
		return Principal{}, ErrUnauthorized
	}
	return principal, nil
}

// JWTValidator validates self-contained HS256 access tokens. Used by
// deployments without a separate authentication service.
type JWTValidator struct {
	secret  []byte
	parser  *jwt.Parser
	nowFunc func() time.Time
}

type accessClaims struct {
	Roles []string `json:"roles"`
	jwt.RegisteredClaims
}

// NewJWTValidator builds a validator for locally issued access tokens.
func NewJWTValidator(cfg config.AuthConfig) *JWTValidator {
	return &JWTValidator{
		secret:  []byte(cfg.JWTSecret),
		parser:  jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name})),
		nowFunc: time.Now,
	}
}

func (v *JWTValidator) Validate(ctx context.Context, token string) (Principal, error) {
	claims := &accessClaims{}
	parsed, err := v.parser.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return v.secret, nil
	})
	if err != nil || !parsed.Valid {
		return Principal{}, ErrUnauthorized
	}
	if claims.ExpiresAt != nil && claims.ExpiresAt.Before(v.nowFunc()) {
		return Principal{}, ErrUnauthorized
	}
	if claims.Subject == "" {
		return Principal{}, ErrUnauthorized
	}
	return Principal{UserID: claims.Subject, Roles: claims.Roles}, nil
}

// NewValidator selects the validator implementation from configuration.
func NewValidator(cfg config.AuthConfig) (TokenValidator, error) {
	switch cfg.Mode {
	case config.AuthModeRemote:
		return NewRemoteValidator(cfg), nil
	case config.AuthModeJWT:
		return NewJWTValidator(cfg), nil
	default:
		return nil, fmt.Errorf("unknown auth mode %q", cfg.Mode)
	}
}
