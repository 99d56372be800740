// Package auth verifies bearer tokens minted by the hosted auth service and
// resolves them to marketplace profiles.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/nyumba-homes/marketplace/internal/config"
)

var (
	ErrNotConfigured = errors.New("token verification is not configured")
	ErrMissingToken  = errors.New("missing bearer token")
	ErrInvalidToken  = errors.New("invalid bearer token")
)

// Claims is the token payload issued by the hosted auth service. Role is the
// platform role ("authenticated"), not the marketplace role.
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
}

// ProfileID returns the subject as a profile id.
func (c *Claims) ProfileID() (uuid.UUID, error) {
	id, err := uuid.Parse(c.Subject)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: subject is not a uuid", ErrInvalidToken)
	}
	return id, nil
}

// Verifier validates bearer tokens with either a shared HS256 secret or the
// keys published at a JWKS endpoint.
type Verifier struct {
	keyfunc jwt.Keyfunc
	parser  *jwt.Parser
}

// NewVerifier builds a Verifier from cfg. The JWKS endpoint wins when both
// methods are configured. With neither, the returned Verifier reports
// ErrNotConfigured on every call.
func NewVerifier(ctx context.Context, cfg config.AuthConfig) (*Verifier, error) {
	opts := []jwt.ParserOption{jwt.WithExpirationRequired()}
	if cfg.Audience != "" {
		opts = append(opts, jwt.WithAudience(cfg.Audience))
	}

	switch {
	case cfg.JWKSURL != "":
		jwks, err := keyfunc.NewDefaultCtx(ctx, []string{cfg.JWKSURL})
		if err != nil {
			return nil, fmt.Errorf("failed to create JWKS client: %w", err)
		}
		opts = append(opts, jwt.WithValidMethods([]string{"RS256", "ES256"}))
		return &Verifier{keyfunc: jwks.Keyfunc, parser: jwt.NewParser(opts...)}, nil
	case cfg.JWTSecret != "":
		secret := []byte(cfg.JWTSecret)
		opts = append(opts, jwt.WithValidMethods([]string{"HS256"}))
		return &Verifier{
			keyfunc: func(*jwt.Token) (interface{}, error) { return secret, nil },
			parser:  jwt.NewParser(opts...),
		}, nil
	default:
		return &Verifier{}, nil
	}
}

// Configured reports whether tokens can be verified.
func (v *Verifier) Configured() bool {
	return v != nil && v.keyfunc != nil
}

// Verify validates a raw token and returns its claims.
func (v *Verifier) Verify(token string) (*Claims, error) {
	if !v.Configured() {
		return nil, ErrNotConfigured
	}
	if token == "" {
		return nil, ErrMissingToken
	}
	claims := &Claims{}
	if _, err := v.parser.ParseWithClaims(token, claims, v.keyfunc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	return claims, nil
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, error) {
	if header == "" {
		return "", ErrMissingToken
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", ErrMissingToken
	}
	return strings.TrimSpace(token), nil
}
