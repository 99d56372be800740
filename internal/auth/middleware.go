package auth

import (
	"context"
	"errors"
	"slices"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	apierrors "github.com/nyumba-homes/marketplace/internal/errors"
	"github.com/nyumba-homes/marketplace/internal/middleware"
	"github.com/nyumba-homes/marketplace/internal/models"
)

const profileKey = "auth_profile"

// TokenVerifier validates raw bearer tokens.
type TokenVerifier interface {
	Configured() bool
	Verify(token string) (*Claims, error)
}

// ProfileLookup loads the marketplace profile behind a token subject.
type ProfileLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Profile, error)
}

// Middleware resolves bearer tokens to profiles for gin routes.
type Middleware struct {
	verifier TokenVerifier
	profiles ProfileLookup
}

// NewMiddleware creates a new Middleware.
func NewMiddleware(verifier TokenVerifier, profiles ProfileLookup) *Middleware {
	return &Middleware{verifier: verifier, profiles: profiles}
}

var errProfileNotFound = errors.New("profile not found")

func (m *Middleware) resolve(c *gin.Context) (*models.Profile, error) {
	if m.verifier == nil || !m.verifier.Configured() {
		return nil, ErrNotConfigured
	}
	token, err := BearerToken(c.GetHeader("Authorization"))
	if err != nil {
		return nil, err
	}
	claims, err := m.verifier.Verify(token)
	if err != nil {
		return nil, err
	}
	id, err := claims.ProfileID()
	if err != nil {
		return nil, err
	}
	profile, err := m.profiles.GetByID(c.Request.Context(), id)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, errProfileNotFound
	}
	return profile, nil
}

func setProfile(c *gin.Context, p *models.Profile) {
	c.Set(profileKey, p)
	c.Set(middleware.UserIDKey, p.ID.String())
}

// RequireAuth rejects requests without a valid bearer token for an existing
// profile.
func (m *Middleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		profile, err := m.resolve(c)
		switch {
		case err == nil:
			setProfile(c, profile)
			c.Next()
		case errors.Is(err, ErrNotConfigured):
			apierrors.ServiceUnavailable(c, "Authentication is not configured", err)
		case errors.Is(err, ErrMissingToken):
			apierrors.Unauthorized(c, "Unauthorized")
		case errors.Is(err, ErrInvalidToken):
			apierrors.Unauthorized(c, "Invalid or expired token")
		case errors.Is(err, errProfileNotFound):
			apierrors.Forbidden(c, "Profile not found")
		default:
			apierrors.InternalServerError(c, "Failed to load profile", err)
		}
	}
}

// OptionalAuth attaches the caller's profile when a valid token is present
// and otherwise lets the request through anonymously.
func (m *Middleware) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") != "" {
			if profile, err := m.resolve(c); err == nil {
				setProfile(c, profile)
			} else if log := middleware.GetLogger(c); log != nil {
				log.Debug("Ignoring unusable bearer token", map[string]interface{}{"error": err.Error()})
			}
		}
		c.Next()
	}
}

// RequireRole must run after RequireAuth. It rejects callers whose profile
// role is not one of roles.
func RequireRole(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		profile, ok := CurrentProfile(c)
		if !ok {
			apierrors.Unauthorized(c, "Unauthorized")
			return
		}
		if !slices.Contains(roles, profile.Role) {
			apierrors.Forbidden(c, "Forbidden - insufficient permissions")
			return
		}
		c.Next()
	}
}

// CurrentProfile returns the authenticated profile, if any.
func CurrentProfile(c *gin.Context) (*models.Profile, bool) {
	v, ok := c.Get(profileKey)
	if !ok {
		return nil, false
	}
	p, ok := v.(*models.Profile)
	return p, ok && p != nil
}
