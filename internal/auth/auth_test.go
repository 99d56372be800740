package auth

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/nyumba-homes/marketplace/internal/config"
	"github.com/nyumba-homes/marketplace/internal/logger"
	"github.com/nyumba-homes/marketplace/internal/middleware"
	"github.com/nyumba-homes/marketplace/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testSecret = "super-secret-jwt-token-with-at-least-32-characters"

func init() {
	gin.SetMode(gin.TestMode)
}

type MockProfileLookup struct {
	mock.Mock
}

func (m *MockProfileLookup) GetByID(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

func signHS256(t *testing.T, subject string, exp time.Time) string {
	t.Helper()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Audience:  jwt.ClaimStrings{"authenticated"},
			ExpiresAt: jwt.NewNumericDate(exp),
		},
		Email: "someone@nyumba.mw",
		Role:  "authenticated",
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

func hsVerifier(t *testing.T) *Verifier {
	t.Helper()
	v, err := NewVerifier(context.Background(), config.AuthConfig{JWTSecret: testSecret, Audience: "authenticated"})
	require.NoError(t, err)
	return v
}

func TestBearerToken(t *testing.T) {
	token, err := BearerToken("Bearer abc.def.ghi")
	require.NoError(t, err)
	assert.Equal(t, "abc.def.ghi", token)

	token, err = BearerToken("bearer   xyz")
	require.NoError(t, err)
	assert.Equal(t, "xyz", token)

	for _, header := range []string{"", "Bearer", "Bearer ", "Basic abc", "abc"} {
		_, err := BearerToken(header)
		assert.ErrorIs(t, err, ErrMissingToken, header)
	}
}

func TestVerifier_HS256(t *testing.T) {
	v := hsVerifier(t)
	id := uuid.New()

	t.Run("valid token", func(t *testing.T) {
		claims, err := v.Verify(signHS256(t, id.String(), time.Now().Add(time.Hour)))
		require.NoError(t, err)
		got, err := claims.ProfileID()
		require.NoError(t, err)
		assert.Equal(t, id, got)
		assert.Equal(t, "someone@nyumba.mw", claims.Email)
	})

	t.Run("expired token", func(t *testing.T) {
		_, err := v.Verify(signHS256(t, id.String(), time.Now().Add(-time.Minute)))
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong secret", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   id.String(),
				Audience:  jwt.ClaimStrings{"authenticated"},
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		}).SignedString([]byte("another-secret"))
		require.NoError(t, err)

		_, err = v.Verify(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong audience", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   id.String(),
				Audience:  jwt.ClaimStrings{"anon"},
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		}).SignedString([]byte(testSecret))
		require.NoError(t, err)

		_, err = v.Verify(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("non uuid subject", func(t *testing.T) {
		claims, err := v.Verify(signHS256(t, "not-a-uuid", time.Now().Add(time.Hour)))
		require.NoError(t, err)
		_, err = claims.ProfileID()
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestVerifier_NotConfigured(t *testing.T) {
	v, err := NewVerifier(context.Background(), config.AuthConfig{})
	require.NoError(t, err)
	assert.False(t, v.Configured())

	_, err = v.Verify("anything")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestVerifier_JWKS(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	jwks := map[string]interface{}{
		"keys": []map[string]string{{
			"kty": "RSA",
			"kid": "test-key",
			"alg": "RS256",
			"use": "sig",
			"n":   base64.RawURLEncoding.EncodeToString(key.N.Bytes()),
			"e":   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(key.E)).Bytes()),
		}},
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(jwks)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	v, err := NewVerifier(ctx, config.AuthConfig{JWKSURL: srv.URL})
	require.NoError(t, err)

	id := uuid.New()
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	token.Header["kid"] = "test-key"
	signed, err := token.SignedString(key)
	require.NoError(t, err)

	claims, err := v.Verify(signed)
	require.NoError(t, err)
	assert.Equal(t, id.String(), claims.Subject)

	_, err = v.Verify(signHS256(t, id.String(), time.Now().Add(time.Hour)))
	assert.ErrorIs(t, err, ErrInvalidToken, "HS256 must not be accepted when JWKS is configured")
}

func newAuthRouter(m *Middleware, roles ...models.Role) *gin.Engine {
	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(logger.Nop()))
	router.GET("/private", m.RequireAuth(), RequireRole(roles...), func(c *gin.Context) {
		p, _ := CurrentProfile(c)
		uid, _ := c.Get(middleware.UserIDKey)
		c.JSON(http.StatusOK, gin.H{"email": p.Email, "user_id": uid})
	})
	router.GET("/public", m.OptionalAuth(), func(c *gin.Context) {
		_, ok := CurrentProfile(c)
		c.JSON(http.StatusOK, gin.H{"authenticated": ok})
	})
	return router
}

func doGet(router *gin.Engine, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRequireAuth(t *testing.T) {
	agentID := uuid.New()
	buyerID := uuid.New()
	agent := &models.Profile{ID: agentID, Email: "agent@nyumba.mw", Role: models.RoleAgent}
	buyer := &models.Profile{ID: buyerID, Email: "buyer@nyumba.mw", Role: models.RoleBuyer}

	lookup := new(MockProfileLookup)
	lookup.On("GetByID", mock.Anything, agentID).Return(agent, nil)
	lookup.On("GetByID", mock.Anything, buyerID).Return(buyer, nil)

	router := newAuthRouter(NewMiddleware(hsVerifier(t), lookup), models.RoleAgent, models.RoleOwner, models.RoleAdmin)
	exp := time.Now().Add(time.Hour)

	t.Run("missing token is 401", func(t *testing.T) {
		w := doGet(router, "/private", "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("invalid token is 401", func(t *testing.T) {
		w := doGet(router, "/private", "garbage")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("wrong role is 403", func(t *testing.T) {
		w := doGet(router, "/private", signHS256(t, buyerID.String(), exp))
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("allowed role passes and sets user id", func(t *testing.T) {
		w := doGet(router, "/private", signHS256(t, agentID.String(), exp))
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "agent@nyumba.mw")
		assert.Contains(t, w.Body.String(), agentID.String())
	})
}

func TestRequireAuth_ProfileFailures(t *testing.T) {
	missingID := uuid.New()
	brokenID := uuid.New()

	lookup := new(MockProfileLookup)
	lookup.On("GetByID", mock.Anything, missingID).Return(nil, nil)
	lookup.On("GetByID", mock.Anything, brokenID).Return(nil, errors.New("connection refused"))

	router := newAuthRouter(NewMiddleware(hsVerifier(t), lookup), models.RoleAdmin)
	exp := time.Now().Add(time.Hour)

	w := doGet(router, "/private", signHS256(t, missingID.String(), exp))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doGet(router, "/private", signHS256(t, brokenID.String(), exp))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestRequireAuth_NotConfigured(t *testing.T) {
	v, err := NewVerifier(context.Background(), config.AuthConfig{})
	require.NoError(t, err)
	lookup := new(MockProfileLookup)

	router := newAuthRouter(NewMiddleware(v, lookup), models.RoleAdmin)
	w := doGet(router, "/private", "anything")

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "CONFIGURATION_ERROR")
	lookup.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestOptionalAuth(t *testing.T) {
	id := uuid.New()
	lookup := new(MockProfileLookup)
	lookup.On("GetByID", mock.Anything, id).Return(&models.Profile{ID: id, Role: models.RoleBuyer}, nil)

	router := newAuthRouter(NewMiddleware(hsVerifier(t), lookup))

	w := doGet(router, "/public", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"authenticated":false}`, w.Body.String())

	w = doGet(router, "/public", "garbage")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"authenticated":false}`, w.Body.String())

	w = doGet(router, "/public", signHS256(t, id.String(), time.Now().Add(time.Hour)))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"authenticated":true}`, w.Body.String())
}
