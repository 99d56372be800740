package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/nyumba-homes/marketplace/internal/auth"
	"github.com/nyumba-homes/marketplace/internal/config"
	apierrors "github.com/nyumba-homes/marketplace/internal/errors"
	"github.com/nyumba-homes/marketplace/internal/logger"
	"github.com/nyumba-homes/marketplace/internal/middleware"
	"github.com/nyumba-homes/marketplace/internal/models"
	"github.com/nyumba-homes/marketplace/internal/services"
	"github.com/nyumba-homes/marketplace/internal/tracking"
	"github.com/stretchr/testify/require"
)

const testSecret = "handler-test-secret"

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(logger.Nop()))
	return router
}

func serve(router *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// profileMap is a ProfileLookup backed by a map.
type profileMap map[uuid.UUID]*models.Profile

func (m profileMap) GetByID(_ context.Context, id uuid.UUID) (*models.Profile, error) {
	return m[id], nil
}

// testEnv is the full API router with every service mocked except media,
// which runs the real MediaService against a mocked object store.
type testEnv struct {
	router      *gin.Engine
	profiles    profileMap
	marketplace *MockMarketplaceService
	listings    *MockListingService
	dashboard   *MockDashboardService
	admin       *MockAdminService
	tracking    *MockTrackingService
	diagnostics *MockDiagnosticsService
	store       *MockObjectStore
	states      *tracking.HandleStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	verifier, err := auth.NewVerifier(context.Background(), config.AuthConfig{JWTSecret: testSecret})
	require.NoError(t, err)

	env := &testEnv{
		router:      newTestRouter(),
		profiles:    profileMap{},
		marketplace: new(MockMarketplaceService),
		listings:    new(MockListingService),
		dashboard:   new(MockDashboardService),
		admin:       new(MockAdminService),
		tracking:    new(MockTrackingService),
		diagnostics: new(MockDiagnosticsService),
		store:       new(MockObjectStore),
		states:      tracking.NewHandleStore(testSecret, false),
	}

	Routes{
		Health:      NewHealthHandler(stubPinger{}, "test", Capabilities{Storage: true, Auth: true}),
		Marketplace: NewMarketplaceHandler(env.marketplace, env.states),
		Dashboard:   NewDashboardHandler(env.listings, env.dashboard),
		Admin:       NewAdminHandler(env.dashboard, env.admin, env.listings),
		Media:       NewMediaHandler(services.NewMediaService(env.store, nil, nil, logger.Nop())),
		Tracking:    NewTrackingHandler(env.tracking, env.states),
		Diagnostics: NewDiagnosticsHandler(env.diagnostics),
		Auth:        auth.NewMiddleware(verifier, env.profiles),
	}.Register(env.router)

	return env
}

// addProfile registers a profile with the given role and returns it.
func (e *testEnv) addProfile(role models.Role) *models.Profile {
	p := &models.Profile{ID: uuid.New(), Role: role, Email: string(role) + "@example.com", FullName: "Test " + string(role)}
	e.profiles[p.ID] = p
	return p
}

// token signs a bearer token for profile.
func token(t *testing.T, profile *models.Profile) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   profile.ID.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

// request builds a request with an optional JSON body and bearer token.
func request(t *testing.T, method, target string, body interface{}, profile *models.Profile) *http.Request {
	t.Helper()
	var req *http.Request
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		req = httptest.NewRequest(method, target, bytes.NewReader(raw))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if profile != nil {
		req.Header.Set("Authorization", "Bearer "+token(t, profile))
	}
	return req
}

// decodeError parses the API error envelope.
func decodeError(t *testing.T, w *httptest.ResponseRecorder) apierrors.ErrorDetail {
	t.Helper()
	var resp apierrors.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Error
}
