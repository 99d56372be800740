package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/nyumba-homes/marketplace/internal/models"
	"github.com/nyumba-homes/marketplace/internal/repository"
	"github.com/nyumba-homes/marketplace/internal/tracking"
	"github.com/stretchr/testify/mock"
)

// syncScheduler runs background jobs inline so tests can assert on them.
type syncScheduler struct {
	errs []error
}

func (s *syncScheduler) Go(ctx context.Context, _ string, fn func(ctx context.Context) error) {
	s.errs = append(s.errs, fn(ctx))
}

// MockPropertyRepository is a mock implementation of PropertyRepository for testing
type MockPropertyRepository struct {
	mock.Mock
}

func (m *MockPropertyRepository) List(ctx context.Context) ([]models.Property, error) {
	args := m.Called(ctx)
	props, _ := args.Get(0).([]models.Property)
	return props, args.Error(1)
}

func (m *MockPropertyRepository) ListAvailable(ctx context.Context, filter models.PropertyFilter) ([]models.Property, error) {
	args := m.Called(ctx, filter)
	props, _ := args.Get(0).([]models.Property)
	return props, args.Error(1)
}

func (m *MockPropertyRepository) ListByOwner(ctx context.Context, owner models.ListingOwner) ([]models.Property, error) {
	args := m.Called(ctx, owner)
	props, _ := args.Get(0).([]models.Property)
	return props, args.Error(1)
}

func (m *MockPropertyRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Property, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(*models.Property)
	return p, args.Error(1)
}

func (m *MockPropertyRepository) Create(ctx context.Context, p *models.Property) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockPropertyRepository) Update(ctx context.Context, p *models.Property) (*models.Property, error) {
	args := m.Called(ctx, p)
	out, _ := args.Get(0).(*models.Property)
	return out, args.Error(1)
}

func (m *MockPropertyRepository) UpdateStatus(ctx context.Context, id uuid.UUID, change repository.StatusChange) (*models.Property, error) {
	args := m.Called(ctx, id, change)
	out, _ := args.Get(0).(*models.Property)
	return out, args.Error(1)
}

func (m *MockPropertyRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockPropertyRepository) IncrementViewCount(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockPropertyRepository) IncrementInquiryCount(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

// MockInquiryRepository is a mock implementation of InquiryRepository for testing
type MockInquiryRepository struct {
	mock.Mock
}

func (m *MockInquiryRepository) Create(ctx context.Context, inq *models.Inquiry) error {
	return m.Called(ctx, inq).Error(0)
}

func (m *MockInquiryRepository) List(ctx context.Context) ([]models.Inquiry, error) {
	args := m.Called(ctx)
	out, _ := args.Get(0).([]models.Inquiry)
	return out, args.Error(1)
}

func (m *MockInquiryRepository) ListForProperties(ctx context.Context, ids []uuid.UUID) ([]models.Inquiry, error) {
	args := m.Called(ctx, ids)
	out, _ := args.Get(0).([]models.Inquiry)
	return out, args.Error(1)
}

func (m *MockInquiryRepository) ExistsForBuyer(ctx context.Context, propertyID, buyerID uuid.UUID) (bool, error) {
	args := m.Called(ctx, propertyID, buyerID)
	return args.Bool(0), args.Error(1)
}

func (m *MockInquiryRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Inquiry, error) {
	args := m.Called(ctx, id)
	out, _ := args.Get(0).(*models.Inquiry)
	return out, args.Error(1)
}

func (m *MockInquiryRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.InquiryStatus) (*models.Inquiry, error) {
	args := m.Called(ctx, id, status)
	out, _ := args.Get(0).(*models.Inquiry)
	return out, args.Error(1)
}

// MockProfileRepository is a mock implementation of ProfileRepository for testing
type MockProfileRepository struct {
	mock.Mock
}

func (m *MockProfileRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	args := m.Called(ctx, id)
	out, _ := args.Get(0).(*models.Profile)
	return out, args.Error(1)
}

func (m *MockProfileRepository) List(ctx context.Context) ([]models.Profile, error) {
	args := m.Called(ctx)
	out, _ := args.Get(0).([]models.Profile)
	return out, args.Error(1)
}

func (m *MockProfileRepository) Create(ctx context.Context, p *models.Profile) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockProfileRepository) UpdateAdminFields(ctx context.Context, id uuid.UUID, role *models.Role, verified *bool) (*models.Profile, error) {
	args := m.Called(ctx, id, role, verified)
	out, _ := args.Get(0).(*models.Profile)
	return out, args.Error(1)
}

// MockAgentRepository is a mock implementation of AgentRepository for testing
type MockAgentRepository struct {
	mock.Mock
}

func (m *MockAgentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Agent, error) {
	args := m.Called(ctx, id)
	out, _ := args.Get(0).(*models.Agent)
	return out, args.Error(1)
}

func (m *MockAgentRepository) GetByProfileID(ctx context.Context, profileID uuid.UUID) (*models.Agent, error) {
	args := m.Called(ctx, profileID)
	out, _ := args.Get(0).(*models.Agent)
	return out, args.Error(1)
}

func (m *MockAgentRepository) List(ctx context.Context) ([]models.Agent, error) {
	args := m.Called(ctx)
	out, _ := args.Get(0).([]models.Agent)
	return out, args.Error(1)
}

func (m *MockAgentRepository) Create(ctx context.Context, a *models.Agent) error {
	return m.Called(ctx, a).Error(0)
}

func (m *MockAgentRepository) AdjustTotals(ctx context.Context, agentID uuid.UUID, listings, sales int) error {
	return m.Called(ctx, agentID, listings, sales).Error(0)
}

// MockViewRepository is a mock implementation of ViewRepository for testing
type MockViewRepository struct {
	mock.Mock
}

func (m *MockViewRepository) Insert(ctx context.Context, v *models.PropertyView) error {
	return m.Called(ctx, v).Error(0)
}

func (m *MockViewRepository) List(ctx context.Context) ([]models.PropertyView, error) {
	args := m.Called(ctx)
	out, _ := args.Get(0).([]models.PropertyView)
	return out, args.Error(1)
}

// MockSearchQueryRepository is a mock implementation of SearchQueryRepository for testing
type MockSearchQueryRepository struct {
	mock.Mock
}

func (m *MockSearchQueryRepository) Insert(ctx context.Context, q *models.SearchQuery) error {
	return m.Called(ctx, q).Error(0)
}

func (m *MockSearchQueryRepository) List(ctx context.Context) ([]models.SearchQuery, error) {
	args := m.Called(ctx)
	out, _ := args.Get(0).([]models.SearchQuery)
	return out, args.Error(1)
}

func (m *MockSearchQueryRepository) MarkLatestConverted(ctx context.Context, sessionID uuid.UUID, inquiry bool) error {
	return m.Called(ctx, sessionID, inquiry).Error(0)
}

// MockSessionRepository is a mock implementation of SessionRepository for testing
type MockSessionRepository struct {
	mock.Mock
}

func (m *MockSessionRepository) Insert(ctx context.Context, s *models.UserSession) error {
	return m.Called(ctx, s).Error(0)
}

func (m *MockSessionRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.UserSession, error) {
	args := m.Called(ctx, id)
	out, _ := args.Get(0).(*models.UserSession)
	return out, args.Error(1)
}

func (m *MockSessionRepository) End(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockSessionRepository) IncrementSearchCount(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockSessionRepository) IncrementFunnel(ctx context.Context, id uuid.UUID, stage repository.FunnelStage) error {
	return m.Called(ctx, id, stage).Error(0)
}

func (m *MockSessionRepository) List(ctx context.Context) ([]models.UserSession, error) {
	args := m.Called(ctx)
	out, _ := args.Get(0).([]models.UserSession)
	return out, args.Error(1)
}

// MockTrafficRepository is a mock implementation of TrafficRepository for testing
type MockTrafficRepository struct {
	mock.Mock
}

func (m *MockTrafficRepository) Insert(ctx context.Context, t *models.TrafficSource) error {
	return m.Called(ctx, t).Error(0)
}

func (m *MockTrafficRepository) IncrementPageViews(ctx context.Context, sessionID string) (int64, error) {
	args := m.Called(ctx, sessionID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTrafficRepository) GetBySessionID(ctx context.Context, sessionID string) (*models.TrafficSource, error) {
	args := m.Called(ctx, sessionID)
	out, _ := args.Get(0).(*models.TrafficSource)
	return out, args.Error(1)
}

func (m *MockTrafficRepository) List(ctx context.Context) ([]models.TrafficSource, error) {
	args := m.Called(ctx)
	out, _ := args.Get(0).([]models.TrafficSource)
	return out, args.Error(1)
}

func (m *MockTrafficRepository) Delete(ctx context.Context, sessionID string) error {
	return m.Called(ctx, sessionID).Error(0)
}

func (m *MockTrafficRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockSearchTracker is a mock implementation of SearchTracker for testing
type MockSearchTracker struct {
	mock.Mock
}

func (m *MockSearchTracker) TrackSearchQuery(ctx context.Context, in tracking.SearchInput) error {
	return m.Called(ctx, in).Error(0)
}

func (m *MockSearchTracker) RecordFunnel(ctx context.Context, sessionID uuid.UUID, stage repository.FunnelStage) error {
	return m.Called(ctx, sessionID, stage).Error(0)
}

// MockObjectStore is a mock implementation of ObjectStore for testing
type MockObjectStore struct {
	mock.Mock
}

func (m *MockObjectStore) UploadFile(ctx context.Context, data []byte, path, contentType string) (string, error) {
	args := m.Called(ctx, data, path, contentType)
	return args.String(0), args.Error(1)
}

func (m *MockObjectStore) DeleteFile(ctx context.Context, path string) error {
	return m.Called(ctx, path).Error(0)
}

func (m *MockObjectStore) PresignedURL(ctx context.Context, path string, ttl time.Duration) (string, error) {
	args := m.Called(ctx, path, ttl)
	return args.String(0), args.Error(1)
}

func (m *MockObjectStore) ExtractPathFromURL(raw string) (string, bool) {
	args := m.Called(raw)
	return args.String(0), args.Bool(1)
}

// MockTableProber is a mock implementation of TableProber for testing
type MockTableProber struct {
	mock.Mock
}

func (m *MockTableProber) TableExists(ctx context.Context, name string) (bool, error) {
	args := m.Called(ctx, name)
	return args.Bool(0), args.Error(1)
}

func (m *MockTableProber) CountRows(ctx context.Context, table string) (int64, error) {
	args := m.Called(ctx, table)
	return args.Get(0).(int64), args.Error(1)
}

// MockSessionLifecycle is a mock implementation of SessionLifecycle for testing
type MockSessionLifecycle struct {
	mock.Mock
}

func (m *MockSessionLifecycle) GetOrCreate(ctx context.Context, h tracking.Handle, meta tracking.SessionMeta) (tracking.Handle, error) {
	args := m.Called(ctx, h, meta)
	return args.Get(0).(tracking.Handle), args.Error(1)
}

func (m *MockSessionLifecycle) End(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

// MockVisitRecorder is a mock implementation of VisitRecorder for testing
type MockVisitRecorder struct {
	mock.Mock
}

func (m *MockVisitRecorder) Track(ctx context.Context, state tracking.VisitState, in tracking.VisitInput) (tracking.VisitResult, error) {
	args := m.Called(ctx, state, in)
	return args.Get(0).(tracking.VisitResult), args.Error(1)
}
