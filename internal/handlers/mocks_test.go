package handlers

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/nyumba-homes/marketplace/internal/analytics"
	"github.com/nyumba-homes/marketplace/internal/models"
	"github.com/nyumba-homes/marketplace/internal/services"
	"github.com/nyumba-homes/marketplace/internal/tracking"
	"github.com/stretchr/testify/mock"
)

// MockMarketplaceService is a mock implementation of MarketplaceService for testing
type MockMarketplaceService struct {
	mock.Mock
}

func (m *MockMarketplaceService) Search(ctx context.Context, filter models.PropertyFilter, visitor services.Visitor, viewer *models.Profile) ([]models.Property, error) {
	args := m.Called(ctx, filter, visitor, viewer)
	out, _ := args.Get(0).([]models.Property)
	return out, args.Error(1)
}

func (m *MockMarketplaceService) GetListing(ctx context.Context, id uuid.UUID, viewer *models.Profile, visitor services.Visitor) (*models.Property, error) {
	args := m.Called(ctx, id, viewer, visitor)
	out, _ := args.Get(0).(*models.Property)
	return out, args.Error(1)
}

func (m *MockMarketplaceService) ContactDetails(ctx context.Context, id uuid.UUID, buyer *models.Profile) (*services.ListingContact, error) {
	args := m.Called(ctx, id, buyer)
	out, _ := args.Get(0).(*services.ListingContact)
	return out, args.Error(1)
}

func (m *MockMarketplaceService) SubmitInquiry(ctx context.Context, propertyID uuid.UUID, buyer *models.Profile, in services.InquiryInput, visitor services.Visitor) (*models.Inquiry, error) {
	args := m.Called(ctx, propertyID, buyer, in, visitor)
	out, _ := args.Get(0).(*models.Inquiry)
	return out, args.Error(1)
}

// MockListingService is a mock implementation of ListingService for testing
type MockListingService struct {
	mock.Mock
}

func (m *MockListingService) Create(ctx context.Context, actor *models.Profile, in services.ListingInput) (*models.Property, error) {
	args := m.Called(ctx, actor, in)
	out, _ := args.Get(0).(*models.Property)
	return out, args.Error(1)
}

func (m *MockListingService) Update(ctx context.Context, actor *models.Profile, id uuid.UUID, in services.ListingInput) (*models.Property, error) {
	args := m.Called(ctx, actor, id, in)
	out, _ := args.Get(0).(*models.Property)
	return out, args.Error(1)
}

func (m *MockListingService) ChangeStatus(ctx context.Context, actor *models.Profile, id uuid.UUID, in services.StatusInput) (*models.Property, error) {
	args := m.Called(ctx, actor, id, in)
	out, _ := args.Get(0).(*models.Property)
	return out, args.Error(1)
}

func (m *MockListingService) Delete(ctx context.Context, actor *models.Profile, id uuid.UUID) error {
	return m.Called(ctx, actor, id).Error(0)
}

func (m *MockListingService) MyListings(ctx context.Context, actor *models.Profile) ([]models.Property, error) {
	args := m.Called(ctx, actor)
	out, _ := args.Get(0).([]models.Property)
	return out, args.Error(1)
}

func (m *MockListingService) MyInquiries(ctx context.Context, actor *models.Profile) ([]models.Inquiry, error) {
	args := m.Called(ctx, actor)
	out, _ := args.Get(0).([]models.Inquiry)
	return out, args.Error(1)
}

func (m *MockListingService) UpdateInquiryStatus(ctx context.Context, actor *models.Profile, id uuid.UUID, status models.InquiryStatus) (*models.Inquiry, error) {
	args := m.Called(ctx, actor, id, status)
	out, _ := args.Get(0).(*models.Inquiry)
	return out, args.Error(1)
}

// MockDashboardService is a mock implementation of DashboardService for testing
type MockDashboardService struct {
	mock.Mock
}

func (m *MockDashboardService) Overview(ctx context.Context) (*analytics.Overview, error) {
	args := m.Called(ctx)
	out, _ := args.Get(0).(*analytics.Overview)
	return out, args.Error(1)
}

func (m *MockDashboardService) BuyerSegments(ctx context.Context) (*analytics.BuyerSegmentReport, error) {
	args := m.Called(ctx)
	out, _ := args.Get(0).(*analytics.BuyerSegmentReport)
	return out, args.Error(1)
}

func (m *MockDashboardService) SearchIntelligence(ctx context.Context) (*analytics.SearchReport, error) {
	args := m.Called(ctx)
	out, _ := args.Get(0).(*analytics.SearchReport)
	return out, args.Error(1)
}

func (m *MockDashboardService) Traffic(ctx context.Context) (*analytics.TrafficReport, error) {
	args := m.Called(ctx)
	out, _ := args.Get(0).(*analytics.TrafficReport)
	return out, args.Error(1)
}

func (m *MockDashboardService) MarketIntelligence(ctx context.Context) (*analytics.MarketIntelligenceReport, error) {
	args := m.Called(ctx)
	out, _ := args.Get(0).(*analytics.MarketIntelligenceReport)
	return out, args.Error(1)
}

func (m *MockDashboardService) ListingStats(ctx context.Context, actor *models.Profile) (*analytics.ListingStats, error) {
	args := m.Called(ctx, actor)
	out, _ := args.Get(0).(*analytics.ListingStats)
	return out, args.Error(1)
}

// MockAdminService is a mock implementation of AdminService for testing
type MockAdminService struct {
	mock.Mock
}

func (m *MockAdminService) ListProfiles(ctx context.Context) ([]models.Profile, error) {
	args := m.Called(ctx)
	out, _ := args.Get(0).([]models.Profile)
	return out, args.Error(1)
}

func (m *MockAdminService) UpdateProfile(ctx context.Context, admin *models.Profile, id uuid.UUID, update services.ProfileUpdate) (*models.Profile, error) {
	args := m.Called(ctx, admin, id, update)
	out, _ := args.Get(0).(*models.Profile)
	return out, args.Error(1)
}

// MockTrackingService is a mock implementation of TrackingService for testing
type MockTrackingService struct {
	mock.Mock
}

func (m *MockTrackingService) StartSession(ctx context.Context, h tracking.Handle, meta tracking.SessionMeta) (tracking.Handle, error) {
	args := m.Called(ctx, h, meta)
	return args.Get(0).(tracking.Handle), args.Error(1)
}

func (m *MockTrackingService) EndSession(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockTrackingService) TrackVisit(ctx context.Context, state tracking.VisitState, in tracking.VisitInput) (tracking.VisitResult, error) {
	args := m.Called(ctx, state, in)
	return args.Get(0).(tracking.VisitResult), args.Error(1)
}

// MockDiagnosticsService is a mock implementation of DiagnosticsService for testing
type MockDiagnosticsService struct {
	mock.Mock
}

func (m *MockDiagnosticsService) TestTracking(ctx context.Context) *services.TrackingTestReport {
	return m.Called(ctx).Get(0).(*services.TrackingTestReport)
}

func (m *MockDiagnosticsService) Diagnose(ctx context.Context) *services.DiagnosisReport {
	return m.Called(ctx).Get(0).(*services.DiagnosisReport)
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
