package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/nyumba-homes/marketplace/internal/logger"
	"github.com/nyumba-homes/marketplace/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func isProbeID(id string) bool {
	return strings.HasPrefix(id, "diagnostic-")
}

func TestTestTracking_RoundTrip(t *testing.T) {
	// Arrange
	traffic := new(MockTrafficRepository)
	ctx := context.Background()
	traffic.On("Insert", ctx, mock.MatchedBy(func(s *models.TrafficSource) bool {
		return isProbeID(s.SessionID) && s.Source == "diagnostic"
	})).Return(nil)
	traffic.On("GetBySessionID", ctx, mock.MatchedBy(isProbeID)).Return(&models.TrafficSource{}, nil)
	traffic.On("Delete", ctx, mock.MatchedBy(isProbeID)).Return(nil)
	traffic.On("Count", ctx).Return(int64(12), nil)
	svc := NewDiagnosticsService(DiagnosticsDeps{Traffic: traffic}, logger.New("test"))

	// Act
	report := svc.TestTracking(ctx)

	// Assert
	assert.True(t, report.Success)
	assert.Equal(t, int64(12), report.TrafficCount)
	require.Len(t, report.Steps, 4)
	assert.Equal(t, []string{"insert", "read", "delete", "count"}, []string{
		report.Steps[0].Name, report.Steps[1].Name, report.Steps[2].Name, report.Steps[3].Name,
	})
	traffic.AssertExpectations(t)
}

func TestTestTracking_InsertFailure(t *testing.T) {
	traffic := new(MockTrafficRepository)
	ctx := context.Background()
	traffic.On("Insert", ctx, mock.Anything).Return(errors.New(`relation "traffic_sources" does not exist`))
	traffic.On("Count", ctx).Return(int64(0), errors.New(`relation "traffic_sources" does not exist`))
	svc := NewDiagnosticsService(DiagnosticsDeps{Traffic: traffic}, logger.New("test"))

	report := svc.TestTracking(ctx)

	assert.False(t, report.Success)
	require.Len(t, report.Steps, 2)
	assert.Contains(t, report.Steps[0].Error, "traffic_sources")
	traffic.AssertNotCalled(t, "GetBySessionID", mock.Anything, mock.Anything)
	traffic.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestTestTracking_RowNotReadable(t *testing.T) {
	traffic := new(MockTrafficRepository)
	ctx := context.Background()
	traffic.On("Insert", ctx, mock.Anything).Return(nil)
	traffic.On("GetBySessionID", ctx, mock.Anything).Return(nil, nil)
	traffic.On("Delete", ctx, mock.Anything).Return(nil)
	traffic.On("Count", ctx).Return(int64(1), nil)
	svc := NewDiagnosticsService(DiagnosticsDeps{Traffic: traffic}, logger.New("test"))

	report := svc.TestTracking(ctx)

	assert.False(t, report.Success)
	assert.False(t, report.Steps[1].OK)
	assert.True(t, report.Steps[2].OK)
}

func TestDiagnose(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		tables := new(MockTableProber)
		ctx := context.Background()
		for _, name := range TrackingTables {
			tables.On("TableExists", ctx, name).Return(true, nil)
			tables.On("CountRows", ctx, name).Return(int64(3), nil)
		}
		svc := NewDiagnosticsService(DiagnosticsDeps{Tables: tables, StorageConfigured: true, AuthConfigured: true}, logger.New("test"))

		report := svc.Diagnose(ctx)

		assert.True(t, report.Healthy)
		assert.Empty(t, report.Recommendations)
		require.Len(t, report.Tables, len(TrackingTables))
		for _, tr := range report.Tables {
			assert.True(t, tr.Exists)
			require.NotNil(t, tr.Rows)
			assert.Equal(t, int64(3), *tr.Rows)
		}
	})

	t.Run("missing table and unconfigured collaborators", func(t *testing.T) {
		tables := new(MockTableProber)
		ctx := context.Background()
		tables.On("TableExists", ctx, "traffic_sources").Return(false, nil)
		tables.On("TableExists", ctx, "search_queries").Return(false, errors.New("permission denied"))
		tables.On("TableExists", ctx, mock.Anything).Return(true, nil)
		tables.On("CountRows", ctx, mock.Anything).Return(int64(0), nil)
		svc := NewDiagnosticsService(DiagnosticsDeps{Tables: tables}, logger.New("test"))

		report := svc.Diagnose(ctx)

		assert.False(t, report.Healthy)
		assert.False(t, report.StorageConfigured)
		assert.False(t, report.AuthConfigured)
		assert.Len(t, report.Recommendations, 3)
		assert.Contains(t, report.Recommendations[0], "traffic_sources")

		byName := map[string]TableReport{}
		for _, tr := range report.Tables {
			byName[tr.Name] = tr
		}
		assert.False(t, byName["traffic_sources"].Exists)
		assert.Equal(t, "permission denied", byName["search_queries"].Error)
		assert.True(t, byName["user_sessions"].Exists)
		tables.AssertNotCalled(t, "CountRows", ctx, "traffic_sources")
	})
}
