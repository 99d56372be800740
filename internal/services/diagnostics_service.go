package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nyumba-homes/marketplace/internal/logger"
	"github.com/nyumba-homes/marketplace/internal/models"
)

// TrackingTables are the tables the tracking writers depend on.
var TrackingTables = []string{"user_sessions", "traffic_sources", "search_queries", "property_views"}

// TableProber inspects the database schema.
type TableProber interface {
	TableExists(ctx context.Context, name string) (bool, error)
	CountRows(ctx context.Context, table string) (int64, error)
}

// TrafficProbeStore is the traffic storage exercised by the self-test.
type TrafficProbeStore interface {
	Insert(ctx context.Context, t *models.TrafficSource) error
	GetBySessionID(ctx context.Context, sessionID string) (*models.TrafficSource, error)
	Delete(ctx context.Context, sessionID string) error
	Count(ctx context.Context) (int64, error)
}

// CheckResult is the outcome of one diagnostic step.
type CheckResult struct {
	Name  string `json:"name"`
	Error string `json:"error,omitempty"`
	OK    bool   `json:"ok"`
}

// TableReport describes one tracking table.
type TableReport struct {
	Rows   *int64 `json:"rows,omitempty"`
	Name   string `json:"name"`
	Error  string `json:"error,omitempty"`
	Exists bool   `json:"exists"`
}

// TrackingTestReport is the result of the tracking self-test.
type TrackingTestReport struct {
	Timestamp    time.Time     `json:"timestamp"`
	Steps        []CheckResult `json:"steps"`
	TrafficCount int64         `json:"traffic_count"`
	Success      bool          `json:"success"`
}

// DiagnosisReport summarizes the tracking subsystem's environment.
type DiagnosisReport struct {
	Timestamp         time.Time     `json:"timestamp"`
	Tables            []TableReport `json:"tables"`
	Recommendations   []string      `json:"recommendations"`
	StorageConfigured bool          `json:"storage_configured"`
	AuthConfigured    bool          `json:"auth_configured"`
	Healthy           bool          `json:"healthy"`
}

// DiagnosticsService runs operational self-tests. Failures are reported in
// the result rather than returned.
type DiagnosticsService interface {
	// TestTracking inserts, reads back and deletes a throwaway traffic row.
	TestTracking(ctx context.Context) *TrackingTestReport
	// Diagnose checks every tracking table and the optional collaborators.
	Diagnose(ctx context.Context) *DiagnosisReport
}

// DiagnosticsDeps groups the collaborators of DiagnosticsService.
type DiagnosticsDeps struct {
	Tables            TableProber
	Traffic           TrafficProbeStore
	StorageConfigured bool
	AuthConfigured    bool
}

type diagnosticsService struct {
	deps DiagnosticsDeps
	log  *logger.Logger
	now  func() time.Time
}

// NewDiagnosticsService creates a new instance of DiagnosticsService.
func NewDiagnosticsService(deps DiagnosticsDeps, log *logger.Logger) DiagnosticsService {
	return &diagnosticsService{deps: deps, log: log.Component("diagnostics"), now: time.Now}
}

func check(name string, err error) CheckResult {
	if err != nil {
		return CheckResult{Name: name, Error: err.Error()}
	}
	return CheckResult{Name: name, OK: true}
}

func (s *diagnosticsService) TestTracking(ctx context.Context) *TrackingTestReport {
	report := &TrackingTestReport{Timestamp: s.now().UTC()}
	sessionID := "diagnostic-" + uuid.NewString()

	sample := &models.TrafficSource{
		SessionID:   sessionID,
		Source:      "diagnostic",
		Medium:      "none",
		LandingPage: "/api/test-tracking",
		DeviceType:  "desktop",
		Browser:     "other",
		OS:          "other",
	}
	insertErr := s.deps.Traffic.Insert(ctx, sample)
	report.Steps = append(report.Steps, check("insert", insertErr))

	if insertErr == nil {
		row, err := s.deps.Traffic.GetBySessionID(ctx, sessionID)
		if err == nil && row == nil {
			err = fmt.Errorf("inserted row %s not readable", sessionID)
		}
		report.Steps = append(report.Steps, check("read", err))
		report.Steps = append(report.Steps, check("delete", s.deps.Traffic.Delete(ctx, sessionID)))
	}

	count, err := s.deps.Traffic.Count(ctx)
	report.Steps = append(report.Steps, check("count", err))
	report.TrafficCount = count

	report.Success = true
	for _, step := range report.Steps {
		if !step.OK {
			report.Success = false
		}
	}
	if !report.Success {
		s.log.Warn("Tracking self-test failed", map[string]interface{}{"steps": report.Steps})
	}
	return report
}

func (s *diagnosticsService) Diagnose(ctx context.Context) *DiagnosisReport {
	report := &DiagnosisReport{
		Timestamp:         s.now().UTC(),
		StorageConfigured: s.deps.StorageConfigured,
		AuthConfigured:    s.deps.AuthConfigured,
		Healthy:           true,
		Recommendations:   []string{},
	}

	for _, table := range TrackingTables {
		tr := TableReport{Name: table}
		exists, err := s.deps.Tables.TableExists(ctx, table)
		switch {
		case err != nil:
			tr.Error = err.Error()
			report.Healthy = false
		case !exists:
			report.Healthy = false
			report.Recommendations = append(report.Recommendations,
				fmt.Sprintf("Create the %s table by running the database migrations", table))
		default:
			tr.Exists = true
			rows, err := s.deps.Tables.CountRows(ctx, table)
			if err != nil {
				tr.Error = err.Error()
				report.Healthy = false
			} else {
				tr.Rows = &rows
			}
		}
		report.Tables = append(report.Tables, tr)
	}

	if !report.StorageConfigured {
		report.Recommendations = append(report.Recommendations,
			"Set STORAGE_ENDPOINT, STORAGE_ACCESS_KEY, STORAGE_SECRET_KEY and STORAGE_BUCKET to enable image uploads")
	}
	if !report.AuthConfigured {
		report.Recommendations = append(report.Recommendations,
			"Set AUTH_JWT_SECRET or AUTH_JWKS_URL to enable authenticated routes")
	}
	return report
}
