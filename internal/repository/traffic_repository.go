package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/nyumba-homes/marketplace/internal/database"
	"github.com/nyumba-homes/marketplace/internal/models"
)

const trafficColumns = `id, session_id, source, medium, campaign, referrer, landing_page,
	device_type, browser, os, page_views, created_at, updated_at`

// TrafficRepository defines data access for first-touch traffic rows.
type TrafficRepository interface {
	Insert(ctx context.Context, t *models.TrafficSource) error
	// IncrementPageViews bumps the page-view counter for sessionID and reports
	// how many rows were updated.
	IncrementPageViews(ctx context.Context, sessionID string) (int64, error)
	// GetBySessionID returns nil, nil if no row exists.
	GetBySessionID(ctx context.Context, sessionID string) (*models.TrafficSource, error)
	List(ctx context.Context) ([]models.TrafficSource, error)
	Delete(ctx context.Context, sessionID string) error
	Count(ctx context.Context) (int64, error)
}

type trafficRepository struct {
	db *database.Database
}

// NewTrafficRepository creates a new instance of TrafficRepository.
func NewTrafficRepository(db *database.Database) TrafficRepository {
	return &trafficRepository{db: db}
}

func (r *trafficRepository) Insert(ctx context.Context, t *models.TrafficSource) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if t.PageViews == 0 {
		t.PageViews = 1
	}
	err := r.db.Pool.QueryRow(ctx, `
		INSERT INTO traffic_sources (
			id, session_id, source, medium, campaign, referrer, landing_page,
			device_type, browser, os, page_views
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at, updated_at`,
		t.ID, t.SessionID, t.Source, t.Medium, t.Campaign, t.Referrer, t.LandingPage,
		t.DeviceType, t.Browser, t.OS, t.PageViews,
	).Scan(&t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert traffic source: %w", err)
	}
	return nil
}

func (r *trafficRepository) IncrementPageViews(ctx context.Context, sessionID string) (int64, error) {
	tag, err := r.db.Pool.Exec(ctx, `
		UPDATE traffic_sources
		SET page_views = page_views + 1, updated_at = now()
		WHERE session_id = $1`, sessionID)
	if err != nil {
		return 0, fmt.Errorf("failed to increment page views for session %s: %w", sessionID, err)
	}
	return tag.RowsAffected(), nil
}

func (r *trafficRepository) GetBySessionID(ctx context.Context, sessionID string) (*models.TrafficSource, error) {
	t, err := queryOne[models.TrafficSource](ctx, r.db,
		`SELECT `+trafficColumns+` FROM traffic_sources WHERE session_id = $1`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query traffic source %s: %w", sessionID, err)
	}
	return t, nil
}

func (r *trafficRepository) List(ctx context.Context) ([]models.TrafficSource, error) {
	sources, err := queryAll[models.TrafficSource](ctx, r.db,
		`SELECT `+trafficColumns+` FROM traffic_sources ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("failed to list traffic sources: %w", err)
	}
	return sources, nil
}

func (r *trafficRepository) Delete(ctx context.Context, sessionID string) error {
	if _, err := r.db.Pool.Exec(ctx, `DELETE FROM traffic_sources WHERE session_id = $1`, sessionID); err != nil {
		return fmt.Errorf("failed to delete traffic source %s: %w", sessionID, err)
	}
	return nil
}

func (r *trafficRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.Pool.QueryRow(ctx, `SELECT count(*) FROM traffic_sources`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count traffic sources: %w", err)
	}
	return n, nil
}
