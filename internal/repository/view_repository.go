package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/nyumba-homes/marketplace/internal/database"
	"github.com/nyumba-homes/marketplace/internal/models"
)

const viewColumns = `id, property_id, viewer_id, session_id, viewer_location, viewer_country,
	origin_type, device_type, is_detail_view, duration_seconds, created_at`

// ViewRepository defines data access for the append-only property view log.
type ViewRepository interface {
	Insert(ctx context.Context, v *models.PropertyView) error
	List(ctx context.Context) ([]models.PropertyView, error)
}

type viewRepository struct {
	db *database.Database
}

// NewViewRepository creates a new instance of ViewRepository.
func NewViewRepository(db *database.Database) ViewRepository {
	return &viewRepository{db: db}
}

func (r *viewRepository) Insert(ctx context.Context, v *models.PropertyView) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	err := r.db.Pool.QueryRow(ctx, `
		INSERT INTO property_views (
			id, property_id, viewer_id, session_id, viewer_location, viewer_country,
			origin_type, device_type, is_detail_view, duration_seconds
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at`,
		v.ID, v.PropertyID, v.ViewerID, v.SessionID, v.ViewerLocation, v.ViewerCountry,
		v.OriginType, v.DeviceType, v.IsDetailView, v.DurationSeconds,
	).Scan(&v.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert property view: %w", err)
	}
	return nil
}

func (r *viewRepository) List(ctx context.Context) ([]models.PropertyView, error) {
	views, err := queryAll[models.PropertyView](ctx, r.db,
		`SELECT `+viewColumns+` FROM property_views ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("failed to list property views: %w", err)
	}
	return views, nil
}
