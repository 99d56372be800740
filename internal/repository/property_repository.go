package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nyumba-homes/marketplace/internal/database"
	"github.com/nyumba-homes/marketplace/internal/models"
)

const propertyColumns = `id, title, description, property_type, district, area, price, currency,
	plot_size_sqm, bedrooms, bathrooms, has_title_deed, is_surveyed, has_utilities,
	status, images, view_count, inquiry_count, agent_id, owner_id, sale_price,
	buyer_type, listed_at, sold_at, created_at, updated_at`

// StatusChange describes a listing status update. Sale fields are only
// written when the new status is sold.
type StatusChange struct {
	SoldAt    *time.Time
	SalePrice *float64
	BuyerType *models.OriginType
	Status    models.PropertyStatus
}

// PropertyRepository defines data access for listings.
// List operations are full scans with no pagination.
type PropertyRepository interface {
	List(ctx context.Context) ([]models.Property, error)
	// ListAvailable returns available listings matching filter, newest first.
	ListAvailable(ctx context.Context, filter models.PropertyFilter) ([]models.Property, error)
	ListByOwner(ctx context.Context, owner models.ListingOwner) ([]models.Property, error)
	// GetByID returns nil, nil if no listing exists.
	GetByID(ctx context.Context, id uuid.UUID) (*models.Property, error)
	Create(ctx context.Context, p *models.Property) error
	// Update writes the editable listing attributes. Returns nil, nil if no
	// listing exists.
	Update(ctx context.Context, p *models.Property) (*models.Property, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, change StatusChange) (*models.Property, error)
	// Delete reports whether a row was removed.
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	IncrementViewCount(ctx context.Context, id uuid.UUID) error
	IncrementInquiryCount(ctx context.Context, id uuid.UUID) error
}

type propertyRepository struct {
	db *database.Database
}

// NewPropertyRepository creates a new instance of PropertyRepository.
func NewPropertyRepository(db *database.Database) PropertyRepository {
	return &propertyRepository{db: db}
}

func (r *propertyRepository) List(ctx context.Context) ([]models.Property, error) {
	properties, err := queryAll[models.Property](ctx, r.db,
		`SELECT `+propertyColumns+` FROM properties ORDER BY listed_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list properties: %w", err)
	}
	return properties, nil
}

// availableQuery builds the marketplace search SQL for filter.
func availableQuery(filter models.PropertyFilter) (string, []interface{}) {
	conditions := []string{"status = 'available'"}
	var args []interface{}

	add := func(clause string, value interface{}) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf(clause, len(args)))
	}

	if filter.District != "" {
		add("district = $%d", filter.District)
	}
	if filter.PropertyType != "" {
		add("property_type = $%d", string(filter.PropertyType))
	}
	if filter.MinPrice != nil {
		add("price >= $%d", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		add("price <= $%d", *filter.MaxPrice)
	}
	if filter.MinPlotSize != nil {
		add("plot_size_sqm >= $%d", *filter.MinPlotSize)
	}
	if filter.MaxPlotSize != nil {
		add("plot_size_sqm <= $%d", *filter.MaxPlotSize)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		args = append(args, "%"+search+"%")
		n := len(args)
		conditions = append(conditions,
			fmt.Sprintf("(title ILIKE $%d OR description ILIKE $%d OR area ILIKE $%d OR district ILIKE $%d)", n, n, n, n))
	}

	sql := `SELECT ` + propertyColumns + ` FROM properties WHERE ` +
		strings.Join(conditions, " AND ") + ` ORDER BY listed_at DESC`
	return sql, args
}

func (r *propertyRepository) ListAvailable(ctx context.Context, filter models.PropertyFilter) ([]models.Property, error) {
	sql, args := availableQuery(filter)
	properties, err := queryAll[models.Property](ctx, r.db, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list available properties: %w", err)
	}
	return properties, nil
}

func (r *propertyRepository) ListByOwner(ctx context.Context, owner models.ListingOwner) ([]models.Property, error) {
	properties, err := queryAll[models.Property](ctx, r.db, `
		SELECT `+propertyColumns+` FROM properties
		WHERE ($1::uuid IS NOT NULL AND agent_id = $1)
		   OR ($2::uuid IS NOT NULL AND owner_id = $2)
		ORDER BY listed_at DESC`, owner.AgentID, owner.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list properties by owner: %w", err)
	}
	return properties, nil
}

func (r *propertyRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Property, error) {
	p, err := queryOne[models.Property](ctx, r.db,
		`SELECT `+propertyColumns+` FROM properties WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query property %s: %w", id, err)
	}
	return p, nil
}

func (r *propertyRepository) Create(ctx context.Context, p *models.Property) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.Images == nil {
		p.Images = []string{}
	}
	if p.Status == "" {
		p.Status = models.StatusAvailable
	}
	if p.Currency == "" {
		p.Currency = "MWK"
	}
	err := r.db.Pool.QueryRow(ctx, `
		INSERT INTO properties (
			id, title, description, property_type, district, area, price, currency,
			plot_size_sqm, bedrooms, bathrooms, has_title_deed, is_surveyed, has_utilities,
			status, images, agent_id, owner_id
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		RETURNING listed_at, created_at, updated_at`,
		p.ID, p.Title, p.Description, p.PropertyType, p.District, p.Area, p.Price, p.Currency,
		p.PlotSizeSqm, p.Bedrooms, p.Bathrooms, p.HasTitleDeed, p.IsSurveyed, p.HasUtilities,
		p.Status, p.Images, p.AgentID, p.OwnerID,
	).Scan(&p.ListedAt, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert property: %w", err)
	}
	return nil
}

func (r *propertyRepository) Update(ctx context.Context, p *models.Property) (*models.Property, error) {
	images := p.Images
	if images == nil {
		images = []string{}
	}
	updated, err := queryOne[models.Property](ctx, r.db, `
		UPDATE properties SET
			title = $2, description = $3, property_type = $4, district = $5, area = $6,
			price = $7, currency = $8, plot_size_sqm = $9, bedrooms = $10, bathrooms = $11,
			has_title_deed = $12, is_surveyed = $13, has_utilities = $14, images = $15,
			updated_at = now()
		WHERE id = $1
		RETURNING `+propertyColumns,
		p.ID, p.Title, p.Description, p.PropertyType, p.District, p.Area,
		p.Price, p.Currency, p.PlotSizeSqm, p.Bedrooms, p.Bathrooms,
		p.HasTitleDeed, p.IsSurveyed, p.HasUtilities, images)
	if err != nil {
		return nil, fmt.Errorf("failed to update property %s: %w", p.ID, err)
	}
	return updated, nil
}

func (r *propertyRepository) UpdateStatus(ctx context.Context, id uuid.UUID, change StatusChange) (*models.Property, error) {
	updated, err := queryOne[models.Property](ctx, r.db, `
		UPDATE properties SET
			status = $2,
			sold_at = $3,
			sale_price = $4,
			buyer_type = $5,
			updated_at = now()
		WHERE id = $1
		RETURNING `+propertyColumns,
		id, change.Status, change.SoldAt, change.SalePrice, change.BuyerType)
	if err != nil {
		return nil, fmt.Errorf("failed to update status of property %s: %w", id, err)
	}
	return updated, nil
}

func (r *propertyRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM properties WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete property %s: %w", id, err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *propertyRepository) IncrementViewCount(ctx context.Context, id uuid.UUID) error {
	if _, err := r.db.Pool.Exec(ctx,
		`UPDATE properties SET view_count = view_count + 1 WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to increment view count for property %s: %w", id, err)
	}
	return nil
}

func (r *propertyRepository) IncrementInquiryCount(ctx context.Context, id uuid.UUID) error {
	if _, err := r.db.Pool.Exec(ctx,
		`UPDATE properties SET inquiry_count = inquiry_count + 1 WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to increment inquiry count for property %s: %w", id, err)
	}
	return nil
}
