package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/nyumba-homes/marketplace/internal/database"
	"github.com/nyumba-homes/marketplace/internal/models"
)

const inquiryColumns = `id, property_id, buyer_id, buyer_name, buyer_email, buyer_phone,
	buyer_location, buyer_country, origin_type, budget, intent, message, status,
	created_at, updated_at`

// InquiryRepository defines data access for buyer inquiries.
type InquiryRepository interface {
	Create(ctx context.Context, inq *models.Inquiry) error
	List(ctx context.Context) ([]models.Inquiry, error)
	ListForProperties(ctx context.Context, propertyIDs []uuid.UUID) ([]models.Inquiry, error)
	ExistsForBuyer(ctx context.Context, propertyID, buyerID uuid.UUID) (bool, error)
	// GetByID returns nil, nil if no inquiry exists.
	GetByID(ctx context.Context, id uuid.UUID) (*models.Inquiry, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.InquiryStatus) (*models.Inquiry, error)
}

type inquiryRepository struct {
	db *database.Database
}

// NewInquiryRepository creates a new instance of InquiryRepository.
func NewInquiryRepository(db *database.Database) InquiryRepository {
	return &inquiryRepository{db: db}
}

func (r *inquiryRepository) Create(ctx context.Context, inq *models.Inquiry) error {
	if inq.ID == uuid.Nil {
		inq.ID = uuid.New()
	}
	if inq.Status == "" {
		inq.Status = models.InquiryNew
	}
	err := r.db.Pool.QueryRow(ctx, `
		INSERT INTO inquiries (
			id, property_id, buyer_id, buyer_name, buyer_email, buyer_phone,
			buyer_location, buyer_country, origin_type, budget, intent, message, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING created_at, updated_at`,
		inq.ID, inq.PropertyID, inq.BuyerID, inq.BuyerName, inq.BuyerEmail, inq.BuyerPhone,
		inq.BuyerLocation, inq.BuyerCountry, inq.OriginType, inq.Budget, inq.Intent, inq.Message, inq.Status,
	).Scan(&inq.CreatedAt, &inq.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert inquiry: %w", err)
	}
	return nil
}

func (r *inquiryRepository) List(ctx context.Context) ([]models.Inquiry, error) {
	inquiries, err := queryAll[models.Inquiry](ctx, r.db,
		`SELECT `+inquiryColumns+` FROM inquiries ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list inquiries: %w", err)
	}
	return inquiries, nil
}

func (r *inquiryRepository) ListForProperties(ctx context.Context, propertyIDs []uuid.UUID) ([]models.Inquiry, error) {
	if len(propertyIDs) == 0 {
		return []models.Inquiry{}, nil
	}
	inquiries, err := queryAll[models.Inquiry](ctx, r.db,
		`SELECT `+inquiryColumns+` FROM inquiries WHERE property_id = ANY($1) ORDER BY created_at DESC`,
		propertyIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to list inquiries for %d properties: %w", len(propertyIDs), err)
	}
	return inquiries, nil
}

func (r *inquiryRepository) ExistsForBuyer(ctx context.Context, propertyID, buyerID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.Pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM inquiries WHERE property_id = $1 AND buyer_id = $2)`,
		propertyID, buyerID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check inquiry for property %s: %w", propertyID, err)
	}
	return exists, nil
}

func (r *inquiryRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Inquiry, error) {
	inq, err := queryOne[models.Inquiry](ctx, r.db,
		`SELECT `+inquiryColumns+` FROM inquiries WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query inquiry %s: %w", id, err)
	}
	return inq, nil
}

func (r *inquiryRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.InquiryStatus) (*models.Inquiry, error) {
	inq, err := queryOne[models.Inquiry](ctx, r.db, `
		UPDATE inquiries SET status = $2, updated_at = now()
		WHERE id = $1
		RETURNING `+inquiryColumns, id, status)
	if err != nil {
		return nil, fmt.Errorf("failed to update inquiry %s: %w", id, err)
	}
	return inq, nil
}
