package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/nyumba-homes/marketplace/internal/database"
	"github.com/nyumba-homes/marketplace/internal/models"
)

const profileColumns = `id, email, full_name, phone, role, location, country,
	is_diaspora, is_verified, created_at, updated_at`

// ProfileRepository defines data access for user profiles.
type ProfileRepository interface {
	// GetByID returns nil, nil if no profile exists.
	GetByID(ctx context.Context, id uuid.UUID) (*models.Profile, error)
	List(ctx context.Context) ([]models.Profile, error)
	Create(ctx context.Context, p *models.Profile) error
	// UpdateAdminFields changes role and/or verification. Nil arguments are left
	// untouched. Returns nil, nil if no profile exists.
	UpdateAdminFields(ctx context.Context, id uuid.UUID, role *models.Role, verified *bool) (*models.Profile, error)
}

type profileRepository struct {
	db *database.Database
}

// NewProfileRepository creates a new instance of ProfileRepository.
func NewProfileRepository(db *database.Database) ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	p, err := queryOne[models.Profile](ctx, r.db,
		`SELECT `+profileColumns+` FROM profiles WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query profile %s: %w", id, err)
	}
	return p, nil
}

func (r *profileRepository) List(ctx context.Context) ([]models.Profile, error) {
	profiles, err := queryAll[models.Profile](ctx, r.db,
		`SELECT `+profileColumns+` FROM profiles ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	return profiles, nil
}

func (r *profileRepository) Create(ctx context.Context, p *models.Profile) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.Role == "" {
		p.Role = models.RoleBuyer
	}
	err := r.db.Pool.QueryRow(ctx, `
		INSERT INTO profiles (id, email, full_name, phone, role, location, country, is_diaspora, is_verified)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at`,
		p.ID, p.Email, p.FullName, p.Phone, p.Role, p.Location, p.Country, p.IsDiaspora, p.IsVerified,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert profile: %w", err)
	}
	return nil
}

func (r *profileRepository) UpdateAdminFields(ctx context.Context, id uuid.UUID, role *models.Role, verified *bool) (*models.Profile, error) {
	p, err := queryOne[models.Profile](ctx, r.db, `
		UPDATE profiles
		SET role = COALESCE($2, role),
		    is_verified = COALESCE($3, is_verified),
		    updated_at = now()
		WHERE id = $1
		RETURNING `+profileColumns, id, role, verified)
	if err != nil {
		return nil, fmt.Errorf("failed to update profile %s: %w", id, err)
	}
	return p, nil
}
