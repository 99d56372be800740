package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/nyumba-homes/marketplace/internal/database"
	"github.com/nyumba-homes/marketplace/internal/models"
)

const agentColumns = `id, profile_id, company_name, license_number, districts,
	total_listings, total_sales, rating, verification_status, created_at`

// AgentRepository defines data access for agent brokerage records.
type AgentRepository interface {
	// GetByID returns nil, nil if no agent exists.
	GetByID(ctx context.Context, id uuid.UUID) (*models.Agent, error)
	// GetByProfileID returns nil, nil if the profile has no agent record.
	GetByProfileID(ctx context.Context, profileID uuid.UUID) (*models.Agent, error)
	List(ctx context.Context) ([]models.Agent, error)
	Create(ctx context.Context, a *models.Agent) error
	// AdjustTotals adds the deltas to the agent's listing and sale counters.
	AdjustTotals(ctx context.Context, agentID uuid.UUID, listings, sales int) error
}

type agentRepository struct {
	db *database.Database
}

// NewAgentRepository creates a new instance of AgentRepository.
func NewAgentRepository(db *database.Database) AgentRepository {
	return &agentRepository{db: db}
}

func (r *agentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Agent, error) {
	a, err := queryOne[models.Agent](ctx, r.db,
		`SELECT `+agentColumns+` FROM agents WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query agent %s: %w", id, err)
	}
	return a, nil
}

func (r *agentRepository) GetByProfileID(ctx context.Context, profileID uuid.UUID) (*models.Agent, error) {
	a, err := queryOne[models.Agent](ctx, r.db,
		`SELECT `+agentColumns+` FROM agents WHERE profile_id = $1`, profileID)
	if err != nil {
		return nil, fmt.Errorf("failed to query agent for profile %s: %w", profileID, err)
	}
	return a, nil
}

func (r *agentRepository) List(ctx context.Context) ([]models.Agent, error) {
	agents, err := queryAll[models.Agent](ctx, r.db,
		`SELECT `+agentColumns+` FROM agents ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("failed to list agents: %w", err)
	}
	return agents, nil
}

func (r *agentRepository) Create(ctx context.Context, a *models.Agent) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.Districts == nil {
		a.Districts = []string{}
	}
	if a.VerificationStatus == "" {
		a.VerificationStatus = "pending"
	}
	err := r.db.Pool.QueryRow(ctx, `
		INSERT INTO agents (id, profile_id, company_name, license_number, districts, rating, verification_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at`,
		a.ID, a.ProfileID, a.CompanyName, a.LicenseNumber, a.Districts, a.Rating, a.VerificationStatus,
	).Scan(&a.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert agent: %w", err)
	}
	return nil
}

func (r *agentRepository) AdjustTotals(ctx context.Context, agentID uuid.UUID, listings, sales int) error {
	_, err := r.db.Pool.Exec(ctx, `
		UPDATE agents
		SET total_listings = GREATEST(total_listings + $2, 0),
		    total_sales = GREATEST(total_sales + $3, 0)
		WHERE id = $1`, agentID, listings, sales)
	if err != nil {
		return fmt.Errorf("failed to adjust totals for agent %s: %w", agentID, err)
	}
	return nil
}
