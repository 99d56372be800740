package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/nyumba-homes/marketplace/internal/models"
	"github.com/nyumba-homes/marketplace/internal/repository"
	"github.com/nyumba-homes/marketplace/internal/tracking"
)

// Service-level errors
var (
	ErrPropertyNotFound  = errors.New("property not found")
	ErrInquiryNotFound   = errors.New("inquiry not found")
	ErrProfileNotFound   = errors.New("profile not found")
	ErrForbidden         = errors.New("forbidden")
	ErrInvalidInput      = errors.New("invalid input")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrInquiryRequired   = errors.New("an inquiry is required before contact details are shared")
	ErrListingClosed     = errors.New("property is not available")
)

// Scheduler runs best-effort work off the request path.
type Scheduler interface {
	Go(ctx context.Context, name string, fn func(ctx context.Context) error)
}

// SearchTracker records searches and funnel progress for a browsing session.
type SearchTracker interface {
	TrackSearchQuery(ctx context.Context, in tracking.SearchInput) error
	RecordFunnel(ctx context.Context, sessionID uuid.UUID, stage repository.FunnelStage) error
}

// Visitor identifies the browser behind a request for tracking purposes.
type Visitor struct {
	SessionID *uuid.UUID
	UserAgent string
}

// ownership decides who may manage a listing.
type ownership struct {
	agents repository.AgentRepository
}

// owner returns the listing identity of a profile. Agents list through their
// agent record; everyone else lists as an owner.
func (o ownership) owner(ctx context.Context, p *models.Profile) (models.ListingOwner, error) {
	if p.Role != models.RoleAgent {
		id := p.ID
		return models.ListingOwner{OwnerID: &id}, nil
	}
	agent, err := o.agents.GetByProfileID(ctx, p.ID)
	if err != nil {
		return models.ListingOwner{}, fmt.Errorf("failed to resolve agent: %w", err)
	}
	if agent == nil {
		return models.ListingOwner{}, fmt.Errorf("%w: agent profile %s has no agent record", ErrForbidden, p.ID)
	}
	id := agent.ID
	return models.ListingOwner{AgentID: &id}, nil
}

// canManage reports whether p may mutate prop. Admins manage everything.
func (o ownership) canManage(ctx context.Context, p *models.Profile, prop *models.Property) (bool, error) {
	if p == nil || prop == nil {
		return false, nil
	}
	if p.Role == models.RoleAdmin {
		return true, nil
	}
	if !p.Role.CanList() {
		return false, nil
	}
	owner, err := o.owner(ctx, p)
	if err != nil {
		if errors.Is(err, ErrForbidden) {
			return false, nil
		}
		return false, err
	}
	return owner.Owns(prop), nil
}
