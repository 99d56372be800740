package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nyumba-homes/marketplace/internal/logger"
	"github.com/nyumba-homes/marketplace/internal/models"
	"github.com/nyumba-homes/marketplace/internal/repository"
)

// DefaultCurrency is used for listings submitted without a currency.
const DefaultCurrency = "MWK"

// ListingInput carries the editable attributes of a listing.
type ListingInput struct {
	PlotSizeSqm  *float64
	Bedrooms     *int
	Bathrooms    *int
	Title        string
	Description  string
	PropertyType models.PropertyType
	District     string
	Area         string
	Currency     string
	Images       []string
	Price        float64
	HasTitleDeed bool
	IsSurveyed   bool
	HasUtilities bool
}

// StatusInput is a listing status change. SalePrice is required when the
// new status is sold.
type StatusInput struct {
	SalePrice *float64
	BuyerType *models.OriginType
	Status    models.PropertyStatus
}

// ListingService defines listing and inquiry management for agents, owners
// and admins. Only the listing's agent or owner, or an admin, may mutate it.
type ListingService interface {
	// Create publishes a new available listing owned by actor.
	Create(ctx context.Context, actor *models.Profile, in ListingInput) (*models.Property, error)

	// Update rewrites a listing's attributes.
	// Returns ErrPropertyNotFound or ErrForbidden.
	Update(ctx context.Context, actor *models.Profile, id uuid.UUID, in ListingInput) (*models.Property, error)

	// ChangeStatus moves a listing between statuses. Marking a listing sold
	// records the sale price and sale time.
	ChangeStatus(ctx context.Context, actor *models.Profile, id uuid.UUID, in StatusInput) (*models.Property, error)

	// Delete hard-deletes a listing. Admin only.
	Delete(ctx context.Context, actor *models.Profile, id uuid.UUID) error

	// MyListings returns every listing owned by actor.
	MyListings(ctx context.Context, actor *models.Profile) ([]models.Property, error)

	// MyInquiries returns the inquiries made against actor's listings.
	MyInquiries(ctx context.Context, actor *models.Profile) ([]models.Inquiry, error)

	// UpdateInquiryStatus advances an inquiry along its lifecycle.
	// Returns ErrInvalidTransition for backwards or terminal moves.
	UpdateInquiryStatus(ctx context.Context, actor *models.Profile, id uuid.UUID, status models.InquiryStatus) (*models.Inquiry, error)
}

type listingService struct {
	properties repository.PropertyRepository
	inquiries  repository.InquiryRepository
	agents     repository.AgentRepository
	owners     ownership
	log        *logger.Logger
	now        func() time.Time
}

// NewListingService creates a new instance of ListingService.
func NewListingService(properties repository.PropertyRepository, inquiries repository.InquiryRepository, agents repository.AgentRepository, log *logger.Logger) ListingService {
	return &listingService{
		properties: properties,
		inquiries:  inquiries,
		agents:     agents,
		owners:     ownership{agents: agents},
		log:        log.Component("listing_service"),
		now:        time.Now,
	}
}

func validateListing(in ListingInput) error {
	switch {
	case strings.TrimSpace(in.Title) == "":
		return fmt.Errorf("%w: title is required", ErrInvalidInput)
	case !in.PropertyType.Valid():
		return fmt.Errorf("%w: unknown property type %q", ErrInvalidInput, in.PropertyType)
	case strings.TrimSpace(in.District) == "":
		return fmt.Errorf("%w: district is required", ErrInvalidInput)
	case in.Price <= 0:
		return fmt.Errorf("%w: price must be positive", ErrInvalidInput)
	case in.PlotSizeSqm != nil && *in.PlotSizeSqm <= 0:
		return fmt.Errorf("%w: plot size must be positive", ErrInvalidInput)
	}
	return nil
}

func applyListing(p *models.Property, in ListingInput) {
	p.Title = strings.TrimSpace(in.Title)
	p.Description = in.Description
	p.PropertyType = in.PropertyType
	p.District = strings.TrimSpace(in.District)
	p.Area = strings.TrimSpace(in.Area)
	p.Price = in.Price
	p.Currency = firstNonEmpty(in.Currency, DefaultCurrency)
	p.PlotSizeSqm = in.PlotSizeSqm
	p.Bedrooms = in.Bedrooms
	p.Bathrooms = in.Bathrooms
	p.HasTitleDeed = in.HasTitleDeed
	p.IsSurveyed = in.IsSurveyed
	p.HasUtilities = in.HasUtilities
	p.Images = in.Images
	if p.Images == nil {
		p.Images = []string{}
	}
}

func (s *listingService) Create(ctx context.Context, actor *models.Profile, in ListingInput) (*models.Property, error) {
	if !actor.Role.CanList() {
		return nil, fmt.Errorf("%w: role %s cannot list properties", ErrForbidden, actor.Role)
	}
	if err := validateListing(in); err != nil {
		return nil, err
	}

	owner, err := s.owners.owner(ctx, actor)
	if err != nil {
		return nil, err
	}

	p := &models.Property{
		AgentID:  owner.AgentID,
		OwnerID:  owner.OwnerID,
		Status:   models.StatusAvailable,
		ListedAt: s.now(),
	}
	applyListing(p, in)

	if err := s.properties.Create(ctx, p); err != nil {
		s.log.Error("Failed to create listing", err, map[string]interface{}{"profile_id": actor.ID.String()})
		return nil, fmt.Errorf("failed to create listing: %w", err)
	}
	if owner.AgentID != nil {
		s.adjustAgent(ctx, *owner.AgentID, 1, 0)
	}

	s.log.Info("Listing created", map[string]interface{}{
		"property_id": p.ID.String(),
		"profile_id":  actor.ID.String(),
		"district":    p.District,
	})
	return p, nil
}

// managed loads a listing and checks that actor may mutate it.
func (s *listingService) managed(ctx context.Context, actor *models.Profile, id uuid.UUID) (*models.Property, error) {
	p, err := s.properties.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load listing: %w", err)
	}
	if p == nil {
		return nil, ErrPropertyNotFound
	}
	ok, err := s.owners.canManage(ctx, actor, p)
	if err != nil {
		return nil, err
	}
	if !ok {
		s.log.Warn("Listing mutation denied", map[string]interface{}{
			"property_id": id.String(),
			"profile_id":  actor.ID.String(),
		})
		return nil, fmt.Errorf("%w: listing %s is not yours", ErrForbidden, id)
	}
	return p, nil
}

func (s *listingService) Update(ctx context.Context, actor *models.Profile, id uuid.UUID, in ListingInput) (*models.Property, error) {
	if err := validateListing(in); err != nil {
		return nil, err
	}
	p, err := s.managed(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	applyListing(p, in)
	updated, err := s.properties.Update(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("failed to update listing: %w", err)
	}
	if updated == nil {
		return nil, ErrPropertyNotFound
	}
	return updated, nil
}

func (s *listingService) ChangeStatus(ctx context.Context, actor *models.Profile, id uuid.UUID, in StatusInput) (*models.Property, error) {
	if !in.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, in.Status)
	}
	change := repository.StatusChange{Status: in.Status}
	if in.Status == models.StatusSold {
		if in.SalePrice == nil || *in.SalePrice <= 0 {
			return nil, fmt.Errorf("%w: a sale price is required to mark a listing sold", ErrInvalidInput)
		}
		if in.BuyerType != nil && *in.BuyerType != models.OriginDiaspora && *in.BuyerType != models.OriginLocal {
			return nil, fmt.Errorf("%w: unknown buyer type %q", ErrInvalidInput, *in.BuyerType)
		}
		soldAt := s.now()
		change.SoldAt = &soldAt
		change.SalePrice = in.SalePrice
		change.BuyerType = in.BuyerType
	}

	p, err := s.managed(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	updated, err := s.properties.UpdateStatus(ctx, id, change)
	if err != nil {
		return nil, fmt.Errorf("failed to change listing status: %w", err)
	}
	if updated == nil {
		return nil, ErrPropertyNotFound
	}

	if p.AgentID != nil && p.Status != in.Status {
		switch {
		case in.Status == models.StatusSold:
			s.adjustAgent(ctx, *p.AgentID, 0, 1)
		case p.Status == models.StatusSold:
			s.adjustAgent(ctx, *p.AgentID, 0, -1)
		}
	}

	s.log.Info("Listing status changed", map[string]interface{}{
		"property_id": id.String(),
		"from":        string(p.Status),
		"to":          string(in.Status),
	})
	return updated, nil
}

func (s *listingService) Delete(ctx context.Context, actor *models.Profile, id uuid.UUID) error {
	if actor.Role != models.RoleAdmin {
		return fmt.Errorf("%w: only admins may delete listings", ErrForbidden)
	}
	p, err := s.properties.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load listing: %w", err)
	}
	if p == nil {
		return ErrPropertyNotFound
	}

	deleted, err := s.properties.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete listing: %w", err)
	}
	if !deleted {
		return ErrPropertyNotFound
	}
	if p.AgentID != nil {
		sales := 0
		if p.Status == models.StatusSold {
			sales = -1
		}
		s.adjustAgent(ctx, *p.AgentID, -1, sales)
	}

	s.log.Info("Listing deleted", map[string]interface{}{
		"property_id": id.String(),
		"admin_id":    actor.ID.String(),
	})
	return nil
}

func (s *listingService) MyListings(ctx context.Context, actor *models.Profile) ([]models.Property, error) {
	if !actor.Role.CanList() {
		return nil, fmt.Errorf("%w: role %s has no listings", ErrForbidden, actor.Role)
	}
	owner, err := s.owners.owner(ctx, actor)
	if err != nil {
		return nil, err
	}
	listings, err := s.properties.ListByOwner(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to list listings: %w", err)
	}
	return listings, nil
}

func (s *listingService) MyInquiries(ctx context.Context, actor *models.Profile) ([]models.Inquiry, error) {
	listings, err := s.MyListings(ctx, actor)
	if err != nil {
		return nil, err
	}
	if len(listings) == 0 {
		return []models.Inquiry{}, nil
	}

	ids := make([]uuid.UUID, len(listings))
	for i, p := range listings {
		ids[i] = p.ID
	}
	inquiries, err := s.inquiries.ListForProperties(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to list inquiries: %w", err)
	}
	return inquiries, nil
}

func (s *listingService) UpdateInquiryStatus(ctx context.Context, actor *models.Profile, id uuid.UUID, status models.InquiryStatus) (*models.Inquiry, error) {
	inq, err := s.inquiries.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load inquiry: %w", err)
	}
	if inq == nil {
		return nil, ErrInquiryNotFound
	}
	if _, err := s.managed(ctx, actor, inq.PropertyID); err != nil {
		return nil, err
	}
	if !inq.Status.CanTransitionTo(status) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, inq.Status, status)
	}

	updated, err := s.inquiries.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, fmt.Errorf("failed to update inquiry: %w", err)
	}
	if updated == nil {
		return nil, ErrInquiryNotFound
	}
	return updated, nil
}

// adjustAgent keeps the agent's denormalized counters in step. A failure
// leaves the counters stale and is only logged.
func (s *listingService) adjustAgent(ctx context.Context, agentID uuid.UUID, listings, sales int) {
	if err := s.agents.AdjustTotals(ctx, agentID, listings, sales); err != nil {
		s.log.Warn("Failed to adjust agent totals", map[string]interface{}{
			"agent_id": agentID.String(),
			"error":    err.Error(),
		})
	}
}
