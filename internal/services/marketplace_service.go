package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/nyumba-homes/marketplace/internal/analytics"
	"github.com/nyumba-homes/marketplace/internal/logger"
	"github.com/nyumba-homes/marketplace/internal/models"
	"github.com/nyumba-homes/marketplace/internal/repository"
	"github.com/nyumba-homes/marketplace/internal/tracking"
)

// InquiryInput is what a buyer submits through the buyer-detail gate.
// Empty contact fields fall back to the buyer's profile.
type InquiryInput struct {
	BuyerPhone    *string
	BuyerLocation *string
	BuyerCountry  *string
	OriginType    *models.OriginType
	Budget        *float64
	BuyerName     string
	BuyerEmail    string
	Intent        string
	Message       string
}

// ListingContact is the lister contact block revealed after an inquiry.
type ListingContact struct {
	Phone       *string `json:"phone,omitempty"`
	CompanyName *string `json:"company_name,omitempty"`
	Kind        string  `json:"kind"`
	Name        string  `json:"name"`
	Email       string  `json:"email"`
}

// MarketplaceService defines the public buyer-facing operations.
type MarketplaceService interface {
	// Search returns available listings matching filter. The search is
	// recorded for the visitor's session in the background.
	Search(ctx context.Context, filter models.PropertyFilter, visitor Visitor, viewer *models.Profile) ([]models.Property, error)

	// GetListing returns one listing. Listings that are not available are
	// only visible to whoever manages them.
	// Returns ErrPropertyNotFound if the listing does not exist or is hidden.
	GetListing(ctx context.Context, id uuid.UUID, viewer *models.Profile, visitor Visitor) (*models.Property, error)

	// ContactDetails reveals the lister's contact details to a buyer who has
	// already inquired about the listing.
	// Returns ErrInquiryRequired if the buyer has not.
	ContactDetails(ctx context.Context, id uuid.UUID, buyer *models.Profile) (*ListingContact, error)

	// SubmitInquiry records a buyer's inquiry against an available listing.
	// Returns ErrListingClosed for listings that are no longer available.
	SubmitInquiry(ctx context.Context, propertyID uuid.UUID, buyer *models.Profile, in InquiryInput, visitor Visitor) (*models.Inquiry, error)
}

type marketplaceService struct {
	properties repository.PropertyRepository
	inquiries  repository.InquiryRepository
	profiles   repository.ProfileRepository
	agents     repository.AgentRepository
	views      tracking.ViewStore
	tracker    SearchTracker
	jobs       Scheduler
	owners     ownership
	log        *logger.Logger
}

// MarketplaceDeps groups the collaborators of MarketplaceService.
type MarketplaceDeps struct {
	Properties repository.PropertyRepository
	Inquiries  repository.InquiryRepository
	Profiles   repository.ProfileRepository
	Agents     repository.AgentRepository
	Views      tracking.ViewStore
	Tracker    SearchTracker
	Jobs       Scheduler
}

// NewMarketplaceService creates a new instance of MarketplaceService.
func NewMarketplaceService(deps MarketplaceDeps, log *logger.Logger) MarketplaceService {
	return &marketplaceService{
		properties: deps.Properties,
		inquiries:  deps.Inquiries,
		profiles:   deps.Profiles,
		agents:     deps.Agents,
		views:      deps.Views,
		tracker:    deps.Tracker,
		jobs:       deps.Jobs,
		owners:     ownership{agents: deps.Agents},
		log:        log.Component("marketplace_service"),
	}
}

func (s *marketplaceService) Search(ctx context.Context, filter models.PropertyFilter, visitor Visitor, viewer *models.Profile) ([]models.Property, error) {
	if filter.PropertyType != "" && !filter.PropertyType.Valid() {
		return nil, fmt.Errorf("%w: unknown property type %q", ErrInvalidInput, filter.PropertyType)
	}

	listings, err := s.properties.ListAvailable(ctx, filter)
	if err != nil {
		s.log.Error("Failed to search listings", err, map[string]interface{}{
			"district": filter.District,
			"search":   filter.Search,
		})
		return nil, fmt.Errorf("failed to search listings: %w", err)
	}

	in := tracking.SearchInput{
		SessionID:   visitor.SessionID,
		Params:      searchParams(filter),
		Text:        filter.Search,
		ResultCount: len(listings),
	}
	if viewer != nil {
		id := viewer.ID
		in.UserID = &id
	}
	s.jobs.Go(ctx, "search_query", func(ctx context.Context) error {
		if err := s.tracker.TrackSearchQuery(ctx, in); err != nil {
			return err
		}
		if in.SessionID != nil && len(listings) > 0 {
			return s.tracker.RecordFunnel(ctx, *in.SessionID, repository.FunnelViews)
		}
		return nil
	})

	s.log.Debug("Listings searched", map[string]interface{}{
		"district": filter.District,
		"count":    len(listings),
	})
	return listings, nil
}

func (s *marketplaceService) GetListing(ctx context.Context, id uuid.UUID, viewer *models.Profile, visitor Visitor) (*models.Property, error) {
	prop, err := s.properties.GetByID(ctx, id)
	if err != nil {
		s.log.Error("Failed to load listing", err, map[string]interface{}{"property_id": id.String()})
		return nil, fmt.Errorf("failed to load listing: %w", err)
	}
	if prop == nil {
		return nil, ErrPropertyNotFound
	}

	if prop.Status != models.StatusAvailable {
		ok, err := s.owners.canManage(ctx, viewer, prop)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrPropertyNotFound
		}
	}

	s.jobs.Go(ctx, "property_view", func(ctx context.Context) error {
		if _, err := tracking.TrackPropertyView(ctx, s.views, tracking.ViewInput{
			Viewer:     viewer,
			SessionID:  visitor.SessionID,
			UserAgent:  visitor.UserAgent,
			PropertyID: prop.ID,
			Detail:     true,
		}); err != nil {
			return err
		}
		if err := s.properties.IncrementViewCount(ctx, prop.ID); err != nil {
			return err
		}
		if visitor.SessionID != nil {
			return s.tracker.RecordFunnel(ctx, *visitor.SessionID, repository.FunnelDetailViews)
		}
		return nil
	})

	return prop, nil
}

func (s *marketplaceService) ContactDetails(ctx context.Context, id uuid.UUID, buyer *models.Profile) (*ListingContact, error) {
	prop, err := s.properties.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load listing: %w", err)
	}
	if prop == nil {
		return nil, ErrPropertyNotFound
	}

	manages, err := s.owners.canManage(ctx, buyer, prop)
	if err != nil {
		return nil, err
	}
	if !manages {
		inquired, err := s.inquiries.ExistsForBuyer(ctx, prop.ID, buyer.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to check inquiries: %w", err)
		}
		if !inquired {
			return nil, ErrInquiryRequired
		}
	}

	return s.contactFor(ctx, prop)
}

func (s *marketplaceService) contactFor(ctx context.Context, prop *models.Property) (*ListingContact, error) {
	contact := &ListingContact{Kind: string(models.RoleOwner)}
	profileID := uuid.Nil

	switch {
	case prop.AgentID != nil:
		agent, err := s.agents.GetByID(ctx, *prop.AgentID)
		if err != nil {
			return nil, fmt.Errorf("failed to load agent: %w", err)
		}
		if agent == nil {
			return nil, ErrProfileNotFound
		}
		company := agent.CompanyName
		contact.Kind = string(models.RoleAgent)
		contact.CompanyName = &company
		profileID = agent.ProfileID
	case prop.OwnerID != nil:
		profileID = *prop.OwnerID
	default:
		return nil, ErrProfileNotFound
	}

	profile, err := s.profiles.GetByID(ctx, profileID)
	if err != nil {
		return nil, fmt.Errorf("failed to load lister profile: %w", err)
	}
	if profile == nil {
		return nil, ErrProfileNotFound
	}
	contact.Name = profile.FullName
	contact.Email = profile.Email
	contact.Phone = profile.Phone
	return contact, nil
}

func (s *marketplaceService) SubmitInquiry(ctx context.Context, propertyID uuid.UUID, buyer *models.Profile, in InquiryInput, visitor Visitor) (*models.Inquiry, error) {
	if strings.TrimSpace(in.Intent) == "" {
		return nil, fmt.Errorf("%w: intent is required", ErrInvalidInput)
	}

	prop, err := s.properties.GetByID(ctx, propertyID)
	if err != nil {
		return nil, fmt.Errorf("failed to load listing: %w", err)
	}
	if prop == nil {
		return nil, ErrPropertyNotFound
	}
	if prop.Status != models.StatusAvailable {
		return nil, ErrListingClosed
	}

	inq := &models.Inquiry{
		PropertyID:    prop.ID,
		BuyerID:       buyer.ID,
		BuyerName:     firstNonEmpty(in.BuyerName, buyer.FullName),
		BuyerEmail:    firstNonEmpty(in.BuyerEmail, buyer.Email),
		BuyerPhone:    firstNonNil(in.BuyerPhone, buyer.Phone),
		BuyerLocation: firstNonNil(in.BuyerLocation, buyer.Location),
		BuyerCountry:  firstNonNil(in.BuyerCountry, buyer.Country),
		Budget:        in.Budget,
		Intent:        strings.TrimSpace(in.Intent),
		Message:       strings.TrimSpace(in.Message),
		Status:        models.InquiryNew,
	}
	country := ""
	if inq.BuyerCountry != nil {
		country = *inq.BuyerCountry
	}
	origin := analytics.ClassifyOrigin(in.OriginType, buyer.IsDiaspora, country)
	inq.OriginType = &origin

	if err := s.inquiries.Create(ctx, inq); err != nil {
		s.log.Error("Failed to submit inquiry", err, map[string]interface{}{
			"property_id": prop.ID.String(),
			"buyer_id":    buyer.ID.String(),
		})
		return nil, fmt.Errorf("failed to submit inquiry: %w", err)
	}

	s.jobs.Go(ctx, "inquiry_counters", func(ctx context.Context) error {
		if err := s.properties.IncrementInquiryCount(ctx, prop.ID); err != nil {
			return err
		}
		if visitor.SessionID != nil {
			return s.tracker.RecordFunnel(ctx, *visitor.SessionID, repository.FunnelInquiries)
		}
		return nil
	})

	s.log.Info("Inquiry submitted", map[string]interface{}{
		"inquiry_id":  inq.ID.String(),
		"property_id": prop.ID.String(),
		"origin_type": string(origin),
	})
	return inq, nil
}

func searchParams(f models.PropertyFilter) map[string]interface{} {
	params := map[string]interface{}{}
	if f.District != "" {
		params["district"] = f.District
	}
	if f.PropertyType != "" {
		params["property_type"] = string(f.PropertyType)
	}
	if f.MinPrice != nil {
		params["min_price"] = *f.MinPrice
	}
	if f.MaxPrice != nil {
		params["max_price"] = *f.MaxPrice
	}
	if f.MinPlotSize != nil {
		params["min_plot_size"] = *f.MinPlotSize
	}
	if f.MaxPlotSize != nil {
		params["max_plot_size"] = *f.MaxPlotSize
	}
	return params
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func firstNonNil[T any](values ...*T) *T {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}
