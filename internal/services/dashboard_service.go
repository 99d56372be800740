package services

import (
	"context"
	"fmt"
	"time"

	"github.com/nyumba-homes/marketplace/internal/analytics"
	"github.com/nyumba-homes/marketplace/internal/logger"
	"github.com/nyumba-homes/marketplace/internal/models"
	"github.com/nyumba-homes/marketplace/internal/repository"
	"golang.org/x/sync/errgroup"
)

// DashboardService loads full record sets concurrently and reduces them
// with the analytics package. Every call recomputes from scratch.
type DashboardService interface {
	Overview(ctx context.Context) (*analytics.Overview, error)
	BuyerSegments(ctx context.Context) (*analytics.BuyerSegmentReport, error)
	SearchIntelligence(ctx context.Context) (*analytics.SearchReport, error)
	Traffic(ctx context.Context) (*analytics.TrafficReport, error)
	MarketIntelligence(ctx context.Context) (*analytics.MarketIntelligenceReport, error)
	// ListingStats summarizes the actor's own listings.
	ListingStats(ctx context.Context, actor *models.Profile) (*analytics.ListingStats, error)
}

// DashboardRepos groups the repositories the dashboards read from.
type DashboardRepos struct {
	Profiles   repository.ProfileRepository
	Agents     repository.AgentRepository
	Properties repository.PropertyRepository
	Inquiries  repository.InquiryRepository
	Views      repository.ViewRepository
	Searches   repository.SearchQueryRepository
	Sessions   repository.SessionRepository
	Traffic    repository.TrafficRepository
}

type dashboardService struct {
	repos    DashboardRepos
	listings ListingService
	loc      *time.Location
	now      func() time.Time
	log      *logger.Logger
}

// NewDashboardService creates a new instance of DashboardService. Time
// buckets are computed in loc.
func NewDashboardService(repos DashboardRepos, listings ListingService, loc *time.Location, log *logger.Logger) DashboardService {
	if loc == nil {
		loc = time.UTC
	}
	return &dashboardService{
		repos:    repos,
		listings: listings,
		loc:      loc,
		now:      time.Now,
		log:      log.Component("dashboard_service"),
	}
}

// load runs fn into dst on g.
func load[T any](ctx context.Context, g *errgroup.Group, name string, dst *[]T, fn func(context.Context) ([]T, error)) {
	g.Go(func() error {
		rows, err := fn(ctx)
		if err != nil {
			return fmt.Errorf("failed to load %s: %w", name, err)
		}
		*dst = rows
		return nil
	})
}

func (s *dashboardService) wait(g *errgroup.Group, report string) error {
	if err := g.Wait(); err != nil {
		s.log.Error("Dashboard load failed", err, map[string]interface{}{"report": report})
		return err
	}
	return nil
}

func (s *dashboardService) Overview(ctx context.Context) (*analytics.Overview, error) {
	var (
		profiles   []models.Profile
		agents     []models.Agent
		properties []models.Property
		inquiries  []models.Inquiry
	)
	g, gctx := errgroup.WithContext(ctx)
	load(gctx, g, "profiles", &profiles, s.repos.Profiles.List)
	load(gctx, g, "agents", &agents, s.repos.Agents.List)
	load(gctx, g, "properties", &properties, s.repos.Properties.List)
	load(gctx, g, "inquiries", &inquiries, s.repos.Inquiries.List)
	if err := s.wait(g, "overview"); err != nil {
		return nil, err
	}

	o := analytics.BuildOverview(profiles, agents, properties, inquiries, s.loc, s.now())
	return &o, nil
}

func (s *dashboardService) BuyerSegments(ctx context.Context) (*analytics.BuyerSegmentReport, error) {
	var (
		profiles   []models.Profile
		properties []models.Property
		inquiries  []models.Inquiry
	)
	g, gctx := errgroup.WithContext(ctx)
	load(gctx, g, "profiles", &profiles, s.repos.Profiles.List)
	load(gctx, g, "properties", &properties, s.repos.Properties.List)
	load(gctx, g, "inquiries", &inquiries, s.repos.Inquiries.List)
	if err := s.wait(g, "buyers"); err != nil {
		return nil, err
	}

	r := analytics.BuyerSegments(inquiries, profiles, properties)
	return &r, nil
}

func (s *dashboardService) SearchIntelligence(ctx context.Context) (*analytics.SearchReport, error) {
	var (
		searches  []models.SearchQuery
		views     []models.PropertyView
		inquiries []models.Inquiry
	)
	g, gctx := errgroup.WithContext(ctx)
	load(gctx, g, "search queries", &searches, s.repos.Searches.List)
	load(gctx, g, "property views", &views, s.repos.Views.List)
	load(gctx, g, "inquiries", &inquiries, s.repos.Inquiries.List)
	if err := s.wait(g, "search"); err != nil {
		return nil, err
	}

	r := analytics.SearchIntelligence(searches, views, inquiries, s.loc)
	return &r, nil
}

func (s *dashboardService) Traffic(ctx context.Context) (*analytics.TrafficReport, error) {
	var (
		traffic  []models.TrafficSource
		sessions []models.UserSession
	)
	g, gctx := errgroup.WithContext(ctx)
	load(gctx, g, "traffic sources", &traffic, s.repos.Traffic.List)
	load(gctx, g, "sessions", &sessions, s.repos.Sessions.List)
	if err := s.wait(g, "traffic"); err != nil {
		return nil, err
	}

	r := analytics.BuildTrafficReport(traffic, sessions, s.loc, s.now())
	return &r, nil
}

func (s *dashboardService) MarketIntelligence(ctx context.Context) (*analytics.MarketIntelligenceReport, error) {
	var (
		profiles   []models.Profile
		properties []models.Property
		inquiries  []models.Inquiry
	)
	g, gctx := errgroup.WithContext(ctx)
	load(gctx, g, "profiles", &profiles, s.repos.Profiles.List)
	load(gctx, g, "properties", &properties, s.repos.Properties.List)
	load(gctx, g, "inquiries", &inquiries, s.repos.Inquiries.List)
	if err := s.wait(g, "market"); err != nil {
		return nil, err
	}

	r := analytics.MarketIntelligence(properties, inquiries, profiles)
	return &r, nil
}

func (s *dashboardService) ListingStats(ctx context.Context, actor *models.Profile) (*analytics.ListingStats, error) {
	var (
		listings  []models.Property
		inquiries []models.Inquiry
		profiles  []models.Profile
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		listings, err = s.listings.MyListings(gctx, actor)
		if err != nil {
			return err
		}
		inquiries, err = s.listings.MyInquiries(gctx, actor)
		return err
	})
	load(gctx, g, "profiles", &profiles, s.repos.Profiles.List)
	if err := g.Wait(); err != nil {
		return nil, err
	}

	stats := analytics.BuildListingStats(listings, inquiries, analytics.ProfileIndex(profiles))
	return &stats, nil
}
