package analytics

import (
	"cmp"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/nyumba-homes/marketplace/internal/models"
)

// MarketSummary is the headline block of the admin overview. AveragePrice is
// the mean listing price, not the sale price.
type MarketSummary struct {
	AverageDaysToSale *int    `json:"average_days_to_sale"`
	TotalListings     int     `json:"total_listings"`
	ActiveListings    int     `json:"active_listings"`
	PendingListings   int     `json:"pending_listings"`
	TotalSales        int     `json:"total_sales"`
	TotalInquiries    int     `json:"total_inquiries"`
	TotalViews        int     `json:"total_views"`
	TotalSalesValue   float64 `json:"total_sales_value"`
	AveragePrice      float64 `json:"average_price"`
	InquiryRate       float64 `json:"inquiry_rate"`
	ViewToInquiryRate float64 `json:"view_to_inquiry_rate"`
}

// BuildMarketSummary summarizes every listing and inquiry. Views come from
// the listings' view counters.
func BuildMarketSummary(properties []models.Property, inquiries []models.Inquiry) MarketSummary {
	s := MarketSummary{
		TotalListings:  len(properties),
		TotalInquiries: len(inquiries),
	}

	prices := make([]float64, 0, len(properties))
	sold := make([]float64, 0)
	for _, p := range properties {
		prices = append(prices, p.Price)
		s.TotalViews += p.ViewCount
		switch p.Status {
		case models.StatusAvailable:
			s.ActiveListings++
		case models.StatusPending:
			s.PendingListings++
		case models.StatusSold:
			s.TotalSales++
			if p.SalePrice != nil {
				sold = append(sold, *p.SalePrice)
			} else {
				sold = append(sold, p.Price)
			}
		}
	}

	s.AveragePrice = Mean(prices)
	s.TotalSalesValue = Sum(sold)
	s.InquiryRate = InquiryRate(s.TotalInquiries, s.TotalListings)
	s.ViewToInquiryRate = ViewToInquiryRate(s.TotalInquiries, s.TotalViews)
	if days, ok := AverageTimeToSale(properties); ok {
		s.AverageDaysToSale = &days
	}
	return s
}

// ListingRank is one listing in a performance ranking.
type ListingRank struct {
	Title     string    `json:"title"`
	Views     int       `json:"views"`
	Inquiries int       `json:"inquiries"`
	ID        uuid.UUID `json:"id"`
}

// ListingStats is the agent/owner dashboard block for their own listings.
type ListingStats struct {
	AverageDaysToSale *int          `json:"average_days_to_sale"`
	TopListings       []ListingRank `json:"top_listings"`
	TotalListings     int           `json:"total_listings"`
	Available         int           `json:"available"`
	Pending           int           `json:"pending"`
	Sold              int           `json:"sold"`
	Withdrawn         int           `json:"withdrawn"`
	TotalViews        int           `json:"total_views"`
	TotalInquiries    int           `json:"total_inquiries"`
	NewInquiries      int           `json:"new_inquiries"`
	DiasporaInquiries int           `json:"diaspora_inquiries"`
	InquiryRate       float64       `json:"inquiry_rate"`
	ViewToInquiryRate float64       `json:"view_to_inquiry_rate"`
}

// BuildListingStats summarizes a lister's own listings and the inquiries
// made against them. profiles resolves buyer diaspora flags and may be nil.
func BuildListingStats(properties []models.Property, inquiries []models.Inquiry, profiles map[uuid.UUID]models.Profile) ListingStats {
	s := ListingStats{
		TotalListings:  len(properties),
		TotalInquiries: len(inquiries),
	}
	ranks := make([]ListingRank, 0, len(properties))
	for _, p := range properties {
		s.TotalViews += p.ViewCount
		switch p.Status {
		case models.StatusAvailable:
			s.Available++
		case models.StatusPending:
			s.Pending++
		case models.StatusSold:
			s.Sold++
		case models.StatusWithdrawn:
			s.Withdrawn++
		}
		ranks = append(ranks, ListingRank{ID: p.ID, Title: p.Title, Views: p.ViewCount, Inquiries: p.InquiryCount})
	}

	for _, inq := range inquiries {
		if inq.Status == models.InquiryNew {
			s.NewInquiries++
		}
		if InquiryOrigin(inq, profiles) == models.OriginDiaspora {
			s.DiasporaInquiries++
		}
	}

	slices.SortFunc(ranks, func(a, b ListingRank) int {
		if c := cmp.Compare(b.Inquiries, a.Inquiries); c != 0 {
			return c
		}
		if c := cmp.Compare(b.Views, a.Views); c != 0 {
			return c
		}
		return cmp.Compare(a.Title, b.Title)
	})
	if len(ranks) > 5 {
		ranks = ranks[:5]
	}
	s.TopListings = ranks

	s.InquiryRate = InquiryRate(s.TotalInquiries, s.TotalListings)
	s.ViewToInquiryRate = ViewToInquiryRate(s.TotalInquiries, s.TotalViews)
	if days, ok := AverageTimeToSale(properties); ok {
		s.AverageDaysToSale = &days
	}
	return s
}

// InquiryOrigin classifies the buyer behind an inquiry using the inquiry's
// own fields and, when present, the buyer's profile.
func InquiryOrigin(inq models.Inquiry, profiles map[uuid.UUID]models.Profile) models.OriginType {
	profile, hasProfile := profiles[inq.BuyerID]
	country := ""
	switch {
	case inq.BuyerCountry != nil:
		country = *inq.BuyerCountry
	case hasProfile && profile.Country != nil:
		country = *profile.Country
	}
	return ClassifyOrigin(inq.OriginType, hasProfile && profile.IsDiaspora, country)
}

// ProfileIndex keys profiles by id.
func ProfileIndex(profiles []models.Profile) map[uuid.UUID]models.Profile {
	index := make(map[uuid.UUID]models.Profile, len(profiles))
	for _, p := range profiles {
		index[p.ID] = p
	}
	return index
}

// Overview is the admin console landing page.
type Overview struct {
	TopDistricts     []DistrictStats  `json:"top_districts"`
	TopAgents        []AgentStats     `json:"top_agents"`
	ProfilesByRole   []Count          `json:"profiles_by_role"`
	InquiryStatuses  []Count          `json:"inquiry_statuses"`
	DailyInquiries   []DayCount       `json:"daily_inquiries"`
	RecentInquiries  []models.Inquiry `json:"recent_inquiries"`
	Summary          MarketSummary    `json:"summary"`
	TotalProfiles    int              `json:"total_profiles"`
	DiasporaProfiles int              `json:"diaspora_profiles"`
	VerifiedAgents   int              `json:"verified_agents"`
}

// BuildOverview reduces the full marketplace into the admin overview. Daily
// inquiries cover the 14 days ending at now in loc.
func BuildOverview(profiles []models.Profile, agents []models.Agent, properties []models.Property, inquiries []models.Inquiry, loc *time.Location, now time.Time) Overview {
	o := Overview{
		Summary:       BuildMarketSummary(properties, inquiries),
		TopDistricts:  firstN(DistrictRanking(properties), 6),
		TopAgents:     firstN(AgentRanking(agents, properties), 5),
		TotalProfiles: len(profiles),
	}

	roles := make([]string, 0, len(profiles))
	for _, p := range profiles {
		roles = append(roles, string(p.Role))
		if p.IsDiaspora {
			o.DiasporaProfiles++
		}
	}
	o.ProfilesByRole = TopN(Tally(roles), 0)

	for _, a := range agents {
		if a.VerificationStatus == "verified" {
			o.VerifiedAgents++
		}
	}

	statuses := make([]string, 0, len(inquiries))
	created := make([]time.Time, 0, len(inquiries))
	for _, inq := range inquiries {
		statuses = append(statuses, string(inq.Status))
		created = append(created, inq.CreatedAt)
	}
	o.InquiryStatuses = TopN(Tally(statuses), 0)
	o.DailyInquiries = DailyHistogram(created, loc, now, 14)

	recent := slices.Clone(inquiries)
	slices.SortStableFunc(recent, func(a, b models.Inquiry) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	o.RecentInquiries = firstN(recent, 10)
	return o
}

func firstN[T any](items []T, n int) []T {
	if len(items) > n {
		return items[:n]
	}
	return items
}

func locOrUTC(loc *time.Location) *time.Location {
	if loc == nil {
		return time.UTC
	}
	return loc
}
