package analytics

import (
	"cmp"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/nyumba-homes/marketplace/internal/models"
	"github.com/shopspring/decimal"
)

// DistrictStats aggregates listings of one district.
type DistrictStats struct {
	District     string  `json:"district"`
	Listings     int     `json:"listings"`
	Available    int     `json:"available"`
	Sold         int     `json:"sold"`
	Views        int     `json:"views"`
	Inquiries    int     `json:"inquiries"`
	AveragePrice float64 `json:"average_price"`
	Hotness      float64 `json:"hotness"`
}

// DistrictRanking groups listings by district and ranks them by hotness,
// then listing count, then name. Views and inquiries come from the listing
// counters. Hotness is rounded to 2 decimals after ranking.
func DistrictRanking(properties []models.Property) []DistrictStats {
	byDistrict := make(map[string]*DistrictStats)
	prices := make(map[string][]float64)
	for _, p := range properties {
		name := strings.TrimSpace(p.District)
		if name == "" {
			name = "Unknown"
		}
		d, ok := byDistrict[name]
		if !ok {
			d = &DistrictStats{District: name}
			byDistrict[name] = d
		}
		d.Listings++
		d.Views += p.ViewCount
		d.Inquiries += p.InquiryCount
		switch p.Status {
		case models.StatusAvailable:
			d.Available++
		case models.StatusSold:
			d.Sold++
		}
		prices[name] = append(prices[name], p.Price)
	}

	ranked := make([]DistrictStats, 0, len(byDistrict))
	for name, d := range byDistrict {
		d.AveragePrice = Mean(prices[name])
		d.Hotness = HotnessScore(d.Inquiries, d.Views, d.Listings)
		ranked = append(ranked, *d)
	}
	slices.SortFunc(ranked, func(a, b DistrictStats) int {
		if c := cmp.Compare(b.Hotness, a.Hotness); c != 0 {
			return c
		}
		if c := cmp.Compare(b.Listings, a.Listings); c != 0 {
			return c
		}
		return cmp.Compare(a.District, b.District)
	})
	for i := range ranked {
		ranked[i].Hotness = decimal.NewFromFloat(ranked[i].Hotness).Round(2).InexactFloat64()
	}
	return ranked
}

// AgentStats is one agent's listing performance.
type AgentStats struct {
	CompanyName        string    `json:"company_name"`
	VerificationStatus string    `json:"verification_status"`
	Listings           int       `json:"listings"`
	Active             int       `json:"active"`
	Sold               int       `json:"sold"`
	Views              int       `json:"views"`
	Inquiries          int       `json:"inquiries"`
	Rating             float64   `json:"rating"`
	InquiryRate        float64   `json:"inquiry_rate"`
	AgentID            uuid.UUID `json:"agent_id"`
}

// AgentRanking ranks agents by sales, then inquiries, then company name.
// Agents without listings are included with zero counts.
func AgentRanking(agents []models.Agent, properties []models.Property) []AgentStats {
	byAgent := make(map[uuid.UUID]*AgentStats, len(agents))
	ranked := make([]*AgentStats, 0, len(agents))
	for _, a := range agents {
		s := &AgentStats{
			AgentID:            a.ID,
			CompanyName:        a.CompanyName,
			VerificationStatus: a.VerificationStatus,
			Rating:             a.Rating,
		}
		byAgent[a.ID] = s
		ranked = append(ranked, s)
	}

	for _, p := range properties {
		if p.AgentID == nil {
			continue
		}
		s, ok := byAgent[*p.AgentID]
		if !ok {
			continue
		}
		s.Listings++
		s.Views += p.ViewCount
		s.Inquiries += p.InquiryCount
		switch p.Status {
		case models.StatusAvailable:
			s.Active++
		case models.StatusSold:
			s.Sold++
		}
	}

	out := make([]AgentStats, 0, len(ranked))
	for _, s := range ranked {
		s.InquiryRate = InquiryRate(s.Inquiries, s.Listings)
		out = append(out, *s)
	}
	slices.SortFunc(out, func(a, b AgentStats) int {
		if c := cmp.Compare(b.Sold, a.Sold); c != 0 {
			return c
		}
		if c := cmp.Compare(b.Inquiries, a.Inquiries); c != 0 {
			return c
		}
		return cmp.Compare(a.CompanyName, b.CompanyName)
	})
	return out
}
