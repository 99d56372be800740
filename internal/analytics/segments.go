package analytics

import (
	"github.com/google/uuid"
	"github.com/nyumba-homes/marketplace/internal/models"
)

// SegmentStats describes the inquiries of one buyer origin.
type SegmentStats struct {
	TopIntents       []Count `json:"top_intents"`
	TopPropertyTypes []Count `json:"top_property_types"`
	TopDistricts     []Count `json:"top_districts"`
	Inquiries        int     `json:"inquiries"`
	Percentage       float64 `json:"percentage"`
	AverageBudget    float64 `json:"average_budget"`
	ClosedDeals      int     `json:"closed_deals"`
	ConversionRate   float64 `json:"conversion_rate"`
}

// BuyerSegmentReport splits inquiries into diaspora and local buyers.
type BuyerSegmentReport struct {
	Countries           []Count      `json:"countries"`
	Locations           []Count      `json:"locations"`
	Statuses            []Count      `json:"statuses"`
	Diaspora            SegmentStats `json:"diaspora"`
	Local               SegmentStats `json:"local"`
	TotalInquiries      int          `json:"total_inquiries"`
	RegisteredBuyers    int          `json:"registered_buyers"`
	RegisteredDiaspora  int          `json:"registered_diaspora"`
	DiasporaProfileRate float64      `json:"diaspora_profile_rate"`
}

type segmentAccumulator struct {
	intents, types, districts []string
	budgets                   []float64
	count, closed             int
}

func (a *segmentAccumulator) stats(total int) SegmentStats {
	return SegmentStats{
		Inquiries:        a.count,
		Percentage:       Percentage(a.count, total),
		AverageBudget:    Mean(a.budgets),
		ClosedDeals:      a.closed,
		ConversionRate:   Percentage(a.closed, a.count),
		TopIntents:       TopN(Tally(a.intents), 5),
		TopPropertyTypes: TopN(Tally(a.types), 5),
		TopDistricts:     TopN(Tally(a.districts), 5),
	}
}

// BuyerSegments classifies every inquiry by buyer origin and breaks each
// segment down by intent, property type, district and budget. Countries
// ranks diaspora buyers' countries.
func BuyerSegments(inquiries []models.Inquiry, profiles []models.Profile, properties []models.Property) BuyerSegmentReport {
	profileByID := ProfileIndex(profiles)
	propertyByID := make(map[uuid.UUID]models.Property, len(properties))
	for _, p := range properties {
		propertyByID[p.ID] = p
	}

	var diaspora, local segmentAccumulator
	var countries, locations, statuses []string
	for _, inq := range inquiries {
		origin := InquiryOrigin(inq, profileByID)
		acc := &local
		if origin == models.OriginDiaspora {
			acc = &diaspora
		}
		acc.count++
		acc.intents = append(acc.intents, inq.Intent)
		if inq.Budget != nil {
			acc.budgets = append(acc.budgets, *inq.Budget)
		}
		if inq.Status == models.InquiryClosed {
			acc.closed++
		}
		if p, ok := propertyByID[inq.PropertyID]; ok {
			acc.types = append(acc.types, string(p.PropertyType))
			acc.districts = append(acc.districts, p.District)
		}

		statuses = append(statuses, string(inq.Status))
		if inq.BuyerLocation != nil {
			locations = append(locations, *inq.BuyerLocation)
		}
		if origin == models.OriginDiaspora && inq.BuyerCountry != nil {
			countries = append(countries, *inq.BuyerCountry)
		}
	}

	r := BuyerSegmentReport{
		TotalInquiries: len(inquiries),
		Diaspora:       diaspora.stats(len(inquiries)),
		Local:          local.stats(len(inquiries)),
		Countries:      TopN(Tally(countries), 10),
		Locations:      TopN(Tally(locations), 10),
		Statuses:       TopN(Tally(statuses), 0),
	}
	for _, p := range profiles {
		if p.Role != models.RoleBuyer {
			continue
		}
		r.RegisteredBuyers++
		if p.IsDiaspora {
			r.RegisteredDiaspora++
		}
	}
	r.DiasporaProfileRate = Percentage(r.RegisteredDiaspora, r.RegisteredBuyers)
	return r
}
