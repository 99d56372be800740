package analytics

import (
	"cmp"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/nyumba-homes/marketplace/internal/models"
	"github.com/shopspring/decimal"
)

// DistrictPlotRow counts one district's plots per size bucket.
type DistrictPlotRow struct {
	Counts   map[PlotSize]int `json:"counts"`
	District string           `json:"district"`
	Total    int              `json:"total"`
}

// DistrictPrice is the mean asking price per square meter in a district.
type DistrictPrice struct {
	District           string  `json:"district"`
	Listings           int     `json:"listings"`
	AveragePricePerSqm float64 `json:"average_price_per_sqm"`
}

// SalesByBuyerType splits sold listings by the recorded buyer origin.
type SalesByBuyerType struct {
	Diaspora int `json:"diaspora"`
	Local    int `json:"local"`
	Unknown  int `json:"unknown"`
}

// MarketIntelligenceReport is the market intelligence view.
type MarketIntelligenceReport struct {
	DistrictPlotSizes      []DistrictPlotRow `json:"district_plot_sizes"`
	DiasporaPlotPreference []Bucket          `json:"diaspora_plot_preference"`
	LocalPlotPreference    []Bucket          `json:"local_plot_preference"`
	PricePerSqm            []DistrictPrice   `json:"price_per_sqm"`
	PriceDistribution      []Bucket          `json:"price_distribution"`
	PlotSizeDistribution   []Bucket          `json:"plot_size_distribution"`
	SalesByBuyerType       SalesByBuyerType  `json:"sales_by_buyer_type"`
}

// MarketIntelligence cross-tabulates districts with plot sizes, derives
// plot-size preference per buyer origin from inquiries, and prices land per
// square meter.
func MarketIntelligence(properties []models.Property, inquiries []models.Inquiry, profiles []models.Profile) MarketIntelligenceReport {
	r := MarketIntelligenceReport{
		PriceDistribution:    PriceDistribution(properties),
		PlotSizeDistribution: PlotSizeDistribution(properties),
	}

	rows := make(map[string]*DistrictPlotRow)
	perSqm := make(map[string][]decimal.Decimal)
	byID := make(map[uuid.UUID]models.Property, len(properties))
	for _, p := range properties {
		byID[p.ID] = p

		if p.Status == models.StatusSold {
			switch {
			case p.BuyerType == nil:
				r.SalesByBuyerType.Unknown++
			case *p.BuyerType == models.OriginDiaspora:
				r.SalesByBuyerType.Diaspora++
			default:
				r.SalesByBuyerType.Local++
			}
		}

		if p.PlotSizeSqm == nil || *p.PlotSizeSqm <= 0 {
			continue
		}
		district := strings.TrimSpace(p.District)
		row, ok := rows[district]
		if !ok {
			row = &DistrictPlotRow{District: district, Counts: make(map[PlotSize]int, len(PlotSizes))}
			rows[district] = row
		}
		row.Counts[PlotSizeCategory(*p.PlotSizeSqm)]++
		row.Total++
		perSqm[district] = append(perSqm[district], decimal.NewFromFloat(p.Price).Div(decimal.NewFromFloat(*p.PlotSizeSqm)))
	}

	for _, row := range rows {
		r.DistrictPlotSizes = append(r.DistrictPlotSizes, *row)
	}
	slices.SortFunc(r.DistrictPlotSizes, func(a, b DistrictPlotRow) int {
		if c := cmp.Compare(b.Total, a.Total); c != 0 {
			return c
		}
		return cmp.Compare(a.District, b.District)
	})

	for district, values := range perSqm {
		r.PricePerSqm = append(r.PricePerSqm, DistrictPrice{
			District:           district,
			Listings:           len(values),
			AveragePricePerSqm: decimal.Avg(values[0], values[1:]...).Round(2).InexactFloat64(),
		})
	}
	slices.SortFunc(r.PricePerSqm, func(a, b DistrictPrice) int {
		if c := cmp.Compare(b.AveragePricePerSqm, a.AveragePricePerSqm); c != 0 {
			return c
		}
		return cmp.Compare(a.District, b.District)
	})

	profileByID := ProfileIndex(profiles)
	diaspora := make(map[PlotSize]int)
	local := make(map[PlotSize]int)
	for _, inq := range inquiries {
		p, ok := byID[inq.PropertyID]
		if !ok || p.PlotSizeSqm == nil {
			continue
		}
		size := PlotSizeCategory(*p.PlotSizeSqm)
		if InquiryOrigin(inq, profileByID) == models.OriginDiaspora {
			diaspora[size]++
		} else {
			local[size]++
		}
	}
	r.DiasporaPlotPreference = plotBuckets(diaspora)
	r.LocalPlotPreference = plotBuckets(local)
	return r
}
