// Package analytics reduces flat marketplace record sets into dashboard
// metrics. Every function is pure: callers fetch the records, analytics only
// counts, groups, ranks and buckets them.
package analytics

import (
	"math"
	"strings"

	"github.com/nyumba-homes/marketplace/internal/models"
	"github.com/shopspring/decimal"
)

// HomeCountry is the country whose buyers are classified as local.
const HomeCountry = "Malawi"

// ClassifyOrigin decides whether a buyer is diaspora or local. An explicit
// origin wins over the profile's diaspora flag, which wins over inferring
// from the declared country. An empty country is local.
func ClassifyOrigin(explicit *models.OriginType, profileDiaspora bool, country string) models.OriginType {
	if explicit != nil && (*explicit == models.OriginDiaspora || *explicit == models.OriginLocal) {
		return *explicit
	}
	if profileDiaspora {
		return models.OriginDiaspora
	}
	country = strings.TrimSpace(country)
	if country != "" && !strings.EqualFold(country, HomeCountry) {
		return models.OriginDiaspora
	}
	return models.OriginLocal
}

// Percentage returns part/whole*100 rounded to 2 decimals, or 0 when whole
// is zero.
func Percentage(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return decimal.NewFromInt(int64(part)).
		Div(decimal.NewFromInt(int64(whole))).
		Mul(decimal.NewFromInt(100)).
		Round(2).
		InexactFloat64()
}

// InquiryRate is inquiries per 100 listings.
func InquiryRate(inquiries, properties int) float64 {
	return Percentage(inquiries, properties)
}

// ViewToInquiryRate is inquiries per 100 views.
func ViewToInquiryRate(inquiries, views int) float64 {
	return Percentage(inquiries, views)
}

// HotnessScore ranks district demand as (inquiries*2 + views*0.1) / listings.
// It is a ranking weight, not a probability, and is left unrounded so close
// districts keep their order. Zero listings score 0.
func HotnessScore(inquiries, views, listings int) float64 {
	if listings == 0 {
		return 0
	}
	demand := decimal.NewFromInt(int64(inquiries)).Mul(decimal.NewFromInt(2)).
		Add(decimal.NewFromInt(int64(views)).Mul(decimal.RequireFromString("0.1")))
	return demand.Div(decimal.NewFromInt(int64(listings))).InexactFloat64()
}

// Mean returns the arithmetic mean of values rounded to 2 decimals, or 0 for
// an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := decimal.Zero
	for _, v := range values {
		sum = sum.Add(decimal.NewFromFloat(v))
	}
	return sum.Div(decimal.NewFromInt(int64(len(values)))).Round(2).InexactFloat64()
}

// Sum adds values exactly and rounds the total to 2 decimals.
func Sum(values []float64) float64 {
	sum := decimal.Zero
	for _, v := range values {
		sum = sum.Add(decimal.NewFromFloat(v))
	}
	return sum.Round(2).InexactFloat64()
}

// AverageTimeToSale returns the mean number of whole days between listing
// and sale over sold properties carrying both timestamps. ok is false when
// no property qualifies.
func AverageTimeToSale(properties []models.Property) (days int, ok bool) {
	var total, n int64
	for _, p := range properties {
		if p.Status != models.StatusSold || p.SoldAt == nil || p.ListedAt.IsZero() {
			continue
		}
		elapsed := p.SoldAt.Sub(p.ListedAt)
		if elapsed < 0 {
			continue
		}
		total += int64(math.Floor(elapsed.Hours() / 24))
		n++
	}
	if n == 0 {
		return 0, false
	}
	return int(decimal.NewFromInt(total).Div(decimal.NewFromInt(n)).Round(0).IntPart()), true
}

// PlotSize is a plot-size bucket.
type PlotSize string

const (
	PlotSmall      PlotSize = "small"
	PlotStandard   PlotSize = "standard"
	PlotMedium     PlotSize = "medium"
	PlotLarge      PlotSize = "large"
	PlotExtraLarge PlotSize = "extra-large"
)

// PlotSizes lists the buckets from smallest to largest.
var PlotSizes = []PlotSize{PlotSmall, PlotStandard, PlotMedium, PlotLarge, PlotExtraLarge}

// PlotSizeCategory buckets a plot by square meters. Boundary values belong
// to the lower bucket: 500 is standard, 1000 is large.
func PlotSizeCategory(sqm float64) PlotSize {
	switch {
	case sqm < 400:
		return PlotSmall
	case sqm <= 500:
		return PlotStandard
	case sqm <= 700:
		return PlotMedium
	case sqm <= 1000:
		return PlotLarge
	default:
		return PlotExtraLarge
	}
}

// Ratio returns num/den rounded to 2 decimals, or 0 when den is zero.
func Ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return decimal.NewFromInt(int64(num)).Div(decimal.NewFromInt(int64(den))).Round(2).InexactFloat64()
}
