package analytics

import (
	"strings"
	"time"

	"github.com/nyumba-homes/marketplace/internal/models"
)

// SearchReport is the search intelligence panel.
type SearchReport struct {
	TopTerms              []Count       `json:"top_terms"`
	TopDistricts          []Count       `json:"top_districts"`
	TopPropertyTypes      []Count       `json:"top_property_types"`
	ZeroResultTerms       []Count       `json:"zero_result_terms"`
	Funnel                []FunnelStage `json:"funnel"`
	TotalSearches         int           `json:"total_searches"`
	ZeroResultSearches    int           `json:"zero_result_searches"`
	ZeroResultRate        float64       `json:"zero_result_rate"`
	AverageResults        float64       `json:"average_results"`
	ViewConversionRate    float64       `json:"view_conversion_rate"`
	InquiryConversionRate float64       `json:"inquiry_conversion_rate"`
	HourlyActivity        [24]int       `json:"hourly_activity"`
}

// SearchIntelligence ranks what buyers search for and builds the
// search -> view -> detail view -> inquiry funnel from the event records.
func SearchIntelligence(searches []models.SearchQuery, views []models.PropertyView, inquiries []models.Inquiry, loc *time.Location) SearchReport {
	r := SearchReport{TotalSearches: len(searches)}

	var terms, zeroTerms, districts, types []string
	var results []float64
	var toView, toInquiry int
	created := make([]time.Time, 0, len(searches))
	for _, q := range searches {
		term := strings.ToLower(strings.TrimSpace(q.QueryText))
		terms = append(terms, term)
		if q.ResultCount == 0 {
			r.ZeroResultSearches++
			zeroTerms = append(zeroTerms, term)
		}
		results = append(results, float64(q.ResultCount))
		if q.ResultedInView {
			toView++
		}
		if q.ResultedInInquiry {
			toInquiry++
		}
		districts = append(districts, paramString(q.Params, "district"))
		types = append(types, paramString(q.Params, "property_type"))
		created = append(created, q.CreatedAt)
	}

	detail := 0
	for _, v := range views {
		if v.IsDetailView {
			detail++
		}
	}

	r.TopTerms = TopN(Tally(terms), 15)
	r.ZeroResultTerms = TopN(Tally(zeroTerms), 10)
	r.TopDistricts = TopN(Tally(districts), 10)
	r.TopPropertyTypes = TopN(Tally(types), 0)
	r.ZeroResultRate = Percentage(r.ZeroResultSearches, r.TotalSearches)
	r.AverageResults = Mean(results)
	r.ViewConversionRate = Percentage(toView, r.TotalSearches)
	r.InquiryConversionRate = Percentage(toInquiry, r.TotalSearches)
	r.HourlyActivity = HourlyHistogram(created, loc)
	r.Funnel = BuildFunnel(models.SessionFunnel{
		Searches:    len(searches),
		Views:       len(views),
		DetailViews: detail,
		Inquiries:   len(inquiries),
	})
	return r
}

func paramString(params map[string]interface{}, key string) string {
	v, ok := params[key].(string)
	if !ok {
		return ""
	}
	return v
}
