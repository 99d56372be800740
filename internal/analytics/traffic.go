package analytics

import (
	"time"

	"github.com/nyumba-homes/marketplace/internal/models"
)

// TrafficReport is the traffic analytics panel.
type TrafficReport struct {
	Sources               []Count       `json:"sources"`
	Mediums               []Count       `json:"mediums"`
	Campaigns             []Count       `json:"campaigns"`
	Devices               []Count       `json:"devices"`
	Browsers              []Count       `json:"browsers"`
	OperatingSystems      []Count       `json:"operating_systems"`
	LandingPages          []Count       `json:"landing_pages"`
	Daily                 []DayCount    `json:"daily"`
	SessionFunnel         []FunnelStage `json:"session_funnel"`
	TotalVisits           int           `json:"total_visits"`
	TotalPageViews        int           `json:"total_page_views"`
	TotalSessions         int           `json:"total_sessions"`
	PagesPerVisit         float64       `json:"pages_per_visit"`
	AverageSessionSeconds float64       `json:"average_session_seconds"`
	Hourly                [24]int       `json:"hourly"`
}

// BuildTrafficReport groups first-touch traffic rows by source, medium,
// campaign, device and landing page. Daily visits cover the 30 days ending
// at now in loc.
func BuildTrafficReport(traffic []models.TrafficSource, sessions []models.UserSession, loc *time.Location, now time.Time) TrafficReport {
	r := TrafficReport{
		TotalVisits:   len(traffic),
		TotalSessions: len(sessions),
	}

	var sources, mediums, campaigns, devices, browsers, systems, pages []string
	created := make([]time.Time, 0, len(traffic))
	for _, t := range traffic {
		r.TotalPageViews += t.PageViews
		sources = append(sources, t.Source)
		mediums = append(mediums, t.Medium)
		if t.Campaign != nil {
			campaigns = append(campaigns, *t.Campaign)
		}
		devices = append(devices, t.DeviceType)
		browsers = append(browsers, t.Browser)
		systems = append(systems, t.OS)
		pages = append(pages, t.LandingPage)
		created = append(created, t.CreatedAt)
	}

	var durations []float64
	for _, s := range sessions {
		if s.DurationSeconds != nil {
			durations = append(durations, float64(*s.DurationSeconds))
		}
	}

	r.Sources = TopN(Tally(sources), 10)
	r.Mediums = TopN(Tally(mediums), 0)
	r.Campaigns = TopN(Tally(campaigns), 10)
	r.Devices = TopN(Tally(devices), 0)
	r.Browsers = TopN(Tally(browsers), 0)
	r.OperatingSystems = TopN(Tally(systems), 0)
	r.LandingPages = TopN(Tally(pages), 10)
	r.PagesPerVisit = Ratio(r.TotalPageViews, r.TotalVisits)
	r.AverageSessionSeconds = Mean(durations)
	r.Daily = DailyHistogram(created, loc, now, 30)
	r.Hourly = HourlyHistogram(created, loc)
	r.SessionFunnel = BuildFunnel(SumFunnels(sessions))
	return r
}
