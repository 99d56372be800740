package analytics

import "github.com/nyumba-homes/marketplace/internal/models"

// Funnel stage names, in order.
const (
	StageSearches    = "searches"
	StageViews       = "views"
	StageDetailViews = "detail_views"
	StageInquiries   = "inquiries"
)

// FunnelStage is one step of the conversion funnel. Rate is the stage count
// as a percentage of the previous stage. The first stage is 100 when it has
// any traffic.
type FunnelStage struct {
	Name  string  `json:"name"`
	Count int     `json:"count"`
	Rate  float64 `json:"rate"`
}

// BuildFunnel turns stage counters into the ordered
// searches -> views -> detail views -> inquiries funnel.
func BuildFunnel(counts models.SessionFunnel) []FunnelStage {
	stages := []FunnelStage{
		{Name: StageSearches, Count: counts.Searches},
		{Name: StageViews, Count: counts.Views},
		{Name: StageDetailViews, Count: counts.DetailViews},
		{Name: StageInquiries, Count: counts.Inquiries},
	}
	if stages[0].Count > 0 {
		stages[0].Rate = 100
	}
	for i := 1; i < len(stages); i++ {
		stages[i].Rate = Percentage(stages[i].Count, stages[i-1].Count)
	}
	return stages
}

// SumFunnels adds up the denormalized funnel counters of every session.
func SumFunnels(sessions []models.UserSession) models.SessionFunnel {
	var total models.SessionFunnel
	for _, s := range sessions {
		total.Searches += s.Funnel.Searches
		total.Views += s.Funnel.Views
		total.DetailViews += s.Funnel.DetailViews
		total.Inquiries += s.Funnel.Inquiries
	}
	return total
}
