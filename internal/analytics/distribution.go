package analytics

import "github.com/nyumba-homes/marketplace/internal/models"

type priceBand struct {
	label string
	below float64
}

// Price bands in MWK. The last band is open-ended.
var priceBands = []priceBand{
	{label: "Under 5M", below: 5_000_000},
	{label: "5M - 10M", below: 10_000_000},
	{label: "10M - 25M", below: 25_000_000},
	{label: "25M - 50M", below: 50_000_000},
	{label: "50M - 100M", below: 100_000_000},
	{label: "Over 100M"},
}

// PriceBand returns the label of the band price falls in.
func PriceBand(price float64) string {
	for _, b := range priceBands[:len(priceBands)-1] {
		if price < b.below {
			return b.label
		}
	}
	return priceBands[len(priceBands)-1].label
}

// PriceDistribution counts listings per price band.
func PriceDistribution(properties []models.Property) []Bucket {
	buckets := make([]Bucket, len(priceBands))
	index := make(map[string]int, len(priceBands))
	for i, b := range priceBands {
		buckets[i].Label = b.label
		index[b.label] = i
	}
	for _, p := range properties {
		buckets[index[PriceBand(p.Price)]].Count++
	}
	return withPercentages(buckets)
}

// PlotSizeDistribution counts listings with a known plot size per plot-size
// bucket.
func PlotSizeDistribution(properties []models.Property) []Bucket {
	counts := make(map[PlotSize]int, len(PlotSizes))
	for _, p := range properties {
		if p.PlotSizeSqm != nil {
			counts[PlotSizeCategory(*p.PlotSizeSqm)]++
		}
	}
	return plotBuckets(counts)
}

func plotBuckets(counts map[PlotSize]int) []Bucket {
	buckets := make([]Bucket, len(PlotSizes))
	for i, size := range PlotSizes {
		buckets[i] = Bucket{Label: string(size), Count: counts[size]}
	}
	return withPercentages(buckets)
}
