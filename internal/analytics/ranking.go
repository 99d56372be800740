package analytics

import (
	"cmp"
	"slices"
	"strings"
)

// Count is one labelled tally in a ranking.
type Count struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Tally counts occurrences of each non-empty key.
func Tally(keys []string) map[string]int {
	counts := make(map[string]int)
	for _, k := range keys {
		if k = strings.TrimSpace(k); k != "" {
			counts[k]++
		}
	}
	return counts
}

// TopN ranks counts descending by count, breaking ties alphabetically by
// name, and keeps the first n. n <= 0 keeps everything.
func TopN(counts map[string]int, n int) []Count {
	ranked := make([]Count, 0, len(counts))
	for name, c := range counts {
		ranked = append(ranked, Count{Name: name, Count: c})
	}
	slices.SortFunc(ranked, func(a, b Count) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
	if n > 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// Bucket is one slot of a distribution.
type Bucket struct {
	Label      string  `json:"label"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

func withPercentages(buckets []Bucket) []Bucket {
	total := 0
	for _, b := range buckets {
		total += b.Count
	}
	for i := range buckets {
		buckets[i].Percentage = Percentage(buckets[i].Count, total)
	}
	return buckets
}
