package analytics

import "time"

// DateLayout is the day key used by daily histograms.
const DateLayout = "2006-01-02"

// HourlyHistogram counts events per hour of day in loc.
func HourlyHistogram(times []time.Time, loc *time.Location) [24]int {
	loc = locOrUTC(loc)
	var hours [24]int
	for _, t := range times {
		if t.IsZero() {
			continue
		}
		hours[t.In(loc).Hour()]++
	}
	return hours
}

// DayCount is the number of events on one calendar day.
type DayCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// DailyHistogram counts events per calendar day in loc over the days ending
// on end's date, oldest first. Days without events are reported as zero and
// events outside the range are ignored.
func DailyHistogram(times []time.Time, loc *time.Location, end time.Time, days int) []DayCount {
	if days <= 0 {
		return nil
	}
	loc = locOrUTC(loc)
	end = end.In(loc)
	last := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, loc)

	out := make([]DayCount, days)
	index := make(map[string]int, days)
	for i := 0; i < days; i++ {
		key := last.AddDate(0, 0, i-days+1).Format(DateLayout)
		out[i] = DayCount{Date: key}
		index[key] = i
	}
	for _, t := range times {
		if t.IsZero() {
			continue
		}
		if i, ok := index[t.In(loc).Format(DateLayout)]; ok {
			out[i].Count++
		}
	}
	return out
}
