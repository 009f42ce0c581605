package leads

import (
	"math"
	"strings"
	"time"
)

// Derived, purely computed views over a lead list. These back the
// dashboard cards and charts; none of them mutate their input.

// CountByStatus returns how many leads occupy each funnel stage. All
// four stages are always present in the result.
func CountByStatus(list []*Lead) map[Status]int {
	counts := map[Status]int{
		StatusNew:       0,
		StatusContacted: 0,
		StatusConverted: 0,
		StatusLost:      0,
	}
	for _, lead := range list {
		counts[lead.Status]++
	}
	return counts
}

// CountBySource returns how many leads arrived through each channel.
func CountBySource(list []*Lead) map[string]int {
	counts := make(map[string]int)
	for _, lead := range list {
		counts[lead.Source]++
	}
	return counts
}

// ConversionRate is the percentage of converted leads, rounded to the
// nearest integer. Zero when the list is empty.
func ConversionRate(list []*Lead) int {
	if len(list) == 0 {
		return 0
	}
	converted := CountByStatus(list)[StatusConverted]
	return int(math.Round(float64(converted) / float64(len(list)) * 100))
}

// TimelinePoint is one day of the creation timeline.
type TimelinePoint struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// Timeline buckets lead creations per day over the trailing window
// ending at now, oldest day first. Days use now's location.
func Timeline(list []*Lead, now time.Time, days int) []TimelinePoint {
	if days <= 0 {
		return []TimelinePoint{}
	}

	points := make([]TimelinePoint, days)
	index := make(map[string]int, days)
	for i := 0; i < days; i++ {
		day := now.AddDate(0, 0, i-days+1).Format("2006-01-02")
		points[i] = TimelinePoint{Date: day}
		index[day] = i
	}
	for _, lead := range list {
		day := lead.CreatedAt.In(now.Location()).Format("2006-01-02")
		if i, ok := index[day]; ok {
			points[i].Count++
		}
	}
	return points
}

// FilterAll matches every status in Filter.
const FilterAll = "all"

// Filter returns the leads whose name, email or phone contains query
// (case-insensitive) and whose status matches the filter. An empty
// query matches everything; an empty or "all" status filter disables
// status filtering. The input order is preserved.
func Filter(list []*Lead, query string, status string) []*Lead {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]*Lead, 0, len(list))
	for _, lead := range list {
		if q != "" &&
			!strings.Contains(strings.ToLower(lead.Name), q) &&
			!strings.Contains(strings.ToLower(lead.Email), q) &&
			!strings.Contains(strings.ToLower(lead.Phone), q) {
			continue
		}
		if status != "" && status != FilterAll && lead.Status != Status(status) {
			continue
		}
		out = append(out, lead)
	}
	return out
}

// Stats bundles the derived views for the dashboard endpoint.
type Stats struct {
	Total          int             `json:"total"`
	ByStatus       map[Status]int  `json:"by_status"`
	BySource       map[string]int  `json:"by_source"`
	Timeline       []TimelinePoint `json:"timeline"`
	ConversionRate int             `json:"conversion_rate"`
}

// ComputeStats derives all dashboard views in one pass over the list.
func ComputeStats(list []*Lead, now time.Time) *Stats {
	return &Stats{
		Total:          len(list),
		ByStatus:       CountByStatus(list),
		BySource:       CountBySource(list),
		Timeline:       Timeline(list, now, 7),
		ConversionRate: ConversionRate(list),
	}
}
