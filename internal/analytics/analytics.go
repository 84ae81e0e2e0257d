// Package analytics contains the pure report transformations behind the
// admin dashboard: list filtering, hotspot ranking, and monthly trends.
// Everything here is deterministic and does no I/O, so handlers can call it
// on every request.
package analytics

import (
	"sort"
	"strings"
	"time"

	"github.com/saferoadsa/saferoad/internal/model"
)

// FilterAll is the wildcard value for the status and severity filters.
const FilterAll = "all"

// Filter is the dashboard's report filter. Zero-value Query and "all" (or
// empty) Status/Severity match everything.
type Filter struct {
	Status   string
	Severity string
	Query    string
}

// FilterReports returns the subsequence of reports matching all three filter
// predicates, preserving input order. The free-text query matches
// case-insensitively against the address, the description, and the
// reporter's display name (looked up via reporterNames, keyed by user ID).
func FilterReports(reports []model.Report, reporterNames map[string]string, f Filter) []model.Report {
	query := strings.ToLower(strings.TrimSpace(f.Query))

	var out []model.Report
	for _, r := range reports {
		if f.Status != "" && f.Status != FilterAll && r.Status != f.Status {
			continue
		}
		if f.Severity != "" && f.Severity != FilterAll && strings.ToLower(r.Severity) != f.Severity {
			continue
		}
		if query != "" {
			reporter := strings.ToLower(reporterNames[r.UserID])
			if !strings.Contains(strings.ToLower(r.Location.Address), query) &&
				!strings.Contains(strings.ToLower(r.Description), query) &&
				!strings.Contains(reporter, query) {
				continue
			}
		}
		out = append(out, r)
	}
	return out
}

// Hotspot is an address ranked by how many reports it has accumulated.
type Hotspot struct {
	Location string `json:"location"`
	Count    int    `json:"count"`
	Type     string `json:"type"`
}

// TopHotspots groups reports by exact address string, counts them, and
// returns the n busiest addresses in descending count order. Each hotspot
// carries the type of the first report seen at that address; ties keep
// first-seen order.
func TopHotspots(reports []model.Report, n int) []Hotspot {
	index := make(map[string]int)
	var spots []Hotspot

	for _, r := range reports {
		addr := r.Location.Address
		if addr == "" {
			continue
		}
		if i, ok := index[addr]; ok {
			spots[i].Count++
			continue
		}
		index[addr] = len(spots)
		spots = append(spots, Hotspot{Location: addr, Count: 1, Type: r.Type})
	}

	sort.SliceStable(spots, func(i, j int) bool {
		return spots[i].Count > spots[j].Count
	})

	if len(spots) > n {
		spots = spots[:n]
	}
	return spots
}

// MonthlyTrend is the report volume for one calendar month.
type MonthlyTrend struct {
	Month    string `json:"month"` // YYYY-MM
	Reports  int    `json:"reports"`
	Resolved int    `json:"resolved"`
}

// MonthlyTrends groups reports by creation month and counts totals and
// resolved reports per month, in chronological order. All months are
// computed from the stored data.
func MonthlyTrends(reports []model.Report) []MonthlyTrend {
	index := make(map[string]int)
	var trends []MonthlyTrend

	for _, r := range reports {
		month := r.CreatedAt.Format("2006-01")
		i, ok := index[month]
		if !ok {
			index[month] = len(trends)
			i = len(trends)
			trends = append(trends, MonthlyTrend{Month: month})
		}
		trends[i].Reports++
		if r.Status == model.StatusResolved {
			trends[i].Resolved++
		}
	}

	sort.Slice(trends, func(i, j int) bool {
		return trends[i].Month < trends[j].Month
	})
	return trends
}

// Summary is the dashboard's headline counters.
type Summary struct {
	TotalReports  int `json:"totalReports"`
	UrgentReports int `json:"urgentReports"`
	ResolvedToday int `json:"resolvedToday"`
}

// Summarize counts totals, urgent (high or critical severity) reports, and
// reports resolved today relative to now.
func Summarize(reports []model.Report, now time.Time) Summary {
	var s Summary
	today := now.Format("2006-01-02")

	for _, r := range reports {
		s.TotalReports++
		if r.Severity == model.SeverityHigh || r.Severity == model.SeverityCritical {
			s.UrgentReports++
		}
		if r.Status == model.StatusResolved && r.UpdatedAt.Format("2006-01-02") == today {
			s.ResolvedToday++
		}
	}
	return s
}
