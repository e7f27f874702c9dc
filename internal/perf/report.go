package perf

import (
	"time"

	"gonum.org/v1/gonum/stat"
)

// SlowQueryThresholdMs marks a query_duration point as slow.
const SlowQueryThresholdMs = 1000.0

// Recommendation is an advisory record, not an executed action.
type Recommendation struct {
	Type        string `json:"type"`
	Priority    string `json:"priority"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Action      string `json:"action"`
	Impact      string `json:"impact"`
}

// EndpointStats aggregates query_duration points for one endpoint.
type EndpointStats struct {
	Endpoint  string  `json:"endpoint"`
	Count     int     `json:"count"`
	AvgMs     float64 `json:"avg_ms"`
	MaxMs     float64 `json:"max_ms"`
	SlowQuery int     `json:"slow_queries"`
}

// QueryReport is the query optimization report for a trailing window.
type QueryReport struct {
	TotalQueries    int              `json:"total_queries"`
	SlowQueries     int              `json:"slow_queries"`
	AvgDurationMs   float64          `json:"avg_duration_ms"`
	ByEndpoint      []EndpointStats  `json:"by_endpoint"`
	Recommendations []Recommendation `json:"recommendations"`
	GeneratedAt     time.Time        `json:"generated_at"`
}

// QueryOptimizationReport inspects query_duration points in the window,
// groups them by endpoint, and emits advisory recommendations.
func (a *Aggregator) QueryOptimizationReport(orgID string, window time.Duration) (*QueryReport, error) {
	if window <= 0 {
		window = DefaultSummaryWindow
	}

	points, err := a.source.MetricsInWindow("query_duration", orgID, time.Now().Add(-window))
	if err != nil {
		return nil, err
	}

	report := &QueryReport{
		TotalQueries:    len(points),
		ByEndpoint:      []EndpointStats{},
		Recommendations: []Recommendation{},
		GeneratedAt:     time.Now(),
	}

	byEndpoint := make(map[string]*EndpointStats)
	var allDurations []float64

	for _, p := range points {
		allDurations = append(allDurations, p.Value)

		endpoint := p.Endpoint
		if endpoint == "" {
			endpoint = "unknown"
		}

		stats, ok := byEndpoint[endpoint]
		if !ok {
			stats = &EndpointStats{Endpoint: endpoint}
			byEndpoint[endpoint] = stats
		}
		stats.Count++
		stats.AvgMs += p.Value // running sum, divided below
		if p.Value > stats.MaxMs {
			stats.MaxMs = p.Value
		}
		if p.Value > SlowQueryThresholdMs {
			stats.SlowQuery++
			report.SlowQueries++
		}
	}

	var busiest *EndpointStats
	for _, stats := range byEndpoint {
		stats.AvgMs /= float64(stats.Count)
		report.ByEndpoint = append(report.ByEndpoint, *stats)
		if busiest == nil || stats.Count > busiest.Count {
			busiest = stats
		}
	}

	if len(allDurations) > 0 {
		report.AvgDurationMs = stat.Mean(allDurations, nil)
	}

	if report.SlowQueries > 0 {
		report.Recommendations = append(report.Recommendations, Recommendation{
			Type:        "slow_queries",
			Priority:    "high",
			Title:       "Optimize slow queries",
			Description: "Queries exceeding 1000ms were observed in the window.",
			Action:      "Review query plans and add missing indexes for the slowest endpoints.",
			Impact:      "Reduces tail latency for affected endpoints.",
		})
	}

	if busiest != nil && busiest.Count > 1000 {
		report.Recommendations = append(report.Recommendations, Recommendation{
			Type:        "caching",
			Priority:    "medium",
			Title:       "Add caching for high-traffic endpoint",
			Description: "A single endpoint accounts for more than 1000 queries in the window.",
			Action:      "Cache responses or query results for " + busiest.Endpoint + ".",
			Impact:      "Cuts repeated query load on the hottest endpoint.",
		})
	}

	if report.AvgDurationMs > 500 {
		report.Recommendations = append(report.Recommendations, Recommendation{
			Type:        "general_optimization",
			Priority:    "medium",
			Title:       "General query optimization",
			Description: "Window-wide average query duration exceeds 500ms.",
			Action:      "Profile the data layer and review connection pool sizing.",
			Impact:      "Improves average latency across all endpoints.",
		})
	}

	return report, nil
}
