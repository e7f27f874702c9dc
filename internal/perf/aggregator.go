package perf

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gatewaymon/internal/cache"
	"gatewaymon/internal/logger"
	"gatewaymon/internal/models"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// NeutralScore is reported when no response-time data exists in the window.
const NeutralScore = 75.0

// DefaultSummaryWindow is the trailing window for performance summaries.
const DefaultSummaryWindow = 24 * time.Hour

// MetricSource is the slice of the store the aggregator reads.
type MetricSource interface {
	MetricsInWindow(name, orgID string, since time.Time) ([]models.MetricPoint, error)
	MetricValues(name, orgID string, since time.Time) ([]float64, error)
}

// Aggregator computes derived summaries from stored metrics over rolling
// windows. Summaries are memoized in the cache collaborator under short TTLs.
type Aggregator struct {
	source   MetricSource
	cache    cache.Cache
	cacheTTL time.Duration
}

func NewAggregator(source MetricSource, c cache.Cache, cacheTTL time.Duration) *Aggregator {
	return &Aggregator{
		source:   source,
		cache:    c,
		cacheTTL: cacheTTL,
	}
}

// OptimizationScore maps the mean api_response_time in the window onto a
// 0-100 score. No data yields the neutral default, not an error.
func (a *Aggregator) OptimizationScore(orgID string, window time.Duration) (float64, error) {
	values, err := a.source.MetricValues("api_response_time", orgID, time.Now().Add(-window))
	if err != nil {
		return 0, err
	}
	if len(values) == 0 {
		return NeutralScore, nil
	}

	return scoreForResponseTime(stat.Mean(values, nil)), nil
}

func scoreForResponseTime(meanMs float64) float64 {
	switch {
	case meanMs < 100:
		return 95
	case meanMs < 200:
		return 85
	case meanMs < 500:
		return 70
	case meanMs < 1000:
		return 50
	default:
		return 25
	}
}

// Summary is the performance rollup for a trailing window.
type Summary struct {
	TotalRequests     int         `json:"total_requests"`
	AvgResponseTime   float64     `json:"avg_response_time"`
	MinResponseTime   float64     `json:"min_response_time"`
	MaxResponseTime   float64     `json:"max_response_time"`
	ErrorRate         float64     `json:"error_rate"`
	CacheStats        cache.Stats `json:"cache_stats"`
	OptimizationScore float64     `json:"optimization_score"`
	WindowHours       float64     `json:"window_hours"`
	GeneratedAt       time.Time   `json:"generated_at"`
}

// PerformanceSummary aggregates response-time points in the window. Each
// api_response_time point counts as one observed request; error_rate is the
// mean of api_errors points, not a count.
func (a *Aggregator) PerformanceSummary(ctx context.Context, orgID string, window time.Duration) (*Summary, error) {
	if window <= 0 {
		window = DefaultSummaryWindow
	}

	cacheKey := fmt.Sprintf("perf:summary:%s:%d", orgID, int(window.Hours()))
	if cached, err := a.cache.Get(ctx, cacheKey); err == nil {
		var summary Summary
		if err := json.Unmarshal(cached, &summary); err == nil {
			return &summary, nil
		}
	}

	since := time.Now().Add(-window)
	responseTimes, err := a.source.MetricValues("api_response_time", orgID, since)
	if err != nil {
		return nil, err
	}

	summary := &Summary{
		TotalRequests: len(responseTimes),
		WindowHours:   window.Hours(),
		GeneratedAt:   time.Now(),
		CacheStats:    a.cache.Stats(),
	}

	if len(responseTimes) > 0 {
		summary.AvgResponseTime = stat.Mean(responseTimes, nil)
		summary.MinResponseTime = floats.Min(responseTimes)
		summary.MaxResponseTime = floats.Max(responseTimes)
		summary.OptimizationScore = scoreForResponseTime(summary.AvgResponseTime)
	} else {
		summary.OptimizationScore = NeutralScore
	}

	if errorValues, err := a.source.MetricValues("api_errors", orgID, since); err == nil && len(errorValues) > 0 {
		summary.ErrorRate = stat.Mean(errorValues, nil)
	}

	if data, err := json.Marshal(summary); err == nil {
		if err := a.cache.Set(ctx, cacheKey, data, a.cacheTTL); err != nil {
			logger.Warn("failed to cache performance summary", zap.Error(err))
		}
	}

	return summary, nil
}
