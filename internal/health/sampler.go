package health

import (
	"fmt"
	"time"

	"gatewaymon/internal/logger"
	"gatewaymon/internal/metrics"
	"gatewaymon/internal/models"
	"gatewaymon/internal/monitorerr"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat"
)

// Defaults used when a derived metric has no recent data points. Partial
// source failures are recovered with these values rather than failing the
// collection cycle.
const (
	DefaultResponseTime   = 100.0 // ms
	DefaultErrorRate      = 0.0   // percent
	DefaultThroughput     = 10.0  // requests per second
	DefaultNetworkLatency = 5.0   // ms
)

// Trailing windows for derived metrics.
const (
	responseWindow   = 5 * time.Minute
	throughputWindow = 1 * time.Minute
)

// MetricSource is the slice of the store the sampler reads and writes.
type MetricSource interface {
	MetricValues(name, orgID string, since time.Time) ([]float64, error)
	LatestMetricValue(name, orgID string) (float64, error)
	SaveSnapshot(snapshot *models.HealthSnapshot) error
}

// Evaluator turns a snapshot into alerts. Implemented by alert.Engine.
type Evaluator interface {
	Evaluate(snapshot *models.HealthSnapshot, cfg *models.ThresholdConfig) error
}

// ThresholdSource serves the evaluation thresholds for an organization.
type ThresholdSource interface {
	Get(orgID string) (*models.ThresholdConfig, error)
}

// Indexer receives snapshots for secondary indexing, best effort.
type Indexer interface {
	IndexSnapshot(snapshot *models.HealthSnapshot) error
}

// Sampler gathers point-in-time health snapshots. Host and store reads happen
// without holding any lock; alert dedup locking is the engine's concern.
type Sampler struct {
	host       HostReader
	source     MetricSource
	engine     Evaluator
	thresholds ThresholdSource

	logDir string

	// Optional async secondary indexing.
	indexBuffer chan *models.HealthSnapshot
}

func NewSampler(host HostReader, source MetricSource, engine Evaluator, thresholds ThresholdSource, logDir string) *Sampler {
	return &Sampler{
		host:       host,
		source:     source,
		engine:     engine,
		thresholds: thresholds,
		logDir:     logDir,
	}
}

// StartIndexing attaches an indexer fed from a buffered channel so slow
// secondary writes never block the collection cycle.
func (s *Sampler) StartIndexing(indexer Indexer) {
	s.indexBuffer = make(chan *models.HealthSnapshot, 500)
	go func() {
		for snapshot := range s.indexBuffer {
			if err := indexer.IndexSnapshot(snapshot); err != nil {
				logger.Error("failed to index snapshot", zap.Error(err))
			}
		}
	}()
}

// Sample collects a health snapshot for the organization, persists it, and
// hands it to the alert engine. Partial source failures degrade to documented
// defaults; only a total host collection failure produces an error-tagged
// snapshot and ErrCollectionFailed.
func (s *Sampler) Sample(orgID string) (*models.HealthSnapshot, error) {
	now := time.Now()
	snapshot := &models.HealthSnapshot{
		OrganizationID: orgID,
		RecordedAt:     now,
	}

	cpuUsage, cpuErr := s.host.CPUPercent()
	memUsage, memErr := s.host.MemoryPercent()
	diskUsage, diskErr := s.host.DiskPercent()

	if cpuErr != nil && memErr != nil && diskErr != nil {
		snapshot.Status = models.StatusError
		metrics.SamplesCollected.WithLabelValues(models.StatusError).Inc()
		if err := s.source.SaveSnapshot(snapshot); err != nil {
			logger.Error("failed to save error snapshot", zap.Error(err))
		}
		return snapshot, fmt.Errorf("all host metric sources unavailable: %w", monitorerr.ErrCollectionFailed)
	}

	snapshot.CPUUsage = cpuUsage
	snapshot.MemoryUsage = memUsage
	snapshot.DiskUsage = diskUsage

	if uptime, err := s.host.UptimeSeconds(); err == nil {
		snapshot.UptimeSeconds = uptime
	}

	snapshot.ResponseTime = s.meanMetric("api_response_time", orgID, now.Add(-responseWindow), DefaultResponseTime)
	snapshot.ErrorRate = s.errorRate(orgID, now.Add(-responseWindow))
	snapshot.Throughput = s.meanMetric("requests_per_second", orgID, now.Add(-throughputWindow), DefaultThroughput)
	snapshot.NetworkLatency = s.meanMetric("network_latency", orgID, now.Add(-responseWindow), DefaultNetworkLatency)

	if conns, err := s.source.LatestMetricValue("active_connections", orgID); err == nil {
		snapshot.ActiveConnections = int(conns)
	}

	snapshot.Status = deriveStatus(snapshot.CPUUsage, snapshot.MemoryUsage, snapshot.DiskUsage)

	if err := s.source.SaveSnapshot(snapshot); err != nil {
		return nil, err
	}

	cfg, err := s.thresholds.Get(orgID)
	if err != nil {
		logger.Error("failed to load thresholds, skipping evaluation",
			zap.String("organization_id", orgID), zap.Error(err))
	} else if err := s.engine.Evaluate(snapshot, cfg); err != nil {
		logger.Error("alert evaluation failed",
			zap.String("organization_id", orgID), zap.Error(err))
	}

	metrics.SamplesCollected.WithLabelValues(snapshot.Status).Inc()
	s.writeSampleLog(snapshot)

	if s.indexBuffer != nil {
		select {
		case s.indexBuffer <- snapshot:
		default:
			logger.Warn("index buffer full, dropping snapshot",
				zap.String("organization_id", orgID))
		}
	}

	return snapshot, nil
}

// deriveStatus applies the fixed tie-break: highest severity wins.
func deriveStatus(cpu, mem, disk float64) string {
	switch {
	case cpu > 95 || mem > 95 || disk > 95:
		return models.StatusCritical
	case cpu > 80 || mem > 80 || disk > 80:
		return models.StatusWarning
	default:
		return models.StatusHealthy
	}
}

// meanMetric returns the arithmetic mean of recent points, or the default
// when the window is empty or the store read fails.
func (s *Sampler) meanMetric(name, orgID string, since time.Time, fallback float64) float64 {
	values, err := s.source.MetricValues(name, orgID, since)
	if err != nil || len(values) == 0 {
		return fallback
	}
	return stat.Mean(values, nil)
}

// errorRate sums recent api_errors points, capped at 100.
func (s *Sampler) errorRate(orgID string, since time.Time) float64 {
	values, err := s.source.MetricValues("api_errors", orgID, since)
	if err != nil || len(values) == 0 {
		return DefaultErrorRate
	}

	sum := 0.0
	for _, v := range values {
		sum += v
	}
	if sum > 100 {
		return 100
	}
	return sum
}

func (s *Sampler) writeSampleLog(snapshot *models.HealthSnapshot) {
	if s.logDir == "" {
		return
	}

	entry := &logger.SampleLogEntry{
		Timestamp:      snapshot.RecordedAt,
		OrganizationID: snapshot.OrganizationID,
		Status:         snapshot.Status,
		CPUUsage:       snapshot.CPUUsage,
		MemoryUsage:    snapshot.MemoryUsage,
		DiskUsage:      snapshot.DiskUsage,
		ResponseTime:   snapshot.ResponseTime,
		ErrorRate:      snapshot.ErrorRate,
		Throughput:     snapshot.Throughput,
	}
	if err := logger.WriteSampleLog(s.logDir, entry); err != nil {
		logger.Warn("failed to write sample log", zap.Error(err))
	}
}
