package sla

import (
	"time"

	"gatewaymon/internal/logger"
	"gatewaymon/internal/models"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat"
)

// SLA names evaluated per period.
const (
	NameUptime       = "gateway_uptime"
	NameResponseTime = "gateway_response_time"
)

// atRiskMargin is the band (in percentage points of compliance) counted as
// at_risk rather than non_compliant.
const atRiskMargin = 0.5

// Source is the persistence the tracker needs.
type Source interface {
	SnapshotsInWindow(orgID string, since, until time.Time) ([]models.HealthSnapshot, error)
	MetricValues(name, orgID string, since time.Time) ([]float64, error)
	InsertSLAMetric(metric *models.SLAMetric) error
	ListSLAMetrics(orgID string, limit int) ([]models.SLAMetric, error)
}

// ThresholdSource serves the per-organization SLA targets.
type ThresholdSource interface {
	Get(orgID string) (*models.ThresholdConfig, error)
}

// Tracker evaluates SLA compliance per period from stored snapshots and
// metric points. Each closed period produces immutable SLAMetric rows.
type Tracker struct {
	source     Source
	thresholds ThresholdSource
}

func NewTracker(source Source, thresholds ThresholdSource) *Tracker {
	return &Tracker{source: source, thresholds: thresholds}
}

// EvaluatePeriod closes an SLA period for the organization, recording one
// SLAMetric per tracked SLA.
func (t *Tracker) EvaluatePeriod(orgID string, periodStart, periodEnd time.Time, periodName string) ([]models.SLAMetric, error) {
	cfg, err := t.thresholds.Get(orgID)
	if err != nil {
		return nil, err
	}

	results := make([]models.SLAMetric, 0, 2)

	if uptimeMetric, err := t.evaluateUptime(orgID, periodStart, periodEnd, periodName, cfg); err == nil {
		results = append(results, *uptimeMetric)
	} else {
		logger.Warn("uptime sla evaluation failed",
			zap.String("organization_id", orgID), zap.Error(err))
	}

	if responseMetric, err := t.evaluateResponseTime(orgID, periodStart, periodEnd, periodName, cfg); err == nil {
		results = append(results, *responseMetric)
	} else {
		logger.Warn("response time sla evaluation failed",
			zap.String("organization_id", orgID), zap.Error(err))
	}

	for i := range results {
		if err := t.source.InsertSLAMetric(&results[i]); err != nil {
			return nil, err
		}
	}

	return results, nil
}

// evaluateUptime treats every snapshot that is not critical or error-tagged
// as "up" for the period.
func (t *Tracker) evaluateUptime(orgID string, start, end time.Time, period string, cfg *models.ThresholdConfig) (*models.SLAMetric, error) {
	snapshots, err := t.source.SnapshotsInWindow(orgID, start, end)
	if err != nil {
		return nil, err
	}

	uptime := 100.0
	if len(snapshots) > 0 {
		up := 0
		for _, s := range snapshots {
			if s.Status != models.StatusCritical && s.Status != models.StatusError {
				up++
			}
		}
		uptime = float64(up) / float64(len(snapshots)) * 100
	}

	compliance := compliancePct(uptime, cfg.UptimeTarget)

	return &models.SLAMetric{
		SLAName:              NameUptime,
		SLATarget:            cfg.UptimeTarget,
		SLAPeriod:            period,
		CurrentValue:         uptime,
		CompliancePercentage: compliance,
		Status:               statusFor(compliance),
		PeriodStart:          start,
		PeriodEnd:            end,
		RecordedAt:           time.Now(),
		OrganizationID:       orgID,
	}, nil
}

// evaluateResponseTime compares the period's mean api_response_time against
// the configured target, where lower is better.
func (t *Tracker) evaluateResponseTime(orgID string, start, end time.Time, period string, cfg *models.ThresholdConfig) (*models.SLAMetric, error) {
	values, err := t.source.MetricValues("api_response_time", orgID, start)
	if err != nil {
		return nil, err
	}

	current := cfg.ResponseTimeTarget // no traffic counts as on-target
	if len(values) > 0 {
		current = stat.Mean(values, nil)
	}

	compliance := 100.0
	if current > cfg.ResponseTimeTarget && current > 0 {
		compliance = cfg.ResponseTimeTarget / current * 100
	}

	return &models.SLAMetric{
		SLAName:              NameResponseTime,
		SLATarget:            cfg.ResponseTimeTarget,
		SLAPeriod:            period,
		CurrentValue:         current,
		CompliancePercentage: compliance,
		Status:               statusFor(compliance),
		PeriodStart:          start,
		PeriodEnd:            end,
		RecordedAt:           time.Now(),
		OrganizationID:       orgID,
	}, nil
}

func compliancePct(current, target float64) float64 {
	if target <= 0 || current >= target {
		return 100
	}
	return current / target * 100
}

func statusFor(compliance float64) string {
	switch {
	case compliance >= 100:
		return models.SLACompliant
	case compliance >= 100-atRiskMargin:
		return models.SLAAtRisk
	default:
		return models.SLANonCompliant
	}
}

// Recent returns the latest recorded SLA periods for an organization.
func (t *Tracker) Recent(orgID string, limit int) ([]models.SLAMetric, error) {
	return t.source.ListSLAMetrics(orgID, limit)
}
