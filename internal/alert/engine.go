package alert

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"gatewaymon/internal/logger"
	"gatewaymon/internal/metrics"
	"gatewaymon/internal/models"
	"gatewaymon/internal/monitorerr"

	"go.uber.org/zap"
)

// Alert types raised by threshold evaluation.
const (
	TypeCPU          = "cpu_usage"
	TypeMemory       = "memory_usage"
	TypeResponseTime = "response_time"
)

// SourceSampler marks alerts raised by the health sampler.
const SourceSampler = "health_sampler"

// DefaultChannels is applied to newly created alerts.
const DefaultChannels = "email"

// Store is the persistence the engine needs for alert dedup and lifecycle.
type Store interface {
	FindActiveAlert(alertType, severity, source, orgID string) (*models.Alert, error)
	CreateAlert(alert *models.Alert) error
	SaveAlert(alert *models.Alert) error
	GetAlert(id uint, orgID string) (*models.Alert, error)
}

// Notifier delivers an alert over one channel. Delivery is best effort.
type Notifier interface {
	Send(title, message string) error
}

// Indexer receives newly raised alerts for secondary indexing, best effort.
type Indexer interface {
	IndexAlert(alert *models.Alert) error
}

// Engine evaluates health snapshots against threshold configuration and
// drives the alert lifecycle. The find-active-then-update-or-insert step runs
// under a per-organization lock so concurrent evaluations never create
// duplicate active alerts for the same dedup key.
type Engine struct {
	store     Store
	notifiers []Notifier

	locks   map[string]*sync.Mutex
	locksMu sync.Mutex

	// Optional async secondary indexing.
	indexBuffer chan *models.Alert
}

func NewEngine(store Store, notifiers []Notifier) *Engine {
	return &Engine{
		store:     store,
		notifiers: notifiers,
		locks:     make(map[string]*sync.Mutex),
	}
}

// StartIndexing attaches an indexer fed from a buffered channel so slow
// secondary writes never block alert evaluation.
func (e *Engine) StartIndexing(indexer Indexer) {
	e.indexBuffer = make(chan *models.Alert, 500)
	go func() {
		for a := range e.indexBuffer {
			if err := indexer.IndexAlert(a); err != nil {
				logger.Error("failed to index alert", zap.Error(err))
			}
		}
	}()
}

func (e *Engine) enqueueIndex(a *models.Alert) {
	if e.indexBuffer == nil {
		return
	}
	select {
	case e.indexBuffer <- a:
	default:
		logger.Warn("index buffer full, dropping alert",
			zap.String("alert_type", a.AlertType),
			zap.String("organization_id", a.OrganizationID))
	}
}

func (e *Engine) orgLock(orgID string) *sync.Mutex {
	e.locksMu.Lock()
	defer e.locksMu.Unlock()

	lock, ok := e.locks[orgID]
	if !ok {
		lock = &sync.Mutex{}
		e.locks[orgID] = lock
	}
	return lock
}

// familyCheck is one independent metric family with its two-tier thresholds.
type familyCheck struct {
	alertType  string
	metricName string
	value      float64
	unit       string
	warning    float64
	critical   float64
}

// Evaluate applies the two-tier threshold check to cpu, memory and response
// time independently. The families have no ordering dependency; each may
// raise its own alert in the same cycle.
func (e *Engine) Evaluate(snapshot *models.HealthSnapshot, cfg *models.ThresholdConfig) error {
	orgID := snapshot.OrganizationID

	families := []familyCheck{
		{
			alertType:  TypeCPU,
			metricName: "cpu_usage",
			value:      snapshot.CPUUsage,
			unit:       "%",
			warning:    cfg.CPUWarning,
			critical:   cfg.CPUCritical,
		},
		{
			alertType:  TypeMemory,
			metricName: "memory_usage",
			value:      snapshot.MemoryUsage,
			unit:       "%",
			warning:    cfg.MemoryWarning,
			critical:   cfg.MemoryCritical,
		},
		{
			alertType:  TypeResponseTime,
			metricName: "api_response_time",
			value:      snapshot.ResponseTime,
			unit:       "ms",
			warning:    cfg.ResponseTimeWarning,
			critical:   cfg.ResponseTimeCritical,
		},
	}

	lock := e.orgLock(orgID)
	lock.Lock()
	defer lock.Unlock()

	var firstErr error
	for _, family := range families {
		var severity string
		var threshold float64
		switch {
		case family.value > family.critical:
			severity = models.SeverityCritical
			threshold = family.critical
		case family.value > family.warning:
			severity = models.SeverityWarning
			threshold = family.warning
		default:
			continue
		}

		if err := e.raise(family, severity, threshold, orgID); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	return firstErr
}

// raise updates the existing active alert for the dedup key in place, or
// creates a new one and attempts notification delivery. Repeat breaches never
// re-send notifications.
func (e *Engine) raise(family familyCheck, severity string, threshold float64, orgID string) error {
	title := fmt.Sprintf("%s %s threshold exceeded", family.alertType, severity)
	message := fmt.Sprintf("%s is %.1f%s, exceeding the %s threshold of %.1f%s",
		family.metricName, family.value, family.unit, severity, threshold, family.unit)

	existing, err := e.store.FindActiveAlert(family.alertType, severity, SourceSampler, orgID)
	if err == nil {
		existing.CurrentValue = family.value
		existing.Message = message
		existing.UpdatedAt = time.Now()
		return e.store.SaveAlert(existing)
	}
	if !errors.Is(err, monitorerr.ErrNotFound) {
		return err
	}

	newAlert := &models.Alert{
		AlertType:            family.alertType,
		Severity:             severity,
		Title:                title,
		Message:              message,
		Status:               models.AlertStatusActive,
		Source:               SourceSampler,
		MetricName:           family.metricName,
		ThresholdValue:       threshold,
		CurrentValue:         family.value,
		NotificationChannels: DefaultChannels,
		OrganizationID:       orgID,
		CreatedAt:            time.Now(),
		UpdatedAt:            time.Now(),
	}
	if err := e.store.CreateAlert(newAlert); err != nil {
		return err
	}

	if sent := e.notify(title, message); sent {
		newAlert.NotificationSent = true
		if err := e.store.SaveAlert(newAlert); err != nil {
			logger.Error("failed to record notification flag", zap.Error(err))
		}
	}
	e.enqueueIndex(newAlert)

	metrics.AlertsRaised.WithLabelValues(family.alertType, severity).Inc()
	logger.Warn("alert raised",
		zap.String("alert_type", family.alertType),
		zap.String("severity", severity),
		zap.String("organization_id", orgID),
		zap.Float64("current_value", family.value),
		zap.Float64("threshold", threshold),
	)

	return nil
}

// notify fans out to every configured channel. Failures are logged and
// reflected in the returned flag, never propagated to the caller.
func (e *Engine) notify(title, message string) bool {
	if len(e.notifiers) == 0 {
		return false
	}

	sent := false
	for _, notifier := range e.notifiers {
		if err := notifier.Send(title, message); err != nil {
			metrics.NotificationFailures.Inc()
			logger.Error("failed to send alert notification", zap.Error(err))
			continue
		}
		sent = true
	}
	return sent
}

// Acknowledge marks an active alert as acknowledged by the given actor.
// Alerts that do not exist for the caller's organization, or are no longer
// active, report NotFound.
func (e *Engine) Acknowledge(id uint, orgID, actorID string) (*models.Alert, error) {
	lock := e.orgLock(orgID)
	lock.Lock()
	defer lock.Unlock()

	a, err := e.store.GetAlert(id, orgID)
	if err != nil {
		return nil, err
	}
	if a.Status != models.AlertStatusActive {
		return nil, monitorerr.NotFound("active alert", id)
	}

	now := time.Now()
	a.Status = models.AlertStatusAcknowledged
	a.AcknowledgedBy = actorID
	a.AcknowledgedAt = &now
	a.UpdatedAt = now

	if err := e.store.SaveAlert(a); err != nil {
		return nil, err
	}
	return a, nil
}

// Resolve moves an alert to the resolved state. Valid from active or
// acknowledged; a row that is already resolved cannot be located as a
// resolvable alert and reports NotFound, leaving resolved_at untouched.
func (e *Engine) Resolve(id uint, orgID string) (*models.Alert, error) {
	lock := e.orgLock(orgID)
	lock.Lock()
	defer lock.Unlock()

	a, err := e.store.GetAlert(id, orgID)
	if err != nil {
		return nil, err
	}
	if a.Status != models.AlertStatusActive && a.Status != models.AlertStatusAcknowledged {
		return nil, monitorerr.NotFound("resolvable alert", id)
	}

	now := time.Now()
	a.Status = models.AlertStatusResolved
	a.ResolvedAt = &now
	a.UpdatedAt = now

	if err := e.store.SaveAlert(a); err != nil {
		return nil, err
	}

	metrics.AlertsResolved.Inc()
	return a, nil
}
