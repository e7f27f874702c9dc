package store

import (
	"errors"
	"time"

	"gatewaymon/internal/models"
	"gatewaymon/internal/monitorerr"

	"gorm.io/gorm"
)

// Store is the persistence collaborator for the monitoring core. All methods
// map gorm.ErrRecordNotFound to monitorerr.ErrNotFound and any other driver
// failure to monitorerr.ErrStoreUnavailable so callers can retry correctly.
type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// SaveSnapshot appends a health snapshot.
func (s *Store) SaveSnapshot(snapshot *models.HealthSnapshot) error {
	if err := s.db.Create(snapshot).Error; err != nil {
		return monitorerr.StoreUnavailable("save snapshot", err)
	}
	return nil
}

// LatestSnapshot returns the most recent snapshot for an organization.
func (s *Store) LatestSnapshot(orgID string) (*models.HealthSnapshot, error) {
	var snapshot models.HealthSnapshot
	err := s.db.Where("organization_id = ?", orgID).
		Order("recorded_at DESC").
		First(&snapshot).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, monitorerr.NotFound("snapshot for organization", orgID)
		}
		return nil, monitorerr.StoreUnavailable("latest snapshot", err)
	}
	return &snapshot, nil
}

// SnapshotsInWindow returns snapshots recorded in [since, until).
func (s *Store) SnapshotsInWindow(orgID string, since, until time.Time) ([]models.HealthSnapshot, error) {
	var snapshots []models.HealthSnapshot
	err := s.db.Where("organization_id = ? AND recorded_at >= ? AND recorded_at < ?", orgID, since, until).
		Order("recorded_at ASC").
		Find(&snapshots).Error
	if err != nil {
		return nil, monitorerr.StoreUnavailable("snapshots in window", err)
	}
	return snapshots, nil
}

// InsertMetric appends a metric point.
func (s *Store) InsertMetric(point *models.MetricPoint) error {
	if err := s.db.Create(point).Error; err != nil {
		return monitorerr.StoreUnavailable("insert metric", err)
	}
	return nil
}

// MetricsInWindow returns all points for a metric name recorded since the
// given time, oldest first. An empty orgID matches every organization.
func (s *Store) MetricsInWindow(name, orgID string, since time.Time) ([]models.MetricPoint, error) {
	q := s.db.Where("metric_name = ? AND recorded_at >= ?", name, since)
	if orgID != "" {
		q = q.Where("organization_id = ?", orgID)
	}

	var points []models.MetricPoint
	if err := q.Order("recorded_at ASC").Find(&points).Error; err != nil {
		return nil, monitorerr.StoreUnavailable("metrics in window", err)
	}
	return points, nil
}

// MetricValues returns just the values for a metric name since the given time.
func (s *Store) MetricValues(name, orgID string, since time.Time) ([]float64, error) {
	points, err := s.MetricsInWindow(name, orgID, since)
	if err != nil {
		return nil, err
	}

	values := make([]float64, len(points))
	for i, p := range points {
		values[i] = p.Value
	}
	return values, nil
}

// LatestMetricValue returns the newest value for a metric name, or ErrNotFound
// when no point has been recorded.
func (s *Store) LatestMetricValue(name, orgID string) (float64, error) {
	q := s.db.Where("metric_name = ?", name)
	if orgID != "" {
		q = q.Where("organization_id = ?", orgID)
	}

	var point models.MetricPoint
	if err := q.Order("recorded_at DESC").First(&point).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, monitorerr.NotFound("metric", name)
		}
		return 0, monitorerr.StoreUnavailable("latest metric", err)
	}
	return point.Value, nil
}
