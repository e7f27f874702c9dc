package store

import (
	"errors"

	"gatewaymon/internal/models"
	"gatewaymon/internal/monitorerr"

	"gorm.io/gorm"
)

// FindActiveAlert looks up the single active alert for a dedup key.
func (s *Store) FindActiveAlert(alertType, severity, source, orgID string) (*models.Alert, error) {
	var alert models.Alert
	err := s.db.Where(
		"alert_type = ? AND severity = ? AND source = ? AND organization_id = ? AND status = ?",
		alertType, severity, source, orgID, models.AlertStatusActive,
	).First(&alert).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, monitorerr.NotFound("active alert", alertType)
		}
		return nil, monitorerr.StoreUnavailable("find active alert", err)
	}
	return &alert, nil
}

// CreateAlert inserts a new alert row.
func (s *Store) CreateAlert(alert *models.Alert) error {
	if err := s.db.Create(alert).Error; err != nil {
		return monitorerr.StoreUnavailable("create alert", err)
	}
	return nil
}

// SaveAlert persists changes to an existing alert row.
func (s *Store) SaveAlert(alert *models.Alert) error {
	if err := s.db.Save(alert).Error; err != nil {
		return monitorerr.StoreUnavailable("save alert", err)
	}
	return nil
}

// GetAlert fetches an alert by id scoped to an organization.
func (s *Store) GetAlert(id uint, orgID string) (*models.Alert, error) {
	var alert models.Alert
	err := s.db.Where("id = ? AND organization_id = ?", id, orgID).First(&alert).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, monitorerr.NotFound("alert", id)
		}
		return nil, monitorerr.StoreUnavailable("get alert", err)
	}
	return &alert, nil
}

// AlertFilter narrows ListAlerts. Zero values match everything.
type AlertFilter struct {
	Status    string
	Severity  string
	AlertType string
	Limit     int
	Offset    int
}

// ListAlerts returns alerts for an organization, newest first. Limit is
// clamped to 100.
func (s *Store) ListAlerts(orgID string, filter AlertFilter) ([]models.Alert, error) {
	q := s.db.Where("organization_id = ?", orgID)
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Severity != "" {
		q = q.Where("severity = ?", filter.Severity)
	}
	if filter.AlertType != "" {
		q = q.Where("alert_type = ?", filter.AlertType)
	}

	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	var alerts []models.Alert
	err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&alerts).Error
	if err != nil {
		return nil, monitorerr.StoreUnavailable("list alerts", err)
	}
	return alerts, nil
}

// GetThresholdConfig returns the active threshold config for an organization.
func (s *Store) GetThresholdConfig(orgID string) (*models.ThresholdConfig, error) {
	var cfg models.ThresholdConfig
	err := s.db.Where("organization_id = ?", orgID).First(&cfg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, monitorerr.NotFound("threshold config for organization", orgID)
		}
		return nil, monitorerr.StoreUnavailable("get threshold config", err)
	}
	return &cfg, nil
}

// SaveThresholdConfig creates or updates the single config row for an
// organization. No history is kept.
func (s *Store) SaveThresholdConfig(cfg *models.ThresholdConfig) error {
	if err := s.db.Save(cfg).Error; err != nil {
		return monitorerr.StoreUnavailable("save threshold config", err)
	}
	return nil
}
