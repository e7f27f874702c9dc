package store

import (
	"errors"

	"gatewaymon/internal/models"
	"gatewaymon/internal/monitorerr"

	"gorm.io/gorm"
)

// InsertSLAMetric records a closed SLA evaluation period.
func (s *Store) InsertSLAMetric(metric *models.SLAMetric) error {
	if err := s.db.Create(metric).Error; err != nil {
		return monitorerr.StoreUnavailable("insert sla metric", err)
	}
	return nil
}

// ListSLAMetrics returns recent SLA periods for an organization, newest first.
func (s *Store) ListSLAMetrics(orgID string, limit int) ([]models.SLAMetric, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}

	var metrics []models.SLAMetric
	err := s.db.Where("organization_id = ?", orgID).
		Order("period_end DESC").
		Limit(limit).
		Find(&metrics).Error
	if err != nil {
		return nil, monitorerr.StoreUnavailable("list sla metrics", err)
	}
	return metrics, nil
}

// CreateIncident inserts a new incident.
func (s *Store) CreateIncident(incident *models.Incident) error {
	if err := s.db.Create(incident).Error; err != nil {
		return monitorerr.StoreUnavailable("create incident", err)
	}
	return nil
}

// GetIncident fetches an incident by id scoped to an organization.
func (s *Store) GetIncident(id, orgID string) (*models.Incident, error) {
	var incident models.Incident
	err := s.db.Where("id = ? AND organization_id = ?", id, orgID).First(&incident).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, monitorerr.NotFound("incident", id)
		}
		return nil, monitorerr.StoreUnavailable("get incident", err)
	}
	return &incident, nil
}

// SaveIncident persists changes to an incident.
func (s *Store) SaveIncident(incident *models.Incident) error {
	if err := s.db.Save(incident).Error; err != nil {
		return monitorerr.StoreUnavailable("save incident", err)
	}
	return nil
}

// ListIncidents returns incidents for an organization, newest first. An empty
// status matches every state.
func (s *Store) ListIncidents(orgID, status string, limit int) ([]models.Incident, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}

	q := s.db.Where("organization_id = ?", orgID)
	if status != "" {
		q = q.Where("status = ?", status)
	}

	var incidents []models.Incident
	err := q.Order("detected_at DESC").Limit(limit).Find(&incidents).Error
	if err != nil {
		return nil, monitorerr.StoreUnavailable("list incidents", err)
	}
	return incidents, nil
}
