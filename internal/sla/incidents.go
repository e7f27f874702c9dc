package sla

import (
	"fmt"
	"time"

	"gatewaymon/internal/models"
	"gatewaymon/internal/monitorerr"

	"github.com/google/uuid"
)

// statusRank orders incident states. Transitions must move forward; skipping
// ahead is allowed, moving backward is not (no reopen in this core).
var statusRank = map[string]int{
	models.IncidentOpen:          0,
	models.IncidentInvestigating: 1,
	models.IncidentResolved:      2,
	models.IncidentClosed:        3,
}

// IncidentStore is the persistence incidents need.
type IncidentStore interface {
	CreateIncident(incident *models.Incident) error
	GetIncident(id, orgID string) (*models.Incident, error)
	SaveIncident(incident *models.Incident) error
	ListIncidents(orgID, status string, limit int) ([]models.Incident, error)
}

// IncidentManager tracks service-impacting events through their lifecycle.
type IncidentManager struct {
	store IncidentStore
}

func NewIncidentManager(store IncidentStore) *IncidentManager {
	return &IncidentManager{store: store}
}

// CreateRequest carries the fields for a manually reported incident.
type CreateRequest struct {
	IncidentType     string `json:"incident_type"`
	Severity         string `json:"severity"`
	Title            string `json:"title"`
	Description      string `json:"description"`
	Priority         string `json:"priority"`
	AffectedServices string `json:"affected_services"`
	ImpactLevel      string `json:"impact_level"`
}

// Create opens a new incident.
func (m *IncidentManager) Create(orgID string, req CreateRequest) (*models.Incident, error) {
	if req.Title == "" {
		return nil, monitorerr.InvalidField("title", "is required")
	}
	if req.IncidentType == "" {
		return nil, monitorerr.InvalidField("incident_type", "is required")
	}

	now := time.Now()
	incident := &models.Incident{
		ID:               uuid.NewString(),
		IncidentType:     req.IncidentType,
		Severity:         defaultString(req.Severity, models.IncidentSeverityMedium),
		Title:            req.Title,
		Description:      req.Description,
		Status:           models.IncidentOpen,
		Priority:         defaultString(req.Priority, "medium"),
		AffectedServices: req.AffectedServices,
		ImpactLevel:      defaultString(req.ImpactLevel, "moderate"),
		DetectedAt:       now,
		UpdatedAt:        now,
		OrganizationID:   orgID,
	}

	if err := m.store.CreateIncident(incident); err != nil {
		return nil, err
	}
	return incident, nil
}

// StatusUpdate carries an incident lifecycle change.
type StatusUpdate struct {
	Status     string `json:"status"`
	RootCause  string `json:"root_cause,omitempty"`
	Resolution string `json:"resolution,omitempty"`
	ResolvedBy string `json:"resolved_by,omitempty"`
}

// UpdateStatus advances an incident. Moving to an earlier state is rejected
// as an invalid field, not silently accepted.
func (m *IncidentManager) UpdateStatus(id, orgID string, update StatusUpdate) (*models.Incident, error) {
	newRank, ok := statusRank[update.Status]
	if !ok {
		return nil, monitorerr.InvalidField("status", fmt.Sprintf("unknown value %q", update.Status))
	}

	incident, err := m.store.GetIncident(id, orgID)
	if err != nil {
		return nil, err
	}

	if newRank < statusRank[incident.Status] {
		return nil, monitorerr.InvalidField("status",
			fmt.Sprintf("cannot move from %s back to %s", incident.Status, update.Status))
	}

	incident.Status = update.Status
	incident.UpdatedAt = time.Now()
	if update.RootCause != "" {
		incident.RootCause = update.RootCause
	}
	if update.Resolution != "" {
		incident.Resolution = update.Resolution
	}
	if update.Status == models.IncidentResolved && incident.ResolvedAt == nil {
		now := time.Now()
		incident.ResolvedAt = &now
		incident.ResolvedBy = update.ResolvedBy
	}

	if err := m.store.SaveIncident(incident); err != nil {
		return nil, err
	}
	return incident, nil
}

// List returns incidents for an organization, optionally filtered by status.
func (m *IncidentManager) List(orgID, status string, limit int) ([]models.Incident, error) {
	return m.store.ListIncidents(orgID, status, limit)
}

func defaultString(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
