package sla

import (
	"testing"

	"gatewaymon/internal/models"
	"gatewaymon/internal/monitorerr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memIncidentStore struct {
	incidents map[string]*models.Incident
}

func newMemIncidentStore() *memIncidentStore {
	return &memIncidentStore{incidents: make(map[string]*models.Incident)}
}

func (s *memIncidentStore) CreateIncident(incident *models.Incident) error {
	copied := *incident
	s.incidents[incident.ID] = &copied
	return nil
}

func (s *memIncidentStore) GetIncident(id, orgID string) (*models.Incident, error) {
	incident, ok := s.incidents[id]
	if !ok || incident.OrganizationID != orgID {
		return nil, monitorerr.NotFound("incident", id)
	}
	copied := *incident
	return &copied, nil
}

func (s *memIncidentStore) SaveIncident(incident *models.Incident) error {
	copied := *incident
	s.incidents[incident.ID] = &copied
	return nil
}

func (s *memIncidentStore) ListIncidents(orgID, status string, limit int) ([]models.Incident, error) {
	var out []models.Incident
	for _, incident := range s.incidents {
		if incident.OrganizationID != orgID {
			continue
		}
		if status != "" && incident.Status != status {
			continue
		}
		out = append(out, *incident)
	}
	return out, nil
}

func TestCreateIncidentDefaults(t *testing.T) {
	manager := NewIncidentManager(newMemIncidentStore())

	incident, err := manager.Create("org-1", CreateRequest{
		IncidentType: "availability",
		Title:        "Gateway timeouts",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, incident.ID)
	assert.Equal(t, models.IncidentOpen, incident.Status)
	assert.Equal(t, models.IncidentSeverityMedium, incident.Severity)
	assert.Equal(t, "medium", incident.Priority)
	assert.Equal(t, "moderate", incident.ImpactLevel)
	assert.Equal(t, "org-1", incident.OrganizationID)
	assert.Nil(t, incident.ResolvedAt)
}

func TestCreateIncidentRequiresTitleAndType(t *testing.T) {
	manager := NewIncidentManager(newMemIncidentStore())

	_, err := manager.Create("org-1", CreateRequest{IncidentType: "availability"})
	assert.ErrorIs(t, err, monitorerr.ErrInvalidField)

	_, err = manager.Create("org-1", CreateRequest{Title: "Gateway timeouts"})
	assert.ErrorIs(t, err, monitorerr.ErrInvalidField)
}

func TestIncidentForwardTransitions(t *testing.T) {
	manager := NewIncidentManager(newMemIncidentStore())
	incident, err := manager.Create("org-1", CreateRequest{IncidentType: "availability", Title: "t"})
	require.NoError(t, err)

	updated, err := manager.UpdateStatus(incident.ID, "org-1", StatusUpdate{Status: models.IncidentInvestigating})
	require.NoError(t, err)
	assert.Equal(t, models.IncidentInvestigating, updated.Status)

	updated, err = manager.UpdateStatus(incident.ID, "org-1", StatusUpdate{
		Status:     models.IncidentResolved,
		Resolution: "restarted upstream pool",
		ResolvedBy: "user-3",
	})
	require.NoError(t, err)
	assert.Equal(t, models.IncidentResolved, updated.Status)
	require.NotNil(t, updated.ResolvedAt)
	assert.Equal(t, "user-3", updated.ResolvedBy)

	updated, err = manager.UpdateStatus(incident.ID, "org-1", StatusUpdate{Status: models.IncidentClosed})
	require.NoError(t, err)
	assert.Equal(t, models.IncidentClosed, updated.Status)
}

func TestIncidentSkippingAheadIsAllowed(t *testing.T) {
	manager := NewIncidentManager(newMemIncidentStore())
	incident, err := manager.Create("org-1", CreateRequest{IncidentType: "availability", Title: "t"})
	require.NoError(t, err)

	updated, err := manager.UpdateStatus(incident.ID, "org-1", StatusUpdate{Status: models.IncidentClosed})
	require.NoError(t, err)
	assert.Equal(t, models.IncidentClosed, updated.Status)
}

func TestIncidentBackwardTransitionRejected(t *testing.T) {
	manager := NewIncidentManager(newMemIncidentStore())
	incident, err := manager.Create("org-1", CreateRequest{IncidentType: "availability", Title: "t"})
	require.NoError(t, err)

	_, err = manager.UpdateStatus(incident.ID, "org-1", StatusUpdate{Status: models.IncidentResolved})
	require.NoError(t, err)

	_, err = manager.UpdateStatus(incident.ID, "org-1", StatusUpdate{Status: models.IncidentOpen})
	assert.ErrorIs(t, err, monitorerr.ErrInvalidField)
}

func TestIncidentUnknownStatusRejected(t *testing.T) {
	manager := NewIncidentManager(newMemIncidentStore())
	incident, err := manager.Create("org-1", CreateRequest{IncidentType: "availability", Title: "t"})
	require.NoError(t, err)

	_, err = manager.UpdateStatus(incident.ID, "org-1", StatusUpdate{Status: "escalated"})
	assert.ErrorIs(t, err, monitorerr.ErrInvalidField)
}

func TestIncidentResolvedAtSetOnce(t *testing.T) {
	manager := NewIncidentManager(newMemIncidentStore())
	incident, err := manager.Create("org-1", CreateRequest{IncidentType: "availability", Title: "t"})
	require.NoError(t, err)

	resolved, err := manager.UpdateStatus(incident.ID, "org-1", StatusUpdate{Status: models.IncidentResolved, ResolvedBy: "user-1"})
	require.NoError(t, err)
	firstResolvedAt := *resolved.ResolvedAt

	closed, err := manager.UpdateStatus(incident.ID, "org-1", StatusUpdate{Status: models.IncidentClosed})
	require.NoError(t, err)
	assert.Equal(t, firstResolvedAt, *closed.ResolvedAt)
	assert.Equal(t, "user-1", closed.ResolvedBy)
}

func TestIncidentUnknownOrganizationReportsNotFound(t *testing.T) {
	manager := NewIncidentManager(newMemIncidentStore())
	incident, err := manager.Create("org-1", CreateRequest{IncidentType: "availability", Title: "t"})
	require.NoError(t, err)

	_, err = manager.UpdateStatus(incident.ID, "org-2", StatusUpdate{Status: models.IncidentClosed})
	assert.ErrorIs(t, err, monitorerr.ErrNotFound)
}

func TestIncidentListFiltersByStatus(t *testing.T) {
	store := newMemIncidentStore()
	manager := NewIncidentManager(store)

	a, err := manager.Create("org-1", CreateRequest{IncidentType: "availability", Title: "a"})
	require.NoError(t, err)
	_, err = manager.Create("org-1", CreateRequest{IncidentType: "latency", Title: "b"})
	require.NoError(t, err)

	_, err = manager.UpdateStatus(a.ID, "org-1", StatusUpdate{Status: models.IncidentResolved})
	require.NoError(t, err)

	open, err := manager.List("org-1", models.IncidentOpen, 0)
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, "b", open[0].Title)
}
