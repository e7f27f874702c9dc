package server

import (
	"net/http"
	"time"

	"gatewaymon/internal/sla"

	"github.com/gin-gonic/gin"
)

type EvaluateSLARequest struct {
	OrganizationID string  `json:"organization_id"`
	Hours          float64 `json:"hours"`
	Period         string  `json:"period,omitempty"` // hourly, daily, monthly
}

func (s *Server) evaluateSLA(c *gin.Context) {
	var req EvaluateSLARequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Hours <= 0 {
		req.Hours = 24
	}
	if req.Period == "" {
		req.Period = "daily"
	}

	end := time.Now()
	start := end.Add(-time.Duration(req.Hours * float64(time.Hour)))

	metrics, err := s.deps.SLA.EvaluatePeriod(req.OrganizationID, start, end, req.Period)
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"metrics": metrics})
}

type ListSLARequest struct {
	OrganizationID string `json:"organization_id"`
	Limit          int    `json:"limit,omitempty"`
}

func (s *Server) listSLAMetrics(c *gin.Context) {
	var req ListSLARequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	metrics, err := s.deps.SLA.Recent(req.OrganizationID, req.Limit)
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"metrics": metrics, "total": len(metrics)})
}

type CreateIncidentRequest struct {
	OrganizationID string `json:"organization_id"`
	sla.CreateRequest
}

func (s *Server) createIncident(c *gin.Context) {
	var req CreateIncidentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	incident, err := s.deps.Incidents.Create(req.OrganizationID, req.CreateRequest)
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, incident)
}

type IncidentIDRequest struct {
	ID             string `json:"id" binding:"required"`
	OrganizationID string `json:"organization_id"`
}

func (s *Server) getIncident(c *gin.Context) {
	var req IncidentIDRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	incident, err := s.deps.Store.GetIncident(req.ID, req.OrganizationID)
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, incident)
}

type UpdateIncidentStatusRequest struct {
	ID             string `json:"id" binding:"required"`
	OrganizationID string `json:"organization_id"`
	sla.StatusUpdate
}

func (s *Server) updateIncidentStatus(c *gin.Context) {
	var req UpdateIncidentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	incident, err := s.deps.Incidents.UpdateStatus(req.ID, req.OrganizationID, req.StatusUpdate)
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, incident)
}

type ListIncidentsRequest struct {
	OrganizationID string `json:"organization_id"`
	Status         string `json:"status,omitempty"`
	Limit          int    `json:"limit,omitempty"`
}

func (s *Server) listIncidents(c *gin.Context) {
	var req ListIncidentsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	incidents, err := s.deps.Incidents.List(req.OrganizationID, req.Status, req.Limit)
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"incidents": incidents, "total": len(incidents)})
}
