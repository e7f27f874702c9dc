package server

import (
	"net/http"

	"gatewaymon/internal/store"
	"gatewaymon/internal/threshold"

	"github.com/gin-gonic/gin"
)

type ListAlertsRequest struct {
	OrganizationID string `json:"organization_id"`
	Status         string `json:"status,omitempty"`
	Severity       string `json:"severity,omitempty"`
	AlertType      string `json:"alert_type,omitempty"`
	Limit          int    `json:"limit,omitempty"`
	Offset         int    `json:"offset,omitempty"`
}

func (s *Server) listAlerts(c *gin.Context) {
	var req ListAlertsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Offset < 0 {
		req.Offset = 0
	}

	alerts, err := s.deps.Store.ListAlerts(req.OrganizationID, store.AlertFilter{
		Status:    req.Status,
		Severity:  req.Severity,
		AlertType: req.AlertType,
		Limit:     req.Limit,
		Offset:    req.Offset,
	})
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"alerts": convertAlerts(alerts), "total": len(alerts)})
}

type AcknowledgeAlertRequest struct {
	ID             uint   `json:"id" binding:"required"`
	OrganizationID string `json:"organization_id"`
	AcknowledgedBy string `json:"acknowledged_by" binding:"required"`
}

func (s *Server) acknowledgeAlert(c *gin.Context) {
	var req AcknowledgeAlertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated, err := s.deps.Engine.Acknowledge(req.ID, req.OrganizationID, req.AcknowledgedBy)
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, convertAlert(*updated))
}

type ResolveAlertRequest struct {
	ID             uint   `json:"id" binding:"required"`
	OrganizationID string `json:"organization_id"`
}

func (s *Server) resolveAlert(c *gin.Context) {
	var req ResolveAlertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated, err := s.deps.Engine.Resolve(req.ID, req.OrganizationID)
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, convertAlert(*updated))
}

func (s *Server) getThresholds(c *gin.Context) {
	var req OrgRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cfg, err := s.deps.Thresholds.Get(req.OrganizationID)
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, cfg)
}

type UpdateThresholdsRequest struct {
	OrganizationID string `json:"organization_id"`
	threshold.UpdateRequest
}

func (s *Server) updateThresholds(c *gin.Context) {
	var req UpdateThresholdsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cfg, err := s.deps.Thresholds.Update(req.OrganizationID, req.UpdateRequest)
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, cfg)
}
