package server

import (
	"net/http"

	"gatewaymon/internal/scaling"

	"github.com/gin-gonic/gin"
)

func (s *Server) scalingStatus(c *gin.Context) {
	c.JSON(http.StatusOK, s.deps.Advisor.Status())
}

func (s *Server) scalingHistory(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"events": s.deps.Advisor.History()})
}

type AnalyzeScalingRequest struct {
	OrganizationID string           `json:"organization_id"`
	Metrics        *scaling.Metrics `json:"metrics,omitempty"`
}

// analyzeScaling evaluates scaling rules against the supplied metrics, or
// against the organization's latest snapshot when none are given.
func (s *Server) analyzeScaling(c *gin.Context) {
	var req AnalyzeScalingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	metrics := req.Metrics
	if metrics == nil {
		snapshot, err := s.deps.Store.LatestSnapshot(req.OrganizationID)
		if err != nil {
			s.respondError(c, err)
			return
		}
		metrics = &scaling.Metrics{
			CPUUsage:        snapshot.CPUUsage,
			MemoryUsage:     snapshot.MemoryUsage,
			ResponseTime:    snapshot.ResponseTime,
			ConcurrentUsers: float64(snapshot.ActiveConnections),
		}
	}

	recommendations := s.deps.Advisor.Analyze(*metrics)

	c.JSON(http.StatusOK, gin.H{
		"metrics":         metrics,
		"recommendations": recommendations,
		"history":         s.deps.Advisor.History(),
		"status":          s.deps.Advisor.Status(),
	})
}

type SetScalingThresholdsRequest struct {
	Thresholds map[string]float64 `json:"thresholds" binding:"required"`
}

func (s *Server) setScalingThresholds(c *gin.Context) {
	var req SetScalingThresholdsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	applied := s.deps.Advisor.SetThresholds(req.Thresholds)
	c.JSON(http.StatusOK, gin.H{"thresholds": applied})
}

type SimulateScalingRequest struct {
	EventType string `json:"event_type" binding:"required"`
	Instances int    `json:"instances"`
}

func (s *Server) simulateScaling(c *gin.Context) {
	var req SimulateScalingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	event, total := s.deps.Advisor.SimulateScalingEvent(req.EventType, req.Instances)

	c.JSON(http.StatusOK, gin.H{
		"event":             event,
		"current_instances": total,
	})
}

type ToggleAutoScalingRequest struct {
	Enabled bool `json:"enabled"`
}

func (s *Server) toggleAutoScaling(c *gin.Context) {
	var req ToggleAutoScalingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s.deps.Advisor.ToggleAutoScaling(req.Enabled)
	c.JSON(http.StatusOK, s.deps.Advisor.Status())
}
