package server

import (
	"net/http"
	"time"

	"gatewaymon/internal/logger"
	"gatewaymon/internal/metrics"
	"gatewaymon/internal/models"

	"github.com/gin-gonic/gin"
)

// OrgRequest identifies a tenant. The empty string addresses the shared
// gateway deployment itself.
type OrgRequest struct {
	OrganizationID string `json:"organization_id"`
}

func (s *Server) collectSample(c *gin.Context) {
	var req OrgRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	snapshot, err := s.deps.Sampler.Sample(req.OrganizationID)
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, snapshot)
}

func (s *Server) currentHealth(c *gin.Context) {
	var req OrgRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	snapshot, err := s.deps.Store.LatestSnapshot(req.OrganizationID)
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, snapshot)
}

type HealthHistoryRequest struct {
	OrganizationID string  `json:"organization_id"`
	Hours          float64 `json:"hours"`
}

func (s *Server) healthHistory(c *gin.Context) {
	var req HealthHistoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Hours <= 0 {
		req.Hours = 24
	}

	now := time.Now()
	since := now.Add(-time.Duration(req.Hours * float64(time.Hour)))

	snapshots, err := s.deps.Store.SnapshotsInWindow(req.OrganizationID, since, now)
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"snapshots": snapshots, "total": len(snapshots)})
}

type SampleLogSearchRequest struct {
	OrganizationID string `json:"organization_id,omitempty"`
	Status         string `json:"status,omitempty"`
	StartTime      *int64 `json:"start_time,omitempty"` // Unix timestamp
	EndTime        *int64 `json:"end_time,omitempty"`   // Unix timestamp
	Limit          int    `json:"limit,omitempty"`
	Offset         int    `json:"offset,omitempty"`
}

func (s *Server) searchSampleLogs(c *gin.Context) {
	var req SampleLogSearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	query := &logger.SampleQueryRequest{
		OrganizationID: req.OrganizationID,
		Status:         req.Status,
		Limit:          req.Limit,
		Offset:         req.Offset,
	}
	if req.StartTime != nil {
		t := time.Unix(*req.StartTime, 0)
		query.StartTime = &t
	}
	if req.EndTime != nil {
		t := time.Unix(*req.EndTime, 0)
		query.EndTime = &t
	}
	if query.Limit <= 0 {
		query.Limit = 100
	}

	result, err := logger.QuerySampleLogs(s.config.Sampling.LogDir, query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total": result.Total,
		"logs":  result.Logs,
	})
}

type RecordMetricRequest struct {
	MetricName     string   `json:"metric_name"`
	MetricType     string   `json:"metric_type"`
	Value          *float64 `json:"value"`
	Unit           string   `json:"unit"`
	Endpoint       string   `json:"endpoint,omitempty"`
	Method         string   `json:"method,omitempty"`
	UserID         string   `json:"user_id,omitempty"`
	OrganizationID string   `json:"organization_id,omitempty"`
}

func (s *Server) recordMetric(c *gin.Context) {
	var req RecordMetricRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	point, err := convertMetricRequest(req)
	if err != nil {
		s.respondError(c, err)
		return
	}

	if err := s.deps.Store.InsertMetric(point); err != nil {
		s.respondError(c, err)
		return
	}
	metrics.MetricPointsRecorded.Inc()

	c.JSON(http.StatusCreated, gin.H{
		"id":      point.ID,
		"message": "Metric recorded successfully",
	})
}

type QueryMetricsRequest struct {
	MetricName     string  `json:"metric_name" binding:"required"`
	OrganizationID string  `json:"organization_id"`
	Hours          float64 `json:"hours"`
}

func (s *Server) queryMetrics(c *gin.Context) {
	var req QueryMetricsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Hours <= 0 {
		req.Hours = 1
	}
	since := time.Now().Add(-time.Duration(req.Hours * float64(time.Hour)))

	points, err := s.deps.Store.MetricsInWindow(req.MetricName, req.OrganizationID, since)
	if err != nil {
		s.respondError(c, err)
		return
	}

	if points == nil {
		points = []models.MetricPoint{}
	}
	c.JSON(http.StatusOK, gin.H{"points": points, "total": len(points)})
}
