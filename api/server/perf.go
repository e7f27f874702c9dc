package server

import (
	"net/http"
	"time"

	"gatewaymon/internal/perf"

	"github.com/gin-gonic/gin"
)

type PerformanceRequest struct {
	OrganizationID string  `json:"organization_id"`
	Hours          float64 `json:"hours"`
}

func (r *PerformanceRequest) window() time.Duration {
	if r.Hours <= 0 {
		return perf.DefaultSummaryWindow
	}
	return time.Duration(r.Hours * float64(time.Hour))
}

func (s *Server) performanceSummary(c *gin.Context) {
	var req PerformanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	summary, err := s.deps.Aggregator.PerformanceSummary(c.Request.Context(), req.OrganizationID, req.window())
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

func (s *Server) optimizationScore(c *gin.Context) {
	var req PerformanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	score, err := s.deps.Aggregator.OptimizationScore(req.OrganizationID, req.window())
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"organization_id":    req.OrganizationID,
		"optimization_score": score,
	})
}

func (s *Server) queryReport(c *gin.Context) {
	var req PerformanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	report, err := s.deps.Aggregator.QueryOptimizationReport(req.OrganizationID, req.window())
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

func (s *Server) cacheStats(c *gin.Context) {
	stats := s.deps.Cache.Stats()
	c.JSON(http.StatusOK, gin.H{
		"hits":     stats.Hits,
		"misses":   stats.Misses,
		"entries":  stats.Entries,
		"hit_rate": stats.HitRate(),
	})
}
