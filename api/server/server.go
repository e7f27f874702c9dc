package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"gatewaymon/api/middleware"
	"gatewaymon/internal/alert"
	"gatewaymon/internal/cache"
	"gatewaymon/internal/config"
	"gatewaymon/internal/health"
	"gatewaymon/internal/logger"
	"gatewaymon/internal/monitorerr"
	"gatewaymon/internal/perf"
	"gatewaymon/internal/scaling"
	"gatewaymon/internal/sla"
	"gatewaymon/internal/store"
	"gatewaymon/internal/threshold"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Deps carries the services the HTTP layer exposes.
type Deps struct {
	Store      *store.Store
	Sampler    *health.Sampler
	Engine     *alert.Engine
	Thresholds *threshold.Manager
	Aggregator *perf.Aggregator
	Advisor    *scaling.Advisor
	SLA        *sla.Tracker
	Incidents  *sla.IncidentManager
	Cache      cache.Cache
}

type Server struct {
	router     *gin.Engine
	deps       Deps
	configPath string
	config     *config.Config
}

func NewServer(deps Deps, configPath string, cfg *config.Config) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.Default()

	// Set timeout for request processing (30 seconds)
	router.Use(func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	})

	server := &Server{
		router:     router,
		deps:       deps,
		configPath: configPath,
		config:     cfg,
	}

	if err := logger.InitSampleLog(cfg.Sampling.LogDir); err != nil {
		fmt.Printf("Warning: Failed to initialize sample log: %v\n", err)
	}

	server.setupRoutes()

	return server
}

func (s *Server) setupRoutes() {
	// Apply rate limiting to all API routes
	api := s.router.Group("/api/v1")
	api.Use(middleware.RateLimit())

	{
		// Health sampling - all using POST
		api.POST("/health/sample", s.collectSample)
		api.POST("/health/current", s.currentHealth)
		api.POST("/health/history", s.healthHistory)
		api.POST("/health/logs/search", s.searchSampleLogs)

		// Metrics - using POST
		api.POST("/metrics/record", s.recordMetric)
		api.POST("/metrics/query", s.queryMetrics)

		// Alerts - using POST
		api.POST("/alert/list", s.listAlerts)
		api.POST("/alert/acknowledge", s.acknowledgeAlert)
		api.POST("/alert/resolve", s.resolveAlert)

		// Threshold configuration - using POST
		api.POST("/threshold/get", s.getThresholds)
		api.POST("/threshold/update", s.updateThresholds)

		// Performance - using POST
		api.POST("/performance/summary", s.performanceSummary)
		api.POST("/performance/score", s.optimizationScore)
		api.POST("/performance/queries", s.queryReport)
		api.GET("/performance/cache", s.cacheStats)

		// Scaling - using POST and GET
		api.GET("/scaling/status", s.scalingStatus)
		api.GET("/scaling/history", s.scalingHistory)
		api.POST("/scaling/analyze", s.analyzeScaling)
		api.POST("/scaling/thresholds", s.setScalingThresholds)
		api.POST("/scaling/simulate", s.simulateScaling)
		api.POST("/scaling/autoscaling", s.toggleAutoScaling)

		// SLA - using POST
		api.POST("/sla/evaluate", s.evaluateSLA)
		api.POST("/sla/list", s.listSLAMetrics)

		// Incidents - using POST
		api.POST("/incident/create", s.createIncident)
		api.POST("/incident/get", s.getIncident)
		api.POST("/incident/status", s.updateIncidentStatus)
		api.POST("/incident/list", s.listIncidents)

		// System Configuration
		api.GET("/config", s.getConfig)
		api.POST("/config", s.updateConfig)
	}

	s.router.GET("/health", s.healthCheck)
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// respondError maps service errors onto HTTP status codes. Validation
// failures are the caller's fault; collection and store failures mean the
// subsystem cannot serve the request right now.
func (s *Server) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, monitorerr.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, monitorerr.ErrInvalidField):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, monitorerr.ErrCollectionFailed),
		errors.Is(err, monitorerr.ErrStoreUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

func (s *Server) Run(addr string) error {
	return s.router.Run(addr)
}
