package server

import (
	"fmt"
	"net/http"

	"gatewaymon/internal/config"

	"github.com/gin-gonic/gin"
)

// GetConfigResponse wraps the running configuration.
type GetConfigResponse struct {
	Config *config.Config `json:"config"`
}

// UpdateConfigRequest replaces the persisted configuration.
type UpdateConfigRequest struct {
	Config *config.Config `json:"config" binding:"required"`
}

func (s *Server) getConfig(c *gin.Context) {
	c.JSON(http.StatusOK, GetConfigResponse{
		Config: s.config,
	})
}

func (s *Server) updateConfig(c *gin.Context) {
	var req UpdateConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := req.Config.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if s.configPath == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Service was started without a config file; set one to persist changes"})
		return
	}

	if err := config.SaveToFile(s.configPath, req.Config); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("Failed to save config: %v", err)})
		return
	}

	s.config = req.Config

	c.JSON(http.StatusOK, gin.H{
		"message": "Configuration updated successfully. Please restart the service for changes to take effect.",
		"config":  s.config,
	})
}
