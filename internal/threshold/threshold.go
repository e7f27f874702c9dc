package threshold

import (
	"errors"
	"time"

	"gatewaymon/internal/models"
	"gatewaymon/internal/monitorerr"
)

// Default thresholds applied when an organization has no stored config.
const (
	DefaultCPUWarning           = 80.0
	DefaultCPUCritical          = 95.0
	DefaultMemoryWarning        = 80.0
	DefaultMemoryCritical       = 95.0
	DefaultResponseTimeWarning  = 1000.0 // ms
	DefaultResponseTimeCritical = 5000.0 // ms
	DefaultUptimeTarget         = 99.99  // percent
	DefaultResponseTimeTarget   = 100.0  // ms
)

// Store is the persistence needed by the manager.
type Store interface {
	GetThresholdConfig(orgID string) (*models.ThresholdConfig, error)
	SaveThresholdConfig(cfg *models.ThresholdConfig) error
}

// Manager serves per-organization threshold configuration, falling back to
// hard-coded defaults for organizations that never customized theirs.
type Manager struct {
	store Store
}

func NewManager(store Store) *Manager {
	return &Manager{store: store}
}

// Defaults returns the hard-coded default configuration for an organization.
func Defaults(orgID string) *models.ThresholdConfig {
	return &models.ThresholdConfig{
		OrganizationID:       orgID,
		CPUWarning:           DefaultCPUWarning,
		CPUCritical:          DefaultCPUCritical,
		MemoryWarning:        DefaultMemoryWarning,
		MemoryCritical:       DefaultMemoryCritical,
		ResponseTimeWarning:  DefaultResponseTimeWarning,
		ResponseTimeCritical: DefaultResponseTimeCritical,
		UptimeTarget:         DefaultUptimeTarget,
		ResponseTimeTarget:   DefaultResponseTimeTarget,
		EmailNotifications:   true,
	}
}

// Get returns the organization's config, or the defaults when none is stored.
func (m *Manager) Get(orgID string) (*models.ThresholdConfig, error) {
	cfg, err := m.store.GetThresholdConfig(orgID)
	if err != nil {
		if errors.Is(err, monitorerr.ErrNotFound) {
			return Defaults(orgID), nil
		}
		return nil, err
	}
	return cfg, nil
}

// UpdateRequest carries a partial threshold update. Nil fields are left
// untouched; fields not recognized by the JSON decoder are ignored rather
// than rejected.
type UpdateRequest struct {
	CPUWarning             *float64 `json:"cpu_warning,omitempty"`
	CPUCritical            *float64 `json:"cpu_critical,omitempty"`
	MemoryWarning          *float64 `json:"memory_warning,omitempty"`
	MemoryCritical         *float64 `json:"memory_critical,omitempty"`
	ResponseTimeWarning    *float64 `json:"response_time_warning,omitempty"`
	ResponseTimeCritical   *float64 `json:"response_time_critical,omitempty"`
	UptimeTarget           *float64 `json:"uptime_target,omitempty"`
	ResponseTimeTarget     *float64 `json:"response_time_target,omitempty"`
	EmailNotifications     *bool    `json:"email_notifications,omitempty"`
	WebhookNotifications   *bool    `json:"webhook_notifications,omitempty"`
	SlackNotifications     *bool    `json:"slack_notifications,omitempty"`
	NotificationRecipients *string  `json:"notification_recipients,omitempty"`
}

// Update merges the provided fields into the organization's config, creating
// one from the defaults if none exists yet.
func (m *Manager) Update(orgID string, req UpdateRequest) (*models.ThresholdConfig, error) {
	cfg, err := m.store.GetThresholdConfig(orgID)
	if err != nil {
		if !errors.Is(err, monitorerr.ErrNotFound) {
			return nil, err
		}
		cfg = Defaults(orgID)
	}

	applyUpdate(cfg, req)
	cfg.UpdatedAt = time.Now()

	if err := m.store.SaveThresholdConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyUpdate(cfg *models.ThresholdConfig, req UpdateRequest) {
	if req.CPUWarning != nil {
		cfg.CPUWarning = *req.CPUWarning
	}
	if req.CPUCritical != nil {
		cfg.CPUCritical = *req.CPUCritical
	}
	if req.MemoryWarning != nil {
		cfg.MemoryWarning = *req.MemoryWarning
	}
	if req.MemoryCritical != nil {
		cfg.MemoryCritical = *req.MemoryCritical
	}
	if req.ResponseTimeWarning != nil {
		cfg.ResponseTimeWarning = *req.ResponseTimeWarning
	}
	if req.ResponseTimeCritical != nil {
		cfg.ResponseTimeCritical = *req.ResponseTimeCritical
	}
	if req.UptimeTarget != nil {
		cfg.UptimeTarget = *req.UptimeTarget
	}
	if req.ResponseTimeTarget != nil {
		cfg.ResponseTimeTarget = *req.ResponseTimeTarget
	}
	if req.EmailNotifications != nil {
		cfg.EmailNotifications = *req.EmailNotifications
	}
	if req.WebhookNotifications != nil {
		cfg.WebhookNotifications = *req.WebhookNotifications
	}
	if req.SlackNotifications != nil {
		cfg.SlackNotifications = *req.SlackNotifications
	}
	if req.NotificationRecipients != nil {
		cfg.NotificationRecipients = *req.NotificationRecipients
	}
}
