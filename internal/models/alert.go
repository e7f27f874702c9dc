package models

import "time"

// Alert severity values.
const (
	SeverityInfo      = "info"
	SeverityWarning   = "warning"
	SeverityCritical  = "critical"
	SeverityEmergency = "emergency"
)

// Alert status values.
const (
	AlertStatusActive       = "active"
	AlertStatusAcknowledged = "acknowledged"
	AlertStatusResolved     = "resolved"
)

// Alert is a raised threshold breach. At most one active alert exists per
// (alert_type, severity, source, organization_id); repeated breaches update
// the existing row. Acknowledged and resolved rows are kept for audit.
type Alert struct {
	ID                   uint       `gorm:"primaryKey" json:"id"`
	AlertType            string     `gorm:"size:64;not null;index" json:"alert_type"`
	Severity             string     `gorm:"size:20;not null;index" json:"severity"` // info, warning, critical, emergency
	Title                string     `gorm:"size:255" json:"title"`
	Message              string     `gorm:"type:text" json:"message"`
	Status               string     `gorm:"size:20;not null;index;default:active" json:"status"` // active, acknowledged, resolved
	Source               string     `gorm:"size:64" json:"source"`
	MetricName           string     `gorm:"size:128" json:"metric_name"`
	ThresholdValue       float64    `json:"threshold_value"`
	CurrentValue         float64    `json:"current_value"`
	AcknowledgedBy       string     `gorm:"size:64" json:"acknowledged_by,omitempty"`
	AcknowledgedAt       *time.Time `json:"acknowledged_at,omitempty"`
	ResolvedAt           *time.Time `json:"resolved_at,omitempty"`
	NotificationSent     bool       `gorm:"default:false" json:"notification_sent"`
	NotificationChannels string     `gorm:"size:255" json:"notification_channels"` // comma-separated
	OrganizationID       string     `gorm:"size:64;index" json:"organization_id"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

func (Alert) TableName() string {
	return "alerts"
}

// ThresholdConfig holds per-organization alerting thresholds. One active
// version per organization; updates overwrite in place.
type ThresholdConfig struct {
	ID                      uint      `gorm:"primaryKey" json:"id"`
	OrganizationID          string    `gorm:"size:64;uniqueIndex" json:"organization_id"`
	CPUWarning              float64   `json:"cpu_warning"`
	CPUCritical             float64   `json:"cpu_critical"`
	MemoryWarning           float64   `json:"memory_warning"`
	MemoryCritical          float64   `json:"memory_critical"`
	ResponseTimeWarning     float64   `json:"response_time_warning"`  // milliseconds
	ResponseTimeCritical    float64   `json:"response_time_critical"` // milliseconds
	UptimeTarget            float64   `json:"uptime_target"`          // percent
	ResponseTimeTarget      float64   `json:"response_time_target"`   // milliseconds
	EmailNotifications      bool      `json:"email_notifications"`
	WebhookNotifications    bool      `json:"webhook_notifications"`
	SlackNotifications      bool      `json:"slack_notifications"`
	NotificationRecipients  string    `gorm:"size:512" json:"notification_recipients"` // comma-separated
	CreatedAt               time.Time `json:"created_at"`
	UpdatedAt               time.Time `json:"updated_at"`
}

func (ThresholdConfig) TableName() string {
	return "threshold_configs"
}
