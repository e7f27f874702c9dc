package models

import "time"

// Health status values derived from host utilization.
const (
	StatusHealthy  = "healthy"
	StatusWarning  = "warning"
	StatusCritical = "critical"
	StatusError    = "error"
)

// HealthSnapshot is one point-in-time view of gateway host health.
// Immutable once created; one row per collection cycle.
type HealthSnapshot struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	CPUUsage          float64   `json:"cpu_usage"`    // percent, 0-100
	MemoryUsage       float64   `json:"memory_usage"` // percent, 0-100
	DiskUsage         float64   `json:"disk_usage"`   // percent, 0-100
	NetworkLatency    float64   `json:"network_latency"` // milliseconds
	ResponseTime      float64   `json:"response_time"`   // milliseconds
	Status            string    `gorm:"size:20;index" json:"status"` // healthy, warning, critical, error
	UptimeSeconds     uint64    `json:"uptime_seconds"`
	ActiveConnections int       `json:"active_connections"`
	ErrorRate         float64   `json:"error_rate"` // percent, capped at 100
	Throughput        float64   `json:"throughput"` // requests per second
	RecordedAt        time.Time `gorm:"index" json:"recorded_at"`
	OrganizationID    string    `gorm:"size:64;index" json:"organization_id"`
}

func (HealthSnapshot) TableName() string {
	return "health_snapshots"
}

// Metric type values.
const (
	MetricTypeGauge     = "gauge"
	MetricTypeCounter   = "counter"
	MetricTypeHistogram = "histogram"
)

// MetricPoint is a single recorded measurement. Append-only.
type MetricPoint struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	MetricName     string    `gorm:"size:128;not null;index" json:"metric_name"`
	MetricType     string    `gorm:"size:20;default:gauge" json:"metric_type"` // gauge, counter, histogram
	Value          float64   `json:"value"`
	Unit           string    `gorm:"size:32" json:"unit"`
	Endpoint       string    `gorm:"size:255;index" json:"endpoint,omitempty"`
	Method         string    `gorm:"size:10" json:"method,omitempty"`
	UserID         string    `gorm:"size:64" json:"user_id,omitempty"`
	OrganizationID string    `gorm:"size:64;index" json:"organization_id,omitempty"`
	RecordedAt     time.Time `gorm:"index" json:"recorded_at"`
}

func (MetricPoint) TableName() string {
	return "metric_points"
}
