package models

import "time"

// SLA status values.
const (
	SLACompliant    = "compliant"
	SLAAtRisk       = "at_risk"
	SLANonCompliant = "non_compliant"
)

// SLAMetric is one evaluated SLA period. Immutable once the period closes.
type SLAMetric struct {
	ID                   uint      `gorm:"primaryKey" json:"id"`
	SLAName              string    `gorm:"size:128;not null;index" json:"sla_name"`
	SLATarget            float64   `json:"sla_target"`
	SLAPeriod            string    `gorm:"size:20" json:"sla_period"` // hourly, daily, monthly
	CurrentValue         float64   `json:"current_value"`
	CompliancePercentage float64   `json:"compliance_percentage"`
	Status               string    `gorm:"size:20;index" json:"status"` // compliant, at_risk, non_compliant
	PeriodStart          time.Time `json:"period_start"`
	PeriodEnd            time.Time `json:"period_end"`
	RecordedAt           time.Time `json:"recorded_at"`
	OrganizationID       string    `gorm:"size:64;index" json:"organization_id"`
}

func (SLAMetric) TableName() string {
	return "sla_metrics"
}

// Incident status values. Transitions are monotonic:
// open -> investigating -> resolved -> closed.
const (
	IncidentOpen          = "open"
	IncidentInvestigating = "investigating"
	IncidentResolved      = "resolved"
	IncidentClosed        = "closed"
)

// Incident severity values.
const (
	IncidentSeverityLow      = "low"
	IncidentSeverityMedium   = "medium"
	IncidentSeverityHigh     = "high"
	IncidentSeverityCritical = "critical"
)

// Incident tracks a service-impacting event through its lifecycle.
type Incident struct {
	ID               string     `gorm:"primaryKey;size:36" json:"id"` // uuid
	IncidentType     string     `gorm:"size:64;not null" json:"incident_type"`
	Severity         string     `gorm:"size:20;not null;index" json:"severity"` // low, medium, high, critical
	Title            string     `gorm:"size:255" json:"title"`
	Description      string     `gorm:"type:text" json:"description"`
	Status           string     `gorm:"size:20;index;default:open" json:"status"`
	Priority         string     `gorm:"size:20" json:"priority"`     // low, medium, high, urgent
	AffectedServices string     `gorm:"size:512" json:"affected_services"` // comma-separated
	ImpactLevel      string     `gorm:"size:20" json:"impact_level"` // minimal, moderate, significant, severe
	RootCause        string     `gorm:"type:text" json:"root_cause,omitempty"`
	Resolution       string     `gorm:"type:text" json:"resolution,omitempty"`
	ResolvedBy       string     `gorm:"size:64" json:"resolved_by,omitempty"`
	ResolvedAt       *time.Time `json:"resolved_at,omitempty"`
	DetectedAt       time.Time  `json:"detected_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
	OrganizationID   string     `gorm:"size:64;index" json:"organization_id"`
}

func (Incident) TableName() string {
	return "incidents"
}
