package server

import (
	"math"
	"time"

	"gatewaymon/internal/models"
	"gatewaymon/internal/monitorerr"
)

// convertMetricRequest validates a metric submission and maps it onto the
// storage model. Name, a finite value, and a unit are mandatory.
func convertMetricRequest(req RecordMetricRequest) (*models.MetricPoint, error) {
	if req.MetricName == "" {
		return nil, monitorerr.InvalidField("metric_name", "is required")
	}
	if req.Value == nil {
		return nil, monitorerr.InvalidField("value", "is required")
	}
	if math.IsNaN(*req.Value) || math.IsInf(*req.Value, 0) {
		return nil, monitorerr.InvalidField("value", "must be a finite number")
	}
	if req.Unit == "" {
		return nil, monitorerr.InvalidField("unit", "is required")
	}

	metricType := req.MetricType
	if metricType == "" {
		metricType = models.MetricTypeGauge
	}
	switch metricType {
	case models.MetricTypeGauge, models.MetricTypeCounter, models.MetricTypeHistogram:
	default:
		return nil, monitorerr.InvalidField("metric_type", "must be gauge, counter, or histogram")
	}

	return &models.MetricPoint{
		MetricName:     req.MetricName,
		MetricType:     metricType,
		Value:          *req.Value,
		Unit:           req.Unit,
		Endpoint:       req.Endpoint,
		Method:         req.Method,
		UserID:         req.UserID,
		OrganizationID: req.OrganizationID,
		RecordedAt:     time.Now(),
	}, nil
}

// AlertResponse is the wire form of an alert row.
type AlertResponse struct {
	ID             uint    `json:"id"`
	AlertType      string  `json:"alert_type"`
	Severity       string  `json:"severity"`
	Status         string  `json:"status"`
	Source         string  `json:"source"`
	CurrentValue   float64 `json:"current_value"`
	ThresholdValue float64 `json:"threshold_value"`
	Message        string  `json:"message"`
	OrganizationID string  `json:"organization_id"`
	AcknowledgedBy string  `json:"acknowledged_by,omitempty"`
	AcknowledgedAt string  `json:"acknowledged_at,omitempty"`
	ResolvedAt     string  `json:"resolved_at,omitempty"`
	CreatedAt      string  `json:"created_at"`
	UpdatedAt      string  `json:"updated_at"`
}

func convertAlert(a models.Alert) AlertResponse {
	resp := AlertResponse{
		ID:             a.ID,
		AlertType:      a.AlertType,
		Severity:       a.Severity,
		Status:         a.Status,
		Source:         a.Source,
		CurrentValue:   a.CurrentValue,
		ThresholdValue: a.ThresholdValue,
		Message:        a.Message,
		OrganizationID: a.OrganizationID,
		AcknowledgedBy: a.AcknowledgedBy,
		CreatedAt:      a.CreatedAt.Format(time.RFC3339),
		UpdatedAt:      a.UpdatedAt.Format(time.RFC3339),
	}
	if a.AcknowledgedAt != nil {
		resp.AcknowledgedAt = a.AcknowledgedAt.Format(time.RFC3339)
	}
	if a.ResolvedAt != nil {
		resp.ResolvedAt = a.ResolvedAt.Format(time.RFC3339)
	}
	return resp
}

func convertAlerts(alerts []models.Alert) []AlertResponse {
	out := make([]AlertResponse, 0, len(alerts))
	for _, a := range alerts {
		out = append(out, convertAlert(a))
	}
	return out
}
