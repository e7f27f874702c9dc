package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Internal counters exposed on /metrics.
var (
	SamplesCollected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gatewaymon_samples_collected_total",
		Help: "Health collection cycles completed, by resulting status.",
	}, []string{"status"})

	AlertsRaised = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gatewaymon_alerts_raised_total",
		Help: "Alerts created, by type and severity.",
	}, []string{"alert_type", "severity"})

	AlertsResolved = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gatewaymon_alerts_resolved_total",
		Help: "Alerts moved to the resolved state.",
	})

	NotificationFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gatewaymon_notification_failures_total",
		Help: "Alert notification deliveries that failed.",
	})

	MetricPointsRecorded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gatewaymon_metric_points_recorded_total",
		Help: "Metric points accepted via RecordMetric.",
	})
)
