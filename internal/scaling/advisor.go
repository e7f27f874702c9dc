package scaling

import (
	"sync"
	"time"

	"gatewaymon/internal/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Recognized threshold keys. SetThresholds silently drops anything else;
// that permissive merge is the intended contract even though it masks typos.
const (
	ThresholdCPUHigh            = "cpu_high"
	ThresholdCPUCritical        = "cpu_critical"
	ThresholdMemoryHigh         = "memory_high"
	ThresholdMemoryCritical     = "memory_critical"
	ThresholdResponseHigh       = "response_time_high"
	ThresholdResponseCritical   = "response_time_critical"
	ThresholdConcurrentHigh     = "concurrent_users_high"
	ThresholdConcurrentCritical = "concurrent_users_critical"
)

// Scale-down bounds: applies only when every metric is simultaneously below
// its low bound and more than one instance is running.
const (
	scaleDownCPUBelow      = 30.0
	scaleDownMemoryBelow   = 30.0
	scaleDownResponseBelow = 200.0
)

// Event types accepted by SimulateScalingEvent.
const (
	EventScaleUp   = "scale_up"
	EventScaleDown = "scale_down"
)

// Recommendation is advisory output; this core never actuates scaling.
type Recommendation struct {
	Action       string  `json:"action"` // scale_up or scale_down
	Reason       string  `json:"reason"`
	Metric       string  `json:"metric"`
	CurrentValue float64 `json:"current_value"`
	Threshold    float64 `json:"threshold"`
	Delta        int     `json:"delta"`     // instance count change
	NewTotal     int     `json:"new_total"` // instances after applying delta
}

// ScalingEvent is one applied (simulated) scaling step.
type ScalingEvent struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Instances int       `json:"instances"` // delta applied
	NewTotal  int       `json:"new_total"`
	Timestamp time.Time `json:"timestamp"`
}

// Metrics is the current load the advisor analyzes.
type Metrics struct {
	CPUUsage        float64 `json:"cpu_usage"`
	MemoryUsage     float64 `json:"memory_usage"`
	ResponseTime    float64 `json:"response_time"`
	ConcurrentUsers float64 `json:"concurrent_users"`
}

// Status is a read-only view of advisor state.
type Status struct {
	CurrentInstances   int                `json:"current_instances"`
	MaxInstances       int                `json:"max_instances"`
	AutoScalingEnabled bool               `json:"auto_scaling_enabled"`
	Thresholds         map[string]float64 `json:"thresholds"`
}

// Advisor tracks instance count and scaling thresholds for one deployment.
// All state is read-modify-write, so every operation takes the lock; callers
// share a single instance per deployment.
type Advisor struct {
	mu sync.Mutex

	currentInstances   int
	maxInstances       int
	thresholds         map[string]float64
	autoScalingEnabled bool
	history            []ScalingEvent
}

func NewAdvisor(initialInstances, maxInstances int, autoScaling bool) *Advisor {
	if initialInstances < 1 {
		initialInstances = 1
	}
	if maxInstances < initialInstances {
		maxInstances = initialInstances
	}

	return &Advisor{
		currentInstances:   initialInstances,
		maxInstances:       maxInstances,
		autoScalingEnabled: autoScaling,
		thresholds: map[string]float64{
			ThresholdCPUHigh:            80,
			ThresholdCPUCritical:        95,
			ThresholdMemoryHigh:         80,
			ThresholdMemoryCritical:     95,
			ThresholdResponseHigh:       1000,
			ThresholdResponseCritical:   5000,
			ThresholdConcurrentHigh:     1000,
			ThresholdConcurrentCritical: 5000,
		},
		history: make([]ScalingEvent, 0),
	}
}

// Analyze evaluates cpu, memory and response time independently. A critical
// breach recommends +2 instances, a high breach +1, both capped at the
// maximum. Scale-down requires all three metrics below their low bound at
// once and never drops below one instance. Several families may each emit a
// recommendation in the same call.
func (a *Advisor) Analyze(m Metrics) []Recommendation {
	a.mu.Lock()
	defer a.mu.Unlock()

	recommendations := make([]Recommendation, 0)

	families := []struct {
		metric      string
		value       float64
		highKey     string
		criticalKey string
	}{
		{"cpu_usage", m.CPUUsage, ThresholdCPUHigh, ThresholdCPUCritical},
		{"memory_usage", m.MemoryUsage, ThresholdMemoryHigh, ThresholdMemoryCritical},
		{"response_time", m.ResponseTime, ThresholdResponseHigh, ThresholdResponseCritical},
	}

	for _, f := range families {
		critical := a.thresholds[f.criticalKey]
		high := a.thresholds[f.highKey]

		switch {
		case f.value > critical:
			recommendations = append(recommendations, a.scaleUpRecommendation(
				f.metric, f.value, critical, 2, "critical threshold breached"))
		case f.value > high:
			recommendations = append(recommendations, a.scaleUpRecommendation(
				f.metric, f.value, high, 1, "high threshold breached"))
		}
	}

	allLow := m.CPUUsage < scaleDownCPUBelow &&
		m.MemoryUsage < scaleDownMemoryBelow &&
		m.ResponseTime < scaleDownResponseBelow
	if allLow && a.currentInstances > 1 {
		newTotal := a.currentInstances - 1
		if newTotal < 1 {
			newTotal = 1
		}
		recommendations = append(recommendations, Recommendation{
			Action:       EventScaleDown,
			Reason:       "all metrics below low utilization bounds",
			Metric:       "all",
			CurrentValue: m.CPUUsage,
			Delta:        -1,
			NewTotal:     newTotal,
		})
	}

	return recommendations
}

func (a *Advisor) scaleUpRecommendation(metric string, value, threshold float64, delta int, reason string) Recommendation {
	newTotal := a.currentInstances + delta
	if newTotal > a.maxInstances {
		newTotal = a.maxInstances
	}

	return Recommendation{
		Action:       EventScaleUp,
		Reason:       reason,
		Metric:       metric,
		CurrentValue: value,
		Threshold:    threshold,
		Delta:        newTotal - a.currentInstances,
		NewTotal:     newTotal,
	}
}

// SetThresholds merges recognized keys into the threshold map. Unknown keys
// are ignored without error and are absent from the returned map.
func (a *Advisor) SetThresholds(updates map[string]float64) map[string]float64 {
	a.mu.Lock()
	defer a.mu.Unlock()

	for key, value := range updates {
		if _, known := a.thresholds[key]; known {
			a.thresholds[key] = value
		}
	}

	return a.thresholdsCopy()
}

// SimulateScalingEvent applies a scale delta with the same caps and floors as
// Analyze, appends the event to history, and returns it. Event types other
// than scale_up and scale_down are accepted as a no-op that still succeeds.
func (a *Advisor) SimulateScalingEvent(eventType string, count int) (ScalingEvent, int) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if count < 0 {
		count = 0
	}

	previous := a.currentInstances
	switch eventType {
	case EventScaleUp:
		a.currentInstances += count
		if a.currentInstances > a.maxInstances {
			a.currentInstances = a.maxInstances
		}
	case EventScaleDown:
		a.currentInstances -= count
		if a.currentInstances < 1 {
			a.currentInstances = 1
		}
	default:
		// Unrecognized types fall through as a successful no-op.
	}

	event := ScalingEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		Instances: a.currentInstances - previous,
		NewTotal:  a.currentInstances,
		Timestamp: time.Now(),
	}
	a.history = append(a.history, event)

	logger.Info("scaling event applied",
		zap.String("type", eventType),
		zap.Int("delta", event.Instances),
		zap.Int("new_total", event.NewTotal))

	return event, a.currentInstances
}

// ToggleAutoScaling sets the auto-scaling flag. Acting on recommendations is
// the caller's concern; this core only recommends.
func (a *Advisor) ToggleAutoScaling(enabled bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.autoScalingEnabled = enabled
}

// History returns a copy of the scaling event log, oldest first.
func (a *Advisor) History() []ScalingEvent {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make([]ScalingEvent, len(a.history))
	copy(out, a.history)
	return out
}

// Status returns a consistent view of the advisor state.
func (a *Advisor) Status() Status {
	a.mu.Lock()
	defer a.mu.Unlock()

	return Status{
		CurrentInstances:   a.currentInstances,
		MaxInstances:       a.maxInstances,
		AutoScalingEnabled: a.autoScalingEnabled,
		Thresholds:         a.thresholdsCopy(),
	}
}

func (a *Advisor) thresholdsCopy() map[string]float64 {
	out := make(map[string]float64, len(a.thresholds))
	for k, v := range a.thresholds {
		out[k] = v
	}
	return out
}
