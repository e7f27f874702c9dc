package scaling

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzeCriticalBreachRecommendsTwoInstances(t *testing.T) {
	advisor := NewAdvisor(1, 10, false)

	recs := advisor.Analyze(Metrics{CPUUsage: 96, MemoryUsage: 10, ResponseTime: 100})
	require.Len(t, recs, 1)
	assert.Equal(t, EventScaleUp, recs[0].Action)
	assert.Equal(t, "cpu_usage", recs[0].Metric)
	assert.Equal(t, 2, recs[0].Delta)
	assert.Equal(t, 3, recs[0].NewTotal)
}

func TestAnalyzeHighBreachRecommendsOneInstance(t *testing.T) {
	advisor := NewAdvisor(1, 10, false)

	recs := advisor.Analyze(Metrics{CPUUsage: 85, MemoryUsage: 10, ResponseTime: 100})
	require.Len(t, recs, 1)
	assert.Equal(t, 1, recs[0].Delta)
	assert.Equal(t, 2, recs[0].NewTotal)
}

func TestAnalyzeRecommendationCappedAtMax(t *testing.T) {
	advisor := NewAdvisor(9, 10, false)

	recs := advisor.Analyze(Metrics{CPUUsage: 96, MemoryUsage: 10, ResponseTime: 100})
	require.Len(t, recs, 1)
	assert.Equal(t, 1, recs[0].Delta)
	assert.Equal(t, 10, recs[0].NewTotal)
}

func TestAnalyzeMultipleFamiliesRecommendIndependently(t *testing.T) {
	advisor := NewAdvisor(1, 10, false)

	recs := advisor.Analyze(Metrics{CPUUsage: 96, MemoryUsage: 85, ResponseTime: 6000})
	assert.Len(t, recs, 3)
}

func TestAnalyzeScaleDownRequiresAllMetricsLow(t *testing.T) {
	advisor := NewAdvisor(3, 10, false)

	recs := advisor.Analyze(Metrics{CPUUsage: 10, MemoryUsage: 10, ResponseTime: 100})
	require.Len(t, recs, 1)
	assert.Equal(t, EventScaleDown, recs[0].Action)
	assert.Equal(t, -1, recs[0].Delta)
	assert.Equal(t, 2, recs[0].NewTotal)

	// One metric above its low bound blocks scale-down.
	recs = advisor.Analyze(Metrics{CPUUsage: 10, MemoryUsage: 50, ResponseTime: 100})
	assert.Empty(t, recs)
}

func TestAnalyzeNeverRecommendsBelowOneInstance(t *testing.T) {
	advisor := NewAdvisor(1, 10, false)

	recs := advisor.Analyze(Metrics{CPUUsage: 5, MemoryUsage: 5, ResponseTime: 50})
	assert.Empty(t, recs)
}

func TestSetThresholdsIgnoresUnknownKeys(t *testing.T) {
	advisor := NewAdvisor(1, 10, false)

	applied := advisor.SetThresholds(map[string]float64{
		ThresholdCPUHigh: 70,
		"bogus_key":      12,
	})

	assert.Equal(t, 70.0, applied[ThresholdCPUHigh])
	_, present := applied["bogus_key"]
	assert.False(t, present)

	// The lowered threshold takes effect immediately.
	recs := advisor.Analyze(Metrics{CPUUsage: 75, MemoryUsage: 10, ResponseTime: 300})
	require.Len(t, recs, 1)
	assert.Equal(t, 1, recs[0].Delta)
}

func TestSimulateScaleUpCapsAtMax(t *testing.T) {
	advisor := NewAdvisor(9, 10, false)

	event, total := advisor.SimulateScalingEvent(EventScaleUp, 5)
	assert.Equal(t, 10, total)
	assert.Equal(t, 1, event.Instances)
	assert.NotEmpty(t, event.ID)
}

func TestSimulateScaleDownFloorsAtOne(t *testing.T) {
	advisor := NewAdvisor(3, 10, false)

	_, total := advisor.SimulateScalingEvent(EventScaleDown, 5)
	assert.Equal(t, 1, total)
}

func TestSimulateScaleUpFromOne(t *testing.T) {
	advisor := NewAdvisor(1, 10, false)

	event, total := advisor.SimulateScalingEvent(EventScaleUp, 3)
	assert.Equal(t, 4, total)
	assert.Equal(t, 3, event.Instances)
}

func TestSimulateUnknownEventTypeIsNoOp(t *testing.T) {
	advisor := NewAdvisor(2, 10, false)

	event, total := advisor.SimulateScalingEvent("burst_mode", 5)
	assert.Equal(t, 2, total)
	assert.Equal(t, 0, event.Instances)

	// The no-op still lands in history.
	history := advisor.History()
	require.Len(t, history, 1)
	assert.Equal(t, "burst_mode", history[0].Type)
}

func TestHistoryAccumulatesInOrder(t *testing.T) {
	advisor := NewAdvisor(1, 10, false)

	advisor.SimulateScalingEvent(EventScaleUp, 2)
	advisor.SimulateScalingEvent(EventScaleDown, 1)

	history := advisor.History()
	require.Len(t, history, 2)
	assert.Equal(t, EventScaleUp, history[0].Type)
	assert.Equal(t, EventScaleDown, history[1].Type)
}

func TestToggleAutoScalingReflectedInStatus(t *testing.T) {
	advisor := NewAdvisor(1, 10, false)
	assert.False(t, advisor.Status().AutoScalingEnabled)

	advisor.ToggleAutoScaling(true)
	assert.True(t, advisor.Status().AutoScalingEnabled)
}

func TestNewAdvisorNormalizesBounds(t *testing.T) {
	advisor := NewAdvisor(0, 0, false)

	status := advisor.Status()
	assert.Equal(t, 1, status.CurrentInstances)
	assert.Equal(t, 1, status.MaxInstances)
}
