package health

import (
	"errors"
	"testing"
	"time"

	"gatewaymon/internal/models"
	"gatewaymon/internal/monitorerr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeHost struct {
	cpu, mem, disk float64
	uptime         uint64
	err            error
}

func (h *fakeHost) CPUPercent() (float64, error)    { return h.cpu, h.err }
func (h *fakeHost) MemoryPercent() (float64, error) { return h.mem, h.err }
func (h *fakeHost) DiskPercent() (float64, error)   { return h.disk, h.err }
func (h *fakeHost) UptimeSeconds() (uint64, error)  { return h.uptime, h.err }

type fakeSource struct {
	values    map[string][]float64
	latest    map[string]float64
	snapshots []*models.HealthSnapshot
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		values: make(map[string][]float64),
		latest: make(map[string]float64),
	}
}

func (s *fakeSource) MetricValues(name, orgID string, since time.Time) ([]float64, error) {
	return s.values[name], nil
}

func (s *fakeSource) LatestMetricValue(name, orgID string) (float64, error) {
	v, ok := s.latest[name]
	if !ok {
		return 0, monitorerr.NotFound("metric", name)
	}
	return v, nil
}

func (s *fakeSource) SaveSnapshot(snapshot *models.HealthSnapshot) error {
	s.snapshots = append(s.snapshots, snapshot)
	return nil
}

type fakeEvaluator struct {
	snapshots []*models.HealthSnapshot
}

func (e *fakeEvaluator) Evaluate(snapshot *models.HealthSnapshot, cfg *models.ThresholdConfig) error {
	e.snapshots = append(e.snapshots, snapshot)
	return nil
}

type fakeThresholds struct{}

func (fakeThresholds) Get(orgID string) (*models.ThresholdConfig, error) {
	return &models.ThresholdConfig{
		OrganizationID:       orgID,
		CPUWarning:           80,
		CPUCritical:          95,
		MemoryWarning:        80,
		MemoryCritical:       95,
		ResponseTimeWarning:  1000,
		ResponseTimeCritical: 5000,
	}, nil
}

func newTestSampler(host HostReader, source MetricSource, eval Evaluator) *Sampler {
	return NewSampler(host, source, eval, fakeThresholds{}, "")
}

func TestSampleHealthyStatus(t *testing.T) {
	source := newFakeSource()
	sampler := newTestSampler(&fakeHost{cpu: 40, mem: 50, disk: 30, uptime: 3600}, source, &fakeEvaluator{})

	snapshot, err := sampler.Sample("org-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusHealthy, snapshot.Status)
	assert.Equal(t, uint64(3600), snapshot.UptimeSeconds)
	require.Len(t, source.snapshots, 1)
}

func TestSampleStatusBoundaries(t *testing.T) {
	cases := []struct {
		name string
		cpu  float64
		want string
	}{
		{"at warning threshold stays healthy", 80, models.StatusHealthy},
		{"just above warning", 80.5, models.StatusWarning},
		{"at critical threshold stays warning", 95, models.StatusWarning},
		{"above critical", 96, models.StatusCritical},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sampler := newTestSampler(&fakeHost{cpu: tc.cpu, mem: 10, disk: 10}, newFakeSource(), &fakeEvaluator{})
			snapshot, err := sampler.Sample("org-1")
			require.NoError(t, err)
			assert.Equal(t, tc.want, snapshot.Status)
		})
	}
}

func TestSampleHighestUtilizationWins(t *testing.T) {
	sampler := newTestSampler(&fakeHost{cpu: 10, mem: 85, disk: 97}, newFakeSource(), &fakeEvaluator{})
	snapshot, err := sampler.Sample("org-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusCritical, snapshot.Status)
}

func TestSampleDefaultsWhenNoRecentMetrics(t *testing.T) {
	sampler := newTestSampler(&fakeHost{cpu: 10, mem: 10, disk: 10}, newFakeSource(), &fakeEvaluator{})

	snapshot, err := sampler.Sample("org-1")
	require.NoError(t, err)
	assert.Equal(t, DefaultResponseTime, snapshot.ResponseTime)
	assert.Equal(t, DefaultErrorRate, snapshot.ErrorRate)
	assert.Equal(t, DefaultThroughput, snapshot.Throughput)
	assert.Equal(t, DefaultNetworkLatency, snapshot.NetworkLatency)
	assert.Equal(t, 0, snapshot.ActiveConnections)
}

func TestSampleDerivesMeansFromRecentPoints(t *testing.T) {
	source := newFakeSource()
	source.values["api_response_time"] = []float64{100, 200, 300}
	source.values["requests_per_second"] = []float64{50, 150}
	source.latest["active_connections"] = 42

	sampler := newTestSampler(&fakeHost{cpu: 10, mem: 10, disk: 10}, source, &fakeEvaluator{})
	snapshot, err := sampler.Sample("org-1")
	require.NoError(t, err)
	assert.InDelta(t, 200, snapshot.ResponseTime, 1e-9)
	assert.InDelta(t, 100, snapshot.Throughput, 1e-9)
	assert.Equal(t, 42, snapshot.ActiveConnections)
}

func TestSampleErrorRateIsCappedAt100(t *testing.T) {
	source := newFakeSource()
	source.values["api_errors"] = []float64{60, 70}

	sampler := newTestSampler(&fakeHost{cpu: 10, mem: 10, disk: 10}, source, &fakeEvaluator{})
	snapshot, err := sampler.Sample("org-1")
	require.NoError(t, err)
	assert.Equal(t, 100.0, snapshot.ErrorRate)
}

func TestSampleTotalHostFailure(t *testing.T) {
	source := newFakeSource()
	eval := &fakeEvaluator{}
	sampler := newTestSampler(&fakeHost{err: errors.New("procfs unavailable")}, source, eval)

	snapshot, err := sampler.Sample("org-1")
	require.Error(t, err)
	assert.ErrorIs(t, err, monitorerr.ErrCollectionFailed)
	assert.Equal(t, models.StatusError, snapshot.Status)

	// The error snapshot is still persisted, but never evaluated.
	require.Len(t, source.snapshots, 1)
	assert.Empty(t, eval.snapshots)
}

func TestSampleFeedsAlertEvaluation(t *testing.T) {
	eval := &fakeEvaluator{}
	sampler := newTestSampler(&fakeHost{cpu: 97, mem: 10, disk: 10}, newFakeSource(), eval)

	_, err := sampler.Sample("org-1")
	require.NoError(t, err)
	require.Len(t, eval.snapshots, 1)
	assert.Equal(t, 97.0, eval.snapshots[0].CPUUsage)
}

func TestSampleSlowResponsesRaiseResponseTimeAlert(t *testing.T) {
	source := newFakeSource()
	source.values["api_response_time"] = []float64{2000, 2000, 2000, 2000, 2000}
	eval := &fakeEvaluator{}

	sampler := newTestSampler(&fakeHost{cpu: 10, mem: 10, disk: 10}, source, eval)
	snapshot, err := sampler.Sample("org-1")
	require.NoError(t, err)

	// 2000ms mean sits between the warning and critical response thresholds.
	assert.InDelta(t, 2000, snapshot.ResponseTime, 1e-9)
	require.Len(t, eval.snapshots, 1)
}
