package alert

import (
	"errors"
	"sync"
	"testing"
	"time"

	"gatewaymon/internal/models"
	"gatewaymon/internal/monitorerr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStore is an in-memory alert store with the same dedup semantics as the
// database-backed one.
type memStore struct {
	mu     sync.Mutex
	nextID uint
	alerts map[uint]*models.Alert
}

func newMemStore() *memStore {
	return &memStore{alerts: make(map[uint]*models.Alert)}
}

func (s *memStore) FindActiveAlert(alertType, severity, source, orgID string) (*models.Alert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.alerts {
		if a.Status == models.AlertStatusActive &&
			a.AlertType == alertType && a.Severity == severity &&
			a.Source == source && a.OrganizationID == orgID {
			copied := *a
			return &copied, nil
		}
	}
	return nil, monitorerr.NotFound("active alert", alertType)
}

func (s *memStore) CreateAlert(a *models.Alert) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	a.ID = s.nextID
	copied := *a
	s.alerts[a.ID] = &copied
	return nil
}

func (s *memStore) SaveAlert(a *models.Alert) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *a
	s.alerts[a.ID] = &copied
	return nil
}

func (s *memStore) GetAlert(id uint, orgID string) (*models.Alert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.alerts[id]
	if !ok || a.OrganizationID != orgID {
		return nil, monitorerr.NotFound("alert", id)
	}
	copied := *a
	return &copied, nil
}

func (s *memStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.alerts)
}

type recordingNotifier struct {
	mu    sync.Mutex
	sends int
}

func (n *recordingNotifier) Send(title, message string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sends++
	return nil
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.sends
}

func defaultThresholds(orgID string) *models.ThresholdConfig {
	return &models.ThresholdConfig{
		OrganizationID:       orgID,
		CPUWarning:           80,
		CPUCritical:          95,
		MemoryWarning:        80,
		MemoryCritical:       95,
		ResponseTimeWarning:  1000,
		ResponseTimeCritical: 5000,
	}
}

func snapshotWith(orgID string, cpu, mem, rt float64) *models.HealthSnapshot {
	return &models.HealthSnapshot{
		OrganizationID: orgID,
		CPUUsage:       cpu,
		MemoryUsage:    mem,
		ResponseTime:   rt,
	}
}

func TestEvaluateRaisesCriticalAboveCriticalThreshold(t *testing.T) {
	store := newMemStore()
	engine := NewEngine(store, nil)

	err := engine.Evaluate(snapshotWith("org-1", 96, 50, 100), defaultThresholds("org-1"))
	require.NoError(t, err)

	a, err := store.FindActiveAlert(TypeCPU, models.SeverityCritical, SourceSampler, "org-1")
	require.NoError(t, err)
	assert.Equal(t, models.AlertStatusActive, a.Status)
	assert.Equal(t, 96.0, a.CurrentValue)
	assert.Equal(t, 95.0, a.ThresholdValue)
}

func TestEvaluateRaisesWarningBetweenThresholds(t *testing.T) {
	store := newMemStore()
	engine := NewEngine(store, nil)

	err := engine.Evaluate(snapshotWith("org-1", 85, 10, 100), defaultThresholds("org-1"))
	require.NoError(t, err)

	a, err := store.FindActiveAlert(TypeCPU, models.SeverityWarning, SourceSampler, "org-1")
	require.NoError(t, err)
	assert.Equal(t, models.SeverityWarning, a.Severity)
}

func TestEvaluateValueAtThresholdDoesNotAlert(t *testing.T) {
	store := newMemStore()
	engine := NewEngine(store, nil)

	// Exactly at the warning threshold is not a breach.
	err := engine.Evaluate(snapshotWith("org-1", 80, 80, 1000), defaultThresholds("org-1"))
	require.NoError(t, err)
	assert.Equal(t, 0, store.count())
}

func TestEvaluateIndependentFamiliesRaiseSeparately(t *testing.T) {
	store := newMemStore()
	engine := NewEngine(store, nil)

	err := engine.Evaluate(snapshotWith("org-1", 96, 85, 6000), defaultThresholds("org-1"))
	require.NoError(t, err)
	assert.Equal(t, 3, store.count())
}

func TestRepeatBreachUpdatesExistingAlert(t *testing.T) {
	store := newMemStore()
	notifier := &recordingNotifier{}
	engine := NewEngine(store, []Notifier{notifier})

	cfg := defaultThresholds("org-1")
	require.NoError(t, engine.Evaluate(snapshotWith("org-1", 96, 10, 100), cfg))
	require.NoError(t, engine.Evaluate(snapshotWith("org-1", 98, 10, 100), cfg))

	assert.Equal(t, 1, store.count())
	assert.Equal(t, 1, notifier.count(), "repeat breach must not re-notify")

	a, err := store.FindActiveAlert(TypeCPU, models.SeverityCritical, SourceSampler, "org-1")
	require.NoError(t, err)
	assert.Equal(t, 98.0, a.CurrentValue)
	assert.True(t, a.NotificationSent)
}

func TestConcurrentEvaluationsCreateOneAlert(t *testing.T) {
	store := newMemStore()
	engine := NewEngine(store, nil)
	cfg := defaultThresholds("org-1")

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = engine.Evaluate(snapshotWith("org-1", 97, 10, 100), cfg)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, store.count())
}

func TestDedupIsScopedPerOrganization(t *testing.T) {
	store := newMemStore()
	engine := NewEngine(store, nil)

	require.NoError(t, engine.Evaluate(snapshotWith("org-1", 97, 10, 100), defaultThresholds("org-1")))
	require.NoError(t, engine.Evaluate(snapshotWith("org-2", 97, 10, 100), defaultThresholds("org-2")))

	assert.Equal(t, 2, store.count())
}

func TestAcknowledgeLifecycle(t *testing.T) {
	store := newMemStore()
	engine := NewEngine(store, nil)
	require.NoError(t, engine.Evaluate(snapshotWith("org-1", 97, 10, 100), defaultThresholds("org-1")))

	a, err := engine.Acknowledge(1, "org-1", "user-7")
	require.NoError(t, err)
	assert.Equal(t, models.AlertStatusAcknowledged, a.Status)
	assert.Equal(t, "user-7", a.AcknowledgedBy)
	require.NotNil(t, a.AcknowledgedAt)

	// A second acknowledge finds no active alert.
	_, err = engine.Acknowledge(1, "org-1", "user-8")
	assert.ErrorIs(t, err, monitorerr.ErrNotFound)
}

func TestResolveFromActiveAndAcknowledged(t *testing.T) {
	store := newMemStore()
	engine := NewEngine(store, nil)
	cfg := defaultThresholds("org-1")

	require.NoError(t, engine.Evaluate(snapshotWith("org-1", 97, 10, 100), cfg))
	resolved, err := engine.Resolve(1, "org-1")
	require.NoError(t, err)
	assert.Equal(t, models.AlertStatusResolved, resolved.Status)
	require.NotNil(t, resolved.ResolvedAt)

	require.NoError(t, engine.Evaluate(snapshotWith("org-1", 97, 10, 100), cfg))
	_, err = engine.Acknowledge(2, "org-1", "user-7")
	require.NoError(t, err)
	resolved, err = engine.Resolve(2, "org-1")
	require.NoError(t, err)
	assert.Equal(t, models.AlertStatusResolved, resolved.Status)
}

func TestResolveAlreadyResolvedReportsNotFound(t *testing.T) {
	store := newMemStore()
	engine := NewEngine(store, nil)
	require.NoError(t, engine.Evaluate(snapshotWith("org-1", 97, 10, 100), defaultThresholds("org-1")))

	first, err := engine.Resolve(1, "org-1")
	require.NoError(t, err)
	firstResolvedAt := *first.ResolvedAt

	_, err = engine.Resolve(1, "org-1")
	assert.ErrorIs(t, err, monitorerr.ErrNotFound)

	// The original resolution timestamp is untouched.
	stored, err := store.GetAlert(1, "org-1")
	require.NoError(t, err)
	assert.Equal(t, firstResolvedAt, *stored.ResolvedAt)
}

func TestResolveWrongOrganizationReportsNotFound(t *testing.T) {
	store := newMemStore()
	engine := NewEngine(store, nil)
	require.NoError(t, engine.Evaluate(snapshotWith("org-1", 97, 10, 100), defaultThresholds("org-1")))

	_, err := engine.Resolve(1, "org-2")
	assert.ErrorIs(t, err, monitorerr.ErrNotFound)
}

func TestNewBreachAfterResolveCreatesFreshAlert(t *testing.T) {
	store := newMemStore()
	engine := NewEngine(store, nil)
	cfg := defaultThresholds("org-1")

	require.NoError(t, engine.Evaluate(snapshotWith("org-1", 97, 10, 100), cfg))
	_, err := engine.Resolve(1, "org-1")
	require.NoError(t, err)

	require.NoError(t, engine.Evaluate(snapshotWith("org-1", 97, 10, 100), cfg))
	assert.Equal(t, 2, store.count())
}

// brokenStore rejects every insert.
type brokenStore struct {
	*memStore
}

func (s *brokenStore) CreateAlert(a *models.Alert) error {
	return errors.New("insert failed")
}

func TestNoNotificationWhenCreateFails(t *testing.T) {
	store := &brokenStore{memStore: newMemStore()}
	notifier := &recordingNotifier{}
	engine := NewEngine(store, []Notifier{notifier})

	err := engine.Evaluate(snapshotWith("org-1", 97, 10, 100), defaultThresholds("org-1"))
	require.Error(t, err)

	// The alert row never existed, so nothing may have been delivered.
	assert.Equal(t, 0, notifier.count())
	assert.Equal(t, 0, store.count())
}

func TestNotificationFlagSavedAfterCreate(t *testing.T) {
	store := newMemStore()
	notifier := &recordingNotifier{}
	engine := NewEngine(store, []Notifier{notifier})

	require.NoError(t, engine.Evaluate(snapshotWith("org-1", 97, 10, 100), defaultThresholds("org-1")))

	assert.Equal(t, 1, notifier.count())
	stored, err := store.GetAlert(1, "org-1")
	require.NoError(t, err)
	assert.True(t, stored.NotificationSent)
}

type channelIndexer struct {
	indexed chan *models.Alert
}

func (i *channelIndexer) IndexAlert(a *models.Alert) error {
	i.indexed <- a
	return nil
}

func TestRaisedAlertsReachIndexer(t *testing.T) {
	store := newMemStore()
	engine := NewEngine(store, nil)
	indexer := &channelIndexer{indexed: make(chan *models.Alert, 1)}
	engine.StartIndexing(indexer)

	require.NoError(t, engine.Evaluate(snapshotWith("org-1", 97, 10, 100), defaultThresholds("org-1")))

	select {
	case a := <-indexer.indexed:
		assert.Equal(t, TypeCPU, a.AlertType)
		assert.Equal(t, models.SeverityCritical, a.Severity)
		assert.Equal(t, "org-1", a.OrganizationID)
	case <-time.After(time.Second):
		t.Fatal("alert never reached the indexer")
	}
}
