package progress

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// memSnapshots in-memory SnapshotRepository
type memSnapshots struct {
	records map[string]*CourseProgress
	loadErr error
	saveErr error
}

func newMemSnapshots() *memSnapshots {
	return &memSnapshots{records: make(map[string]*CourseProgress)}
}

func (m *memSnapshots) Load(ctx context.Context, learnerID string) (*CourseProgress, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	if cp, ok := m.records[learnerID]; ok {
		return cp.Clone(), nil
	}
	return nil, nil
}

func (m *memSnapshots) Save(ctx context.Context, learnerID string, cp *CourseProgress) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.records[learnerID] = cp.Clone()
	return nil
}

func (m *memSnapshots) Clear(ctx context.Context, learnerID string) error {
	delete(m.records, learnerID)
	return nil
}

// countingReporter CompletionReporter counting invocations
type countingReporter struct {
	initialized int
	completed   int
}

func (r *countingReporter) Initialize() bool {
	r.initialized++
	return true
}

func (r *countingReporter) SetComplete() bool {
	r.completed++
	return true
}

func newTestStore(snapshots SnapshotRepository, reporter CompletionReporter) *Store {
	return NewStore(context.Background(), "learner-1", 7, snapshots, reporter, zap.NewNop())
}

func TestNewStore_TriggersHandshake(t *testing.T) {
	reporter := &countingReporter{}
	newTestStore(newMemSnapshots(), reporter)

	assert.Equal(t, 1, reporter.initialized)
	assert.Equal(t, 0, reporter.completed)
}

func TestNewStore_StartsFromInitialState(t *testing.T) {
	store := newTestStore(newMemSnapshots(), &countingReporter{})

	cp := store.Progress()
	assert.Equal(t, 1, cp.CurrentLesson)
	assert.Equal(t, 0, cp.OverallProgress)
	assert.Len(t, cp.Lessons, 7)
}

func TestNewStore_ResumesFromSnapshot(t *testing.T) {
	snapshots := newMemSnapshots()
	saved := NewCourseProgress(7)
	applyCompletion(saved, 1, nil)
	applyCompletion(saved, 2, nil)
	snapshots.records["learner-1"] = saved

	store := newTestStore(snapshots, &countingReporter{})

	cp := store.Progress()
	assert.Equal(t, 3, cp.CurrentLesson)
	assert.Equal(t, 2, cp.CompletedCount())
	assert.Equal(t, 29, cp.OverallProgress)
}

func TestNewStore_MalformedSnapshotFallsBack(t *testing.T) {
	snapshots := newMemSnapshots()
	snapshots.loadErr = errors.New("malformed progress snapshot")

	store := newTestStore(snapshots, &countingReporter{})

	cp := store.Progress()
	assert.Equal(t, 1, cp.CurrentLesson)
	assert.Equal(t, 0, cp.CompletedCount())
}

func TestStore_CompleteLessonPersists(t *testing.T) {
	snapshots := newMemSnapshots()
	store := newTestStore(snapshots, &countingReporter{})

	snapshot := store.CompleteLesson(context.Background(), 1, nil)
	assert.Equal(t, 2, snapshot.CurrentLesson)
	assert.Equal(t, 14, snapshot.OverallProgress)

	persisted := snapshots.records["learner-1"]
	require.NotNil(t, persisted)
	assert.True(t, persisted.Lessons[0].Completed)
}

func TestStore_PersistFailureIsNotSurfaced(t *testing.T) {
	snapshots := newMemSnapshots()
	snapshots.saveErr = errors.New("kv down")
	store := newTestStore(snapshots, &countingReporter{})

	snapshot := store.CompleteLesson(context.Background(), 1, nil)
	assert.True(t, snapshot.Lessons[0].Completed, "in-memory state mutates regardless")
}

func TestStore_ReportsCompletionOnce(t *testing.T) {
	reporter := &countingReporter{}
	store := newTestStore(newMemSnapshots(), reporter)

	for k := 1; k <= 7; k++ {
		store.CompleteLesson(context.Background(), k, nil)
	}
	assert.Equal(t, 1, reporter.completed)
}

func TestStore_ReportsAgainWhenRecompleted(t *testing.T) {
	reporter := &countingReporter{}
	store := newTestStore(newMemSnapshots(), reporter)

	for k := 1; k <= 7; k++ {
		store.CompleteLesson(context.Background(), k, nil)
	}
	store.CompleteLesson(context.Background(), 3, nil)
	assert.Equal(t, 2, reporter.completed)
}

func TestStore_SetCurrentLesson(t *testing.T) {
	snapshots := newMemSnapshots()
	store := newTestStore(snapshots, &countingReporter{})
	store.CompleteLesson(context.Background(), 1, nil)

	snapshot := store.SetCurrentLesson(context.Background(), 1)
	assert.Equal(t, 1, snapshot.CurrentLesson)
	assert.Equal(t, 1, snapshots.records["learner-1"].CurrentLesson)
}

func TestStore_ResetProgress(t *testing.T) {
	snapshots := newMemSnapshots()
	store := newTestStore(snapshots, &countingReporter{})
	store.CompleteLesson(context.Background(), 1, nil)

	snapshot := store.ResetProgress(context.Background())
	assert.Equal(t, 1, snapshot.CurrentLesson)
	assert.Equal(t, 0, snapshot.CompletedCount())
	assert.Equal(t, 0, snapshot.OverallProgress)
	assert.NotContains(t, snapshots.records, "learner-1")
}

func TestStore_IsLessonAccessible(t *testing.T) {
	store := newTestStore(newMemSnapshots(), &countingReporter{})

	assert.True(t, store.IsLessonAccessible(1))
	assert.False(t, store.IsLessonAccessible(2))

	store.CompleteLesson(context.Background(), 1, nil)
	assert.True(t, store.IsLessonAccessible(2))
}

func TestStore_SubscribeReceivesMutations(t *testing.T) {
	store := newTestStore(newMemSnapshots(), &countingReporter{})

	updates, cancel := store.Subscribe()
	defer cancel()

	store.CompleteLesson(context.Background(), 1, nil)
	snapshot := <-updates
	assert.Equal(t, 14, snapshot.OverallProgress)

	store.ResetProgress(context.Background())
	snapshot = <-updates
	assert.Equal(t, 0, snapshot.OverallProgress)
}

func TestStore_SubscribeCancelClosesChannel(t *testing.T) {
	store := newTestStore(newMemSnapshots(), &countingReporter{})

	updates, cancel := store.Subscribe()
	cancel()

	_, open := <-updates
	assert.False(t, open)

	// mutating after cancel must not block or panic
	store.CompleteLesson(context.Background(), 1, nil)
}
