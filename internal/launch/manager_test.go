package launch

import (
	"context"
	"fmt"
	"testing"

	"github.com/pot-code/scorm-courseware/internal/progress"
	"github.com/pot-code/scorm-courseware/internal/scorm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// lmsRuntime scorm.Runtime fake seeded with learner identity
type lmsRuntime struct {
	elements map[string]string
	finished bool
}

func newLMSRuntime(learnerID, learnerName string) *lmsRuntime {
	return &lmsRuntime{elements: map[string]string{
		scorm.ElementStudentID:   learnerID,
		scorm.ElementStudentName: learnerName,
	}}
}

func (r *lmsRuntime) Initialize(param string) string {
	return scorm.TokenTrue
}

func (r *lmsRuntime) Finish(param string) string {
	r.finished = true
	return scorm.TokenTrue
}

func (r *lmsRuntime) GetValue(element string) string {
	return r.elements[element]
}

func (r *lmsRuntime) SetValue(element, value string) string {
	r.elements[element] = value
	return scorm.TokenTrue
}

func (r *lmsRuntime) Commit(param string) string {
	return scorm.TokenTrue
}

func (r *lmsRuntime) GetLastError() string {
	return ""
}

func (r *lmsRuntime) GetErrorString(code string) string {
	return ""
}

func (r *lmsRuntime) GetDiagnostic(code string) string {
	return ""
}

// memSnapshots in-memory progress.SnapshotRepository
type memSnapshots struct {
	records map[string]*progress.CourseProgress
}

func newMemSnapshots() *memSnapshots {
	return &memSnapshots{records: make(map[string]*progress.CourseProgress)}
}

func (m *memSnapshots) Load(ctx context.Context, learnerID string) (*progress.CourseProgress, error) {
	if cp, ok := m.records[learnerID]; ok {
		return cp.Clone(), nil
	}
	return nil, nil
}

func (m *memSnapshots) Save(ctx context.Context, learnerID string, cp *progress.CourseProgress) error {
	m.records[learnerID] = cp.Clone()
	return nil
}

func (m *memSnapshots) Clear(ctx context.Context, learnerID string) error {
	delete(m.records, learnerID)
	return nil
}

// seqGenerator deterministic uuid.Generator
type seqGenerator struct {
	next int
}

func (g *seqGenerator) Generate() (string, error) {
	g.next++
	return fmt.Sprintf("launch-%d", g.next), nil
}

func newTestManager(locator Locator) *Manager {
	return NewManager(locator, newMemSnapshots(), &seqGenerator{}, 7, zap.NewNop())
}

func TestManager_OpenRequiresLearner(t *testing.T) {
	m := newTestManager(StandaloneLocator)

	_, err := m.Open(context.Background(), Identity{})
	assert.ErrorIs(t, err, ErrNoLearner)
}

func TestManager_OpenStandalone(t *testing.T) {
	m := newTestManager(StandaloneLocator)

	l, err := m.Open(context.Background(), Identity{ID: "acc-1", Name: "Jane", Source: "local"})
	require.NoError(t, err)

	assert.Equal(t, "launch-1", l.ID)
	assert.Equal(t, "acc-1", l.Learner.ID)
	assert.Equal(t, "local", l.Learner.Source)
	assert.False(t, l.Session.IsConnected())
	assert.Equal(t, 1, l.Store.Progress().CurrentLesson)
}

func TestManager_OpenResolvesLMSIdentity(t *testing.T) {
	api := newLMSRuntime("lms-042", "Doe, Jane")
	m := newTestManager(func() scorm.Runtime { return api })

	l, err := m.Open(context.Background(), Identity{ID: "acc-1", Source: "local"})
	require.NoError(t, err)

	assert.Equal(t, "lms-042", l.Learner.ID, "the LMS identity wins over the standalone one")
	assert.Equal(t, "Doe, Jane", l.Learner.Name)
	assert.Equal(t, "lms", l.Learner.Source)
}

func TestManager_OpenMarksFreshAttemptIncomplete(t *testing.T) {
	api := newLMSRuntime("lms-042", "Doe, Jane")
	m := newTestManager(func() scorm.Runtime { return api })

	_, err := m.Open(context.Background(), Identity{})
	require.NoError(t, err)
	assert.Equal(t, scorm.StatusIncomplete, api.elements[scorm.ElementLessonStatus])
}

func TestManager_OpenKeepsExistingLessonStatus(t *testing.T) {
	api := newLMSRuntime("lms-042", "Doe, Jane")
	api.elements[scorm.ElementLessonStatus] = scorm.StatusCompleted
	m := newTestManager(func() scorm.Runtime { return api })

	_, err := m.Open(context.Background(), Identity{})
	require.NoError(t, err)
	assert.Equal(t, scorm.StatusCompleted, api.elements[scorm.ElementLessonStatus])
}

func TestManager_Lookup(t *testing.T) {
	m := newTestManager(StandaloneLocator)
	l, err := m.Open(context.Background(), Identity{ID: "acc-1"})
	require.NoError(t, err)

	assert.Equal(t, l, m.Get(l.ID))
	assert.Equal(t, l, m.ForLearner("acc-1"))
	assert.Nil(t, m.Get("no-such-launch"))
	assert.Nil(t, m.ForLearner("no-such-learner"))
}

func TestManager_ReopenReplacesPreviousLaunch(t *testing.T) {
	api := newLMSRuntime("lms-042", "Doe, Jane")
	m := newTestManager(func() scorm.Runtime { return api })

	first, err := m.Open(context.Background(), Identity{})
	require.NoError(t, err)
	second, err := m.Open(context.Background(), Identity{})
	require.NoError(t, err)

	assert.Nil(t, m.Get(first.ID))
	assert.Equal(t, second, m.ForLearner("lms-042"))
	assert.False(t, first.Terminate(), "the replaced launch was already terminated")
}

func TestManager_Close(t *testing.T) {
	api := newLMSRuntime("lms-042", "Doe, Jane")
	m := newTestManager(func() scorm.Runtime { return api })
	l, err := m.Open(context.Background(), Identity{})
	require.NoError(t, err)

	found, finished := m.Close(l.ID)
	assert.True(t, found)
	assert.True(t, finished)
	assert.True(t, api.finished)
	assert.Nil(t, m.Get(l.ID))
	assert.Nil(t, m.ForLearner("lms-042"))
}

func TestManager_CloseUnknownLaunch(t *testing.T) {
	m := newTestManager(StandaloneLocator)

	found, finished := m.Close("no-such-launch")
	assert.False(t, found)
	assert.False(t, finished)
}

func TestManager_CloseReportsSessionTime(t *testing.T) {
	api := newLMSRuntime("lms-042", "Doe, Jane")
	m := newTestManager(func() scorm.Runtime { return api })
	l, err := m.Open(context.Background(), Identity{})
	require.NoError(t, err)

	m.Close(l.ID)
	assert.Regexp(t, `^\d{2,}:\d{2}:\d{2}$`, api.elements[scorm.ElementSessionTime])
}

func TestManager_Shutdown(t *testing.T) {
	api := newLMSRuntime("lms-042", "Doe, Jane")
	m := newTestManager(func() scorm.Runtime { return api })
	l, err := m.Open(context.Background(), Identity{})
	require.NoError(t, err)

	m.Shutdown()
	assert.True(t, api.finished)
	assert.Nil(t, m.Get(l.ID))
	assert.False(t, l.Terminate(), "shutdown already terminated it")
}
