package progress

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memKV in-memory driver.KeyValueDB
type memKV struct {
	records map[string]string
}

func newMemKV() *memKV {
	return &memKV{records: make(map[string]string)}
}

func (m *memKV) Set(key string, value string) error {
	m.records[key] = value
	return nil
}

func (m *memKV) SetEX(key string, value string, expiration time.Duration) error {
	return m.Set(key, value)
}

func (m *memKV) Get(key string) (string, error) {
	return m.records[key], nil
}

func (m *memKV) Del(key string) error {
	delete(m.records, key)
	return nil
}

func (m *memKV) Exists(key string) (bool, error) {
	_, ok := m.records[key]
	return ok, nil
}

func (m *memKV) Ping() error {
	return nil
}

func TestSnapshotKV_LoadAbsent(t *testing.T) {
	repo := NewSnapshotRepository(newMemKV())

	cp, err := repo.Load(context.Background(), "learner-1")
	assert.NoError(t, err)
	assert.Nil(t, cp)
}

func TestSnapshotKV_SaveLoad(t *testing.T) {
	repo := NewSnapshotRepository(newMemKV())
	saved := NewCourseProgress(7)
	score := 75.0
	applyCompletion(saved, 1, &score)

	require.NoError(t, repo.Save(context.Background(), "learner-1", saved))

	loaded, err := repo.Load(context.Background(), "learner-1")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, 2, loaded.CurrentLesson)
	assert.Equal(t, 14, loaded.OverallProgress)
	require.NotNil(t, loaded.Lessons[0].QuizScore)
	assert.Equal(t, 75.0, *loaded.Lessons[0].QuizScore)
}

func TestSnapshotKV_RecordsAreKeyedByLearner(t *testing.T) {
	repo := NewSnapshotRepository(newMemKV())
	first := NewCourseProgress(7)
	applyCompletion(first, 1, nil)

	require.NoError(t, repo.Save(context.Background(), "learner-1", first))
	require.NoError(t, repo.Save(context.Background(), "learner-2", NewCourseProgress(7)))

	loaded, err := repo.Load(context.Background(), "learner-2")
	require.NoError(t, err)
	assert.Equal(t, 0, loaded.CompletedCount())
}

func TestSnapshotKV_MalformedPayload(t *testing.T) {
	kv := newMemKV()
	kv.records[snapshotKeyPrefix+"learner-1"] = "{not json"
	repo := NewSnapshotRepository(kv)

	_, err := repo.Load(context.Background(), "learner-1")
	assert.Error(t, err)
}

func TestSnapshotKV_MalformedShape(t *testing.T) {
	kv := newMemKV()
	kv.records[snapshotKeyPrefix+"learner-1"] = `{"current_lesson":0,"lessons":[]}`
	repo := NewSnapshotRepository(kv)

	_, err := repo.Load(context.Background(), "learner-1")
	assert.Error(t, err)
}

func TestSnapshotKV_Clear(t *testing.T) {
	repo := NewSnapshotRepository(newMemKV())
	require.NoError(t, repo.Save(context.Background(), "learner-1", NewCourseProgress(7)))

	require.NoError(t, repo.Clear(context.Background(), "learner-1"))

	cp, err := repo.Load(context.Background(), "learner-1")
	assert.NoError(t, err)
	assert.Nil(t, cp)
}
