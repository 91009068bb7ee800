package scorm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeRuntime records every call in order and answers from a canned element
// map. Individual verbs can be forced to fail.
type fakeRuntime struct {
	calls    []string
	elements map[string]string

	failInitialize bool
	failFinish     bool
	failCommit     bool
	failSetValue   bool
	lastError      string
}

func newFakeRuntime() *fakeRuntime {
	return &fakeRuntime{elements: make(map[string]string)}
}

func (f *fakeRuntime) answer(fail bool) string {
	if fail {
		return TokenFalse
	}
	return TokenTrue
}

func (f *fakeRuntime) Initialize(param string) string {
	f.calls = append(f.calls, "Initialize")
	return f.answer(f.failInitialize)
}

func (f *fakeRuntime) Finish(param string) string {
	f.calls = append(f.calls, "Finish")
	return f.answer(f.failFinish)
}

func (f *fakeRuntime) GetValue(element string) string {
	f.calls = append(f.calls, "GetValue:"+element)
	return f.elements[element]
}

func (f *fakeRuntime) SetValue(element, value string) string {
	f.calls = append(f.calls, "SetValue:"+element)
	if f.failSetValue {
		return TokenFalse
	}
	f.elements[element] = value
	return TokenTrue
}

func (f *fakeRuntime) Commit(param string) string {
	f.calls = append(f.calls, "Commit")
	return f.answer(f.failCommit)
}

func (f *fakeRuntime) GetLastError() string {
	return f.lastError
}

func (f *fakeRuntime) GetErrorString(code string) string {
	return ""
}

func (f *fakeRuntime) GetDiagnostic(code string) string {
	return ""
}

func activeSession(t *testing.T, api *fakeRuntime) *Session {
	t.Helper()
	session := NewSession(api, zap.NewNop())
	require.True(t, session.Initialize())
	return session
}

func TestSession_DisconnectedNeverFails(t *testing.T) {
	session := NewSession(nil, zap.NewNop())

	assert.False(t, session.IsConnected())
	assert.Equal(t, StateDisconnected, session.State())
	assert.False(t, session.Initialize())
	assert.Equal(t, "", session.GetValue(ElementLessonStatus))
	assert.False(t, session.SetValue(ElementLessonStatus, StatusCompleted))
	assert.False(t, session.Commit())
	assert.False(t, session.Terminate())
	assert.Equal(t, "", session.GetLastError())
	assert.Equal(t, "", session.GetLearnerID())
	assert.False(t, session.SetComplete())
}

func TestSession_InitializeHandshake(t *testing.T) {
	api := newFakeRuntime()
	session := NewSession(api, zap.NewNop())

	assert.Equal(t, StateUninitialized, session.State())
	assert.True(t, session.Initialize())
	assert.Equal(t, StateActive, session.State())
	assert.Equal(t, []string{"Initialize"}, api.calls)
}

func TestSession_InitializeIsIdempotent(t *testing.T) {
	api := newFakeRuntime()
	session := activeSession(t, api)

	assert.True(t, session.Initialize())
	assert.Equal(t, []string{"Initialize"}, api.calls, "the handshake must happen once")
}

func TestSession_InitializeRejected(t *testing.T) {
	api := newFakeRuntime()
	api.failInitialize = true
	session := NewSession(api, zap.NewNop())

	assert.False(t, session.Initialize())
	assert.Equal(t, StateUninitialized, session.State())
}

func TestSession_DataAccessRequiresActiveState(t *testing.T) {
	api := newFakeRuntime()
	session := NewSession(api, zap.NewNop())

	assert.False(t, session.SetValue(ElementScoreRaw, "80"))
	assert.Equal(t, "", session.GetValue(ElementScoreRaw))
	assert.False(t, session.Commit())
	assert.Empty(t, api.calls, "no runtime traffic before the handshake")
}

func TestSession_ValuesPassThroughUncoerced(t *testing.T) {
	api := newFakeRuntime()
	session := activeSession(t, api)

	require.True(t, session.SetValue(ElementScoreRaw, "87.5"))
	assert.Equal(t, "87.5", session.GetValue(ElementScoreRaw))
}

func TestSession_TerminateCommitsBeforeFinish(t *testing.T) {
	api := newFakeRuntime()
	session := activeSession(t, api)

	assert.True(t, session.Terminate())
	assert.Equal(t, StateTerminated, session.State())
	assert.Equal(t, []string{"Initialize", "Commit", "Finish"}, api.calls)
}

func TestSession_TerminateOnlyOnce(t *testing.T) {
	api := newFakeRuntime()
	session := activeSession(t, api)

	require.True(t, session.Terminate())
	assert.False(t, session.Terminate())
	assert.False(t, session.SetValue(ElementScoreRaw, "80"))
	assert.False(t, session.Initialize(), "a terminated session cannot be revived")
}

func TestSession_TerminateReportsRuntimeAnswer(t *testing.T) {
	api := newFakeRuntime()
	api.failFinish = true
	session := activeSession(t, api)

	assert.False(t, session.Terminate())
	assert.Equal(t, StateTerminated, session.State(), "terminated regardless of the answer")
}

func TestSession_LessonStatusHelpers(t *testing.T) {
	api := newFakeRuntime()
	session := activeSession(t, api)

	require.True(t, session.SetLessonStatus(StatusIncomplete))
	assert.Equal(t, StatusIncomplete, session.GetLessonStatus())
	assert.Equal(t, StatusIncomplete, api.elements[ElementLessonStatus])
}

func TestSession_SetCompleteForcesCommit(t *testing.T) {
	api := newFakeRuntime()
	session := activeSession(t, api)

	assert.True(t, session.SetComplete())
	assert.Equal(t, StatusCompleted, api.elements[ElementLessonStatus])
	assert.Equal(t, []string{"Initialize", "SetValue:" + ElementLessonStatus, "Commit"}, api.calls)
}

func TestSession_SetCompleteIgnoresCommitFailure(t *testing.T) {
	api := newFakeRuntime()
	api.failCommit = true
	session := activeSession(t, api)

	assert.True(t, session.SetComplete(), "only the status write is surfaced")
}

func TestSession_LearnerIdentity(t *testing.T) {
	api := newFakeRuntime()
	api.elements[ElementStudentID] = "learner-042"
	api.elements[ElementStudentName] = "Doe, Jane"
	session := activeSession(t, api)

	assert.Equal(t, "learner-042", session.GetLearnerID())
	assert.Equal(t, "Doe, Jane", session.GetLearnerName())
}

func TestDiscover_NoRuntimeDegradesToStandalone(t *testing.T) {
	session := Discover(&fakeFrame{}, zap.NewNop())

	assert.False(t, session.IsConnected())
	assert.Equal(t, StateDisconnected, session.State())
}

func TestDiscover_BindsLocatedRuntime(t *testing.T) {
	api := newFakeRuntime()
	session := Discover(&fakeFrame{parent: &fakeFrame{api: api}}, zap.NewNop())

	assert.True(t, session.IsConnected())
	assert.True(t, session.Initialize())
}
