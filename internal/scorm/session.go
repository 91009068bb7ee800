package scorm

import (
	"sync"

	"go.uber.org/zap"
)

// State session lifecycle state
type State int

const (
	// StateDisconnected no runtime handle was discovered, all operations degrade to no-ops
	StateDisconnected State = iota
	// StateUninitialized a handle exists but the handshake has not happened yet
	StateUninitialized
	// StateActive handshake succeeded, data access is permitted
	StateActive
	// StateTerminated the finish request was issued, the session is over
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateUninitialized:
		return "uninitialized"
	case StateActive:
		return "active"
	case StateTerminated:
		return "terminated"
	}
	return "unknown"
}

// Session wraps the discovered LMS runtime behind a typed, fail-safe surface.
// Every operation returns a definite value even when no LMS is present, which
// is the contract that keeps the course usable in standalone preview mode.
// No error is ever raised across this boundary.
type Session struct {
	mu     sync.Mutex
	api    Runtime
	state  State
	logger *zap.Logger
}

// NewSession builds a session on an already resolved runtime handle. A nil
// handle produces a permanently disconnected session.
func NewSession(api Runtime, logger *zap.Logger) *Session {
	state := StateDisconnected
	if api != nil {
		state = StateUninitialized
	}
	return &Session{
		api:    api,
		state:  state,
		logger: logger,
	}
}

// Discover resolves the runtime handle from the given frame hierarchy and
// builds a session on it. Locate semantics, see locator.go.
func Discover(root Frame, logger *zap.Logger) *Session {
	api := Locate(root)
	if api == nil {
		logger.Warn("No LMS runtime found in the frame hierarchy, running standalone")
	}
	return NewSession(api, logger)
}

// IsConnected reports whether a runtime handle was discovered
func (s *Session) IsConnected() bool {
	return s.api != nil
}

// State returns the current lifecycle state
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Initialize issues the handshake request. Idempotent: returns success without
// a runtime call if the session is already active. Returns failure when
// disconnected or already terminated.
func (s *Session) Initialize() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case StateActive:
		return true
	case StateDisconnected:
		s.logger.Warn("Initialize called without an LMS runtime")
		return false
	case StateTerminated:
		return false
	}

	if s.api.Initialize("") != TokenTrue {
		s.logger.Warn("LMS rejected the initialize handshake",
			zap.String("scorm.error", s.api.GetLastError()))
		return false
	}
	s.state = StateActive
	return true
}

// GetValue reads a tracked element. Returns the empty string with no side
// effect unless the session is active.
func (s *Session) GetValue(element string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getValue(element)
}

// SetValue writes a tracked element. Returns false with no side effect unless
// the session is active. Values pass through as raw strings, no coercion.
func (s *Session) SetValue(element, value string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setValue(element, value)
}

// Commit asks the runtime to persist any buffered data
func (s *Session) Commit() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commit()
}

// Terminate commits buffered data, then issues the finish request. The
// session transitions to terminated regardless of what the runtime reports;
// the return value reflects the runtime's answer to the finish request.
// Calling Terminate again afterwards is a no-op returning false.
func (s *Session) Terminate() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateActive {
		return false
	}
	// save-before-exit guarantee
	s.api.Commit("")
	ok := s.api.Finish("") == TokenTrue
	s.state = StateTerminated
	if !ok {
		s.logger.Warn("LMS reported failure on finish",
			zap.String("scorm.error", s.api.GetLastError()))
	}
	return ok
}

// SetLessonStatus writes cmi.core.lesson_status
func (s *Session) SetLessonStatus(status string) bool {
	return s.SetValue(ElementLessonStatus, status)
}

// GetLessonStatus reads cmi.core.lesson_status
func (s *Session) GetLessonStatus() string {
	return s.GetValue(ElementLessonStatus)
}

// SetComplete marks the course completed and forces a commit. The return
// value reflects the status write only, a failed commit is not surfaced.
func (s *Session) SetComplete() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	ok := s.setValue(ElementLessonStatus, StatusCompleted)
	s.commit()
	return ok
}

// GetLearnerName reads cmi.core.student_name
func (s *Session) GetLearnerName() string {
	return s.GetValue(ElementStudentName)
}

// GetLearnerID reads cmi.core.student_id
func (s *Session) GetLearnerID() string {
	return s.GetValue(ElementStudentID)
}

// GetLastError proxies the runtime's last-error accessor. Returns the empty
// string when no runtime handle exists.
func (s *Session) GetLastError() string {
	if s.api == nil {
		return ""
	}
	return s.api.GetLastError()
}

func (s *Session) getValue(element string) string {
	if s.state != StateActive {
		return ""
	}
	return s.api.GetValue(element)
}

func (s *Session) setValue(element, value string) bool {
	if s.state != StateActive {
		return false
	}
	return s.api.SetValue(element, value) == TokenTrue
}

func (s *Session) commit() bool {
	if s.state != StateActive {
		return false
	}
	return s.api.Commit("") == TokenTrue
}
