package launch

import (
	"context"
	"sync"
	"time"

	"github.com/pot-code/scorm-courseware/internal/infrastructure/uuid"
	"github.com/pot-code/scorm-courseware/internal/progress"
	"github.com/pot-code/scorm-courseware/internal/scorm"
	"go.elastic.co/apm"
	"go.uber.org/zap"
)

// Locator resolves the LMS runtime handle for a new launch. Deployments
// embedded under an LMS supply a real frame walk, the stock daemon runs
// standalone and resolves nothing.
type Locator func() scorm.Runtime

// StandaloneLocator locator for deployments with no hosting LMS
func StandaloneLocator() scorm.Runtime {
	return nil
}

// Manager owns the live launches of this process and tears every one of
// them down exactly once on shutdown.
type Manager struct {
	mu        sync.Mutex
	launches  map[string]*Launch
	byLearner map[string]*Launch

	locator     Locator
	snapshots   progress.SnapshotRepository
	idGenerator uuid.Generator
	lessonCount int
	logger      *zap.Logger
}

// NewManager ...
func NewManager(
	locator Locator,
	snapshots progress.SnapshotRepository,
	idGenerator uuid.Generator,
	lessonCount int,
	logger *zap.Logger,
) *Manager {
	return &Manager{
		launches:    make(map[string]*Launch),
		byLearner:   make(map[string]*Launch),
		locator:     locator,
		snapshots:   snapshots,
		idGenerator: idGenerator,
		lessonCount: lessonCount,
		logger:      logger,
	}
}

// Open creates a launch: discovers the runtime, initializes the SCORM
// session, resolves the learner identity (LMS first, the standalone fallback
// second) and builds the progress store on the learner's snapshot. A learner
// reopening a course replaces their previous launch, which is terminated.
func (m *Manager) Open(ctx context.Context, standalone Identity) (*Launch, error) {
	apmSpan, _ := apm.StartSpan(ctx, "Manager.Open", "service")
	defer apmSpan.End()

	session := scorm.NewSession(m.locator(), m.logger)
	learner := m.resolveLearner(session, standalone)
	if learner.ID == "" {
		return nil, ErrNoLearner
	}

	store := progress.NewStore(ctx, learner.ID, m.lessonCount, m.snapshots, session, m.logger)
	id, err := m.idGenerator.Generate()
	if err != nil {
		return nil, err
	}

	l := &Launch{
		ID:        id,
		Learner:   learner,
		Session:   session,
		Store:     store,
		StartedAt: time.Now(),
	}

	m.mu.Lock()
	prev := m.byLearner[learner.ID]
	m.launches[id] = l
	m.byLearner[learner.ID] = l
	m.mu.Unlock()

	if prev != nil {
		m.logger.Info("Replacing previous launch for learner",
			zap.String("learner.id", learner.ID), zap.String("launch.id", prev.ID))
		prev.Terminate()
		m.mu.Lock()
		delete(m.launches, prev.ID)
		m.mu.Unlock()
	}
	return l, nil
}

// resolveLearner prefers the identity the LMS reports. The handshake here is
// safe: Initialize is idempotent, the store triggers it again on creation.
func (m *Manager) resolveLearner(session *scorm.Session, standalone Identity) Identity {
	learner := standalone
	if !session.Initialize() {
		return learner
	}
	if id := session.GetLearnerID(); id != "" {
		learner.ID = id
		learner.Name = session.GetLearnerName()
		learner.Source = "lms"
	}
	// a fresh attempt is marked in progress right away
	if st := session.GetLessonStatus(); st == "" || st == scorm.StatusNotAttempted {
		session.SetLessonStatus(scorm.StatusIncomplete)
	}
	return learner
}

// Get look up a launch by ID
func (m *Manager) Get(id string) *Launch {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.launches[id]
}

// ForLearner look up the learner's active launch
func (m *Manager) ForLearner(learnerID string) *Launch {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.byLearner[learnerID]
}

// Close terminates a launch and drops it. Reports whether the LMS
// acknowledged the finish request.
func (m *Manager) Close(id string) (bool, bool) {
	m.mu.Lock()
	l, found := m.launches[id]
	if found {
		delete(m.launches, id)
		if m.byLearner[l.Learner.ID] == l {
			delete(m.byLearner, l.Learner.ID)
		}
	}
	m.mu.Unlock()

	if !found {
		return false, false
	}
	return true, l.Terminate()
}

// Shutdown terminates every live launch, the process-exit counterpart of the
// page unload hook
func (m *Manager) Shutdown() {
	m.mu.Lock()
	live := make([]*Launch, 0, len(m.launches))
	for _, l := range m.launches {
		live = append(live, l)
	}
	m.launches = make(map[string]*Launch)
	m.byLearner = make(map[string]*Launch)
	m.mu.Unlock()

	for _, l := range live {
		l.Terminate()
	}
	if len(live) > 0 {
		m.logger.Info("Terminated live launches on shutdown", zap.Int("launch.count", len(live)))
	}
}
