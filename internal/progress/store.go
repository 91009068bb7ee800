package progress

import (
	"context"
	"sync"

	"go.elastic.co/apm"
	"go.uber.org/zap"
)

// Store single source of truth for course navigation and completion state.
// Mutations persist the full snapshot synchronously and best-effort: a
// storage failure is logged, not surfaced, matching the fail-soft contract
// of the SCORM layer underneath.
type Store struct {
	mu          sync.Mutex
	state       *CourseProgress
	subscribers []chan *CourseProgress

	learnerID string
	snapshots SnapshotRepository
	reporter  CompletionReporter
	logger    *zap.Logger
}

// NewStore loads the learner's persisted snapshot, falling back to the
// canonical initial state when the snapshot is absent or malformed.
// Separately and unconditionally it triggers the SCORM handshake once.
func NewStore(
	ctx context.Context,
	learnerID string,
	lessonCount int,
	snapshots SnapshotRepository,
	reporter CompletionReporter,
	logger *zap.Logger,
) *Store {
	state, err := snapshots.Load(ctx, learnerID)
	if err != nil {
		logger.Warn("Discarding unusable progress snapshot",
			zap.String("learner.id", learnerID), zap.Error(err))
		state = nil
	}
	if state == nil {
		state = NewCourseProgress(lessonCount)
	}

	reporter.Initialize()

	return &Store{
		state:     state,
		learnerID: learnerID,
		snapshots: snapshots,
		reporter:  reporter,
		logger:    logger,
	}
}

// Progress returns a snapshot of the current state
func (s *Store) Progress() *CourseProgress {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// CompleteLesson marks the matching lesson completed, records the optional
// quiz score, recomputes the overall percentage and advances the current
// lesson unless the completed one was last. When every lesson is completed
// after the mutation the completion report is sent to the SCORM layer.
func (s *Store) CompleteLesson(ctx context.Context, lessonID int, quizScore *float64) *CourseProgress {
	apmSpan, _ := apm.StartSpan(ctx, "Store.CompleteLesson", "service")
	defer apmSpan.End()

	s.mu.Lock()
	courseDone := applyCompletion(s.state, lessonID, quizScore)
	snapshot := s.state.Clone()
	s.mu.Unlock()

	s.persist(ctx, snapshot)
	if courseDone {
		if !s.reporter.SetComplete() {
			s.logger.Warn("Course completion was not acknowledged by the LMS",
				zap.String("learner.id", s.learnerID))
		}
	}
	s.notify(snapshot)
	return snapshot
}

// SetCurrentLesson overwrites the current lesson unconditionally. Bounds and
// accessibility checks are the caller's responsibility, see IsLessonAccessible.
func (s *Store) SetCurrentLesson(ctx context.Context, lessonID int) *CourseProgress {
	apmSpan, _ := apm.StartSpan(ctx, "Store.SetCurrentLesson", "service")
	defer apmSpan.End()

	s.mu.Lock()
	s.state.CurrentLesson = lessonID
	snapshot := s.state.Clone()
	s.mu.Unlock()

	s.persist(ctx, snapshot)
	s.notify(snapshot)
	return snapshot
}

// ResetProgress restores the canonical initial state and clears the
// persisted snapshot
func (s *Store) ResetProgress(ctx context.Context) *CourseProgress {
	apmSpan, _ := apm.StartSpan(ctx, "Store.ResetProgress", "service")
	defer apmSpan.End()

	s.mu.Lock()
	s.state = NewCourseProgress(len(s.state.Lessons))
	snapshot := s.state.Clone()
	s.mu.Unlock()

	if err := s.snapshots.Clear(ctx, s.learnerID); err != nil {
		s.logger.Error("Failed to clear progress snapshot",
			zap.String("learner.id", s.learnerID), zap.Error(err))
	}
	s.notify(snapshot)
	return snapshot
}

// IsLessonAccessible see CourseProgress.IsLessonAccessible
func (s *Store) IsLessonAccessible(lessonID int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.IsLessonAccessible(lessonID)
}

// Subscribe returns a channel receiving a snapshot after every mutation and
// a cancel function releasing it. Slow receivers drop updates instead of
// blocking mutators.
func (s *Store) Subscribe() (<-chan *CourseProgress, func()) {
	ch := make(chan *CourseProgress, 8)

	s.mu.Lock()
	s.subscribers = append(s.subscribers, ch)
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, sub := range s.subscribers {
			if sub == ch {
				s.subscribers = append(s.subscribers[:i], s.subscribers[i+1:]...)
				close(ch)
				return
			}
		}
	}
	return ch, cancel
}

func (s *Store) persist(ctx context.Context, snapshot *CourseProgress) {
	if err := s.snapshots.Save(ctx, s.learnerID, snapshot); err != nil {
		s.logger.Error("Failed to persist progress snapshot",
			zap.String("learner.id", s.learnerID), zap.Error(err))
	}
}

func (s *Store) notify(snapshot *CourseProgress) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sub := range s.subscribers {
		select {
		case sub <- snapshot:
		default:
		}
	}
}
