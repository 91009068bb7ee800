package progress

import (
	"context"
	"math"
)

// DefaultLessonCount number of lesson slots in the stock course
const DefaultLessonCount = 7

// LessonProgress completion state of a single lesson slot. Slots are created
// at store initialization for every lesson and never deleted individually.
type LessonProgress struct {
	LessonID  int      `json:"lesson_id"`
	Completed bool     `json:"completed"`
	QuizScore *float64 `json:"quiz_score,omitempty"`
}

// CourseProgress the persisted snapshot shape. OverallProgress is derived
// from the completed count and is never set independently.
type CourseProgress struct {
	CurrentLesson   int               `json:"current_lesson"`
	Lessons         []*LessonProgress `json:"lessons"`
	OverallProgress int               `json:"overall_progress"`
}

// NewCourseProgress canonical initial state: lesson 1 current, every slot
// incomplete, zero percent
func NewCourseProgress(lessonCount int) *CourseProgress {
	if lessonCount < 1 {
		lessonCount = DefaultLessonCount
	}
	lessons := make([]*LessonProgress, lessonCount)
	for i := range lessons {
		lessons[i] = &LessonProgress{LessonID: i + 1}
	}
	return &CourseProgress{
		CurrentLesson: 1,
		Lessons:       lessons,
	}
}

// CompletedCount number of completed lesson slots
func (cp *CourseProgress) CompletedCount() int {
	count := 0
	for _, l := range cp.Lessons {
		if l.Completed {
			count++
		}
	}
	return count
}

// IsFullyCompleted reports whether every lesson slot is completed
func (cp *CourseProgress) IsFullyCompleted() bool {
	return len(cp.Lessons) > 0 && cp.CompletedCount() == len(cp.Lessons)
}

// IsLessonAccessible lesson 1 is always accessible, any later lesson is
// accessible iff its predecessor is completed. Advisory only, mutators do
// not enforce it.
func (cp *CourseProgress) IsLessonAccessible(lessonID int) bool {
	if lessonID == 1 {
		return true
	}
	if lessonID < 1 || lessonID > len(cp.Lessons) {
		return false
	}
	return cp.Lessons[lessonID-2].Completed
}

// Clone deep copy, handlers hold snapshots outside the store lock
func (cp *CourseProgress) Clone() *CourseProgress {
	lessons := make([]*LessonProgress, len(cp.Lessons))
	for i, l := range cp.Lessons {
		copied := *l
		if l.QuizScore != nil {
			score := *l.QuizScore
			copied.QuizScore = &score
		}
		lessons[i] = &copied
	}
	return &CourseProgress{
		CurrentLesson:   cp.CurrentLesson,
		Lessons:         lessons,
		OverallProgress: cp.OverallProgress,
	}
}

// applyCompletion is the pure state transition behind CompleteLesson: marks
// the matching slot, recomputes the percentage and advances the current
// lesson unless the completed one was last. Reports whether the course is
// fully completed after the mutation.
func applyCompletion(cp *CourseProgress, lessonID int, quizScore *float64) bool {
	for _, l := range cp.Lessons {
		if l.LessonID == lessonID {
			l.Completed = true
			if quizScore != nil {
				score := *quizScore
				l.QuizScore = &score
			}
		}
	}
	recomputeOverall(cp)
	if lessonID >= 1 && lessonID < len(cp.Lessons) {
		cp.CurrentLesson = lessonID + 1
	}
	return cp.IsFullyCompleted()
}

// recomputeOverall maintains the invariant
// OverallProgress == round(100 * completed / N)
func recomputeOverall(cp *CourseProgress) {
	if len(cp.Lessons) == 0 {
		cp.OverallProgress = 0
		return
	}
	cp.OverallProgress = int(math.Round(float64(cp.CompletedCount()) * 100 / float64(len(cp.Lessons))))
}

// SnapshotRepository durable storage for a learner's serialized course
// progress, one record per learner under a fixed key.
type SnapshotRepository interface {
	// Load returns (nil, nil) when no snapshot exists. A malformed snapshot
	// is an error, callers fall back to the canonical initial state.
	Load(ctx context.Context, learnerID string) (*CourseProgress, error)
	Save(ctx context.Context, learnerID string, cp *CourseProgress) error
	Clear(ctx context.Context, learnerID string) error
}

// CompletionReporter the SCORM surface the store drives: the handshake once
// at construction, and the completion report when the course reaches 100%.
type CompletionReporter interface {
	Initialize() bool
	SetComplete() bool
}
