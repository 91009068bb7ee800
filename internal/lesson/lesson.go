package lesson

import (
	"context"

	"github.com/pot-code/scorm-courseware/internal/progress"
)

// Lesson one lesson definition in the course catalog
type Lesson struct {
	ID    int    `json:"id"`
	Index int    `json:"index"`
	Title string `json:"title"`
}

// OutlineEntry a lesson definition merged with the learner's progress
type OutlineEntry struct {
	Lesson
	Completed  bool     `json:"completed"`
	Accessible bool     `json:"accessible"`
	QuizScore  *float64 `json:"quiz_score,omitempty"`
}

type LessonRepository interface {
	GetCourseLessons(ctx context.Context) ([]*Lesson, error)
}

type LessonUseCase interface {
	GetCourseOutline(ctx context.Context, prog *progress.CourseProgress) ([]*OutlineEntry, error)
}
