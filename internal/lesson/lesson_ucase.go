package lesson

import (
	"context"
	"fmt"

	"github.com/pot-code/scorm-courseware/internal/progress"
	"go.elastic.co/apm"
)

// LessonUseCaseImpl ...
type LessonUseCaseImpl struct {
	LessonRepository LessonRepository
}

var _ LessonUseCase = &LessonUseCaseImpl{}

// NewLessonUseCase ...
func NewLessonUseCase(
	LessonRepository LessonRepository,
) *LessonUseCaseImpl {
	return &LessonUseCaseImpl{LessonRepository}
}

// GetCourseOutline merge the catalog with the learner's completion state and
// the accessibility gate. When the catalog table is empty a placeholder
// catalog matching the progress shape is generated instead.
func (lu *LessonUseCaseImpl) GetCourseOutline(ctx context.Context, prog *progress.CourseProgress) ([]*OutlineEntry, error) {
	apmSpan, _ := apm.StartSpan(ctx, "LessonUseCaseImpl.GetCourseOutline", "service")
	defer apmSpan.End()

	lessons, err := lu.LessonRepository.GetCourseLessons(ctx)
	if err != nil {
		return nil, err
	}
	if len(lessons) == 0 {
		lessons = placeholderCatalog(len(prog.Lessons))
	}

	outline := make([]*OutlineEntry, 0, len(lessons))
	for i, l := range lessons {
		entry := &OutlineEntry{
			Lesson:     *l,
			Accessible: prog.IsLessonAccessible(i + 1),
		}
		if i < len(prog.Lessons) {
			entry.Completed = prog.Lessons[i].Completed
			entry.QuizScore = prog.Lessons[i].QuizScore
		}
		outline = append(outline, entry)
	}
	return outline, nil
}

func placeholderCatalog(count int) []*Lesson {
	lessons := make([]*Lesson, count)
	for i := range lessons {
		lessons[i] = &Lesson{
			ID:    i + 1,
			Index: i + 1,
			Title: fmt.Sprintf("Lesson %d", i+1),
		}
	}
	return lessons
}
