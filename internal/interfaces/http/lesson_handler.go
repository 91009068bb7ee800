package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pot-code/scorm-courseware/internal/infrastructure/auth"
	"github.com/pot-code/scorm-courseware/internal/launch"
	"github.com/pot-code/scorm-courseware/internal/lesson"
)

// LessonHandler course outline reads
type LessonHandler struct {
	lessonUseCase lesson.LessonUseCase
	manager       *launch.Manager
	jwtUtil       *auth.JWTUtil
}

// NewLessonHandler create a lesson controller instance
func NewLessonHandler(LessonUseCase lesson.LessonUseCase, Manager *launch.Manager, JWTUtil *auth.JWTUtil) *LessonHandler {
	return &LessonHandler{lessonUseCase: LessonUseCase, manager: Manager, jwtUtil: JWTUtil}
}

// HandleGetCourseOutline return the lesson catalog merged with the learner's
// completion and accessibility flags
func (lh *LessonHandler) HandleGetCourseOutline(c echo.Context) (err error) {
	claims := lh.jwtUtil.GetContextToken(c)
	l := lh.manager.ForLearner(claims.UID)
	if l == nil {
		return c.JSON(http.StatusConflict,
			NewRESTStandardError(http.StatusConflict, "No active launch, open one first"))
	}

	outline, err := lh.lessonUseCase.GetCourseOutline(c.Request().Context(), l.Store.Progress())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, outline)
}
