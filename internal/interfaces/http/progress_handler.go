package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/pot-code/scorm-courseware/internal/infrastructure/auth"
	"github.com/pot-code/scorm-courseware/internal/launch"
	"github.com/pot-code/scorm-courseware/internal/scorm"
)

// ProgressHandler progress reads and mutations for the learner's active launch
type ProgressHandler struct {
	manager *launch.Manager
	jwtUtil *auth.JWTUtil
}

// NewProgressHandler create a progress controller instance
func NewProgressHandler(Manager *launch.Manager, JWTUtil *auth.JWTUtil) *ProgressHandler {
	return &ProgressHandler{manager: Manager, jwtUtil: JWTUtil}
}

// activeLaunch resolves the learner's live launch. Progress calls without an
// open launch are a client sequencing error.
func (ph *ProgressHandler) activeLaunch(c echo.Context) (*launch.Launch, error) {
	claims := ph.jwtUtil.GetContextToken(c)
	l := ph.manager.ForLearner(claims.UID)
	if l == nil {
		return nil, c.JSON(http.StatusConflict,
			NewRESTStandardError(http.StatusConflict, "No active launch, open one first"))
	}
	return l, nil
}

// HandleGetProgress ...
func (ph *ProgressHandler) HandleGetProgress(c echo.Context) (err error) {
	l, err := ph.activeLaunch(c)
	if l == nil {
		return err
	}
	return c.JSON(http.StatusOK, l.Store.Progress())
}

type completeLessonRequest struct {
	QuizScore *float64 `json:"quiz_score"`
}

// HandleCompleteLesson mark the lesson in the path completed, optionally
// recording a quiz score from the body
func (ph *ProgressHandler) HandleCompleteLesson(c echo.Context) (err error) {
	l, err := ph.activeLaunch(c)
	if l == nil {
		return err
	}

	lessonID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest,
			NewRESTStandardError(http.StatusBadRequest, "Lesson ID must be an integer"))
	}

	post := new(completeLessonRequest)
	if err = c.Bind(post); err != nil {
		internal := err.(*echo.HTTPError).Internal
		return c.JSON(http.StatusUnprocessableEntity,
			NewRESTStandardError(http.StatusUnprocessableEntity, internal.Error()))
	}

	snapshot := l.Store.CompleteLesson(c.Request().Context(), lessonID, post.QuizScore)
	if post.QuizScore != nil {
		// best-effort score report, the LMS may not track raw scores
		l.Session.SetValue(scorm.ElementScoreRaw, strconv.FormatFloat(*post.QuizScore, 'f', -1, 64))
	}
	return c.JSON(http.StatusOK, snapshot)
}

type setCurrentLessonRequest struct {
	LessonID int `json:"lesson_id"`
}

// HandleSetCurrentLesson move the learner to another lesson. Locked lessons
// are rejected, see the sequential unlock rule on the progress model.
func (ph *ProgressHandler) HandleSetCurrentLesson(c echo.Context) (err error) {
	l, err := ph.activeLaunch(c)
	if l == nil {
		return err
	}

	post := new(setCurrentLessonRequest)
	if err = c.Bind(post); err != nil {
		internal := err.(*echo.HTTPError).Internal
		return c.JSON(http.StatusUnprocessableEntity,
			NewRESTStandardError(http.StatusUnprocessableEntity, internal.Error()))
	}
	if !l.Store.IsLessonAccessible(post.LessonID) {
		return c.JSON(http.StatusForbidden,
			NewRESTStandardError(http.StatusForbidden, "Lesson is locked"))
	}

	snapshot := l.Store.SetCurrentLesson(c.Request().Context(), post.LessonID)
	return c.JSON(http.StatusOK, snapshot)
}

// HandleResetProgress ...
func (ph *ProgressHandler) HandleResetProgress(c echo.Context) (err error) {
	l, err := ph.activeLaunch(c)
	if l == nil {
		return err
	}
	return c.JSON(http.StatusOK, l.Store.ResetProgress(c.Request().Context()))
}

// HandleProgressStream push a progress snapshot to the client after every
// mutation until the connection drops
func (ph *ProgressHandler) HandleProgressStream(c echo.Context, conn *websocket.Conn) error {
	claims := ph.jwtUtil.GetContextToken(c)
	l := ph.manager.ForLearner(claims.UID)
	if l == nil {
		return websocket.ErrCloseSent
	}

	updates, cancel := l.Store.Subscribe()
	defer cancel()

	// seed the client with the current state
	conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	if err := conn.WriteJSON(l.Store.Progress()); err != nil {
		return err
	}
	for snapshot := range updates {
		conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
		if err := conn.WriteJSON(snapshot); err != nil {
			return err
		}
	}
	return websocket.ErrCloseSent
}
