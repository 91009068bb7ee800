package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pot-code/scorm-courseware/internal/infrastructure/auth"
	"github.com/pot-code/scorm-courseware/internal/launch"
	"github.com/pot-code/scorm-courseware/internal/progress"
)

// LaunchHandler course launch lifecycle
type LaunchHandler struct {
	manager *launch.Manager
	jwtUtil *auth.JWTUtil
}

// NewLaunchHandler create a launch controller instance
func NewLaunchHandler(Manager *launch.Manager, JWTUtil *auth.JWTUtil) *LaunchHandler {
	return &LaunchHandler{manager: Manager, jwtUtil: JWTUtil}
}

type launchResponse struct {
	LaunchID  string                   `json:"launch_id"`
	Connected bool                     `json:"connected"`
	Learner   launchLearner            `json:"learner"`
	Progress  *progress.CourseProgress `json:"progress"`
}

type launchLearner struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Source string `json:"source"`
}

// HandleOpenLaunch open a course launch. When an LMS runtime is reachable
// the learner identity comes from it, otherwise it falls back to the signed-in
// account carried by the session cookie.
func (lh *LaunchHandler) HandleOpenLaunch(c echo.Context) (err error) {
	ju := lh.jwtUtil

	var standalone launch.Identity
	if tokenStr, err := ju.ExtractToken(c); err == nil {
		if claims, err := ju.Validate(tokenStr); err == nil {
			standalone = launch.Identity{ID: claims.UID, Name: claims.Name, Source: claims.Source}
		}
	}

	l, err := lh.manager.Open(c.Request().Context(), standalone)
	if err != nil {
		if errors.Is(err, launch.ErrNoLearner) {
			return c.JSON(http.StatusUnauthorized,
				NewRESTStandardError(http.StatusUnauthorized, err.Error()))
		}
		return err
	}

	// an LMS resolved identity has no cookie yet, issue one so the progress
	// API can authorize subsequent calls
	if l.Learner.Source == auth.SourceLMS {
		tokenStr, err := ju.GenerateTokenStr(l.Learner.ID, l.Learner.Name, l.Learner.Source)
		if err != nil {
			return err
		}
		ju.SetClientToken(c, tokenStr)
	}

	return c.JSON(http.StatusCreated, &launchResponse{
		LaunchID:  l.ID,
		Connected: l.Session.IsConnected(),
		Learner:   launchLearner{ID: l.Learner.ID, Name: l.Learner.Name, Source: l.Learner.Source},
		Progress:  l.Store.Progress(),
	})
}

// HandleCloseLaunch terminate a launch by ID
func (lh *LaunchHandler) HandleCloseLaunch(c echo.Context) (err error) {
	id := c.Param("id")
	found, finished := lh.manager.Close(id)
	if !found {
		return c.JSON(http.StatusNotFound,
			NewRESTStandardError(http.StatusNotFound, "No such launch"))
	}
	return c.JSON(http.StatusOK, echo.Map{"finished": finished})
}
