package http

import (
	"github.com/labstack/echo/v4"
	infra "github.com/pot-code/scorm-courseware/internal/infrastructure"
)

func v1Endpoint(
	websocket *infra.Websocket,
	UserHandler *UserHandler,
	LaunchHandler *LaunchHandler,
	ProgressHandler *ProgressHandler,
	LessonHandler *LessonHandler,
	jwtMiddleware echo.MiddlewareFunc,
	refreshMiddleware echo.MiddlewareFunc,
	requestIDMiddleware echo.MiddlewareFunc,
	traceLoggerMiddleware echo.MiddlewareFunc,
) *endpoint {
	return &endpoint{
		apiVersion:  "api/v1",
		middlewares: []echo.MiddlewareFunc{requestIDMiddleware, traceLoggerMiddleware},
		groups: []*apiGroup{
			{
				prefix: "/user",
				routes: []*route{
					{"POST", "/login", UserHandler.HandleSignIn, nil},
					{"PUT", "/sign-out", UserHandler.HandleSignOut, nil},
					{"POST", "/sign-up", UserHandler.HandleSignUp, nil},
					{"GET", "/exists", UserHandler.HandleUserExists, nil},
				},
			},
			{
				prefix: "/launch",
				routes: []*route{
					// opening carries no token in LMS mode, identity comes
					// from the runtime handshake
					{"POST", "", LaunchHandler.HandleOpenLaunch, nil},
					{"DELETE", "/:id", LaunchHandler.HandleCloseLaunch, []echo.MiddlewareFunc{jwtMiddleware}},
				},
			},
			{
				prefix:      "/progress",
				middlewares: []echo.MiddlewareFunc{jwtMiddleware, refreshMiddleware},
				routes: []*route{
					{"GET", "", ProgressHandler.HandleGetProgress, nil},
					{"POST", "/lessons/:id/complete", ProgressHandler.HandleCompleteLesson, nil},
					{"PUT", "/current", ProgressHandler.HandleSetCurrentLesson, nil},
					{"DELETE", "", ProgressHandler.HandleResetProgress, nil},
				},
			},
			{
				prefix:      "/lessons",
				middlewares: []echo.MiddlewareFunc{jwtMiddleware, refreshMiddleware},
				routes: []*route{
					{"GET", "", LessonHandler.HandleGetCourseOutline, nil},
				},
			},
			{
				prefix:      "/ws",
				middlewares: []echo.MiddlewareFunc{jwtMiddleware},
				routes: []*route{
					{"GET", "/progress", websocket.WithHeartbeat(ProgressHandler.HandleProgressStream), nil},
				},
			},
		},
	}
}
