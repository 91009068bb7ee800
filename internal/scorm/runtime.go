package scorm

// TokenTrue is the literal response token the runtime uses to signal success.
// Every SCORM 1.2 call is string in, string out, there are no typed results.
const (
	TokenTrue  = "true"
	TokenFalse = "false"
)

// tracked data model elements (SCORM 1.2 dot-path identifiers)
const (
	ElementLessonStatus = "cmi.core.lesson_status"
	ElementStudentID    = "cmi.core.student_id"
	ElementStudentName  = "cmi.core.student_name"
	ElementScoreRaw     = "cmi.core.score.raw"
	ElementSessionTime  = "cmi.core.session_time"
)

// cmi.core.lesson_status vocabulary
const (
	StatusNotAttempted = "not attempted"
	StatusIncomplete   = "incomplete"
	StatusCompleted    = "completed"
	StatusPassed       = "passed"
	StatusFailed       = "failed"
	StatusBrowsed      = "browsed"
)

// Runtime is the capability object provided by the hosting LMS. It is owned
// externally and discovered via the frame hierarchy, never constructed here.
type Runtime interface {
	Initialize(param string) string
	Finish(param string) string
	GetValue(element string) string
	SetValue(element, value string) string
	Commit(param string) string
	GetLastError() string
	GetErrorString(code string) string
	GetDiagnostic(code string) string
}
