package launch

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/pot-code/scorm-courseware/internal/progress"
	"github.com/pot-code/scorm-courseware/internal/scorm"
)

// ErrNoLearner launch rejected because neither the LMS nor a standalone
// sign-in provided a learner identity
var ErrNoLearner = errors.New("No learner identity available for this launch")

// Identity resolved learner identity and where it came from
type Identity struct {
	ID     string
	Name   string
	Source string
}

// Launch one course launch: a SCORM session plus the learner's progress
// store. One launch per page load, torn down exactly once.
type Launch struct {
	ID        string
	Learner   Identity
	Session   *scorm.Session
	Store     *progress.Store
	StartedAt time.Time

	closeOnce sync.Once
}

// Terminate reports accumulated session time, then commits and finishes the
// SCORM session. Guarded so repeated calls are no-ops returning false.
func (l *Launch) Terminate() bool {
	ok := false
	l.closeOnce.Do(func() {
		l.Session.SetValue(scorm.ElementSessionTime, FormatSessionTime(time.Since(l.StartedAt)))
		ok = l.Session.Terminate()
	})
	return ok
}

// FormatSessionTime render d in the HH:MM:SS form mandated for
// cmi.core.session_time
func FormatSessionTime(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d.Seconds())
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, (total/60)%60, total%60)
}
