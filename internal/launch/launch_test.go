package launch

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatSessionTime(t *testing.T) {
	assert.Equal(t, "00:00:00", FormatSessionTime(0))
	assert.Equal(t, "00:00:00", FormatSessionTime(-5*time.Second))
	assert.Equal(t, "00:00:42", FormatSessionTime(42*time.Second))
	assert.Equal(t, "01:02:03", FormatSessionTime(time.Hour+2*time.Minute+3*time.Second))
	assert.Equal(t, "25:00:00", FormatSessionTime(25*time.Hour))
}
