package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatClock(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{25 * time.Minute, "25:00"},
		{90 * time.Second, "01:30"},
		{1500 * time.Millisecond, "00:02"},
		{0, "00:00"},
		{-time.Second, "00:00"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatClock(tt.in), tt.in.String())
	}
}

func TestStatusLine(t *testing.T) {
	c, _, _ := newTestController(t, testSettings())
	assert.Equal(t, "[focus] idle 25:00 (0%) sessions=0", c.Status().Line())

	c.SkipToBreak()
	assert.Contains(t, c.Status().Line(), "choose activity 1-4 [1]")

	c.SelectBreakOption(OptionCoherent)
	line := c.Status().Line()
	assert.Contains(t, line, "[break] running 05:00")
	assert.Contains(t, line, "Coherent Breathing (5-5) Breathe In cycle 1/6")

	c.ToggleTimer()
	assert.Contains(t, c.Status().Line(), "paused: 1 resume, 2 change activity, 3 reset [1]")

	c.PressNumber(PauseMenuReset)
	c.PressSpace()
	assert.Contains(t, c.Status().Line(), "reset? y/n")
}
