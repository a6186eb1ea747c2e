package tracker

import (
	"time"

	"github.com/benbjohnson/clock"
)

// TimerState represents the lifecycle state of a countdown timer
type TimerState int

const (
	TimerIdle TimerState = iota
	TimerRunning
	TimerPaused
	TimerCompleted
)

// String returns a human-readable state name
func (s TimerState) String() string {
	switch s {
	case TimerIdle:
		return "idle"
	case TimerRunning:
		return "running"
	case TimerPaused:
		return "paused"
	case TimerCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// Timer counts down a fixed duration against wall-clock time.
// Time spent paused never counts towards elapsed time.
//
// A Timer is not safe for concurrent use; the owner synchronizes access.
type Timer struct {
	clock            clock.Clock
	start            time.Time
	started          bool
	duration         time.Duration
	pausedAt         time.Time
	paused           bool
	accumulatedPause time.Duration
	state            TimerState
}

// NewTimer creates an idle timer for the given duration
func NewTimer(duration time.Duration) *Timer {
	return NewTimerWithClock(duration, clock.New())
}

// NewTimerWithClock creates an idle timer that reads time from clk
func NewTimerWithClock(duration time.Duration, clk clock.Clock) *Timer {
	if duration < 0 {
		duration = 0
	}
	return &Timer{
		clock:    clk,
		duration: duration,
		state:    TimerIdle,
	}
}

// Start begins the countdown. Only an idle timer can be started.
func (t *Timer) Start() {
	if t.state != TimerIdle {
		return
	}
	t.start = t.clock.Now()
	t.started = true
	t.state = TimerRunning
}

// Pause freezes the countdown. Only a running timer can be paused.
func (t *Timer) Pause() {
	if t.state != TimerRunning {
		return
	}
	t.pausedAt = t.clock.Now()
	t.paused = true
	t.state = TimerPaused
}

// Resume continues a paused countdown
func (t *Timer) Resume() {
	if t.state != TimerPaused || !t.paused {
		return
	}
	t.accumulatedPause += nonNegative(t.clock.Since(t.pausedAt))
	t.pausedAt = time.Time{}
	t.paused = false
	t.state = TimerRunning
}

// Stop forces the timer into the completed state
func (t *Timer) Stop() {
	t.state = TimerCompleted
}

// Reset returns the timer to idle and clears all bookkeeping. The duration is kept.
func (t *Timer) Reset() {
	t.start = time.Time{}
	t.started = false
	t.pausedAt = time.Time{}
	t.paused = false
	t.accumulatedPause = 0
	t.state = TimerIdle
}

// Elapsed returns the running time since Start, excluding every pause
// including one that is still in progress
func (t *Timer) Elapsed() time.Duration {
	if !t.started {
		return 0
	}

	elapsed := nonNegative(t.clock.Since(t.start)) - t.accumulatedPause
	if t.state == TimerPaused && t.paused {
		elapsed -= nonNegative(t.clock.Since(t.pausedAt))
	}
	return nonNegative(elapsed)
}

// Remaining returns how much of the countdown is left
func (t *Timer) Remaining() time.Duration {
	return nonNegative(t.duration - t.Elapsed())
}

// IsExpired reports whether a running timer has used up its duration.
// A paused timer is never expired, whatever its elapsed time.
func (t *Timer) IsExpired() bool {
	return t.state == TimerRunning && t.Elapsed() >= t.duration
}

// Progress returns the completed fraction of the countdown (0.0 to 1.0)
func (t *Timer) Progress() float64 {
	if t.duration == 0 {
		return 1.0
	}
	progress := t.Elapsed().Seconds() / t.duration.Seconds()
	if progress > 1.0 {
		return 1.0
	}
	return progress
}

// State returns the externally visible state. An expired running timer
// reports completed without its stored state being changed.
func (t *Timer) State() TimerState {
	if t.IsExpired() {
		return TimerCompleted
	}
	return t.state
}

// Duration returns the total countdown length
func (t *Timer) Duration() time.Duration {
	return t.duration
}

func nonNegative(d time.Duration) time.Duration {
	if d < 0 {
		return 0
	}
	return d
}
