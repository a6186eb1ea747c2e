package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pomotimer/internal/models"
	"pomotimer/internal/tracker"
)

const tick = 100 * time.Millisecond

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) record(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) types() []EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	types := make([]EventType, 0, len(r.events))
	for _, e := range r.events {
		types = append(types, e.Type)
	}
	return types
}

func (r *recorder) last() Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.events[len(r.events)-1]
}

func testSettings() Settings {
	return Settings{
		Focus:            25 * time.Minute,
		ShortBreak:       5 * time.Minute,
		LongBreak:        15 * time.Minute,
		LongBreakEvery:   4,
		TickInterval:     tick,
		BreathingEnabled: true,
		BreathingPattern: tracker.PatternExtendedExhale,
	}
}

func newTestController(t *testing.T, settings Settings) (*Controller, *clock.Mock, *recorder) {
	t.Helper()
	mock := clock.NewMock()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	c := NewController(settings, WithClock(mock), WithLogger(logger))
	rec := &recorder{}
	c.AddEventCallback(rec.record)
	return c, mock, rec
}

func ticks(c *Controller, n int) {
	for i := 0; i < n; i++ {
		c.Tick(tick)
	}
}

func TestSettingsFromConfig(t *testing.T) {
	cfg := models.DefaultConfig()
	cfg.Breathing.DurationSeconds = 90

	s := SettingsFromConfig(cfg)
	assert.Equal(t, 25*time.Minute, s.Focus)
	assert.Equal(t, 5*time.Minute, s.ShortBreak)
	assert.Equal(t, 15*time.Minute, s.LongBreak)
	assert.Equal(t, 4, s.LongBreakEvery)
	assert.Equal(t, tracker.PatternExtendedExhale, s.BreathingPattern)
	assert.Equal(t, 90*time.Second, s.BreathingDuration)
}

func TestNewControllerStartsIdleFocus(t *testing.T) {
	c, _, _ := newTestController(t, testSettings())

	s := c.Status()
	assert.Equal(t, ModeFocus, s.Mode)
	assert.Equal(t, tracker.TimerIdle, s.TimerState)
	assert.Equal(t, 25*time.Minute, s.Remaining)
	assert.Equal(t, 0, s.SessionCount)
	assert.NotEmpty(t, s.SessionID)
	assert.Nil(t, s.Breathing)
}

func TestFocusCompletionStartsShortBreak(t *testing.T) {
	c, mock, rec := newTestController(t, testSettings())

	c.ToggleTimer()
	assert.Equal(t, tracker.TimerRunning, c.Status().TimerState)

	mock.Add(25 * time.Minute)
	c.Tick(tick)

	s := c.Status()
	assert.Equal(t, tracker.TimerCompleted, s.TimerState)
	assert.Equal(t, 1, s.SessionCount)
	assert.Equal(t, []EventType{EventFocusCompleted}, rec.types())
	focusID := s.SessionID

	c.ToggleTimer()
	s = c.Status()
	assert.Equal(t, ModeBreak, s.Mode)
	assert.Equal(t, tracker.TimerIdle, s.TimerState)
	assert.Equal(t, 5*time.Minute, s.Duration)
	assert.True(t, s.Selecting)
	assert.Equal(t, OptionSimple, s.SelectedOption)
	assert.NotEqual(t, focusID, s.SessionID)
	assert.Equal(t, EventBreakStarted, rec.last().Type)
}

func TestPauseStopsBreathingProgress(t *testing.T) {
	c, _, _ := newTestController(t, testSettings())
	c.SkipToBreak()
	c.SelectBreakOption(OptionSimple)

	ticks(c, 10)
	before := c.Status().Breathing.PhaseProgress

	c.ToggleTimer()
	assert.Equal(t, tracker.TimerPaused, c.Status().TimerState)
	ticks(c, 10)
	assert.Equal(t, before, c.Status().Breathing.PhaseProgress)

	c.PressSpace()
	assert.Equal(t, tracker.TimerRunning, c.Status().TimerState)
}

func TestEveryFourthBreakIsLong(t *testing.T) {
	c, _, rec := newTestController(t, testSettings())

	for i := 1; i <= 4; i++ {
		c.SkipToBreak()
		s := c.Status()
		require.Equal(t, i, s.SessionCount)
		if i == 4 {
			assert.Equal(t, 15*time.Minute, s.Duration)
			assert.True(t, s.LongBreakPending)
			assert.Equal(t, EventLongBreakStarted, rec.last().Type)
		} else {
			assert.Equal(t, 5*time.Minute, s.Duration)
			assert.Equal(t, EventBreakStarted, rec.last().Type)
		}
		c.SkipBreak()
		assert.Equal(t, ModeFocus, c.Status().Mode)
	}
}

func TestShortenAndExtendBreak(t *testing.T) {
	c, _, _ := newTestController(t, testSettings())

	c.SkipToBreak()
	c.ShortenBreak()
	assert.False(t, c.Status().BreakWasShortened, "short breaks cannot be shortened")
	c.ExtendBreak()
	assert.Equal(t, 5*time.Minute, c.Status().Duration)
	c.SkipBreak()

	for i := 0; i < 3; i++ {
		c.SkipToBreak()
		if i < 2 {
			c.SkipBreak()
		}
	}
	require.Equal(t, 15*time.Minute, c.Status().Duration)

	c.ShortenBreak()
	s := c.Status()
	assert.Equal(t, 5*time.Minute, s.Duration)
	assert.True(t, s.BreakWasShortened)
	require.NotNil(t, s.Breathing, "shortening recreates the breathing exercise")
	assert.Equal(t, tracker.PatternExtendedExhale, s.Breathing.Pattern)

	c.ExtendBreak()
	s = c.Status()
	assert.Equal(t, 15*time.Minute, s.Duration)
	assert.False(t, s.BreakWasShortened)
}

func TestShortenBreakIgnoredDuringFocus(t *testing.T) {
	c, _, _ := newTestController(t, testSettings())
	c.ShortenBreak()
	c.ExtendBreak()
	c.SkipBreak()

	s := c.Status()
	assert.Equal(t, ModeFocus, s.Mode)
	assert.Equal(t, 25*time.Minute, s.Duration)
}

func TestSelectBreakOptionStartsBreathing(t *testing.T) {
	c, _, _ := newTestController(t, testSettings())
	c.SkipToBreak()

	c.PressNumber(OptionShortBox)
	assert.Equal(t, OptionShortBox, c.Status().SelectedOption)
	assert.Nil(t, c.Status().Breathing)

	c.PressSpace()
	s := c.Status()
	assert.False(t, s.Selecting)
	assert.Equal(t, tracker.TimerRunning, s.TimerState)
	assert.Equal(t, tracker.ActivityBreathing, s.BreakActivity)
	require.NotNil(t, s.Breathing)
	assert.Equal(t, tracker.PatternShortBox, s.Breathing.Pattern)
	assert.Equal(t, tracker.DefaultBreathingCycles, s.Breathing.TargetCycles)
}

func TestHighlightOptionIgnoresOutOfRange(t *testing.T) {
	c, _, _ := newTestController(t, testSettings())
	c.HighlightOption(OptionCoherent)
	assert.Equal(t, OptionSimple, c.Status().SelectedOption, "ignored outside selection")

	c.SkipToBreak()
	c.HighlightOption(OptionCoherent)
	c.HighlightOption(7)
	assert.Equal(t, OptionCoherent, c.Status().SelectedOption)
}

func TestStretchOptionAnimates(t *testing.T) {
	c, _, _ := newTestController(t, testSettings())
	c.SkipToBreak()
	c.SelectBreakOption(OptionStretch)

	s := c.Status()
	assert.Equal(t, tracker.ActivityStretch, s.BreakActivity)
	assert.True(t, s.Animating)
	assert.Nil(t, s.Breathing)
	assert.True(t, s.BreathingComplete)

	ticks(c, 10)
	assert.Equal(t, 1, c.Status().AnimationFrame)
}

func TestBreathingCompletionDiscardsExercise(t *testing.T) {
	settings := testSettings()
	settings.BreathingDuration = 24 * time.Second
	c, _, rec := newTestController(t, settings)

	c.SkipToBreak()
	c.SelectBreakOption(OptionShortBox)
	require.Equal(t, 2, c.Status().Breathing.TargetCycles)

	ticks(c, 120)
	assert.Equal(t, 1, c.Status().Breathing.CycleCount)
	assert.Equal(t, EventBreathingCycle, rec.last().Type)

	ticks(c, 119)
	require.NotNil(t, c.Status().Breathing)

	c.Tick(tick)
	s := c.Status()
	assert.Nil(t, s.Breathing)
	assert.True(t, s.BreathingComplete)

	completed := rec.last()
	assert.Equal(t, EventBreathingCompleted, completed.Type)
	assert.Equal(t, tracker.PatternShortBox, completed.Pattern)
	assert.Equal(t, 1, completed.Cycles)
	assert.Equal(t, tracker.TimerRunning, s.TimerState, "break timer keeps running")
}

func TestSetBreathingPatternDuringBreak(t *testing.T) {
	c, _, _ := newTestController(t, testSettings())

	c.SetBreathingPattern(tracker.PatternCoherent)
	assert.Nil(t, c.Status().Breathing, "no exercise during focus")

	c.SkipToBreak()
	c.SelectBreakOption(OptionSimple)
	c.PressNumber(OptionCoherent)

	s := c.Status()
	require.NotNil(t, s.Breathing)
	assert.Equal(t, tracker.PatternCoherent, s.Breathing.Pattern)
	assert.Equal(t, 0, s.Breathing.CycleCount)
}

func TestToggleAndSkipBreathing(t *testing.T) {
	c, _, _ := newTestController(t, testSettings())
	c.SkipToBreak()
	c.SelectBreakOption(OptionCoherent)
	require.NotNil(t, c.Status().Breathing)

	c.ToggleBreathing()
	s := c.Status()
	assert.False(t, s.BreathingEnabled)
	assert.Nil(t, s.Breathing)

	c.ToggleBreathing()
	s = c.Status()
	assert.True(t, s.BreathingEnabled)
	assert.Nil(t, s.Breathing, "a finished exercise is not restarted")

	c.SetBreathingPattern(tracker.PatternSimple)
	require.NotNil(t, c.Status().Breathing)

	c.SkipBreathing()
	s = c.Status()
	assert.Nil(t, s.Breathing)
	assert.True(t, s.BreathingComplete)
}

func TestDisabledBreathingSkipsExercise(t *testing.T) {
	settings := testSettings()
	settings.BreathingEnabled = false
	c, _, _ := newTestController(t, settings)

	c.SkipToBreak()
	c.SelectBreakOption(OptionSimple)
	s := c.Status()
	assert.Nil(t, s.Breathing)
	assert.Equal(t, tracker.TimerRunning, s.TimerState)
}

func TestResetDuringBreakReturnsToSelection(t *testing.T) {
	c, mock, _ := newTestController(t, testSettings())
	c.SkipToBreak()
	c.SelectBreakOption(OptionCoherent)
	mock.Add(time.Minute)
	ticks(c, 5)

	c.Reset()
	s := c.Status()
	assert.Equal(t, tracker.TimerIdle, s.TimerState)
	assert.Equal(t, 5*time.Minute, s.Remaining)
	assert.True(t, s.Selecting)
	assert.Nil(t, s.Breathing)
	assert.False(t, s.BreathingComplete)
}

func TestCompletedBreakReturnsToFocus(t *testing.T) {
	c, mock, rec := newTestController(t, testSettings())
	c.SkipToBreak()
	c.SelectBreakOption(OptionStretch)

	mock.Add(5 * time.Minute)
	c.Tick(tick)
	assert.Equal(t, EventBreakCompleted, rec.last().Type)

	c.ToggleTimer()
	s := c.Status()
	assert.Equal(t, ModeFocus, s.Mode)
	assert.Equal(t, tracker.TimerIdle, s.TimerState)
	assert.False(t, s.Animating)
	assert.Contains(t, s.Message, "Break complete")
	assert.Equal(t, EventFocusStarted, rec.last().Type)

	c.ClearMessage()
	assert.Empty(t, c.Status().Message)
}

func TestSkipBreakLeavesSelection(t *testing.T) {
	c, _, _ := newTestController(t, testSettings())
	c.SkipToBreak()
	require.True(t, c.Status().Selecting)

	c.SkipBreak()
	assert.False(t, c.Status().Selecting)

	c.PressSpace()
	assert.Equal(t, tracker.TimerRunning, c.Status().TimerState)
}

func TestRunTicksUntilCancelled(t *testing.T) {
	settings := testSettings()
	settings.Focus = 20 * time.Millisecond
	settings.TickInterval = time.Millisecond
	c := NewController(settings, WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()

	c.ToggleTimer()
	require.Eventually(t, func() bool {
		return c.Status().SessionCount == 1
	}, 2*time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.True(t, errors.Is(err, context.Canceled))
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}

func TestRunStopsOnQuit(t *testing.T) {
	settings := testSettings()
	settings.TickInterval = time.Millisecond
	c := NewController(settings, WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))

	done := make(chan error, 1)
	go func() { done <- c.Run(context.Background()) }()
	c.Quit()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after quit")
	}
}

func TestToggleSettlesExpiredFocusBeforeMovingOn(t *testing.T) {
	c, mock, rec := newTestController(t, testSettings())
	c.ToggleTimer()

	mock.Add(25 * time.Minute)
	c.ToggleTimer()

	s := c.Status()
	assert.Equal(t, 1, s.SessionCount)
	assert.Equal(t, ModeBreak, s.Mode)
	assert.Equal(t, []EventType{EventFocusCompleted, EventBreakStarted}, rec.types())
}

func TestSelectBreakOptionIgnoredOutsideSelection(t *testing.T) {
	c, _, _ := newTestController(t, testSettings())

	c.SelectBreakOption(OptionStretch)
	s := c.Status()
	assert.Equal(t, ModeFocus, s.Mode)
	assert.Equal(t, tracker.TimerIdle, s.TimerState)
	assert.False(t, s.Animating)

	c.SkipToBreak()
	c.SelectBreakOption(OptionCoherent)
	c.SelectBreakOption(OptionStretch)
	s = c.Status()
	assert.Equal(t, tracker.ActivityBreathing, s.BreakActivity)
	assert.False(t, s.Animating)
}

func startPausedBreak(t *testing.T) (*Controller, *clock.Mock) {
	t.Helper()
	c, mock, _ := newTestController(t, testSettings())
	c.SkipToBreak()
	c.SelectBreakOption(OptionCoherent)
	mock.Add(time.Minute)
	ticks(c, 5)
	c.ToggleTimer()
	return c, mock
}

func TestPausingBreakOpensPauseMenu(t *testing.T) {
	c, _ := startPausedBreak(t)

	s := c.Status()
	assert.Equal(t, tracker.TimerPaused, s.TimerState)
	assert.True(t, s.PauseMenuActive)
	assert.Equal(t, PauseMenuResume, s.PauseMenuSelection)

	c.ToggleTimer()
	assert.Equal(t, tracker.TimerPaused, c.Status().TimerState, "the menu decides how to continue")

	c.RequestReset()
	assert.False(t, c.Status().ResetPending)
}

func TestPausingFocusHasNoMenu(t *testing.T) {
	c, _, _ := newTestController(t, testSettings())
	c.ToggleTimer()
	c.ToggleTimer()

	s := c.Status()
	assert.Equal(t, tracker.TimerPaused, s.TimerState)
	assert.False(t, s.PauseMenuActive)
}

func TestPauseMenuResume(t *testing.T) {
	c, mock := startPausedBreak(t)
	mock.Add(time.Minute)

	c.PressSpace()
	s := c.Status()
	assert.False(t, s.PauseMenuActive)
	assert.Equal(t, tracker.TimerRunning, s.TimerState)
	assert.Equal(t, 4*time.Minute, s.Remaining)
	require.NotNil(t, s.Breathing)
	assert.Equal(t, tracker.PatternCoherent, s.Breathing.Pattern)
}

func TestPauseMenuChangeActivity(t *testing.T) {
	c, _ := startPausedBreak(t)

	c.PressNumber(PauseMenuChangeActivity)
	assert.Equal(t, PauseMenuChangeActivity, c.Status().PauseMenuSelection)

	c.PressSpace()
	s := c.Status()
	assert.False(t, s.PauseMenuActive)
	assert.True(t, s.Selecting)
	assert.Equal(t, tracker.TimerIdle, s.TimerState)
	assert.Equal(t, 5*time.Minute, s.Remaining)
	assert.Nil(t, s.Breathing)

	c.PressNumber(OptionStretch)
	c.PressSpace()
	s = c.Status()
	assert.Equal(t, tracker.ActivityStretch, s.BreakActivity)
	assert.Equal(t, tracker.TimerRunning, s.TimerState)
}

func TestPauseMenuResetNeedsConfirmation(t *testing.T) {
	c, _ := startPausedBreak(t)

	c.PressNumber(PauseMenuReset)
	c.PressSpace()
	s := c.Status()
	assert.True(t, s.ResetPending)
	assert.True(t, s.PauseMenuActive)

	c.CancelReset()
	s = c.Status()
	assert.False(t, s.ResetPending)
	assert.True(t, s.PauseMenuActive, "cancelling keeps the menu open")

	c.PressSpace()
	c.ConfirmReset()
	s = c.Status()
	assert.False(t, s.ResetPending)
	assert.False(t, s.PauseMenuActive)
	assert.True(t, s.Selecting)
	assert.Equal(t, tracker.TimerIdle, s.TimerState)
}

func TestPauseMenuIgnoresOutOfRangeEntries(t *testing.T) {
	c, _ := startPausedBreak(t)

	c.PressNumber(4)
	s := c.Status()
	assert.Equal(t, PauseMenuResume, s.PauseMenuSelection)
	assert.Equal(t, tracker.PatternCoherent, s.Breathing.Pattern, "numbers do not switch patterns while the menu is open")
}

func TestPressEscape(t *testing.T) {
	c, _ := startPausedBreak(t)

	c.PressNumber(PauseMenuReset)
	c.PressSpace()
	assert.True(t, c.PressEscape())
	assert.False(t, c.Status().ResetPending)
	assert.True(t, c.Status().PauseMenuActive)

	assert.True(t, c.PressEscape())
	s := c.Status()
	assert.False(t, s.PauseMenuActive)
	assert.Equal(t, tracker.TimerRunning, s.TimerState)

	assert.False(t, c.PressEscape())
	assert.True(t, c.ShouldQuit())
}
