package session

import (
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"pomotimer/internal/models"
	"pomotimer/internal/tracker"
)

// Mode is the kind of phase the controller is running
type Mode int

const (
	ModeFocus Mode = iota
	ModeBreak
)

// String returns the lowercase mode name
func (m Mode) String() string {
	if m == ModeBreak {
		return "break"
	}
	return "focus"
}

// Settings holds the durations and defaults a controller works with
type Settings struct {
	Focus             time.Duration
	ShortBreak        time.Duration
	LongBreak         time.Duration
	LongBreakEvery    int
	TickInterval      time.Duration
	BreathingEnabled  bool
	BreathingPattern  tracker.Pattern
	BreathingDuration time.Duration
}

// SettingsFromConfig converts the loaded configuration into controller settings
func SettingsFromConfig(cfg *models.Config) Settings {
	return Settings{
		Focus:             cfg.Timer.FocusDuration(),
		ShortBreak:        cfg.Timer.ShortBreakDuration(),
		LongBreak:         cfg.Timer.LongBreakDuration(),
		LongBreakEvery:    cfg.Timer.LongBreakEvery,
		TickInterval:      cfg.Timer.TickInterval(),
		BreathingEnabled:  cfg.Breathing.Enabled,
		BreathingPattern:  cfg.Breathing.Pattern,
		BreathingDuration: cfg.Breathing.Duration(),
	}
}

// Break activity menu entries
const (
	OptionSimple   = 1
	OptionCoherent = 2
	OptionShortBox = 3
	OptionStretch  = 4
)

// Pause menu entries, offered when a running break is paused
const (
	PauseMenuResume         = 1
	PauseMenuChangeActivity = 2
	PauseMenuReset          = 3
)

// Option configures a Controller
type Option func(*Controller)

// WithClock sets the clock used by every timer the controller creates
func WithClock(clk clock.Clock) Option {
	return func(c *Controller) {
		c.clock = clk
	}
}

// WithLogger sets the controller logger
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

// Controller alternates focus sessions and breaks, owning the countdown timer and
// the optional breathing exercise. All methods are safe for concurrent use.
type Controller struct {
	mu       sync.RWMutex
	clock    clock.Clock
	logger   *slog.Logger
	settings Settings

	mode              Mode
	timer             *tracker.Timer
	breathing         *tracker.BreathingExercise
	breathingEnabled  bool
	breathingComplete bool
	breakActivity     tracker.BreakActivity
	animation         *tracker.BreakAnimation
	selecting         bool
	selectedOption    int
	resetPending      bool
	pauseMenuActive   bool
	pauseMenuSelect   int
	sessionCount      int
	breakWasShortened bool
	sessionID         string
	statusMessage     string
	quit              bool

	callbacks []EventCallback
	pending   []Event
}

// NewController creates a controller waiting to start the first focus session
func NewController(settings Settings, opts ...Option) *Controller {
	if settings.LongBreakEvery < 1 {
		settings.LongBreakEvery = 1
	}
	c := &Controller{
		clock:            clock.New(),
		logger:           slog.Default(),
		settings:         settings,
		breathingEnabled: settings.BreathingEnabled,
		selectedOption:   OptionSimple,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.mode = ModeFocus
	c.timer = c.newTimer(settings.Focus)
	c.sessionID = uuid.NewString()
	return c
}

// AddEventCallback registers a callback for session events. Callbacks run
// synchronously after the triggering operation releases the controller lock.
func (c *Controller) AddEventCallback(callback EventCallback) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.callbacks = append(c.callbacks, callback)
}

// do runs fn under the write lock, then delivers any events it emitted
func (c *Controller) do(fn func()) {
	c.mu.Lock()
	fn()
	events := c.pending
	c.pending = nil
	callbacks := slices.Clone(c.callbacks)
	c.mu.Unlock()

	for _, event := range events {
		for _, callback := range callbacks {
			callback(event)
		}
	}
}

func (c *Controller) emit(eventType EventType) {
	event := Event{
		Type:      eventType,
		Mode:      c.mode,
		SessionID: c.sessionID,
		Count:     c.sessionCount,
		At:        c.clock.Now(),
	}
	if c.breathing != nil {
		event.Pattern = c.breathing.Pattern()
		event.Cycles = c.breathing.CycleCount()
	}
	c.pending = append(c.pending, event)
}

func (c *Controller) newTimer(d time.Duration) *tracker.Timer {
	return tracker.NewTimerWithClock(d, c.clock)
}

func (c *Controller) newExercise(pattern tracker.Pattern) *tracker.BreathingExercise {
	if c.settings.BreathingDuration > 0 {
		return tracker.NewBreathingExerciseFromDuration(pattern, c.settings.BreathingDuration)
	}
	return tracker.NewDefaultBreathingExercise(pattern)
}

// ToggleTimer starts, pauses, or resumes the timer, or moves on once it completed
func (c *Controller) ToggleTimer() {
	c.do(c.toggleTimerLocked)
}

func (c *Controller) toggleTimerLocked() {
	c.finishExpiredLocked()

	switch c.timer.State() {
	case tracker.TimerIdle:
		c.timer.Start()
		c.logger.Debug("Timer started", "mode", c.mode, "session_id", c.sessionID)
	case tracker.TimerRunning:
		c.timer.Pause()
		if c.mode == ModeBreak {
			c.pauseMenuActive = true
			c.pauseMenuSelect = PauseMenuResume
		}
		c.logger.Debug("Timer paused", "mode", c.mode, "session_id", c.sessionID, "remaining", c.timer.Remaining())
	case tracker.TimerPaused:
		if c.pauseMenuActive {
			return
		}
		c.timer.Resume()
		c.logger.Debug("Timer resumed", "mode", c.mode, "session_id", c.sessionID)
	case tracker.TimerCompleted:
		c.startNextPhaseLocked()
	}
}

// RequestReset asks for a reset that must be confirmed. It is ignored while the pause menu is open.
func (c *Controller) RequestReset() {
	c.do(func() {
		if c.pauseMenuActive {
			return
		}
		c.resetPending = true
	})
}

// ConfirmReset performs a previously requested reset
func (c *Controller) ConfirmReset() {
	c.do(func() {
		if !c.resetPending {
			return
		}
		c.resetLocked()
	})
}

// CancelReset drops a pending reset request
func (c *Controller) CancelReset() {
	c.do(func() {
		c.resetPending = false
	})
}

// Reset restarts the current phase immediately
func (c *Controller) Reset() {
	c.do(c.resetLocked)
}

func (c *Controller) resetLocked() {
	c.resetPending = false
	c.pauseMenuActive = false
	c.timer.Reset()
	if c.mode == ModeBreak {
		c.breathing = nil
		c.breathingComplete = false
		c.animation = nil
		c.startBreakActivitySelectionLocked()
	}
	c.logger.Info("Timer reset", "mode", c.mode, "session_id", c.sessionID)
}

// SkipToBreak ends the focus session early and counts it
func (c *Controller) SkipToBreak() {
	c.do(func() {
		if c.mode != ModeFocus {
			return
		}
		c.sessionCount++
		c.logger.Info("Focus session skipped", "session_id", c.sessionID, "count", c.sessionCount)
		c.startBreakLocked()
	})
}

// SkipBreak ends the break and prepares the next focus session
func (c *Controller) SkipBreak() {
	c.do(func() {
		if c.mode != ModeBreak {
			return
		}
		c.logger.Info("Break skipped", "session_id", c.sessionID)
		c.startFocusLocked()
	})
}

// ShortenBreak swaps a long break for a short one
func (c *Controller) ShortenBreak() {
	c.do(func() {
		if c.mode != ModeBreak || c.timer.Duration() <= c.settings.ShortBreak {
			return
		}
		c.timer = c.newTimer(c.settings.ShortBreak)
		c.breakWasShortened = true
		c.pauseMenuActive = false
		c.ensureBreathingLocked()
		c.logger.Info("Break shortened", "session_id", c.sessionID, "duration", c.settings.ShortBreak)
	})
}

// ExtendBreak restores a shortened long break to its full length
func (c *Controller) ExtendBreak() {
	c.do(func() {
		if c.mode != ModeBreak || !c.breakWasShortened {
			return
		}
		if c.sessionCount%c.settings.LongBreakEvery != 0 {
			return
		}
		c.timer = c.newTimer(c.settings.LongBreak)
		c.breakWasShortened = false
		c.pauseMenuActive = false
		c.ensureBreathingLocked()
		c.logger.Info("Break extended", "session_id", c.sessionID, "duration", c.settings.LongBreak)
	})
}

// ensureBreathingLocked recreates the exercise for a replaced break timer
func (c *Controller) ensureBreathingLocked() {
	if c.breathingEnabled && c.breathing == nil && !c.breathingComplete {
		c.breathing = c.newExercise(c.settings.BreathingPattern)
	}
}

// SetBreathingPattern replaces the break exercise with one using pattern
func (c *Controller) SetBreathingPattern(pattern tracker.Pattern) {
	c.do(func() {
		c.setBreathingPatternLocked(pattern)
	})
}

func (c *Controller) setBreathingPatternLocked(pattern tracker.Pattern) {
	if c.mode != ModeBreak || !c.breathingEnabled {
		return
	}
	c.breathing = c.newExercise(pattern)
	c.breathingComplete = false
	c.logger.Debug("Breathing pattern selected", "pattern", pattern, "cycles", c.breathing.TargetCycles())
}

// ToggleBreathing turns the break breathing exercise on or off
func (c *Controller) ToggleBreathing() {
	c.do(func() {
		c.breathingEnabled = !c.breathingEnabled
		if !c.breathingEnabled {
			c.breathing = nil
			c.breathingComplete = true
		} else if c.mode == ModeBreak && !c.breathingComplete {
			c.breathing = c.newExercise(c.settings.BreathingPattern)
		}
		c.logger.Debug("Breathing toggled", "enabled", c.breathingEnabled)
	})
}

// SkipBreathing abandons the current breathing exercise
func (c *Controller) SkipBreathing() {
	c.do(func() {
		if c.mode != ModeBreak {
			return
		}
		c.breathing = nil
		c.breathingComplete = true
	})
}

// HighlightOption moves the break activity menu cursor
func (c *Controller) HighlightOption(option int) {
	c.do(func() {
		c.highlightOptionLocked(option)
	})
}

func (c *Controller) highlightOptionLocked(option int) {
	if c.selecting && option >= OptionSimple && option <= OptionStretch {
		c.selectedOption = option
	}
}

// SelectBreakOption picks the break activity and starts the break timer
func (c *Controller) SelectBreakOption(option int) {
	c.do(func() {
		c.selectBreakOptionLocked(option)
	})
}

func (c *Controller) selectBreakOptionLocked(option int) {
	if c.mode != ModeBreak || !c.selecting {
		return
	}
	c.selecting = false

	switch option {
	case OptionStretch:
		c.breakActivity = tracker.ActivityStretch
		c.animation = tracker.NewBreakAnimation(tracker.ActivityStretch)
		c.breathing = nil
		c.breathingComplete = true
	default:
		c.breakActivity = tracker.ActivityBreathing
		c.setBreathingPatternLocked(optionPattern(option))
		c.animation = nil
	}

	c.timer.Start()
	c.logger.Info("Break activity selected", "session_id", c.sessionID, "activity", c.breakActivity.DisplayName())
}

// optionPattern maps a menu entry onto its breathing pattern
func optionPattern(option int) tracker.Pattern {
	switch option {
	case OptionCoherent:
		return tracker.PatternCoherent
	case OptionShortBox:
		return tracker.PatternShortBox
	default:
		return tracker.PatternSimple
	}
}

// StartNextPhase moves from focus to break or from break to focus
func (c *Controller) StartNextPhase() {
	c.do(c.startNextPhaseLocked)
}

func (c *Controller) startNextPhaseLocked() {
	switch c.mode {
	case ModeFocus:
		c.startBreakLocked()
	case ModeBreak:
		c.statusMessage = "Break complete! Press Space when you're ready for your next focus session"
		c.startFocusLocked()
	}
}

func (c *Controller) startBreakLocked() {
	long := c.sessionCount%c.settings.LongBreakEvery == 0
	duration := c.settings.ShortBreak
	if long {
		duration = c.settings.LongBreak
	}

	c.mode = ModeBreak
	c.sessionID = uuid.NewString()
	c.timer = c.newTimer(duration)
	c.breakWasShortened = false
	c.breathing = nil
	c.breathingComplete = false
	c.animation = nil
	c.resetPending = false
	c.pauseMenuActive = false
	c.startBreakActivitySelectionLocked()

	c.logger.Info("Break ready", "session_id", c.sessionID, "long", long, "duration", duration, "count", c.sessionCount)
	if long {
		c.emit(EventLongBreakStarted)
	} else {
		c.emit(EventBreakStarted)
	}
}

func (c *Controller) startFocusLocked() {
	c.mode = ModeFocus
	c.sessionID = uuid.NewString()
	c.timer = c.newTimer(c.settings.Focus)
	c.breakWasShortened = false
	c.breathing = nil
	c.breathingComplete = false
	c.animation = nil
	c.selecting = false
	c.resetPending = false
	c.pauseMenuActive = false

	c.logger.Info("Focus session ready", "session_id", c.sessionID, "duration", c.settings.Focus)
	c.emit(EventFocusStarted)
}

func (c *Controller) startBreakActivitySelectionLocked() {
	if c.mode != ModeBreak {
		return
	}
	c.selecting = true
	c.selectedOption = OptionSimple
}

// Tick advances the session by delta. The host calls it at a fixed cadence.
func (c *Controller) Tick(delta time.Duration) {
	c.do(func() {
		c.tickLocked(delta)
	})
}

// finishExpiredLocked stops an expired timer and records the finished phase
func (c *Controller) finishExpiredLocked() {
	if !c.timer.IsExpired() {
		return
	}

	c.timer.Stop()
	if c.mode == ModeFocus {
		c.sessionCount++
		c.logger.Info("Focus session completed", "session_id", c.sessionID, "count", c.sessionCount)
		c.emit(EventFocusCompleted)
	} else {
		c.logger.Info("Break completed", "session_id", c.sessionID)
		c.emit(EventBreakCompleted)
	}
}

func (c *Controller) tickLocked(delta time.Duration) {
	c.finishExpiredLocked()

	if c.timer.State() != tracker.TimerRunning {
		return
	}

	if c.breathing != nil {
		cycles := c.breathing.CycleCount()
		c.breathing.Update(delta)
		if c.breathing.CycleCount() > cycles {
			c.emit(EventBreathingCycle)
		}

		if c.breathing.ShouldCompleteSession() && !c.breathingComplete {
			c.logger.Info("Breathing exercise completed",
				"session_id", c.sessionID,
				"pattern", c.breathing.Pattern(),
				"cycles", c.breathing.CycleCount())
			c.emit(EventBreathingCompleted)
			c.breathing = nil
			c.breathingComplete = true
		}
	}

	if c.animation != nil {
		c.animation.Update(delta)
	}
}

// PressSpace confirms the open menu selection or toggles the timer
func (c *Controller) PressSpace() {
	c.do(func() {
		switch {
		case c.resetPending:
			return
		case c.pauseMenuActive:
			c.confirmPauseMenuLocked()
		case c.selecting:
			c.selectBreakOptionLocked(c.selectedOption)
		default:
			c.toggleTimerLocked()
		}
	})
}

// PressNumber highlights an entry of the open menu, otherwise picks a breathing pattern
func (c *Controller) PressNumber(n int) {
	c.do(func() {
		if c.pauseMenuActive {
			if n >= PauseMenuResume && n <= PauseMenuReset {
				c.pauseMenuSelect = n
			}
			return
		}
		if c.selecting {
			c.highlightOptionLocked(n)
			return
		}
		if n >= OptionSimple && n <= OptionShortBox {
			c.setBreathingPatternLocked(optionPattern(n))
		}
	})
}

// PressEscape cancels a pending reset, resumes from the pause menu, or clears the
// status message. With nothing to dismiss it quits and returns false.
func (c *Controller) PressEscape() bool {
	quit := false
	c.do(func() {
		switch {
		case c.resetPending:
			c.resetPending = false
		case c.pauseMenuActive:
			c.resumeFromPauseMenuLocked()
		case c.statusMessage != "":
			c.statusMessage = ""
		default:
			c.quit = true
			quit = true
		}
	})
	return !quit
}

func (c *Controller) confirmPauseMenuLocked() {
	switch c.pauseMenuSelect {
	case PauseMenuResume:
		c.resumeFromPauseMenuLocked()
	case PauseMenuChangeActivity:
		c.pauseMenuActive = false
		c.timer.Reset()
		c.breathing = nil
		c.breathingComplete = false
		c.animation = nil
		c.startBreakActivitySelectionLocked()
		c.logger.Info("Changing break activity", "session_id", c.sessionID)
	case PauseMenuReset:
		c.resetPending = true
	}
}

func (c *Controller) resumeFromPauseMenuLocked() {
	c.pauseMenuActive = false
	c.timer.Resume()
	c.logger.Debug("Timer resumed", "mode", c.mode, "session_id", c.sessionID)
}

// ClearMessage removes the status message
func (c *Controller) ClearMessage() {
	c.do(func() {
		c.statusMessage = ""
	})
}

// Quit marks the controller as finished
func (c *Controller) Quit() {
	c.do(func() {
		c.quit = true
	})
}

// ShouldQuit reports whether Quit was called
func (c *Controller) ShouldQuit() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.quit
}

// TickInterval returns the configured tick cadence
func (c *Controller) TickInterval() time.Duration {
	return c.settings.TickInterval
}
