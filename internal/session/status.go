package session

import (
	"fmt"
	"strings"
	"time"

	"pomotimer/internal/tracker"
)

// BreathingStatus is a snapshot of the active breathing exercise
type BreathingStatus struct {
	Pattern          tracker.Pattern
	Phase            tracker.Phase
	Instruction      string
	PhaseProgress    float64
	RemainingInPhase time.Duration
	CycleCount       int
	TargetCycles     int
	RemainingCycles  int
	ReadyToComplete  bool
}

// Status is a point-in-time view of the controller for rendering
type Status struct {
	Mode              Mode
	TimerState        tracker.TimerState
	Duration          time.Duration
	Remaining         time.Duration
	Progress          float64
	SessionCount      int
	SessionID         string
	BreakWasShortened bool
	LongBreakPending  bool

	BreathingEnabled  bool
	BreathingComplete bool
	Breathing         *BreathingStatus

	BreakActivity  tracker.BreakActivity
	AnimationFrame int
	Animating      bool
	Selecting      bool
	SelectedOption int

	PauseMenuActive    bool
	PauseMenuSelection int

	ResetPending bool
	Message      string
	Quit         bool
}

// Status returns a snapshot of the current session
func (c *Controller) Status() Status {
	c.mu.RLock()
	defer c.mu.RUnlock()

	s := Status{
		Mode:               c.mode,
		TimerState:         c.timer.State(),
		Duration:           c.timer.Duration(),
		Remaining:          c.timer.Remaining(),
		Progress:           c.timer.Progress(),
		SessionCount:       c.sessionCount,
		SessionID:          c.sessionID,
		BreakWasShortened:  c.breakWasShortened,
		LongBreakPending:   c.mode == ModeBreak && c.sessionCount%c.settings.LongBreakEvery == 0,
		BreathingEnabled:   c.breathingEnabled,
		BreathingComplete:  c.breathingComplete,
		BreakActivity:      c.breakActivity,
		Selecting:          c.selecting,
		SelectedOption:     c.selectedOption,
		PauseMenuActive:    c.pauseMenuActive,
		PauseMenuSelection: c.pauseMenuSelect,
		ResetPending:       c.resetPending,
		Message:            c.statusMessage,
		Quit:               c.quit,
	}

	if c.breathing != nil {
		s.Breathing = &BreathingStatus{
			Pattern:          c.breathing.Pattern(),
			Phase:            c.breathing.CurrentPhase(),
			Instruction:      c.breathing.Instruction(),
			PhaseProgress:    c.breathing.PhaseProgress(),
			RemainingInPhase: c.breathing.RemainingInPhase(),
			CycleCount:       c.breathing.CycleCount(),
			TargetCycles:     c.breathing.TargetCycles(),
			RemainingCycles:  c.breathing.RemainingCycles(),
			ReadyToComplete:  c.breathing.IsReadyToComplete(),
		}
	}

	if c.animation != nil {
		s.Animating = true
		s.AnimationFrame = c.animation.Frame()
	}

	return s
}

// FormatClock renders d as MM:SS, rounding partial seconds up
func FormatClock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int((d + time.Second - 1) / time.Second)
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}

// Line renders the status as a single line of text
func (s Status) Line() string {
	var b strings.Builder

	fmt.Fprintf(&b, "[%s] %s %s (%d%%) sessions=%d",
		s.Mode, s.TimerState, FormatClock(s.Remaining), int(s.Progress*100), s.SessionCount)

	switch {
	case s.ResetPending:
		b.WriteString(" | reset? y/n")
	case s.PauseMenuActive:
		fmt.Fprintf(&b, " | paused: 1 resume, 2 change activity, 3 reset [%d]", s.PauseMenuSelection)
	case s.Selecting:
		fmt.Fprintf(&b, " | choose activity 1-4 [%d]", s.SelectedOption)
	case s.Breathing != nil:
		fmt.Fprintf(&b, " | %s %s cycle %d/%d",
			s.Breathing.Pattern.Name(), s.Breathing.Instruction,
			s.Breathing.CycleCount+1, s.Breathing.TargetCycles)
	case s.Animating:
		fmt.Fprintf(&b, " | %s %s frame %d", s.BreakActivity.Icon(), s.BreakActivity.DisplayName(), s.AnimationFrame+1)
	}

	if s.Message != "" {
		fmt.Fprintf(&b, " | %s", s.Message)
	}

	return b.String()
}
