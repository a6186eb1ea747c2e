package tracker

import "time"

// stretchFrameInterval is how long each stretch position is shown
const stretchFrameInterval = time.Second

// stretchFrames is the number of positions in the stretch animation
const stretchFrames = 4

// BreakActivity is what the user does during a break
type BreakActivity int

const (
	ActivityBreathing BreakActivity = iota
	ActivityStretch
)

// DisplayName returns the activity title
func (a BreakActivity) DisplayName() string {
	switch a {
	case ActivityStretch:
		return "Stretch Break"
	default:
		return "Breathing Exercise"
	}
}

// Icon returns an emoji for the activity
func (a BreakActivity) Icon() string {
	switch a {
	case ActivityStretch:
		return "🤸"
	default:
		return "🫁"
	}
}

// Description returns a one-line summary of the activity
func (a BreakActivity) Description() string {
	switch a {
	case ActivityStretch:
		return "Simple stretches with animated guide"
	default:
		return "Guided breathing with visual circle"
	}
}

// BreakAnimation steps through animation frames for a break activity
type BreakAnimation struct {
	activity     BreakActivity
	frameElapsed time.Duration
	totalElapsed time.Duration
	frame        int
}

// NewBreakAnimation creates an animation for the given activity
func NewBreakAnimation(activity BreakActivity) *BreakAnimation {
	return &BreakAnimation{activity: activity}
}

// Update advances the animation by delta. Breathing drives its own
// animation through BreathingExercise, so only stretch frames move here.
func (a *BreakAnimation) Update(delta time.Duration) {
	if delta < 0 {
		delta = 0
	}
	a.frameElapsed += delta
	a.totalElapsed += delta

	if a.activity == ActivityStretch && a.frameElapsed >= stretchFrameInterval {
		a.frame = (a.frame + 1) % stretchFrames
		a.frameElapsed = 0
	}
}

// Frame returns the current animation frame
func (a *BreakAnimation) Frame() int {
	return a.frame
}

// Activity returns the animated activity
func (a *BreakAnimation) Activity() BreakActivity {
	return a.activity
}

// TotalElapsed returns all time fed into the animation
func (a *BreakAnimation) TotalElapsed() time.Duration {
	return a.totalElapsed
}
