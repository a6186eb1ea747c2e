package tracker

import (
	"fmt"
	"strings"
	"time"
)

// DefaultBreathingCycles is the target cycle count when none is given
const DefaultBreathingCycles = 6

// Pattern selects the rhythm of a breathing exercise
type Pattern int

const (
	PatternExtendedExhale Pattern = iota
	PatternCoherent
	PatternShortBox
	PatternSimple
)

// Phase is one step of a breath
type Phase int

const (
	PhaseInhale Phase = iota
	PhaseHold
	PhaseExhale
	PhaseRest
	PhaseTransition
	phaseCount
)

// patternSpec holds the per-phase durations of a pattern. Box patterns cycle
// Inhale, Hold, Exhale, Rest; the others place a Transition before and after Exhale.
type patternSpec struct {
	key    string
	name   string
	box    bool
	phases [phaseCount]time.Duration
}

var patternSpecs = [...]patternSpec{
	PatternExtendedExhale: {
		key:  "extended_exhale",
		name: "Extended Exhale (3-6)",
		phases: [phaseCount]time.Duration{
			PhaseInhale:     3 * time.Second,
			PhaseExhale:     6 * time.Second,
			PhaseTransition: 1200 * time.Millisecond,
		},
	},
	PatternCoherent: {
		key:  "coherent",
		name: "Coherent Breathing (5-5)",
		phases: [phaseCount]time.Duration{
			PhaseInhale:     5 * time.Second,
			PhaseExhale:     5 * time.Second,
			PhaseTransition: 1000 * time.Millisecond,
		},
	},
	PatternShortBox: {
		key:  "short_box",
		name: "Short Box (3-3-3-3)",
		box:  true,
		phases: [phaseCount]time.Duration{
			PhaseInhale: 3 * time.Second,
			PhaseHold:   3 * time.Second,
			PhaseExhale: 3 * time.Second,
			PhaseRest:   3 * time.Second,
		},
	},
	PatternSimple: {
		key:  "simple",
		name: "Simple Breathing (4-4)",
		phases: [phaseCount]time.Duration{
			PhaseInhale:     4 * time.Second,
			PhaseExhale:     4 * time.Second,
			PhaseTransition: 1100 * time.Millisecond,
		},
	},
}

// Patterns returns every selectable pattern in menu order
func Patterns() []Pattern {
	return []Pattern{PatternExtendedExhale, PatternCoherent, PatternShortBox, PatternSimple}
}

func (p Pattern) spec() patternSpec {
	if p < 0 || int(p) >= len(patternSpecs) {
		return patternSpecs[PatternExtendedExhale]
	}
	return patternSpecs[p]
}

// String returns the configuration key of the pattern
func (p Pattern) String() string {
	return p.spec().key
}

// Name returns the display name of the pattern
func (p Pattern) Name() string {
	return p.spec().name
}

// PhaseDuration returns how long the pattern holds the given phase
func (p Pattern) PhaseDuration(phase Phase) time.Duration {
	if phase < 0 || phase >= phaseCount {
		return 0
	}
	return p.spec().phases[phase]
}

// CycleDuration returns the length of one full breath
func (p Pattern) CycleDuration() time.Duration {
	spec := p.spec()
	if spec.box {
		return spec.phases[PhaseInhale] + spec.phases[PhaseHold] + spec.phases[PhaseExhale] + spec.phases[PhaseRest]
	}
	// the transition runs twice per cycle
	return spec.phases[PhaseInhale] + spec.phases[PhaseExhale] + 2*spec.phases[PhaseTransition]
}

// MarshalText implements encoding.TextMarshaler
func (p Pattern) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (p *Pattern) UnmarshalText(text []byte) error {
	parsed, err := ParsePattern(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// ParsePattern resolves a pattern from its configuration key
func ParsePattern(s string) (Pattern, error) {
	key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")
	for _, p := range Patterns() {
		if p.String() == key {
			return p, nil
		}
	}
	return PatternExtendedExhale, fmt.Errorf("unknown breathing pattern: %q", s)
}

// String returns the lowercase phase name
func (ph Phase) String() string {
	switch ph {
	case PhaseInhale:
		return "inhale"
	case PhaseHold:
		return "hold"
	case PhaseExhale:
		return "exhale"
	case PhaseRest:
		return "rest"
	case PhaseTransition:
		return "transition"
	default:
		return "unknown"
	}
}

// breathState is the part of an exercise that the phase transition function rewrites
type breathState struct {
	phase      Phase
	postExhale bool
	cycleCount int
	ready      bool
}

// atBoundary reports whether finishing the current phase completes a cycle
func (s breathState) atBoundary(spec patternSpec) bool {
	if spec.box {
		return s.phase == PhaseRest
	}
	return s.phase == PhaseTransition && s.postExhale
}

// next returns the state after the current phase finishes. Once the exercise is
// ready to complete, a boundary phase maps onto itself.
func (s breathState) next(spec patternSpec, targetCycles int) breathState {
	if s.atBoundary(spec) {
		if s.cycleCount+1 >= targetCycles {
			s.ready = true
		}
		if s.ready {
			return s
		}
		s.cycleCount++
		s.phase = PhaseInhale
		s.postExhale = false
		return s
	}

	if spec.box {
		switch s.phase {
		case PhaseInhale:
			s.phase = PhaseHold
		case PhaseHold:
			s.phase = PhaseExhale
		case PhaseExhale:
			s.phase = PhaseRest
		default:
			s.phase = PhaseInhale
		}
		return s
	}

	switch s.phase {
	case PhaseInhale:
		s.phase = PhaseTransition
		s.postExhale = false
	case PhaseTransition:
		s.phase = PhaseExhale
	case PhaseExhale:
		s.phase = PhaseTransition
		s.postExhale = true
	default:
		s.phase = PhaseInhale
		s.postExhale = false
	}
	return s
}

// BreathingExercise guides a user through a fixed number of breath cycles.
// It is driven entirely by Update and never reads the clock itself.
type BreathingExercise struct {
	pattern      Pattern
	state        breathState
	phaseElapsed time.Duration
	totalElapsed time.Duration
	targetCycles int
}

// NewBreathingExercise creates an exercise that aims for targetCycles full breaths.
// Targets below one are raised to one.
func NewBreathingExercise(pattern Pattern, targetCycles int) *BreathingExercise {
	if targetCycles < 1 {
		targetCycles = 1
	}
	return &BreathingExercise{
		pattern:      pattern,
		state:        breathState{phase: PhaseInhale},
		targetCycles: targetCycles,
	}
}

// NewDefaultBreathingExercise creates an exercise with the default cycle target
func NewDefaultBreathingExercise(pattern Pattern) *BreathingExercise {
	return NewBreathingExercise(pattern, DefaultBreathingCycles)
}

// NewBreathingExerciseFromDuration creates an exercise with enough cycles to fill total
func NewBreathingExerciseFromDuration(pattern Pattern, total time.Duration) *BreathingExercise {
	return NewBreathingExercise(pattern, CyclesForDuration(pattern, total))
}

// CyclesForDuration returns ceil(total / cycle length), never less than one
func CyclesForDuration(pattern Pattern, total time.Duration) int {
	cycle := pattern.CycleDuration()
	if total <= 0 || cycle <= 0 {
		return 1
	}
	cycles := int((total + cycle - 1) / cycle)
	if cycles < 1 {
		return 1
	}
	return cycles
}

// Update advances the exercise by delta. At most one phase change happens per call.
func (b *BreathingExercise) Update(delta time.Duration) {
	if delta < 0 {
		delta = 0
	}
	b.phaseElapsed += delta
	b.totalElapsed += delta

	if b.phaseElapsed >= b.phaseDuration() {
		b.state = b.state.next(b.pattern.spec(), b.targetCycles)
		b.phaseElapsed = 0
	}
}

func (b *BreathingExercise) phaseDuration() time.Duration {
	return b.pattern.PhaseDuration(b.state.phase)
}

// Pattern returns the breathing pattern
func (b *BreathingExercise) Pattern() Pattern {
	return b.pattern
}

// CurrentPhase returns the active phase
func (b *BreathingExercise) CurrentPhase() Phase {
	return b.state.phase
}

// IsPostExhaleTransition reports whether the current transition follows an exhale
func (b *BreathingExercise) IsPostExhaleTransition() bool {
	return b.state.phase == PhaseTransition && b.state.postExhale
}

// PhaseProgress returns the completed fraction of the current phase
func (b *BreathingExercise) PhaseProgress() float64 {
	duration := b.phaseDuration()
	if duration == 0 {
		return 1.0
	}
	return b.phaseElapsed.Seconds() / duration.Seconds()
}

// Instruction returns the prompt shown to the user for the current phase
func (b *BreathingExercise) Instruction() string {
	switch b.state.phase {
	case PhaseInhale:
		return "Breathe In"
	case PhaseHold:
		return "Hold"
	case PhaseExhale:
		return "Breathe Out"
	case PhaseRest:
		return "Rest"
	default:
		return "..."
	}
}

// RemainingInPhase returns the time left in the current phase
func (b *BreathingExercise) RemainingInPhase() time.Duration {
	return nonNegative(b.phaseDuration() - b.phaseElapsed)
}

// TotalElapsed returns all time fed into the exercise
func (b *BreathingExercise) TotalElapsed() time.Duration {
	return b.totalElapsed
}

// CycleCount returns the number of completed breath cycles
func (b *BreathingExercise) CycleCount() int {
	return b.state.cycleCount
}

// TargetCycles returns the goal cycle count
func (b *BreathingExercise) TargetCycles() int {
	return b.targetCycles
}

// RemainingCycles returns target minus completed cycles, floored at zero
func (b *BreathingExercise) RemainingCycles() int {
	remaining := b.targetCycles - b.state.cycleCount
	if remaining < 0 {
		return 0
	}
	return remaining
}

// IsReadyToComplete reports whether the exercise has stopped counting cycles
func (b *BreathingExercise) IsReadyToComplete() bool {
	return b.state.ready
}

// ShouldCompleteSession reports whether the exercise reached its target and
// sits at a phase where stopping does not cut a breath short
func (b *BreathingExercise) ShouldCompleteSession() bool {
	if !b.state.ready {
		return false
	}
	switch b.state.phase {
	case PhaseExhale:
		return true
	case PhaseTransition:
		return b.state.postExhale
	case PhaseRest:
		return b.pattern == PatternShortBox
	default:
		return false
	}
}

// Reset restarts the exercise from the first inhale, keeping pattern and target
func (b *BreathingExercise) Reset() {
	b.state = breathState{phase: PhaseInhale}
	b.phaseElapsed = 0
	b.totalElapsed = 0
}
