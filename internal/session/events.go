package session

import (
	"time"

	"pomotimer/internal/tracker"
)

// EventType identifies a session lifecycle event
type EventType string

const (
	EventFocusStarted       EventType = "focus_started"
	EventFocusCompleted     EventType = "focus_completed"
	EventBreakStarted       EventType = "break_started"
	EventLongBreakStarted   EventType = "long_break_started"
	EventBreakCompleted     EventType = "break_completed"
	EventBreathingCycle     EventType = "breathing_cycle"
	EventBreathingCompleted EventType = "breathing_completed"
)

// Event describes something that happened to a session
type Event struct {
	Type      EventType
	Mode      Mode
	SessionID string
	// Count is the number of completed focus sessions at the time of the event
	Count int
	At    time.Time

	// Set for events raised while a breathing exercise is active
	Pattern tracker.Pattern
	Cycles  int
}

// EventCallback receives session events
type EventCallback func(Event)
