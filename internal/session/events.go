package session

import "time"

// EventKind names a state change.
type EventKind int

const (
	EventStarted       EventKind = iota // Start succeeded
	EventRoundReady                     // A new round was drawn
	EventAttempt                        // An answer was recorded
	EventTransitioning                  // Round finished or skipped
	EventEnded                          // Pool ran dry mid-session
	EventIdle                           // Session ended or cancelled
	EventError                          // A "cannot proceed" condition was set
)

func (k EventKind) String() string {
	switch k {
	case EventStarted:
		return "started"
	case EventRoundReady:
		return "round-ready"
	case EventAttempt:
		return "attempt"
	case EventTransitioning:
		return "transitioning"
	case EventEnded:
		return "ended"
	case EventIdle:
		return "idle"
	case EventError:
		return "error"
	}
	return "unknown"
}

// Announcement asks the speech collaborator to say something. The machine
// only decides whether to announce; it never synthesizes speech.
type Announcement struct {
	Texts   []string
	VoiceID string
}

// Event is emitted after every transition with a snapshot of the new state.
type Event struct {
	Kind     EventKind
	State    State
	Attempt  *Attempt
	Announce *Announcement
}

// Timer is a cancellable pending transition.
type Timer interface {
	Stop() bool
}

// Scheduler runs f once after d.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type wallScheduler struct{}

func (wallScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
