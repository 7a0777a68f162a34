package session

import (
	"time"

	"github.com/abhisek/wordspark/internal/rounds"
	"github.com/abhisek/wordspark/internal/stats"
)

// Phase represents the current phase of the session.
type Phase int

const (
	PhaseIdle          Phase = iota // No session running
	PhaseActive                     // A round is on screen
	PhaseTransitioning              // Round finished, next one pending
	PhaseEnded                      // Pool ran dry; waiting for End
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseActive:
		return "active"
	case PhaseTransitioning:
		return "transitioning"
	case PhaseEnded:
		return "ended"
	}
	return "unknown"
}

// State is the transient state of one practice session. It is never
// persisted; End folds it into a stats.Record.
type State struct {
	// Phase is the current session phase.
	Phase Phase

	// Mode is the exercise type being practiced.
	Mode Mode

	// SessionID identifies this run.
	SessionID string

	// CollectionIDs are the collections assigned at Start.
	CollectionIDs []string

	// Round holds the item ids drawn for the current round.
	Round []string

	// Choices are the labelled answer tiles for matching modes.
	Choices []rounds.Choice

	// Target is the item to judge in single-target modes.
	Target string

	// Pool is the rotating working set rounds are drawn from.
	Pool rounds.Pool

	// RoundNumber counts rounds drawn in this session, starting at 1.
	RoundNumber int

	// Correct is the number of correct attempts.
	Correct int

	// Total is the number of attempts.
	Total int

	// Transitioning is true while the next round is pending.
	Transitioning bool

	// StartedAt is when Start succeeded.
	StartedAt time.Time

	// Err is the last "cannot proceed" condition. Callers read and clear it.
	Err error
}

func (s State) clone() State {
	out := s
	out.CollectionIDs = append([]string(nil), s.CollectionIDs...)
	out.Round = append([]string(nil), s.Round...)
	out.Choices = append([]rounds.Choice(nil), s.Choices...)
	out.Pool.IDs = append([]string(nil), s.Pool.IDs...)
	out.Pool.Last = append([]string(nil), s.Pool.Last...)
	return out
}

// Accuracy returns the running accuracy percentage.
func (s State) Accuracy() int {
	return stats.Accuracy(s.Correct, s.Total)
}

// Attempt is the outcome of one recorded answer.
type Attempt struct {
	ItemID        string
	Correct       bool
	RoundComplete bool
}
