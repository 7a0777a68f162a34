package practice

import "github.com/abhisek/wordspark/internal/session"

// startedMsg reports the outcome of Machine.Start.
type startedMsg struct {
	OK  bool
	Err error
}

// machineEventMsg carries one machine event into the update loop.
type machineEventMsg struct {
	Event session.Event
}

// announceDoneMsg is sent when an announcement has been spoken.
type announceDoneMsg struct {
	Err error
}
