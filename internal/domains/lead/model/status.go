package model

import "slices"

type Status string

const (
	StatusTentative Status = "tentative"
	StatusConfirmed Status = "confirmed"
	StatusLost      Status = "lost"
)

var Statuses = []Status{StatusTentative, StatusConfirmed, StatusLost}

// transitions lists the statuses reachable from each status. A confirmed
// booking can still be cancelled, and a lost lead can be reopened.
var transitions = map[Status][]Status{
	StatusTentative: {StatusConfirmed, StatusLost},
	StatusConfirmed: {StatusLost},
	StatusLost:      {StatusTentative},
}

func (s Status) IsValid() bool {
	return slices.Contains(Statuses, s)
}

func (s Status) CanTransitionTo(next Status) bool {
	return slices.Contains(transitions[s], next)
}

func (s Status) String() string {
	return string(s)
}
