package models

import "fmt"

// Status is the participant lifecycle state. Transitions only move forward
// (Draft → Active → Requested → Deleted); going backwards needs an explicit
// administrative override.
type Status string

const (
	StatusDraft     Status = "Draft"
	StatusActive    Status = "Active"
	StatusRequested Status = "Requested"
	StatusDeleted   Status = "Deleted"
)

var statusRank = map[Status]int{
	StatusDraft:     0,
	StatusActive:    1,
	StatusRequested: 2,
	StatusDeleted:   3,
}

// Valid reports whether s is one of the four known states.
func (s Status) Valid() bool {
	_, ok := statusRank[s]
	return ok
}

// CanTransitionTo reports whether moving from s to next is a legal forward
// transition. Same-state writes are allowed (remote echoes repeat them).
func (s Status) CanTransitionTo(next Status) bool {
	from, ok1 := statusRank[s]
	to, ok2 := statusRank[next]
	if !ok1 || !ok2 {
		return false
	}
	return to >= from
}

// Transition moves the participant to next, rejecting backward transitions
// unless adminOverride is set.
func (p *Participant) Transition(next Status, adminOverride bool) error {
	if !next.Valid() {
		return fmt.Errorf("unknown status %q", next)
	}
	if !p.Status.CanTransitionTo(next) && !adminOverride {
		return fmt.Errorf("illegal status transition %s → %s", p.Status, next)
	}
	p.Status = next
	return nil
}
