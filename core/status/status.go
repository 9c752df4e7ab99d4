package status

import "time"

// Status is the lifecycle state of an incident. The values are the wire
// vocabulary used across the API and the database.
type Status string

const (
	Open       Status = "abierta"
	InProgress Status = "en curso"
	Closed     Status = "cerrada"
)

func Valid(s string) bool {
	switch Status(s) {
	case Open, InProgress, Closed:
		return true
	}
	return false
}

// Event is a state-machine input applied to an incident's derived status.
type Event int

const (
	// EventTaskCreated fires when a task is attached to an incident. It
	// forces the incident into "en curso" no matter how many tasks are
	// completed, matching the tracker's original behavior of moving an
	// incident out of "abierta" the moment work is planned against it.
	EventTaskCreated Event = iota
	// EventTaskCompleted and EventTaskUncompleted fire when a task's
	// completion flag changes; both re-derive from the full task set.
	EventTaskCompleted
	EventTaskUncompleted
)

// Derive computes an incident's status from its task counts. First match
// wins:
//
//  1. no tasks                  -> abierta
//  2. none completed            -> abierta
//  3. some but not all complete -> en curso
//  4. all completed             -> cerrada
//
// Pure and idempotent: recomputing without task changes yields the same
// status.
func Derive(total, completed int) Status {
	switch {
	case total == 0:
		return Open
	case completed == 0:
		return Open
	case completed < total:
		return InProgress
	default:
		return Closed
	}
}

// Next applies an event to an incident whose task set has the given counts
// and returns the resulting status. Manual overrides bypass the state
// machine entirely and are not represented here.
func Next(ev Event, total, completed int) Status {
	if ev == EventTaskCreated {
		return InProgress
	}
	return Derive(total, completed)
}

// ClosedAt returns the close timestamp that must accompany a transition to
// st: now when the incident closes, nil otherwise. Callers persist it
// atomically with the status so that the close timestamp is set exactly when
// the status is cerrada.
func ClosedAt(st Status, now time.Time) *time.Time {
	if st == Closed {
		return &now
	}
	return nil
}
