package task

import (
	"fmt"
	"strings"

	"deliverytasks/internal/pkg/errs"
)

// State is a lifecycle state of a task.
//
// Transition table:
//
//	New       -> Accepted, Cancelled
//	Accepted  -> Completed, Declined, Cancelled
//	Declined  -> New
//	Completed -> (terminal)
//	Cancelled -> (terminal)
type State int

const (
	// Unknown is the zero value and never a valid state.
	Unknown State = iota
	New
	Accepted
	Completed
	Declined
	Cancelled
)

func getStateStrings() map[State]string {
	return map[State]string{
		Unknown:   "unknown",
		New:       "new",
		Accepted:  "accepted",
		Completed: "completed",
		Declined:  "declined",
		Cancelled: "cancelled",
	}
}

// getTransitionTable returns the states reachable in one step from each state.
func getTransitionTable() map[State][]State {
	//nolint:exhaustive // Unknown has no outgoing edges
	return map[State][]State{
		New:       {Accepted, Cancelled},
		Accepted:  {Completed, Declined, Cancelled},
		Completed: {},
		Declined:  {New},
		Cancelled: {},
	}
}

// ParseState converts a wire name ("accepted", ...) into a State.
func ParseState(s string) (State, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for state, name := range getStateStrings() {
		if state != Unknown && name == s {
			return state, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("state", fmt.Errorf("%q is not a known state", s))
}

// Validate rejects Unknown and any undeclared value.
func (s State) Validate() error {
	if _, ok := getTransitionTable()[s]; !ok {
		return errs.NewValueIsOutOfRangeError("state", int(s), int(New), int(Cancelled))
	}
	return nil
}

func (s State) String() string {
	if str, ok := getStateStrings()[s]; ok {
		return str
	}
	return "unknown"
}

// AllowedNext returns the states reachable from s in one step.
func (s State) AllowedNext() []State {
	next := getTransitionTable()[s]
	out := make([]State, len(next))
	copy(out, next)
	return out
}

func (s State) CanTransitionTo(target State) bool {
	for _, next := range getTransitionTable()[s] {
		if next == target {
			return true
		}
	}
	return false
}

// ValidateTransitionTo returns an errs.InvalidTransitionError when target is
// not reachable from s in one step.
func (s State) ValidateTransitionTo(target State) error {
	if !s.CanTransitionTo(target) {
		return errs.NewInvalidTransitionError(s, target)
	}
	return nil
}

// IsTerminal reports whether s has no outgoing transitions.
func (s State) IsTerminal() bool {
	next, ok := getTransitionTable()[s]
	return ok && len(next) == 0
}
