package services

import (
	"fmt"
	"strings"
	"time"

	"deliverytasks/internal/core/domain/model/actor"
	"deliverytasks/internal/core/domain/model/kernel"
	"deliverytasks/internal/core/domain/model/task"
	"deliverytasks/internal/pkg/errs"
)

// Action is a verb exposed to callers; each one names exactly one target state.
type Action int

const (
	Accept Action = iota + 1
	Complete
	Decline
	Cancel
)

func getActionStrings() map[Action]string {
	return map[Action]string{
		Accept:   "accept",
		Complete: "complete",
		Decline:  "decline",
		Cancel:   "cancel",
	}
}

func getActionTargets() map[Action]task.State {
	return map[Action]task.State{
		Accept:   task.Accepted,
		Complete: task.Completed,
		Decline:  task.Declined,
		Cancel:   task.Cancelled,
	}
}

// ParseAction converts "accept", "complete", "decline" or "cancel" into an Action.
func ParseAction(s string) (Action, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for a, name := range getActionStrings() {
		if name == s {
			return a, nil
		}
	}
	return 0, errs.NewValueIsInvalidErrorWithCause(
		"action",
		fmt.Errorf("%q is not one of accept, complete, decline, cancel", s),
	)
}

func (a Action) String() string {
	if str, ok := getActionStrings()[a]; ok {
		return str
	}
	return "unknown"
}

// Target returns the state the action moves a task into.
func (a Action) Target() (task.State, error) {
	target, ok := getActionTargets()[a]
	if !ok {
		return task.Unknown, errs.NewValueIsOutOfRangeError("action", int(a), int(Accept), int(Cancel))
	}
	return target, nil
}

// Lifecycle is the single entry point for changing a task's state.
//
// Key responsibilities:
//   - Rejecting steps the transition table does not allow
//   - Rejecting actors the TransitionPolicy does not authorize
//   - Appending exactly one ledger record for an accepted step
//
// Lifecycle works in memory. Persisting the appended record atomically, and
// detecting that another writer got there first, is the caller's job.
//
// Example usage:
//
//	lifecycle := services.NewLifecycle(services.NewTransitionPolicy())
//	record, err := lifecycle.Transition(t, agent, task.Accepted, time.Now())
//	switch {
//	case errors.Is(err, errs.ErrInvalidTransition):
//	    // the task is not in a state that allows acceptance
//	case errors.Is(err, errs.ErrUnauthorized):
//	    // agent may not accept this task
//	}
type Lifecycle struct {
	policy TransitionPolicy
}

func NewLifecycle(policy TransitionPolicy) Lifecycle {
	return Lifecycle{policy: policy}
}

// Create builds a new task on behalf of creator after checking that the
// creator may create tasks.
func (l Lifecycle) Create(
	creator actor.Actor,
	id kernel.UUID,
	title string,
	destination kernel.Destination,
	priority task.Priority,
	at time.Time,
) (*task.Task, error) {
	if err := l.policy.AuthorizeCreate(creator).Err(); err != nil {
		return nil, err
	}

	creatorID, _ := creator.ID()
	return task.NewTask(id, creatorID, title, destination, priority, at)
}

// Transition moves t into target on behalf of by.
//
// Checks run in order and the first failure is returned:
//   - target is not reachable from the current state: errs.ErrInvalidTransition
//   - the policy denies by: errs.ErrUnauthorized with the policy's reason
//
// On success the appended record is returned and t reflects the new state.
// On failure t is unchanged.
func (l Lifecycle) Transition(t *task.Task, by actor.Actor, target task.State, at time.Time) (task.StateRecord, error) {
	if err := t.Validate(); err != nil {
		return task.StateRecord{}, err
	}

	if err := t.CurrentState().ValidateTransitionTo(target); err != nil {
		return task.StateRecord{}, err
	}

	if err := l.policy.Authorize(by, t, target).Err(); err != nil {
		return task.StateRecord{}, err
	}

	return t.RecordTransition(target, by, at)
}

// Edit replaces the details of t on behalf of by. The policy runs first, so
// a caller who may not edit t learns nothing about its state.
func (l Lifecycle) Edit(
	t *task.Task,
	by actor.Actor,
	title string,
	destination kernel.Destination,
	priority task.Priority,
	at time.Time,
) error {
	if err := t.Validate(); err != nil {
		return err
	}

	if err := l.policy.AuthorizeEdit(by, t).Err(); err != nil {
		return err
	}

	return t.Edit(title, destination, priority, at)
}

// Apply is Transition for a caller-facing Action.
func (l Lifecycle) Apply(t *task.Task, by actor.Actor, action Action, at time.Time) (task.StateRecord, error) {
	target, err := action.Target()
	if err != nil {
		return task.StateRecord{}, err
	}
	return l.Transition(t, by, target, at)
}
