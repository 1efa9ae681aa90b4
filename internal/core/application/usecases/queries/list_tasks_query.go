package queries

import (
	"errors"

	"deliverytasks/internal/core/domain/model/actor"
	"deliverytasks/internal/core/domain/model/task"
	"deliverytasks/internal/pkg/guard"
)

var ErrListTasksQueryIsNotConstructed = errors.New(
	"ListTasksQuery must be created via NewListTasksQuery constructor",
)

// ListTasksQuery lists the tasks an actor may see, optionally narrowed to
// tasks whose current state is one of states.
//
// Example:
//
//	query, err := NewListTasksQuery(manager, task.New, task.Accepted)
//	if err != nil {
//	    return err
//	}
//	tasks, err := handler.Handle(ctx, query)
type ListTasksQuery struct {
	actor  actor.Actor
	states []task.State

	guard guard.ConstructorGuard
}

func NewListTasksQuery(by actor.Actor, states ...task.State) (ListTasksQuery, error) {
	if err := by.Validate(); err != nil {
		return ListTasksQuery{}, err
	}

	errList := make([]error, 0, len(states))
	for _, s := range states {
		errList = append(errList, s.Validate())
	}
	if err := errors.Join(errList...); err != nil {
		return ListTasksQuery{}, err
	}

	return ListTasksQuery{
		actor:  by,
		states: append([]task.State(nil), states...),
		guard:  guard.NewConstructorGuard(),
	}, nil
}

func (q ListTasksQuery) Validate() error {
	return q.guard.Validate(ErrListTasksQueryIsNotConstructed)
}

func (q ListTasksQuery) Actor() actor.Actor {
	return q.actor
}

// States returns the state filter; empty means every state.
func (q ListTasksQuery) States() []task.State {
	return append([]task.State(nil), q.states...)
}
