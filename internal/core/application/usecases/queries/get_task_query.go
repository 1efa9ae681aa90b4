package queries

import (
	"errors"

	"deliverytasks/internal/core/domain/model/actor"
	"deliverytasks/internal/core/domain/model/kernel"
	"deliverytasks/internal/pkg/guard"
)

var ErrGetTaskQueryIsNotConstructed = errors.New(
	"GetTaskQuery must be created via NewGetTaskQuery constructor",
)

// GetTaskQuery reads one task with its ledger on behalf of an actor.
type GetTaskQuery struct {
	actor  actor.Actor
	taskID kernel.UUID

	guard guard.ConstructorGuard
}

func NewGetTaskQuery(by actor.Actor, taskID kernel.UUID) (GetTaskQuery, error) {
	if err := errors.Join(by.Validate(), taskID.Validate()); err != nil {
		return GetTaskQuery{}, err
	}

	return GetTaskQuery{
		actor:  by,
		taskID: taskID,
		guard:  guard.NewConstructorGuard(),
	}, nil
}

func (q GetTaskQuery) Validate() error {
	return q.guard.Validate(ErrGetTaskQueryIsNotConstructed)
}

func (q GetTaskQuery) Actor() actor.Actor {
	return q.actor
}

func (q GetTaskQuery) TaskID() kernel.UUID {
	return q.taskID
}
