package queries

import (
	"errors"

	"deliverytasks/internal/core/domain/model/actor"
	"deliverytasks/internal/pkg/guard"
)

var ErrGetAvailableTaskQueryIsNotConstructed = errors.New(
	"GetAvailableTaskQuery must be created via NewGetAvailableTaskQuery constructor",
)

// GetAvailableTaskQuery finds the next task a delivery agent could accept.
type GetAvailableTaskQuery struct {
	actor actor.Actor
	guard guard.ConstructorGuard
}

func NewGetAvailableTaskQuery(by actor.Actor) (GetAvailableTaskQuery, error) {
	if err := by.Validate(); err != nil {
		return GetAvailableTaskQuery{}, err
	}
	return GetAvailableTaskQuery{actor: by, guard: guard.NewConstructorGuard()}, nil
}

func (q GetAvailableTaskQuery) Validate() error {
	return q.guard.Validate(ErrGetAvailableTaskQueryIsNotConstructed)
}

func (q GetAvailableTaskQuery) Actor() actor.Actor {
	return q.actor
}
