package queries

import (
	"errors"

	"deliverytasks/internal/core/domain/model/actor"
	"deliverytasks/internal/core/domain/model/kernel"
	"deliverytasks/internal/pkg/guard"
)

var ErrGetUserQueryIsNotConstructed = errors.New(
	"GetUserQuery must be created via NewGetUserQuery constructor",
)

// GetUserQuery reads one account. Admins may read any account, everyone else
// only their own.
type GetUserQuery struct {
	actor  actor.Actor
	userID kernel.UUID

	guard guard.ConstructorGuard
}

func NewGetUserQuery(by actor.Actor, userID kernel.UUID) (GetUserQuery, error) {
	if err := errors.Join(by.Validate(), userID.Validate()); err != nil {
		return GetUserQuery{}, err
	}

	return GetUserQuery{
		actor:  by,
		userID: userID,
		guard:  guard.NewConstructorGuard(),
	}, nil
}

func (q GetUserQuery) Validate() error {
	return q.guard.Validate(ErrGetUserQueryIsNotConstructed)
}

func (q GetUserQuery) Actor() actor.Actor {
	return q.actor
}

func (q GetUserQuery) UserID() kernel.UUID {
	return q.userID
}
