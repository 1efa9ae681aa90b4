package queries

import (
	"errors"

	"deliverytasks/internal/core/domain/model/actor"
	"deliverytasks/internal/core/domain/model/kernel"
	"deliverytasks/internal/pkg/guard"
)

var ErrListUsersQueryIsNotConstructed = errors.New(
	"ListUsersQuery must be created via NewListUsersQuery constructor",
)

// ListUsersQuery lists every account. Only admins may run it.
type ListUsersQuery struct {
	actor actor.Actor
	guard guard.ConstructorGuard
}

func NewListUsersQuery(by actor.Actor) (ListUsersQuery, error) {
	if err := by.Validate(); err != nil {
		return ListUsersQuery{}, err
	}
	return ListUsersQuery{actor: by, guard: guard.NewConstructorGuard()}, nil
}

func (q ListUsersQuery) Validate() error {
	return q.guard.Validate(ErrListUsersQueryIsNotConstructed)
}

func (q ListUsersQuery) Actor() actor.Actor {
	return q.actor
}

// UserSummary is an account without its credentials.
type UserSummary struct {
	ID    kernel.UUID
	Name  string
	Email string
	Role  actor.Role
}
