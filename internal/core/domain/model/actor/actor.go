package actor

import (
	"errors"

	"deliverytasks/internal/core/domain/model/kernel"
	"deliverytasks/internal/pkg/guard"
)

var ErrActorIsNotConstructed = errors.New("Actor must be created via NewActor or AnonymousActor")

// Actor is the caller of an operation. Every role except Anonymous carries an
// identity; the identity of an anonymous actor is always absent.
type Actor struct { //nolint:recvcheck //using for validation
	id    *kernel.UUID
	role  Role
	guard guard.ConstructorGuard
}

// NewActor builds an authenticated actor. Passing the Anonymous role yields
// the same value as AnonymousActor, ignoring id.
func NewActor(id kernel.UUID, role Role) (Actor, error) {
	if err := role.Validate(); err != nil {
		return Actor{}, err
	}
	if role == Anonymous {
		return AnonymousActor(), nil
	}
	if err := id.Validate(); err != nil {
		return Actor{}, err
	}

	return Actor{id: &id, role: role, guard: guard.NewConstructorGuard()}, nil
}

// AnonymousActor is the actor of a request without credentials.
func AnonymousActor() Actor {
	return Actor{role: Anonymous, guard: guard.NewConstructorGuard()}
}

func (a Actor) Validate() error {
	return a.guard.Validate(ErrActorIsNotConstructed)
}

// ID returns the actor identity and false for anonymous actors.
func (a Actor) ID() (kernel.UUID, bool) {
	if a.id == nil {
		return kernel.UUID{}, false
	}
	return *a.id, true
}

func (a Actor) Role() Role {
	return a.role
}

func (a Actor) IsAnonymous() bool {
	return a.id == nil
}

// Is reports whether the actor has the given identity.
func (a Actor) Is(id *kernel.UUID) bool {
	return a.id != nil && id != nil && a.id.IsEqual(*id)
}

func (a Actor) String() string {
	if a.id == nil {
		return a.role.String()
	}
	return a.role.String() + ":" + a.id.String()
}
