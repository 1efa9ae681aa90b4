package commands

import (
	"errors"

	"deliverytasks/internal/core/domain/model/actor"
	"deliverytasks/internal/core/domain/model/kernel"
	"deliverytasks/internal/pkg/errs"
	"deliverytasks/internal/pkg/guard"
)

var ErrUpdateUserCommandIsNotConstructed = errors.New(
	"UpdateUserCommand must be created via NewUpdateUserCommand constructor",
)

// UserChanges lists the account fields to replace; nil fields are kept.
type UserChanges struct {
	Name     *string
	Email    *string
	Password *string
	Role     *actor.Role
}

// UpdateUserCommand changes an account on behalf of an actor. A new password
// is hashed again, never stored as given.
type UpdateUserCommand struct { //nolint:recvcheck //using for validation
	by      actor.Actor
	userID  kernel.UUID
	changes UserChanges

	guard guard.ConstructorGuard
}

func NewUpdateUserCommand(by actor.Actor, userID kernel.UUID, changes UserChanges) (UpdateUserCommand, error) {
	command := UpdateUserCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		command.setBy(by),
		command.setUserID(userID),
		command.setChanges(changes),
	); err != nil {
		return UpdateUserCommand{}, err
	}

	return command, nil
}

func (c UpdateUserCommand) Validate() error {
	return c.guard.Validate(ErrUpdateUserCommandIsNotConstructed)
}

func (c UpdateUserCommand) By() actor.Actor {
	return c.by
}

func (c UpdateUserCommand) UserID() kernel.UUID {
	return c.userID
}

func (c UpdateUserCommand) Changes() UserChanges {
	return c.changes
}

func (c *UpdateUserCommand) setBy(by actor.Actor) error {
	if err := by.Validate(); err != nil {
		return err
	}
	c.by = by
	return nil
}

func (c *UpdateUserCommand) setUserID(userID kernel.UUID) error {
	if err := userID.Validate(); err != nil {
		return err
	}
	c.userID = userID
	return nil
}

func (c *UpdateUserCommand) setChanges(changes UserChanges) error {
	if changes.Name == nil && changes.Email == nil && changes.Password == nil && changes.Role == nil {
		return errs.NewValueIsRequiredError("changes")
	}

	var err error
	copied := UserChanges{}
	if changes.Name != nil {
		name, nameErr := validateRequired("name", *changes.Name)
		err = errors.Join(err, nameErr)
		copied.Name = &name
	}
	if changes.Email != nil {
		email, emailErr := validateRequired("email", *changes.Email)
		err = errors.Join(err, emailErr)
		copied.Email = &email
	}
	if changes.Password != nil {
		if *changes.Password == "" {
			err = errors.Join(err, errs.NewValueIsRequiredError("password"))
		}
		password := *changes.Password
		copied.Password = &password
	}
	if changes.Role != nil {
		err = errors.Join(err, changes.Role.Validate())
		role := *changes.Role
		copied.Role = &role
	}
	if err != nil {
		return err
	}

	c.changes = copied
	return nil
}
