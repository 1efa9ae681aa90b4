package commands

import (
	"errors"

	"deliverytasks/internal/core/domain/model/actor"
	"deliverytasks/internal/pkg/errs"
	"deliverytasks/internal/pkg/guard"
)

var ErrCreateUserCommandIsNotConstructed = errors.New(
	"CreateUserCommand must be created via NewCreateUserCommand or NewSystemCreateUserCommand constructor",
)

// CreateUserCommand registers an account. Requests issued through the API
// carry the calling actor; the seed and CLI paths use NewSystemCreateUserCommand.
type CreateUserCommand struct { //nolint:recvcheck //using for validation
	by       actor.Actor
	system   bool
	name     string
	email    string
	password string
	role     actor.Role

	guard guard.ConstructorGuard
}

func NewCreateUserCommand(by actor.Actor, name, email, password string, role actor.Role) (CreateUserCommand, error) {
	command := CreateUserCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		command.setBy(by),
		command.setName(name),
		command.setEmail(email),
		command.setPassword(password),
		command.setRole(role),
	); err != nil {
		return CreateUserCommand{}, err
	}

	return command, nil
}

// NewSystemCreateUserCommand builds a command that skips the admin check.
func NewSystemCreateUserCommand(name, email, password string, role actor.Role) (CreateUserCommand, error) {
	command, err := NewCreateUserCommand(actor.AnonymousActor(), name, email, password, role)
	if err != nil {
		return CreateUserCommand{}, err
	}
	command.system = true
	return command, nil
}

func (c CreateUserCommand) Validate() error {
	return c.guard.Validate(ErrCreateUserCommandIsNotConstructed)
}

func (c CreateUserCommand) By() actor.Actor {
	return c.by
}

func (c CreateUserCommand) IsSystem() bool {
	return c.system
}

func (c CreateUserCommand) Name() string {
	return c.name
}

func (c CreateUserCommand) Email() string {
	return c.email
}

func (c CreateUserCommand) Password() string {
	return c.password
}

func (c CreateUserCommand) Role() actor.Role {
	return c.role
}

func (c *CreateUserCommand) setBy(by actor.Actor) error {
	if err := by.Validate(); err != nil {
		return err
	}
	c.by = by
	return nil
}

func (c *CreateUserCommand) setName(name string) (err error) {
	c.name, err = validateRequired("name", name)
	return err
}

func (c *CreateUserCommand) setEmail(email string) (err error) {
	c.email, err = validateRequired("email", email)
	return err
}

func (c *CreateUserCommand) setPassword(password string) error {
	if password == "" {
		return errs.NewValueIsRequiredError("password")
	}
	c.password = password
	return nil
}

func (c *CreateUserCommand) setRole(role actor.Role) error {
	if err := role.Validate(); err != nil {
		return err
	}
	c.role = role
	return nil
}
