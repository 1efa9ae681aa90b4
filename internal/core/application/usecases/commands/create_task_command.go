package commands

import (
	"errors"

	"deliverytasks/internal/core/domain/model/actor"
	"deliverytasks/internal/core/domain/model/kernel"
	"deliverytasks/internal/core/domain/model/task"
	"deliverytasks/internal/pkg/guard"
)

var ErrCreateTaskCommandIsNotConstructed = errors.New(
	"CreateTaskCommand must be created via NewCreateTaskCommand constructor",
)

// CreateTaskCommand represents a store manager's request for a new delivery task.
//
// Example:
//
//	cmd, err := NewCreateTaskCommand(manager, "Hot Chicken Kathi Roll", "Down Town", "high")
//	if err != nil {
//	    return fmt.Errorf("invalid task data: %w", err)
//	}
//
//	t, err := handler.Handle(ctx, cmd)
type CreateTaskCommand struct { //nolint:recvcheck //using for validation
	creator     actor.Actor
	title       string
	destination kernel.Destination
	priority    task.Priority

	guard guard.ConstructorGuard
}

// NewCreateTaskCommand validates the raw input. Title and destination are
// trimmed and must be non-empty; priority is one of low, medium, high.
// Whether creator may create tasks is decided by the handler.
func NewCreateTaskCommand(creator actor.Actor, title, destination, priority string) (CreateTaskCommand, error) {
	command := CreateTaskCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		command.setCreator(creator),
		command.setTitle(title),
		command.setDestination(destination),
		command.setPriority(priority),
	); err != nil {
		return CreateTaskCommand{}, err
	}

	return command, nil
}

func (c CreateTaskCommand) Validate() error {
	return c.guard.Validate(ErrCreateTaskCommandIsNotConstructed)
}

func (c CreateTaskCommand) Creator() actor.Actor {
	return c.creator
}

func (c CreateTaskCommand) Title() string {
	return c.title
}

func (c CreateTaskCommand) Destination() kernel.Destination {
	return c.destination
}

func (c CreateTaskCommand) Priority() task.Priority {
	return c.priority
}

func (c *CreateTaskCommand) setCreator(creator actor.Actor) error {
	if err := creator.Validate(); err != nil {
		return err
	}
	c.creator = creator
	return nil
}

func (c *CreateTaskCommand) setTitle(title string) error {
	title, err := validateTitle(title)
	if err != nil {
		return err
	}
	c.title = title
	return nil
}

func (c *CreateTaskCommand) setDestination(address string) error {
	destination, err := kernel.NewDestination(address)
	if err != nil {
		return err
	}
	c.destination = destination
	return nil
}

func (c *CreateTaskCommand) setPriority(priority string) error {
	p, err := task.ParsePriority(priority)
	if err != nil {
		return err
	}
	c.priority = p
	return nil
}
