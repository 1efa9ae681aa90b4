package commands

import (
	"errors"

	"deliverytasks/internal/core/domain/model/actor"
	"deliverytasks/internal/core/domain/model/kernel"
	"deliverytasks/internal/core/domain/model/task"
	"deliverytasks/internal/pkg/guard"
)

var ErrUpdateTaskCommandIsNotConstructed = errors.New(
	"UpdateTaskCommand must be created via NewUpdateTaskCommand constructor",
)

// UpdateTaskCommand replaces the title, destination and priority of a task.
// The input rules are those of CreateTaskCommand.
type UpdateTaskCommand struct { //nolint:recvcheck //using for validation
	actor       actor.Actor
	taskID      kernel.UUID
	title       string
	destination kernel.Destination
	priority    task.Priority

	guard guard.ConstructorGuard
}

func NewUpdateTaskCommand(
	by actor.Actor,
	taskID kernel.UUID,
	title, destination, priority string,
) (UpdateTaskCommand, error) {
	command := UpdateTaskCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		command.setActor(by),
		command.setTaskID(taskID),
		command.setTitle(title),
		command.setDestination(destination),
		command.setPriority(priority),
	); err != nil {
		return UpdateTaskCommand{}, err
	}

	return command, nil
}

func (c UpdateTaskCommand) Validate() error {
	return c.guard.Validate(ErrUpdateTaskCommandIsNotConstructed)
}

func (c UpdateTaskCommand) Actor() actor.Actor {
	return c.actor
}

func (c UpdateTaskCommand) TaskID() kernel.UUID {
	return c.taskID
}

func (c UpdateTaskCommand) Title() string {
	return c.title
}

func (c UpdateTaskCommand) Destination() kernel.Destination {
	return c.destination
}

func (c UpdateTaskCommand) Priority() task.Priority {
	return c.priority
}

func (c *UpdateTaskCommand) setActor(by actor.Actor) error {
	if err := by.Validate(); err != nil {
		return err
	}
	c.actor = by
	return nil
}

func (c *UpdateTaskCommand) setTaskID(taskID kernel.UUID) error {
	if err := taskID.Validate(); err != nil {
		return err
	}
	c.taskID = taskID
	return nil
}

func (c *UpdateTaskCommand) setTitle(title string) (err error) {
	c.title, err = validateTitle(title)
	return err
}

func (c *UpdateTaskCommand) setDestination(address string) (err error) {
	c.destination, err = kernel.NewDestination(address)
	return err
}

func (c *UpdateTaskCommand) setPriority(priority string) (err error) {
	c.priority, err = task.ParsePriority(priority)
	return err
}
