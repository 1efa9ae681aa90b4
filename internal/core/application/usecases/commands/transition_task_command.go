package commands

import (
	"errors"

	"deliverytasks/internal/core/domain/model/actor"
	"deliverytasks/internal/core/domain/model/kernel"
	"deliverytasks/internal/core/domain/services"
	"deliverytasks/internal/pkg/guard"
)

var ErrTransitionTaskCommandIsNotConstructed = errors.New(
	"TransitionTaskCommand must be created via NewTransitionTaskCommand constructor",
)

// TransitionTaskCommand asks to apply an action (accept, complete, decline,
// cancel) to a task on behalf of an actor.
//
// Example:
//
//	action, err := services.ParseAction(c.Param("action"))
//	if err != nil {
//	    return err
//	}
//	cmd, err := NewTransitionTaskCommand(agent, taskID, action)
type TransitionTaskCommand struct { //nolint:recvcheck //using for validation
	actor  actor.Actor
	taskID kernel.UUID
	action services.Action

	guard guard.ConstructorGuard
}

func NewTransitionTaskCommand(
	by actor.Actor,
	taskID kernel.UUID,
	action services.Action,
) (TransitionTaskCommand, error) {
	command := TransitionTaskCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		command.setActor(by),
		command.setTaskID(taskID),
		command.setAction(action),
	); err != nil {
		return TransitionTaskCommand{}, err
	}

	return command, nil
}

func (c TransitionTaskCommand) Validate() error {
	return c.guard.Validate(ErrTransitionTaskCommandIsNotConstructed)
}

func (c TransitionTaskCommand) Actor() actor.Actor {
	return c.actor
}

func (c TransitionTaskCommand) TaskID() kernel.UUID {
	return c.taskID
}

func (c TransitionTaskCommand) Action() services.Action {
	return c.action
}

func (c *TransitionTaskCommand) setActor(by actor.Actor) error {
	if err := by.Validate(); err != nil {
		return err
	}
	c.actor = by
	return nil
}

func (c *TransitionTaskCommand) setTaskID(taskID kernel.UUID) error {
	if err := taskID.Validate(); err != nil {
		return err
	}
	c.taskID = taskID
	return nil
}

func (c *TransitionTaskCommand) setAction(action services.Action) error {
	if _, err := action.Target(); err != nil {
		return err
	}
	c.action = action
	return nil
}
