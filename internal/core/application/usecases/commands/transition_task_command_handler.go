package commands

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"deliverytasks/internal/core/domain/model/task"
	"deliverytasks/internal/core/domain/services"
	"deliverytasks/internal/pkg/errs"
)

// TransitionTaskCommandHandler applies one lifecycle action to one task.
//
// The ledger append and the task update run in one transaction. Both are
// guarded: the record's (task, sequence) pair is unique and the update only
// matches the version read at the start. When two transitions of the same
// task race, the loser gets errs.ErrConflict, its transaction is rolled back
// and nothing is retried. Transitions of different tasks never contend.
//
// Example:
//
//	t, err := handler.Handle(ctx, cmd)
//	switch {
//	case errors.Is(err, errs.ErrConflict):
//	    // reload and let the caller decide
//	case errors.Is(err, errs.ErrInvalidTransition):
//	    // task already moved on
//	}
type TransitionTaskCommandHandler struct {
	uowFactory TaskUoWFactory
	lifecycle  services.Lifecycle
	logger     *slog.Logger
	now        func() time.Time
}

func NewTransitionTaskCommandHandler(
	uowFactory TaskUoWFactory,
	lifecycle services.Lifecycle,
	logger *slog.Logger,
) TransitionTaskCommandHandler {
	return TransitionTaskCommandHandler{
		uowFactory: uowFactory,
		lifecycle:  lifecycle,
		logger:     logger.With("component", "transition_task_handler"),
		now:        time.Now,
	}
}

// Handle returns the task as committed. Anonymous actors are turned away
// before the task is loaded, so they cannot tell which ids exist.
//
// Errors:
//   - errs.ErrObjectNotFound: no such task
//   - errs.ErrInvalidTransition: the action is not legal from the current state
//   - errs.ErrUnauthorized: the actor may not apply the action to this task
//   - errs.ErrConflict: another transition of the task committed first
func (h *TransitionTaskCommandHandler) Handle(ctx context.Context, cmd TransitionTaskCommand) (*task.Task, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	if cmd.Actor().IsAnonymous() {
		return nil, errs.NewUnauthorizedError("anonymous actors cannot change tasks")
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	taskRepo := uow.TaskRepository()
	current, err := taskRepo.Get(ctx, cmd.TaskID())
	if err != nil {
		return nil, err
	}

	expectedVersion := current.Version()
	record, err := h.lifecycle.Apply(current, cmd.Actor(), cmd.Action(), h.now())
	if err != nil {
		return nil, err
	}

	if err = taskRepo.AppendState(ctx, current, record); err != nil {
		h.logConflict(ctx, cmd, err)
		return nil, err
	}

	if err = taskRepo.Update(ctx, current, expectedVersion); err != nil {
		h.logConflict(ctx, cmd, err)
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	h.logger.InfoContext(ctx, "task transitioned",
		"task_id", cmd.TaskID().String(),
		"action", cmd.Action().String(),
		"state", current.CurrentState().String(),
		"actor", cmd.Actor().String())

	return current, nil
}

func (h *TransitionTaskCommandHandler) logConflict(ctx context.Context, cmd TransitionTaskCommand, err error) {
	if !errors.Is(err, errs.ErrConflict) {
		return
	}
	h.logger.WarnContext(ctx, "concurrent transition rejected",
		"task_id", cmd.TaskID().String(),
		"action", cmd.Action().String(),
		"actor", cmd.Actor().String())
}
