package commands

import (
	"context"
	"log/slog"
	"time"

	"deliverytasks/internal/core/domain/model/task"
	"deliverytasks/internal/core/domain/services"
)

// UpdateTaskCommandHandler lets the creator of a task change its details
// while nobody has accepted it yet.
//
// Editing does not append to the ledger, so the version stays the same. The
// update is still guarded by that version: an acceptance committing between
// the read and the write makes the edit fail with errs.ErrConflict.
type UpdateTaskCommandHandler struct {
	uowFactory TaskUoWFactory
	lifecycle  services.Lifecycle
	logger     *slog.Logger
	now        func() time.Time
}

func NewUpdateTaskCommandHandler(
	uowFactory TaskUoWFactory,
	lifecycle services.Lifecycle,
	logger *slog.Logger,
) UpdateTaskCommandHandler {
	return UpdateTaskCommandHandler{
		uowFactory: uowFactory,
		lifecycle:  lifecycle,
		logger:     logger.With("component", "update_task_handler"),
		now:        time.Now,
	}
}

// Handle returns the task as committed.
//
// Errors:
//   - errs.ErrObjectNotFound: no such task
//   - errs.ErrUnauthorized: the actor did not create the task
//   - errs.ErrInvalidState: the task is no longer new
//   - errs.ErrConflict: a transition of the task committed first
func (h *UpdateTaskCommandHandler) Handle(ctx context.Context, cmd UpdateTaskCommand) (*task.Task, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
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

	err = h.lifecycle.Edit(current, cmd.Actor(), cmd.Title(), cmd.Destination(), cmd.Priority(), h.now())
	if err != nil {
		return nil, err
	}

	if err = taskRepo.Update(ctx, current, current.Version()); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	h.logger.InfoContext(ctx, "task edited",
		"task_id", cmd.TaskID().String(),
		"actor", cmd.Actor().String())

	return current, nil
}
