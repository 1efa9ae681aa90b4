package commands

import (
	"context"
	"time"

	"deliverytasks/internal/core/domain/model/kernel"
	"deliverytasks/internal/core/domain/model/task"
	"deliverytasks/internal/core/domain/services"
)

// CreateTaskCommandHandler creates a task with its initial New record and
// persists both in one transaction.
type CreateTaskCommandHandler struct {
	uowFactory TaskUoWFactory
	lifecycle  services.Lifecycle
	now        func() time.Time
}

func NewCreateTaskCommandHandler(uowFactory TaskUoWFactory, lifecycle services.Lifecycle) CreateTaskCommandHandler {
	return CreateTaskCommandHandler{
		uowFactory: uowFactory,
		lifecycle:  lifecycle,
		now:        time.Now,
	}
}

// Handle returns errs.ErrUnauthorized before opening a transaction when the
// creator is not a store manager.
func (h *CreateTaskCommandHandler) Handle(ctx context.Context, cmd CreateTaskCommand) (*task.Task, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	created, err := h.lifecycle.Create(
		cmd.Creator(),
		kernel.NewUUID(),
		cmd.Title(),
		cmd.Destination(),
		cmd.Priority(),
		h.now(),
	)
	if err != nil {
		return nil, err
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err = uow.TaskRepository().Add(ctx, created); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	return created, nil
}
