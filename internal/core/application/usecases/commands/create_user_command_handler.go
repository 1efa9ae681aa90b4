package commands

import (
	"context"

	"deliverytasks/internal/core/domain/model/actor"
	"deliverytasks/internal/core/domain/model/kernel"
	"deliverytasks/internal/core/domain/model/user"
	"deliverytasks/internal/pkg/errs"
)

// CreateUserCommandHandler registers accounts. Only admins may do so through
// the API. The password is hashed before the transaction opens.
type CreateUserCommandHandler struct {
	uowFactory UserUoWFactory
	bcryptCost int
}

func NewCreateUserCommandHandler(uowFactory UserUoWFactory, bcryptCost int) CreateUserCommandHandler {
	return CreateUserCommandHandler{
		uowFactory: uowFactory,
		bcryptCost: bcryptCost,
	}
}

// Handle returns errs.ErrConflict when the email is already registered.
func (h *CreateUserCommandHandler) Handle(ctx context.Context, cmd CreateUserCommand) (*user.User, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	if !cmd.IsSystem() && cmd.By().Role() != actor.Admin {
		return nil, errs.NewUnauthorizedError("only admins may create users")
	}

	created, err := user.NewUser(kernel.NewUUID(), cmd.Name(), cmd.Email(), cmd.Password(), cmd.Role(), h.bcryptCost)
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

	if err = uow.UserRepository().Add(ctx, created); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	return created, nil
}
