package commands

import (
	"context"

	"deliverytasks/internal/core/domain/model/actor"
	"deliverytasks/internal/core/domain/model/user"
	"deliverytasks/internal/pkg/errs"
)

// UpdateUserCommandHandler changes accounts. Admins may change any account
// including its role; everyone else may change their own name, email and
// password.
type UpdateUserCommandHandler struct {
	uowFactory UserUoWFactory
	bcryptCost int
}

func NewUpdateUserCommandHandler(uowFactory UserUoWFactory, bcryptCost int) UpdateUserCommandHandler {
	return UpdateUserCommandHandler{
		uowFactory: uowFactory,
		bcryptCost: bcryptCost,
	}
}

// Handle returns the account as committed. Access is checked before the
// lookup. An email registered to another account yields errs.ErrConflict.
func (h *UpdateUserCommandHandler) Handle(ctx context.Context, cmd UpdateUserCommand) (*user.User, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	by := cmd.By()
	id := cmd.UserID()
	changes := cmd.Changes()
	isAdmin := by.Role() == actor.Admin
	if !isAdmin && !by.Is(&id) {
		return nil, errs.NewUnauthorizedError("only admins may change other users")
	}
	if !isAdmin && changes.Role != nil {
		return nil, errs.NewUnauthorizedError("only admins may change roles")
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	userRepo := uow.UserRepository()
	current, err := userRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err = h.apply(current, changes); err != nil {
		return nil, err
	}

	if err = userRepo.Update(ctx, current); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	return current, nil
}

func (h *UpdateUserCommandHandler) apply(u *user.User, changes UserChanges) error {
	var err error
	if changes.Name != nil {
		err = u.Rename(*changes.Name)
	}
	if changes.Email != nil && err == nil {
		err = u.ChangeEmail(*changes.Email)
	}
	if changes.Role != nil && err == nil {
		err = u.ChangeRole(*changes.Role)
	}
	if changes.Password != nil && err == nil {
		err = u.ChangePassword(*changes.Password, h.bcryptCost)
	}
	return err
}
