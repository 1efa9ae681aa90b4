package ports

import (
	"context"

	"deliverytasks/internal/core/domain/model/kernel"
	"deliverytasks/internal/core/domain/model/user"
)

// UserRepository defines the persistence contract for user accounts.
type UserRepository interface {
	// Add persists a new user. A duplicate email yields errs.ErrConflict.
	Add(ctx context.Context, aggregate *user.User) error

	// Get retrieves a user by id, or errs.ErrObjectNotFound.
	Get(ctx context.Context, id kernel.UUID) (*user.User, error)

	// Update stores the name, email, password hash and role of an existing
	// user. A missing user yields errs.ErrObjectNotFound and an email taken
	// by another user errs.ErrConflict.
	Update(ctx context.Context, aggregate *user.User) error

	// GetByEmail retrieves a user by normalized email, or errs.ErrObjectNotFound.
	GetByEmail(ctx context.Context, email string) (*user.User, error)
}
