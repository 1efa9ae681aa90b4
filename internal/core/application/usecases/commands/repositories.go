// Package commands contains the operations that change system state: creating
// tasks and users, moving tasks through their lifecycle, and logging in.
// Every handler follows the same pattern: validate the command, open a unit
// of work, apply the domain operation, persist, commit.
package commands

import (
	"context"
	"time"

	"deliverytasks/internal/core/domain/model/actor"
	"deliverytasks/internal/core/ports"
)

// Unit of Work interfaces provide transaction management for command handlers.
type (
	// TxManager handles database transaction lifecycle.
	TxManager interface {
		Begin(ctx context.Context) error
		Commit(ctx context.Context) error
		Rollback(ctx context.Context) error
	}

	// TaskRepoFactory provides access to the task repository within a transaction.
	TaskRepoFactory interface {
		TaskRepository() ports.TaskRepository
	}

	// UserRepoFactory provides access to the user repository within a transaction.
	UserRepoFactory interface {
		UserRepository() ports.UserRepository
	}

	// TaskUoW manages transactions for task operations.
	//
	// Example:
	//   uow := factory.Create()
	//   err := uow.Begin(ctx)
	//   defer uow.Rollback(ctx)
	//
	//   repo := uow.TaskRepository()
	//   // ... perform operations
	//
	//   err = uow.Commit(ctx)
	TaskUoW interface {
		TxManager
		TaskRepoFactory
	}

	// TaskUoWFactory creates new task unit of work instances.
	TaskUoWFactory interface {
		Create() TaskUoW
	}

	// UserUoW manages transactions for user operations.
	UserUoW interface {
		TxManager
		UserRepoFactory
	}

	// UserUoWFactory creates new user unit of work instances.
	UserUoWFactory interface {
		Create() UserUoW
	}
)

// TokenIssuer signs access tokens for authenticated actors.
type TokenIssuer interface {
	Issue(a actor.Actor) (token string, expiresAt time.Time, err error)
}
