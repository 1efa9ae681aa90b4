// Package ports defines the contracts between the task lifecycle core and
// its infrastructure: repositories, the unit of work and event publishing.
package ports

import (
	"context"

	"deliverytasks/internal/core/domain/model/kernel"
	"deliverytasks/internal/core/domain/model/task"
)

// TaskRepository defines the persistence contract for task aggregates and
// their append-only state ledgers.
type TaskRepository interface {
	// Add persists a new task together with every record of its ledger.
	Add(ctx context.Context, aggregate *task.Task) error

	// Get retrieves a task with its complete ledger, regardless of who may see it.
	// Returns errs.ErrObjectNotFound when no task has the given id.
	Get(ctx context.Context, id kernel.UUID) (*task.Task, error)

	// AppendState inserts one ledger record. Records are unique per
	// (task, sequence); a record with a sequence already taken by another
	// writer yields errs.ErrConflict.
	AppendState(ctx context.Context, aggregate *task.Task, record task.StateRecord) error

	// Update stores the task's mutable columns (details, assignee, last update
	// time, version) if the stored version still equals expectedVersion.
	// Otherwise it returns errs.ErrConflict.
	//
	// Example:
	//   expected := t.Version()
	//   record, err := lifecycle.Apply(t, actor, services.Accept, now)
	//   ...
	//   if err = repo.AppendState(ctx, t, record); err != nil { ... }
	//   if err = repo.Update(ctx, t, expected); err != nil { ... }
	Update(ctx context.Context, aggregate *task.Task, expectedVersion int) error
}
