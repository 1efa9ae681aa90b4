package ports

import (
	"context"

	"deliverytasks/internal/core/domain/model/task"
)

// TaskEventPublisher delivers task events to subscribers outside the process.
// Events are published after the transaction that produced them committed;
// a publishing failure never undoes the transition.
type TaskEventPublisher interface {
	Publish(ctx context.Context, event task.StateChanged) error
}
