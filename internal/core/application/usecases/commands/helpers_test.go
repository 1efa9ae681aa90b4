package commands_test

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"deliverytasks/internal/core/domain/model/actor"
	"deliverytasks/internal/core/domain/model/kernel"
	"deliverytasks/internal/core/domain/model/task"
	"deliverytasks/internal/core/domain/services"

	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newLifecycle() services.Lifecycle {
	return services.NewLifecycle(services.NewTransitionPolicy())
}

func newActor(t *testing.T, role actor.Role) actor.Actor {
	t.Helper()

	a, err := actor.NewActor(kernel.NewUUID(), role)
	require.NoError(t, err)
	return a
}

func newTaskBy(t *testing.T, creator actor.Actor) *task.Task {
	t.Helper()

	creatorID, _ := creator.ID()
	destination, err := kernel.NewDestination("Down Town")
	require.NoError(t, err)
	tsk, err := task.NewTask(kernel.NewUUID(), creatorID, "Hot Chicken Kathi Roll", destination, task.Medium,
		time.Now().Add(-time.Hour))
	require.NoError(t, err)
	return tsk
}
