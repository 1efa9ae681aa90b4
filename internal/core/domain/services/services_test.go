package services_test

import (
	"testing"
	"time"

	"deliverytasks/internal/core/domain/model/actor"
	"deliverytasks/internal/core/domain/model/kernel"
	"deliverytasks/internal/core/domain/model/task"

	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newActor(t *testing.T, role actor.Role) actor.Actor {
	t.Helper()

	a, err := actor.NewActor(kernel.NewUUID(), role)
	require.NoError(t, err)
	return a
}

func newTaskBy(t *testing.T, creator actor.Actor) *task.Task {
	t.Helper()

	creatorID, ok := creator.ID()
	require.True(t, ok)
	destination, err := kernel.NewDestination("Home")
	require.NoError(t, err)

	tsk, err := task.NewTask(kernel.NewUUID(), creatorID, "Mutton Biryani", destination, task.High, now)
	require.NoError(t, err)
	return tsk
}
