package task_test

import (
	"strings"
	"testing"
	"time"

	"deliverytasks/internal/core/domain/model/actor"
	"deliverytasks/internal/core/domain/model/kernel"
	"deliverytasks/internal/core/domain/model/task"
	"deliverytasks/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2025, 3, 14, 9, 26, 53, 589793238, time.UTC)

func newTestTask(t *testing.T) *task.Task {
	t.Helper()

	destination, err := kernel.NewDestination("Down Town")
	require.NoError(t, err)

	tsk, err := task.NewTask(kernel.NewUUID(), kernel.NewUUID(), "Kathi Roll", destination, task.High, baseTime)
	require.NoError(t, err)
	return tsk
}

func newAgent(t *testing.T) actor.Actor {
	t.Helper()

	a, err := actor.NewActor(kernel.NewUUID(), actor.DeliveryAgent)
	require.NoError(t, err)
	return a
}

func TestNewTask(t *testing.T) {
	validID := kernel.NewUUID()
	creatorID := kernel.NewUUID()
	destination, _ := kernel.NewDestination("Down Town")

	t.Run("should create a task with one New record", func(t *testing.T) {
		tsk, err := task.NewTask(validID, creatorID, "  Kathi Roll ", destination, task.Medium, baseTime)

		require.NoError(t, err)
		require.NoError(t, tsk.Validate())
		assert.True(t, tsk.ID().IsEqual(validID))
		assert.True(t, tsk.CreatorID().IsEqual(creatorID))
		assert.Equal(t, "Kathi Roll", tsk.Title())
		assert.Equal(t, "Down Town", tsk.Destination().String())
		assert.Equal(t, task.Medium, tsk.Priority())
		assert.Nil(t, tsk.AssigneeID())
		assert.Equal(t, task.New, tsk.CurrentState())
		assert.Equal(t, 1, tsk.Version())

		history := tsk.History()
		require.Len(t, history, 1)
		assert.Equal(t, task.New, history[0].State())
		assert.Equal(t, 1, history[0].Sequence())
		assert.True(t, history[0].TaskID().IsEqual(validID))
	})

	t.Run("should truncate timestamps to microseconds", func(t *testing.T) {
		tsk, err := task.NewTask(validID, creatorID, "Kathi Roll", destination, task.Low, baseTime)

		require.NoError(t, err)
		assert.Equal(t, baseTime.Truncate(time.Microsecond), tsk.CreatedAt())
		assert.Equal(t, tsk.CreatedAt(), tsk.LastUpdatedAt())
		assert.Equal(t, tsk.CreatedAt(), tsk.History()[0].RecordedAt())
	})

	t.Run("should fail with empty title", func(t *testing.T) {
		tsk, err := task.NewTask(validID, creatorID, "   ", destination, task.Low, baseTime)

		require.ErrorIs(t, err, errs.ErrValueIsRequired)
		assert.Nil(t, tsk)
		assert.Contains(t, err.Error(), "title")
	})

	t.Run("should fail with a title longer than 140 characters", func(t *testing.T) {
		tsk, err := task.NewTask(validID, creatorID, strings.Repeat("ж", 141), destination, task.Low, baseTime)

		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
		assert.Nil(t, tsk)
		assert.Contains(t, err.Error(), "141 characters exceeds the limit of 140")
	})

	t.Run("should accept a title of exactly 140 characters", func(t *testing.T) {
		_, err := task.NewTask(validID, creatorID, strings.Repeat("ж", 140), destination, task.Low, baseTime)

		require.NoError(t, err)
	})

	t.Run("should join all validation errors", func(t *testing.T) {
		var invalidID kernel.UUID
		var invalidDestination kernel.Destination

		tsk, err := task.NewTask(invalidID, invalidID, "", invalidDestination, task.Priority(9), time.Time{})

		require.Error(t, err)
		assert.Nil(t, tsk)
		assert.Contains(t, err.Error(), "UUID must be created")
		assert.Contains(t, err.Error(), "creator")
		assert.Contains(t, err.Error(), "title")
		assert.Contains(t, err.Error(), "destination must be created")
		assert.Contains(t, err.Error(), "priority")
		assert.Contains(t, err.Error(), "createdAt")
	})
}

func TestTask_RecordTransition(t *testing.T) {
	t.Run("should set the assignee on first acceptance", func(t *testing.T) {
		tsk := newTestTask(t)
		agent := newAgent(t)
		agentID, _ := agent.ID()

		record, err := tsk.RecordTransition(task.Accepted, agent, baseTime.Add(time.Minute))

		require.NoError(t, err)
		assert.Equal(t, task.Accepted, record.State())
		assert.Equal(t, 2, record.Sequence())
		assert.Equal(t, task.Accepted, tsk.CurrentState())
		require.NotNil(t, tsk.AssigneeID())
		assert.True(t, tsk.AssigneeID().IsEqual(agentID))
		assert.True(t, tsk.IsAssignedTo(agent))
		assert.Equal(t, 2, tsk.Version())
	})

	t.Run("should reject an illegal transition without appending", func(t *testing.T) {
		tsk := newTestTask(t)

		_, err := tsk.RecordTransition(task.Completed, newAgent(t), baseTime)

		require.ErrorIs(t, err, errs.ErrInvalidTransition)
		assert.Contains(t, err.Error(), "new -> completed")
		assert.Equal(t, 1, tsk.Version())
		assert.Equal(t, task.New, tsk.CurrentState())
	})

	t.Run("should reject the same transition twice", func(t *testing.T) {
		tsk := newTestTask(t)
		agent := newAgent(t)

		_, err := tsk.RecordTransition(task.Accepted, agent, baseTime)
		require.NoError(t, err)

		_, err = tsk.RecordTransition(task.Accepted, agent, baseTime)

		require.ErrorIs(t, err, errs.ErrInvalidTransition)
		assert.Equal(t, 2, tsk.Version())
	})

	t.Run("should keep the first assignee", func(t *testing.T) {
		tsk := newTestTask(t)
		first := newAgent(t)
		firstID, _ := first.ID()

		_, err := tsk.RecordTransition(task.Accepted, first, baseTime)
		require.NoError(t, err)
		_, err = tsk.RecordTransition(task.Declined, first, baseTime)
		require.NoError(t, err)
		_, err = tsk.RecordTransition(task.New, first, baseTime)
		require.NoError(t, err)
		_, err = tsk.RecordTransition(task.Accepted, newAgent(t), baseTime)
		require.NoError(t, err)

		assert.True(t, tsk.AssigneeID().IsEqual(firstID))
	})

	t.Run("should not let an anonymous actor accept", func(t *testing.T) {
		tsk := newTestTask(t)

		_, err := tsk.RecordTransition(task.Accepted, actor.AnonymousActor(), baseTime)

		require.ErrorIs(t, err, errs.ErrUnauthorized)
		assert.Nil(t, tsk.AssigneeID())
		assert.Equal(t, 1, tsk.Version())
	})

	t.Run("should not let a store manager or an admin become the assignee", func(t *testing.T) {
		for _, role := range []actor.Role{actor.StoreManager, actor.Admin} {
			tsk := newTestTask(t)
			by, err := actor.NewActor(kernel.NewUUID(), role)
			require.NoError(t, err)

			_, err = tsk.RecordTransition(task.Accepted, by, baseTime)

			require.ErrorIs(t, err, errs.ErrUnauthorized, role.String())
			assert.Nil(t, tsk.AssigneeID())
			assert.Equal(t, task.New, tsk.CurrentState())
			assert.Equal(t, 1, tsk.Version())
		}
	})

	t.Run("should clamp timestamps that go backwards", func(t *testing.T) {
		tsk := newTestTask(t)

		record, err := tsk.RecordTransition(task.Cancelled, newAgent(t), baseTime.Add(-time.Hour))

		require.NoError(t, err)
		assert.Equal(t, tsk.CreatedAt(), record.RecordedAt())
		assert.Equal(t, task.Cancelled, tsk.CurrentState())
		assert.True(t, tsk.IsTerminal())
	})

	t.Run("should derive current state from sequence when timestamps tie", func(t *testing.T) {
		tsk := newTestTask(t)
		agent := newAgent(t)

		_, err := tsk.RecordTransition(task.Accepted, agent, baseTime)
		require.NoError(t, err)
		_, err = tsk.RecordTransition(task.Completed, agent, baseTime)
		require.NoError(t, err)

		assert.Equal(t, task.Completed, tsk.CurrentState())
		history := tsk.History()
		assert.True(t, history[2].After(history[1]))
	})

	t.Run("should fail on a zero value task", func(t *testing.T) {
		var tsk task.Task

		_, err := tsk.RecordTransition(task.Accepted, newAgent(t), baseTime)

		require.ErrorIs(t, err, task.ErrTaskIsNotConstructed)
	})
}

func TestTask_Edit(t *testing.T) {
	uptown, err := kernel.NewDestination("Up Town")
	require.NoError(t, err)

	t.Run("should replace the details of a new task", func(t *testing.T) {
		tsk := newTestTask(t)
		tsk.ClearDomainEvents()

		err := tsk.Edit("  Mutton Biryani ", uptown, task.Low, baseTime.Add(time.Hour))

		require.NoError(t, err)
		assert.Equal(t, "Mutton Biryani", tsk.Title())
		assert.Equal(t, "Up Town", tsk.Destination().String())
		assert.Equal(t, task.Low, tsk.Priority())
		assert.True(t, tsk.LastUpdatedAt().Equal(baseTime.Add(time.Hour).Truncate(time.Microsecond)))
		assert.Equal(t, 1, tsk.Version())
		assert.Empty(t, tsk.DomainEvents())
	})

	t.Run("should never move lastUpdatedAt backwards", func(t *testing.T) {
		tsk := newTestTask(t)
		before := tsk.LastUpdatedAt()

		require.NoError(t, tsk.Edit("Kathi Roll", uptown, task.High, baseTime.Add(-time.Hour)))

		assert.True(t, tsk.LastUpdatedAt().Equal(before))
	})

	t.Run("should reject a task that left New", func(t *testing.T) {
		tsk := newTestTask(t)
		_, err := tsk.RecordTransition(task.Accepted, newAgent(t), baseTime)
		require.NoError(t, err)

		err = tsk.Edit("Other", uptown, task.Low, baseTime.Add(time.Hour))

		require.ErrorIs(t, err, errs.ErrInvalidState)
		assert.Contains(t, err.Error(), "is accepted")
		assert.Equal(t, "Kathi Roll", tsk.Title())
		assert.Equal(t, task.High, tsk.Priority())
	})

	t.Run("should leave the task unchanged on invalid input", func(t *testing.T) {
		tsk := newTestTask(t)
		before := tsk.LastUpdatedAt()

		err := tsk.Edit(strings.Repeat("x", task.TitleMaxLength+1), uptown, task.Priority(42), baseTime.Add(time.Hour))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "title")
		assert.Contains(t, err.Error(), "priority")
		assert.Equal(t, "Kathi Roll", tsk.Title())
		assert.Equal(t, "Down Town", tsk.Destination().String())
		assert.True(t, tsk.LastUpdatedAt().Equal(before))
	})
}

func TestTask_History_IsACopy(t *testing.T) {
	tsk := newTestTask(t)

	history := tsk.History()
	history[0] = task.StateRecord{}

	assert.Equal(t, task.New, tsk.History()[0].State())
}

func TestRestoreTask(t *testing.T) {
	id := kernel.NewUUID()
	creatorID := kernel.NewUUID()
	assigneeID := kernel.NewUUID()
	destination, _ := kernel.NewDestination("Down Town")

	record := func(seq int, s task.State, offset time.Duration) task.StateRecord {
		r, err := task.NewStateRecord(id, seq, s, baseTime.Add(offset))
		require.NoError(t, err)
		return r
	}

	restore := func(assignee *kernel.UUID, history ...task.StateRecord) (*task.Task, error) {
		return task.RestoreTask(id, creatorID, assignee, "Kathi Roll", destination, task.High,
			baseTime, baseTime, history)
	}

	t.Run("should restore a valid ledger in order", func(t *testing.T) {
		tsk, err := restore(&assigneeID,
			record(3, task.Completed, 2*time.Minute),
			record(1, task.New, 0),
			record(2, task.Accepted, time.Minute),
		)

		require.NoError(t, err)
		assert.Equal(t, task.Completed, tsk.CurrentState())
		assert.Equal(t, 3, tsk.Version())
		assert.Equal(t, baseTime.Add(2*time.Minute).Truncate(time.Microsecond), tsk.LastUpdatedAt())
		assert.True(t, tsk.AssigneeID().IsEqual(assigneeID))
	})

	t.Run("should use sequence to order equal timestamps", func(t *testing.T) {
		tsk, err := restore(&assigneeID,
			record(2, task.Accepted, 0),
			record(3, task.Declined, 0),
			record(1, task.New, 0),
		)

		require.NoError(t, err)
		assert.Equal(t, task.Declined, tsk.CurrentState())
	})

	t.Run("should reject an empty ledger", func(t *testing.T) {
		_, err := restore(nil)

		require.ErrorIs(t, err, errs.ErrVersionIsInvalid)
		assert.Contains(t, err.Error(), "ledger is empty")
	})

	t.Run("should reject a ledger not starting with New", func(t *testing.T) {
		_, err := restore(&assigneeID, record(1, task.Accepted, 0))

		require.ErrorIs(t, err, errs.ErrVersionIsInvalid)
	})

	t.Run("should reject an illegal step", func(t *testing.T) {
		_, err := restore(nil, record(1, task.New, 0), record(2, task.Completed, time.Minute))

		require.ErrorIs(t, err, errs.ErrVersionIsInvalid)
		assert.Contains(t, err.Error(), "new -> completed")
	})

	t.Run("should reject a gap in sequence numbers", func(t *testing.T) {
		_, err := restore(nil, record(1, task.New, 0), record(3, task.Cancelled, time.Minute))

		require.ErrorIs(t, err, errs.ErrVersionIsInvalid)
		assert.Contains(t, err.Error(), "expected sequence 2, got 3")
	})

	t.Run("should reject an accepted ledger without assignee", func(t *testing.T) {
		_, err := restore(nil, record(1, task.New, 0), record(2, task.Accepted, time.Minute))

		require.ErrorIs(t, err, errs.ErrVersionIsInvalid)
	})

	t.Run("should reject records of another task", func(t *testing.T) {
		foreign, err := task.NewStateRecord(kernel.NewUUID(), 1, task.New, baseTime)
		require.NoError(t, err)

		_, err = restore(nil, foreign)

		require.ErrorIs(t, err, errs.ErrVersionIsInvalid)
	})
}

func TestNewStateRecord(t *testing.T) {
	t.Run("should reject invalid fields", func(t *testing.T) {
		var invalidID kernel.UUID

		_, err := task.NewStateRecord(invalidID, 0, task.Unknown, time.Time{})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "UUID must be created")
		assert.Contains(t, err.Error(), "0 is not greater than 0")
		require.ErrorIs(t, err, errs.ErrValueIsOutOfRange)
		require.ErrorIs(t, err, errs.ErrValueIsRequired)
	})

	t.Run("zero value should not validate", func(t *testing.T) {
		var r task.StateRecord

		require.ErrorIs(t, r.Validate(), task.ErrStateRecordIsNotConstructed)
	})
}

func TestTask_DomainEvents(t *testing.T) {
	tsk := newTestTask(t)
	agent := newAgent(t)
	agentID, _ := agent.ID()

	events := tsk.DomainEvents()
	require.Len(t, events, 1)
	assert.Equal(t, task.Unknown, events[0].From)
	assert.Equal(t, task.New, events[0].To)
	assert.Nil(t, events[0].AssigneeID)

	_, err := tsk.RecordTransition(task.Accepted, agent, baseTime)
	require.NoError(t, err)

	events = tsk.DomainEvents()
	require.Len(t, events, 2)
	assert.Equal(t, task.New, events[1].From)
	assert.Equal(t, task.Accepted, events[1].To)
	assert.Equal(t, 2, events[1].Sequence)
	require.NotNil(t, events[1].AssigneeID)
	assert.True(t, events[1].AssigneeID.IsEqual(agentID))
	assert.True(t, events[1].CreatorID.IsEqual(tsk.CreatorID()))

	tsk.ClearDomainEvents()
	assert.Empty(t, tsk.DomainEvents())

	_, err = tsk.RecordTransition(task.Accepted, agent, baseTime)
	require.Error(t, err)
	assert.Empty(t, tsk.DomainEvents())
}
