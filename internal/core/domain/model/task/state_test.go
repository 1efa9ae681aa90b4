package task_test

import (
	"fmt"
	"testing"

	"deliverytasks/internal/core/domain/model/task"
	"deliverytasks/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func allStates() []task.State {
	return []task.State{task.New, task.Accepted, task.Completed, task.Declined, task.Cancelled}
}

func TestState_Constants(t *testing.T) {
	assert.Equal(t, 0, int(task.Unknown))
	assert.Equal(t, 1, int(task.New))
	assert.Equal(t, 2, int(task.Accepted))
	assert.Equal(t, 3, int(task.Completed))
	assert.Equal(t, 4, int(task.Declined))
	assert.Equal(t, 5, int(task.Cancelled))
}

func TestState_Validate(t *testing.T) {
	for _, s := range allStates() {
		t.Run(fmt.Sprintf("should validate %s", s), func(t *testing.T) {
			require.NoError(t, s.Validate())
		})
	}

	t.Run("should reject unknown and undeclared values", func(t *testing.T) {
		for _, s := range []task.State{task.Unknown, task.State(6), task.State(-1)} {
			err := s.Validate()

			require.Error(t, err)
			require.ErrorIs(t, err, errs.ErrValueIsOutOfRange)
		}
	})
}

func TestParseState(t *testing.T) {
	t.Run("should parse every state name", func(t *testing.T) {
		for _, s := range allStates() {
			parsed, err := task.ParseState(s.String())

			require.NoError(t, err)
			assert.Equal(t, s, parsed)
		}
	})

	t.Run("should reject unknown", func(t *testing.T) {
		_, err := task.ParseState("unknown")

		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})
}

func TestState_TransitionTable(t *testing.T) {
	expected := map[task.State][]task.State{
		task.New:       {task.Accepted, task.Cancelled},
		task.Accepted:  {task.Completed, task.Declined, task.Cancelled},
		task.Completed: {},
		task.Declined:  {task.New},
		task.Cancelled: {},
	}

	for from, next := range expected {
		t.Run(from.String(), func(t *testing.T) {
			assert.ElementsMatch(t, next, from.AllowedNext())

			for _, to := range allStates() {
				allowed := from.CanTransitionTo(to)
				assert.Equal(t, allowed, containsState(next, to), "%s -> %s", from, to)

				err := from.ValidateTransitionTo(to)
				if allowed {
					require.NoError(t, err)
				} else {
					require.ErrorIs(t, err, errs.ErrInvalidTransition)
				}
			}
		})
	}

	t.Run("should not allow a state to transition to itself", func(t *testing.T) {
		for _, s := range allStates() {
			assert.False(t, s.CanTransitionTo(s))
		}
	})

	t.Run("should not expose the table through AllowedNext", func(t *testing.T) {
		next := task.New.AllowedNext()
		next[0] = task.Completed

		assert.Equal(t, task.Accepted, task.New.AllowedNext()[0])
	})
}

func TestState_IsTerminal(t *testing.T) {
	assert.True(t, task.Completed.IsTerminal())
	assert.True(t, task.Cancelled.IsTerminal())
	assert.False(t, task.New.IsTerminal())
	assert.False(t, task.Accepted.IsTerminal())
	assert.False(t, task.Declined.IsTerminal())
	assert.False(t, task.Unknown.IsTerminal())
}

func TestPriority(t *testing.T) {
	t.Run("should parse names", func(t *testing.T) {
		for name, want := range map[string]task.Priority{"low": task.Low, "Medium": task.Medium, " high ": task.High} {
			p, err := task.ParsePriority(name)

			require.NoError(t, err)
			assert.Equal(t, want, p)
			require.NoError(t, p.Validate())
		}
	})

	t.Run("should reject unknown names", func(t *testing.T) {
		_, err := task.ParsePriority("urgent")

		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
		assert.Contains(t, err.Error(), "urgent")
	})

	t.Run("should reject out of range values", func(t *testing.T) {
		err := task.Priority(3).Validate()

		require.ErrorIs(t, err, errs.ErrValueIsOutOfRange)
		assert.Equal(t, "unknown", task.Priority(3).String())
	})
}

func containsState(states []task.State, s task.State) bool {
	for _, candidate := range states {
		if candidate == s {
			return true
		}
	}
	return false
}
