// Package queries contains the read side: task listings and details filtered
// by what the actor may see, the available-task lookup for agents, the user
// list and the ledger audit. Handlers read with raw SQL and never go through
// the aggregates.
package queries

import (
	"database/sql"
	"time"

	"deliverytasks/internal/core/domain/model/kernel"
	"deliverytasks/internal/core/domain/model/task"
	"deliverytasks/internal/core/domain/services"

	"github.com/google/uuid"
)

// TaskSummary is one task as shown in listings.
type TaskSummary struct {
	ID            kernel.UUID
	Title         string
	Destination   string
	Priority      task.Priority
	CreatorID     kernel.UUID
	AssigneeID    *kernel.UUID
	State         task.State
	CreatedAt     time.Time
	LastUpdatedAt time.Time
	Version       int
}

// StateEntry is one record of a task's ledger.
type StateEntry struct {
	Sequence   int
	State      task.State
	RecordedAt time.Time
}

// TaskDetail is a task with its full ledger, oldest record first.
type TaskDetail struct {
	TaskSummary
	History []StateEntry
}

// taskSummarySelect joins every task with its latest ledger record.
const taskSummarySelect = `
	SELECT
		t.id,
		t.title,
		t.destination,
		t.priority,
		t.creator_id,
		t.assignee_id,
		latest.state,
		t.created_at,
		t.last_updated_at,
		t.version
	FROM tasks t
	JOIN LATERAL (
		SELECT s.state
		FROM task_states s
		WHERE s.task_id = t.id
		ORDER BY s.recorded_at DESC, s.sequence DESC
		LIMIT 1
	) latest ON TRUE`

// scopeCondition translates a visibility scope into a WHERE fragment over
// the tasks alias t. ok is false when the scope admits nothing.
func scopeCondition(scope services.Scope) (cond string, args []any, ok bool) {
	switch scope.Kind {
	case services.ScopeAll:
		return "TRUE", nil, true
	case services.ScopeCreatedBy:
		return "t.creator_id = ?", []any{scope.UserID.Bytes()}, true
	case services.ScopeAssignedTo:
		return "t.assignee_id = ?", []any{scope.UserID.Bytes()}, true
	default:
		return "", nil, false
	}
}

func scanTaskSummary(rows *sql.Rows) (TaskSummary, error) {
	var (
		summary    TaskSummary
		id         uuid.UUID
		creatorID  uuid.UUID
		assigneeID uuid.NullUUID
		priority   int
		state      int
	)

	if err := rows.Scan(
		&id,
		&summary.Title,
		&summary.Destination,
		&priority,
		&creatorID,
		&assigneeID,
		&state,
		&summary.CreatedAt,
		&summary.LastUpdatedAt,
		&summary.Version,
	); err != nil {
		return TaskSummary{}, err
	}

	taskID, err := kernel.UUIDFromBytes(id[:])
	if err != nil {
		return TaskSummary{}, err
	}
	summary.ID = taskID

	creator, err := kernel.UUIDFromBytes(creatorID[:])
	if err != nil {
		return TaskSummary{}, err
	}
	summary.CreatorID = creator

	if assigneeID.Valid {
		assignee, assigneeErr := kernel.UUIDFromBytes(assigneeID.UUID[:])
		if assigneeErr != nil {
			return TaskSummary{}, assigneeErr
		}
		summary.AssigneeID = &assignee
	}

	summary.Priority = task.Priority(priority)
	summary.State = task.State(state)
	summary.CreatedAt = summary.CreatedAt.UTC()
	summary.LastUpdatedAt = summary.LastUpdatedAt.UTC()

	return summary, nil
}
