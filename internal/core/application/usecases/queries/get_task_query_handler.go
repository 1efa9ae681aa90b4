package queries

import (
	"context"
	"database/sql"

	"deliverytasks/internal/core/domain/model/task"
	"deliverytasks/internal/core/domain/services"
	"deliverytasks/internal/pkg/errs"

	"gorm.io/gorm"
)

// GetTaskQueryHandler reads a task and its ledger. A task the actor may not
// see is reported exactly like a missing one.
type GetTaskQueryHandler struct {
	db         *gorm.DB
	visibility services.VisibilityPolicy
}

func NewGetTaskQueryHandler(db *gorm.DB, visibility services.VisibilityPolicy) GetTaskQueryHandler {
	return GetTaskQueryHandler{db: db, visibility: visibility}
}

// snapshot makes the task row and its ledger come from the same committed
// state, so a transition committing between the two reads is never half seen.
var snapshot = &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}

// Handle returns errs.ErrObjectNotFound when the task is missing or not
// visible to the actor.
func (h GetTaskQueryHandler) Handle(ctx context.Context, query GetTaskQuery) (TaskDetail, error) {
	if err := query.Validate(); err != nil {
		return TaskDetail{}, err
	}

	notFound := errs.NewObjectNotFoundError("task", query.TaskID().String())

	scope := h.visibility.Scope(query.Actor())
	if scope.Kind == services.ScopeNone {
		return TaskDetail{}, notFound
	}

	var detail TaskDetail
	err := h.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		summary, found, err := h.summary(tx, query)
		if err != nil {
			return err
		}
		if !found || !scope.Includes(summary.CreatorID, summary.AssigneeID) {
			return notFound
		}

		history, err := h.history(tx, summary)
		if err != nil {
			return err
		}
		if len(history) > 0 {
			summary.State = history[len(history)-1].State
		}

		detail = TaskDetail{TaskSummary: summary, History: history}
		return nil
	}, snapshot)
	if err != nil {
		return TaskDetail{}, err
	}

	return detail, nil
}

func (h GetTaskQueryHandler) summary(tx *gorm.DB, query GetTaskQuery) (TaskSummary, bool, error) {
	rows, err := tx.Raw(taskSummarySelect+"\n\tWHERE t.id = ?", query.TaskID().Bytes()).Rows()
	if err != nil {
		return TaskSummary{}, false, err
	}
	defer rows.Close()

	if !rows.Next() {
		return TaskSummary{}, false, rows.Err()
	}

	summary, err := scanTaskSummary(rows)
	if err != nil {
		return TaskSummary{}, false, err
	}
	return summary, true, rows.Close()
}

func (h GetTaskQueryHandler) history(tx *gorm.DB, summary TaskSummary) ([]StateEntry, error) {
	rows, err := tx.Raw(`
		SELECT
			sequence,
			state,
			recorded_at
		FROM task_states
		WHERE task_id = ?
		ORDER BY recorded_at, sequence
	`, summary.ID.Bytes()).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	history := make([]StateEntry, 0, summary.Version)
	for rows.Next() {
		var entry StateEntry
		var state int

		if err = rows.Scan(&entry.Sequence, &state, &entry.RecordedAt); err != nil {
			return nil, err
		}
		entry.State = task.State(state)
		entry.RecordedAt = entry.RecordedAt.UTC()
		history = append(history, entry)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return history, nil
}
