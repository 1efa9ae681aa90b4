package queries

import (
	"context"

	"deliverytasks/internal/core/domain/model/actor"
	"deliverytasks/internal/core/domain/model/task"
	"deliverytasks/internal/pkg/errs"

	"gorm.io/gorm"
)

// GetAvailableTaskQueryHandler picks the unassigned New task with the
// highest priority, oldest first.
type GetAvailableTaskQueryHandler struct {
	db *gorm.DB
}

func NewGetAvailableTaskQueryHandler(db *gorm.DB) GetAvailableTaskQueryHandler {
	return GetAvailableTaskQueryHandler{db: db}
}

// Handle returns errs.ErrUnauthorized for anyone but a delivery agent and
// errs.ErrObjectNotFound when no task is waiting.
func (h GetAvailableTaskQueryHandler) Handle(ctx context.Context, query GetAvailableTaskQuery) (TaskSummary, error) {
	if err := query.Validate(); err != nil {
		return TaskSummary{}, err
	}

	if query.Actor().Role() != actor.DeliveryAgent {
		return TaskSummary{}, errs.NewUnauthorizedError("only delivery agents look for available tasks")
	}

	rows, err := h.db.WithContext(ctx).Raw(taskSummarySelect+`
	WHERE latest.state = ? AND t.assignee_id IS NULL
	ORDER BY t.priority DESC, t.created_at, t.id
	LIMIT 1`, int(task.New)).Rows()
	if err != nil {
		return TaskSummary{}, err
	}
	defer rows.Close()

	if !rows.Next() {
		if err = rows.Err(); err != nil {
			return TaskSummary{}, err
		}
		return TaskSummary{}, errs.NewObjectNotFoundError("task", "available")
	}

	return scanTaskSummary(rows)
}
