package queries

import (
	"context"

	"deliverytasks/internal/core/domain/services"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// ListTasksQueryHandler reads task summaries within the actor's visibility
// scope, ordered by creation time and then id.
type ListTasksQueryHandler struct {
	db         *gorm.DB
	visibility services.VisibilityPolicy
}

func NewListTasksQueryHandler(db *gorm.DB, visibility services.VisibilityPolicy) ListTasksQueryHandler {
	return ListTasksQueryHandler{db: db, visibility: visibility}
}

// Handle returns an empty slice, not an error, for actors that see nothing.
func (h ListTasksQueryHandler) Handle(ctx context.Context, query ListTasksQuery) ([]TaskSummary, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	tasks := make([]TaskSummary, 0)

	cond, args, ok := scopeCondition(h.visibility.Scope(query.Actor()))
	if !ok {
		return tasks, nil
	}

	stmt := taskSummarySelect + "\n\tWHERE " + cond
	if states := query.States(); len(states) > 0 {
		codes := make([]int64, 0, len(states))
		for _, s := range states {
			codes = append(codes, int64(s))
		}
		stmt += " AND latest.state = ANY(?)"
		args = append(args, pq.Array(codes))
	}
	stmt += "\n\tORDER BY t.created_at, t.id"

	rows, err := h.db.WithContext(ctx).Raw(stmt, args...).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		summary, scanErr := scanTaskSummary(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		tasks = append(tasks, summary)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return tasks, nil
}
