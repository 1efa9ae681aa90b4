package queries

import (
	"context"
	"fmt"

	"deliverytasks/internal/core/domain/model/kernel"
	"deliverytasks/internal/core/domain/model/task"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

type AuditLedgerQueryHandler struct {
	db *gorm.DB
}

func NewAuditLedgerQueryHandler(db *gorm.DB) AuditLedgerQueryHandler {
	return AuditLedgerQueryHandler{db: db}
}

// Handle returns one violation per broken ledger, in task creation order.
// A healthy database yields an empty slice.
func (h AuditLedgerQueryHandler) Handle(ctx context.Context, query AuditLedgerQuery) ([]LedgerViolation, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	violations := make([]LedgerViolation, 0)

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			t.id,
			t.version,
			COALESCE(array_agg(s.sequence ORDER BY s.sequence) FILTER (WHERE s.task_id IS NOT NULL), '{}'),
			COALESCE(array_agg(s.state ORDER BY s.sequence) FILTER (WHERE s.task_id IS NOT NULL), '{}')
		FROM tasks t
		LEFT JOIN task_states s ON s.task_id = t.id
		GROUP BY t.id, t.version
		ORDER BY t.created_at, t.id
	`).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var id uuid.UUID
		var version int
		var sequences, states pq.Int64Array

		if err = rows.Scan(&id, &version, &sequences, &states); err != nil {
			return nil, err
		}

		reason := checkLedger(version, sequences, states)
		if reason == "" {
			continue
		}

		taskID, idErr := kernel.UUIDFromBytes(id[:])
		if idErr != nil {
			return nil, idErr
		}
		violations = append(violations, LedgerViolation{TaskID: taskID, Reason: reason})
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return violations, nil
}

// checkLedger returns a description of the first problem, or "".
func checkLedger(version int, sequences, states []int64) string {
	if len(states) == 0 {
		return "ledger has no records"
	}
	for i, seq := range sequences {
		if seq != int64(i+1) {
			return fmt.Sprintf("record %d has sequence %d", i+1, seq)
		}
	}
	if first := task.State(states[0]); first != task.New {
		return fmt.Sprintf("ledger starts with %s", first)
	}
	for i := 1; i < len(states); i++ {
		from, to := task.State(states[i-1]), task.State(states[i])
		if !from.CanTransitionTo(to) {
			return fmt.Sprintf("record %d moves %s -> %s", i+1, from, to)
		}
	}
	if version != len(states) {
		return fmt.Sprintf("version %d does not match %d records", version, len(states))
	}
	return ""
}
