package task

import (
	"time"

	"deliverytasks/internal/core/domain/model/kernel"
)

// StateChanged is raised for every record appended to a task's ledger,
// including the initial New record, where From is Unknown.
type StateChanged struct {
	TaskID     kernel.UUID
	CreatorID  kernel.UUID
	AssigneeID *kernel.UUID
	From       State
	To         State
	Sequence   int
	At         time.Time
}

// DomainEvents returns the events raised since the task was built or last cleared.
func (t *Task) DomainEvents() []StateChanged {
	out := make([]StateChanged, len(t.events))
	copy(out, t.events)
	return out
}

func (t *Task) ClearDomainEvents() {
	t.events = nil
}

func (t *Task) raise(from State, record StateRecord) {
	t.events = append(t.events, StateChanged{
		TaskID:     t.id,
		CreatorID:  t.creatorID,
		AssigneeID: t.AssigneeID(),
		From:       from,
		To:         record.State(),
		Sequence:   record.Sequence(),
		At:         record.RecordedAt(),
	})
}
