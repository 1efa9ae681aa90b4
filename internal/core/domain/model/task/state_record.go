package task

import (
	"errors"
	"fmt"
	"time"

	"deliverytasks/internal/core/domain/model/kernel"
	"deliverytasks/internal/pkg/errs"
	"deliverytasks/internal/pkg/guard"
)

var ErrStateRecordIsNotConstructed = errors.New("StateRecord must be created via NewStateRecord constructor")

// StateRecord is one immutable entry of a task's ledger. Sequence is the
// 1-based insertion order within the task and breaks timestamp ties.
type StateRecord struct { //nolint:recvcheck //using for validation
	taskID     kernel.UUID
	sequence   int
	state      State
	recordedAt time.Time
	guard      guard.ConstructorGuard
}

func NewStateRecord(taskID kernel.UUID, sequence int, state State, recordedAt time.Time) (StateRecord, error) {
	record := StateRecord{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		record.setTaskID(taskID),
		record.setSequence(sequence),
		record.setState(state),
		record.setRecordedAt(recordedAt),
	); err != nil {
		return StateRecord{}, err
	}

	return record, nil
}

func (r StateRecord) Validate() error {
	return r.guard.Validate(ErrStateRecordIsNotConstructed)
}

func (r StateRecord) TaskID() kernel.UUID {
	return r.taskID
}

func (r StateRecord) Sequence() int {
	return r.sequence
}

func (r StateRecord) State() State {
	return r.state
}

func (r StateRecord) RecordedAt() time.Time {
	return r.recordedAt
}

// After reports whether r comes later than other in ledger order.
func (r StateRecord) After(other StateRecord) bool {
	if !r.recordedAt.Equal(other.recordedAt) {
		return r.recordedAt.After(other.recordedAt)
	}
	return r.sequence > other.sequence
}

func (r *StateRecord) setTaskID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	r.taskID = id
	return nil
}

func (r *StateRecord) setSequence(sequence int) error {
	if sequence < 1 {
		return errs.NewValueIsInvalidErrorWithCause("sequence", fmt.Errorf("%d is not greater than 0", sequence))
	}
	r.sequence = sequence
	return nil
}

func (r *StateRecord) setState(state State) error {
	if err := state.Validate(); err != nil {
		return err
	}
	r.state = state
	return nil
}

func (r *StateRecord) setRecordedAt(at time.Time) error {
	if at.IsZero() {
		return errs.NewValueIsRequiredError("recordedAt")
	}
	r.recordedAt = normalizeTime(at)
	return nil
}

// normalizeTime drops precision the database cannot store so that restored
// records compare equal to the ones that were written.
func normalizeTime(at time.Time) time.Time {
	return at.UTC().Truncate(time.Microsecond)
}
