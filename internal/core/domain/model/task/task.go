package task

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"deliverytasks/internal/core/domain/model/actor"
	"deliverytasks/internal/core/domain/model/kernel"
	"deliverytasks/internal/pkg/errs"
	"deliverytasks/internal/pkg/guard"
)

// TitleMaxLength bounds the task title.
const TitleMaxLength = 140

var ErrTaskIsNotConstructed = errors.New("Task must be created via NewTask or RestoreTask constructor")

// Task is a delivery task created by a store manager and carried out by a
// delivery agent. It is the aggregate root of its state ledger.
//
// Task follows these invariants:
//   - the ledger holds at least one record and starts with New
//   - every record is reachable from its predecessor through the transition table
//   - the current state is the state of the latest record
//   - creator never changes; assignee is set once, on the first acceptance
//   - lastUpdatedAt is monotonically non-decreasing
type Task struct {
	id            kernel.UUID
	title         string
	destination   kernel.Destination
	priority      Priority
	creatorID     kernel.UUID
	assigneeID    *kernel.UUID
	createdAt     time.Time
	lastUpdatedAt time.Time
	history       []StateRecord
	events        []StateChanged
	guard         guard.ConstructorGuard
}

// NewTask creates a task owned by creatorID and appends its initial New record
// stamped with at. Authorization of the creator is checked by the caller.
//
// Example:
//
//	destination, _ := kernel.NewDestination("Down Town")
//	t, err := task.NewTask(kernel.NewUUID(), managerID, "Kathi Roll", destination, task.High, time.Now())
//	if err != nil {
//	    return err
//	}
//	fmt.Println(t.CurrentState()) // new
func NewTask(
	id kernel.UUID,
	creatorID kernel.UUID,
	title string,
	destination kernel.Destination,
	priority Priority,
	at time.Time,
) (*Task, error) {
	t := &Task{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		t.setID(id),
		t.setCreatorID(creatorID),
		t.setTitle(title),
		t.setDestination(destination),
		t.setPriority(priority),
		t.setCreatedAt(at),
	); err != nil {
		return nil, err
	}

	initial, err := NewStateRecord(t.id, 1, New, t.createdAt)
	if err != nil {
		return nil, err
	}
	t.history = []StateRecord{initial}
	t.lastUpdatedAt = t.createdAt
	t.raise(Unknown, initial)

	return t, nil
}

// RestoreTask rebuilds a task from persistence. The history is ordered by
// timestamp and sequence, then checked against the ledger invariants; a
// corrupt ledger yields errs.ErrVersionIsInvalid.
func RestoreTask(
	id kernel.UUID,
	creatorID kernel.UUID,
	assigneeID *kernel.UUID,
	title string,
	destination kernel.Destination,
	priority Priority,
	createdAt time.Time,
	lastUpdatedAt time.Time,
	history []StateRecord,
) (*Task, error) {
	t := &Task{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		t.setID(id),
		t.setCreatorID(creatorID),
		t.setAssigneeID(assigneeID),
		t.setTitle(title),
		t.setDestination(destination),
		t.setPriority(priority),
		t.setCreatedAt(createdAt),
	); err != nil {
		return nil, err
	}

	if err := t.setHistory(history); err != nil {
		return nil, err
	}

	t.lastUpdatedAt = normalizeTime(lastUpdatedAt)
	if latest := t.latest().RecordedAt(); t.lastUpdatedAt.Before(latest) {
		t.lastUpdatedAt = latest
	}

	return t, nil
}

func (t *Task) Validate() error {
	if t == nil {
		return ErrTaskIsNotConstructed
	}
	return t.guard.Validate(ErrTaskIsNotConstructed)
}

func (t *Task) IsEqual(other *Task) bool {
	return other != nil && t.id.IsEqual(other.id)
}

func (t *Task) ID() kernel.UUID {
	return t.id
}

func (t *Task) Title() string {
	return t.title
}

func (t *Task) Destination() kernel.Destination {
	return t.destination
}

func (t *Task) Priority() Priority {
	return t.priority
}

func (t *Task) CreatorID() kernel.UUID {
	return t.creatorID
}

// AssigneeID returns the accepting agent, or nil before the first acceptance.
func (t *Task) AssigneeID() *kernel.UUID {
	if t.assigneeID == nil {
		return nil
	}
	id := *t.assigneeID
	return &id
}

func (t *Task) CreatedAt() time.Time {
	return t.createdAt
}

func (t *Task) LastUpdatedAt() time.Time {
	return t.lastUpdatedAt
}

// History returns a copy of the ledger in order.
func (t *Task) History() []StateRecord {
	return slices.Clone(t.history)
}

// Version is the number of ledger records; it grows by one per transition.
func (t *Task) Version() int {
	return len(t.history)
}

// CurrentState is the state of the latest ledger record.
func (t *Task) CurrentState() State {
	return t.latest().State()
}

func (t *Task) IsTerminal() bool {
	return t.CurrentState().IsTerminal()
}

// IsCreatedBy reports whether a is the task's creator.
func (t *Task) IsCreatedBy(a actor.Actor) bool {
	return a.Is(&t.creatorID)
}

// IsAssignedTo reports whether a is the task's assignee.
func (t *Task) IsAssignedTo(a actor.Actor) bool {
	return a.Is(t.assigneeID)
}

// RecordTransition appends one record moving the task to target.
//
// It enforces the transition table and the assignee rule only: the first
// acceptance must come from a delivery agent, who becomes the assignee.
// Everything else in the permission table is checked by
// services.TransitionPolicy, so production code goes through
// services.Lifecycle rather than calling this directly.
// The record is stamped with at, or with lastUpdatedAt when at is earlier,
// keeping the ledger ordered.
func (t *Task) RecordTransition(target State, by actor.Actor, at time.Time) (StateRecord, error) {
	if err := t.Validate(); err != nil {
		return StateRecord{}, err
	}

	if err := target.Validate(); err != nil {
		return StateRecord{}, err
	}

	if err := t.CurrentState().ValidateTransitionTo(target); err != nil {
		return StateRecord{}, err
	}

	var assignee *kernel.UUID
	if target == Accepted && t.assigneeID == nil {
		agentID, ok := by.ID()
		if !ok {
			return StateRecord{}, errs.NewUnauthorizedError("an anonymous actor cannot accept a task")
		}
		if by.Role() != actor.DeliveryAgent {
			return StateRecord{}, errs.NewUnauthorizedError(
				fmt.Sprintf("%s cannot become the assignee of a task", by.Role()))
		}
		assignee = &agentID
	}

	at = normalizeTime(at)
	if at.Before(t.lastUpdatedAt) {
		at = t.lastUpdatedAt
	}

	record, err := NewStateRecord(t.id, len(t.history)+1, target, at)
	if err != nil {
		return StateRecord{}, err
	}

	from := t.CurrentState()
	t.history = append(t.history, record)
	t.lastUpdatedAt = at
	if assignee != nil {
		t.assigneeID = assignee
	}
	t.raise(from, record)
	return record, nil
}

// Edit replaces the title, destination and priority of a task that is still
// New and moves lastUpdatedAt to at, unless at is earlier. A task in any
// other state yields errs.ErrInvalidState. The ledger is untouched. On failure
// t is unchanged.
func (t *Task) Edit(title string, destination kernel.Destination, priority Priority, at time.Time) error {
	if err := t.Validate(); err != nil {
		return err
	}

	if current := t.CurrentState(); current != New {
		return errs.NewInvalidStateError("task", t.id.String(), current, "only a new task can be edited")
	}

	edited := &Task{}
	if err := errors.Join(
		edited.setTitle(title),
		edited.setDestination(destination),
		edited.setPriority(priority),
	); err != nil {
		return err
	}

	t.title = edited.title
	t.destination = edited.destination
	t.priority = edited.priority

	if at = normalizeTime(at); at.After(t.lastUpdatedAt) {
		t.lastUpdatedAt = at
	}
	return nil
}

func (t *Task) latest() StateRecord {
	return t.history[len(t.history)-1]
}

func (t *Task) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	t.id = id
	return nil
}

func (t *Task) setCreatorID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("creator", err)
	}
	t.creatorID = id
	return nil
}

func (t *Task) setAssigneeID(id *kernel.UUID) error {
	if id == nil {
		return nil
	}
	if err := id.Validate(); err != nil {
		return errs.NewValueIsInvalidErrorWithCause("assignee", err)
	}
	assignee := *id
	t.assigneeID = &assignee
	return nil
}

func (t *Task) setTitle(title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return errs.NewValueIsRequiredError("title")
	}
	if n := utf8.RuneCountInString(title); n > TitleMaxLength {
		return errs.NewValueIsInvalidErrorWithCause(
			"title",
			fmt.Errorf("%d characters exceeds the limit of %d", n, TitleMaxLength),
		)
	}
	t.title = title
	return nil
}

func (t *Task) setDestination(destination kernel.Destination) error {
	if err := destination.Validate(); err != nil {
		return err
	}
	t.destination = destination
	return nil
}

func (t *Task) setPriority(priority Priority) error {
	if err := priority.Validate(); err != nil {
		return err
	}
	t.priority = priority
	return nil
}

func (t *Task) setCreatedAt(at time.Time) error {
	if at.IsZero() {
		return errs.NewValueIsRequiredError("createdAt")
	}
	t.createdAt = normalizeTime(at)
	return nil
}

// setHistory orders the restored records and verifies that they form a legal
// path from New with contiguous sequence numbers and the task's assignee
// present whenever an acceptance was recorded.
func (t *Task) setHistory(history []StateRecord) error {
	if len(history) == 0 {
		return errs.NewVersionIsInvalidErrorWithCause("history", errors.New("ledger is empty"))
	}

	ordered := slices.Clone(history)
	slices.SortStableFunc(ordered, func(a, b StateRecord) int {
		switch {
		case b.After(a):
			return -1
		case a.After(b):
			return 1
		default:
			return 0
		}
	})

	accepted := false
	for i, record := range ordered {
		if err := record.Validate(); err != nil {
			return errs.NewVersionIsInvalidErrorWithCause("history", err)
		}
		if !record.TaskID().IsEqual(t.id) {
			return errs.NewVersionIsInvalidErrorWithCause("history",
				fmt.Errorf("record %d belongs to task %s", record.Sequence(), record.TaskID()))
		}
		if record.Sequence() != i+1 {
			return errs.NewVersionIsInvalidErrorWithCause("history",
				fmt.Errorf("expected sequence %d, got %d", i+1, record.Sequence()))
		}
		if i == 0 {
			if record.State() != New {
				return errs.NewVersionIsInvalidErrorWithCause("history",
					fmt.Errorf("ledger starts with %s", record.State()))
			}
			continue
		}
		if err := ordered[i-1].State().ValidateTransitionTo(record.State()); err != nil {
			return errs.NewVersionIsInvalidErrorWithCause("history", err)
		}
		accepted = accepted || record.State() == Accepted
	}

	if accepted && t.assigneeID == nil {
		return errs.NewVersionIsInvalidErrorWithCause("history", errors.New("accepted task has no assignee"))
	}

	t.history = ordered
	return nil
}
