// Package task provides the delivery task aggregate and its state ledger.
//
// The package includes:
//   - Task: the aggregate root owning identity, ownership links and history
//   - State: the lifecycle states and the transition table between them
//   - StateRecord: one append-only entry of a task's ledger
//   - Priority: low, medium or high
//
// Key business rules:
//   - A task is created together with exactly one New record
//   - The current state is derived from the latest ledger record, never stored
//   - Records are only appended, each one a legal step of the transition table
//   - The assignee is set on the first acceptance and never changes afterwards
//   - last updated time never moves backwards
//
// Authorization is not decided here; see the services package.
package task
