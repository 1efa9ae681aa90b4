package queries

import (
	"errors"

	"deliverytasks/internal/core/domain/model/kernel"
	"deliverytasks/internal/pkg/guard"
)

var ErrAuditLedgerQueryIsNotConstructed = errors.New(
	"AuditLedgerQuery must be created via NewAuditLedgerQuery constructor",
)

// AuditLedgerQuery scans every task's ledger for records that do not form a
// legal path from New.
type AuditLedgerQuery struct {
	guard guard.ConstructorGuard
}

func NewAuditLedgerQuery() AuditLedgerQuery {
	return AuditLedgerQuery{guard: guard.NewConstructorGuard()}
}

func (q AuditLedgerQuery) Validate() error {
	return q.guard.Validate(ErrAuditLedgerQueryIsNotConstructed)
}

// LedgerViolation names a task whose ledger is broken and the first problem found.
type LedgerViolation struct {
	TaskID kernel.UUID
	Reason string
}
