package services

import (
	"deliverytasks/internal/core/domain/model/actor"
	"deliverytasks/internal/core/domain/model/kernel"
	"deliverytasks/internal/core/domain/model/task"
)

// ScopeKind selects which tasks a listing returns.
type ScopeKind int

const (
	ScopeNone ScopeKind = iota
	ScopeCreatedBy
	ScopeAssignedTo
	ScopeAll
)

// Scope is the set of tasks an actor may see, in a form repositories can
// translate into a query.
type Scope struct {
	Kind   ScopeKind
	UserID kernel.UUID
}

// VisibilityPolicy decides which tasks an actor may read.
//
//	StoreManager  -> tasks they created
//	DeliveryAgent -> tasks assigned to them
//	Admin         -> every task
//	Anonymous     -> nothing
type VisibilityPolicy struct{}

func NewVisibilityPolicy() VisibilityPolicy {
	return VisibilityPolicy{}
}

func (VisibilityPolicy) Scope(a actor.Actor) Scope {
	if a.Validate() != nil {
		return Scope{Kind: ScopeNone}
	}
	id, ok := a.ID()
	if !ok {
		return Scope{Kind: ScopeNone}
	}

	switch a.Role() {
	case actor.StoreManager:
		return Scope{Kind: ScopeCreatedBy, UserID: id}
	case actor.DeliveryAgent:
		return Scope{Kind: ScopeAssignedTo, UserID: id}
	case actor.Admin:
		return Scope{Kind: ScopeAll}
	default:
		return Scope{Kind: ScopeNone}
	}
}

// Includes reports whether a task with the given creator and assignee falls
// inside the scope.
func (s Scope) Includes(creatorID kernel.UUID, assigneeID *kernel.UUID) bool {
	switch s.Kind {
	case ScopeAll:
		return true
	case ScopeCreatedBy:
		return creatorID.IsEqual(s.UserID)
	case ScopeAssignedTo:
		return assigneeID != nil && assigneeID.IsEqual(s.UserID)
	default:
		return false
	}
}

func (p VisibilityPolicy) CanView(a actor.Actor, t *task.Task) bool {
	if t == nil {
		return false
	}
	return p.Scope(a).Includes(t.CreatorID(), t.AssigneeID())
}
