package services

import (
	"fmt"

	"deliverytasks/internal/core/domain/model/actor"
	"deliverytasks/internal/core/domain/model/task"
	"deliverytasks/internal/pkg/errs"
)

// Relation is the link an actor must have to a task for a rule to apply.
type Relation int

const (
	// AnyTask applies regardless of ownership.
	AnyTask Relation = iota
	// Creator requires the actor to have created the task.
	Creator
	// Assignee requires the actor to be the task's assignee.
	Assignee
	// Unassigned requires the task to have no assignee yet.
	Unassigned
)

func getRelationStrings() map[Relation]string {
	return map[Relation]string{
		AnyTask:    "any task",
		Creator:    "creator",
		Assignee:   "assignee",
		Unassigned: "unassigned task",
	}
}

func (r Relation) String() string {
	if str, ok := getRelationStrings()[r]; ok {
		return str
	}
	return "unknown"
}

// Rule grants Role the right to move a task into Target when Relation holds.
type Rule struct {
	Target   task.State
	Role     actor.Role
	Relation Relation
}

func (r Rule) String() string {
	return fmt.Sprintf("%s may move %s to %s", r.Role, r.Relation, r.Target)
}

// Decision is the outcome of a policy check. Reason explains a denial.
type Decision struct {
	Allowed bool
	Reason  string
}

// Err returns an errs.UnauthorizedError for a denial and nil otherwise.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	return errs.NewUnauthorizedError(d.Reason)
}

func allow() Decision {
	return Decision{Allowed: true}
}

func deny(format string, args ...any) Decision {
	return Decision{Reason: fmt.Sprintf(format, args...)}
}

// getTransitionRules is the complete permission table. A transition not
// matched by any row is denied. Declined -> New is a legal step of the state
// table that no role is granted, and Admin appears in no row.
func getTransitionRules() []Rule {
	return []Rule{
		{Target: task.Cancelled, Role: actor.StoreManager, Relation: Creator},
		{Target: task.Accepted, Role: actor.DeliveryAgent, Relation: Unassigned},
		{Target: task.Completed, Role: actor.DeliveryAgent, Relation: Assignee},
		{Target: task.Declined, Role: actor.DeliveryAgent, Relation: Assignee},
	}
}

// TransitionPolicy decides whether an actor may move a task into a state.
// It checks permissions only; legality of the step itself is decided by the
// task's transition table.
type TransitionPolicy struct {
	rules []Rule
}

func NewTransitionPolicy() TransitionPolicy {
	return TransitionPolicy{rules: getTransitionRules()}
}

// Rules returns a copy of the permission table.
func (p TransitionPolicy) Rules() []Rule {
	out := make([]Rule, len(p.rules))
	copy(out, p.rules)
	return out
}

// Authorize evaluates the table for (a, t, target). Anonymous actors are
// always denied.
func (p TransitionPolicy) Authorize(a actor.Actor, t *task.Task, target task.State) Decision {
	if a.Validate() != nil || a.IsAnonymous() {
		return deny("anonymous actors cannot change tasks")
	}

	var roleMatched *Rule
	for i := range p.rules {
		rule := p.rules[i]
		if rule.Target != target || rule.Role != a.Role() {
			continue
		}
		if p.relationHolds(rule.Relation, a, t) {
			return allow()
		}
		roleMatched = &rule
	}

	if roleMatched == nil {
		return deny("%s may not move a task to %s", a.Role(), target)
	}

	switch roleMatched.Relation {
	case Creator:
		return deny("only the creator of the task may move it to %s", target)
	case Assignee:
		return deny("only the assignee of the task may move it to %s", target)
	case Unassigned:
		return deny("task is already assigned")
	default:
		return deny("%s may not move this task to %s", a.Role(), target)
	}
}

// AuthorizeCreate decides whether a may create tasks. Only store managers may.
func (p TransitionPolicy) AuthorizeCreate(a actor.Actor) Decision {
	if a.Validate() != nil || a.IsAnonymous() {
		return deny("anonymous actors cannot create tasks")
	}
	if a.Role() != actor.StoreManager {
		return deny("%s may not create tasks", a.Role())
	}
	return allow()
}

// AuthorizeEdit decides whether a may change the details of t. Only the
// store manager who created it may.
func (p TransitionPolicy) AuthorizeEdit(a actor.Actor, t *task.Task) Decision {
	if a.Validate() != nil || a.IsAnonymous() {
		return deny("anonymous actors cannot edit tasks")
	}
	if a.Role() != actor.StoreManager {
		return deny("%s may not edit tasks", a.Role())
	}
	if !p.relationHolds(Creator, a, t) {
		return deny("only the creator of the task may edit it")
	}
	return allow()
}

func (p TransitionPolicy) relationHolds(r Relation, a actor.Actor, t *task.Task) bool {
	switch r {
	case AnyTask:
		return true
	case Creator:
		return t.IsCreatedBy(a)
	case Assignee:
		return t.IsAssignedTo(a)
	case Unassigned:
		return t.AssigneeID() == nil
	default:
		return false
	}
}
