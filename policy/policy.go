// Package policy implements the access decision function.
//
// Check is pure: it inspects the acting identity, the requested action,
// and optional resource facts, and returns an Allow or Deny decision.
// It never touches the datastore and never returns an error; callers
// translate Deny into the user-visible Forbidden/Unauthorized outcome
// and apply scoping (package scope) to list reads.
package policy

import (
	"github.com/Aworminator/Project-Tracker/identity"
)

// Action is the operation being attempted.
type Action string

const (
	ActionCreate Action = "create"
	ActionRead   Action = "read"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
	ActionList   Action = "list"
)

// Resource is the kind of entity the action targets.
type Resource string

const (
	ResourceProject Resource = "project"
	ResourceTask    Resource = "task"
	ResourceUser    Resource = "user"
)

// Facts carries per-instance ownership facts for decisions that depend
// on them. Nil means no instance is in play (e.g. create, list).
type Facts struct {
	// TaskAssignee is the identity ID the target task is assigned to,
	// if any. Enables the one member-level mutation: a member may
	// update a task assigned to them.
	TaskAssignee *string
}

// Decision is the outcome of a policy check.
type Decision struct {
	Allowed bool
	Reason  string
}

// Allow returns an allowing decision.
func Allow() Decision { return Decision{Allowed: true} }

// Deny returns a denying decision with a terse reason. Reasons are for
// logs; user-visible messages never reveal which rule fired.
func Deny(reason string) Decision { return Decision{Allowed: false, Reason: reason} }

// AccessPolicy decides, per authenticated identity, which actions on
// which resource kinds are permitted.
type AccessPolicy struct{}

// NewAccessPolicy creates the fixed role-based policy.
func NewAccessPolicy() *AccessPolicy { return &AccessPolicy{} }

// Check evaluates (identity, action, resource, facts) to a decision.
//
// Suspension is evaluated before any role rule: a suspended identity is
// denied everything regardless of role.
func (p *AccessPolicy) Check(ident *identity.Identity, action Action, res Resource, facts *Facts) Decision {
	if ident == nil {
		return Deny("no identity")
	}
	if ident.Suspended() {
		return Deny("identity suspended")
	}

	if ident.Role == identity.RoleAdmin {
		return Allow()
	}

	// User administration is admin-only in every form.
	if res == ResourceUser {
		return Deny("user administration requires admin")
	}

	switch ident.Role {
	case identity.RoleManager:
		// Managers create, update, and read projects and tasks without
		// a membership filter. Deletion stays admin-only.
		switch action {
		case ActionCreate, ActionUpdate, ActionRead, ActionList:
			return Allow()
		}
		return Deny("managers cannot delete")

	case identity.RoleMember:
		switch action {
		case ActionRead, ActionList:
			// Allowed, but the caller must route the read through the
			// resource scoper; this is a gate, not a blanket grant.
			return Allow()
		case ActionUpdate:
			// The one member-level mutation: updating a task assigned
			// to this member.
			if res == ResourceTask && facts != nil && facts.TaskAssignee != nil && *facts.TaskAssignee == ident.ID {
				return Allow()
			}
		}
		return Deny("members cannot modify resources")
	}

	// Identities are constructed with a validated role, so an unknown
	// role here means a corrupted record. Deny.
	return Deny("unknown role")
}
