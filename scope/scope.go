// Package scope computes the subset of a resource collection visible to
// an identity. It is the pre-filter applied before list-type reads; the
// policy package gates the action, this package narrows the rows.
package scope

import (
	"context"

	"github.com/Aworminator/Project-Tracker/identity"
	"github.com/Aworminator/Project-Tracker/project"
)

// MembershipSource is the datastore boundary the scoper reads through.
// Every call is a fresh query; scoped ID sets are never cached across
// requests.
type MembershipSource interface {
	// ProjectIDsForUser returns the IDs of projects the user has a
	// membership row for.
	ProjectIDsForUser(ctx context.Context, userID string) ([]string, error)

	// HasMembership reports whether a membership row exists for the
	// (projectID, userID) pair.
	HasMembership(ctx context.Context, projectID, userID string) (bool, error)
}

// ProjectScope is the result of scoping a project collection.
//
// When Unscoped is true the caller applies no filter at all. Otherwise
// the caller restricts to exactly IDs; if IDs is empty the caller must
// return an empty result set without issuing a broader query, so an
// empty filter never degrades into an unfiltered one.
type ProjectScope struct {
	Unscoped bool
	IDs      []string
}

// Empty reports whether the scope admits no projects.
func (s ProjectScope) Empty() bool {
	return !s.Unscoped && len(s.IDs) == 0
}

// Contains reports whether the scope admits the given project ID.
func (s ProjectScope) Contains(id string) bool {
	if s.Unscoped {
		return true
	}
	for _, v := range s.IDs {
		if v == id {
			return true
		}
	}
	return false
}

// ResourceScoper derives visibility from the identity's role and its
// membership rows.
type ResourceScoper struct {
	memberships MembershipSource
}

// NewResourceScoper creates a scoper over the given membership source.
func NewResourceScoper(m MembershipSource) *ResourceScoper {
	return &ResourceScoper{memberships: m}
}

// ScopeProjectIDs computes the project visibility for the identity.
// Admins and managers see everything; members see exactly the projects
// they hold a membership in.
func (s *ResourceScoper) ScopeProjectIDs(ctx context.Context, ident *identity.Identity) (ProjectScope, error) {
	if ident.Role.AtLeast(identity.RoleManager) {
		return ProjectScope{Unscoped: true}, nil
	}

	ids, err := s.memberships.ProjectIDsForUser(ctx, ident.ID)
	if err != nil {
		return ProjectScope{}, err
	}
	return ProjectScope{IDs: ids}, nil
}

// CanAccessProject reports whether the identity may read the project.
// Managers and admins always can; members need a membership row.
func (s *ResourceScoper) CanAccessProject(ctx context.Context, ident *identity.Identity, projectID string) (bool, error) {
	if ident.Role.AtLeast(identity.RoleManager) {
		return true, nil
	}
	return s.memberships.HasMembership(ctx, projectID, ident.ID)
}

// CanUpdateTask reports whether the identity may update the task. This
// is the one place member-level mutation is permitted: the task's own
// assignee may update it.
func (s *ResourceScoper) CanUpdateTask(ident *identity.Identity, t *project.Task) bool {
	if ident.Role.AtLeast(identity.RoleManager) {
		return true
	}
	return t.AssignedTo != nil && *t.AssignedTo == ident.ID
}
