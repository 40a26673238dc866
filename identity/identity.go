// Package identity provides the core identity types for Project-Tracker.
//
// This package defines the authenticated principal (Identity), the fixed
// role set, and the account status values. Roles are totally ordered by
// capability and validated at construction time; code elsewhere never
// defaults a role at a read site.
//
// # Roles
//
//   - admin: full access to every resource
//   - manager: project/task administration, no user administration
//   - member: scoped read access, own-task updates only
//
// # Identity States
//
//   - active: normal operational state
//   - suspended: every action is denied; the record is kept (no hard delete)
package identity

import (
	"strings"
	"time"

	"github.com/Aworminator/Project-Tracker/domain"
)

// Role is a capability tier. The set is fixed; unknown strings are
// rejected by ParseRole.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleMember  Role = "member"
)

// DefaultRole is assigned to self-registered identities.
const DefaultRole = RoleMember

// roleRanks orders roles by capability. Higher rank implies every
// visibility rule of the lower ranks.
var roleRanks = map[Role]int{
	RoleMember:  1,
	RoleManager: 2,
	RoleAdmin:   3,
}

// ParseRole validates a role string. Returns domain.ErrInvalidRole for
// anything outside the fixed set.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := roleRanks[r]; !ok {
		return "", domain.ErrInvalidRole
	}
	return r, nil
}

// Rank returns the capability rank of the role. Unknown roles rank 0,
// below every valid role.
func (r Role) Rank() int {
	return roleRanks[r]
}

// AtLeast reports whether r carries at least the capability of threshold.
func (r Role) AtLeast(threshold Role) bool {
	return roleRanks[r] != 0 && roleRanks[r] >= roleRanks[threshold]
}

// Valid reports whether r is one of the fixed roles.
func (r Role) Valid() bool {
	_, ok := roleRanks[r]
	return ok
}

// Status is the lifecycle state of an identity.
type Status string

const (
	StatusActive    Status = "active"
	StatusSuspended Status = "suspended"
)

// Identity represents an authenticated principal.
type Identity struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	Status       Status    `json:"status"`
	FirstName    string    `json:"first_name,omitempty"`
	LastName     string    `json:"last_name,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Suspended reports whether the identity is barred from every action.
func (i *Identity) Suspended() bool {
	return i.Status == StatusSuspended
}

// NormalizeEmail canonicalizes an email for storage and lookup.
// Uniqueness is case-insensitive, so everything is stored lowercase.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
