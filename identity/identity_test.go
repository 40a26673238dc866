package identity

import (
	"errors"
	"testing"

	"github.com/Aworminator/Project-Tracker/domain"
)

func TestParseRole(t *testing.T) {
	for _, s := range []string{"admin", "manager", "member", " Admin ", "MEMBER"} {
		r, err := ParseRole(s)
		if err != nil {
			t.Errorf("ParseRole(%q) failed: %v", s, err)
		}
		if !r.Valid() {
			t.Errorf("ParseRole(%q) returned invalid role %q", s, r)
		}
	}

	for _, s := range []string{"", "root", "superadmin", "mem ber"} {
		_, err := ParseRole(s)
		if !errors.Is(err, domain.ErrInvalidRole) {
			t.Errorf("ParseRole(%q): expected ErrInvalidRole, got %v", s, err)
		}
	}
}

func TestRoleOrdering(t *testing.T) {
	// admin > manager > member
	if !RoleAdmin.AtLeast(RoleManager) || !RoleAdmin.AtLeast(RoleMember) {
		t.Error("admin should outrank manager and member")
	}
	if !RoleManager.AtLeast(RoleMember) {
		t.Error("manager should outrank member")
	}
	if RoleMember.AtLeast(RoleManager) || RoleManager.AtLeast(RoleAdmin) {
		t.Error("lower roles must not outrank higher ones")
	}

	// Reflexive
	for _, r := range []Role{RoleAdmin, RoleManager, RoleMember} {
		if !r.AtLeast(r) {
			t.Errorf("%q should be at least itself", r)
		}
	}

	// Unknown roles rank below everything, including themselves
	bogus := Role("root")
	if bogus.AtLeast(RoleMember) || bogus.AtLeast(bogus) {
		t.Error("unknown role must not pass any threshold")
	}
}

func TestNormalizeEmail(t *testing.T) {
	if got := NormalizeEmail("  Alice@Example.COM "); got != "alice@example.com" {
		t.Errorf("expected lowercased trimmed email, got %q", got)
	}
}

func TestSuspended(t *testing.T) {
	i := &Identity{Status: StatusActive}
	if i.Suspended() {
		t.Error("active identity reported suspended")
	}
	i.Status = StatusSuspended
	if !i.Suspended() {
		t.Error("suspended identity not reported suspended")
	}
}
