package policy

import (
	"testing"

	"github.com/Aworminator/Project-Tracker/identity"
)

func ident(role identity.Role, status identity.Status) *identity.Identity {
	return &identity.Identity{ID: "u1", Role: role, Status: status}
}

func TestSuspendedDeniesEverything(t *testing.T) {
	p := NewAccessPolicy()
	suspended := ident(identity.RoleAdmin, identity.StatusSuspended)

	actions := []Action{ActionCreate, ActionRead, ActionUpdate, ActionDelete, ActionList}
	resources := []Resource{ResourceProject, ResourceTask, ResourceUser}

	for _, a := range actions {
		for _, res := range resources {
			d := p.Check(suspended, a, res, nil)
			if d.Allowed {
				t.Errorf("suspended admin allowed %s on %s", a, res)
			}
		}
	}
}

func TestNilIdentityDenied(t *testing.T) {
	p := NewAccessPolicy()
	if d := p.Check(nil, ActionRead, ResourceProject, nil); d.Allowed {
		t.Error("nil identity should be denied")
	}
}

func TestAdminAllowsAll(t *testing.T) {
	p := NewAccessPolicy()
	admin := ident(identity.RoleAdmin, identity.StatusActive)

	for _, a := range []Action{ActionCreate, ActionRead, ActionUpdate, ActionDelete, ActionList} {
		for _, res := range []Resource{ResourceProject, ResourceTask, ResourceUser} {
			if d := p.Check(admin, a, res, nil); !d.Allowed {
				t.Errorf("admin denied %s on %s: %s", a, res, d.Reason)
			}
		}
	}
}

func TestManagerRules(t *testing.T) {
	p := NewAccessPolicy()
	mgr := ident(identity.RoleManager, identity.StatusActive)

	cases := []struct {
		action  Action
		res     Resource
		allowed bool
	}{
		{ActionCreate, ResourceProject, true},
		{ActionUpdate, ResourceProject, true},
		{ActionRead, ResourceProject, true},
		{ActionList, ResourceTask, true},
		{ActionDelete, ResourceProject, false},
		{ActionDelete, ResourceTask, false},
		{ActionList, ResourceUser, false},
		{ActionUpdate, ResourceUser, false},
	}

	for _, c := range cases {
		d := p.Check(mgr, c.action, c.res, nil)
		if d.Allowed != c.allowed {
			t.Errorf("manager %s on %s: got allowed=%v, want %v (%s)", c.action, c.res, d.Allowed, c.allowed, d.Reason)
		}
	}
}

func TestMemberRules(t *testing.T) {
	p := NewAccessPolicy()
	mem := ident(identity.RoleMember, identity.StatusActive)

	if d := p.Check(mem, ActionRead, ResourceProject, nil); !d.Allowed {
		t.Error("member should pass the read gate")
	}
	if d := p.Check(mem, ActionList, ResourceTask, nil); !d.Allowed {
		t.Error("member should pass the list gate")
	}
	if d := p.Check(mem, ActionCreate, ResourceProject, nil); d.Allowed {
		t.Error("member must not create projects")
	}
	if d := p.Check(mem, ActionUpdate, ResourceProject, nil); d.Allowed {
		t.Error("member must not update projects")
	}
	if d := p.Check(mem, ActionDelete, ResourceTask, nil); d.Allowed {
		t.Error("member must not delete tasks")
	}
	if d := p.Check(mem, ActionRead, ResourceUser, nil); d.Allowed {
		t.Error("member must not read users")
	}
}

func TestMemberTaskUpdateException(t *testing.T) {
	p := NewAccessPolicy()
	mem := ident(identity.RoleMember, identity.StatusActive)

	self := mem.ID
	other := "u2"

	// Assigned to this member: allowed
	if d := p.Check(mem, ActionUpdate, ResourceTask, &Facts{TaskAssignee: &self}); !d.Allowed {
		t.Errorf("member should update own task: %s", d.Reason)
	}

	// Assigned to someone else: denied
	if d := p.Check(mem, ActionUpdate, ResourceTask, &Facts{TaskAssignee: &other}); d.Allowed {
		t.Error("member must not update another member's task")
	}

	// Unassigned task: denied
	if d := p.Check(mem, ActionUpdate, ResourceTask, &Facts{}); d.Allowed {
		t.Error("member must not update an unassigned task")
	}

	// No facts at all: denied
	if d := p.Check(mem, ActionUpdate, ResourceTask, nil); d.Allowed {
		t.Error("member task update without facts must be denied")
	}
}

func TestUnknownRoleDenied(t *testing.T) {
	p := NewAccessPolicy()
	corrupt := ident(identity.Role("root"), identity.StatusActive)
	if d := p.Check(corrupt, ActionRead, ResourceProject, nil); d.Allowed {
		t.Error("unknown role must be denied")
	}
}
