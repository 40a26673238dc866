package persistence

import (
	"time"

	"github.com/Aworminator/Project-Tracker/audit"
	"github.com/Aworminator/Project-Tracker/identity"
	"github.com/Aworminator/Project-Tracker/project"
	"github.com/Aworminator/Project-Tracker/session"
)

type gormUser struct {
	ID           string `gorm:"primaryKey"`
	Email        string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`
	Role         string `gorm:"index;not null"`
	Status       string `gorm:"index;not null"`
	FirstName    string
	LastName     string
	CreatedAt    time.Time `gorm:"index"`
	UpdatedAt    time.Time
}

func (gormUser) TableName() string { return "users" }

func toCoreUser(gu *gormUser) *identity.Identity {
	if gu == nil {
		return nil
	}
	return &identity.Identity{
		ID:           gu.ID,
		Email:        gu.Email,
		PasswordHash: gu.PasswordHash,
		Role:         identity.Role(gu.Role),
		Status:       identity.Status(gu.Status),
		FirstName:    gu.FirstName,
		LastName:     gu.LastName,
		CreatedAt:    gu.CreatedAt,
		UpdatedAt:    gu.UpdatedAt,
	}
}

func fromCoreUser(i *identity.Identity) *gormUser {
	if i == nil {
		return nil
	}
	return &gormUser{
		ID:           i.ID,
		Email:        i.Email,
		PasswordHash: i.PasswordHash,
		Role:         string(i.Role),
		Status:       string(i.Status),
		FirstName:    i.FirstName,
		LastName:     i.LastName,
		CreatedAt:    i.CreatedAt,
		UpdatedAt:    i.UpdatedAt,
	}
}

type gormProject struct {
	ID          string `gorm:"primaryKey"`
	Name        string `gorm:"not null"`
	Description string
	Status      string `gorm:"index;not null"`
	Priority    string
	Deadline    *time.Time
	CreatedBy   string    `gorm:"index"`
	CreatedAt   time.Time `gorm:"index"`
	UpdatedAt   time.Time
}

func (gormProject) TableName() string { return "projects" }

func toCoreProject(gp *gormProject) *project.Project {
	if gp == nil {
		return nil
	}
	return &project.Project{
		ID:          gp.ID,
		Name:        gp.Name,
		Description: gp.Description,
		Status:      project.ProjectStatus(gp.Status),
		Priority:    project.Priority(gp.Priority),
		Deadline:    gp.Deadline,
		CreatedBy:   gp.CreatedBy,
		CreatedAt:   gp.CreatedAt,
		UpdatedAt:   gp.UpdatedAt,
	}
}

func fromCoreProject(p *project.Project) *gormProject {
	if p == nil {
		return nil
	}
	return &gormProject{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Status:      string(p.Status),
		Priority:    string(p.Priority),
		Deadline:    p.Deadline,
		CreatedBy:   p.CreatedBy,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// gormMembership enforces the at-most-one-row-per-(project,user)
// invariant with a composite unique index.
type gormMembership struct {
	ID        string `gorm:"primaryKey"`
	ProjectID string `gorm:"uniqueIndex:idx_project_user;not null"`
	UserID    string `gorm:"uniqueIndex:idx_project_user;index;not null"`
	Role      string `gorm:"not null"`
	JoinedAt  time.Time
}

func (gormMembership) TableName() string { return "project_members" }

func toCoreMembership(gm *gormMembership) *project.Membership {
	if gm == nil {
		return nil
	}
	return &project.Membership{
		ID:        gm.ID,
		ProjectID: gm.ProjectID,
		UserID:    gm.UserID,
		Role:      project.MemberRole(gm.Role),
		JoinedAt:  gm.JoinedAt,
	}
}

func fromCoreMembership(m *project.Membership) *gormMembership {
	if m == nil {
		return nil
	}
	return &gormMembership{
		ID:        m.ID,
		ProjectID: m.ProjectID,
		UserID:    m.UserID,
		Role:      string(m.Role),
		JoinedAt:  m.JoinedAt,
	}
}

type gormTask struct {
	ID          string `gorm:"primaryKey"`
	Title       string `gorm:"not null"`
	Description string
	ProjectID   string  `gorm:"index;not null"`
	AssignedTo  *string `gorm:"index"`
	CreatedBy   string
	Status      string `gorm:"index;not null"`
	Priority    string
	DueDate     *time.Time
	CompletedAt *time.Time
	CreatedAt   time.Time `gorm:"index"`
	UpdatedAt   time.Time
}

func (gormTask) TableName() string { return "tasks" }

func toCoreTask(gt *gormTask) *project.Task {
	if gt == nil {
		return nil
	}
	return &project.Task{
		ID:          gt.ID,
		Title:       gt.Title,
		Description: gt.Description,
		ProjectID:   gt.ProjectID,
		AssignedTo:  gt.AssignedTo,
		CreatedBy:   gt.CreatedBy,
		Status:      project.TaskStatus(gt.Status),
		Priority:    project.Priority(gt.Priority),
		DueDate:     gt.DueDate,
		CompletedAt: gt.CompletedAt,
		CreatedAt:   gt.CreatedAt,
		UpdatedAt:   gt.UpdatedAt,
	}
}

func fromCoreTask(t *project.Task) *gormTask {
	if t == nil {
		return nil
	}
	return &gormTask{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		ProjectID:   t.ProjectID,
		AssignedTo:  t.AssignedTo,
		CreatedBy:   t.CreatedBy,
		Status:      string(t.Status),
		Priority:    string(t.Priority),
		DueDate:     t.DueDate,
		CompletedAt: t.CompletedAt,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

type gormSession struct {
	ID         string `gorm:"primaryKey"`
	IdentityID string `gorm:"index"`
	ExpiresAt  time.Time
	IssuedAt   time.Time
	Active     bool
}

func (gormSession) TableName() string { return "sessions" }

func toCoreSession(gs *gormSession) *session.Session {
	if gs == nil {
		return nil
	}
	return &session.Session{
		ID:         gs.ID,
		IdentityID: gs.IdentityID,
		Token:      gs.ID,
		ExpiresAt:  gs.ExpiresAt,
		IssuedAt:   gs.IssuedAt,
		Active:     gs.Active,
	}
}

func fromCoreSession(s *session.Session) *gormSession {
	if s == nil {
		return nil
	}
	return &gormSession{
		ID:         s.ID,
		IdentityID: s.IdentityID,
		ExpiresAt:  s.ExpiresAt,
		IssuedAt:   s.IssuedAt,
		Active:     s.Active,
	}
}

type gormAuditEvent struct {
	ID        string `gorm:"primaryKey"`
	Type      string `gorm:"index"`
	ActorID   string `gorm:"index"`
	SubjectID string `gorm:"index"`
	Status    string `gorm:"index"`
	Message   string
	IPAddress string
	CreatedAt time.Time `gorm:"index"`
}

func (gormAuditEvent) TableName() string { return "audit_events" }

func fromCoreAuditEvent(e *audit.Event) *gormAuditEvent {
	if e == nil {
		return nil
	}
	return &gormAuditEvent{
		ID:        e.ID,
		Type:      e.Type,
		ActorID:   e.ActorID,
		SubjectID: e.SubjectID,
		Status:    e.Status,
		Message:   e.Message,
		IPAddress: e.IPAddress,
		CreatedAt: e.CreatedAt,
	}
}
