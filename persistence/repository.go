package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Aworminator/Project-Tracker/audit"
	"github.com/Aworminator/Project-Tracker/domain"
	"github.com/Aworminator/Project-Tracker/flow"
	"github.com/Aworminator/Project-Tracker/identity"
	"github.com/Aworminator/Project-Tracker/project"
	"github.com/Aworminator/Project-Tracker/scope"
	"github.com/Aworminator/Project-Tracker/session"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

var (
	_ flow.IdentityStore     = (*Repository)(nil)
	_ scope.MembershipSource = (*Repository)(nil)
	_ session.Storage        = (*Repository)(nil)
	_ audit.Recorder         = (*Repository)(nil)
)

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) DB() *gorm.DB {
	return r.db
}

func (r *Repository) AutoMigrate() error {
	return r.db.AutoMigrate(
		&gormUser{},
		&gormProject{},
		&gormMembership{},
		&gormTask{},
		&gormSession{},
		&gormAuditEvent{},
	)
}

func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// Fallback for dialects without error translation.
	return strings.Contains(err.Error(), "UNIQUE constraint") ||
		strings.Contains(err.Error(), "Duplicate entry")
}

// ---- Users ----

// CreateUser inserts the identity as a single statement. The unique
// index over email is the source of truth for uniqueness; a violation
// comes back as domain.ErrEmailTaken.
func (r *Repository) CreateUser(ctx context.Context, ident *identity.Identity) error {
	if err := r.db.WithContext(ctx).Create(fromCoreUser(ident)).Error; err != nil {
		if isDuplicate(err) {
			return domain.ErrEmailTaken
		}
		return err
	}
	return nil
}

// FindByEmail implements flow.IdentityStore.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*identity.Identity, error) {
	var gu gormUser
	err := r.db.WithContext(ctx).Where("email = ?", identity.NormalizeEmail(email)).First(&gu).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return toCoreUser(&gu), nil
}

func (r *Repository) GetUser(ctx context.Context, id string) (*identity.Identity, error) {
	var gu gormUser
	err := r.db.WithContext(ctx).First(&gu, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return toCoreUser(&gu), nil
}

func (r *Repository) ListUsers(ctx context.Context) ([]*identity.Identity, error) {
	var rows []gormUser
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	users := make([]*identity.Identity, len(rows))
	for i := range rows {
		users[i] = toCoreUser(&rows[i])
	}
	return users, nil
}

func (r *Repository) UpdateUser(ctx context.Context, ident *identity.Identity) error {
	ident.UpdatedAt = time.Now()
	res := r.db.WithContext(ctx).Model(&gormUser{}).Where("id = ?", ident.ID).Updates(fromCoreUser(ident))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Create implements flow.IdentityStore.
func (r *Repository) Create(ctx context.Context, ident *identity.Identity) error {
	return r.CreateUser(ctx, ident)
}

// ---- Projects ----

// CreateProjectWithOwner inserts the project and its owner membership
// in one transaction, so a crash cannot leave a project with no owner
// row behind.
func (r *Repository) CreateProjectWithOwner(ctx context.Context, p *project.Project) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(fromCoreProject(p)).Error; err != nil {
			return err
		}
		m := &project.Membership{
			ID:        uuid.New().String(),
			ProjectID: p.ID,
			UserID:    p.CreatedBy,
			Role:      project.MemberOwner,
			JoinedAt:  time.Now(),
		}
		return tx.Create(fromCoreMembership(m)).Error
	})
}

func (r *Repository) GetProject(ctx context.Context, id string) (*project.Project, error) {
	var gp gormProject
	err := r.db.WithContext(ctx).First(&gp, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return toCoreProject(&gp), nil
}

// ListProjects returns the projects visible under the scope, newest
// first. An empty member scope returns an empty slice without touching
// the database, so an empty filter list never widens into a full scan.
func (r *Repository) ListProjects(ctx context.Context, s scope.ProjectScope) ([]*project.Project, error) {
	if s.Empty() {
		return []*project.Project{}, nil
	}

	q := r.db.WithContext(ctx).Order("created_at DESC")
	if !s.Unscoped {
		q = q.Where("id IN ?", s.IDs)
	}

	var rows []gormProject
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	projects := make([]*project.Project, len(rows))
	for i := range rows {
		projects[i] = toCoreProject(&rows[i])
	}
	return projects, nil
}

func (r *Repository) UpdateProject(ctx context.Context, p *project.Project) error {
	p.UpdatedAt = time.Now()
	res := r.db.WithContext(ctx).Model(&gormProject{}).Where("id = ?", p.ID).Updates(map[string]any{
		"name":        p.Name,
		"description": p.Description,
		"status":      string(p.Status),
		"priority":    string(p.Priority),
		"deadline":    p.Deadline,
		"updated_at":  p.UpdatedAt,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ---- Memberships ----

// ProjectIDsForUser implements scope.MembershipSource.
func (r *Repository) ProjectIDsForUser(ctx context.Context, userID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&gormMembership{}).
		Where("user_id = ?", userID).
		Pluck("project_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// HasMembership implements scope.MembershipSource.
func (r *Repository) HasMembership(ctx context.Context, projectID, userID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&gormMembership{}).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// AddMember inserts a membership row. The composite unique index keeps
// one row per (project, user).
func (r *Repository) AddMember(ctx context.Context, m *project.Membership) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	if m.JoinedAt.IsZero() {
		m.JoinedAt = time.Now()
	}
	if err := r.db.WithContext(ctx).Create(fromCoreMembership(m)).Error; err != nil {
		if isDuplicate(err) {
			return domain.ErrDuplicateMembership
		}
		return err
	}
	return nil
}

// Member is a membership row joined with its user record, as rendered
// on the project members listing.
type Member struct {
	ID       string             `json:"id"`
	Role     project.MemberRole `json:"role"`
	JoinedAt time.Time          `json:"joined_at"`
	User     *identity.Identity `json:"user"`
}

func (r *Repository) ListProjectMembers(ctx context.Context, projectID string) ([]Member, error) {
	var rows []gormMembership
	err := r.db.WithContext(ctx).Where("project_id = ?", projectID).Find(&rows).Error
	if err != nil {
		return nil, err
	}

	members := make([]Member, 0, len(rows))
	for i := range rows {
		user, err := r.GetUser(ctx, rows[i].UserID)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		members = append(members, Member{
			ID:       rows[i].ID,
			Role:     project.MemberRole(rows[i].Role),
			JoinedAt: rows[i].JoinedAt,
			User:     user,
		})
	}
	return members, nil
}

// ---- Tasks ----

func (r *Repository) CreateTask(ctx context.Context, t *project.Task) error {
	return r.db.WithContext(ctx).Create(fromCoreTask(t)).Error
}

func (r *Repository) GetTask(ctx context.Context, id string) (*project.Task, error) {
	var gt gormTask
	err := r.db.WithContext(ctx).First(&gt, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return toCoreTask(&gt), nil
}

// UpdateTask writes the full task row, completed_at included, so the
// CompletedAt/Status invariant set by ApplyStatus survives the write
// even when the value goes back to null.
func (r *Repository) UpdateTask(ctx context.Context, t *project.Task) error {
	t.UpdatedAt = time.Now()
	res := r.db.WithContext(ctx).Model(&gormTask{}).Where("id = ?", t.ID).Updates(map[string]any{
		"title":        t.Title,
		"description":  t.Description,
		"assigned_to":  t.AssignedTo,
		"status":       string(t.Status),
		"priority":     string(t.Priority),
		"due_date":     t.DueDate,
		"completed_at": t.CompletedAt,
		"updated_at":   t.UpdatedAt,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// TaskFilter narrows a task listing. Scope carries the project
// visibility computed by the resource scoper.
type TaskFilter struct {
	Scope      scope.ProjectScope
	ProjectID  string
	Status     project.TaskStatus
	AssignedTo string
}

func (r *Repository) ListTasks(ctx context.Context, f TaskFilter) ([]*project.Task, error) {
	if f.Scope.Empty() {
		return []*project.Task{}, nil
	}

	q := r.db.WithContext(ctx).Order("created_at DESC")
	if !f.Scope.Unscoped {
		q = q.Where("project_id IN ?", f.Scope.IDs)
	}
	if f.ProjectID != "" {
		q = q.Where("project_id = ?", f.ProjectID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", string(f.Status))
	}
	if f.AssignedTo != "" {
		q = q.Where("assigned_to = ?", f.AssignedTo)
	}

	var rows []gormTask
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	tasks := make([]*project.Task, len(rows))
	for i := range rows {
		tasks[i] = toCoreTask(&rows[i])
	}
	return tasks, nil
}

// ---- Sessions ----

// CreateSession implements session.Storage.
func (r *Repository) CreateSession(s *session.Session) error {
	return r.db.Create(fromCoreSession(s)).Error
}

// GetSession implements session.Storage.
func (r *Repository) GetSession(id string) (*session.Session, error) {
	var gs gormSession
	if err := r.db.First(&gs, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return toCoreSession(&gs), nil
}

// DeleteSession implements session.Storage.
func (r *Repository) DeleteSession(id string) error {
	return r.db.Delete(&gormSession{}, "id = ?", id).Error
}

// ---- Audit ----

// Record implements audit.Recorder.
func (r *Repository) Record(ctx context.Context, event *audit.Event) error {
	ge := fromCoreAuditEvent(event)
	if ge.ID == "" {
		ge.ID = uuid.New().String()
	}
	if ge.CreatedAt.IsZero() {
		ge.CreatedAt = time.Now()
	}
	return r.db.WithContext(ctx).Create(ge).Error
}
