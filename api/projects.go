package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/Aworminator/Project-Tracker/domain"
	"github.com/Aworminator/Project-Tracker/policy"
	"github.com/Aworminator/Project-Tracker/project"
	"github.com/Aworminator/Project-Tracker/session"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

func (h *Handler) HandleListProjects(c echo.Context) error {
	ident := session.FromContext(c.Request().Context())

	if d := h.policy.Check(ident, policy.ActionList, policy.ResourceProject, nil); !d.Allowed {
		return h.Error(c, http.StatusForbidden, "Access denied", nil)
	}

	s, err := h.scoper.ScopeProjectIDs(c.Request().Context(), ident)
	if err != nil {
		return h.Error(c, http.StatusInternalServerError, "Failed to fetch projects", nil)
	}

	projects, err := h.repo.ListProjects(c.Request().Context(), s)
	if err != nil {
		return h.Error(c, http.StatusInternalServerError, "Failed to fetch projects", nil)
	}
	return c.JSON(http.StatusOK, projects)
}

func (h *Handler) HandleCreateProject(c echo.Context) error {
	ident := session.FromContext(c.Request().Context())

	if d := h.policy.Check(ident, policy.ActionCreate, policy.ResourceProject, nil); !d.Allowed {
		return h.Error(c, http.StatusForbidden, "Access denied", nil)
	}

	var body struct {
		Name        string     `json:"name" validate:"required"`
		Description string     `json:"description"`
		Priority    string     `json:"priority"`
		Deadline    *time.Time `json:"deadline"`
	}
	if err := c.Bind(&body); err != nil {
		return h.Error(c, http.StatusBadRequest, "Invalid request body", err)
	}
	if err := h.validate.Struct(body); err != nil {
		return h.Error(c, http.StatusBadRequest, "Project name is required", nil)
	}

	priority := project.Priority(body.Priority)
	if priority == "" {
		priority = project.PriorityMedium
	}

	now := time.Now()
	p := &project.Project{
		ID:          uuid.New().String(),
		Name:        strings.TrimSpace(body.Name),
		Description: strings.TrimSpace(body.Description),
		Status:      project.ProjectPlanning,
		Priority:    priority,
		Deadline:    body.Deadline,
		CreatedBy:   ident.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	// Project and owner membership land together or not at all.
	if err := h.repo.CreateProjectWithOwner(c.Request().Context(), p); err != nil {
		return h.Error(c, http.StatusInternalServerError, "Failed to create project", nil)
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) HandleGetProject(c echo.Context) error {
	ident := session.FromContext(c.Request().Context())
	id := c.Param("id")

	if d := h.policy.Check(ident, policy.ActionRead, policy.ResourceProject, nil); !d.Allowed {
		return h.Error(c, http.StatusForbidden, "Access denied", nil)
	}

	ok, err := h.scoper.CanAccessProject(c.Request().Context(), ident, id)
	if err != nil {
		return h.Error(c, http.StatusInternalServerError, "Failed to fetch project", nil)
	}
	if !ok {
		return h.Error(c, http.StatusForbidden, "Access denied", nil)
	}

	p, err := h.repo.GetProject(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return h.Error(c, http.StatusNotFound, "Project not found", nil)
		}
		return h.Error(c, http.StatusInternalServerError, "Failed to fetch project", nil)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) HandleUpdateProject(c echo.Context) error {
	ident := session.FromContext(c.Request().Context())
	id := c.Param("id")

	if d := h.policy.Check(ident, policy.ActionUpdate, policy.ResourceProject, nil); !d.Allowed {
		return h.Error(c, http.StatusForbidden, "Access denied", nil)
	}

	var body struct {
		Name        string     `json:"name" validate:"required"`
		Description string     `json:"description"`
		Status      string     `json:"status"`
		Priority    string     `json:"priority"`
		Deadline    *time.Time `json:"deadline"`
	}
	if err := c.Bind(&body); err != nil {
		return h.Error(c, http.StatusBadRequest, "Invalid request body", err)
	}
	if err := h.validate.Struct(body); err != nil {
		return h.Error(c, http.StatusBadRequest, "Project name is required", nil)
	}

	p, err := h.repo.GetProject(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return h.Error(c, http.StatusNotFound, "Project not found", nil)
		}
		return h.Error(c, http.StatusInternalServerError, "Failed to update project", nil)
	}

	p.Name = strings.TrimSpace(body.Name)
	p.Description = strings.TrimSpace(body.Description)
	if body.Status != "" {
		status := project.ProjectStatus(body.Status)
		if !project.ValidProjectStatus(status) {
			return h.Error(c, http.StatusBadRequest, "Invalid project status", nil)
		}
		p.Status = status
	}
	if body.Priority != "" {
		p.Priority = project.Priority(body.Priority)
	}
	if body.Deadline != nil {
		p.Deadline = body.Deadline
	}

	if err := h.repo.UpdateProject(c.Request().Context(), p); err != nil {
		return h.Error(c, http.StatusInternalServerError, "Failed to update project", nil)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) HandleListMembers(c echo.Context) error {
	ident := session.FromContext(c.Request().Context())
	id := c.Param("id")

	if d := h.policy.Check(ident, policy.ActionRead, policy.ResourceProject, nil); !d.Allowed {
		return h.Error(c, http.StatusForbidden, "Access denied", nil)
	}

	ok, err := h.scoper.CanAccessProject(c.Request().Context(), ident, id)
	if err != nil {
		return h.Error(c, http.StatusInternalServerError, "Failed to fetch project members", nil)
	}
	if !ok {
		return h.Error(c, http.StatusForbidden, "Access denied", nil)
	}

	members, err := h.repo.ListProjectMembers(c.Request().Context(), id)
	if err != nil {
		return h.Error(c, http.StatusInternalServerError, "Failed to fetch project members", nil)
	}
	return c.JSON(http.StatusOK, members)
}

func (h *Handler) HandleAddMember(c echo.Context) error {
	ident := session.FromContext(c.Request().Context())
	id := c.Param("id")

	if d := h.policy.Check(ident, policy.ActionUpdate, policy.ResourceProject, nil); !d.Allowed {
		return h.Error(c, http.StatusForbidden, "Access denied", nil)
	}

	var body struct {
		UserID string `json:"user_id" validate:"required"`
		Role   string `json:"role"`
	}
	if err := c.Bind(&body); err != nil {
		return h.Error(c, http.StatusBadRequest, "Invalid request body", err)
	}
	if err := h.validate.Struct(body); err != nil {
		return h.Error(c, http.StatusBadRequest, "user_id is required", nil)
	}

	role := project.MemberRole(body.Role)
	if role == "" {
		role = project.MemberMember
	}

	m := &project.Membership{
		ProjectID: id,
		UserID:    body.UserID,
		Role:      role,
	}
	if err := h.repo.AddMember(c.Request().Context(), m); err != nil {
		if errors.Is(err, domain.ErrDuplicateMembership) {
			return h.Error(c, http.StatusConflict, "User is already a member", nil)
		}
		return h.Error(c, http.StatusInternalServerError, "Failed to add member", nil)
	}
	return c.JSON(http.StatusCreated, m)
}
