package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/Aworminator/Project-Tracker/domain"
	"github.com/Aworminator/Project-Tracker/persistence"
	"github.com/Aworminator/Project-Tracker/policy"
	"github.com/Aworminator/Project-Tracker/project"
	"github.com/Aworminator/Project-Tracker/session"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

func (h *Handler) HandleListTasks(c echo.Context) error {
	ident := session.FromContext(c.Request().Context())

	if d := h.policy.Check(ident, policy.ActionList, policy.ResourceTask, nil); !d.Allowed {
		return h.Error(c, http.StatusForbidden, "Access denied", nil)
	}

	s, err := h.scoper.ScopeProjectIDs(c.Request().Context(), ident)
	if err != nil {
		return h.Error(c, http.StatusInternalServerError, "Failed to fetch tasks", nil)
	}

	filter := persistence.TaskFilter{
		Scope:      s,
		ProjectID:  c.QueryParam("project_id"),
		Status:     project.TaskStatus(c.QueryParam("status")),
		AssignedTo: c.QueryParam("assigned_to"),
	}
	tasks, err := h.repo.ListTasks(c.Request().Context(), filter)
	if err != nil {
		return h.Error(c, http.StatusInternalServerError, "Failed to fetch tasks", nil)
	}
	return c.JSON(http.StatusOK, tasks)
}

func (h *Handler) HandleCreateTask(c echo.Context) error {
	ident := session.FromContext(c.Request().Context())

	if d := h.policy.Check(ident, policy.ActionCreate, policy.ResourceTask, nil); !d.Allowed {
		return h.Error(c, http.StatusForbidden, "Access denied", nil)
	}

	var body struct {
		Title       string     `json:"title" validate:"required"`
		Description string     `json:"description"`
		ProjectID   string     `json:"project_id" validate:"required"`
		AssignedTo  *string    `json:"assigned_to"`
		Priority    string     `json:"priority"`
		DueDate     *time.Time `json:"due_date"`
	}
	if err := c.Bind(&body); err != nil {
		return h.Error(c, http.StatusBadRequest, "Invalid request body", err)
	}
	if err := h.validate.Struct(body); err != nil {
		return h.Error(c, http.StatusBadRequest, "Title and project_id are required", nil)
	}

	if _, err := h.repo.GetProject(c.Request().Context(), body.ProjectID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return h.Error(c, http.StatusNotFound, "Project not found", nil)
		}
		return h.Error(c, http.StatusInternalServerError, "Failed to create task", nil)
	}

	priority := project.Priority(body.Priority)
	if priority == "" {
		priority = project.PriorityMedium
	}

	now := time.Now()
	t := &project.Task{
		ID:          uuid.New().String(),
		Title:       strings.TrimSpace(body.Title),
		Description: strings.TrimSpace(body.Description),
		ProjectID:   body.ProjectID,
		AssignedTo:  body.AssignedTo,
		CreatedBy:   ident.ID,
		Status:      project.TaskPending,
		Priority:    priority,
		DueDate:     body.DueDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := h.repo.CreateTask(c.Request().Context(), t); err != nil {
		return h.Error(c, http.StatusInternalServerError, "Failed to create task", nil)
	}
	return c.JSON(http.StatusCreated, t)
}

func (h *Handler) HandleUpdateTask(c echo.Context) error {
	ident := session.FromContext(c.Request().Context())
	id := c.Param("id")

	t, err := h.repo.GetTask(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return h.Error(c, http.StatusNotFound, "Task not found", nil)
		}
		return h.Error(c, http.StatusInternalServerError, "Failed to update task", nil)
	}

	// Members may only update a task assigned to them; the policy sees
	// the assignment fact, managers and admins pass unconditionally.
	facts := &policy.Facts{TaskAssignee: t.AssignedTo}
	if d := h.policy.Check(ident, policy.ActionUpdate, policy.ResourceTask, facts); !d.Allowed {
		return h.Error(c, http.StatusForbidden, "Access denied", nil)
	}

	var body struct {
		Title       *string    `json:"title"`
		Description *string    `json:"description"`
		Status      *string    `json:"status"`
		Priority    *string    `json:"priority"`
		AssignedTo  *string    `json:"assigned_to"`
		DueDate     *time.Time `json:"due_date"`
	}
	if err := c.Bind(&body); err != nil {
		return h.Error(c, http.StatusBadRequest, "Invalid request body", err)
	}

	if body.Title != nil {
		t.Title = strings.TrimSpace(*body.Title)
	}
	if body.Description != nil {
		t.Description = strings.TrimSpace(*body.Description)
	}
	if body.Priority != nil {
		t.Priority = project.Priority(*body.Priority)
	}
	if body.AssignedTo != nil {
		t.AssignedTo = body.AssignedTo
	}
	if body.DueDate != nil {
		t.DueDate = body.DueDate
	}
	if body.Status != nil {
		status := project.TaskStatus(*body.Status)
		if !project.ValidTaskStatus(status) {
			return h.Error(c, http.StatusBadRequest, "Invalid task status", nil)
		}
		// Keeps CompletedAt in step with the status on every update.
		t.ApplyStatus(status, time.Now())
	}

	if err := h.repo.UpdateTask(c.Request().Context(), t); err != nil {
		return h.Error(c, http.StatusInternalServerError, "Failed to update task", nil)
	}
	return c.JSON(http.StatusOK, t)
}
