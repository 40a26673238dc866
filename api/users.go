package api

import (
	"errors"
	"net/http"

	"github.com/Aworminator/Project-Tracker/domain"
	"github.com/Aworminator/Project-Tracker/identity"
	"github.com/Aworminator/Project-Tracker/policy"
	"github.com/Aworminator/Project-Tracker/session"
	"github.com/labstack/echo/v4"
)

func (h *Handler) HandleListUsers(c echo.Context) error {
	ident := session.FromContext(c.Request().Context())

	if d := h.policy.Check(ident, policy.ActionList, policy.ResourceUser, nil); !d.Allowed {
		return h.Error(c, http.StatusForbidden, "Access denied", nil)
	}

	users, err := h.repo.ListUsers(c.Request().Context())
	if err != nil {
		return h.Error(c, http.StatusInternalServerError, "Failed to fetch users", nil)
	}
	return c.JSON(http.StatusOK, users)
}

// HandleUpdateUser is the administrator-authorized identity update:
// role and status changes. Identities are never deleted, only
// suspended.
func (h *Handler) HandleUpdateUser(c echo.Context) error {
	ident := session.FromContext(c.Request().Context())
	id := c.Param("id")

	if d := h.policy.Check(ident, policy.ActionUpdate, policy.ResourceUser, nil); !d.Allowed {
		return h.Error(c, http.StatusForbidden, "Access denied", nil)
	}

	var body struct {
		Role      *string `json:"role"`
		Status    *string `json:"status"`
		FirstName *string `json:"first_name"`
		LastName  *string `json:"last_name"`
	}
	if err := c.Bind(&body); err != nil {
		return h.Error(c, http.StatusBadRequest, "Invalid request body", err)
	}

	user, err := h.repo.GetUser(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return h.Error(c, http.StatusNotFound, "User not found", nil)
		}
		return h.Error(c, http.StatusInternalServerError, "Failed to update user", nil)
	}

	if body.Role != nil {
		role, err := identity.ParseRole(*body.Role)
		if err != nil {
			return h.Error(c, http.StatusBadRequest, "Invalid role", nil)
		}
		user.Role = role
	}
	if body.Status != nil {
		switch identity.Status(*body.Status) {
		case identity.StatusActive, identity.StatusSuspended:
			user.Status = identity.Status(*body.Status)
		default:
			return h.Error(c, http.StatusBadRequest, "Invalid status", nil)
		}
	}
	if body.FirstName != nil {
		user.FirstName = *body.FirstName
	}
	if body.LastName != nil {
		user.LastName = *body.LastName
	}

	if err := h.repo.UpdateUser(c.Request().Context(), user); err != nil {
		return h.Error(c, http.StatusInternalServerError, "Failed to update user", nil)
	}
	return c.JSON(http.StatusOK, user)
}

func (h *Handler) HandleDashboardStats(c echo.Context) error {
	ident := session.FromContext(c.Request().Context())

	if d := h.policy.Check(ident, policy.ActionList, policy.ResourceProject, nil); !d.Allowed {
		return h.Error(c, http.StatusForbidden, "Access denied", nil)
	}

	s, err := h.scoper.ScopeProjectIDs(c.Request().Context(), ident)
	if err != nil {
		return h.Error(c, http.StatusInternalServerError, "Failed to fetch stats", nil)
	}

	stats, err := h.repo.DashboardStats(c.Request().Context(), s, ident.ID)
	if err != nil {
		return h.Error(c, http.StatusInternalServerError, "Failed to fetch stats", nil)
	}
	return c.JSON(http.StatusOK, stats)
}
