// Package api exposes the REST surface over the access-control core.
//
// Handlers gate every mutation through the access policy and route
// every list read through the resource scoper before the datastore is
// queried. Login and registration failures are rendered with generic
// messages so callers cannot probe which accounts exist.
package api

import (
	"errors"
	"net/http"

	"github.com/Aworminator/Project-Tracker/domain"
	"github.com/Aworminator/Project-Tracker/flow"
	"github.com/Aworminator/Project-Tracker/persistence"
	"github.com/Aworminator/Project-Tracker/policy"
	"github.com/Aworminator/Project-Tracker/scope"
	"github.com/Aworminator/Project-Tracker/session"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type Handler struct {
	registration *flow.RegistrationFlow
	login        flow.Authenticator
	sessions     *session.Manager
	repo         *persistence.Repository
	policy       *policy.AccessPolicy
	scoper       *scope.ResourceScoper
	validate     *validator.Validate
}

func NewHandler(reg *flow.RegistrationFlow, login flow.Authenticator, sm *session.Manager, repo *persistence.Repository) *Handler {
	return &Handler{
		registration: reg,
		login:        login,
		sessions:     sm,
		repo:         repo,
		policy:       policy.NewAccessPolicy(),
		scoper:       scope.NewResourceScoper(repo),
		validate:     validator.New(),
	}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.POST("/register", h.HandleRegister)
	g.POST("/login", h.HandleLogin)

	protected := g.Group("")
	protected.Use(h.AuthMiddleware)
	protected.POST("/logout", h.HandleLogout)
	protected.GET("/whoami", h.HandleWhoAmI)

	protected.GET("/projects", h.HandleListProjects)
	protected.POST("/projects", h.HandleCreateProject)
	protected.GET("/projects/:id", h.HandleGetProject)
	protected.PUT("/projects/:id", h.HandleUpdateProject)
	protected.GET("/projects/:id/members", h.HandleListMembers)
	protected.POST("/projects/:id/members", h.HandleAddMember)

	protected.GET("/tasks", h.HandleListTasks)
	protected.POST("/tasks", h.HandleCreateTask)
	protected.PUT("/tasks/:id", h.HandleUpdateTask)

	protected.GET("/users", h.HandleListUsers)
	protected.PUT("/users/:id", h.HandleUpdateUser)

	protected.GET("/dashboard/stats", h.HandleDashboardStats)
}

func (h *Handler) HandleRegister(c echo.Context) error {
	var body struct {
		Email     string `json:"email" validate:"required,email"`
		Password  string `json:"password" validate:"required,min=8"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
	}
	if err := c.Bind(&body); err != nil {
		return h.Error(c, http.StatusBadRequest, "Invalid request body", err)
	}
	if err := h.validate.Struct(body); err != nil {
		return h.Error(c, http.StatusBadRequest, "Invalid registration details", err)
	}

	ident, err := h.registration.Register(c.Request().Context(), body.Email, body.Password, body.FirstName, body.LastName)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrEmailTaken):
			return h.Error(c, http.StatusConflict, "Email is already registered", nil)
		case errors.Is(err, domain.ErrInvalidInput):
			return h.Error(c, http.StatusBadRequest, "Invalid registration details", nil)
		default:
			return h.Error(c, http.StatusInternalServerError, "Registration failed", nil)
		}
	}

	// Auto-login: bind a session for the new identity.
	sess, err := h.sessions.Bind(ident.ID)
	if err != nil {
		return h.Error(c, http.StatusInternalServerError, "Registration failed", nil)
	}

	return c.JSON(http.StatusCreated, map[string]any{
		"identity": ident,
		"token":    sess.Token,
	})
}

func (h *Handler) HandleLogin(c echo.Context) error {
	var body struct {
		Email    string `json:"email" validate:"required"`
		Password string `json:"password" validate:"required"`
	}
	if err := c.Bind(&body); err != nil {
		return h.Error(c, http.StatusBadRequest, "Invalid request body", err)
	}
	if err := h.validate.Struct(body); err != nil {
		return h.Error(c, http.StatusUnauthorized, "Invalid email or password", nil)
	}

	ident, err := h.login.Authenticate(c.Request().Context(), body.Email, body.Password)
	if err != nil {
		switch {
		case errors.Is(err, flow.ErrLocked):
			return h.Error(c, http.StatusTooManyRequests, "Too many failed attempts, try again later", nil)
		case errors.Is(err, domain.ErrSuspended):
			return h.Error(c, http.StatusForbidden, "Account is suspended", nil)
		default:
			// Unknown email and wrong password render identically.
			return h.Error(c, http.StatusUnauthorized, "Invalid email or password", nil)
		}
	}

	sess, err := h.sessions.Bind(ident.ID)
	if err != nil {
		return h.Error(c, http.StatusInternalServerError, "Login failed", nil)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"identity": ident,
		"token":    sess.Token,
	})
}

func (h *Handler) HandleLogout(c echo.Context) error {
	token := bearerToken(c)
	if token != "" {
		_ = h.sessions.Clear(token)
	}
	return c.JSON(http.StatusOK, map[string]any{"status": "logged out"})
}

func (h *Handler) HandleWhoAmI(c echo.Context) error {
	ident := session.FromContext(c.Request().Context())
	return c.JSON(http.StatusOK, ident)
}

// Error renders a terse JSON error. err is included for bad-request
// shapes only; auth failures never carry internals.
func (h *Handler) Error(c echo.Context, code int, message string, err error) error {
	resp := map[string]any{
		"status": message,
		"code":   code,
	}
	if err != nil {
		resp["error"] = err.Error()
	}
	return c.JSON(code, resp)
}
