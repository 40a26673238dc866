package api

import (
	"net/http"
	"strings"

	"github.com/Aworminator/Project-Tracker/session"
	"github.com/labstack/echo/v4"
)

func bearerToken(c echo.Context) string {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if header == "" {
		return ""
	}
	return strings.TrimPrefix(header, "Bearer ")
}

// AuthMiddleware validates the session token and binds the identity
// into the request context. The identity is loaded fresh from the
// store on every request; role and status changes take effect on the
// next call, not at some cache expiry.
func (h *Handler) AuthMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token := bearerToken(c)
		if token == "" {
			return h.Error(c, http.StatusUnauthorized, "Authentication required", nil)
		}

		sess, err := h.sessions.Validate(token)
		if err != nil {
			return h.Error(c, http.StatusUnauthorized, "Authentication required", nil)
		}

		ident, err := h.repo.GetUser(c.Request().Context(), sess.IdentityID)
		if err != nil {
			return h.Error(c, http.StatusUnauthorized, "Authentication required", nil)
		}

		ctx := session.WithIdentity(c.Request().Context(), ident)
		c.SetRequest(c.Request().WithContext(ctx))
		return next(c)
	}
}
