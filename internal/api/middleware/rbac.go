package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// RBAC admits only callers holding one of roles. It must run after Auth; a
// request without an identity is treated as unauthenticated.
func RBAC(roles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := IdentityFrom(c.Request().Context())
			if id.UserID == "" {
				id.UserID = UserID(c)
				id.Role, _ = c.Get("role").(string)
			}
			switch {
			case id.UserID == "":
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "authentication required"})
			case !allowed[id.Role]:
				return c.JSON(http.StatusForbidden, map[string]string{"error": "access forbidden"})
			}
			return next(c)
		}
	}
}
