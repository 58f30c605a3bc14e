package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/ticketing-system/internal/core/domain"
)

// RBAC admits callers whose role matches one of the given role descriptions,
// ignoring case.
func RBAC(allowedRoles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[domain.ParseRole(r).Description] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get(CtxRole).(string)
			parsed := domain.ParseRole(role)
			if _, ok := allowed[parsed.Description]; !ok || parsed.Kind == domain.RoleOther {
				return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
			}
			return next(c)
		}
	}
}
