package middleware

import (
	"net/http"

	"shophub/internal/domain/model"

	"github.com/labstack/echo/v4"
)

// contextのroleが許可リストに含まれるか確認
func RoleGuard(allowed ...model.Role) echo.MiddlewareFunc {
	set := make(map[string]struct{}, len(allowed))
	for _, r := range allowed {
		set[string(r)] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, ok := c.Get(CtxUserRoleKey).(string)
			if !ok || role == "" {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}
			if _, ok := set[role]; !ok {
				return c.JSON(http.StatusForbidden, errorJSON("Not authorized for this action"))
			}
			return next(c)
		}
	}
}

// ADMINだけ
func AdminRoleGuard() echo.MiddlewareFunc {
	return RoleGuard(model.RoleAdmin)
}
