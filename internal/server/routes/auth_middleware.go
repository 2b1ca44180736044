package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// RequireAuth ensures a request has an authenticated user session.
func RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		user, ok := authUserFromSession(c)
		if !ok {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "authentication required"})
		}
		c.Set("authUser", user)
		return next(c)
	}
}

// RequireAdmin restricts a route to the admin account.
func RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return RequireAuth(func(c echo.Context) error {
		user, _ := GetAuthUser(c)
		if user.ID != adminUserID {
			return c.JSON(http.StatusForbidden, map[string]string{"error": "you are not an admin"})
		}
		return next(c)
	})
}
