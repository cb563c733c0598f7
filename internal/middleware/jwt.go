package middleware // package middleware contains the HTTP middleware shared by all routes

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-pos/internal/utils"
)

// Context keys set by JWTAuth.
const (
	ContextStaffID = "user_id"
	ContextRole    = "role"
)

// JWTAuth returns an Echo middleware that validates a Bearer staff token and
// stores its subject and role in the request context.  Handlers read them
// back with c.Get("user_id") (uint64) and c.Get("role") (string).
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Unauthenticated", "message": "missing bearer token"})
			}
			id, role, err := utils.ParseAccessToken(secret, strings.TrimPrefix(auth, "Bearer "))
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Unauthenticated", "message": "invalid token"})
			}
			c.Set(ContextStaffID, id)
			c.Set(ContextRole, role)
			return next(c)
		}
	}
}
