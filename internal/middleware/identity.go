package middleware

// identity.go holds the helpers that read the authenticated staff member
// back out of the Echo context.

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// StaffID returns the authenticated staff id, or 0 for anonymous requests.
func StaffID(c echo.Context) uint64 {
	id, _ := c.Get(ContextStaffID).(uint64)
	return id
}

// Role returns the authenticated role, or "" for anonymous requests.
func Role(c echo.Context) string {
	role, _ := c.Get(ContextRole).(string)
	return role
}

// userID is the rate limiter's view of the caller: the staff id as a string
// or "anon".
func userID(c echo.Context) string {
	if id := StaffID(c); id != 0 {
		return strconv.FormatUint(id, 10)
	}
	return "anon"
}
