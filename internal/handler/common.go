package handler // package handler adapts HTTP requests to service operations

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-pos/internal/middleware"
	"github.com/iliyamo/restaurant-pos/internal/model"
	"github.com/iliyamo/restaurant-pos/internal/service"
	"github.com/iliyamo/restaurant-pos/internal/utils"
)

// HeaderManagerPIN carries a manager's override PIN on discount requests
// made from a staff login.
const HeaderManagerPIN = "X-Manager-PIN"

// statusFor maps a service error kind to its HTTP status.
func statusFor(kind service.Kind) int {
	switch kind {
	case service.InvalidInput, service.InsufficientTables:
		return http.StatusBadRequest
	case service.InvalidReference:
		return http.StatusNotFound
	case service.InvalidTransition, service.ItemNotRemovable, service.OrderClosed,
		service.AlreadyPaid, service.AlreadyMerged:
		return http.StatusConflict
	case service.Unauthorized:
		return http.StatusForbidden
	case service.StorageUnavailable:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// respondError writes err as {"error": kind, "message": ...}.  Storage
// details never reach the client.
func respondError(c echo.Context, err error) error {
	var se *service.Error
	if !errors.As(err, &se) {
		c.Logger().Error(err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Internal", "message": "internal error"})
	}
	return c.JSON(statusFor(se.Kind), echo.Map{"error": se.Kind, "message": se.Message})
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"error": service.InvalidInput, "message": msg})
}

// actorFrom builds the acting staff member from the token claims.  Only
// managers may discount unless pinHash is checked by the caller.
func actorFrom(c echo.Context) service.Actor {
	role := model.Role(middleware.Role(c))
	return service.Actor{
		StaffID:     middleware.StaffID(c),
		Role:        role,
		CanDiscount: role == model.RoleManager,
	}
}

// withOverride grants the discount capability to a staff member whose
// request carries a valid manager PIN.
func withOverride(c echo.Context, actor service.Actor, pinHash string) service.Actor {
	if actor.CanDiscount || actor.Role != model.RoleStaff {
		return actor
	}
	if pin := c.Request().Header.Get(HeaderManagerPIN); pin != "" && utils.VerifyPIN(pinHash, pin) {
		actor.CanDiscount = true
	}
	return actor
}

// pathID parses a positive numeric path parameter.
func pathID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	return id, err == nil && id > 0
}
