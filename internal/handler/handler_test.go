package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/restaurant-pos/internal/middleware"
	"github.com/iliyamo/restaurant-pos/internal/model"
	"github.com/iliyamo/restaurant-pos/internal/service"
	"github.com/iliyamo/restaurant-pos/internal/utils"
)

func TestStatusFor(t *testing.T) {
	cases := map[service.Kind]int{
		service.InvalidInput:       http.StatusBadRequest,
		service.InsufficientTables: http.StatusBadRequest,
		service.InvalidReference:   http.StatusNotFound,
		service.InvalidTransition:  http.StatusConflict,
		service.ItemNotRemovable:   http.StatusConflict,
		service.OrderClosed:        http.StatusConflict,
		service.AlreadyPaid:        http.StatusConflict,
		service.AlreadyMerged:      http.StatusConflict,
		service.Unauthorized:       http.StatusForbidden,
		service.StorageUnavailable: http.StatusServiceUnavailable,
		service.Kind("Other"):      http.StatusInternalServerError,
	}
	for kind, want := range cases {
		assert.Equalf(t, want, statusFor(kind), "kind %s", kind)
	}
}

func requestAs(role model.Role, pin string) echo.Context {
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	if pin != "" {
		req.Header.Set(HeaderManagerPIN, pin)
	}
	c := echo.New().NewContext(req, httptest.NewRecorder())
	c.Set(middleware.ContextStaffID, uint64(5))
	c.Set(middleware.ContextRole, string(role))
	return c
}

func TestManagerOverride(t *testing.T) {
	hash, err := utils.HashPIN("2468", bcrypt.MinCost)
	require.NoError(t, err)

	manager := actorFrom(requestAs(model.RoleManager, ""))
	assert.True(t, manager.CanDiscount)
	assert.Equal(t, uint64(5), manager.StaffID)

	c := requestAs(model.RoleStaff, "2468")
	assert.True(t, withOverride(c, actorFrom(c), hash).CanDiscount)

	c = requestAs(model.RoleStaff, "0000")
	assert.False(t, withOverride(c, actorFrom(c), hash).CanDiscount)

	c = requestAs(model.RoleKitchen, "2468")
	assert.False(t, withOverride(c, actorFrom(c), hash).CanDiscount)

	c = requestAs(model.RoleStaff, "2468")
	assert.False(t, withOverride(c, actorFrom(c), "").CanDiscount)
}
