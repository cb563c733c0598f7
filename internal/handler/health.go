package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-pos/internal/service"
)

// HealthHandler answers load balancer probes.
type HealthHandler struct {
	Svc *service.Service
}

// Health returns 200 "ok" when the store answers a ping and 503 otherwise.
func (h *HealthHandler) Health(c echo.Context) error {
	if err := h.Svc.Ping(c.Request().Context()); err != nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"status": "degraded"})
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}
