package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-pos/internal/service"
)

// CatalogHandler serves the read-only menu and promotion lists.
type CatalogHandler struct {
	Svc *service.Service
}

// Menu handles GET /v1/menu.
func (h *CatalogHandler) Menu(c echo.Context) error {
	items, err := h.Svc.Menu(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// ActivePromotions handles GET /v1/promotions/active.
func (h *CatalogHandler) ActivePromotions(c echo.Context) error {
	promos, err := h.Svc.ActivePromotions(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"promotions": promos})
}
