package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-pos/internal/model"
	"github.com/iliyamo/restaurant-pos/internal/service"
)

// TableHandler exposes the table registry.
type TableHandler struct {
	Svc *service.Service
}

// List handles GET /v1/tables.  Satellites are listed under their primary.
func (h *TableHandler) List(c echo.Context) error {
	views, err := h.Svc.ListTables(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"tables": views})
}

// Get handles GET /v1/tables/:id.
func (h *TableHandler) Get(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid table id")
	}
	v, err := h.Svc.GetTable(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, v)
}

// Merge handles POST /v1/tables/merge.  The first id becomes the primary.
func (h *TableHandler) Merge(c echo.Context) error {
	var body struct {
		TableIDs []uint64 `json:"table_ids"`
	}
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	v, err := h.Svc.MergeTables(c.Request().Context(), actorFrom(c), body.TableIDs)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, v)
}

// Unmerge handles POST /v1/tables/:id/unmerge.
func (h *TableHandler) Unmerge(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid table id")
	}
	v, err := h.Svc.UnmergeTables(c.Request().Context(), actorFrom(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, v)
}

// UpdateStatus handles PATCH /v1/tables/:id/status.
func (h *TableHandler) UpdateStatus(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid table id")
	}
	var body statusBody
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	v, err := h.Svc.UpdateTableStatus(c.Request().Context(), actorFrom(c), id, model.TableStatus(body.Status))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, v)
}
