package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/iliyamo/restaurant-pos/internal/model"
	"github.com/iliyamo/restaurant-pos/internal/service"
)

// OrderHandler exposes the order lifecycle, discounts and quotes.
type OrderHandler struct {
	Svc            *service.Service
	ManagerPINHash string
}

// NewOrderHandler panics when svc is nil.
func NewOrderHandler(svc *service.Service, managerPINHash string) *OrderHandler {
	if svc == nil {
		panic("nil service passed to NewOrderHandler")
	}
	return &OrderHandler{Svc: svc, ManagerPINHash: managerPINHash}
}

// Create handles POST /v1/orders.
func (h *OrderHandler) Create(c echo.Context) error {
	var in service.CreateOrderInput
	if err := c.Bind(&in); err != nil {
		return badRequest(c, "invalid request body")
	}
	o, err := h.Svc.CreateOrder(c.Request().Context(), actorFrom(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, o)
}

// Get handles GET /v1/orders/:id.
func (h *OrderHandler) Get(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid order id")
	}
	o, err := h.Svc.GetOrder(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, o)
}

// Quote handles GET /v1/orders/:id/quote?tip_cents=N.
func (h *OrderHandler) Quote(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid order id")
	}
	var tip int64
	if raw := c.QueryParam("tip_cents"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return badRequest(c, "tip_cents must be an integer")
		}
		tip = n
	}
	q, err := h.Svc.Quote(c.Request().Context(), id, tip)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, q)
}

// AddItems handles POST /v1/orders/:id/items.
func (h *OrderHandler) AddItems(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid order id")
	}
	var body struct {
		Items []service.ItemInput `json:"items"`
	}
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	o, err := h.Svc.AddItems(c.Request().Context(), actorFrom(c), id, body.Items)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, o)
}

// RemoveItem handles DELETE /v1/orders/:id/items/:item_id.
func (h *OrderHandler) RemoveItem(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid order id")
	}
	itemID, ok := pathID(c, "item_id")
	if !ok {
		return badRequest(c, "invalid item id")
	}
	o, err := h.Svc.RemoveItem(c.Request().Context(), actorFrom(c), id, itemID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, o)
}

type statusBody struct {
	Status string `json:"status"`
}

// ItemStatus handles PATCH /v1/order-items/:id/status.
func (h *OrderHandler) ItemStatus(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid item id")
	}
	var body statusBody
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	o, err := h.Svc.TransitionItemStatus(c.Request().Context(), actorFrom(c), id, model.ItemStatus(body.Status))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, o)
}

// MarkReady handles POST /v1/orders/:id/ready.
func (h *OrderHandler) MarkReady(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid order id")
	}
	o, err := h.Svc.MarkAllReady(c.Request().Context(), actorFrom(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, o)
}

// OrderStatus handles PATCH /v1/orders/:id/status.
func (h *OrderHandler) OrderStatus(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid order id")
	}
	var body statusBody
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	o, err := h.Svc.TransitionOrderStatus(c.Request().Context(), actorFrom(c), id, model.OrderStatus(body.Status))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, o)
}

// ApplyDiscount handles POST /v1/orders/:id/discount.  Staff may discount
// only with a valid X-Manager-PIN header.
func (h *OrderHandler) ApplyDiscount(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid order id")
	}
	var body struct {
		Type   model.DiscountType `json:"type"`
		Value  decimal.Decimal    `json:"value"`
		Reason string             `json:"reason"`
	}
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	actor := withOverride(c, actorFrom(c), h.ManagerPINHash)
	o, err := h.Svc.ApplyDiscount(c.Request().Context(), actor, id, body.Type, body.Value, body.Reason)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, o)
}

// RemoveDiscount handles DELETE /v1/orders/:id/discount.
func (h *OrderHandler) RemoveDiscount(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid order id")
	}
	actor := withOverride(c, actorFrom(c), h.ManagerPINHash)
	o, err := h.Svc.RemoveDiscount(c.Request().Context(), actor, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, o)
}
