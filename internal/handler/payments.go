package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-pos/internal/model"
	"github.com/iliyamo/restaurant-pos/internal/pricing"
	"github.com/iliyamo/restaurant-pos/internal/service"
)

// PaymentHandler settles orders.
type PaymentHandler struct {
	Svc *service.Service
}

// Settle handles POST /v1/orders/:id/payment.  The tendered amount may be
// sent in cents or as a decimal string ("28.25"); cents win when both are
// present.
func (h *PaymentHandler) Settle(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid order id")
	}
	var body struct {
		AmountCents int64               `json:"amount_cents"`
		Amount      string              `json:"amount"`
		Method      model.PaymentMethod `json:"method"`
		TipCents    int64               `json:"tip_cents"`
	}
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	amount := body.AmountCents
	if amount == 0 && body.Amount != "" {
		cents, err := pricing.ParseAmount(body.Amount)
		if err != nil {
			return badRequest(c, "amount must be a decimal with at most two places")
		}
		amount = cents
	}
	r, err := h.Svc.Settle(c.Request().Context(), actorFrom(c), service.SettleInput{
		OrderID:     id,
		AmountCents: amount,
		Method:      body.Method,
		TipCents:    body.TipCents,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, r)
}
