package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-pos/internal/handler"
	"github.com/iliyamo/restaurant-pos/internal/middleware"
)

// registerOrders mounts the order lifecycle.  Taking orders, discounts and
// payments are front-of-house work; the kitchen may read orders and move
// their preparation state.
func registerOrders(g *echo.Group, o *handler.OrderHandler, p *handler.PaymentHandler) {
	foh := middleware.RequireRole(frontOfHouse...)

	g.GET("/orders/:id", o.Get)
	g.GET("/orders/:id/quote", o.Quote)
	g.PATCH("/order-items/:id/status", o.ItemStatus)
	g.POST("/orders/:id/ready", o.MarkReady)
	g.PATCH("/orders/:id/status", o.OrderStatus)

	g.POST("/orders", o.Create, foh)
	g.POST("/orders/:id/items", o.AddItems, foh)
	g.DELETE("/orders/:id/items/:item_id", o.RemoveItem, foh)
	g.POST("/orders/:id/discount", o.ApplyDiscount, foh)
	g.DELETE("/orders/:id/discount", o.RemoveDiscount, foh)
	g.POST("/orders/:id/payment", p.Settle, foh)
}
