package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-pos/internal/handler"
	"github.com/iliyamo/restaurant-pos/internal/middleware"
)

// registerTables mounts the floor plan.  Anyone may look; only front of
// house may change it.
func registerTables(g *echo.Group, t *handler.TableHandler) {
	foh := middleware.RequireRole(frontOfHouse...)

	g.GET("/tables", t.List)
	g.GET("/tables/:id", t.Get)
	g.POST("/tables/merge", t.Merge, foh)
	g.POST("/tables/:id/unmerge", t.Unmerge, foh)
	g.PATCH("/tables/:id/status", t.UpdateStatus, foh)
}

// registerCatalog mounts the read-only catalog behind the response cache.
func registerCatalog(g *echo.Group, c *handler.CatalogHandler, cache echo.MiddlewareFunc) {
	g.GET("/menu", c.Menu, cache)
	g.GET("/promotions/active", c.ActivePromotions, cache)
}
