package router // package router wires handlers and middleware onto Echo

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/iliyamo/restaurant-pos/internal/config"
	"github.com/iliyamo/restaurant-pos/internal/handler"
	"github.com/iliyamo/restaurant-pos/internal/middleware"
	"github.com/iliyamo/restaurant-pos/internal/model"
)

// Handlers groups the HTTP handlers mounted by Register.
type Handlers struct {
	Health   *handler.HealthHandler
	Catalog  *handler.CatalogHandler
	Orders   *handler.OrderHandler
	Tables   *handler.TableHandler
	Payments *handler.PaymentHandler
}

// Options carries the settings of the shared middleware.  A nil Redis
// client turns caching and rate limiting into pass-throughs.
type Options struct {
	JWTSecret string
	Cache     config.CacheConfig
	RateLimit config.RateLimitConfig
	Redis     *redis.Client
	Logger    *zap.Logger
}

var (
	allRoles     = []string{string(model.RoleStaff), string(model.RoleKitchen), string(model.RoleManager)}
	frontOfHouse = []string{string(model.RoleStaff), string(model.RoleManager)}
)

// Register mounts /healthz and the authenticated /v1 API on e.  Every /v1
// request carries a staff token and is rate limited per staff member.
func Register(e *echo.Echo, h Handlers, opts Options) {
	e.Use(middleware.RequestID())
	e.Use(middleware.RequestLogger(opts.Logger))

	e.GET("/healthz", h.Health.Health)

	v1 := e.Group("/v1",
		middleware.JWTAuth(opts.JWTSecret),
		middleware.RequireRole(allRoles...),
		middleware.NewTokenBucket(opts.RateLimit, opts.Redis, opts.Logger),
	)
	registerCatalog(v1, h.Catalog, middleware.NewRedisCache(opts.Cache, opts.Redis))
	registerOrders(v1, h.Orders, h.Payments)
	registerTables(v1, h.Tables)
}
