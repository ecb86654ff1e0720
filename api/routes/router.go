package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/brewtab/ordering-backend/api/controllers"
	"github.com/brewtab/ordering-backend/api/middleware"
	cartsvc "github.com/brewtab/ordering-backend/internal/cart"
	devicesvc "github.com/brewtab/ordering-backend/internal/devices"
	menusvc "github.com/brewtab/ordering-backend/internal/menu"
	ordersvc "github.com/brewtab/ordering-backend/internal/orders"
	tablesvc "github.com/brewtab/ordering-backend/internal/tables"
	"github.com/brewtab/ordering-backend/pkg/auth/session"
	"github.com/brewtab/ordering-backend/pkg/config"
	"github.com/brewtab/ordering-backend/pkg/logger"
	"github.com/brewtab/ordering-backend/pkg/redis"
)

type sessionManager interface {
	session.AccessSessionChecker
	Rotate(context.Context, string, string) (string, string, error)
	Revoke(context.Context, string) error
}

type pinger interface {
	Ping(ctx context.Context) error
}

// Deps carries everything the HTTP surface needs. Nil optional fields
// degrade the related routes instead of panicking.
type Deps struct {
	Config         *config.Config
	Logger         *logger.Logger
	DBPinger       pinger
	RedisClient    *redis.Client
	SessionManager sessionManager
	MenuService    menusvc.Service
	CartService    cartsvc.Service
	TablesService  tablesvc.Service
	OrdersService  ordersvc.Service
	DevicesService devicesvc.Service
	MetricsHandler http.Handler
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	// Assigning a nil *redis.Client straight into the interface params
	// would leave the consumers thinking they have a store.
	var redisPinger pinger
	var idempotencyStore middleware.IdempotencyStore
	var limiterStore middleware.RateLimiterStore
	if deps.RedisClient != nil {
		redisPinger = deps.RedisClient
		idempotencyStore = deps.RedisClient
		limiterStore = deps.RedisClient
	}

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DBPinger, redisPinger))
	})

	metricsHandler := deps.MetricsHandler
	if metricsHandler == nil {
		metricsHandler = promhttp.Handler()
	}
	r.Method(http.MethodGet, "/metrics", metricsHandler)

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/refresh", controllers.AuthRefresh(deps.SessionManager, deps.CartService, cfg.JWT, logg))
		r.Post("/logout", controllers.AuthLogout(deps.SessionManager, cfg.JWT, logg))
	})

	r.Route("/api/v1/menu", func(r chi.Router) {
		r.Get("/", controllers.MenuFetch(deps.MenuService, logg))
		r.Get("/products/{productId}", controllers.MenuProduct(deps.MenuService, logg))
	})

	orderPolicy := middleware.NewRateLimitPolicy("orders", time.Minute, 10)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.RequireSession(logg))
		r.Use(middleware.Identity(cfg.JWT, deps.SessionManager, logg))
		r.Use(middleware.Idempotency(idempotencyStore, logg))

		r.Get("/ping", controllers.SessionPing())

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartFetch(deps.CartService, logg))
			r.Delete("/", controllers.CartClear(deps.CartService, logg))
			r.Post("/items", controllers.CartAddItem(deps.CartService, logg))
			r.Patch("/items/{productId}", controllers.CartUpdateItem(deps.CartService, logg))
			r.Delete("/items/{productId}", controllers.CartRemoveItem(deps.CartService, logg))

			r.Route("/discounts", func(r chi.Router) {
				r.Get("/", controllers.CartDiscountOptions(deps.CartService, logg))
				r.Put("/general", controllers.CartSelectGeneral(deps.CartService, logg))
				r.Delete("/general", controllers.CartClearGeneral(deps.CartService, logg))
			})
			r.Put("/items/{productId}/discount", controllers.CartSelectItemDiscount(deps.CartService, logg))
			r.Delete("/items/{productId}/discount", controllers.CartClearItemDiscount(deps.CartService, logg))
		})

		r.Route("/tables", func(r chi.Router) {
			r.Get("/", controllers.TableList(deps.TablesService, logg))
			r.Post("/claim", controllers.TableClaim(deps.TablesService, deps.CartService, logg))
			r.Get("/current", controllers.TableCurrent(deps.TablesService, logg))
			r.Delete("/current", controllers.TableRelease(deps.TablesService, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.With(middleware.RateLimit(orderPolicy, limiterStore, logg)).
				Post("/", controllers.OrderSubmit(deps.OrdersService, logg))
			r.Get("/", controllers.OrderList(deps.OrdersService, logg))
			r.Get("/{orderId}", controllers.OrderDetail(deps.OrdersService, logg))
			r.With(middleware.RequireUser(logg)).
				Patch("/{orderId}/status", controllers.OrderUpdateStatus(deps.OrdersService, logg))
		})

		r.Route("/devices", func(r chi.Router) {
			r.Post("/", controllers.DeviceRegister(deps.DevicesService, logg))
			r.Delete("/", controllers.DeviceUnregister(deps.DevicesService, logg))
		})
	})

	return r
}
