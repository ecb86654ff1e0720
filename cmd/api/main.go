package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/brewtab/ordering-backend/api/routes"
	"github.com/brewtab/ordering-backend/internal/cart"
	"github.com/brewtab/ordering-backend/internal/catalog"
	"github.com/brewtab/ordering-backend/internal/devices"
	"github.com/brewtab/ordering-backend/internal/menu"
	"github.com/brewtab/ordering-backend/internal/orders"
	"github.com/brewtab/ordering-backend/internal/tables"
	"github.com/brewtab/ordering-backend/internal/usage"
	"github.com/brewtab/ordering-backend/pkg/auth/session"
	"github.com/brewtab/ordering-backend/pkg/config"
	"github.com/brewtab/ordering-backend/pkg/db"
	"github.com/brewtab/ordering-backend/pkg/enums"
	"github.com/brewtab/ordering-backend/pkg/logger"
	"github.com/brewtab/ordering-backend/pkg/metrics"
	"github.com/brewtab/ordering-backend/pkg/migrate"
	"github.com/brewtab/ordering-backend/pkg/pubsub"
	"github.com/brewtab/ordering-backend/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

// orderEventPublisher adapts the pubsub client to the orders service.
type orderEventPublisher struct {
	client *pubsub.Client
}

func (p orderEventPublisher) PublishOrderEvent(ctx context.Context, event pubsub.OrderEvent) error {
	return pubsub.PublishOrderEvent(ctx, p.client.OrdersPublisher(), event)
}

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	requireResource(context.Background(), logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx := logg.WithFields(context.Background(), map[string]any{"env": cfg.App.Env})

	dbClient, err := db.New(ctx, cfg.DB, logg)
	requireResource(ctx, logg, "database", err)
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(ctx, "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		requireResource(ctx, logg, "dev migrations", err)
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	requireResource(ctx, logg, "redis", err)
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(ctx, "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	requireResource(ctx, logg, "session manager", err)

	// Order events are optional; without a GCP project the API runs fine
	// and submissions just skip the announce step.
	var publisher interface {
		PublishOrderEvent(ctx context.Context, event pubsub.OrderEvent) error
	}
	if cfg.GCP.ProjectID != "" {
		pubsubClient, err := pubsub.NewClient(ctx, cfg.GCP, cfg.PubSub, logg)
		requireResource(ctx, logg, "pubsub", err)
		defer func() {
			if err := pubsubClient.Close(); err != nil {
				logg.Error(ctx, "error closing pubsub client", err)
			}
		}()
		publisher = orderEventPublisher{client: pubsubClient}
	} else {
		logg.Warn(ctx, "no GCP project configured, order events disabled")
	}

	pricingMetrics := metrics.NewPricingMetrics(prometheus.DefaultRegisterer)
	orderMetrics := metrics.NewOrderMetrics(prometheus.DefaultRegisterer)

	catalogService, err := catalog.NewService(catalog.NewRepository(dbClient.DB()), logg, cfg.Pricing)
	requireResource(ctx, logg, "catalog service", err)

	usageService, err := usage.NewService(usage.NewRepository(dbClient.DB()))
	requireResource(ctx, logg, "usage service", err)

	menuService, err := menu.NewService(menu.NewRepository(dbClient.DB()))
	requireResource(ctx, logg, "menu service", err)

	cartService, err := cart.NewService(
		cart.NewRepository(dbClient.DB()),
		menu.NewRepository(dbClient.DB()),
		catalogService,
		usageService,
		enums.Currency(cfg.Pricing.Currency),
		pricingMetrics,
	)
	requireResource(ctx, logg, "cart service", err)

	tablesService, err := tables.NewService(tables.NewRepository(dbClient.DB()), redisClient, cfg.Tables)
	requireResource(ctx, logg, "tables service", err)

	ordersService, err := orders.NewService(
		orders.NewRepository(dbClient.DB()),
		cartService,
		tablesService,
		usageService,
		publisher,
		logg,
		orderMetrics,
	)
	requireResource(ctx, logg, "orders service", err)

	devicesService, err := devices.NewService(devices.NewRepository(dbClient.DB()))
	requireResource(ctx, logg, "devices service", err)

	router := routes.NewRouter(routes.Deps{
		Config:         cfg,
		Logger:         logg,
		DBPinger:       dbClient,
		RedisClient:    redisClient,
		SessionManager: sessionManager,
		MenuService:    menuService,
		CartService:    cartService,
		TablesService:  tablesService,
		OrdersService:  ordersService,
		DevicesService: devicesService,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	runCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	logg.Info(logg.WithField(runCtx, "addr", addr), "starting api server")

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(runCtx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-runCtx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "error during server shutdown", err)
		}
		logg.Info(ctx, "api server shut down gracefully")
	}
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, "resource not working: "+resource, err)
	os.Exit(1)
}
