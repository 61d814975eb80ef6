package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/breadroute/breadroute/internal/allocation"
	"github.com/breadroute/breadroute/internal/app"
	"github.com/breadroute/breadroute/internal/fleet"
	"github.com/breadroute/breadroute/internal/inventory"
	"github.com/breadroute/breadroute/internal/masterdata"
	"github.com/breadroute/breadroute/internal/observability"
	"github.com/breadroute/breadroute/internal/orders"
	"github.com/breadroute/breadroute/internal/packing"
	"github.com/breadroute/breadroute/internal/platform/cache"
	"github.com/breadroute/breadroute/internal/platform/db"
	"github.com/breadroute/breadroute/internal/radar"
	"github.com/breadroute/breadroute/internal/returns"
	"github.com/breadroute/breadroute/internal/shipment"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	masterdataService := masterdata.NewService(dbpool)
	masterdataHandler := masterdata.NewHandler(logger, masterdataService)

	fleetService := fleet.NewService(dbpool)
	fleetHandler := fleet.NewHandler(logger, fleetService)

	inventoryService := inventory.NewService(inventory.NewRepository(dbpool))
	inventoryHandler := inventory.NewHandler(logger, inventoryService)

	allocationRepo := allocation.NewRepository(dbpool)
	gateway := allocation.NewGateway(logger, cfg.AIGatewayURL, cfg.AIGatewayToken, cfg.AIModel, cfg.AITimeout)
	engine := allocation.NewEngine(logger, allocationRepo, gateway)
	allocationHandler := allocation.NewHandler(logger, engine)

	packingHandler := packing.NewHandler(logger,
		masterdataService,
		app.NewVehicleCargoSource(fleetService),
		app.NewProductVolumeSource(allocationRepo))

	radarCache := radar.NewCache(redisClient, cfg.RadarCacheTTL)
	radarService := radar.NewService(logger, radar.NewRepository(dbpool), radarCache)
	radarHandler := radar.NewHandler(logger, radarService)

	shipmentService := shipment.NewService(logger, shipment.NewRepository(dbpool), radarService)
	shipmentHandler := shipment.NewHandler(logger, shipmentService)

	ordersService := orders.NewService(logger, orders.NewRepository(dbpool))
	ordersHandler := orders.NewHandler(logger, ordersService)

	returnsService := returns.NewService(logger, returns.NewRepository(dbpool))
	returnsHandler := returns.NewHandler(logger, returnsService)

	metrics := observability.NewMetrics()

	router := app.NewRouter(app.RouterParams{
		Logger:            logger,
		Config:            cfg,
		MasterDataHandler: masterdataHandler,
		FleetHandler:      fleetHandler,
		InventoryHandler:  inventoryHandler,
		PackingHandler:    packingHandler,
		AllocationHandler: allocationHandler,
		ShipmentHandler:   shipmentHandler,
		OrdersHandler:     ordersHandler,
		ReturnsHandler:    returnsHandler,
		RadarHandler:      radarHandler,
		Metrics:           metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
