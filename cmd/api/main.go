package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lucasmv/zapflow-backend/api/routes"
	"github.com/lucasmv/zapflow-backend/internal/board"
	"github.com/lucasmv/zapflow-backend/internal/catalog"
	checkoutsvc "github.com/lucasmv/zapflow-backend/internal/checkout"
	"github.com/lucasmv/zapflow-backend/internal/customers"
	"github.com/lucasmv/zapflow-backend/internal/dashboard"
	"github.com/lucasmv/zapflow-backend/internal/deliveryfee"
	"github.com/lucasmv/zapflow-backend/internal/hours"
	"github.com/lucasmv/zapflow-backend/internal/orders"
	"github.com/lucasmv/zapflow-backend/internal/payments"
	mpwebhook "github.com/lucasmv/zapflow-backend/internal/webhooks/mercadopago"
	"github.com/lucasmv/zapflow-backend/pkg/config"
	"github.com/lucasmv/zapflow-backend/pkg/db"
	"github.com/lucasmv/zapflow-backend/pkg/geocode"
	"github.com/lucasmv/zapflow-backend/pkg/logger"
	"github.com/lucasmv/zapflow-backend/pkg/mercadopago"
	"github.com/lucasmv/zapflow-backend/pkg/metrics"
	"github.com/lucasmv/zapflow-backend/pkg/migrate"
	"github.com/lucasmv/zapflow-backend/pkg/osrm"
	"github.com/lucasmv/zapflow-backend/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	storefrontMetrics := metrics.NewStorefrontMetrics(registry)
	metricsHandler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	gate := hours.NewGate()
	catalogRepo := catalog.NewRepository(dbClient.DB())
	catalogService := catalog.NewService(catalogRepo, gate)
	customerRepo := customers.NewRepository(dbClient.DB())
	orderRepo := orders.NewRepository(dbClient.DB())

	geocodeClient := geocode.NewClient(
		geocode.WithBaseURL(cfg.Geocoding.BaseURL),
		geocode.WithHTTPClient(&http.Client{Timeout: cfg.Geocoding.Timeout}),
	)
	osrmClient := osrm.NewClient(
		osrm.WithBaseURL(cfg.Routing.BaseURL),
		osrm.WithHTTPClient(&http.Client{Timeout: cfg.Routing.Timeout}),
	)
	feeEngine := deliveryfee.NewEngine(geocodeClient, osrmClient, logg, storefrontMetrics)

	mpClient := mercadopago.NewClient(logg,
		mercadopago.WithBaseURL(cfg.MercadoPago.BaseURL),
		mercadopago.WithHTTPClient(&http.Client{Timeout: cfg.MercadoPago.Timeout}),
	)
	paymentsService := payments.NewService(mpClient, orderRepo, logg, storefrontMetrics)

	notifier := board.NewRedisNotifier(redisClient, logg, storefrontMetrics, cfg.Board.EventBuffer)
	boardService := board.NewService(orderRepo, notifier, logg)

	checkoutService := checkoutsvc.NewService(
		dbClient,
		catalogRepo,
		customerRepo,
		orderRepo,
		feeEngine,
		gate,
		paymentsService,
		notifier,
		logg,
		storefrontMetrics,
		checkoutsvc.Options{EnforceBusinessHours: cfg.FeatureFlags.EnforceHours},
	)

	dashboardService := dashboard.NewService(orderRepo, customerRepo)
	webhookService := mpwebhook.NewService(mpClient, orderRepo, catalogRepo, notifier, logg, storefrontMetrics)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			catalogService,
			catalogRepo,
			checkoutService,
			feeEngine,
			paymentsService,
			orderRepo,
			boardService,
			notifier,
			dashboardService,
			webhookService,
			metricsHandler,
			storefrontMetrics,
		),
	}

	stopCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-stopCtx.Done():
		logg.Info(ctx, "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}
}
