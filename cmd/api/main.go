package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/servex-app/servex-backend/api/routes"
	"github.com/servex-app/servex-backend/internal/auth"
	"github.com/servex-app/servex-backend/internal/catalog"
	"github.com/servex-app/servex-backend/internal/notify"
	"github.com/servex-app/servex-backend/internal/orders"
	"github.com/servex-app/servex-backend/internal/payments"
	"github.com/servex-app/servex-backend/pkg/auth/session"
	"github.com/servex-app/servex-backend/pkg/config"
	"github.com/servex-app/servex-backend/pkg/db"
	"github.com/servex-app/servex-backend/pkg/logger"
	"github.com/servex-app/servex-backend/pkg/metrics"
	"github.com/servex-app/servex-backend/pkg/migrate"
	"github.com/servex-app/servex-backend/pkg/razorpay"
	"github.com/servex-app/servex-backend/pkg/redis"
)

const shutdownTimeout = 10 * time.Second

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

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	gateway, err := razorpay.NewClient(context.Background(), cfg.Razorpay, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create payment gateway client", err)
		os.Exit(1)
	}

	hub := notify.NewHub(logg)
	bus := notify.NewBus(hub, redisClient, logg)

	catalogService := catalog.NewService(
		catalog.NewRepository(dbClient),
		cfg.JWT,
		cfg.TableSession.TTL(),
		cfg.App.FrontendURL,
		logg,
	)
	orderService := orders.NewService(
		orders.NewRepository(dbClient),
		catalogService,
		catalogService,
		bus,
		cfg.Rates.TaxRate(),
		cfg.Rates.ServiceChargeRate(),
		logg,
	)
	paymentService := payments.NewService(
		payments.NewRepository(dbClient),
		orders.NewRepository(dbClient),
		gateway,
		bus,
		metrics.NewPaymentMetrics(prometheus.DefaultRegisterer),
		logg,
	)
	authService := auth.NewService(
		auth.NewRepository(dbClient),
		sessionManager,
		cfg.JWT,
		cfg.Password,
		logg,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	go func() {
		if err := bus.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logg.Error(ctx, "notification bus stopped unexpectedly", err)
		}
	}()

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx = logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, sessionManager, routes.Services{
			Auth:     authService,
			Catalog:  catalogService,
			Orders:   orderService,
			Payments: paymentService,
			Bus:      bus,
		}),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		logg.Info(ctx, "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "error during server shutdown", err)
			os.Exit(1)
		}
	}

	logg.Info(ctx, "api server stopped")
}
