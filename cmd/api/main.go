package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/bloomhaus/petalboard-backend/api/routes"
	"github.com/bloomhaus/petalboard-backend/internal/auth"
	"github.com/bloomhaus/petalboard-backend/internal/customers"
	"github.com/bloomhaus/petalboard-backend/internal/dashboard"
	"github.com/bloomhaus/petalboard-backend/internal/orders"
	"github.com/bloomhaus/petalboard-backend/internal/users"
	"github.com/bloomhaus/petalboard-backend/pkg/auth/session"
	"github.com/bloomhaus/petalboard-backend/pkg/config"
	"github.com/bloomhaus/petalboard-backend/pkg/db"
	"github.com/bloomhaus/petalboard-backend/pkg/logger"
	"github.com/bloomhaus/petalboard-backend/pkg/metrics"
	"github.com/bloomhaus/petalboard-backend/pkg/migrate"
	redisclient "github.com/bloomhaus/petalboard-backend/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logg := logger.New(logger.Options{
		ServiceName: "petalboard-api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "connecting to postgres", err)
		os.Exit(1)
	}
	defer dbClient.Close()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		logg.Error(ctx, "running migrations", err)
		os.Exit(1)
	}

	redisClient, err := redisclient.New(ctx, cfg.Redis, logg)
	if err != nil {
		logg.Error(ctx, "connecting to redis", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	sessions, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(ctx, "building session manager", err)
		os.Exit(1)
	}

	authSvc := auth.NewService(auth.ServiceParams{
		Users:    users.NewRepo(dbClient.DB()),
		Sessions: sessions,
		JWT:      cfg.JWT,
		Password: cfg.Password,
		App:      cfg.App,
		Logger:   logg,
	})
	orderSvc := orders.NewService(orders.ServiceParams{
		Store:  orders.NewRepo(dbClient.DB()),
		Cache:  redisClient,
		Config: cfg.Orders,
		Logger: logg,
	})
	customerSvc := customers.NewService(customers.ServiceParams{
		Orders: orderSvc,
		Logger: logg,
	})
	dashboardSvc, err := dashboard.NewService(dashboard.ServiceParams{
		Orders: orderSvc,
		Config: cfg.Dashboard,
		Logger: logg,
	})
	if err != nil {
		logg.Error(ctx, "building dashboard service", err)
		os.Exit(1)
	}

	router := routes.New(routes.RouterParams{
		Config:      cfg,
		Logger:      logg,
		Auth:        authSvc,
		Orders:      orderSvc,
		Customers:   customerSvc,
		Dashboard:   dashboardSvc,
		Sessions:    sessions,
		RateLimiter: redisClient,
		HTTPMetrics: metrics.NewHTTPMetrics(prometheus.DefaultRegisterer),
		DBPinger:    dbClient,
		CachePinger: redisClient,
	})

	server := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logg.Info(logg.WithField(ctx, "port", cfg.App.Port), "server starting")
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logg.Info(context.Background(), "shutdown signal received")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(context.Background(), "server failed", err)
			os.Exit(1)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logg.Error(shutdownCtx, "graceful shutdown failed", err)
		os.Exit(1)
	}
	logg.Info(context.Background(), "server stopped")
}
