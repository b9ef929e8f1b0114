// File: cmd/app/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"museum-ticketing/internal/clock"
	"museum-ticketing/internal/config"
	"museum-ticketing/internal/domain/ports/adapter"
	pg "museum-ticketing/internal/infra/db/postgres"
	"museum-ticketing/internal/infra/logging"
	"museum-ticketing/internal/infra/metrics"
	pay "museum-ticketing/internal/infra/payment"
	red "museum-ticketing/internal/infra/redis"
	"museum-ticketing/internal/infra/sched"
	"museum-ticketing/internal/infra/web"
	"museum-ticketing/internal/infra/worker"
	"museum-ticketing/internal/usecase"
	"museum-ticketing/migrations"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (noop gateway, console logs)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Warn().Msg("developer mode enabled")
	}

	metrics.MustRegister()

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, cfg.Database.MaxConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres connect")
	}
	defer pool.Close()

	if err := migrations.Apply(ctx, pool); err != nil {
		logger.Fatal().Err(err).Msg("migrations")
	}

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis connect")
	}
	defer redisClient.Close()
	locker := red.NewLocker(redisClient)
	rateLimiter := red.NewRateLimiter(redisClient)

	// ---- Repositories ----
	txManager := pg.NewTxManager(pool)
	purchaseRepo := pg.NewPurchaseRepo(pool)
	museumRepo := pg.NewMuseumRepo(pool)
	userRepo := pg.NewUserRepo(pool)
	ticketRepo := pg.NewTicketTypeRepoCacheDecorator(pg.NewTicketTypeRepo(pool), redisClient, cfg.Redis.TTL)

	// ---- Payment gateway ----
	var gateway adapter.PaymentGateway
	if cfg.Runtime.Dev && cfg.Payment.Paymob.APIKey == "" {
		gateway = pay.NewNoopPaymentGateway()
		logger.Warn().Msg("payment gateway: noop (dev)")
	} else {
		gateway, err = pay.NewPaymobDirectGateway(
			cfg.Payment.Paymob.APIKey,
			cfg.Payment.Paymob.IntegrationID,
			cfg.Payment.Paymob.IframeID,
			cfg.Payment.Paymob.BaseURL,
		)
		if err != nil {
			logger.Fatal().Err(err).Msg("paymob gateway")
		}
	}

	clk := clock.NewRealClock()

	// ---- Sweep worker pool ----
	sweepPool := worker.NewPool(cfg.Sweeper.Workers, logger)
	sweepPool.Start(ctx)
	defer sweepPool.Stop()

	// ---- Use cases ----
	purchaseUC := usecase.NewPurchaseUseCase(purchaseRepo, ticketRepo, userRepo, gateway, txManager, clk, logger)
	usageUC := usecase.NewUsageUseCase(purchaseRepo, clk, cfg.Usage.MaxMinutesPerReport, logger)
	accessUC := usecase.NewAccessUseCase(purchaseRepo, clk, logger)
	expiryUC := usecase.NewExpiryUseCase(purchaseRepo, clk, sweepPool, cfg.Sweeper.BatchSize, logger)
	catalogUC := usecase.NewCatalogUseCase(museumRepo, ticketRepo, logger)

	// ---- Expiration sweeper ----
	sweeper := sched.NewExpiryWorker(cfg.Sweeper.Interval, cfg.Sweeper.LockTTL, expiryUC, locker, logger)
	go func() { _ = sweeper.Run(ctx) }()

	// ---- HTTP ----
	auth := web.NewAuthManager(cfg.Auth.JWTSecret)
	srv := web.NewServer(purchaseUC, usageUC, accessUC, catalogUC, auth, rateLimiter, web.ServerOpts{
		RateLimit:  cfg.Usage.RateLimit,
		RateWindow: cfg.Usage.RateWindow,
		HMACSecret: cfg.Payment.Paymob.HMACSecret,
	}, logger)

	router := srv.Router()
	router.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("http listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("http server")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutdown requested")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}
}
