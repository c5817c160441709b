package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cydodol-beep/shorttail-ecommerce-sub002/internal/config"
	"github.com/cydodol-beep/shorttail-ecommerce-sub002/internal/database"
	"github.com/cydodol-beep/shorttail-ecommerce-sub002/internal/events"
	"github.com/cydodol-beep/shorttail-ecommerce-sub002/internal/handler"
	"github.com/cydodol-beep/shorttail-ecommerce-sub002/internal/idempotency"
	"github.com/cydodol-beep/shorttail-ecommerce-sub002/internal/notify"
	"github.com/cydodol-beep/shorttail-ecommerce-sub002/internal/promo"
	"github.com/cydodol-beep/shorttail-ecommerce-sub002/internal/repository"
	"github.com/cydodol-beep/shorttail-ecommerce-sub002/internal/router"
	"github.com/cydodol-beep/shorttail-ecommerce-sub002/internal/service"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

const serviceName = "shorttail-pos-api"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := config.NewLogger(cfg.Logger)
	logger.Info().Msg("starting shorttail POS API server")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	// Repositories
	productRepo := repository.NewProductRepository(pool, logger)
	orderRepo := repository.NewOrderRepository(pool, logger)
	notificationRepo := repository.NewNotificationRepository(pool, logger)
	sessionRepo := repository.NewSessionRepository(pool, logger)

	// Promo validator with S3 and local fallback
	fileLoader := promo.NewFileLoader(logger)
	var promoLoader promo.Loader

	if cfg.Promo.S3Enabled {
		s3Loader, err := promo.NewS3Loader(ctx, cfg.Promo.Bucket, cfg.Promo.Region, logger)
		if err != nil {
			logger.Warn().
				Err(err).
				Msg("failed to initialise S3 loader, falling back to local file system only")
			promoLoader = fileLoader
		} else {
			promoLoader = s3Loader
		}
	} else {
		promoLoader = fileLoader
		logger.Info().Msg("using local file system for promo files (S3 disabled)")
	}

	validatorConfig := &promo.ValidatorConfig{FilePaths: cfg.Promo.Files}
	promoValidator, err := promo.NewValidator(ctx, validatorConfig, promoLoader, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize promo validator: %w", err)
	}
	defer promoValidator.Close()

	// Order-event producer (optional)
	var publisher events.Publisher
	if cfg.Kafka.Enabled {
		producer := events.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic, 1024, logger)
		producer.Start(ctx)
		defer func() {
			producer.Close()
			producer.WaitClosed()
		}()
		publisher = producer
	} else {
		logger.Info().Msg("kafka disabled, order events will not be published")
	}

	// Detached notifier
	notifier := notify.New(notificationRepo, publisher, serviceName, 256, logger)
	notifier.Start(ctx)
	defer func() {
		notifier.Close()
		notifier.WaitClosed()
	}()

	// Idempotency guard (optional)
	var idemStore *idempotency.Store
	if cfg.Redis.Enabled {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
		defer rdb.Close()
		idemStore = idempotency.NewStore(rdb, time.Duration(cfg.Redis.TTL)*time.Second, logger)
	} else {
		logger.Info().Msg("redis disabled, checkout requests are not guarded against double submits")
	}

	// Services
	productService := service.NewProductService(productRepo, logger)
	checkoutService := service.NewCheckoutService(orderRepo, promoValidator, notifier, logger)

	// HTTP handlers
	productHandler := handler.NewProductHandler(productService, logger)
	checkoutHandler := handler.NewCheckoutHandler(checkoutService, idemStore, logger)

	mux := router.New(productHandler, checkoutHandler, sessionRepo, logger)

	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErrors := make(chan error, 1)

	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}
