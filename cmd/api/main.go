package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dangerous-goods-backend/config"
	"dangerous-goods-backend/db"
	"dangerous-goods-backend/internal/app"
	"dangerous-goods-backend/internal/delivery/http/middleware"
	v1 "dangerous-goods-backend/internal/delivery/http/v1"
	"dangerous-goods-backend/internal/domain"
	"dangerous-goods-backend/internal/infrastructure/cache"
	"dangerous-goods-backend/internal/infrastructure/messaging"
	pgrepo "dangerous-goods-backend/internal/repository/postgres"
	"dangerous-goods-backend/pkg/logger"
	"dangerous-goods-backend/pkg/utils"

	"github.com/NYTimes/gziphandler"
	"golang.org/x/time/rate"
)

func main() {
	cfg := config.LoadConfig()
	utils.SetSecret(cfg.JWTSecret)

	logger.Init(cfg.Env, cfg.LogLevel)
	log := logger.Get()

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	if cfg.AutoMigrate {
		if err := db.RunMigrations(cfg.DBUrl, *log); err != nil {
			log.Fatal().Err(err).Msg("Failed to run migrations")
		}
	}

	pgxPool, err := pgrepo.NewPgxPool(context.Background(), cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer pgxPool.Close()
	log.Info().Msg("Successfully connected to PostgreSQL via pgx")

	// Settings, evaluations and the public config preview share one store.
	memCache := cache.NewMemoryCache(30*time.Minute, 60*time.Minute)

	var publisher domain.EventPublisher = messaging.NoopPublisher{}
	if cfg.RabbitMQURL != "" {
		rabbit, err := messaging.DialRabbitPublisher(cfg.RabbitMQURL)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to RabbitMQ")
		}
		defer rabbit.Close()
		publisher = rabbit
		log.Info().Str("exchange", messaging.EventsExchange).Msg("Publishing dangerous goods order events")
	}

	uc := app.NewUsecases(cfg, pgxPool, memCache, publisher)

	mux := http.NewServeMux()
	v1.RegisterRoutes(mux, v1.Handlers{
		Order:        v1.NewOrderHandler(uc.Cart, uc.Order, cfg.MaxCartQuantity),
		Catalog:      v1.NewCatalogHandler(uc.Catalog),
		Config:       v1.NewConfigHandler(memCache, uc.Settings, cfg.CurrencySymbol),
		AdminConfig:  v1.NewAdminConfigHandler(uc.Settings),
		AdminCatalog: v1.NewAdminCatalogHandler(uc.Catalog),
	})

	addr := fmt.Sprintf(":%s", cfg.Port)

	rateLimiter := middleware.NewRateLimiter(
		context.Background(),
		rate.Limit(cfg.RateLimitRPS),
		cfg.RateLimitBurst,
		time.Minute,   // cleanup period
		3*time.Minute, // client TTL
	)

	handler := middleware.NewCORSMiddleware(cfg)(mux)
	handler = middleware.RequestLogger(handler)
	handler = rateLimiter.Middleware()(handler)
	handler = gziphandler.GzipHandler(handler)

	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	logger.ServiceStart("dangerous-goods-api", version, cfg.Port)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Server shutting down...")
	rateLimiter.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	logger.ServiceStop("dangerous-goods-api")
}
