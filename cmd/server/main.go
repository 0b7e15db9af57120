package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/cartside/backend/internal/config"
	delivery "github.com/cartside/backend/internal/delivery/http"
	"github.com/cartside/backend/internal/middleware"
	"github.com/cartside/backend/internal/rates"
	"github.com/cartside/backend/internal/repository/postgres"
	"github.com/cartside/backend/internal/token"
	"github.com/cartside/backend/internal/usecase"
	"github.com/cartside/backend/pkg/exchangerate"
	"github.com/cartside/backend/pkg/geoip"
	"github.com/cartside/backend/pkg/logger"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.Server.Mode)
	log.Info("Cartside backend starting", "port", cfg.Server.Port)

	// Connect to PostgreSQL with retry
	var pool *pgxpool.Pool
	for attempt := 1; attempt <= 5; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		var err error
		pool, err = pgxpool.New(ctx, cfg.Database.URL)
		if err == nil {
			if pingErr := pool.Ping(ctx); pingErr == nil {
				cancel()
				log.Info("Connected to PostgreSQL")
				break
			} else {
				pool.Close()
				log.Warn("Failed to ping database", "attempt", attempt, "error", pingErr)
			}
		} else {
			log.Warn("Failed to connect to database", "attempt", attempt, "error", err)
		}
		cancel()
		if attempt == 5 {
			log.Error("Could not connect to database after 5 attempts")
			os.Exit(1)
		}
		time.Sleep(time.Duration(attempt) * 2 * time.Second)
	}
	defer pool.Close()

	// Exchange-rate cache: Redis-backed when configured so replicas share
	// fetched rates, in-process memory otherwise.
	var rateStore rates.Store = rates.NewMemoryStore(cfg.Exchange.CacheTTL)
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			log.Warn("Redis unreachable, using in-memory rate cache", "error", err)
		} else {
			rateStore = rates.NewRedisStore(rdb, cfg.Exchange.CacheTTL)
			defer rdb.Close()
			log.Info("Connected to Redis", "addr", cfg.Redis.Addr)
		}
	}

	// External service clients
	rateClient := exchangerate.NewClient()
	if cfg.Exchange.BaseURL != "" {
		rateClient = exchangerate.NewClientWithBaseURL(cfg.Exchange.BaseURL)
	}
	geoClient := geoip.NewClient()
	if cfg.GeoIP.BaseURL != "" {
		geoClient = geoip.NewClientWithBaseURL(cfg.GeoIP.BaseURL)
	}

	rateCache := rates.NewCache(rateStore, rateClient, log)

	// Repositories
	userRepo := postgres.NewUserRepository(pool)
	tokenRepo := postgres.NewRefreshTokenRepository(pool)
	eventRepo := postgres.NewLoginEventRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	categoryRepo := postgres.NewCategoryRepository(pool)
	currencyRepo := postgres.NewCurrencyRepository(pool)

	// Usecases
	codec := token.NewCodec(cfg.JWT.AccessSecret, cfg.JWT.RefreshSecret, cfg.JWT.AccessExpiry, cfg.JWT.RefreshExpiry)
	sessionUsecase := usecase.NewSessionUsecase(userRepo, tokenRepo, eventRepo, codec, log)
	pricingUsecase := usecase.NewPricingUsecase(currencyRepo, rateCache, log)
	catalogUsecase := usecase.NewCatalogUsecase(productRepo, categoryRepo, pricingUsecase, geoClient, log)

	// HTTP surface
	handler := delivery.NewHandler(sessionUsecase, catalogUsecase, pricingUsecase, cfg.Cookie.Secure)
	authMiddleware := middleware.NewAuthMiddleware(sessionUsecase)
	router := delivery.NewRouter(handler, authMiddleware, cfg.CORS.AllowedOrigins, cfg.Cookie.Secure)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Periodic sweep of refresh records old enough that they can never
	// verify again.
	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	go func() {
		ticker := time.NewTicker(12 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-sweepCtx.Done():
				return
			case <-ticker.C:
				if err := tokenRepo.DeleteExpired(cfg.JWT.RefreshExpiry); err != nil {
					log.Error("refresh token sweep failed", "error", err)
				}
			}
		}
	}()

	go func() {
		log.Info("Server listening", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	log.Info("Server stopped gracefully")
}
