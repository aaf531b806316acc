package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"orderdesk-backend/config"
	"orderdesk-backend/internal/delivery/http/middleware"
	v1 "orderdesk-backend/internal/delivery/http/v1"
	"orderdesk-backend/internal/infrastructure/cache"
	"orderdesk-backend/internal/infrastructure/commerce"
	"orderdesk-backend/internal/repository/postgres"
	"orderdesk-backend/internal/usecase"
	"orderdesk-backend/pkg/logger"
	"orderdesk-backend/pkg/storage"
	"orderdesk-backend/pkg/utils"

	"github.com/NYTimes/gziphandler"
	"golang.org/x/time/rate"
)

func main() {
	cfg := config.LoadConfig()
	utils.SetSecret(cfg.JWTSecret)

	// Initialize Logger
	logger.Init(cfg.Env, cfg.LogLevel)
	log := logger.Get()

	// Audit database (status change history)
	pgxPool, err := postgres.NewPgxPool(context.Background(), cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to audit database")
	}
	log.Info().Msg("Connected to PostgreSQL audit database")
	historyRepo := postgres.NewStatusHistoryRepository(pgxPool)

	// Upstream commerce API (owns the orders)
	commerceClient := commerce.NewClient(cfg.CommerceAPIURL, cfg.CommerceAPIToken, cfg.CommerceTimeout)

	// Shared in-memory cache for all order views
	memCache := cache.NewMemoryCache(5*time.Minute, 10*time.Minute)

	// Export storage (R2)
	r2Storage, err := storage.NewR2Storage(
		context.Background(),
		cfg.R2AccountID,
		cfg.R2AccessKeyID,
		cfg.R2AccessKeySecret,
		cfg.R2BucketName,
		cfg.R2PublicURL,
		cfg.R2UploadTimeout,
	)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize R2 storage")
	}

	// --- Modules Initialization ---

	ordersUC := usecase.NewOrdersUsecase(commerceClient, memCache, cfg)
	fulfillmentUC := usecase.NewFulfillmentUsecase(commerceClient, historyRepo, ordersUC)
	statsUC := usecase.NewStatsUsecase(commerceClient, memCache, cfg)
	exportUC := usecase.NewExportUsecase(commerceClient, r2Storage, cfg.ExportPageSize)

	orderHandler := v1.NewAdminOrderHandler(ordersUC, fulfillmentUC, exportUC)
	statsHandler := v1.NewAdminStatsHandler(statsUC)

	// Set up Router
	mux := http.NewServeMux()

	adminMiddleware := func(h http.HandlerFunc) http.Handler {
		return middleware.AuthMiddleware(middleware.AdminMiddleware(h))
	}

	// Orders
	mux.Handle("GET /api/v1/admin/orders", adminMiddleware(orderHandler.ListOrders))
	mux.Handle("GET /api/v1/admin/orders/{id}", adminMiddleware(orderHandler.GetOrder))
	mux.Handle("GET /api/v1/admin/orders/{id}/transitions", adminMiddleware(orderHandler.GetTransitions))
	mux.Handle("PATCH /api/v1/admin/orders/{id}/status", adminMiddleware(orderHandler.UpdateStatus))
	mux.Handle("GET /api/v1/admin/orders/{id}/history", adminMiddleware(orderHandler.GetOrderHistory))
	mux.Handle("POST /api/v1/admin/orders/export", adminMiddleware(orderHandler.ExportOrders))

	// Stats
	mux.Handle("GET /api/v1/admin/stats/orders", adminMiddleware(statsHandler.GetOrderStatusCounts))

	// Health Check
	healthHandler := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "ok"}`))
	}
	mux.HandleFunc("GET /api/v1/health", healthHandler)
	mux.HandleFunc("GET /health", healthHandler)

	addr := fmt.Sprintf(":%s", cfg.Port)

	// Rate limiter with lifecycle management
	rateLimiter := middleware.NewRateLimiter(
		context.Background(),
		rate.Limit(cfg.RateLimitRPS),
		cfg.RateLimitBurst,
		time.Minute,
		3*time.Minute,
	)

	// Apply CORS, Request Logger, Rate Limit, and Gzip
	handler := middleware.NewCORSMiddleware(cfg)(mux)
	handler = middleware.RequestLogger(handler)
	handler = rateLimiter.Middleware()(handler)
	handler = gziphandler.GzipHandler(handler)

	srv := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	// Graceful Shutdown
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	log.Info().Msgf("Server starting on %s", addr)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Server shutting down...")

	rateLimiter.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	pgxPool.Close()

	log.Info().Msg("Server exited properly")
}
