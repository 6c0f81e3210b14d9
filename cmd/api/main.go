package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/swapstats/revenue-api/internal/aggregate"
	"github.com/swapstats/revenue-api/internal/config"
	"github.com/swapstats/revenue-api/internal/feecache"
	"github.com/swapstats/revenue-api/internal/logger"
	"github.com/swapstats/revenue-api/internal/pricing"
	"github.com/swapstats/revenue-api/internal/providers"
	"github.com/swapstats/revenue-api/internal/refdata"
	"github.com/swapstats/revenue-api/internal/server"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found: %v\n", err)
	}

	logger.InitLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Unable to load configuration", zap.Error(err))
	}

	registry := refdata.NewAssetRegistry(cfg.AssetData, nil)
	mapping := refdata.NewCoingeckoMapping(cfg.AssetData)
	prices := pricing.NewService(cfg.Pricing, registry, mapping)

	cache, err := feecache.NewCache(cfg.FeeCache.MaxEntries, cfg.FeeCache.MaxBytes, cfg.FeeCache.TTL)
	if err != nil {
		logger.Fatal("Unable to build fee cache", zap.Error(err))
	}

	aggregator := aggregate.NewService(
		providers.New(
			providers.NewMidgardFetcher("thorchain", "cosmos:thorchain-1", "cosmos:thorchain-1/slip44:931", cfg.Providers.ThorchainURL),
			cache, prices, registry),
		providers.New(
			providers.NewMidgardFetcher("mayachain", "cosmos:mayachain-mainnet-v1", "cosmos:mayachain-mainnet-v1/slip44:931", cfg.Providers.MayachainURL),
			cache, prices, registry),
		providers.New(
			providers.NewRelayFetcher(cfg.Providers.RelayURL, cfg.Providers.RelayReferrer, cfg.Providers.PageDelay),
			cache, prices, registry),
		providers.New(
			providers.NewChainflipFetcher(cfg.Providers.ChainflipURL),
			cache, prices, registry),
	)

	// Initialize router
	router := gin.Default()
	server.InitializeRoutes(router, server.NewRevenueHandler(aggregator))

	srv := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: router,
	}
	// Start server in a goroutine
	go func() {
		logger.Info("Server starting", zap.String("addr", cfg.ListenAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	// Give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exiting")
}
