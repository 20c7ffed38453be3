// Command cmc-proxy serves the CoinMarketCap public API through the CMC
// client: every ticker page is collected server-side and complete ticker
// sets are kept as Redis snapshots.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Sternrassler/cmc-client/internal/config"
	"github.com/Sternrassler/cmc-client/pkg/client"
	"github.com/Sternrassler/cmc-client/pkg/logging"
	"github.com/Sternrassler/cmc-client/pkg/snapshot"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logging.Setup(cfg.LoggingConfig())
	logger := logging.NewLogger("cmc-proxy")

	cmcClient, err := client.New(cfg.ClientConfig())
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create CMC client")
	}
	defer cmcClient.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var store *snapshot.Store
	if cfg.RedisEnabled() {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisURL,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer redisClient.Close()

		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Warn().Err(err).Str("redis", cfg.RedisURL).Msg("Redis not reachable, snapshots will fail until it is")
		} else {
			logger.Info().Str("redis", cfg.RedisURL).Msg("Connected to Redis")
		}
		store = snapshot.NewStore(redisClient, cfg.SnapshotRetention)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           newServer(cmcClient, store, logger).routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("Shutdown failed")
		}
	}()

	logger.Info().
		Str("addr", srv.Addr).
		Str("base_url", cfg.BaseURL).
		Str("user_agent", cfg.UserAgent).
		Bool("snapshots", store != nil).
		Msg("Starting CMC proxy server")

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal().Err(err).Msg("Server failed")
	}
	logger.Info().Msg("Server stopped")
}
