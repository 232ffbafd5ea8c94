package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"greendrake/propdesk/internal/api"
	"greendrake/propdesk/internal/cache"
	"greendrake/propdesk/internal/config"
	"greendrake/propdesk/internal/db"
	"greendrake/propdesk/internal/services"
	"greendrake/propdesk/internal/storage"
	"greendrake/propdesk/internal/store"
)

const shutdownTimeout = 15 * time.Second

func newServeCmd() *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Long:  "Connect to MongoDB, S3 and (optionally) Redis, then serve the property API until interrupted.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if port != "" {
				cfg.ApiPort = port
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cfg)
		},
	}

	cmd.Flags().StringVar(&port, "port", "", "port to listen on; overrides API_PORT")

	return cmd
}

func runServe(ctx context.Context, cfg *config.Config) error {
	mongoClient, mongoDb, err := db.ConnectDB(cfg.MongoURI, cfg.MongoDbName)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.DisconnectDB(mongoClient); err != nil {
			slog.Warn("error disconnecting from MongoDB", "error", err)
		}
	}()

	propertyStore := store.NewPropertyStore(mongoDb)
	if err := propertyStore.EnsureIndexes(ctx); err != nil {
		slog.Warn("could not ensure indexes", "error", err)
	}

	s3Client, err := storage.NewS3Client(ctx, cfg)
	if err != nil {
		return err
	}
	objectStore := storage.NewS3Storage(cfg, s3Client)

	var propertyCache cache.IPropertyCache
	if cfg.RedisAddr != "" {
		var rdb *redis.Client
		rdb, err = cache.ConnectRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			slog.Warn("Redis unavailable; serving without cache", "error", err)
		} else {
			defer func() {
				if err := cache.DisconnectRedis(rdb); err != nil {
					slog.Warn("error disconnecting from Redis", "error", err)
				}
			}()
			propertyCache = cache.NewPropertyCache(rdb, cfg.GetCacheTTL)
		}
	}

	propertyService := services.NewPropertyService(propertyStore, objectStore, propertyCache)
	router := api.SetupRouter(ctx, cfg, propertyService, func(ctx context.Context) error {
		return db.Ping(ctx, mongoClient)
	})

	srv := &http.Server{
		Addr:              ":" + cfg.ApiPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("API listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("API server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
		slog.Info("shutting down gracefully")
	}

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		return fmt.Errorf("API server shutdown: %w", err)
	}
	slog.Info("server gracefully stopped")
	return nil
}
