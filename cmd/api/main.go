package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"inventory-api/internal/config"
	"inventory-api/internal/database"
	"inventory-api/internal/logger"
	"inventory-api/internal/repository"
	"inventory-api/internal/server"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func gracefulShutdown(apiServer *server.Server, logger *zap.Logger, done chan bool) {
	// Create context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Listen for the interrupt signal.
	<-ctx.Done()

	logger.Info("Shutting down gracefully, press Ctrl+C again to force")
	stop() // Allow Ctrl+C to force shutdown

	// The context is used to inform the server it has 30 seconds to finish
	// the request it is currently handling
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := apiServer.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	if err := apiServer.Close(); err != nil {
		logger.Error("Error closing server resources", zap.Error(err))
	}

	logger.Info("Server exiting")

	// Notify the main goroutine that the shutdown is complete
	done <- true
}

// openStore connects the configured product store, migrating and seeding it as needed
func openStore(ctx context.Context, cfg config.DatabaseConfig, log *zap.Logger) (repository.Store, error) {
	var store repository.Store

	switch cfg.Driver {
	case config.DriverMemory:
		log.Warn("Using in-memory product store, data is lost on restart")
		store = repository.NewMemoryStore()
	case config.DriverPostgres:
		dbService, err := database.New(ctx, cfg)
		if err != nil {
			return nil, err
		}
		log.Info("Database health check", zap.Any("health", dbService.Health(ctx)))

		if err := database.RunMigrations(dbService.DB(), log); err != nil {
			dbService.Close()
			return nil, err
		}
		store = repository.NewSessionFactory(dbService)
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}

	if cfg.Seed {
		if _, err := repository.Seed(ctx, store, log); err != nil {
			store.Close()
			return nil, err
		}
	}

	return store, nil
}

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.Server.Env, cfg.Server.LogLevel)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting inventory API",
		zap.String("env", cfg.Server.Env),
		zap.String("port", cfg.Server.Port),
		zap.String("driver", cfg.Database.Driver),
	)

	store, err := openStore(context.Background(), cfg.Database, log)
	if err != nil {
		log.Fatal("Failed to open product store", zap.Error(err))
	}

	var redisClient redis.UniversalClient
	if cfg.RateLimit.Enabled {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		log.Info("Rate limiting enabled",
			zap.String("redis", cfg.Redis.Addr()),
			zap.Int("requests", cfg.RateLimit.Requests),
			zap.Duration("window", cfg.RateLimit.Window),
		)
	}

	srv := server.NewServer(cfg, log, store, redisClient)

	// Create a done channel to signal when the shutdown is complete
	done := make(chan bool, 1)

	// Run graceful shutdown in a separate goroutine
	go gracefulShutdown(srv, log, done)

	log.Info("Server listening", zap.String("addr", srv.Addr))

	err = srv.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		log.Fatal("HTTP server error", zap.Error(err))
	}

	// Wait for the graceful shutdown to complete
	<-done
	log.Info("Graceful shutdown complete")
}
