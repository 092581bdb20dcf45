package server

import (
	"fmt"
	"net/http"

	"inventory-api/internal/config"
	custommiddleware "inventory-api/internal/middleware"
	"inventory-api/internal/repository"
	"inventory-api/internal/service"
	"inventory-api/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Server struct {
	*http.Server
	config *config.Config
	logger *zap.Logger
	store  repository.Store
	redis  redis.UniversalClient
}

// NewServer wires the product API over store. redisClient may be nil when rate limiting is disabled.
func NewServer(cfg *config.Config, logger *zap.Logger, store repository.Store, redisClient redis.UniversalClient) *Server {
	router := NewRouter(cfg, logger, store, redisClient)

	return &Server{
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
			Handler:      router,
			IdleTimeout:  cfg.Server.IdleTimeout,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		},
		config: cfg,
		logger: logger,
		store:  store,
		redis:  redisClient,
	}
}

// NewRouter builds the middleware chain and mounts every route
func NewRouter(cfg *config.Config, logger *zap.Logger, store repository.Store, redisClient redis.UniversalClient) chi.Router {
	router := chi.NewRouter()
	metrics := custommiddleware.NewMetrics("inventory")

	// Add basic middleware
	router.Use(custommiddleware.DefaultMiddlewareStack()...)
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(metrics.Middleware())
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))
	router.Use(custommiddleware.CORSMiddleware(cfg.CORS))

	router.Method(http.MethodGet, "/metrics", metrics.Handler())
	transport.NewRootHandler(store).RegisterRoutes(router)

	productService := service.NewProductService(store)
	productHandler := transport.NewProductHandler(productService, logger)

	router.Group(func(r chi.Router) {
		if cfg.RateLimit.Enabled && redisClient != nil {
			r.Use(custommiddleware.RateLimitMiddleware(redisClient, custommiddleware.RateLimitConfig{
				RequestsPerWindow: cfg.RateLimit.Requests,
				Window:            cfg.RateLimit.Window,
				KeyPrefix:         "inventory_rate_limit",
			}, logger))
		}
		productHandler.RegisterRoutes(r)
	})

	return router
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.logger.Error("Failed to close redis client", zap.Error(err))
		}
	}

	if err := s.store.Close(); err != nil {
		s.logger.Error("Failed to close product store", zap.Error(err))
	}

	s.logger.Sync()
	return nil
}
