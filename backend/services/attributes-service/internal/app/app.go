package app

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	libdb "sessionstore/backend/libs/db"
	libredis "sessionstore/backend/libs/redis"
	"sessionstore/backend/services/attributes-service/internal/config"
	httpserver "sessionstore/backend/services/attributes-service/internal/http"
	"sessionstore/backend/services/attributes-service/internal/http/handlers"
	"sessionstore/backend/services/attributes-service/internal/http/middleware"
	"sessionstore/backend/services/attributes-service/internal/kv"
	"sessionstore/backend/services/attributes-service/internal/service"
)

// App wires attributes-service dependencies.
type App struct {
	server      *httpserver.Server
	db          *sql.DB
	redisClient *redis.Client
	logger      *zap.Logger
}

// New constructs the application graph.
func New(cfg *config.Config, logger *zap.Logger) (*App, error) {
	app := &App{logger: logger}

	store, err := app.newStore(cfg)
	if err != nil {
		return nil, err
	}
	logger.Info("store backend selected",
		zap.String("backend", cfg.Store.Backend),
		zap.Bool("transactional", store.Properties().Transactional),
	)

	attributesService := service.NewAttributesService(store, store, logger)
	attributesHandler := handlers.NewAttributesHandler(attributesService, logger)

	routes := httpserver.Routes{
		ListAttributes:  attributesHandler.HandleList,
		GetAttribute:    attributesHandler.HandleGet,
		SetAttribute:    attributesHandler.HandleSet,
		RemoveAttribute: attributesHandler.HandleRemove,
		Health:          handlers.NewHealthHandler(),
	}

	var auth func(http.Handler) http.Handler
	if cfg.Auth.Secret != "" {
		auth = middleware.AuthMiddleware(cfg.Auth.Secret)
	}

	router := httpserver.NewRouter(routes, auth)
	timeouts := httpserver.Timeouts{
		Read:     time.Duration(cfg.HTTP.ReadTimeout) * time.Second,
		Write:    time.Duration(cfg.HTTP.WriteTimeout) * time.Second,
		Idle:     time.Duration(cfg.HTTP.IdleTimeout) * time.Second,
		Shutdown: time.Duration(cfg.HTTP.ShutdownTimeout) * time.Second,
	}
	app.server = httpserver.NewServer(cfg.HTTPAddress(), router, timeouts, logger)
	return app, nil
}

func (a *App) newStore(cfg *config.Config) (kv.Store, error) {
	switch cfg.Store.Backend {
	case config.BackendRedis:
		client, err := libredis.NewClient(libredis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return nil, err
		}
		a.redisClient = client
		return kv.NewRedis(client, cfg.AttributeTTL()), nil

	case config.BackendPostgres:
		sqlDB, err := libdb.NewPostgresDB(libdb.Options{
			DSN:          cfg.Database.DSN,
			MaxOpenConns: cfg.Database.MaxOpenConns,
			MaxIdleConns: cfg.Database.MaxIdleConns,
		})
		if err != nil {
			return nil, err
		}
		a.db = sqlDB
		store := kv.NewPostgres(sqlDB)
		if err := store.EnsureSchema(); err != nil {
			sqlDB.Close()
			a.db = nil
			return nil, err
		}
		return store, nil

	case config.BackendMemory:
		return kv.NewMemory(false), nil

	default:
		return nil, fmt.Errorf("app: unknown store backend %q", cfg.Store.Backend)
	}
}

// Run starts HTTP server.
func (a *App) Run(ctx context.Context) error {
	return a.server.Run(ctx)
}

// Close releases resources.
func (a *App) Close() {
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn("failed to close db", zap.Error(err))
		}
	}
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warn("failed to close redis", zap.Error(err))
		}
	}
}
