package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"catalog-api/internal/audit"
	"catalog-api/internal/auth"
	"catalog-api/internal/config"
	"catalog-api/internal/httpapi"
	"catalog-api/internal/metrics"
	"catalog-api/internal/products"
	"catalog-api/internal/store"
	"catalog-api/internal/users"
	"catalog-api/pkg/logger"
	"catalog-api/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/samber/oops"
	"github.com/spf13/cobra"
)

const (
	shutdownTimeout = 20 * time.Second
	connectRetries  = 4
)

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API (default)",
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	rootCtx := cmd.Context()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log := logger.New(cfg.App.Env)
	slog.SetDefault(log)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// The signing secret is validated before anything touches the network.
	authManager, err := auth.NewManager(cfg.Auth)
	if err != nil {
		log.Error("auth init failed", "err", err)
		return err
	}
	hasher, err := auth.NewBcryptHasher(cfg.Auth.BcryptCost)
	if err != nil {
		log.Error("password hasher init failed", "err", err)
		return err
	}

	db, err := openStore(rootCtx, cfg)
	if err != nil {
		log.Error("postgres init failed", "err", err)
		return err
	}
	defer db.Close()

	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb, err = utils.OpenRedis(rootCtx, utils.RedisConfig{Addr: cfg.Redis.Addr})
		if err != nil {
			log.Error("redis init failed", "err", err)
			return err
		}
		defer rdb.Close()
	}

	handlers, err := buildHandlers(cfg, db, rdb, hasher, authManager)
	if err != nil {
		log.Error("service init failed", "err", err)
		return err
	}

	r := httpapi.NewRouter(httpapi.RouterConfig{
		Logger:         log,
		Tokens:         authManager,
		CORSOrigins:    cfg.HTTP.CORSOrigins,
		TrustedProxies: cfg.HTTP.TrustedProxies,
	}, handlers)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("api listening", "addr", srv.Addr, "env", cfg.App.Env, "token_ttl", authManager.TTL().String())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-rootCtx.Done():
	case err := <-serveErr:
		if err != nil {
			log.Error("http server failed", "err", err)
			return oops.Code("HTTP_SERVE_FAILED").Wrap(err)
		}
	}
	log.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", "err", err)
		return err
	}
	return nil
}

// openStore connects to Postgres and applies pending migrations.
// The first connection is retried so the API can start alongside its database.
func openStore(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	var db *sql.DB
	err := utils.RetryStartup(ctx, connectRetries, 500*time.Millisecond, func(ctx context.Context) error {
		var err error
		db, err = utils.OpenPostgres(ctx, utils.DriverPgx, cfg.DB.URL, utils.PostgresPoolConfig{
			PingTimeout: cfg.DB.Timeout,
		})
		return err
	})
	if err != nil {
		return nil, oops.Code("DB_CONNECT_FAILED").With("operation", "connect to database").Wrap(err)
	}
	if err := store.Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func buildHandlers(cfg config.Config, db *sql.DB, rdb *redis.Client, hasher *auth.BcryptHasher, tokens *auth.Manager) (httpapi.Handlers, error) {
	userSvc := users.NewService(users.NewPostgresRepo(db, cfg.DB.Timeout), hasher)
	authSvc, err := auth.NewService(userSvc, hasher, tokens)
	if err != nil {
		return httpapi.Handlers{}, err
	}

	var cache products.Cache = products.NoopCache{}
	health := []httpapi.HealthCheck{{
		Name:  "postgres",
		Check: func(ctx context.Context) error { return utils.HealthCheck(ctx, db, 2*time.Second) },
	}}
	if rdb != nil {
		cache = products.NewRedisCache(rdb, cfg.Redis.CacheTTL)
		health = append(health, httpapi.HealthCheck{
			Name:  "redis",
			Check: func(ctx context.Context) error { return utils.RedisHealthCheck(ctx, rdb, time.Second) },
		})
	}

	return httpapi.Handlers{
		Auth:     authSvc,
		Users:    userSvc,
		Products: products.NewService(products.NewPostgresRepo(db, cfg.DB.Timeout), cache),
		Audit:    audit.NewService(audit.NewPostgresRepo(db, cfg.DB.Timeout)),
		Metrics:  metrics.New(),
		Health:   health,
	}, nil
}
