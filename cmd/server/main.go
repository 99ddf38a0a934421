package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/d60-Lab/posts-api/config"
	"github.com/d60-Lab/posts-api/internal/api/handler"
	"github.com/d60-Lab/posts-api/internal/api/router"
	"github.com/d60-Lab/posts-api/internal/repository"
	"github.com/d60-Lab/posts-api/internal/service"
	"github.com/d60-Lab/posts-api/pkg/cache"
	"github.com/d60-Lab/posts-api/pkg/database"
	"github.com/d60-Lab/posts-api/pkg/logger"
	"github.com/d60-Lab/posts-api/pkg/tracing"
)

// @title Posts API
// @version 1.0
// @description 文章增删改查接口
// @BasePath /
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, err := logger.Init(cfg.Log)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()

	shutdownTracer, err := tracing.Init(ctx, cfg.Tracing)
	if err != nil {
		logger.Fatal("init tracing", zap.Error(err))
	}

	sentryOn := false
	if cfg.Sentry.DSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.Sentry.DSN,
			Environment:      cfg.Sentry.Environment,
			EnableTracing:    cfg.Sentry.TracesSampleRate > 0,
			TracesSampleRate: cfg.Sentry.TracesSampleRate,
		}); err != nil {
			logger.Warn("sentry disabled", zap.Error(err))
		} else {
			sentryOn = true
			defer sentry.Flush(2 * time.Second)
		}
	}

	db, err := database.InitDB(cfg)
	if err != nil {
		logger.Fatal("init database", zap.Error(err))
	}
	defer func() { _ = database.Close(db) }()

	var postRepo repository.PostRepository = repository.NewPostRepository(db)
	if cfg.Redis.Enabled {
		rdb, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			// 缓存不是必需的，连不上就直接读库
			logger.Warn("redis unavailable, cache disabled", zap.Error(err))
		} else {
			defer rdb.Close()
			postRepo = repository.NewCachedPostRepository(postRepo, rdb, cfg.Redis.TTL)
			logger.Info("post cache enabled", zap.String("addr", cfg.Redis.Addr), zap.Duration("ttl", cfg.Redis.TTL))
		}
	}

	postSvc := service.NewPostService(postRepo)

	gin.SetMode(cfg.Server.Mode)
	engine := router.New(router.Options{
		Config:  cfg,
		Logger:  log,
		Handler: handler.NewHandler(postSvc),
		HealthHandler: handler.NewHealthHandler(func(ctx context.Context) error {
			return database.Ping(ctx, db)
		}),
		Sentry: sentryOn,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info("server started", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("listen", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	if err := shutdownTracer(shutdownCtx); err != nil {
		logger.Error("tracer shutdown", zap.Error(err))
	}
}
