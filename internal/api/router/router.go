package router

import (
	"time"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"github.com/d60-Lab/posts-api/config"
	_ "github.com/d60-Lab/posts-api/docs"
	"github.com/d60-Lab/posts-api/internal/api/handler"
	"github.com/d60-Lab/posts-api/internal/middleware"
)

// Options 路由依赖
type Options struct {
	Config        *config.Config
	Logger        *zap.Logger
	Handler       *handler.Handler
	HealthHandler *handler.HealthHandler
	// Sentry 已初始化时挂载 sentrygin
	Sentry bool
}

// New 构建 gin 引擎并注册全部路由
func New(opts Options) *gin.Engine {
	cfg := opts.Config
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	r := gin.New()

	r.Use(ginzap.Ginzap(log, time.RFC3339, true))
	r.Use(ginzap.RecoveryWithZap(log, true))
	if opts.Sentry {
		r.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	r.Use(middleware.RequestID())
	if cfg.Tracing.Enabled {
		r.Use(otelgin.Middleware(cfg.Tracing.ServiceName))
	}
	r.Use(middleware.Metrics())
	r.Use(cors.New(corsConfig(cfg.Server.AllowOrigins)))
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	r.GET("/health", opts.HealthHandler.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	if cfg.Swagger.Enabled {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group("/api")
	api.Use(middleware.RateLimit(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
	api.Use(middleware.BodyLimit(cfg.Server.MaxBodyBytes))
	{
		posts := api.Group("/posts")
		{
			posts.GET("", opts.Handler.ListPosts)
			posts.GET("/:id", opts.Handler.GetPost)
			posts.POST("", opts.Handler.CreatePost)
			posts.PUT("/:id", opts.Handler.UpdatePost)
			posts.DELETE("/:id", opts.Handler.DeletePost)
		}
	}
	return r
}

func corsConfig(origins []string) cors.Config {
	c := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", middleware.RequestIDHeader},
		ExposeHeaders: []string{"Content-Length", middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			c.AllowAllOrigins = true
			return c
		}
	}
	if len(origins) == 0 {
		c.AllowAllOrigins = true
		return c
	}
	c.AllowOrigins = origins
	return c
}
