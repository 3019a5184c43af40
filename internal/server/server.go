// Package server is the thin HTTP shell over the compose pipeline.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	composerdomain "github.com/smallbiznis/threadly/internal/composer/domain"
	"github.com/smallbiznis/threadly/internal/config"
	"github.com/smallbiznis/threadly/internal/observability/logger"
	"github.com/smallbiznis/threadly/internal/observability/metrics"
	quotadomain "github.com/smallbiznis/threadly/internal/quota/domain"
	cachedomain "github.com/smallbiznis/threadly/internal/threadcache/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Server struct {
	cfg config.Config
	log *zap.Logger
	db  *gorm.DB

	engine      *gin.Engine
	composerSvc composerdomain.Service
	quotaSvc    quotadomain.Service
	cacheSvc    cachedomain.Service
	limiter     *rateLimiter
}

type ServerParam struct {
	fx.In

	Cfg      config.Config
	Log      *zap.Logger
	DB       *gorm.DB
	Engine   *gin.Engine
	Composer composerdomain.Service
	Quota    quotadomain.Service
	Cache    cachedomain.Service
}

func NewEngine(cfg config.Config, httpMetrics *metrics.HTTPMetrics) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(logger.GinMiddleware(logger.MiddlewareConfig{
		SkipPaths: []string{"/healthz", "/metrics"},
	}))
	engine.Use(metrics.GinMiddleware(httpMetrics))
	return engine
}

func NewServer(p ServerParam) *Server {
	return &Server{
		cfg:         p.Cfg,
		log:         p.Log.Named("server"),
		db:          p.DB,
		engine:      p.Engine,
		composerSvc: p.Composer,
		quotaSvc:    p.Quota,
		cacheSvc:    p.Cache,
		limiter:     newRateLimiter(p.Cfg.Quota.BurstLimit, p.Cfg.Quota.BurstWindow),
	}
}

func (s *Server) RegisterAPIRoutes() {
	s.engine.GET("/healthz", s.Health)
	s.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := s.engine.Group("/api/v1")
	api.Use(s.IdentityRequired())

	api.POST("/threads", s.BurstLimit(), s.ComposeThread)
	api.POST("/threads/preview", s.PreviewThread)
	api.GET("/usage", s.Usage)

	admin := api.Group("/admin")
	admin.Use(s.AdminRequired())
	admin.POST("/cache/clear", s.ClearCache)
	admin.POST("/premium", s.GrantPremium)
}

func (s *Server) Health(c *gin.Context) {
	sqlDB, err := s.db.DB()
	if err == nil {
		err = sqlDB.PingContext(c.Request.Context())
	}
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func RunHTTP(lc fx.Lifecycle, s *Server) {
	srv := &http.Server{
		Addr:              s.cfg.Server.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			s.log.Info("http server starting", zap.String("addr", srv.Addr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					s.log.Error("http server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}

var Module = fx.Module("server",
	fx.Provide(NewEngine),
	fx.Provide(NewServer),
	fx.Invoke(func(s *Server) { s.RegisterAPIRoutes() }),
	fx.Invoke(RunHTTP),
)
