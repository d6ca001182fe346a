package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"que-aula/backend/config"
	"que-aula/backend/internal/api/handler"
	"que-aula/backend/internal/api/middleware"
)

// Options 路由可选依赖
type Options struct {
	// DB 用于 /health 连通性检查，可为 nil
	DB handler.Pinger
	// Gatherer 非 nil 且指标已启用时挂载 Prometheus 端点
	Gatherer prometheus.Gatherer
}

// Setup 初始化并返回 Gin 路由引擎
func Setup(cfg *config.Config, h *handler.Handler, opts Options, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))

	// ── 服务信息 / 健康检查 ──
	r.GET("/", handler.Root)
	r.GET("/health", handler.Health(opts.DB))

	if cfg.Metrics.Enabled && opts.Gatherer != nil {
		r.GET(cfg.Metrics.Path, gin.WrapH(promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})))
	}

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		classes := v1.Group("/classes")
		{
			classes.GET("", h.Class.ListClasses)
			classes.GET("/export", h.Export.ExportClasses)
			classes.GET("/:code", h.Class.GetClass)
			classes.POST("", middleware.BodyLimit(int64(cfg.Server.BodyLimitMB)<<20), h.Class.CreateClasses)
			classes.PUT("/:code", middleware.BodyLimit(int64(cfg.Server.BodyLimitMB)<<20), h.Class.UpdateClass)
			classes.DELETE("/:code", h.Class.DeleteClass)
		}
	}

	return r
}
