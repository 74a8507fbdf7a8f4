// Package api 组装 gin 路由与中间件
package api

import (
	"fmt"
	"net/http"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	sentrygin "github.com/getsentry/sentry-go/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/d60-Lab/techtrends/config"
	_ "github.com/d60-Lab/techtrends/docs"
	"github.com/d60-Lab/techtrends/internal/api/handler"
	"github.com/d60-Lab/techtrends/internal/api/middleware"
	"github.com/d60-Lab/techtrends/internal/api/web"
	"github.com/d60-Lab/techtrends/internal/metrics"
	"github.com/d60-Lab/techtrends/pkg/response"
)

// NewRouter 注册全部路由。prom 为 nil 时不暴露 Prometheus 指标
func NewRouter(cfg *config.Config, h *handler.Handler, prom *metrics.Prometheus) (*gin.Engine, error) {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.Sentry.DSN != "" {
		r.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	r.Use(middleware.RequestID(), middleware.Logger())
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics/prometheus"})))
	if cfg.Tracing.Enabled {
		r.Use(otelgin.Middleware(cfg.Tracing.ServiceName))
	}
	if prom != nil {
		r.Use(prom.Middleware())
	}

	tmpl, err := web.Templates()
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	r.SetHTMLTemplate(tmpl)
	r.StaticFS("/static", web.Static())

	pageLimit := gin.HandlerFunc(func(c *gin.Context) { c.Next() })
	apiLimit := pageLimit
	if cfg.RateLimit.Enabled() {
		pageLimit = middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst, func(c *gin.Context) {
			c.String(http.StatusTooManyRequests, "Too many submissions, please slow down.")
		}).Handler()
		apiLimit = middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst, response.TooManyRequests).Handler()
	}

	r.GET("/", h.Index)
	r.GET("/about", h.About)
	r.GET("/create", h.CreateForm)
	r.POST("/create", pageLimit, h.CreatePost)
	r.GET("/healthz", h.Healthz)
	r.GET("/metrics", h.Metrics)
	if prom != nil {
		r.GET("/metrics/prometheus", gin.WrapH(prom.Handler()))
	}
	r.GET("/:id", h.ShowPost)

	v1 := r.Group("/api/v1")
	{
		v1.GET("/posts", h.ListPosts)
		v1.GET("/posts/:id", h.GetPost)
		v1.POST("/posts", apiLimit, h.CreatePostAPI)
	}

	if cfg.Swagger.Enabled {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	r.NoRoute(h.NotFoundPage)
	return r, nil
}
