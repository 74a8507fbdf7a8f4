package handler

import (
	"context"

	"github.com/d60-Lab/techtrends/internal/metrics"
	"github.com/d60-Lab/techtrends/internal/repository"
	"github.com/d60-Lab/techtrends/internal/service"
)

// HealthChecker 健康检查
type HealthChecker interface {
	Check(ctx context.Context) service.HealthReport
}

// MetricsSource 计数器快照
type MetricsSource interface {
	Snapshot() metrics.Snapshot
}

// Handler 聚合所有 HTTP 处理函数的依赖
type Handler struct {
	posts   repository.PostRepository
	health  HealthChecker
	metrics MetricsSource
}

func NewHandler(posts repository.PostRepository, health HealthChecker, metrics MetricsSource) *Handler {
	return &Handler{posts: posts, health: health, metrics: metrics}
}
