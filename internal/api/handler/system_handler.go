package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/techtrends/pkg/logger"
)

// Healthz 健康检查，结果原样返回
// @Summary 健康检查
// @Tags 系统
// @Produce json
// @Success 200 {object} service.HealthReport
// @Failure 500 {object} service.HealthReport
// @Router /healthz [get]
func (h *Handler) Healthz(c *gin.Context) {
	report := h.health.Check(c.Request.Context())
	c.JSON(report.Status, report)
}

// Metrics 连接数与最近一次列表的帖子数
// @Summary 运行指标
// @Tags 系统
// @Produce json
// @Success 200 {object} metrics.Snapshot
// @Router /metrics [get]
func (h *Handler) Metrics(c *gin.Context) {
	snapshot := h.metrics.Snapshot()
	logger.Debug("Metrics request successful")
	c.JSON(http.StatusOK, snapshot)
}
