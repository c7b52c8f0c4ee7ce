package controllers

import (
	"github.com/aihub/rag-qa-go/internal/knowledge"
	"github.com/aihub/rag-qa-go/internal/metrics"
)

// HealthController 健康检查控制器
type HealthController struct {
	BaseController
	store    knowledge.VectorStore
	embedder knowledge.Embedder
}

func (c *HealthController) Prepare() {
	if c.store == nil {
		c.store = services.Store
		c.embedder = services.Embedder
	}
}

// Health 报告各组件就绪状态
func (c *HealthController) Health() {
	c.JSONSuccess(map[string]interface{}{
		"status":       "ok",
		"vector_store": c.store.Ready(),
		"embedder":     c.embedder.Ready(),
	})
}

// MetricsController Prometheus指标控制器
type MetricsController struct {
	BaseController
}

// Metrics 输出Prometheus格式指标
func (c *MetricsController) Metrics() {
	metrics.Handler().ServeHTTP(c.Ctx.ResponseWriter, c.Ctx.Request)
}
