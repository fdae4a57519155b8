package modules

import (
	"expvar"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/solargrowth/internal/container"
	"github.com/oksasatya/solargrowth/internal/interface/middleware"
	"github.com/oksasatya/solargrowth/pkg/metrics"
)

// DebugModule exposes expvar under /api/debug/vars and Prometheus at the
// root /metrics, where scrapers expect it.
type DebugModule struct {
	Root    gin.IRoutes
	Metrics *metrics.Ledger
}

func NewDebugModule(root gin.IRoutes, m *metrics.Ledger) *DebugModule {
	return &DebugModule{Root: root, Metrics: m}
}

func (m *DebugModule) Register(rg *gin.RouterGroup) {
	rl := middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByIP(), middleware.AllowPrivateIP())
	rg.GET("/debug/vars", rl, gin.WrapH(expvar.Handler()))
	if m.Metrics != nil && m.Root != nil {
		m.Root.GET("/metrics", rl, gin.WrapH(m.Metrics.Handler()))
	}
}
