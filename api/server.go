package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/franclarke/multidub-ai/metrics"
	"github.com/franclarke/multidub-ai/orchestrator"
)

// NewRouter constructs a Gin engine with registered routes.
func NewRouter(orc *orchestrator.Orchestrator, m *metrics.Metrics) *gin.Engine {
	r := gin.New()
	// Minimal middleware: recovery; logger optional to reduce verbosity
	r.Use(gin.Recovery())

	RegisterVideoRoutes(r, orc)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})
	r.GET("/metrics", gin.WrapH(m.Handler()))
	return r
}
