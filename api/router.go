package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/linkpeel/linkpeel/api/handler"
	"github.com/linkpeel/linkpeel/api/middleware"
	"github.com/linkpeel/linkpeel/batch"
	"github.com/linkpeel/linkpeel/cache"
	"github.com/linkpeel/linkpeel/config"
	"github.com/linkpeel/linkpeel/session"
)

// banner is the plain-text response for GET /.
const banner = "linkpeel: redirect-resolving article extraction service\n"

// NewRouter creates a configured Gin engine with all routes and middleware.
//
// The banner and health endpoints sit outside auth so probes always work;
// everything under /api/scrape* and /api/resolve* is protected when API keys
// are configured.
func NewRouter(orch *session.Orchestrator, sched *batch.Scheduler, cc *cache.Cache,
	cfg *config.Config, startTime time.Time) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.Logger())

	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, banner)
	})

	apiGroup := r.Group("/api")
	apiGroup.GET("/health", handler.Health(orch, cfg.Batch.MaxConcurrency, startTime))

	protected := apiGroup.Group("")
	protected.Use(middleware.Auth(cfg.Auth.APIKeys))
	if cfg.RateLimit.Enabled {
		protected.Use(middleware.RateLimit(cfg.RateLimit))
	}

	protected.GET("/scrape", handler.Scrape(orch, cc))
	protected.POST("/scrape-batch", handler.ScrapeBatch(sched))
	protected.GET("/resolve", handler.Resolve(orch))
	protected.POST("/resolve-batch", handler.ResolveBatch(sched))

	return r
}
