package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/linkpeel/linkpeel/models"
	"github.com/linkpeel/linkpeel/session"
)

// Health returns the handler for GET /api/health.
//
// Status degrades when more than 80% of the concurrency ceiling is in use.
func Health(orch *session.Orchestrator, maxConcurrency int, startTime time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		stats := orch.Stats()
		stats.MaxConcurrency = maxConcurrency

		status := "healthy"
		if maxConcurrency > 0 && stats.ActiveSessions > int(float64(maxConcurrency)*0.8) {
			status = "degraded"
		}

		c.JSON(http.StatusOK, models.HealthResponse{
			Status:  status,
			Uptime:  time.Since(startTime).Round(time.Second).String(),
			Stats:   stats,
			Version: "0.1.0",
		})
	}
}
