package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/linkpeel/linkpeel/models"
)

// batchRunner is the slice of the batch scheduler the handlers need.
type batchRunner interface {
	ProcessBatch(ctx context.Context, urls []string, opts models.ScrapeOptions) ([]*models.SessionResult, error)
	ResolveBatch(ctx context.Context, urls []string) ([]*models.SessionResult, error)
}

// urlProcessor is the slice of the session orchestrator the single-URL
// handlers need.
type urlProcessor interface {
	Process(ctx context.Context, req *models.ScrapeRequest) *models.SessionResult
	Resolve(ctx context.Context, rawURL string) *models.SessionResult
}

// Resolve returns the handler for GET /api/resolve: redirect resolution
// without extraction.
func Resolve(orch urlProcessor) gin.HandlerFunc {
	return func(c *gin.Context) {
		rawURL := c.Query("url")
		if err := models.ValidateURL(rawURL); err != nil {
			respondInvalid(c, rawURL, err)
			return
		}

		result := orch.Resolve(c.Request.Context(), rawURL)
		if !result.Success {
			respondFailure(c, result)
			return
		}

		c.JSON(http.StatusOK, result.ResolveView())
	}
}

// ResolveBatch returns the handler for POST /api/resolve-batch.
func ResolveBatch(sched batchRunner) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.BatchRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Message: "urls is required and must be a non-empty array",
				Error:   err.Error(),
				Code:    models.ErrCodeInvalidInput,
			})
			return
		}

		results, err := sched.ResolveBatch(c.Request.Context(), req.URLs)
		if err != nil {
			se := models.AsSessionError(err)
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Message: se.Message,
				Error:   se.Message,
				Code:    se.Code,
			})
			return
		}

		views := make([]*models.ResolveResult, len(results))
		for i, r := range results {
			views[i] = r.ResolveView()
		}
		c.JSON(http.StatusOK, views)
	}
}
