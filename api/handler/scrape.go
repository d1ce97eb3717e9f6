package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/linkpeel/linkpeel/cache"
	"github.com/linkpeel/linkpeel/models"
)

// Scrape returns the handler for GET /api/scrape.
//
// The URL arrives as a query parameter; options map to further query
// parameters. A successful scrape responds with the flattened ArticleRecord;
// a failed session maps to a 500 with the diagnostic envelope, except for
// input problems which are 400 and never reach a browser.
func Scrape(orch urlProcessor, cc *cache.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		rawURL := c.Query("url")
		if err := models.ValidateURL(rawURL); err != nil {
			respondInvalid(c, rawURL, err)
			return
		}

		opts := optionsFromQuery(c)
		opts.Defaults()

		cacheKey := cache.Key(rawURL, opts)
		if cc != nil && opts.MaxAgeMs > 0 {
			if cached, hit := cc.Get(cacheKey, opts.MaxAgeMs); hit {
				c.JSON(http.StatusOK, cached.Data)
				return
			}
		}

		result := orch.Process(c.Request.Context(), &models.ScrapeRequest{
			URL:     rawURL,
			Options: opts,
		})

		if !result.Success {
			respondFailure(c, result)
			return
		}

		if cc != nil {
			cc.Set(cacheKey, result)
		}

		c.JSON(http.StatusOK, result.Data)
	}
}

// ScrapeBatch returns the handler for POST /api/scrape-batch.
//
// Batch responses are always 200 with per-item success or failure embedded
// in the ordered array: partial success is the expected common case. Only
// malformed bodies and count violations are 400.
func ScrapeBatch(sched batchRunner) gin.HandlerFunc {
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
		req.Options.Defaults()

		results, err := sched.ProcessBatch(c.Request.Context(), req.URLs, req.Options)
		if err != nil {
			se := models.AsSessionError(err)
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Message: se.Message,
				Error:   se.Message,
				Code:    se.Code,
			})
			return
		}

		c.JSON(http.StatusOK, results)
	}
}

// optionsFromQuery maps query parameters onto ScrapeOptions.
func optionsFromQuery(c *gin.Context) models.ScrapeOptions {
	maxAge, _ := strconv.Atoi(c.Query("maxAgeMs"))
	return models.ScrapeOptions{
		DisableScriptExecution: c.Query("disableScriptExecution") == "true",
		FetchMode:              c.Query("fetchMode"),
		OutputFormat:           c.Query("format"),
		MaxAgeMs:               maxAge,
	}
}

// respondInvalid writes the 400 response for pre-validation failures.
func respondInvalid(c *gin.Context, rawURL string, err error) {
	se := models.AsSessionError(err)
	c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Message:     "invalid URL: must be an absolute http(s) URL",
		Error:       se.Message,
		Code:        se.Code,
		OriginalURL: rawURL,
	})
}

// respondFailure maps a failed session envelope onto the HTTP error shape.
func respondFailure(c *gin.Context, result *models.SessionResult) {
	status := http.StatusInternalServerError
	if result.Code == models.ErrCodeInvalidInput {
		status = http.StatusBadRequest
	}
	c.JSON(status, models.ErrorResponse{
		Message:     "failed to process URL",
		Error:       result.Error,
		Code:        result.Code,
		OriginalURL: result.OriginalURL,
		FinalURL:    result.FinalURL,
		Details:     result.Details,
	})
}
