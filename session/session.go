// Package session orchestrates the lifecycle of processing one URL: acquire
// an isolated browser session, resolve redirects, extract content, and fold
// every outcome into the uniform result envelope. Nothing escapes Process,
// not even a panic.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"runtime/debug"
	"time"

	"github.com/linkpeel/linkpeel/browser"
	"github.com/linkpeel/linkpeel/config"
	"github.com/linkpeel/linkpeel/extract"
	"github.com/linkpeel/linkpeel/fetch"
	"github.com/linkpeel/linkpeel/models"
	"github.com/linkpeel/linkpeel/resolver"
)

// Orchestrator processes single URLs end to end. Safe for concurrent use;
// each call owns its session exclusively.
type Orchestrator struct {
	browser    *browser.Browser
	resolver   *resolver.Resolver
	extractor  *extract.Extractor
	fetcher    *fetch.Client // nil disables the HTTP fast path
	browserCfg config.BrowserConfig
}

// NewOrchestrator wires the pipeline together. fetcher may be nil.
func NewOrchestrator(b *browser.Browser, r *resolver.Resolver, ex *extract.Extractor,
	fetcher *fetch.Client, browserCfg config.BrowserConfig) *Orchestrator {
	return &Orchestrator{
		browser:    b,
		resolver:   r,
		extractor:  ex,
		fetcher:    fetcher,
		browserCfg: browserCfg,
	}
}

// Process resolves and extracts one URL, always returning a SessionResult.
func (o *Orchestrator) Process(ctx context.Context, req *models.ScrapeRequest) (res *models.SessionResult) {
	start := time.Now()
	defer func() {
		if rec := recover(); rec != nil {
			slog.Error("session panic recovered",
				"url", req.URL, "panic", rec, "stack", string(debug.Stack()))
			res = models.Failure(req.URL, "", models.NewSessionError(
				models.ErrCodeInternal, "unexpected internal failure",
				fmt.Errorf("panic: %v", rec)))
		}
		res.DurationSeconds = seconds(start)
	}()

	if err := models.ValidateURL(req.URL); err != nil {
		return models.Failure(req.URL, "", err)
	}

	opts := req.Options
	opts.Defaults()

	if o.fetcher != nil && o.wantsHTTP(opts.FetchMode, req.URL) {
		res, fallThrough := o.processHTTP(ctx, req.URL, opts)
		if !fallThrough {
			return res
		}
		slog.Debug("HTTP fast path failed, falling back to browser",
			"url", req.URL, "error", res.Error)
	}

	return o.processBrowser(ctx, req.URL, opts)
}

// Resolve runs redirect resolution only, without extraction.
func (o *Orchestrator) Resolve(ctx context.Context, rawURL string) (res *models.SessionResult) {
	start := time.Now()
	defer func() {
		if rec := recover(); rec != nil {
			slog.Error("session panic recovered",
				"url", rawURL, "panic", rec, "stack", string(debug.Stack()))
			res = models.Failure(rawURL, "", models.NewSessionError(
				models.ErrCodeInternal, "unexpected internal failure",
				fmt.Errorf("panic: %v", rec)))
		}
		res.DurationSeconds = seconds(start)
	}()

	if err := models.ValidateURL(rawURL); err != nil {
		return models.Failure(rawURL, "", err)
	}

	policy := browser.NewFilterPolicy(o.browserCfg.BlockedResourceTypes,
		false, o.browserCfg.BlockTrackers)

	sess, err := o.browser.NewSession(policy, rawURL)
	if err != nil {
		return models.Failure(rawURL, "", err)
	}
	defer sess.Close()

	finalURL, err := o.resolver.Resolve(sess.Page.Context(ctx), rawURL)
	if err != nil {
		return models.Failure(rawURL, finalURL, err)
	}

	return &models.SessionResult{
		Success:     true,
		OriginalURL: rawURL,
		FinalURL:    finalURL,
	}
}

// processBrowser is the full headless-browser pipeline for one URL.
func (o *Orchestrator) processBrowser(ctx context.Context, rawURL string, opts models.ScrapeOptions) *models.SessionResult {
	policy := browser.NewFilterPolicy(o.browserCfg.BlockedResourceTypes,
		opts.DisableScriptExecution, o.browserCfg.BlockTrackers)

	sess, err := o.browser.NewSession(policy, rawURL)
	if err != nil {
		return models.Failure(rawURL, "", err)
	}
	// Teardown runs on every exit path; Close logs its own failures and
	// can never disturb the result being returned.
	defer sess.Close()

	page := sess.Page.Context(ctx)

	finalURL, err := o.resolver.Resolve(page, rawURL)
	if err != nil {
		return models.Failure(rawURL, finalURL, err)
	}

	html, err := page.HTML()
	if err != nil {
		return models.Failure(rawURL, finalURL, models.NewSessionError(
			models.ErrCodeNavigation, "failed to read page HTML", err))
	}

	record, err := o.extractor.FromHTML(html, finalURL, opts.OutputFormat)
	if err != nil {
		return models.Failure(rawURL, finalURL, err)
	}

	return &models.SessionResult{
		Success:     true,
		OriginalURL: rawURL,
		FinalURL:    finalURL,
		Data:        record,
	}
}

// processHTTP attempts the fast path. fallThrough is true when mode "auto"
// should retry with the browser instead of surfacing the returned failure.
func (o *Orchestrator) processHTTP(ctx context.Context, rawURL string, opts models.ScrapeOptions) (*models.SessionResult, bool) {
	result, err := o.fetcher.Get(ctx, rawURL)
	if err != nil {
		return models.Failure(rawURL, "", err), opts.FetchMode == models.FetchModeAuto
	}

	record, err := o.extractor.FromHTML(result.HTML, result.FinalURL, opts.OutputFormat)
	if err != nil {
		// A thin or script-dependent page may still render real content
		// in a browser; only a forced "http" mode gives up here.
		return models.Failure(rawURL, result.FinalURL, err), opts.FetchMode == models.FetchModeAuto
	}

	return &models.SessionResult{
		Success:     true,
		OriginalURL: rawURL,
		FinalURL:    result.FinalURL,
		Data:        record,
	}, false
}

// wantsHTTP decides whether the fast path applies. Hub URLs never qualify:
// their redirects only fire in page script.
func (o *Orchestrator) wantsHTTP(mode, rawURL string) bool {
	switch mode {
	case models.FetchModeHTTP:
		return true
	case models.FetchModeAuto:
		return !o.resolver.IsHub(rawURL)
	default:
		return false
	}
}

// Stats reports current session accounting for health checks.
func (o *Orchestrator) Stats() models.SessionStats {
	return models.SessionStats{ActiveSessions: o.browser.ActiveSessions()}
}

// seconds is the wall-clock duration since start, rounded to centiseconds.
func seconds(start time.Time) float64 {
	return math.Round(time.Since(start).Seconds()*100) / 100
}
