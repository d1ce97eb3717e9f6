// Package resolver drives one browser session from an input URL to the URL
// it finally settles at, following client-side redirects used by
// link-wrapping services such as news aggregators.
package resolver

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"

	"github.com/linkpeel/linkpeel/config"
	"github.com/linkpeel/linkpeel/models"
)

// HubPatterns is the set of substrings identifying intermediate redirect
// pages. A URL containing any pattern is considered still "on the hub".
type HubPatterns []string

// Match reports whether rawURL looks like an intermediate redirect page.
// Containment is deliberately loose; the set is configuration, not a
// hard-coded contract.
func (p HubPatterns) Match(rawURL string) bool {
	lower := strings.ToLower(rawURL)
	for _, pattern := range p {
		if pattern != "" && strings.Contains(lower, strings.ToLower(pattern)) {
			return true
		}
	}
	return false
}

// Resolver resolves redirects within a live page.
type Resolver struct {
	primaryTimeout   time.Duration
	secondaryTimeout time.Duration
	patterns         HubPatterns
}

// New builds a Resolver from config.
func New(cfg config.ResolverConfig) *Resolver {
	return &Resolver{
		primaryTimeout:   cfg.PrimaryTimeout,
		secondaryTimeout: cfg.SecondaryTimeout,
		patterns:         HubPatterns(cfg.HubPatterns),
	}
}

// IsHub reports whether rawURL matches the configured hub patterns.
func (r *Resolver) IsHub(rawURL string) bool {
	return r.patterns.Match(rawURL)
}

// Resolve navigates the page to inputURL and returns the URL the session is
// resting at once any in-page redirect has completed.
//
// The primary navigation waits for DOM readiness; a navigation error there
// (timeout, DNS, TLS) is fatal to the session. If the settled URL still looks
// like a redirect hub, a secondary wait gives the client-side redirect time
// to fire; exceeding that wait is soft and keeps the best-known URL. A URL
// that matches the hub patterns even after both steps means no article page
// was ever reached, which is reported as a distinct hard failure alongside
// the hub URL itself.
func (r *Resolver) Resolve(page *rod.Page, inputURL string) (string, error) {
	// The redirect waiter must be armed before navigation: a client-side
	// redirect can fire while the hub page is still loading, and a listener
	// registered afterwards would miss its lifecycle events.
	var redirected func()
	if r.patterns.Match(inputURL) {
		redirected = r.awaitRedirect(page, inputURL)
	}

	primary := page.Timeout(r.primaryTimeout)
	if err := primary.Navigate(inputURL); err != nil {
		return "", categorize(err, "primary navigation failed")
	}
	if err := primary.WaitDOMStable(300*time.Millisecond, 0.1); err != nil {
		// The DOM not converging is not the same as the page not loading.
		slog.Debug("DOM did not stabilize, proceeding with current state",
			"url", inputURL, "error", err)
	}

	current := currentURL(page, inputURL)

	if redirected != nil && r.patterns.Match(current) {
		// Blocks until the redirect settles off the hub or the secondary
		// timeout elapses; a timeout here is soft.
		r.waitBounded(redirected)
		current = currentURL(page, current)
	}

	if r.patterns.Match(current) {
		return current, models.NewSessionError(models.ErrCodeRedirectNotCompleted,
			"page never redirected away from the redirect hub", nil)
	}

	return current, nil
}

// awaitRedirect arms a lifecycle listener that completes once the page has
// settled on a URL off the hub. The hub page's own load events keep the wait
// alive, so only the redirect's navigation releases it.
func (r *Resolver) awaitRedirect(page *rod.Page, fallback string) func() {
	scoped := page.Timeout(r.primaryTimeout + r.secondaryTimeout)
	_ = proto.PageSetLifecycleEventsEnabled{Enabled: true}.Call(scoped)

	return scoped.EachEvent(func(e *proto.PageLifecycleEvent) bool {
		return r.redirectSettled(e.Name, currentURL(page, fallback))
	})
}

// redirectSettled decides whether a lifecycle event marks the end of the
// redirect: the network went almost idle on a URL that is no longer a hub.
func (r *Resolver) redirectSettled(name proto.PageLifecycleEventName, url string) bool {
	return name == proto.PageLifecycleEventNameNetworkAlmostIdle && !r.patterns.Match(url)
}

// waitBounded blocks on wait for at most the secondary timeout. The listener's
// own scope covers both navigation phases, so the independent secondary bound
// is enforced here, at the point blocking starts.
func (r *Resolver) waitBounded(wait func()) {
	done := make(chan struct{})
	go func() {
		wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(r.secondaryTimeout):
	}
}

// currentURL reads the page's URL, falling back when the target is gone.
func currentURL(page *rod.Page, fallback string) string {
	info, err := page.Info()
	if err != nil || info.URL == "" {
		return fallback
	}
	return info.URL
}

// categorize wraps raw navigation errors into typed SessionErrors.
func categorize(err error, msg string) *models.SessionError {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return models.NewSessionError(models.ErrCodeTimeout, msg, err)
	case errors.Is(err, context.Canceled):
		return models.NewSessionError(models.ErrCodeTimeout, "session canceled", err)
	default:
		return models.NewSessionError(models.ErrCodeNavigation, msg, err)
	}
}
