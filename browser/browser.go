// Package browser owns the shared Chrome process and hands out isolated
// per-request sessions (fresh incognito contexts, no shared cookies or cache).
package browser

import (
	"log/slog"
	"net/url"
	"sync/atomic"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/ysmood/gson"

	"github.com/linkpeel/linkpeel/config"
	"github.com/linkpeel/linkpeel/models"
)

// Browser wraps the single Chrome process shared by all sessions.
// It is safe for concurrent use.
type Browser struct {
	browser  *rod.Browser
	launcher *launcher.Launcher
	cfg      config.BrowserConfig
	active   atomic.Int32
}

// New launches headless Chrome and connects to it.
func New(cfg config.BrowserConfig) (*Browser, error) {
	l := launcher.New().
		Headless(cfg.Headless).
		NoSandbox(cfg.NoSandbox)

	if cfg.Bin != "" {
		l = l.Bin(cfg.Bin)
	}
	if cfg.Proxy != "" {
		l = l.Proxy(cfg.Proxy)
	}

	l.Set(flags.Flag("disable-blink-features"), "AutomationControlled")
	l.Delete(flags.Flag("enable-automation"))
	l.Set(flags.Flag("disable-background-timer-throttling"))
	l.Set(flags.Flag("disable-backgrounding-occluded-windows"))
	l.Set(flags.Flag("disable-renderer-backgrounding"))
	l.Set(flags.Flag("disable-dev-shm-usage"))
	l.Set(flags.Flag("disable-extensions"))
	l.Set(flags.Flag("disable-default-apps"))
	l.Set(flags.Flag("disable-component-update"))
	l.Set(flags.Flag("no-first-run"))

	controlURL, err := l.Launch()
	if err != nil {
		return nil, models.NewSessionError(models.ErrCodeBrowserCrash,
			"failed to launch browser", err)
	}
	slog.Info("browser launched", "controlURL", controlURL)

	b := rod.New().ControlURL(controlURL)
	if err := b.Connect(); err != nil {
		l.Kill()
		return nil, models.NewSessionError(models.ErrCodeBrowserCrash,
			"failed to connect to browser", err)
	}

	return &Browser{browser: b, launcher: l, cfg: cfg}, nil
}

// ActiveSessions returns the number of currently open sessions.
func (b *Browser) ActiveSessions() int {
	return int(b.active.Load())
}

// Close kills the browser process. Call on graceful shutdown to prevent
// zombie Chrome processes.
func (b *Browser) Close() {
	slog.Info("browser shutting down")
	if err := b.browser.Close(); err != nil {
		slog.Warn("browser close failed", "error", err)
	}
	b.launcher.Kill()
	slog.Info("browser shutdown complete")
}

// Session is one isolated browser context plus a single page, dedicated to
// processing one URL. It must be closed on every exit path.
type Session struct {
	Page   *rod.Page
	ctx    *rod.Browser // incognito context
	router *rod.HijackRouter
	owner  *Browser
}

// NewSession creates a fresh incognito context and page, injects the stealth
// script, sets the configured browser identity, and mounts the resource
// filter. Everything here must happen before navigation: stealth JS, headers,
// and interception only apply to navigations that start after they are
// installed.
func (b *Browser) NewSession(policy *FilterPolicy, targetURL string) (*Session, error) {
	inc, err := b.browser.Incognito()
	if err != nil {
		return nil, models.NewSessionError(models.ErrCodeBrowserCrash,
			"failed to create incognito context", err)
	}

	page, err := inc.Page(proto.TargetCreateTarget{})
	if err != nil {
		disposeContext(inc)
		return nil, models.NewSessionError(models.ErrCodeBrowserCrash,
			"failed to open page", err)
	}

	if _, evalErr := page.EvalOnNewDocument(stealth.JS); evalErr != nil {
		slog.Warn("stealth injection failed, proceeding without it", "error", evalErr)
	}

	if uaErr := (proto.NetworkSetUserAgentOverride{
		UserAgent: b.cfg.UserAgent,
	}).Call(page); uaErr != nil {
		slog.Warn("user agent override failed", "error", uaErr)
	}

	// A plausible search referer; some origins gate content on it.
	if u, parseErr := url.Parse(targetURL); parseErr == nil {
		headers := proto.NetworkHeaders{
			"Referer": gson.New("https://www.google.com/search?q=" + url.QueryEscape(u.Hostname())),
		}
		_ = proto.NetworkSetExtraHTTPHeaders{Headers: headers}.Call(page)
	}

	router := mountFilter(page, policy)

	b.active.Add(1)
	return &Session{Page: page, ctx: inc, router: router, owner: b}, nil
}

// Close tears the session down: stops interception, closes the page, and
// disposes the incognito context. Failures are logged and never propagated,
// so a teardown problem cannot overwrite a session's primary result.
func (s *Session) Close() {
	if s.router != nil {
		if err := s.router.Stop(); err != nil {
			slog.Warn("session teardown: stopping hijack router failed", "error", err)
		}
	}
	if err := s.Page.Close(); err != nil {
		slog.Warn("session teardown: closing page failed", "error", err)
	}
	disposeContext(s.ctx)
	s.owner.active.Add(-1)
}

// disposeContext drops an incognito browser context so its cookies and cache
// are gone with it.
func disposeContext(inc *rod.Browser) {
	if inc.BrowserContextID == "" {
		return
	}
	err := proto.TargetDisposeBrowserContext{
		BrowserContextID: inc.BrowserContextID,
	}.Call(inc)
	if err != nil {
		slog.Warn("session teardown: disposing browser context failed", "error", err)
	}
}
