// Package fetch is the plain-HTTP fast path: for URLs that are not redirect
// hubs, a direct GET with a Chrome TLS fingerprint is often enough to obtain
// the rendered HTML without paying for a browser session. Redirect hubs
// always need the browser, since their redirects fire in page script.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	utls "github.com/refraction-networking/utls"

	"github.com/linkpeel/linkpeel/config"
	"github.com/linkpeel/linkpeel/models"
)

// maxBodyBytes caps the response body read.
const maxBodyBytes = 10 * 1024 * 1024

// Result is one successful HTTP fetch.
type Result struct {
	HTML     string
	FinalURL string
}

// Client performs HTTP requests with a Chrome TLS fingerprint so origins that
// fingerprint TLS treat it like a real browser. Safe for concurrent use.
type Client struct {
	userAgent string
	timeout   time.Duration
	proxy     string
}

// NewClient builds the fast-path client. The user agent should match the one
// the browser sessions present.
func NewClient(cfg config.FetchConfig, userAgent, proxy string) *Client {
	return &Client{userAgent: userAgent, timeout: cfg.Timeout, proxy: proxy}
}

// Get retrieves targetURL, following HTTP-level redirects, and returns the
// body plus the URL the response actually came from.
func (c *Client) Get(ctx context.Context, targetURL string) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	transport := &http.Transport{
		DialTLSContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			return dialTLSChrome(ctx, network, addr)
		},
	}
	if c.proxy != "" {
		if proxyURL, err := url.Parse(c.proxy); err == nil &&
			(proxyURL.Scheme == "http" || proxyURL.Scheme == "https") {
			transport.Proxy = http.ProxyURL(proxyURL)
		}
	}

	client := &http.Client{Transport: transport}
	defer client.CloseIdleConnections()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, models.NewSessionError(models.ErrCodeNavigation,
			"building HTTP request failed", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, models.NewSessionError(models.ErrCodeTimeout,
				"HTTP fetch timed out", err)
		}
		return nil, models.NewSessionError(models.ErrCodeNavigation,
			"HTTP fetch failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, models.NewSessionError(models.ErrCodeNavigation,
			fmt.Sprintf("HTTP %d for %s", resp.StatusCode, targetURL), nil)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, models.NewSessionError(models.ErrCodeNavigation,
			"reading HTTP response failed", err)
	}

	finalURL := targetURL
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}

	return &Result{HTML: string(body), FinalURL: finalURL}, nil
}

// dialTLSChrome establishes a TLS connection presenting a Chrome ClientHello.
func dialTLSChrome(ctx context.Context, network, addr string) (net.Conn, error) {
	dialer := &net.Dialer{}
	rawConn, err := dialer.DialContext(ctx, network, addr)
	if err != nil {
		return nil, err
	}

	host, _, _ := net.SplitHostPort(addr)
	tlsConn := utls.UClient(rawConn, &utls.Config{
		ServerName: host,
	}, utls.HelloChrome_Auto)

	if err := tlsConn.HandshakeContext(ctx); err != nil {
		rawConn.Close()
		return nil, err
	}
	return tlsConn, nil
}
