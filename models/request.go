package models

import (
	"fmt"
	"net/url"
)

// Fetch modes for a single scrape.
const (
	// FetchModeAuto uses the HTTP fast path for URLs that are not redirect
	// hubs and falls back to the browser when it fails.
	FetchModeAuto = "auto"
	// FetchModeBrowser always drives a headless browser session.
	FetchModeBrowser = "browser"
	// FetchModeHTTP forces the plain-HTTP fast path, no browser at all.
	FetchModeHTTP = "http"
)

// Output formats for the extracted body text.
const (
	OutputText     = "text"
	OutputMarkdown = "markdown"
)

// ScrapeOptions are the per-request knobs shared by single and batch scrapes.
type ScrapeOptions struct {
	// DisableScriptExecution additionally blocks Script sub-resources
	// during page load. Extraction flows should leave this off: client-side
	// redirects and deferred rendering depend on script.
	DisableScriptExecution bool `json:"disableScriptExecution,omitempty"`

	// FetchMode selects the fetching strategy. Default: "browser".
	FetchMode string `json:"fetchMode,omitempty" binding:"omitempty,oneof=auto browser http"`

	// OutputFormat controls the content field format. Default: "text".
	OutputFormat string `json:"outputFormat,omitempty" binding:"omitempty,oneof=text markdown"`

	// MaxAgeMs allows serving a cached result no older than this many
	// milliseconds. Zero disables cache lookup.
	MaxAgeMs int `json:"maxAgeMs,omitempty" binding:"omitempty,min=0"`
}

// Defaults applies default values to unset fields.
func (o *ScrapeOptions) Defaults() {
	if o.FetchMode == "" {
		o.FetchMode = FetchModeBrowser
	}
	if o.OutputFormat == "" {
		o.OutputFormat = OutputText
	}
}

// ScrapeRequest is one unit of work: a single URL plus its options.
// Immutable once accepted.
type ScrapeRequest struct {
	URL     string        `json:"url" binding:"required"`
	Options ScrapeOptions `json:"options"`
}

// BatchRequest is the payload for POST /api/scrape-batch and
// POST /api/resolve-batch.
type BatchRequest struct {
	URLs    []string      `json:"urls" binding:"required,min=1"`
	Options ScrapeOptions `json:"options"`
}

// ValidateURL checks that raw parses as an absolute http(s) URL.
// It runs before any browser session is created.
func ValidateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return NewSessionError(ErrCodeInvalidInput, "URL does not parse", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return NewSessionError(ErrCodeInvalidInput,
			fmt.Sprintf("URL scheme must be http or https, got %q", u.Scheme), nil)
	}
	if u.Host == "" {
		return NewSessionError(ErrCodeInvalidInput, "URL has no host", nil)
	}
	return nil
}
