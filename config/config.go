package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration. It is read once at startup
// and passed explicitly into constructors; nothing reads the environment
// after Load returns.
type Config struct {
	Server    ServerConfig
	Browser   BrowserConfig
	Resolver  ResolverConfig
	Extract   ExtractConfig
	Batch     BatchConfig
	Fetch     FetchConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Cache     CacheConfig
	Log       LogConfig
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Host string // default: "0.0.0.0"
	Port int    // default: 3000
	Mode string // "debug", "release", "test"; default: "release"
}

// BrowserConfig controls the Chrome instance shared by all sessions.
// Each request still gets its own incognito browser context.
type BrowserConfig struct {
	// Headless controls whether Chrome runs headless.
	Headless bool // default: true

	// NoSandbox disables Chrome's sandbox (needed in Docker).
	NoSandbox bool // default: false

	// Bin overrides the Chromium binary path.
	Bin string

	// Proxy is an optional proxy URL applied at launch.
	Proxy string

	// UserAgent is the identity string set on every page before navigation.
	UserAgent string

	// BlockedResourceTypes lists resource types aborted during page load.
	// default: ["Image", "Stylesheet", "Font", "Media"]
	BlockedResourceTypes []string

	// BlockTrackers enables the ad/analytics domain denylist.
	BlockTrackers bool // default: true
}

// ResolverConfig controls redirect resolution.
type ResolverConfig struct {
	// PrimaryTimeout bounds the initial navigation (DOM-ready wait included).
	PrimaryTimeout time.Duration // default: 60s

	// SecondaryTimeout bounds the wait for a client-side redirect away
	// from a redirect hub. Exceeding it is a soft failure.
	SecondaryTimeout time.Duration // default: 30s

	// HubPatterns are substrings identifying intermediate redirect pages.
	// Matching is containment against the full URL, so entries can carry
	// path signatures ("news.google.com/articles") as well as bare hosts.
	HubPatterns []string
}

// ExtractConfig controls the content extraction cascade.
type ExtractConfig struct {
	// ContainerSelectors is the ordered CSS selector probe for the main
	// content container, most specific first.
	ContainerSelectors []string

	// MinParagraphChars is the minimum trimmed length for a text block
	// to count as content.
	MinParagraphChars int // default: 20

	// MinContentChars is the threshold below which the cascade falls
	// back to readability and then to the container's full text.
	MinContentChars int // default: 120
}

// BatchConfig controls the batch scheduler.
type BatchConfig struct {
	// MaxConcurrency is the ceiling on simultaneously open sessions.
	MaxConcurrency int // default: 100

	// MaxBatchSize is the maximum number of URLs accepted per batch.
	MaxBatchSize int // default: 100
}

// FetchConfig controls the plain-HTTP fast path.
type FetchConfig struct {
	// Enabled toggles the HTTP fast path for non-hub URLs.
	Enabled bool // default: true

	// Timeout is the deadline for one HTTP fetch.
	Timeout time.Duration // default: 12s
}

// AuthConfig controls API key authentication.
type AuthConfig struct {
	// APIKeys is the list of valid keys. Empty means open access.
	APIKeys []string
}

// RateLimitConfig controls per-identity rate limiting.
type RateLimitConfig struct {
	// Enabled toggles the rate-limit middleware.
	Enabled bool // default: false

	// RequestsPerSecond is the sustained rate per identity.
	RequestsPerSecond float64 // default: 5

	// Burst is the maximum burst size per identity.
	Burst int // default: 10
}

// CacheConfig controls the scrape result cache.
type CacheConfig struct {
	// MaxEntries is the maximum number of cached envelopes.
	MaxEntries int // default: 1000
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "json"
}

// DefaultUserAgent is sent on every browser navigation. Some origins serve
// degraded or empty pages to unrecognized clients.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

// DefaultHubPatterns identify the intermediate redirect pages this service
// was built to unwrap. Overridable via LINKPEEL_HUB_PATTERNS; matching is
// containment, a heuristic rather than a guarantee.
var DefaultHubPatterns = []string{
	"news.google.com/articles",
	"news.google.com/rss/articles",
	"news.google.com/read",
	"consent.google.com",
}

// DefaultContainerSelectors is the content container probe, most specific
// CMS patterns first, bare article element last.
var DefaultContainerSelectors = []string{
	"[data-module='ArticleBody']",
	"[data-qa='article-body']",
	".article__body",
	".article-body",
	".story__content-body",
	".story-body",
	".entry-content",
	".post-content",
	".article-content",
	".story-content",
	"#main-content",
	"main article",
	"article",
}

// Load reads configuration from environment variables with documented defaults.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Host: envOr("LINKPEEL_HOST", "0.0.0.0"),
			Port: envIntOr("LINKPEEL_PORT", 3000),
			Mode: envOr("LINKPEEL_MODE", "release"),
		},
		Browser: BrowserConfig{
			Headless:  envBoolOr("LINKPEEL_HEADLESS", true),
			NoSandbox: envBoolOr("LINKPEEL_NO_SANDBOX", false),
			Bin:       os.Getenv("LINKPEEL_BROWSER_BIN"),
			Proxy:     os.Getenv("LINKPEEL_PROXY"),
			UserAgent: envOr("LINKPEEL_USER_AGENT", DefaultUserAgent),
			BlockedResourceTypes: envSliceOr("LINKPEEL_BLOCKED_RESOURCES", []string{
				"Image", "Stylesheet", "Font", "Media",
			}),
			BlockTrackers: envBoolOr("LINKPEEL_BLOCK_TRACKERS", true),
		},
		Resolver: ResolverConfig{
			PrimaryTimeout:   envDurationOr("LINKPEEL_PRIMARY_TIMEOUT", 60*time.Second),
			SecondaryTimeout: envDurationOr("LINKPEEL_SECONDARY_TIMEOUT", 30*time.Second),
			HubPatterns:      envSliceOr("LINKPEEL_HUB_PATTERNS", DefaultHubPatterns),
		},
		Extract: ExtractConfig{
			ContainerSelectors: envSliceOr("LINKPEEL_CONTENT_SELECTORS", DefaultContainerSelectors),
			MinParagraphChars:  envIntOr("LINKPEEL_MIN_PARAGRAPH_CHARS", 20),
			MinContentChars:    envIntOr("LINKPEEL_MIN_CONTENT_CHARS", 120),
		},
		Batch: BatchConfig{
			MaxConcurrency: envIntOr("LINKPEEL_MAX_CONCURRENCY", 100),
			MaxBatchSize:   envIntOr("LINKPEEL_MAX_BATCH_SIZE", 100),
		},
		Fetch: FetchConfig{
			Enabled: envBoolOr("LINKPEEL_HTTP_FAST_PATH", true),
			Timeout: envDurationOr("LINKPEEL_HTTP_TIMEOUT", 12*time.Second),
		},
		Auth: AuthConfig{
			APIKeys: envSliceOr("LINKPEEL_API_KEYS", nil),
		},
		RateLimit: RateLimitConfig{
			Enabled:           envBoolOr("LINKPEEL_RATE_LIMIT", false),
			RequestsPerSecond: envFloatOr("LINKPEEL_RATE_RPS", 5.0),
			Burst:             envIntOr("LINKPEEL_RATE_BURST", 10),
		},
		Cache: CacheConfig{
			MaxEntries: envIntOr("LINKPEEL_CACHE_MAX_ENTRIES", 1000),
		},
		Log: LogConfig{
			Level:  envOr("LINKPEEL_LOG_LEVEL", "info"),
			Format: envOr("LINKPEEL_LOG_FORMAT", "json"),
		},
	}
}

// --- helper functions ---

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envSliceOr(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return fallback
}
