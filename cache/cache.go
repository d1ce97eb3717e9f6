// Package cache holds recent successful scrape envelopes in memory so
// repeated requests for the same article can skip the browser. Nothing
// survives a restart; durable storage is out of scope.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"sync"
	"time"

	"github.com/linkpeel/linkpeel/models"
)

type entry struct {
	result    *models.SessionResult
	createdAt time.Time
}

// Cache is a bounded in-memory cache of scrape results.
// It is safe for concurrent use.
type Cache struct {
	mu         sync.RWMutex
	store      map[string]*entry
	maxEntries int
}

// New creates a Cache capped at maxEntries. A background goroutine evicts
// entries older than one hour every five minutes.
func New(maxEntries int) *Cache {
	c := &Cache{
		store:      make(map[string]*entry),
		maxEntries: maxEntries,
	}
	go c.cleanupLoop()
	return c
}

// Key derives the cache key from the input URL and every option that changes
// what a scrape produces. MaxAgeMs stays out: it is a read-side freshness
// bound, not part of the result's identity.
func Key(url string, opts models.ScrapeOptions) string {
	h := sha256.New()
	h.Write([]byte(url))
	h.Write([]byte{'|'})
	h.Write([]byte(opts.OutputFormat))
	h.Write([]byte{'|'})
	h.Write([]byte(opts.FetchMode))
	h.Write([]byte{'|'})
	h.Write([]byte(strconv.FormatBool(opts.DisableScriptExecution)))
	return hex.EncodeToString(h.Sum(nil))
}

// Get returns a cached result younger than maxAgeMs milliseconds.
func (c *Cache) Get(key string, maxAgeMs int) (*models.SessionResult, bool) {
	if maxAgeMs <= 0 {
		return nil, false
	}

	c.mu.RLock()
	e, ok := c.store[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}

	if time.Since(e.createdAt) > time.Duration(maxAgeMs)*time.Millisecond {
		return nil, false
	}
	return e.result, true
}

// Set stores a result. Only successful envelopes are worth caching; failures
// are cheap to reproduce and may be transient.
func (c *Cache) Set(key string, result *models.SessionResult) {
	if result == nil || !result.Success {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Evict one arbitrary entry at capacity (map iteration order is random).
	if len(c.store) >= c.maxEntries {
		for k := range c.store {
			delete(c.store, k)
			break
		}
	}

	c.store[key] = &entry{result: result, createdAt: time.Now()}
}

func (c *Cache) cleanupLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		cutoff := time.Now().Add(-1 * time.Hour)
		c.mu.Lock()
		for k, e := range c.store {
			if e.createdAt.Before(cutoff) {
				delete(c.store, k)
			}
		}
		c.mu.Unlock()
	}
}
