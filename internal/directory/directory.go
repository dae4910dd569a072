// Package directory loads the remote configuration directory: the table that
// tells the rest of the data layer which API endpoint serves which category.
// Other components never hard-code endpoints; they resolve everything here.
package directory

import (
	"context"
	"log"
	"regexp"
	"strings"
	"sync"
	"time"

	"communityEventsWebsite/internal/baserow"
	"communityEventsWebsite/internal/cache"
	"communityEventsWebsite/internal/models"
)

// CacheKey is the fixed cache key the directory list is stored under.
const CacheKey = "baserow_config"

var tableIDPattern = regexp.MustCompile(`table/(\d+)/`)

// Client fetches and resolves the configuration directory.
type Client struct {
	api       *baserow.Client
	store     *cache.Store
	configURL string
	ttl       time.Duration

	mu      sync.RWMutex
	all     []models.ConfigEntry
	entries []models.ConfigEntry
	loaded  bool
}

// NewClient builds a directory client. configURL is the rows endpoint of the
// directory table itself; ttl is the freshness window for the cached list.
func NewClient(api *baserow.Client, store *cache.Store, configURL string, ttl time.Duration) *Client {
	return &Client{api: api, store: store, configURL: configURL, ttl: ttl}
}

// Load fetches the directory table, caches the full list, and keeps the active
// subset for resolution. A fresh cached list short-circuits the fetch. On fetch
// failure the last cached list (fresh or stale) is used as a fallback; with no
// cache at all the error surfaces but the client still settles, holding an
// empty list; dependents treat that as "nothing configured yet", not a crash.
// Safe to call repeatedly; concurrent calls serialize on the client mutex.
func (c *Client) Load(ctx context.Context) ([]models.ConfigEntry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, ok := c.store.Get(CacheKey); ok && entry.Fresh(c.ttl) {
		var cached []models.ConfigEntry
		if err := entry.Decode(&cached); err == nil {
			c.settle(cached)
			return c.entries, nil
		}
		log.Printf("directory: failed to decode cached config, refetching: key=%s", CacheKey)
		c.store.Remove(CacheKey)
	}

	var resp struct {
		Count   int                  `json:"count"`
		Results []models.ConfigEntry `json:"results"`
	}
	if err := c.api.GetJSON(ctx, c.configURL, &resp); err != nil {
		log.Printf("directory: config fetch failed: %v", err)
		if entry, ok := c.store.Get(CacheKey); ok {
			var cached []models.ConfigEntry
			if decodeErr := entry.Decode(&cached); decodeErr == nil {
				log.Printf("directory: using cached config after fetch failure (%d entries)", len(cached))
				c.settle(cached)
				return c.entries, nil
			}
		}
		c.all = nil
		c.entries = nil
		c.loaded = true
		return nil, err
	}

	c.store.Put(CacheKey, resp.Results)
	c.settle(resp.Results)
	return c.entries, nil
}

// settle installs the full entry list and its active subset. Callers hold the
// write lock.
func (c *Client) settle(all []models.ConfigEntry) {
	active := make([]models.ConfigEntry, 0, len(all))
	for _, item := range all {
		if item.IsActive() {
			active = append(active, item)
		}
	}
	c.all = all
	c.entries = active
	c.loaded = true
}

// Loaded reports whether the initial load has settled (success or failure).
func (c *Client) Loaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loaded
}

// Entries returns the current active entry list.
func (c *Client) Entries() []models.ConfigEntry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.entries
}

// Invalidate drops the cached directory list so the next Load refetches.
func (c *Client) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store.Remove(CacheKey)
	c.loaded = false
	c.all = nil
	c.entries = nil
}

// Find returns the first active entry matching category (optionally combined
// with subcategory as "category-subcategory") case-insensitively, or matching
// the raw table key verbatim.
func (c *Client) Find(category, subcategory string) (*models.ConfigEntry, bool) {
	key := category
	if subcategory != "" {
		key = category + "-" + subcategory
	}
	return c.FindPattern(key)
}

// FindPattern matches a single search pattern against the active entries.
func (c *Client) FindPattern(pattern string) (*models.ConfigEntry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for i := range c.entries {
		if strings.EqualFold(c.entries[i].Category, pattern) || c.entries[i].TableKey == pattern {
			return &c.entries[i], true
		}
	}
	return nil, false
}

// FindAnyPattern matches a pattern against every directory entry regardless of
// status. Lets callers tell "configured but deactivated" apart from "never
// configured" when reporting why a section is unavailable.
func (c *Client) FindAnyPattern(pattern string) (*models.ConfigEntry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for i := range c.all {
		if strings.EqualFold(c.all[i].Category, pattern) || c.all[i].TableKey == pattern {
			return &c.all[i], true
		}
	}
	return nil, false
}

// ResolveEndpoint returns the rows endpoint for a category, if configured.
func (c *Client) ResolveEndpoint(category, subcategory string) (string, bool) {
	entry, ok := c.Find(category, subcategory)
	if !ok || entry.RowsURL == "" {
		return "", false
	}
	return entry.RowsURL, true
}

// ResolveTableID extracts the numeric table id from a category's rows endpoint.
func (c *Client) ResolveTableID(category, subcategory string) (string, bool) {
	url, ok := c.ResolveEndpoint(category, subcategory)
	if !ok {
		return "", false
	}
	return TableIDFromURL(url)
}

// TableIDFromURL pulls the table id out of a rows endpoint path.
func TableIDFromURL(url string) (string, bool) {
	m := tableIDPattern.FindStringSubmatch(url)
	if len(m) < 2 {
		return "", false
	}
	return m[1], true
}
