// Package schema builds a best-effort mapping from arbitrary remote field names
// to canonical semantic keys. Remote tables have inconsistent, human-authored
// column names ("Event Year", "year ", "iFrames URL"); this heuristic is the
// only mechanism that lets the fetch layer treat heterogeneous tables uniformly.
package schema

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"communityEventsWebsite/internal/baserow"
	"communityEventsWebsite/internal/cache"
	"communityEventsWebsite/internal/models"
)

// CacheKey is the fixed cache key the aggregated schema map is stored under.
const CacheKey = "baserow_schemas"

// mappingRules are evaluated independently per field: a field whose name
// contains more than one substring populates more than one canonical key.
// When two fields of the same table match the same rule, the later field wins;
// that ambiguity is deliberate and documented, not resolved.
var mappingRules = []struct {
	substr string
	key    string
}{
	{"year", "year"},
	{"city", "city"},
	{"region", "region"},
	{"title", "title"},
	{"iframe", "iframeUrl"},
	{"url", "iframeUrl"},
	{"name", "name"},
	{"location", "location"},
	{"event", "event"},
}

// Mapper holds per-table field schemas and applies the canonical mapping.
type Mapper struct {
	api   *baserow.Client
	store *cache.Store
	ttl   time.Duration

	mu      sync.RWMutex
	schemas map[string][]models.FieldDescriptor
}

// NewMapper builds a schema mapper backed by the shared cache store.
func NewMapper(api *baserow.Client, store *cache.Store, ttl time.Duration) *Mapper {
	return &Mapper{api: api, store: store, ttl: ttl, schemas: map[string][]models.FieldDescriptor{}}
}

type cachedSchemas struct {
	Schemas map[string][]models.FieldDescriptor `json:"schemas"`
}

// LoadSchemas fetches field metadata for every config entry that has a fields
// endpoint. Per-table fetches run concurrently and fail independently: a table
// whose fetch fails is simply absent from the result, and its rows pass through
// unmapped. Partial success is the normal case, not an error. The aggregate is
// cached under a fixed key.
func (m *Mapper) LoadSchemas(ctx context.Context, entries []models.ConfigEntry) {
	if len(entries) == 0 {
		return
	}

	if entry, ok := m.store.Get(CacheKey); ok && entry.Fresh(m.ttl) {
		var cached cachedSchemas
		if err := entry.Decode(&cached); err == nil {
			m.mu.Lock()
			m.schemas = cached.Schemas
			m.mu.Unlock()
			return
		}
		log.Printf("schema: failed to decode cached schemas, refetching")
		m.store.Remove(CacheKey)
	}

	fetched := make(map[string][]models.FieldDescriptor)
	var fetchedMu sync.Mutex
	var wg sync.WaitGroup

	for _, item := range entries {
		if item.FieldsURL == "" {
			continue
		}
		wg.Add(1)
		go func(item models.ConfigEntry) {
			defer wg.Done()
			fields, err := m.api.ListFields(ctx, item.FieldsURL)
			if err != nil {
				log.Printf("schema: failed to fetch schema for %s: %v", item.Category, err)
				return
			}
			fetchedMu.Lock()
			fetched[item.TableKey] = fields
			fetchedMu.Unlock()
		}(item)
	}
	wg.Wait()

	m.store.Put(CacheKey, cachedSchemas{Schemas: fetched})

	m.mu.Lock()
	m.schemas = fetched
	m.mu.Unlock()
}

// Known reports whether a schema has been loaded for tableID.
func (m *Mapper) Known(tableID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.schemas[tableID]
	return ok
}

// MapRow maps a raw row through the canonical rules for tableID. Canonical keys
// are additive: every original field name and value is preserved verbatim
// alongside them, so downstream consumers can apply their own fallback order.
// With no schema known for tableID the row is returned as-is.
func (m *Mapper) MapRow(row map[string]any, tableID string) map[string]any {
	m.mu.RLock()
	fields, ok := m.schemas[tableID]
	m.mu.RUnlock()
	if !ok {
		return row
	}

	mapped := map[string]any{"id": row["id"]}
	for _, field := range fields {
		value, present := row[field.Name]
		if !present {
			continue
		}
		lower := strings.ToLower(field.Name)
		for _, rule := range mappingRules {
			if strings.Contains(lower, rule.substr) {
				mapped[rule.key] = value
			}
		}
		mapped[field.Name] = value
	}
	return mapped
}
