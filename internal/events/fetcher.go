// Package events is the category data fetcher: it resolves a logical category
// through the configuration directory, pulls rows from the resolved endpoint,
// normalizes them into canonical event records, and wraps the whole cycle in
// the persistent cache with refresh and stale-fallback semantics.
package events

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"communityEventsWebsite/internal/baserow"
	"communityEventsWebsite/internal/cache"
	"communityEventsWebsite/internal/directory"
	"communityEventsWebsite/internal/metrics"
	"communityEventsWebsite/internal/models"
	"communityEventsWebsite/internal/schema"
)

// Result is the shape every consumer of a category binds to.
type Result struct {
	Events    []models.CanonicalEvent `json:"events"`
	IsPending bool                    `json:"is_pending"`
	FromCache bool                    `json:"from_cache"`
}

// Fetcher produces canonical event lists per category.
type Fetcher struct {
	Directory *directory.Client
	Schemas   *schema.Mapper
	API       *baserow.Client
	Store     *cache.Store
	TTL       time.Duration

	// Aliases maps a category or subcategory name to the directory search
	// patterns tried before the defaults, e.g. Raiwind -> International-Raiwind.
	Aliases map[string][]string
}

// CacheKeyPrefix prefixes every per-category cache key, so a whole category
// space can be evicted with one prefix removal.
const CacheKeyPrefix = "events_"

// CacheKeyFor derives the deterministic cache key for a (category, subcategory)
// pair. Each key is owned by exactly one pair; no two fetches ever contend on
// different values for the same key.
func CacheKeyFor(category, subcategory string) string {
	key := CacheKeyPrefix + slug(category)
	if subcategory != "" {
		key += "_" + slug(subcategory)
	}
	return key
}

func slug(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), " ", "_")
}

// FetchCategory returns the canonical events for a category. A fresh cache
// entry short-circuits the network; a stale one is served whenever the
// directory has no matching entry or the endpoint fails. Only an endpoint
// failure with no cached copy at all surfaces an error, and even that one is
// recoverable: handlers render it as the "pending" tier, never a crash.
func (f *Fetcher) FetchCategory(ctx context.Context, category, subcategory string) (*Result, error) {
	// The directory load must settle (success or failure) before any endpoint
	// resolution; fetching against a partial config would misclassify
	// categories as unconfigured.
	if !f.Directory.Loaded() {
		if _, err := f.Directory.Load(ctx); err != nil {
			log.Printf("events: directory load failed, continuing with empty config: %v", err)
		}
		metrics.ConfigEntries.Set(float64(len(f.Directory.Entries())))
	}

	key := CacheKeyFor(category, subcategory)
	if entry, ok := f.Store.Get(key); ok && entry.Fresh(f.TTL) {
		if res, err := decodeCached(entry); err == nil {
			metrics.CacheHits.Inc()
			metrics.FetchTotal.WithLabelValues(category, "cached").Inc()
			return res, nil
		}
		log.Printf("events: purging undecodable cache entry %s", key)
		f.Store.Remove(key)
	}
	metrics.CacheMisses.Inc()

	configItem, found := f.findConfig(category, subcategory)
	if !found {
		if res, ok := f.staleFallback(key); ok {
			metrics.FetchTotal.WithLabelValues(category, "fallback").Inc()
			return res, nil
		}
		log.Printf("events: no configuration found for %s", displayCategory(category, subcategory))
		metrics.FetchTotal.WithLabelValues(category, "pending").Inc()
		return &Result{Events: []models.CanonicalEvent{}, IsPending: true}, nil
	}

	if configItem.RowsURL == "" {
		metrics.FetchTotal.WithLabelValues(category, "pending").Inc()
		return &Result{Events: []models.CanonicalEvent{}, IsPending: true}, nil
	}

	rows, err := f.API.ListRows(ctx, configItem.RowsURL)
	if err != nil {
		if res, ok := f.staleFallback(key); ok {
			log.Printf("events: serving stale cache for %s after fetch failure: %v", key, err)
			metrics.StaleFallbacks.Inc()
			metrics.FetchTotal.WithLabelValues(category, "fallback").Inc()
			return res, nil
		}
		metrics.FetchTotal.WithLabelValues(category, "error").Inc()
		return nil, WrapFetchError(ErrTypeEndpoint,
			fmt.Sprintf("failed to fetch rows for %s", displayCategory(category, subcategory)), err)
	}

	// Schema load is gated on the settled config, cached for an hour, and
	// tolerant of per-table failures; an unknown table just passes through
	// unmapped.
	f.Schemas.LoadSchemas(ctx, f.Directory.Entries())

	tableKey := configItem.TableKey
	if tableKey == "" {
		tableKey, _ = directory.TableIDFromURL(configItem.RowsURL)
	}

	events := make([]models.CanonicalEvent, 0, len(rows.Results))
	for _, row := range rows.Results {
		ev := f.buildEvent(row, tableKey, category, subcategory)
		if !ev.HasIdentity() {
			metrics.RowsDiscarded.Inc()
			continue
		}
		events = append(events, ev)
	}

	f.Store.Put(key, events)
	metrics.FetchTotal.WithLabelValues(category, "fresh").Inc()
	return &Result{Events: events, IsPending: len(events) == 0}, nil
}

// Refresh evicts the category's cache entry and re-runs the fetch, bypassing
// the freshness check. Purely local: no server-side invalidation happens.
func (f *Fetcher) Refresh(ctx context.Context, category, subcategory string) (*Result, error) {
	f.Store.Remove(CacheKeyFor(category, subcategory))
	return f.FetchCategory(ctx, category, subcategory)
}

// buildEvent maps one raw row into a canonical event using field-precedence
// fallback. The mapping is additive, so both canonical and raw-cased variants
// are consulted; with no schema known the raw names are all there is.
func (f *Fetcher) buildEvent(row map[string]any, tableKey, category, subcategory string) models.CanonicalEvent {
	mapped := f.Schemas.MapRow(row, tableKey)

	id := stringValue(row["id"])
	year := firstNonEmpty(mapped, "year", "Year")
	city := firstNonEmpty(mapped, "city", "City")
	region := firstNonEmpty(mapped, "region", "Region")
	location := firstNonEmpty(mapped, "location", "Location")

	mediaURL := firstNonEmpty(mapped,
		"iframeUrl", "iFrames URL", "iframe_url", "iframe",
		"url", "link", "audio_url", "audio",
		"Iframe", "URL", "Link", "Audio")
	audioURL := firstNonEmpty(mapped, "audioUrl", "audio_url", "audio", "Audio")

	title := firstNonEmpty(mapped, "title", "name", "Title", "Name")
	if title == "" {
		title = joinNonEmpty(year, city, region)
	}
	if title == "" {
		title = fmt.Sprintf("%s Event %s", category, id)
	}

	return models.CanonicalEvent{
		ID:        id,
		Title:     title,
		Year:      year,
		City:      city,
		Location:  location,
		Region:    region,
		MediaURL:  mediaURL,
		AudioURL:  audioURL,
		EmbedHTML: EmbedHTML(mediaURL),
		Category:  displayCategory(category, subcategory),
		Raw:       mapped,
	}
}

// findConfig tries each search pattern for the pair against the active
// directory entries and returns the first match.
func (f *Fetcher) findConfig(category, subcategory string) (*models.ConfigEntry, bool) {
	for _, pattern := range f.searchPatterns(category, subcategory) {
		if entry, ok := f.Directory.FindPattern(pattern); ok {
			return entry, true
		}
	}
	return nil, false
}

// searchPatterns builds the ordered pattern list for a pair: configured
// aliases first, then "category-subcategory", the bare subcategory, and the
// bare category.
func (f *Fetcher) searchPatterns(category, subcategory string) []string {
	var patterns []string
	if subcategory != "" {
		patterns = append(patterns, f.Aliases[subcategory]...)
		patterns = append(patterns, category+"-"+subcategory, subcategory)
	}
	patterns = append(patterns, f.Aliases[category]...)
	patterns = append(patterns, category)

	seen := make(map[string]bool, len(patterns))
	out := patterns[:0]
	for _, p := range patterns {
		if p == "" || seen[strings.ToLower(p)] {
			continue
		}
		seen[strings.ToLower(p)] = true
		out = append(out, p)
	}
	return out
}

func (f *Fetcher) staleFallback(key string) (*Result, bool) {
	entry, ok := f.Store.Get(key)
	if !ok {
		return nil, false
	}
	res, err := decodeCached(entry)
	if err != nil {
		f.Store.Remove(key)
		return nil, false
	}
	return res, true
}

func decodeCached(entry *cache.Entry) (*Result, error) {
	var events []models.CanonicalEvent
	if err := entry.Decode(&events); err != nil {
		return nil, WrapFetchError(ErrTypeMalformedCache, "undecodable cached event list", err)
	}
	if events == nil {
		events = []models.CanonicalEvent{}
	}
	return &Result{Events: events, IsPending: len(events) == 0, FromCache: true}, nil
}

func displayCategory(category, subcategory string) string {
	if subcategory != "" {
		return category + "-" + subcategory
	}
	return category
}

// firstNonEmpty returns the first key in keys whose mapped value stringifies
// to something non-empty.
func firstNonEmpty(mapped map[string]any, keys ...string) string {
	for _, k := range keys {
		if v := stringValue(mapped[k]); v != "" {
			return v
		}
	}
	return ""
}

func joinNonEmpty(parts ...string) string {
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, " ")
}

// stringValue renders a remote cell value as a display string. Numeric cells
// arrive as float64 from the decoder; whole numbers must not grow a ".0".
func stringValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return strings.TrimSpace(fmt.Sprintf("%v", val))
	}
}
