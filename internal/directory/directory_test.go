package directory

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"communityEventsWebsite/internal/baserow"
	"communityEventsWebsite/internal/cache"
	"communityEventsWebsite/internal/models"
)

const configBody = `{
	"count": 3,
	"results": [
		{"id": 1, "baserow_id": "101", "category": "Lectures", "api_rows_url": "https://api.example.com/api/database/rows/table/101/", "api_fields_url": "https://api.example.com/api/database/fields/table/101/", "Status": "Active"},
		{"id": 2, "baserow_id": "102", "category": "International-Raiwind", "api_rows_url": "https://api.example.com/api/database/rows/table/102/", "api_fields_url": "", "Status": "active"},
		{"id": 3, "baserow_id": "103", "category": "Retired", "api_rows_url": "https://api.example.com/api/database/rows/table/103/", "api_fields_url": "", "Status": "inactive"}
	]
}`

func openTestStore(t *testing.T) *cache.Store {
	t.Helper()
	store, err := cache.Open(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("Failed to open cache store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestLoadFiltersInactiveEntries(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(configBody))
	}))
	defer server.Close()

	client := NewClient(baserow.NewClient("tok", 5*time.Second), openTestStore(t), server.URL, time.Hour)

	entries, err := client.Load(context.Background())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("Expected 2 active entries, got %d", len(entries))
	}
	for _, entry := range entries {
		if !entry.IsActive() {
			t.Errorf("Inactive entry %q survived the filter", entry.Category)
		}
	}
	if !client.Loaded() {
		t.Error("Client should report loaded after a successful Load")
	}
}

func TestLoadShortCircuitsOnFreshCache(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Write([]byte(configBody))
	}))
	defer server.Close()

	client := NewClient(baserow.NewClient("tok", 5*time.Second), openTestStore(t), server.URL, time.Hour)

	if _, err := client.Load(context.Background()); err != nil {
		t.Fatalf("First load failed: %v", err)
	}
	if _, err := client.Load(context.Background()); err != nil {
		t.Fatalf("Second load failed: %v", err)
	}

	if got := atomic.LoadInt32(&hits); got != 1 {
		t.Errorf("Expected exactly one upstream fetch, got %d", got)
	}
}

func TestLoadFallsBackToStaleCacheOnFetchFailure(t *testing.T) {
	store := openTestStore(t)
	store.Put(CacheKey, []models.ConfigEntry{
		{ID: 1, TableKey: "101", Category: "Lectures", Status: "active"},
	})

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	// Zero TTL makes the cached list stale, forcing the fetch attempt.
	client := NewClient(baserow.NewClient("tok", 5*time.Second), store, server.URL, 0)

	entries, err := client.Load(context.Background())
	if err != nil {
		t.Fatalf("Expected stale fallback, got error: %v", err)
	}
	if len(entries) != 1 || entries[0].Category != "Lectures" {
		t.Errorf("Expected cached Lectures entry, got %+v", entries)
	}
}

func TestLoadSettlesOnTotalFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClient(baserow.NewClient("tok", 5*time.Second), openTestStore(t), server.URL, time.Hour)

	if _, err := client.Load(context.Background()); err == nil {
		t.Fatal("Expected error with no cache to fall back on")
	}
	if !client.Loaded() {
		t.Error("Client must settle even when the load fails")
	}
	if len(client.Entries()) != 0 {
		t.Error("Failed load with no cache should leave an empty entry list")
	}
}

func TestFindMatchesCaseInsensitively(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(configBody))
	}))
	defer server.Close()

	client := NewClient(baserow.NewClient("tok", 5*time.Second), openTestStore(t), server.URL, time.Hour)
	if _, err := client.Load(context.Background()); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if _, ok := client.Find("lectures", ""); !ok {
		t.Error("Expected case-insensitive category match")
	}
	if _, ok := client.Find("International", "Raiwind"); !ok {
		t.Error("Expected category-subcategory match")
	}
	if _, ok := client.FindPattern("102"); !ok {
		t.Error("Expected verbatim table key match")
	}
	if _, ok := client.Find("Retired", ""); ok {
		t.Error("Inactive entries must not resolve")
	}
	if _, ok := client.FindAnyPattern("Retired"); !ok {
		t.Error("FindAnyPattern should see inactive entries")
	}
}

func TestResolveTableID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(configBody))
	}))
	defer server.Close()

	client := NewClient(baserow.NewClient("tok", 5*time.Second), openTestStore(t), server.URL, time.Hour)
	if _, err := client.Load(context.Background()); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	id, ok := client.ResolveTableID("Lectures", "")
	if !ok || id != "101" {
		t.Errorf("Expected table id 101, got %q (ok=%v)", id, ok)
	}
}

func TestTableIDFromURL(t *testing.T) {
	tests := []struct {
		url    string
		want   string
		wantOK bool
	}{
		{"https://api.example.com/api/database/rows/table/452/?user_field_names=true", "452", true},
		{"https://api.example.com/api/database/rows/table/9/", "9", true},
		{"https://api.example.com/api/database/rows/", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := TableIDFromURL(tt.url)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("TableIDFromURL(%q) = %q, %v; want %q, %v", tt.url, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestInvalidateForcesRefetch(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Write([]byte(configBody))
	}))
	defer server.Close()

	client := NewClient(baserow.NewClient("tok", 5*time.Second), openTestStore(t), server.URL, time.Hour)

	if _, err := client.Load(context.Background()); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	client.Invalidate()
	if client.Loaded() {
		t.Error("Invalidate should unsettle the client")
	}
	if _, err := client.Load(context.Background()); err != nil {
		t.Fatalf("Reload failed: %v", err)
	}
	if got := atomic.LoadInt32(&hits); got != 2 {
		t.Errorf("Expected refetch after invalidate, got %d upstream hits", got)
	}
}
