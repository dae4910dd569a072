package cache

import (
	"database/sql"
	"log"
	"time"

	"github.com/goccy/go-json"
	_ "github.com/mattn/go-sqlite3"
)

// Entry is a stored cache record: the serialized payload plus the moment it was
// written. Freshness is always judged against the write timestamp, never TTL'd
// at write time, so call sites can apply different expiry windows to the same key.
type Entry struct {
	Data      []byte
	Timestamp time.Time
}

// Fresh reports whether the entry was written less than maxAge ago.
func (e *Entry) Fresh(maxAge time.Duration) bool {
	return time.Since(e.Timestamp) < maxAge
}

// Decode unmarshals the stored payload into v.
func (e *Entry) Decode(v any) error {
	return json.Unmarshal(e.Data, v)
}

// Store is a durable key/value cache shared by every data-layer component. Each
// key is logically owned by exactly one (category, subcategory) pair or by a
// fixed singleton purpose, so last-write-wins is a sufficient discipline.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the cache database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS cache_entries (
			key TEXT PRIMARY KEY,
			data TEXT NOT NULL,
			timestamp INTEGER NOT NULL
		);
	`)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Get reads an entry. Missing keys, read errors and corrupt rows all degrade to
// a miss; a corrupt row is purged so it cannot shadow future writes.
func (s *Store) Get(key string) (*Entry, bool) {
	var data string
	var ts int64
	err := s.db.QueryRow(
		"SELECT data, timestamp FROM cache_entries WHERE key = ?", key,
	).Scan(&data, &ts)
	if err == sql.ErrNoRows {
		return nil, false
	}
	if err != nil {
		log.Printf("cache: failed to read key %s: %v", key, err)
		return nil, false
	}

	if !json.Valid([]byte(data)) {
		log.Printf("cache: purging corrupt entry for key %s", key)
		s.Remove(key)
		return nil, false
	}

	return &Entry{Data: []byte(data), Timestamp: time.UnixMilli(ts)}, true
}

// Put serializes value and stores it under key with the current timestamp,
// overwriting any prior entry. Storage failures are logged and swallowed; the
// cache is an accelerator, never a source of truth.
func (s *Store) Put(key string, value any) {
	data, err := json.Marshal(value)
	if err != nil {
		log.Printf("cache: failed to serialize value for key %s: %v", key, err)
		return
	}
	s.PutRaw(key, data)
}

// PutRaw stores an already-serialized payload under key.
func (s *Store) PutRaw(key string, data []byte) {
	_, err := s.db.Exec(`
		INSERT INTO cache_entries (key, data, timestamp) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET data = excluded.data, timestamp = excluded.timestamp
	`, key, string(data), time.Now().UnixMilli())
	if err != nil {
		log.Printf("cache: failed to write key %s: %v", key, err)
	}
}

// Remove deletes a single entry.
func (s *Store) Remove(key string) {
	if _, err := s.db.Exec("DELETE FROM cache_entries WHERE key = ?", key); err != nil {
		log.Printf("cache: failed to remove key %s: %v", key, err)
	}
}

// RemoveByPrefix deletes every entry whose key starts with prefix. Used by
// manual refresh controls to evict a whole category at once.
func (s *Store) RemoveByPrefix(prefix string) {
	if _, err := s.db.Exec(
		"DELETE FROM cache_entries WHERE key LIKE ? || '%'", prefix,
	); err != nil {
		log.Printf("cache: failed to remove keys with prefix %s: %v", prefix, err)
	}
}

// ClearAll empties the cache.
func (s *Store) ClearAll() {
	if _, err := s.db.Exec("DELETE FROM cache_entries"); err != nil {
		log.Printf("cache: failed to clear cache: %v", err)
	}
}

// Info describes one cache entry for the inspection endpoint.
type Info struct {
	Key       string    `json:"key"`
	Timestamp time.Time `json:"timestamp"`
	AgeMillis int64     `json:"age_ms"`
	Size      int       `json:"size_bytes"`
}

// List returns metadata for every stored entry, oldest first.
func (s *Store) List() ([]Info, error) {
	rows, err := s.db.Query(
		"SELECT key, data, timestamp FROM cache_entries ORDER BY timestamp")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var infos []Info
	for rows.Next() {
		var key, data string
		var ts int64
		if err := rows.Scan(&key, &data, &ts); err != nil {
			return nil, err
		}
		written := time.UnixMilli(ts)
		infos = append(infos, Info{
			Key:       key,
			Timestamp: written,
			AgeMillis: time.Since(written).Milliseconds(),
			Size:      len(data),
		})
	}
	return infos, rows.Err()
}
