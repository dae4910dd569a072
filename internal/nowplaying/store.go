// Package nowplaying holds the shared media playback state: which embed (live
// stream, video, or podcast) is currently playing across the whole site. One
// writer at a time, any number of observers.
package nowplaying

import (
	"sync"
	"time"
)

// Provider identifies which kind of embed owns the playback slot.
type Provider string

const (
	ProviderLive    Provider = "live"
	ProviderYouTube Provider = "youtube"
	ProviderPodcast Provider = "podcast"
)

// State is an immutable snapshot of the playback slot.
type State struct {
	Playing   bool      `json:"playing"`
	Provider  Provider  `json:"provider,omitempty"`
	Title     string    `json:"title,omitempty"`
	URL       string    `json:"url,omitempty"`
	SourceID  string    `json:"source_id,omitempty"`
	StartedAt time.Time `json:"started_at,omitempty"`
}

// Store is the single-writer/multi-reader playback store. Observers subscribe
// for change notifications and read consistent snapshots; they never see
// partially-updated state.
type Store struct {
	mu    sync.RWMutex
	state State

	subMu  sync.Mutex
	nextID int
	subs   map[int]chan State
}

// NewStore builds an empty store.
func NewStore() *Store {
	return &Store{subs: make(map[int]chan State)}
}

// Snapshot returns the current state by value.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Play claims the playback slot for a source and notifies observers.
func (s *Store) Play(provider Provider, title, url, sourceID string) {
	s.mu.Lock()
	s.state = State{
		Playing:   true,
		Provider:  provider,
		Title:     title,
		URL:       url,
		SourceID:  sourceID,
		StartedAt: time.Now(),
	}
	snapshot := s.state
	s.mu.Unlock()
	s.notify(snapshot)
}

// Pause stops playback, but only if sourceID matches the playing source or is
// empty. A late pause from an embed that already lost the slot is a no-op.
func (s *Store) Pause(sourceID string) {
	s.mu.Lock()
	if sourceID != "" && s.state.SourceID != sourceID {
		s.mu.Unlock()
		return
	}
	s.state.Playing = false
	snapshot := s.state
	s.mu.Unlock()
	s.notify(snapshot)
}

// Clear resets the slot entirely.
func (s *Store) Clear() {
	s.mu.Lock()
	s.state = State{}
	snapshot := s.state
	s.mu.Unlock()
	s.notify(snapshot)
}

// SetTitle updates the display title without touching playback state.
func (s *Store) SetTitle(title string) {
	s.mu.Lock()
	s.state.Title = title
	snapshot := s.state
	s.mu.Unlock()
	s.notify(snapshot)
}

// Subscribe registers an observer. The returned channel receives a snapshot on
// every state change; slow observers drop updates rather than block the
// writer. The cancel func unregisters and closes the channel.
func (s *Store) Subscribe() (<-chan State, func()) {
	s.subMu.Lock()
	id := s.nextID
	s.nextID++
	ch := make(chan State, 8)
	s.subs[id] = ch
	s.subMu.Unlock()

	cancel := func() {
		s.subMu.Lock()
		if existing, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(existing)
		}
		s.subMu.Unlock()
	}
	return ch, cancel
}

func (s *Store) notify(snapshot State) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- snapshot:
		default:
		}
	}
}
