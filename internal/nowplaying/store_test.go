package nowplaying

import (
	"testing"
	"time"
)

func TestPlayAndSnapshot(t *testing.T) {
	store := NewStore()

	store.Play(ProviderYouTube, "Friday Lecture", "https://youtu.be/abc", "embed-1")

	state := store.Snapshot()
	if !state.Playing {
		t.Error("Expected playing state")
	}
	if state.Provider != ProviderYouTube || state.Title != "Friday Lecture" {
		t.Errorf("Unexpected state: %+v", state)
	}
	if state.StartedAt.IsZero() {
		t.Error("StartedAt should be set")
	}
}

func TestPauseRespectsSourceOwnership(t *testing.T) {
	store := NewStore()
	store.Play(ProviderPodcast, "Episode 4", "", "embed-1")

	// A pause from an embed that lost the slot is a no-op.
	store.Pause("embed-2")
	if !store.Snapshot().Playing {
		t.Error("Pause from a non-owning source must not stop playback")
	}

	store.Pause("embed-1")
	if store.Snapshot().Playing {
		t.Error("Pause from the owning source should stop playback")
	}
}

func TestPauseWithEmptySourceAlwaysStops(t *testing.T) {
	store := NewStore()
	store.Play(ProviderLive, "Live Stream", "", "embed-9")

	store.Pause("")
	if store.Snapshot().Playing {
		t.Error("Pause without a source id should always stop playback")
	}
}

func TestClearResetsState(t *testing.T) {
	store := NewStore()
	store.Play(ProviderLive, "Live Stream", "https://live.example.com", "embed-1")

	store.Clear()

	state := store.Snapshot()
	if state.Playing || state.Title != "" || state.SourceID != "" {
		t.Errorf("Expected empty state after clear, got %+v", state)
	}
}

func TestSetTitleKeepsPlayback(t *testing.T) {
	store := NewStore()
	store.Play(ProviderLive, "Live Stream", "", "embed-1")

	store.SetTitle("Live Stream: Q&A")

	state := store.Snapshot()
	if state.Title != "Live Stream: Q&A" {
		t.Errorf("Expected updated title, got %q", state.Title)
	}
	if !state.Playing {
		t.Error("Title update must not stop playback")
	}
}

func TestSubscribeReceivesChanges(t *testing.T) {
	store := NewStore()
	ch, cancel := store.Subscribe()
	defer cancel()

	store.Play(ProviderYouTube, "Video", "", "embed-1")

	select {
	case state := <-ch:
		if !state.Playing || state.Title != "Video" {
			t.Errorf("Unexpected notification: %+v", state)
		}
	case <-time.After(time.Second):
		t.Fatal("Expected a notification after Play")
	}
}

func TestCancelClosesChannel(t *testing.T) {
	store := NewStore()
	ch, cancel := store.Subscribe()

	cancel()

	if _, open := <-ch; open {
		t.Error("Channel should be closed after cancel")
	}

	// A notify after cancel must not panic on the closed channel.
	store.Play(ProviderLive, "Live", "", "")
}

func TestSlowSubscriberDoesNotBlockWriter(t *testing.T) {
	store := NewStore()
	_, cancel := store.Subscribe()
	defer cancel()

	done := make(chan struct{})
	go func() {
		// More updates than the channel buffers; extra ones drop.
		for i := 0; i < 50; i++ {
			store.SetTitle("update")
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Writer blocked on a slow subscriber")
	}
}
