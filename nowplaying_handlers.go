package main

import (
	"net/http"

	"github.com/goccy/go-json"

	"communityEventsWebsite/internal/nowplaying"
	"communityEventsWebsite/internal/utils"
)

type playRequest struct {
	Provider string `json:"provider"`
	Title    string `json:"title"`
	URL      string `json:"url,omitempty"`
	SourceID string `json:"source_id,omitempty"`
}

type pauseRequest struct {
	SourceID string `json:"source_id,omitempty"`
}

func (app *App) handleGetNowPlaying(w http.ResponseWriter, r *http.Request) {
	utils.RespondWithJSON(w, 200, app.NowPlaying.Snapshot())
}

func (app *App) handlePlay(w http.ResponseWriter, r *http.Request) {
	var req playRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.BadRequestError(w, "Invalid request body")
		return
	}

	provider := nowplaying.Provider(req.Provider)
	switch provider {
	case nowplaying.ProviderLive, nowplaying.ProviderYouTube, nowplaying.ProviderPodcast:
	default:
		utils.ValidationError(w, "Unknown provider")
		return
	}
	if req.Title == "" {
		utils.ValidationError(w, "Title is required")
		return
	}

	app.NowPlaying.Play(provider, req.Title, req.URL, req.SourceID)
	utils.RespondWithJSON(w, 200, app.NowPlaying.Snapshot())
}

func (app *App) handlePause(w http.ResponseWriter, r *http.Request) {
	var req pauseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.BadRequestError(w, "Invalid request body")
		return
	}

	app.NowPlaying.Pause(req.SourceID)
	utils.RespondWithJSON(w, 200, app.NowPlaying.Snapshot())
}

func (app *App) handleClearNowPlaying(w http.ResponseWriter, r *http.Request) {
	app.NowPlaying.Clear()
	utils.RespondWithJSON(w, 200, app.NowPlaying.Snapshot())
}
