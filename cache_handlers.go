package main

import (
	"net/http"

	"communityEventsWebsite/internal/events"
	"communityEventsWebsite/internal/utils"
)

// handleCacheInfo lists every cache entry with its age, for operators checking
// why a section looks stale.
func (app *App) handleCacheInfo(w http.ResponseWriter, r *http.Request) {
	infos, err := app.Cache.List()
	if err != nil {
		AppLogger.WithError(err).Error("Failed to list cache entries")
		utils.InternalServerError(w, "Failed to list cache entries")
		return
	}
	utils.RespondWithJSON(w, 200, map[string]any{"entries": infos, "count": len(infos)})
}

// handleCacheClear evicts cache entries. With ?category= only that category's
// key space is cleared; otherwise everything goes, including the directory and
// schema entries, forcing a full reload on the next fetch.
func (app *App) handleCacheClear(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	if category != "" {
		if !ValidateCategory(category) {
			utils.ValidationError(w, "Invalid category name")
			return
		}
		app.Cache.RemoveByPrefix(events.CacheKeyFor(category, ""))
		AppLogger.WithField("category", category).Info("Cache cleared for category")
	} else {
		app.Cache.ClearAll()
		app.Directory.Invalidate()
		AppLogger.Info("Cache cleared")
	}

	utils.RespondWithJSON(w, 200, map[string]string{"status": "cleared"})
}
