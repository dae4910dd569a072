package main

import (
	"net/http"

	"github.com/gorilla/mux"

	"communityEventsWebsite/internal/events"
	"communityEventsWebsite/internal/models"
	"communityEventsWebsite/internal/utils"
)

// eventsResponse is the contract every page binds to. Error is soft: a fetch
// failure without cached data still answers 200 with is_pending set, so the
// UI renders "coming soon" rather than a broken section.
type eventsResponse struct {
	Events    []models.CanonicalEvent `json:"events"`
	IsPending bool                    `json:"is_pending"`
	FromCache bool                    `json:"from_cache"`
	Error     *string                 `json:"error"`
}

func (app *App) handleGetEvents(w http.ResponseWriter, r *http.Request) {
	category, subcategory, ok := app.categoryParams(w, r)
	if !ok {
		return
	}

	result, err := app.Fetcher.FetchCategory(r.Context(), category, subcategory)
	app.respondEvents(w, category, result, err)
}

func (app *App) handleRefreshEvents(w http.ResponseWriter, r *http.Request) {
	category, subcategory, ok := app.categoryParams(w, r)
	if !ok {
		return
	}

	AppLogger.WithFields(map[string]interface{}{
		"category":    category,
		"subcategory": subcategory,
	}).Info("Manual refresh requested")

	result, err := app.Fetcher.Refresh(r.Context(), category, subcategory)
	app.respondEvents(w, category, result, err)
}

func (app *App) handleEventStatus(w http.ResponseWriter, r *http.Request) {
	category, subcategory, ok := app.categoryParams(w, r)
	if !ok {
		return
	}

	status := app.Fetcher.Classify(r.Context(), category, subcategory)
	utils.RespondWithJSON(w, 200, map[string]string{"status": string(status)})
}

func (app *App) respondEvents(w http.ResponseWriter, category string, result *events.Result, err error) {
	if err != nil {
		AppLogger.WithError(err).WithField("category", category).Error("Fetch failed")
		msg := err.Error()
		utils.RespondWithJSON(w, 200, eventsResponse{
			Events:    []models.CanonicalEvent{},
			IsPending: true,
			Error:     &msg,
		})
		return
	}

	utils.RespondWithJSON(w, 200, eventsResponse{
		Events:    result.Events,
		IsPending: result.IsPending,
		FromCache: result.FromCache,
	})
}

func (app *App) categoryParams(w http.ResponseWriter, r *http.Request) (string, string, bool) {
	category := mux.Vars(r)["category"]
	if !ValidateCategory(category) {
		utils.ValidationError(w, "Invalid category name")
		return "", "", false
	}

	subcategory := r.URL.Query().Get("sub")
	if subcategory != "" && !ValidateCategory(subcategory) {
		utils.ValidationError(w, "Invalid subcategory name")
		return "", "", false
	}

	return category, subcategory, true
}
