package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"communityEventsWebsite/internal/baserow"
	"communityEventsWebsite/internal/cache"
	"communityEventsWebsite/internal/directory"
	"communityEventsWebsite/internal/events"
	"communityEventsWebsite/internal/metrics"
	"communityEventsWebsite/internal/nowplaying"
	"communityEventsWebsite/internal/schema"
	"communityEventsWebsite/internal/utils"
)

type App struct {
	Config     *Config
	Cache      *cache.Store
	API        *baserow.Client
	Directory  *directory.Client
	Schemas    *schema.Mapper
	Fetcher    *events.Fetcher
	NowPlaying *nowplaying.Store
}

func main() {
	config, err := LoadConfig()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	InitializeLogger(config)

	store, err := cache.Open(config.CachePath)
	if err != nil {
		log.Fatal("Failed to open cache database:", err)
	}
	defer store.Close()

	api := baserow.NewClient(config.APIToken, config.HTTPTimeout)
	dir := directory.NewClient(api, store, config.ConfigTableURL, config.ConfigCacheTTL)
	schemas := schema.NewMapper(api, store, config.SchemaCacheTTL)

	app := &App{
		Config:    config,
		Cache:     store,
		API:       api,
		Directory: dir,
		Schemas:   schemas,
		Fetcher: &events.Fetcher{
			Directory: dir,
			Schemas:   schemas,
			API:       api,
			Store:     store,
			TTL:       config.EventsCacheTTL,
			Aliases:   config.Aliases,
		},
		NowPlaying: nowplaying.NewStore(),
	}

	app.warmUp()

	r := mux.NewRouter()

	r.Use(app.RecoveryMiddleware)
	r.Use(app.LoggingMiddleware)
	r.Use(app.RateLimitMiddleware())

	r.HandleFunc("/healthz", app.handleHealth).Methods("GET")
	r.Handle("/metrics", metrics.Handler()).Methods("GET")

	r.HandleFunc("/api/events/{category}", app.handleGetEvents).Methods("GET")
	r.HandleFunc("/api/events/{category}/refresh", app.handleRefreshEvents).Methods("POST")
	r.HandleFunc("/api/events/{category}/status", app.handleEventStatus).Methods("GET")

	r.HandleFunc("/api/now-playing", app.handleGetNowPlaying).Methods("GET")
	r.HandleFunc("/api/now-playing/play", app.handlePlay).Methods("POST")
	r.HandleFunc("/api/now-playing/pause", app.handlePause).Methods("POST")
	r.HandleFunc("/api/now-playing/clear", app.handleClearNowPlaying).Methods("POST")

	r.HandleFunc("/api/cache", app.handleCacheInfo).Methods("GET")
	r.HandleFunc("/api/cache", app.handleCacheClear).Methods("DELETE")

	fmt.Printf("Server starting on :%s\n", config.Port)
	log.Fatal(http.ListenAndServe(":"+config.Port, r))
}

// warmUp settles the directory and schema loads before the first request.
// Failure here is non-fatal: with nothing cached every category simply
// classifies as pending until the upstream recovers.
func (app *App) warmUp() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*app.Config.HTTPTimeout)
	defer cancel()

	entries, err := app.Directory.Load(ctx)
	if err != nil {
		AppLogger.WithError(err).Warn("Directory load failed at startup, serving from cache or pending")
		return
	}
	metrics.ConfigEntries.Set(float64(len(entries)))
	AppLogger.WithField("entries", len(entries)).Info("Configuration directory loaded")

	app.Schemas.LoadSchemas(ctx, entries)
}

func (app *App) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	if !app.Directory.Loaded() {
		status = "degraded"
	}
	utils.RespondWithJSON(w, 200, map[string]string{
		"status":      status,
		"environment": app.Config.Environment,
		"time":        time.Now().UTC().Format(time.RFC3339),
	})
}
