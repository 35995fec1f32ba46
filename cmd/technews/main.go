package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"time"

	"technews/internal/app"
	"technews/internal/config"
	"technews/internal/feed"
	"technews/internal/gemini"
	"technews/internal/logger"
	"technews/internal/metrics"
	"technews/internal/ratelimit"
	"technews/internal/storage"
	"technews/internal/summarize"
)

func main() {
	serve := flag.Bool("serve", false, "run the status/monitoring HTTP server instead of a one-shot refresh")
	limit := flag.Int("limit", 0, "override the maximum number of articles per run")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	if *limit > 0 {
		cfg.MaxArticles = *limit
	}
	logger.Init()

	ctx := context.Background()

	gem, err := gemini.NewClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, cfg.GeminiMaxRetries, cfg.GeminiBackoff)
	if err != nil {
		log.Fatalf("gemini client error: %v", err)
	}
	defer gem.Close()

	var budget *ratelimit.Budget
	if cfg.MaxModelRequests > 0 {
		budget = ratelimit.NewBudget(cfg.MaxModelRequests)
	}
	summarizer, err := summarize.NewService(gem, cfg.BatchSize, cfg.RequestTimeout, budget)
	if err != nil {
		log.Fatalf("summarizer error: %v", err)
	}

	sources, err := feed.LoadSources(cfg.SourcesPath)
	if err != nil {
		logger.Warn("falling back to default sources", "path", cfg.SourcesPath, "error", err)
		sources = feed.DefaultSources()
	}
	feeds := feed.NewClient(cfg, sources)

	store := storage.NewPayloadStore(cfg.OutputPath)
	seen := storage.NewSeenCache(cfg.SeenCachePath, cfg.SeenTTLHours)
	if err := seen.Load(); err != nil {
		logger.Warn("failed to load seen cache, starting empty", "error", err)
	}

	pipeline := app.New(cfg, feeds, summarizer, store, seen)

	if !*serve {
		if err := pipeline.Run(ctx); err != nil {
			logger.Error("refresh failed", "error", err)
			os.Exit(1)
		}
		logger.Info("summaries written", "path", store.Path())
		return
	}

	runServer(cfg, pipeline, store)
}

func runServer(cfg *config.Config, pipeline *app.App, store *storage.PayloadStore) {
	if cfg.RefreshInterval > 0 {
		go refreshLoop(pipeline, cfg.RefreshInterval)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", healthHandler)
	mux.HandleFunc("/metrics", metricsHandler)
	mux.HandleFunc("/api/summaries", summariesHandler(store))
	mux.HandleFunc("/api/refresh", refreshHandler(pipeline))
	mux.HandleFunc("/api/refresh/status", statusHandler(pipeline))

	if info, err := os.Stat(cfg.StaticDir); err == nil && info.IsDir() {
		mux.Handle("/", http.FileServer(http.Dir(cfg.StaticDir)))
	}

	logger.Info("starting server", "addr", cfg.ListenAddr, "static", cfg.StaticDir)
	if err := http.ListenAndServe(cfg.ListenAddr, mux); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

// refreshLoop triggers a run immediately and then on every tick. Runs that
// overlap a still-active one are skipped, not queued.
func refreshLoop(pipeline *app.App, interval time.Duration) {
	if err := pipeline.TriggerRefresh(); err != nil {
		logger.Warn("initial refresh not started", "error", err)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for range ticker.C {
		if err := pipeline.TriggerRefresh(); err != nil {
			logger.Warn("scheduled refresh skipped", "error", err)
		}
	}
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	stats := metrics.Global.GetStats()

	status := "ok"
	if !stats["is_healthy"].(bool) {
		status = "error"
		w.WriteHeader(http.StatusServiceUnavailable)
	}

	writeJSON(w, map[string]interface{}{
		"status":     status,
		"last_run":   stats["last_run_time"],
		"last_error": stats["last_error"],
	})
}

func metricsHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, metrics.Global.GetStats())
}

func summariesHandler(store *storage.PayloadStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, err := store.LoadExisting()
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, payload)
	}
}

func refreshHandler(pipeline *app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "POST required", http.StatusMethodNotAllowed)
			return
		}
		if err := pipeline.TriggerRefresh(); err != nil {
			if errors.Is(err, app.ErrRunInFlight) {
				w.WriteHeader(http.StatusConflict)
				writeJSON(w, pipeline.Status())
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusAccepted)
		writeJSON(w, pipeline.Status())
	}
}

func statusHandler(pipeline *app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, pipeline.Status())
	}
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("failed to encode response", "error", err)
	}
}
