// Package app wires the refresh pipeline together: fetch, normalize,
// enrich, summarize, persist.
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"technews/internal/config"
	"technews/internal/feed"
	"technews/internal/logger"
	"technews/internal/metrics"
	"technews/internal/news"
	"technews/internal/scraper"
	"technews/internal/storage"
)

// ErrRunInFlight is returned when a refresh is triggered while a previous
// run for the same output target is still running.
var ErrRunInFlight = errors.New("a refresh run is already in progress")

type Stage string

const (
	StageIdle        Stage = "idle"
	StageFetching    Stage = "fetching"
	StageNormalizing Stage = "normalizing"
	StageSummarizing Stage = "summarizing"
	StagePersisted   Stage = "persisted"
	StageFailed      Stage = "failed"
)

// Status is the poll-able record of the current or most recent run.
type Status struct {
	Running    bool      `json:"running"`
	Stage      Stage     `json:"stage"`
	StartedAt  time.Time `json:"started_at,omitempty"`
	FinishedAt time.Time `json:"finished_at,omitempty"`
	Success    bool      `json:"success"`
	Error      string    `json:"error,omitempty"`
}

// Fetcher is what the pipeline needs from the feed layer.
type Fetcher interface {
	FetchArticles(ctx context.Context, limit int) ([]news.Article, error)
	EnrichArticle(ctx context.Context, url string) feed.Metadata
}

// Summarizer turns articles into one summary per article.
type Summarizer interface {
	Summarize(ctx context.Context, articles []news.Article) []news.SummaryResult
}

// Store persists and reloads the summary artifact.
type Store interface {
	Save(payload news.Payload) error
	LoadExisting() (news.Payload, error)
}

type App struct {
	cfg        *config.Config
	feeds      Fetcher
	summarizer Summarizer
	store      Store
	seen       *storage.SeenCache

	// scrape is swappable so tests do not hit the network.
	scrape func(urls []string, workers int) map[string]string

	mu     sync.Mutex
	status Status
}

func New(cfg *config.Config, feeds Fetcher, summarizer Summarizer, store Store, seen *storage.SeenCache) *App {
	return &App{
		cfg:        cfg,
		feeds:      feeds,
		summarizer: summarizer,
		store:      store,
		seen:       seen,
		scrape:     scraper.ExtractArticles,
		status:     Status{Stage: StageIdle},
	}
}

// Status returns a snapshot of the run status record.
func (a *App) Status() Status {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.status
}

// Run executes one refresh synchronously. A concurrent run is rejected.
func (a *App) Run(ctx context.Context) error {
	if !a.begin() {
		return ErrRunInFlight
	}
	err := a.run(ctx)
	a.finish(err)
	return err
}

// TriggerRefresh starts a refresh on its own goroutine and returns
// immediately. Completion is observed through Status.
func (a *App) TriggerRefresh() error {
	if !a.begin() {
		return ErrRunInFlight
	}
	go func() {
		err := a.run(context.Background())
		a.finish(err)
	}()
	return nil
}

func (a *App) begin() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.status.Running {
		return false
	}
	a.status = Status{
		Running:   true,
		Stage:     StageFetching,
		StartedAt: time.Now(),
	}
	return true
}

func (a *App) finish(err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.status.Running = false
	a.status.FinishedAt = time.Now()
	if err != nil {
		a.status.Success = false
		a.status.Stage = StageFailed
		a.status.Error = err.Error()
		metrics.Global.SetError(err.Error())
		return
	}
	a.status.Success = true
	a.status.Stage = StagePersisted
	metrics.Global.SetLastRun()
}

func (a *App) setStage(stage Stage) {
	a.mu.Lock()
	a.status.Stage = stage
	a.mu.Unlock()
}

// run is the sequential pipeline. The store is touched exactly once, after
// summarization succeeded, so a failed run never corrupts the previous
// artifact.
func (a *App) run(ctx context.Context) error {
	start := time.Now()
	defer func() {
		metrics.Global.RecordRunDuration(time.Since(start))
	}()

	articles, err := a.feeds.FetchArticles(ctx, a.cfg.MaxArticles)
	if err != nil {
		return fmt.Errorf("feed fetch: %w", err)
	}
	metrics.Global.AddArticlesFetched(len(articles))
	logger.Info("feed fetched", "articles", len(articles))

	a.setStage(StageNormalizing)
	a.enrichTop(ctx, articles)
	newCount := a.recordSeen(articles)

	a.setStage(StageSummarizing)
	summaries := a.summarizer.Summarize(ctx, articles)
	parsed, fallback := countFallbacks(summaries)
	metrics.Global.AddSummaries(parsed, fallback)

	payload := news.Payload{
		Summaries:   summaries,
		LastUpdated: time.Now().UTC().Format(time.RFC3339),
		TotalItems:  len(summaries),
		Extra: map[string]any{
			"new_items":   newCount,
			"source_feed": a.cfg.FeedURL,
		},
	}
	if err := a.store.Save(payload); err != nil {
		return fmt.Errorf("persist payload: %w", err)
	}

	logger.Info("refresh complete",
		"summaries", len(summaries),
		"fallbacks", fallback,
		"new_items", newCount,
		"took", time.Since(start).Round(time.Millisecond))
	return nil
}

// enrichTop pulls page metadata and full article text for the first N
// articles. Every failure here is isolated to its article.
func (a *App) enrichTop(ctx context.Context, articles []news.Article) {
	n := a.cfg.EnrichTopN
	if n > len(articles) {
		n = len(articles)
	}
	if n <= 0 {
		return
	}

	enriched := 0
	for i := 0; i < n; i++ {
		meta := a.feeds.EnrichArticle(ctx, articles[i].BestURL())
		if meta.IsZero() {
			continue
		}
		enriched++
		applyMetadata(&articles[i], meta)
	}
	metrics.Global.AddArticlesEnriched(enriched)

	byURL := make(map[string][]int)
	var missing []string
	for i := 0; i < n; i++ {
		url := articles[i].BestURL()
		if articles[i].ContentText != "" || url == "" {
			continue
		}
		if _, dup := byURL[url]; !dup {
			missing = append(missing, url)
		}
		byURL[url] = append(byURL[url], i)
	}
	if len(missing) == 0 {
		return
	}

	texts := a.scrape(missing, a.cfg.ScrapeConcurrency)
	for url, text := range texts {
		for _, i := range byURL[url] {
			articles[i].ContentText = text
		}
	}
	metrics.Global.AddArticlesScraped(len(texts))
}

// recordSeen counts how many articles are new since the last runs and
// marks the current set. Bookkeeping failures only warn.
func (a *App) recordSeen(articles []news.Article) int {
	if a.seen == nil {
		return len(articles)
	}
	known := 0
	for i := range articles {
		if a.seen.IsSeen(articles[i].Hash) {
			known++
		}
		a.seen.MarkSeen(articles[i])
	}
	metrics.Global.AddKnownArticles(known)
	if err := a.seen.Save(); err != nil {
		logger.Warn("failed to save seen cache", "error", err)
	}
	return len(articles) - known
}

func applyMetadata(article *news.Article, meta feed.Metadata) {
	if article.Title == "" && meta.Title != "" {
		article.Title = meta.Title
		article.Hash = news.ComputeHash(article.Title, article.AggregatorURL)
	}
	if article.AuthorName == "" {
		article.AuthorName = meta.Author
	}
	if article.SummaryText == "" {
		article.SummaryText = meta.Description
	}
}

func countFallbacks(summaries []news.SummaryResult) (parsed, fallback int) {
	for _, s := range summaries {
		if len(s.Bullets) == 1 && s.Bullets[0] == news.FallbackBullet {
			fallback++
		} else {
			parsed++
		}
	}
	return parsed, fallback
}
