package metrics

import (
	"sync"
	"time"
)

type Metrics struct {
	mu sync.RWMutex

	// Counters
	ArticlesFetched   int64
	ArticlesEnriched  int64
	ArticlesScraped   int64
	SummariesParsed   int64
	FallbackSummaries int64
	KnownArticles     int64
	RunsCompleted     int64
	RunsFailed        int64

	// Timings
	LastRunDuration    time.Duration
	AverageRunDuration time.Duration
	TotalRunDuration   time.Duration
	RunCount           int64

	// Status
	LastRunTime   time.Time
	LastErrorTime time.Time
	LastError     string
	IsHealthy     bool
}

var Global = &Metrics{IsHealthy: true}

func (m *Metrics) AddArticlesFetched(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ArticlesFetched += int64(n)
}

func (m *Metrics) AddArticlesEnriched(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ArticlesEnriched += int64(n)
}

func (m *Metrics) AddArticlesScraped(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ArticlesScraped += int64(n)
}

func (m *Metrics) AddSummaries(parsed, fallback int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SummariesParsed += int64(parsed)
	m.FallbackSummaries += int64(fallback)
}

func (m *Metrics) AddKnownArticles(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.KnownArticles += int64(n)
}

func (m *Metrics) RecordRunDuration(duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.LastRunDuration = duration
	m.TotalRunDuration += duration
	m.RunCount++

	if m.RunCount > 0 {
		m.AverageRunDuration = m.TotalRunDuration / time.Duration(m.RunCount)
	}
}

func (m *Metrics) SetLastRun() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RunsCompleted++
	m.LastRunTime = time.Now()
	m.IsHealthy = true
}

func (m *Metrics) SetError(err string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RunsFailed++
	m.LastError = err
	m.LastErrorTime = time.Now()
	m.IsHealthy = false
}

func (m *Metrics) GetStats() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return map[string]interface{}{
		"articles_fetched":        m.ArticlesFetched,
		"articles_enriched":       m.ArticlesEnriched,
		"articles_scraped":        m.ArticlesScraped,
		"summaries_parsed":        m.SummariesParsed,
		"fallback_summaries":      m.FallbackSummaries,
		"known_articles":          m.KnownArticles,
		"runs_completed":          m.RunsCompleted,
		"runs_failed":             m.RunsFailed,
		"last_run_duration_ms":    m.LastRunDuration.Milliseconds(),
		"average_run_duration_ms": m.AverageRunDuration.Milliseconds(),
		"last_run_time":           m.LastRunTime.Format(time.RFC3339),
		"last_error_time":         m.LastErrorTime.Format(time.RFC3339),
		"last_error":              m.LastError,
		"is_healthy":              m.IsHealthy,
	}
}
