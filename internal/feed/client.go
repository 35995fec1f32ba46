package feed

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/mmcdole/gofeed"

	"technews/internal/cache"
	"technews/internal/config"
	"technews/internal/logger"
	"technews/internal/news"
	"technews/internal/retry"
)

// Response codes worth another attempt; everything else 4xx/5xx fails the
// request outright.
var transientStatus = map[int]bool{
	http.StatusTooManyRequests:     true,
	http.StatusInternalServerError: true,
	http.StatusBadGateway:          true,
	http.StatusServiceUnavailable:  true,
	http.StatusGatewayTimeout:      true,
}

// Client fetches the aggregator feed and turns its entries into canonical
// articles. Enrichment fetches are best-effort and memoized.
type Client struct {
	httpClient  *http.Client
	parser      *gofeed.Parser
	normalizer  *Normalizer
	feedURL     string
	userAgent   string
	retry       retry.Config
	enrichCache *cache.Cache
}

func NewClient(cfg *config.Config, sources *Sources) *Client {
	resolver := NewResolver(sources.AggregatorHosts)
	feedURL := cfg.FeedURL
	if feedURL == "" {
		feedURL = sources.Feed
	}
	return &Client{
		httpClient: &http.Client{Timeout: cfg.RequestTimeout},
		parser:     gofeed.NewParser(),
		normalizer: NewNormalizer(resolver, sources.SourceName),
		feedURL:    feedURL,
		userAgent:  cfg.UserAgent,
		retry: retry.Config{
			MaxAttempts: cfg.RetryAttempts,
			Delay:       cfg.RetryDelay,
			Backoff:     true,
		},
		enrichCache: cache.New(cfg.EnrichCacheTTL),
	}
}

// FeedURL returns the configured feed endpoint.
func (c *Client) FeedURL() string {
	return c.feedURL
}

// FetchArticles downloads the feed, normalizes every entry in feed order
// and truncates to limit when limit > 0. A fetch or parse failure is fatal
// to the call.
func (c *Client) FetchArticles(ctx context.Context, limit int) ([]news.Article, error) {
	body, err := c.get(ctx, c.feedURL)
	if err != nil {
		return nil, fmt.Errorf("fetch feed %s: %w", c.feedURL, err)
	}

	parsed, err := c.parser.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", c.feedURL, err)
	}

	articles := make([]news.Article, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		articles = append(articles, c.normalizer.Normalize(item))
	}
	logger.Debug("feed fetched", "url", c.feedURL, "entries", len(articles))

	if limit > 0 && len(articles) > limit {
		articles = articles[:limit]
	}
	return articles, nil
}

// get performs a GET with retry on transient statuses and network errors.
func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	var body []byte

	err := retry.WithRetry(ctx, c.retry, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return &retry.Permanent{Err: err}
		}
		req.Header.Set("User-Agent", c.userAgent)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if transientStatus[resp.StatusCode] {
			return fmt.Errorf("transient HTTP %d from %s", resp.StatusCode, url)
		}
		if resp.StatusCode != http.StatusOK {
			return &retry.Permanent{Err: fmt.Errorf("HTTP %d from %s", resp.StatusCode, url)}
		}

		body, err = io.ReadAll(resp.Body)
		return err
	})
	if err != nil {
		return nil, err
	}
	return body, nil
}
