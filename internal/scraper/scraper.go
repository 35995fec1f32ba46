// Package scraper extracts full article text for the articles that will be
// summarized, so prompts can prefer real content over feed excerpts.
package scraper

import (
	"strings"
	"sync"
	"time"

	readability "github.com/go-shiori/go-readability"

	"technews/internal/logger"
)

const (
	extractTimeout = 20 * time.Second
	minContentLen  = 200
)

// ExtractArticles fetches the given URLs through a worker pool and returns
// the readable text per URL. Failures and too-short extractions are logged
// and skipped; the result only holds usable content.
func ExtractArticles(urls []string, workers int) map[string]string {
	if len(urls) == 0 {
		return map[string]string{}
	}
	if workers < 1 {
		workers = 1
	}

	results := make(map[string]string, len(urls))
	var mu sync.Mutex
	var wg sync.WaitGroup
	jobs := make(chan string, len(urls))

	for i := 0; i < workers; i++ {
		go func() {
			for url := range jobs {
				text, err := extractOne(url)
				if err != nil {
					logger.Warn("article extraction failed", "url", url, "error", err)
				} else if len(text) < minContentLen {
					logger.Debug("extracted content too short", "url", url, "chars", len(text))
				} else {
					mu.Lock()
					results[url] = text
					mu.Unlock()
					logger.Debug("article extracted", "url", url, "chars", len(text))
				}
				wg.Done()
			}
		}()
	}

	for _, url := range urls {
		wg.Add(1)
		jobs <- url
	}
	wg.Wait()
	close(jobs)

	return results
}

func extractOne(url string) (string, error) {
	article, err := readability.FromURL(url, extractTimeout)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(article.TextContent), nil
}
