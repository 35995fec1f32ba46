package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"technews/internal/news"
)

// SeenArticle records one article identity that already went through a run.
type SeenArticle struct {
	Hash   string    `json:"hash"`
	Title  string    `json:"title"`
	URL    string    `json:"url"`
	SeenAt time.Time `json:"seen_at"`
}

// SeenCache tracks article content hashes across runs in a JSON file so
// the pipeline can tell new items from repeats. Entries expire after the
// configured TTL.
type SeenCache struct {
	filePath string
	ttlHours int
	items    map[string]SeenArticle
	mu       sync.RWMutex
}

func NewSeenCache(filePath string, ttlHours int) *SeenCache {
	return &SeenCache{
		filePath: filePath,
		ttlHours: ttlHours,
		items:    make(map[string]SeenArticle),
	}
}

// Load reads the cache file, dropping entries past their TTL. A missing
// file means an empty cache.
func (sc *SeenCache) Load() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	data, err := os.ReadFile(sc.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read seen cache: %w", err)
	}
	if len(data) == 0 {
		return nil
	}

	var items []SeenArticle
	if err := json.Unmarshal(data, &items); err != nil {
		return fmt.Errorf("failed to unmarshal seen cache: %w", err)
	}

	cutoff := time.Now().Add(-time.Duration(sc.ttlHours) * time.Hour)
	for _, item := range items {
		if item.SeenAt.After(cutoff) {
			sc.items[item.Hash] = item
		}
	}
	return nil
}

// Save writes the current cache back to disk.
func (sc *SeenCache) Save() error {
	sc.mu.RLock()
	items := make([]SeenArticle, 0, len(sc.items))
	for _, item := range sc.items {
		items = append(items, item)
	}
	sc.mu.RUnlock()

	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal seen cache: %w", err)
	}
	if dir := filepath.Dir(sc.filePath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create cache dir: %w", err)
		}
	}
	if err := os.WriteFile(sc.filePath, data, 0644); err != nil {
		return fmt.Errorf("failed to write seen cache: %w", err)
	}
	return nil
}

// IsSeen reports whether the hash was recorded within the TTL window.
func (sc *SeenCache) IsSeen(hash string) bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()

	item, exists := sc.items[hash]
	if !exists {
		return false
	}
	cutoff := time.Now().Add(-time.Duration(sc.ttlHours) * time.Hour)
	return item.SeenAt.After(cutoff)
}

// MarkSeen records an article identity.
func (sc *SeenCache) MarkSeen(article news.Article) {
	if article.Hash == "" {
		return
	}
	sc.mu.Lock()
	defer sc.mu.Unlock()

	sc.items[article.Hash] = SeenArticle{
		Hash:   article.Hash,
		Title:  article.Title,
		URL:    article.AggregatorURL,
		SeenAt: time.Now(),
	}
}

// Prune drops expired entries from memory.
func (sc *SeenCache) Prune() {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	cutoff := time.Now().Add(-time.Duration(sc.ttlHours) * time.Hour)
	for hash, item := range sc.items {
		if item.SeenAt.Before(cutoff) {
			delete(sc.items, hash)
		}
	}
}

// Len returns the number of tracked identities.
func (sc *SeenCache) Len() int {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return len(sc.items)
}
