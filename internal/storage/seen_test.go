package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"technews/internal/news"
)

func TestSeenCache_MarkSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seen.json")

	cache := NewSeenCache(path, 72)
	article := news.Article{
		Title:         "Story",
		AggregatorURL: "https://www.techmeme.com/241001/p1",
		Hash:          news.ComputeHash("Story", "https://www.techmeme.com/241001/p1"),
	}
	cache.MarkSeen(article)
	if !cache.IsSeen(article.Hash) {
		t.Fatal("freshly marked hash should be seen")
	}
	if err := cache.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	reloaded := NewSeenCache(path, 72)
	if err := reloaded.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reloaded.IsSeen(article.Hash) {
		t.Error("hash should survive a save/load cycle")
	}
	if reloaded.IsSeen("deadbeef") {
		t.Error("unknown hash reported as seen")
	}
}

func TestSeenCache_LoadMissingFile(t *testing.T) {
	cache := NewSeenCache(filepath.Join(t.TempDir(), "absent.json"), 72)
	if err := cache.Load(); err != nil {
		t.Fatalf("Load on missing file: %v", err)
	}
	if cache.Len() != 0 {
		t.Errorf("Len = %d, want 0", cache.Len())
	}
}

func TestSeenCache_TTLExpiry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seen.json")
	stale := []SeenArticle{
		{Hash: "old", Title: "old story", SeenAt: time.Now().Add(-100 * time.Hour)},
		{Hash: "fresh", Title: "fresh story", SeenAt: time.Now().Add(-time.Hour)},
	}
	data, err := json.Marshal(stale)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cache := NewSeenCache(path, 72)
	if err := cache.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cache.IsSeen("old") {
		t.Error("entry past the TTL should be dropped on load")
	}
	if !cache.IsSeen("fresh") {
		t.Error("entry within the TTL should survive")
	}
	if cache.Len() != 1 {
		t.Errorf("Len = %d, want 1", cache.Len())
	}
}

func TestSeenCache_IgnoresHashlessArticles(t *testing.T) {
	cache := NewSeenCache(filepath.Join(t.TempDir(), "seen.json"), 72)
	cache.MarkSeen(news.Article{Title: "no identity"})
	if cache.Len() != 0 {
		t.Errorf("Len = %d, want hashless article ignored", cache.Len())
	}
}
