// Package news defines the canonical domain types shared by the feed,
// summarization and storage layers.
package news

import (
	"crypto/sha256"
	"encoding/hex"
)

// maxRequestChars caps the text sent to the model per article.
const maxRequestChars = 8000

// Article is the normalized representation of a single feed entry.
// AggregatorURL is the stable identity anchor; OriginalURL is the resolved
// external publisher link when one could be found.
type Article struct {
	Title         string   `json:"title"`
	AggregatorURL string   `json:"aggregator_url"`
	OriginalURL   string   `json:"original_url,omitempty"`
	RelatedURLs   []string `json:"related_urls,omitempty"`

	SummaryText string `json:"summary_text,omitempty"`
	SummaryHTML string `json:"summary_html,omitempty"`
	ContentText string `json:"content_text,omitempty"`
	ContentHTML string `json:"content_html,omitempty"`

	PublishedAt string   `json:"published_at"`
	AuthorName  string   `json:"author_name,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Source      string   `json:"source,omitempty"`

	// Hash is the identity key: sha256 over title + aggregator URL. Two
	// fetches of the same headline and link always collide, which is what
	// makes cross-run dedup by identity work.
	Hash string `json:"hash"`
}

// ComputeHash returns the identity key for a title/aggregator-URL pair.
func ComputeHash(title, aggregatorURL string) string {
	sum := sha256.Sum256([]byte(title + aggregatorURL))
	return hex.EncodeToString(sum[:])
}

// BestURL returns the resolved external URL, falling back to the aggregator
// listing when no external link was found.
func (a *Article) BestURL() string {
	if a.OriginalURL != "" {
		return a.OriginalURL
	}
	return a.AggregatorURL
}

// BestText prefers the full article text over the feed summary.
func (a *Article) BestText() string {
	if a.ContentText != "" {
		return a.ContentText
	}
	return a.SummaryText
}

// ToSummaryRequest projects the article into the payload sent to the
// summarization service, truncating the text to the per-article budget.
func (a *Article) ToSummaryRequest() SummaryRequest {
	text := a.BestText()
	if runes := []rune(text); len(runes) > maxRequestChars {
		text = string(runes[:maxRequestChars])
	}
	return SummaryRequest{
		Title: a.Title,
		URL:   a.BestURL(),
		Text:  text,
	}
}
