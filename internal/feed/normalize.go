package feed

import (
	"net/mail"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"technews/internal/news"
)

// Normalizer converts raw feed entries into canonical articles.
type Normalizer struct {
	resolver *Resolver
	source   string
}

func NewNormalizer(resolver *Resolver, source string) *Normalizer {
	return &Normalizer{resolver: resolver, source: source}
}

// Normalize builds one canonical article from a feed entry. The aggregator
// URL may be empty when the entry carries no link at all; callers treat
// such articles as unidentifiable.
func (n *Normalizer) Normalize(item *gofeed.Item) news.Article {
	aggregatorURL, originalURL, related := n.resolver.ResolveLinks(item)

	article := news.Article{
		Title:         item.Title,
		AggregatorURL: aggregatorURL,
		OriginalURL:   originalURL,
		RelatedURLs:   related,
		SummaryHTML:   item.Description,
		SummaryText:   HTMLToText(item.Description),
		Tags:          item.Categories,
		Source:        n.source,
		AuthorName:    authorName(item),
		PublishedAt:   publishedAt(item),
	}
	if item.Content != "" {
		article.ContentHTML = item.Content
		article.ContentText = HTMLToText(item.Content)
	}
	article.Hash = news.ComputeHash(article.Title, article.AggregatorURL)
	return article
}

// HTMLToText strips script/style subtrees, extracts the visible text and
// collapses whitespace runs to single spaces.
func HTMLToText(html string) string {
	if html == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return strings.Join(strings.Fields(html), " ")
	}
	doc.Find("script, style").Remove()
	return strings.Join(strings.Fields(doc.Text()), " ")
}

// authorName prefers the direct author field and falls back to the first
// entry of the authors list.
func authorName(item *gofeed.Item) string {
	if item.Author != nil && item.Author.Name != "" {
		return item.Author.Name
	}
	for _, a := range item.Authors {
		if a != nil && a.Name != "" {
			return a.Name
		}
	}
	return ""
}

// publishedAt normalizes the entry timestamp to an ISO-8601 UTC string with
// a Z suffix. The parsed feed date wins; otherwise the published/updated
// strings are parsed as RFC-2822. When nothing parses, a best-effort UTC now
// is used.
func publishedAt(item *gofeed.Item) string {
	if item.PublishedParsed != nil {
		return item.PublishedParsed.UTC().Format(time.RFC3339)
	}
	if item.UpdatedParsed != nil {
		return item.UpdatedParsed.UTC().Format(time.RFC3339)
	}
	for _, raw := range []string{item.Published, item.Updated} {
		if raw == "" {
			continue
		}
		if t, err := mail.ParseDate(raw); err == nil {
			return t.UTC().Format(time.RFC3339)
		}
	}
	return time.Now().UTC().Format(time.RFC3339)
}
