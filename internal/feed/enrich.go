package feed

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"technews/internal/logger"
)

// articleTypes are the schema.org types considered for structured-data
// fallback values.
var articleTypes = map[string]bool{
	"Article":     true,
	"NewsArticle": true,
	"BlogPosting": true,
}

// Metadata is page metadata collected from Open Graph / Twitter meta tags
// and JSON-LD blocks. All fields are optional.
type Metadata struct {
	Title         string `json:"og_title,omitempty"`
	Description   string `json:"og_description,omitempty"`
	Image         string `json:"og_image,omitempty"`
	SiteName      string `json:"og_site_name,omitempty"`
	TwitterTitle  string `json:"twitter_title,omitempty"`
	TwitterDesc   string `json:"twitter_description,omitempty"`
	TwitterImage  string `json:"twitter_image,omitempty"`
	Author        string `json:"author,omitempty"`
	DatePublished string `json:"date_published,omitempty"`
	LDJSON        []any  `json:"ld_json,omitempty"`
}

// IsZero reports whether no metadata was found at all.
func (m Metadata) IsZero() bool {
	return m.Title == "" && m.Description == "" && m.Image == "" &&
		m.SiteName == "" && m.TwitterTitle == "" && m.TwitterDesc == "" &&
		m.TwitterImage == "" && m.Author == "" && m.DatePublished == "" &&
		len(m.LDJSON) == 0
}

// EnrichArticle fetches the target page and extracts its metadata. Direct
// meta tags win; typed JSON-LD blocks only fill keys that are still empty.
// Any network or parse failure yields empty metadata, never an error.
func (c *Client) EnrichArticle(ctx context.Context, url string) Metadata {
	if url == "" {
		return Metadata{}
	}
	if cached, ok := c.enrichCache.Get(url); ok {
		return cached.(Metadata)
	}

	body, err := c.get(ctx, url)
	if err != nil {
		logger.Warn("enrichment fetch failed", "url", url, "error", err)
		return Metadata{}
	}

	meta := parseMetadata(body)
	c.enrichCache.Set(url, meta)
	return meta
}

func parseMetadata(body []byte) Metadata {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return Metadata{}
	}

	tags := make(map[string]string)
	doc.Find(`meta[property^="og:"]`).Each(func(i int, s *goquery.Selection) {
		if prop, ok := s.Attr("property"); ok {
			tags[prop], _ = s.Attr("content")
		}
	})
	doc.Find(`meta[name^="twitter:"]`).Each(func(i int, s *goquery.Selection) {
		if name, ok := s.Attr("name"); ok {
			tags[name], _ = s.Attr("content")
		}
	})

	var blocks []any
	doc.Find(`script[type="application/ld+json"]`).Each(func(i int, s *goquery.Selection) {
		raw := strings.TrimSpace(s.Text())
		if raw == "" {
			return
		}
		var block any
		if err := json.Unmarshal([]byte(raw), &block); err == nil {
			blocks = append(blocks, block)
		}
	})

	meta := Metadata{
		Title:        tags["og:title"],
		Description:  tags["og:description"],
		Image:        tags["og:image"],
		SiteName:     tags["og:site_name"],
		TwitterTitle: tags["twitter:title"],
		TwitterDesc:  tags["twitter:description"],
		TwitterImage: tags["twitter:image"],
	}
	if len(blocks) > 2 {
		meta.LDJSON = blocks[:2]
	} else {
		meta.LDJSON = blocks
	}

	// Structured-data fallback for keys meta tags did not populate.
	for _, block := range blocks {
		obj, ok := block.(map[string]any)
		if !ok || !articleTypes[str(obj["@type"])] {
			continue
		}
		if meta.Author == "" {
			meta.Author = ldAuthor(obj["author"])
		}
		if meta.DatePublished == "" {
			meta.DatePublished = str(obj["datePublished"])
		}
		if meta.Title == "" {
			meta.Title = str(obj["headline"])
		}
	}
	return meta
}

// ldAuthor digs the author name out of the schema.org author field, which
// may be an object or a list of objects.
func ldAuthor(v any) string {
	switch author := v.(type) {
	case map[string]any:
		return str(author["name"])
	case []any:
		if len(author) > 0 {
			if obj, ok := author[0].(map[string]any); ok {
				return str(obj["name"])
			}
		}
	}
	return ""
}

func str(v any) string {
	s, _ := v.(string)
	return s
}
