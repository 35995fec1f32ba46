package feed

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
)

// Tracking query parameters removed from every candidate URL before
// comparison and dedup.
var trackingParams = map[string]bool{
	"fbclid": true,
	"gclid":  true,
	"mc_cid": true,
	"mc_eid": true,
}

// Resolver decides which links in a feed entry point outside the aggregator.
type Resolver struct {
	hosts map[string]bool
}

func NewResolver(aggregatorHosts []string) *Resolver {
	hosts := make(map[string]bool, len(aggregatorHosts))
	for _, h := range aggregatorHosts {
		hosts[strings.ToLower(h)] = true
	}
	return &Resolver{hosts: hosts}
}

// IsExternal reports whether href points to an http(s) host outside the
// aggregator's own host set. Malformed URLs are never external.
func (r *Resolver) IsExternal(href string) bool {
	u, err := url.Parse(href)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	host := strings.ToLower(u.Hostname())
	return host != "" && !r.hosts[host]
}

// StripTracking removes utm_* and click-id query parameters from a URL.
// Surviving parameters keep their original order and encoding. A URL that
// cannot be parsed is returned as-is.
func StripTracking(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	if u.RawQuery == "" {
		return raw
	}

	var kept []string
	for _, pair := range strings.Split(u.RawQuery, "&") {
		if pair == "" {
			continue
		}
		key := pair
		if i := strings.IndexByte(pair, '='); i >= 0 {
			key = pair[:i]
		}
		if decoded, err := url.QueryUnescape(key); err == nil {
			key = decoded
		}
		if strings.HasPrefix(key, "utm_") || trackingParams[key] {
			continue
		}
		kept = append(kept, pair)
	}
	u.RawQuery = strings.Join(kept, "&")
	return u.String()
}

// ResolveLinks extracts the aggregator listing URL, the resolved external
// article URL and the deduplicated set of related external URLs from one
// feed entry. Candidates are gathered in priority order: the entry's link
// list, then anchors in the summary HTML, then anchors in the content HTML.
func (r *Resolver) ResolveLinks(item *gofeed.Item) (aggregatorURL, originalURL string, related []string) {
	aggregatorURL = item.Link

	fromLinks := r.externalLinks(item.Links)
	fromSummary := r.linksFromHTML(item.Description)
	fromContent := r.linksFromHTML(item.Content)

	seen := make(map[string]bool)
	for _, candidate := range fromLinks {
		if !seen[candidate] {
			seen[candidate] = true
			related = append(related, candidate)
		}
	}
	for _, candidate := range fromSummary {
		if !seen[candidate] {
			seen[candidate] = true
			related = append(related, candidate)
		}
	}
	for _, candidate := range fromContent {
		if !seen[candidate] {
			seen[candidate] = true
			related = append(related, candidate)
		}
	}

	switch {
	case len(fromLinks) > 0:
		originalURL = fromLinks[0]
	case len(related) > 0:
		originalURL = related[0]
	default:
		originalURL = aggregatorURL
	}
	return aggregatorURL, originalURL, related
}

func (r *Resolver) externalLinks(hrefs []string) []string {
	var out []string
	for _, href := range hrefs {
		if r.IsExternal(href) {
			out = append(out, StripTracking(href))
		}
	}
	return out
}

// linksFromHTML collects external anchor targets from an HTML fragment.
func (r *Resolver) linksFromHTML(html string) []string {
	if html == "" {
		return nil
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}
	var out []string
	doc.Find("a[href]").Each(func(i int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		if r.IsExternal(href) {
			out = append(out, StripTracking(href))
		}
	})
	return out
}
