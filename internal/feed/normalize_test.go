package feed

import (
	"strings"
	"testing"
	"time"

	"github.com/mmcdole/gofeed"
)

func TestHTMLToText(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"plain", "just text", "just text"},
		{
			"strips script and style",
			`<div><script>var x = 1;</script><style>p{color:red}</style><p>Hello <b>world</b></p></div>`,
			"Hello world",
		},
		{
			"collapses whitespace",
			"<p>one\n\t two   three</p>",
			"one two three",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := HTMLToText(tc.in); got != tc.want {
				t.Errorf("HTMLToText(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestNormalize_HashDependsOnTitleAndAggregatorURL(t *testing.T) {
	n := NewNormalizer(newTestResolver(), "techmeme")

	a := n.Normalize(&gofeed.Item{
		Title:       "Big launch",
		Link:        "https://www.techmeme.com/241001/p1",
		Description: "first pass",
	})
	b := n.Normalize(&gofeed.Item{
		Title:       "Big launch",
		Link:        "https://www.techmeme.com/241001/p1",
		Description: "updated blurb, different body",
	})
	if a.Hash == "" || a.Hash != b.Hash {
		t.Errorf("hashes differ for same title+URL: %q vs %q", a.Hash, b.Hash)
	}

	c := n.Normalize(&gofeed.Item{
		Title: "Big launch",
		Link:  "https://www.techmeme.com/241001/p2",
	})
	if c.Hash == a.Hash {
		t.Error("hash should change when the aggregator URL changes")
	}
}

func TestNormalize_AuthorName(t *testing.T) {
	n := NewNormalizer(newTestResolver(), "techmeme")

	cases := []struct {
		name string
		item gofeed.Item
		want string
	}{
		{"direct author", gofeed.Item{Author: &gofeed.Person{Name: "Ada"}}, "Ada"},
		{"authors list", gofeed.Item{Authors: []*gofeed.Person{nil, {Name: "Grace"}}}, "Grace"},
		{"none", gofeed.Item{}, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := n.Normalize(&tc.item).AuthorName; got != tc.want {
				t.Errorf("author = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestNormalize_PublishedAt(t *testing.T) {
	n := NewNormalizer(newTestResolver(), "techmeme")

	parsed := time.Date(2024, 9, 10, 12, 30, 0, 0, time.UTC)
	got := n.Normalize(&gofeed.Item{PublishedParsed: &parsed}).PublishedAt
	ts, err := time.Parse(time.RFC3339, got)
	if err != nil {
		t.Fatalf("published_at %q is not RFC-3339: %v", got, err)
	}
	if !ts.Equal(parsed) {
		t.Errorf("published_at = %v, want instant %v", ts, parsed)
	}

	got = n.Normalize(&gofeed.Item{Published: "Tue, 10 Sep 2024 12:30:00 +0000"}).PublishedAt
	ts, err = time.Parse(time.RFC3339, got)
	if err != nil {
		t.Fatalf("published_at %q is not RFC-3339: %v", got, err)
	}
	if !ts.Equal(parsed) {
		t.Errorf("RFC-2822 fallback = %v, want instant %v", ts, parsed)
	}

	got = n.Normalize(&gofeed.Item{Published: "not a date"}).PublishedAt
	if _, err := time.Parse(time.RFC3339, got); err != nil {
		t.Errorf("fallback published_at %q is not RFC-3339: %v", got, err)
	}
}

func TestNormalize_PublishedAtRendersUTC(t *testing.T) {
	n := NewNormalizer(newTestResolver(), "techmeme")

	zoned := time.Date(2024, 9, 10, 14, 30, 0, 0, time.FixedZone("CEST", 2*60*60))
	cases := []struct {
		name string
		item gofeed.Item
	}{
		{"parsed zoned date", gofeed.Item{PublishedParsed: &zoned}},
		{"zoneless string date", gofeed.Item{Published: "Tue, 10 Sep 2024 12:30:00 +0000"}},
		{"unparseable date", gofeed.Item{Published: "someday"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := n.Normalize(&tc.item).PublishedAt
			if !strings.HasSuffix(got, "Z") {
				t.Errorf("published_at = %q, want UTC rendering with Z suffix", got)
			}
			ts, err := time.Parse(time.RFC3339, got)
			if err != nil {
				t.Fatalf("published_at %q is not RFC-3339: %v", got, err)
			}
			if tc.item.PublishedParsed != nil && !ts.Equal(zoned) {
				t.Errorf("published_at = %v, zone conversion changed the instant %v", ts, zoned)
			}
		})
	}
}

func TestNormalize_FeedScenario(t *testing.T) {
	n := NewNormalizer(newTestResolver(), "techmeme")

	items := []*gofeed.Item{
		{
			Title: "Internal only",
			Link:  "https://www.techmeme.com/241001/p1",
			Links: []string{"https://www.techmeme.com/241001/p1"},
		},
		{
			Title: "External with tracking",
			Link:  "https://www.techmeme.com/241001/p2",
			Links: []string{"https://publisher.example.com/story?utm_source=techmeme"},
		},
		{
			Title: "No candidates",
			Link:  "https://www.techmeme.com/241001/p3",
		},
	}

	var articles []string
	for _, it := range items {
		a := n.Normalize(it)
		articles = append(articles, a.OriginalURL)
		if a.AggregatorURL != it.Link {
			t.Errorf("aggregator URL = %q, want %q", a.AggregatorURL, it.Link)
		}
	}

	if articles[0] != items[0].Link {
		t.Errorf("internal-only entry: original = %q, want aggregator URL", articles[0])
	}
	if articles[1] != "https://publisher.example.com/story" {
		t.Errorf("tracked entry: original = %q, want stripped publisher URL", articles[1])
	}
	if articles[2] != items[2].Link {
		t.Errorf("linkless entry: original = %q, want aggregator URL", articles[2])
	}
}
