package feed

import (
	"reflect"
	"testing"

	"github.com/mmcdole/gofeed"
)

func newTestResolver() *Resolver {
	return NewResolver([]string{"techmeme.com", "www.techmeme.com"})
}

func TestIsExternal(t *testing.T) {
	r := newTestResolver()

	cases := []struct {
		href string
		want bool
	}{
		{"https://example.com/story", true},
		{"http://example.com/story", true},
		{"https://www.techmeme.com/241001/p1", false},
		{"https://TECHMEME.com/241001/p1", false},
		{"ftp://example.com/file", false},
		{"/relative/path", false},
		{"mailto:tips@example.com", false},
		{"://not a url", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := r.IsExternal(tc.href); got != tc.want {
			t.Errorf("IsExternal(%q) = %v, want %v", tc.href, got, tc.want)
		}
	}
}

func TestStripTracking(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"https://example.com/a?utm_source=x&utm_medium=y&id=7", "https://example.com/a?id=7"},
		{"https://example.com/a?fbclid=abc&gclid=def&mc_cid=1&mc_eid=2", "https://example.com/a"},
		{"https://example.com/a", "https://example.com/a"},
		{"https://example.com/a?page=2", "https://example.com/a?page=2"},
		// Surviving parameters keep their order and escaping.
		{"https://example.com/a?z=1&utm_source=x&a=2", "https://example.com/a?z=1&a=2"},
		{"https://example.com/a?q=a%2Bb&fbclid=z&sort=desc", "https://example.com/a?q=a%2Bb&sort=desc"},
	}
	for _, tc := range cases {
		if got := StripTracking(tc.in); got != tc.want {
			t.Errorf("StripTracking(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestResolveLinks_PrefersEntryLinkList(t *testing.T) {
	r := newTestResolver()
	item := &gofeed.Item{
		Link: "https://www.techmeme.com/241001/p1",
		Links: []string{
			"https://www.techmeme.com/241001/p1",
			"https://publisher.example.com/story?utm_source=techmeme",
		},
		Description: `<p><a href="https://other.example.com/b">b</a></p>`,
		Content:     `<p><a href="https://third.example.com/c">c</a></p>`,
	}

	agg, original, related := r.ResolveLinks(item)
	if agg != "https://www.techmeme.com/241001/p1" {
		t.Errorf("aggregator URL = %q", agg)
	}
	if original != "https://publisher.example.com/story" {
		t.Errorf("original URL = %q, want tracking-stripped publisher link", original)
	}
	wantRelated := []string{
		"https://publisher.example.com/story",
		"https://other.example.com/b",
		"https://third.example.com/c",
	}
	if !reflect.DeepEqual(related, wantRelated) {
		t.Errorf("related = %v, want %v", related, wantRelated)
	}
}

func TestResolveLinks_DedupPreservesFirstSeenOrder(t *testing.T) {
	r := newTestResolver()
	item := &gofeed.Item{
		Link:  "https://www.techmeme.com/241001/p2",
		Links: []string{"https://a.example.com/x?utm_campaign=z"},
		Description: `<a href="https://b.example.com/y">y</a>` +
			`<a href="https://a.example.com/x">x again</a>`,
		Content: `<a href="https://b.example.com/y">y again</a>`,
	}

	_, _, related := r.ResolveLinks(item)
	want := []string{"https://a.example.com/x", "https://b.example.com/y"}
	if !reflect.DeepEqual(related, want) {
		t.Errorf("related = %v, want %v", related, want)
	}
}

func TestResolveLinks_FallsBackToSummaryAnchor(t *testing.T) {
	r := newTestResolver()
	item := &gofeed.Item{
		Link:        "https://www.techmeme.com/241001/p3",
		Links:       []string{"https://www.techmeme.com/241001/p3"},
		Description: `<a href="https://publisher.example.com/story">story</a>`,
	}

	_, original, _ := r.ResolveLinks(item)
	if original != "https://publisher.example.com/story" {
		t.Errorf("original URL = %q", original)
	}
}

func TestResolveLinks_NoExternalCandidates(t *testing.T) {
	r := newTestResolver()
	item := &gofeed.Item{
		Link:        "https://www.techmeme.com/241001/p4",
		Links:       []string{"https://www.techmeme.com/241001/p4"},
		Description: "no anchors here",
	}

	agg, original, related := r.ResolveLinks(item)
	if original != agg {
		t.Errorf("original = %q, want aggregator URL %q", original, agg)
	}
	if len(related) != 0 {
		t.Errorf("related = %v, want empty", related)
	}
}

func TestResolveLinks_MalformedHrefsAreSkipped(t *testing.T) {
	r := newTestResolver()
	item := &gofeed.Item{
		Link:        "https://www.techmeme.com/241001/p5",
		Links:       []string{"http://[::1]:namedport"},
		Description: `<a href="https://good.example.com/a">a</a><a href="%zz">bad</a>`,
	}

	_, original, related := r.ResolveLinks(item)
	if original != "https://good.example.com/a" {
		t.Errorf("original = %q", original)
	}
	if len(related) != 1 {
		t.Errorf("related = %v, want just the good link", related)
	}
}
