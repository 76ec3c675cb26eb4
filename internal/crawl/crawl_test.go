package crawl

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/hyperifyio/termforge/internal/extract"
	"github.com/hyperifyio/termforge/internal/fetch"
	"github.com/hyperifyio/termforge/internal/robots"
	"github.com/hyperifyio/termforge/internal/search"
)

const body = "Inflation is a sustained increase in the general price level of goods and services."

type denyList struct {
	mu     sync.Mutex
	denied map[string]bool
	calls  []string
}

func (d *denyList) IsAllowed(_ context.Context, u, ua string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = append(d.calls, ua)
	return !d.denied[u]
}

type fakeFetcher struct {
	pages map[string]string
	err   map[string]error
}

func (f *fakeFetcher) Get(_ context.Context, u string) ([]byte, string, error) {
	if err := f.err[u]; err != nil {
		return nil, "", err
	}
	p, ok := f.pages[u]
	if !ok {
		return nil, "", &fetch.StatusError{URL: u, StatusCode: 404}
	}
	return []byte(p), "text/html", nil
}

func TestCrawl_DisallowedIsAbsent(t *testing.T) {
	pol := &denyList{denied: map[string]bool{"https://a.example/x": true}}
	c := &Crawler{Robots: pol, Fetcher: &fakeFetcher{pages: map[string]string{"https://a.example/x": "<p>" + body + "</p>"}}}
	if d := c.Crawl(context.Background(), search.Result{URL: "https://a.example/x"}); d != nil {
		t.Fatalf("expected nil, got %+v", d)
	}
	if len(pol.calls) != 1 || pol.calls[0] != DefaultUserAgent {
		t.Fatalf("robots should be asked with the crawler UA: %v", pol.calls)
	}
}

func TestCrawl_TitleFallsBackToSearchResult(t *testing.T) {
	c := &Crawler{Fetcher: &fakeFetcher{pages: map[string]string{"https://a.example/": "<html><body><p>" + body + "</p></body></html>"}}}
	d := c.Crawl(context.Background(), search.Result{Title: "From search", URL: "https://a.example/"})
	if d == nil {
		t.Fatalf("expected document")
	}
	if d.Title != "From search" || d.Content() != body {
		t.Fatalf("unexpected document: %+v", d)
	}
}

func TestCrawlAll_PreservesOrderAndDropsFailures(t *testing.T) {
	pages := map[string]string{
		"https://1.example/": "<title>One</title><p>" + body + " one</p>",
		"https://3.example/": "<title>Three</title><p>" + body + " three</p>",
		"https://4.example/": "<title>Four</title><p>short</p>",
	}
	c := &Crawler{Fetcher: &fakeFetcher{pages: pages}, Extractor: extract.Blocks{}}
	in := []search.Result{
		{URL: "https://1.example/"},
		{URL: "https://2.example/"},
		{URL: "https://3.example/"},
		{URL: "https://4.example/"},
	}
	got := c.CrawlAll(context.Background(), in)
	if len(got) != 3 || got[0].Title != "One" || got[1].Title != "Three" || got[2].Title != "Four" {
		t.Fatalf("unexpected documents: %+v", got)
	}
	if len(got[2].Texts) != 0 || got[2].Content() != "" {
		t.Fatalf("page without blocks should have no texts: %+v", got[2])
	}
}

func TestCrawl_PageWithoutBlocksIsPresent(t *testing.T) {
	c := &Crawler{Fetcher: &fakeFetcher{pages: map[string]string{"https://a.example/": "<html><body><p>tiny</p></body></html>"}}}
	d := c.Crawl(context.Background(), search.Result{Title: "Empty page", URL: "https://a.example/"})
	if d == nil {
		t.Fatalf("a fetched page with no blocks must not be absent")
	}
	if d.Title != "Empty page" || len(d.Texts) != 0 {
		t.Fatalf("unexpected document: %+v", d)
	}
}

func TestCrawl_RealStackWithRobotsAndTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/robots.txt":
			_, _ = w.Write([]byte("User-agent: *\nAllow: /\n"))
		case "/slow":
			select {
			case <-r.Context().Done():
			case <-time.After(2 * time.Second):
			}
		case "/gone":
			http.NotFound(w, r)
		default:
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			_, _ = w.Write([]byte("<html><head><title>Page</title></head><body><article><p>" + body + "</p></article></body></html>"))
		}
	}))
	defer srv.Close()

	c := &Crawler{
		Robots:  &robots.Cache{HTTPClient: srv.Client()},
		Fetcher: &fetch.Client{HTTPClient: srv.Client(), PerRequestTimeout: 100 * time.Millisecond},
	}
	got := c.CrawlAll(context.Background(), []search.Result{
		{URL: srv.URL + "/ok"},
		{URL: srv.URL + "/slow"},
		{URL: srv.URL + "/gone"},
	})
	if len(got) != 1 || !strings.HasSuffix(got[0].URL, "/ok") {
		t.Fatalf("expected only /ok, got %+v", got)
	}
}
