// Package crawl fetches search candidates politely and turns them into text
// documents for ranking.
package crawl

import (
	"context"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/termforge/internal/extract"
	"github.com/hyperifyio/termforge/internal/search"
)

// DefaultUserAgent identifies the crawler on page and robots.txt requests.
const DefaultUserAgent = "termforge/1.0 (+https://github.com/hyperifyio/termforge)"

// Document is a crawled page reduced to its readable blocks.
type Document struct {
	Title string
	URL   string
	Texts []string
}

// Content joins the text blocks with newlines.
func (d Document) Content() string { return strings.Join(d.Texts, "\n") }

// PolicyChecker decides whether a URL may be fetched.
type PolicyChecker interface {
	IsAllowed(ctx context.Context, targetURL, userAgent string) bool
}

// Fetcher retrieves a page body and its content type.
type Fetcher interface {
	Get(ctx context.Context, url string) ([]byte, string, error)
}

// Crawler resolves search results to documents. Failures never surface as
// errors: a page that is disallowed, unreachable or unparseable is simply
// absent. A page without content blocks is returned with no texts.
type Crawler struct {
	Robots    PolicyChecker
	Fetcher   Fetcher
	Extractor extract.Extractor
	UserAgent string
}

func (c *Crawler) userAgent() string {
	if c.UserAgent != "" {
		return c.UserAgent
	}
	return DefaultUserAgent
}

// Crawl returns the document for r, or nil when it is unavailable.
func (c *Crawler) Crawl(ctx context.Context, r search.Result) *Document {
	if c.Robots != nil && !c.Robots.IsAllowed(ctx, r.URL, c.userAgent()) {
		log.Debug().Str("url", r.URL).Msg("crawl: disallowed by robots.txt")
		return nil
	}
	body, contentType, err := c.Fetcher.Get(ctx, r.URL)
	if err != nil {
		log.Debug().Err(err).Str("url", r.URL).Msg("crawl: fetch failed")
		return nil
	}
	ex := c.Extractor
	if ex == nil {
		ex = extract.Blocks{}
	}
	page, err := ex.Extract(body, contentType)
	if err != nil {
		log.Debug().Err(err).Str("url", r.URL).Msg("crawl: extract failed")
		return nil
	}
	if len(page.Texts) == 0 {
		// Still a successful crawl; it is indexed with length zero.
		log.Debug().Str("url", r.URL).Msg("crawl: no content blocks")
	}
	title := page.Title
	if title == "" {
		title = r.Title
	}
	return &Document{Title: title, URL: r.URL, Texts: page.Texts}
}

// CrawlAll crawls every result concurrently and waits for all of them. The
// returned documents follow input order; absent ones are dropped.
func (c *Crawler) CrawlAll(ctx context.Context, results []search.Result) []Document {
	slots := make([]*Document, len(results))
	var wg sync.WaitGroup
	for i, r := range results {
		wg.Add(1)
		go func(i int, r search.Result) {
			defer wg.Done()
			slots[i] = c.Crawl(ctx, r)
		}(i, r)
	}
	wg.Wait()
	out := make([]Document, 0, len(slots))
	for _, d := range slots {
		if d != nil {
			out = append(out, *d)
		}
	}
	log.Debug().Int("candidates", len(results)).Int("documents", len(out)).Msg("crawl: batch complete")
	return out
}
