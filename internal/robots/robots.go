// Package robots decides whether a URL may be crawled according to the
// target origin's robots.txt, caching one decision per origin.
package robots

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/temoto/robotstxt"

	"github.com/hyperifyio/termforge/internal/cache"
)

const (
	DefaultTimeout    = 5 * time.Second
	DefaultMaxEntries = 1000
	DefaultTTL        = time.Hour

	maxRobotsBytes = 512 << 10
)

// Cache answers crawl-permission questions. Decisions are cached per origin
// (scheme://host[:port]) in a bounded LRU with a TTL. The zero value is ready
// to use with defaults and is safe for concurrent use; two concurrent misses
// for the same origin may both fetch.
type Cache struct {
	HTTPClient *http.Client
	Timeout    time.Duration
	UserAgent  string // sent on the robots.txt request
	MaxEntries int
	TTL        time.Duration

	once      sync.Once
	decisions *cache.LRU[string, bool]
	now       func() time.Time
}

func (c *Cache) init() {
	c.once.Do(func() {
		size := c.MaxEntries
		if size <= 0 {
			size = DefaultMaxEntries
		}
		ttl := c.TTL
		if ttl <= 0 {
			ttl = DefaultTTL
		}
		c.decisions = cache.NewLRU[string, bool](size, ttl)
		if c.now != nil {
			c.decisions.SetClock(c.now)
		}
	})
}

// IsAllowed reports whether userAgent may fetch targetURL. It never fails:
// a robots.txt that cannot be retrieved or parsed allows crawling, except a
// request that times out, which denies and is not remembered so the next call
// tries again.
func (c *Cache) IsAllowed(ctx context.Context, targetURL, userAgent string) bool {
	c.init()
	u, err := url.Parse(targetURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		log.Debug().Str("url", targetURL).Msg("robots: invalid url")
		return false
	}
	origin := u.Scheme + "://" + u.Host
	if allowed, ok := c.decisions.Get(origin); ok {
		return allowed
	}

	allowed, cacheable := c.evaluate(ctx, origin, u, userAgent)
	if cacheable {
		c.decisions.Add(origin, allowed)
	}
	return allowed
}

// Len reports the number of cached origins.
func (c *Cache) Len() int {
	c.init()
	return c.decisions.Len()
}

func (c *Cache) evaluate(ctx context.Context, origin string, u *url.URL, userAgent string) (allowed bool, cacheable bool) {
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	robotsURL := origin + "/robots.txt"
	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return true, true
	}
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	} else if userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
	}
	hc := c.HTTPClient
	if hc == nil {
		hc = http.DefaultClient
	}
	resp, err := hc.Do(req)
	if err != nil {
		if isTimeout(reqCtx, err) {
			log.Warn().Str("origin", origin).Msg("robots: fetch timed out; denying")
			return false, false
		}
		log.Debug().Err(err).Str("origin", origin).Msg("robots: fetch failed; allowing")
		return true, true
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Debug().Int("status", resp.StatusCode).Str("origin", origin).Msg("robots: no usable robots.txt; allowing")
		return true, true
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxRobotsBytes))
	if err != nil {
		if isTimeout(reqCtx, err) {
			log.Warn().Str("origin", origin).Msg("robots: read timed out; denying")
			return false, false
		}
		return true, true
	}
	data, err := robotstxt.FromBytes(body)
	if err != nil {
		log.Debug().Err(err).Str("origin", origin).Msg("robots: parse failed; allowing")
		return true, true
	}
	path := u.RequestURI()
	if path == "" {
		path = "/"
	}
	return data.TestAgent(path, userAgent), true
}

// isTimeout treats an expired deadline or a cancelled caller the same way: the
// answer is unknown and must not be cached.
func isTimeout(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
