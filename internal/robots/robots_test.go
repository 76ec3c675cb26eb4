package robots

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

const testUA = "termforge-test/1.0"

func robotsServer(t *testing.T, status int, body string, hits *int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/robots.txt" {
			http.NotFound(w, r)
			return
		}
		atomic.AddInt32(hits, 1)
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestIsAllowed_DisallowRuleAndCacheHit(t *testing.T) {
	var hits int32
	srv := robotsServer(t, http.StatusOK, "User-agent: *\nDisallow: /private\n", &hits)
	c := &Cache{HTTPClient: srv.Client()}
	ctx := context.Background()

	if c.IsAllowed(ctx, srv.URL+"/private/page", testUA) {
		t.Fatalf("expected /private to be disallowed")
	}
	// Origin-level caching: the first decision is reused for any path.
	if c.IsAllowed(ctx, srv.URL+"/public", testUA) {
		t.Fatalf("cached origin decision should be returned unconditionally")
	}
	if got := atomic.LoadInt32(&hits); got != 1 {
		t.Fatalf("robots.txt fetched %d times, want 1", got)
	}
}

func TestIsAllowed_AllowsWhenPermitted(t *testing.T) {
	var hits int32
	srv := robotsServer(t, http.StatusOK, "User-agent: *\nDisallow: /private\n", &hits)
	c := &Cache{HTTPClient: srv.Client()}
	if !c.IsAllowed(context.Background(), srv.URL+"/articles/1", testUA) {
		t.Fatalf("expected allowed")
	}
}

func TestIsAllowed_AgentSpecificGroup(t *testing.T) {
	var hits int32
	srv := robotsServer(t, http.StatusOK, "User-agent: termforge-test\nDisallow: /\n\nUser-agent: *\nAllow: /\n", &hits)
	c := &Cache{HTTPClient: srv.Client()}
	if c.IsAllowed(context.Background(), srv.URL+"/x", testUA) {
		t.Fatalf("expected agent-specific disallow")
	}
}

func TestIsAllowed_NonSuccessAllowsAndCaches(t *testing.T) {
	for _, status := range []int{http.StatusNotFound, http.StatusInternalServerError} {
		var hits int32
		srv := robotsServer(t, status, "nope", &hits)
		c := &Cache{HTTPClient: srv.Client()}
		for i := 0; i < 3; i++ {
			if !c.IsAllowed(context.Background(), srv.URL+"/page", testUA) {
				t.Fatalf("status %d: expected fail-open allow", status)
			}
		}
		if got := atomic.LoadInt32(&hits); got != 1 {
			t.Fatalf("status %d: fetched %d times, want 1", status, got)
		}
	}
}

func TestIsAllowed_NetworkErrorAllowsAndCaches(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	target := srv.URL + "/page"
	srv.Close()

	c := &Cache{}
	if !c.IsAllowed(context.Background(), target, testUA) {
		t.Fatalf("connection refused should allow")
	}
	if c.Len() != 1 {
		t.Fatalf("network failure decision should be cached, len=%d", c.Len())
	}
}

func TestIsAllowed_TimeoutDeniesWithoutCaching(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	c := &Cache{HTTPClient: srv.Client(), Timeout: 50 * time.Millisecond}
	if c.IsAllowed(context.Background(), srv.URL+"/page", testUA) {
		t.Fatalf("timeout should deny")
	}
	if c.Len() != 0 {
		t.Fatalf("timeout decision must not be cached")
	}
	if c.IsAllowed(context.Background(), srv.URL+"/page", testUA) {
		t.Fatalf("second timeout should deny too")
	}
	if got := atomic.LoadInt32(&hits); got != 2 {
		t.Fatalf("expected a refetch after timeout, hits=%d", got)
	}
}

func TestIsAllowed_InvalidURL(t *testing.T) {
	c := &Cache{}
	for _, u := range []string{"", "::not a url", "ftp://example.com/x", "/relative"} {
		if c.IsAllowed(context.Background(), u, testUA) {
			t.Fatalf("invalid url %q should not be allowed", u)
		}
	}
}

func TestIsAllowed_TTLExpiryRefetches(t *testing.T) {
	var hits int32
	srv := robotsServer(t, http.StatusOK, "User-agent: *\nAllow: /\n", &hits)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := &Cache{HTTPClient: srv.Client(), TTL: time.Hour, now: func() time.Time { return now }}
	c.IsAllowed(context.Background(), srv.URL+"/a", testUA)
	c.IsAllowed(context.Background(), srv.URL+"/a", testUA)
	now = now.Add(time.Hour + time.Second)
	c.IsAllowed(context.Background(), srv.URL+"/a", testUA)
	if got := atomic.LoadInt32(&hits); got != 2 {
		t.Fatalf("hits = %d, want 2 (one before and one after expiry)", got)
	}
}

func TestIsAllowed_EvictsBeyondCapacity(t *testing.T) {
	var h1, h2, h3 int32
	s1 := robotsServer(t, http.StatusNotFound, "", &h1)
	s2 := robotsServer(t, http.StatusNotFound, "", &h2)
	s3 := robotsServer(t, http.StatusNotFound, "", &h3)
	c := &Cache{MaxEntries: 2}
	ctx := context.Background()
	c.IsAllowed(ctx, s1.URL+"/", testUA)
	c.IsAllowed(ctx, s2.URL+"/", testUA)
	c.IsAllowed(ctx, s3.URL+"/", testUA)
	if c.Len() != 2 {
		t.Fatalf("len = %d, want 2", c.Len())
	}
	c.IsAllowed(ctx, s1.URL+"/", testUA)
	if got := atomic.LoadInt32(&h1); got != 2 {
		t.Fatalf("evicted origin should be refetched, hits=%d", got)
	}
}
