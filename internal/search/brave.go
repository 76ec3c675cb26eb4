package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// DefaultBraveURL is the Brave web search endpoint.
const DefaultBraveURL = "https://api.search.brave.com/res/v1/web/search"

// maxErrorBody caps how much of a failed response is kept for diagnostics.
const maxErrorBody = 4 << 10

// Brave implements Provider against the Brave web search API. Each call issues
// exactly one request; retries are left to the caller.
type Brave struct {
	BaseURL    string
	APIKey     string
	Locale     Locale
	Count      int // results per query; zero means upstream default
	HTTPClient *http.Client
	UserAgent  string
	// Limiter spaces requests to stay inside the plan's quota. Optional.
	Limiter *rate.Limiter
}

func (b *Brave) Name() string { return "brave" }

func (b *Brave) Search(ctx context.Context, query string) ([]Result, error) {
	if strings.TrimSpace(b.APIKey) == "" {
		return nil, fmt.Errorf("%w: missing brave api key", ErrSearchUnavailable)
	}
	base := b.BaseURL
	if base == "" {
		base = DefaultBraveURL
	}
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("parse brave url: %w", err)
	}
	q := u.Query()
	q.Set("q", query)
	if b.Locale.Country != "" {
		q.Set("country", b.Locale.Country)
	}
	if b.Locale.Language != "" {
		q.Set("search_lang", b.Locale.Language)
	}
	if b.Count > 0 {
		q.Set("count", strconv.Itoa(b.Count))
	}
	u.RawQuery = q.Encode()

	if b.Limiter != nil {
		if err := b.Limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Subscription-Token", b.APIKey)
	if b.UserAgent != "" {
		req.Header.Set("User-Agent", b.UserAgent)
	}
	hc := b.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 10 * time.Second}
	}
	resp, err := hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSearchUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &APIError{Provider: b.Name(), StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	var br braveResponse
	if err := json.NewDecoder(resp.Body).Decode(&br); err != nil {
		return nil, fmt.Errorf("%w: decode brave response: %v", ErrSearchUnavailable, err)
	}
	out := make([]Result, 0, len(br.Web.Results))
	for _, r := range br.Web.Results {
		if r.URL == "" || r.Title == "" {
			continue
		}
		out = append(out, Result{
			Title:       strings.TrimSpace(r.Title),
			URL:         strings.TrimSpace(r.URL),
			Description: strings.TrimSpace(r.Description),
			Source:      b.Name(),
		})
	}
	return out, nil
}

type braveResponse struct {
	Web struct {
		Results []struct {
			Title       string `json:"title"`
			URL         string `json:"url"`
			Description string `json:"description"`
		} `json:"results"`
	} `json:"web"`
}
