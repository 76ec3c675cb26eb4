package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hyperifyio/termforge/internal/pipeline"
	"github.com/hyperifyio/termforge/internal/queue"
	"github.com/hyperifyio/termforge/internal/search"
	"github.com/hyperifyio/termforge/internal/store"
)

const pageHTML = `<html><head><title>Idempotency explained</title></head><body>
<article><p>An idempotent operation can be applied many times without changing the result beyond the first application.</p></article>
</body></html>`

func newTestConfig(t *testing.T, siteURL, llmURL string) Config {
	t.Helper()
	dir := t.TempDir()
	results := []search.Result{{Title: "Idempotency", URL: siteURL + "/page", Description: "idempotent operations"}}
	b, _ := json.Marshal(results)
	cfg := DefaultConfig()
	cfg.DatabaseDSN = filepath.Join(dir, "termforge.db")
	cfg.SearchProvider = "file"
	cfg.FileSearchPath = writeFile(t, "results.json", string(b))
	cfg.LLMBaseURL = llmURL
	cfg.CacheDir = filepath.Join(dir, "cache")
	cfg.PollInterval = 10 * time.Millisecond
	return cfg
}

func newSite(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/robots.txt":
			http.NotFound(w, r)
		case "/page":
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			fmt.Fprint(w, pageHTML)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestNew_RankThroughWiredComponents(t *testing.T) {
	site := newSite(t)
	cfg := newTestConfig(t, site.URL, "http://127.0.0.1:1/v1")

	a, err := New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer a.Close()

	ranked, err := a.Rank(context.Background(), "idempotent operation")
	if err != nil {
		t.Fatalf("Rank: %v", err)
	}
	if len(ranked) != 1 || ranked[0].Document.Title != "Idempotency explained" {
		t.Fatalf("unexpected ranking: %+v", ranked)
	}

	doc, err := a.CrawlURL(context.Background(), site.URL+"/page")
	if err != nil {
		t.Fatalf("CrawlURL: %v", err)
	}
	if len(doc.Texts) != 1 {
		t.Fatalf("expected one text block, got %v", doc.Texts)
	}
	if _, err := a.CrawlURL(context.Background(), site.URL+"/missing"); err == nil {
		t.Fatalf("expected error for missing page")
	}
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DatabaseDSN = filepath.Join(t.TempDir(), "x.db")
	if _, err := New(context.Background(), cfg); err == nil {
		t.Fatalf("expected validation error without brave key")
	}
}

func TestApp_WorkerMarksConflict(t *testing.T) {
	site := newSite(t)
	cfg := newTestConfig(t, site.URL, "http://127.0.0.1:1/v1")
	a, err := New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer a.Close()

	ctx := context.Background()
	published := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
	id, err := a.Store.AddKeyword(ctx, store.Keyword{Name: "Idempotency", Description: "x.", PublishedDate: &published})
	if err != nil {
		t.Fatalf("AddKeyword: %v", err)
	}
	if _, err := a.Store.InsertArticles(ctx, []store.Article{{KeywordID: id, Facet: "concept", Title: "t", Content: "c", PublishedDate: published}}); err != nil {
		t.Fatalf("InsertArticles: %v", err)
	}
	// Articles without quizzes resume at the quiz stage, so a quiz makes
	// the keyword complete.
	arts, _ := a.Store.ListArticles(ctx, id)
	if err := a.Store.InsertQuizzes(ctx, []store.Quiz{{ArticleID: arts[0].ID, Question: "q", Options: []string{"a", "b"}, Answer: 0}}); err != nil {
		t.Fatalf("InsertQuizzes: %v", err)
	}

	jobID, err := a.Queue.Enqueue(ctx, id)
	if err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	w := a.Worker()
	ok, err := w.RunOnce(ctx)
	if err != nil || !ok {
		t.Fatalf("RunOnce: ok=%v err=%v", ok, err)
	}
	job, err := a.Queue.Get(ctx, jobID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if job.Status != queue.StatusConflict {
		t.Fatalf("job status=%q, want conflict", job.Status)
	}
}

func TestPreflight_ListsModels(t *testing.T) {
	var hits atomic.Int32
	llmSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1/models" {
			hits.Add(1)
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"object":"list","data":[{"id":"local-model","object":"model"}]}`)
			return
		}
		http.NotFound(w, r)
	}))
	defer llmSrv.Close()

	site := newSite(t)
	a, err := New(context.Background(), newTestConfig(t, site.URL, llmSrv.URL+"/v1"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer a.Close()
	a.Preflight(context.Background())
	if hits.Load() != 1 {
		t.Fatalf("expected one models request, got %d", hits.Load())
	}
}

func TestIsConflict(t *testing.T) {
	if !IsConflict(fmt.Errorf("keyword 1: %w", pipeline.ErrContentsAlreadyExist)) {
		t.Fatalf("wrapped conflict not detected")
	}
	if IsConflict(errors.New("boom")) {
		t.Fatalf("unexpected conflict")
	}
}
