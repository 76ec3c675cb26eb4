package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/hyperifyio/termforge/internal/cache"
	"github.com/hyperifyio/termforge/internal/crawl"
	"github.com/hyperifyio/termforge/internal/extract"
	"github.com/hyperifyio/termforge/internal/fetch"
	"github.com/hyperifyio/termforge/internal/llm"
	"github.com/hyperifyio/termforge/internal/pipeline"
	"github.com/hyperifyio/termforge/internal/queue"
	"github.com/hyperifyio/termforge/internal/rank"
	"github.com/hyperifyio/termforge/internal/robots"
	"github.com/hyperifyio/termforge/internal/search"
	"github.com/hyperifyio/termforge/internal/store"
	"github.com/hyperifyio/termforge/internal/writer"
)

// App owns the long-lived components built from a Config.
type App struct {
	cfg Config
	llm *llm.OpenAIProvider

	Store        *store.Store
	Queue        *queue.Queue
	Search       search.Provider
	Crawler      *crawl.Crawler
	Writer       *writer.Writer
	Orchestrator *pipeline.Orchestrator
}

// New opens the database, applies migrations and wires the pipeline. The
// LLM endpoint is not contacted; call Preflight for that.
func New(ctx context.Context, cfg Config) (*App, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	loc, err := search.ParseLocale(cfg.Locale)
	if err != nil {
		return nil, err
	}

	st, err := OpenStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	pages, generations := setupCaches(cfg)
	hc := newHighThroughputHTTPClient(cfg.InsecureTLS)

	ua := cfg.UserAgent
	if ua == "" {
		ua = crawl.DefaultUserAgent
	}

	provider, err := newSearchProvider(cfg, loc, ua)
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	crawler := &crawl.Crawler{
		Robots: &robots.Cache{
			HTTPClient: hc,
			Timeout:    cfg.RobotsTimeout,
			UserAgent:  ua,
			MaxEntries: cfg.RobotsCacheSize,
			TTL:        cfg.RobotsCacheTTL,
		},
		Fetcher: &fetch.Client{
			HTTPClient:        hc,
			UserAgent:         ua,
			PerRequestTimeout: cfg.CrawlTimeout,
			Cache:             pages,
			AllowPDF:          cfg.EnablePDF,
			MaxConcurrent:     cfg.CrawlConcurrency,
		},
		Extractor: extract.Blocks{MinTextLength: cfg.MinTextLength},
		UserAgent: ua,
	}

	chat := llm.NewOpenAI(cfg.LLMAPIKey, cfg.LLMBaseURL, hc)
	w := &writer.Writer{
		Gen: &writer.OpenAIGenerator{
			Client:      chat,
			Cache:       generations,
			Temperature: float32(cfg.Temperature),
		},
		Model:     cfg.LLMModel,
		Language:  loc.Language,
		QuizCount: cfg.QuizCount,
	}

	a := &App{
		cfg:     cfg,
		llm:     chat,
		Store:   st,
		Queue:   &queue.Queue{Store: st},
		Search:  provider,
		Crawler: crawler,
		Writer:  w,
	}
	a.Orchestrator = &pipeline.Orchestrator{
		Store:            st,
		Search:           provider,
		Crawler:          crawler,
		Writer:           w,
		TopK:             cfg.TopK,
		MaxContentLength: cfg.MaxContentLength,
	}
	return a, nil
}

// OpenStore opens and migrates the database alone, for commands that
// do not run the pipeline.
func OpenStore(ctx context.Context, cfg Config) (*store.Store, error) {
	st, err := store.Open(ctx, cfg.DatabaseDSN)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, err
	}
	return st, nil
}

func newSearchProvider(cfg Config, loc search.Locale, ua string) (search.Provider, error) {
	hc := newHighThroughputHTTPClient(cfg.InsecureTLS)
	switch cfg.SearchProvider {
	case "brave":
		b := &search.Brave{
			BaseURL:    cfg.BraveURL,
			APIKey:     cfg.BraveKey,
			Locale:     loc,
			Count:      cfg.SearchCount,
			HTTPClient: hc,
			UserAgent:  ua,
		}
		if cfg.SearchRPS > 0 {
			b.Limiter = rate.NewLimiter(rate.Limit(cfg.SearchRPS), 1)
		}
		return b, nil
	case "searxng":
		return &search.SearxNG{
			BaseURL:    cfg.SearxURL,
			APIKey:     cfg.SearxKey,
			Locale:     loc,
			Count:      cfg.SearchCount,
			HTTPClient: hc,
			UserAgent:  ua,
		}, nil
	case "file":
		return &search.FileProvider{Path: cfg.FileSearchPath, Count: cfg.SearchCount}, nil
	}
	return nil, fmt.Errorf("unknown search provider %q", cfg.SearchProvider)
}

// setupCaches applies clear and age limits, then returns the page and
// generation caches. Both are nil when no cache directory is configured.
func setupCaches(cfg Config) (*cache.PageCache, *cache.GenerationCache) {
	if cfg.CacheDir == "" {
		return nil, nil
	}
	pagesDir := filepath.Join(cfg.CacheDir, "pages")
	genDir := filepath.Join(cfg.CacheDir, "generations")
	if cfg.CacheClear {
		if err := cache.ClearDir(cfg.CacheDir); err != nil {
			log.Warn().Err(err).Str("dir", cfg.CacheDir).Msg("cache clear failed")
		}
	}
	if cfg.CacheMaxAge > 0 {
		if n, err := cache.PurgePagesByAge(pagesDir, cfg.CacheMaxAge); err != nil {
			log.Warn().Err(err).Msg("page cache purge failed")
		} else if n > 0 {
			log.Debug().Int("removed", n).Msg("purged stale pages")
		}
		if n, err := cache.PurgeGenerationsByAge(genDir, cfg.CacheMaxAge); err != nil {
			log.Warn().Err(err).Msg("generation cache purge failed")
		} else if n > 0 {
			log.Debug().Int("removed", n).Msg("purged stale generations")
		}
	}
	return &cache.PageCache{Dir: pagesDir, StrictPerms: cfg.CacheStrictPerms},
		&cache.GenerationCache{Dir: genDir, StrictPerms: cfg.CacheStrictPerms}
}

// Preflight lists models on the LLM endpoint. It is best-effort: failures
// are logged and generation surfaces the real error later.
func (a *App) Preflight(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	models, err := a.llm.ListModels(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("LLM model list failed; continuing")
		return
	}
	if len(models.Models) == 0 {
		log.Warn().Msg("LLM returned zero models")
		return
	}
	log.Info().Int("count", len(models.Models)).Msg("LLM models available")
}

func (a *App) Close() error {
	if a.Store == nil {
		return nil
	}
	return a.Store.Close()
}

// Generate runs the pipeline for one keyword in the foreground.
func (a *App) Generate(ctx context.Context, keywordID int64) error {
	start := time.Now()
	if err := a.Orchestrator.GenerateContents(ctx, keywordID); err != nil {
		return err
	}
	log.Info().Int64("keyword", keywordID).Dur("elapsed", time.Since(start)).Msg("contents generated")
	return nil
}

// Worker returns a queue worker that feeds claimed jobs to the pipeline.
func (a *App) Worker() *queue.Worker {
	return &queue.Worker{
		Queue:        a.Queue,
		Processor:    a.Orchestrator,
		PollInterval: a.cfg.PollInterval,
		Conflict:     IsConflict,
	}
}

// Rank searches, crawls and ranks for query without writing anything.
func (a *App) Rank(ctx context.Context, query string) ([]rank.Result, error) {
	return a.Orchestrator.Discover(ctx, query)
}

// CrawlURL fetches and extracts a single page, honoring robots.txt.
func (a *App) CrawlURL(ctx context.Context, rawURL string) (*crawl.Document, error) {
	doc := a.Crawler.Crawl(ctx, search.Result{URL: rawURL})
	if doc == nil {
		return nil, fmt.Errorf("crawl %s: page disallowed, unreachable, or empty", rawURL)
	}
	return doc, nil
}

// IsConflict reports whether err means the keyword already had contents.
func IsConflict(err error) bool {
	return errors.Is(err, pipeline.ErrContentsAlreadyExist)
}
