// Package main provides the termforge CLI entry point.
package main

import (
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/hyperifyio/termforge/internal/app"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	root := newRootCmd()
	if err := root.Execute(); err != nil {
		code := exitCode(err)
		log.Error().Err(err).Int("exit", code).Msg("command failed")
		os.Exit(code)
	}
}

// cli carries the resolved configuration between the root command and its
// subcommands.
type cli struct {
	cfg        app.Config
	configPath string
	envFiles   []string
	jsonOut    bool
}

func newRootCmd() *cobra.Command {
	c := &cli{cfg: app.DefaultConfig()}
	root := &cobra.Command{
		Use:   "termforge",
		Short: "Discover sources for a keyword and write grounded articles and quizzes",
		Long: `termforge searches the web for a keyword, crawls the results under
robots.txt rules, ranks the extracted text with BM25, and writes five
articles with summaries and quizzes grounded on the best documents.`,
		Version:           Version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.resolve,
	}
	c.bindFlags(root)

	root.AddCommand(
		c.generateCmd(),
		c.workerCmd(),
		c.enqueueCmd(),
		c.keywordCmd(),
		c.searchCmd(),
		c.crawlCmd(),
		c.rankCmd(),
		c.exportCmd(),
		c.migrateCmd(),
	)
	return root
}

func (c *cli) bindFlags(root *cobra.Command) {
	f := root.PersistentFlags()
	cfg := &c.cfg
	f.StringVar(&c.configPath, "config", "", "Path to a YAML or JSON config file")
	f.StringSliceVar(&c.envFiles, "env-file", []string{".env"}, "Dotenv files to load; missing files are ignored")
	f.BoolVar(&c.jsonOut, "json", false, "Write machine-readable JSON instead of tables")

	f.StringVar(&cfg.DatabaseDSN, "db", cfg.DatabaseDSN, "SQLite path or postgres:// DSN")
	f.StringVar(&cfg.SearchProvider, "search", cfg.SearchProvider, "Search provider: brave, searxng, or file")
	f.StringVar(&cfg.BraveURL, "brave.url", "", "Brave search endpoint override")
	f.StringVar(&cfg.BraveKey, "brave.key", "", "Brave search API key")
	f.StringVar(&cfg.SearxURL, "searx.url", "", "SearxNG base URL")
	f.StringVar(&cfg.SearxKey, "searx.key", "", "SearxNG API key (optional)")
	f.StringVar(&cfg.FileSearchPath, "search.file", "", "JSON file of results for the file provider")
	f.IntVar(&cfg.SearchCount, "search.count", cfg.SearchCount, "Results requested per query")
	f.Float64Var(&cfg.SearchRPS, "search.rps", 0, "Search requests per second (0 = unlimited)")
	f.StringVar(&cfg.Locale, "locale", cfg.Locale, "Locale for search and writing, e.g. ko-KR")

	f.StringVar(&cfg.LLMBaseURL, "llm.base", "", "OpenAI-compatible base URL")
	f.StringVar(&cfg.LLMModel, "llm.model", cfg.LLMModel, "Model name")
	f.StringVar(&cfg.LLMAPIKey, "llm.key", "", "API key for the LLM endpoint")
	f.Float64Var(&cfg.Temperature, "llm.temperature", cfg.Temperature, "Sampling temperature")
	f.IntVar(&cfg.QuizCount, "quiz.count", cfg.QuizCount, "Quiz questions per article")

	f.StringVar(&cfg.UserAgent, "user-agent", "", "User-Agent for crawling and robots.txt")
	f.BoolVar(&cfg.InsecureTLS, "insecure-tls", false, "Skip TLS certificate checks")
	f.DurationVar(&cfg.CrawlTimeout, "crawl.timeout", cfg.CrawlTimeout, "Per-page fetch timeout")
	f.IntVar(&cfg.CrawlConcurrency, "crawl.concurrency", cfg.CrawlConcurrency, "Maximum pages fetched at once")
	f.DurationVar(&cfg.RobotsTimeout, "robots.timeout", cfg.RobotsTimeout, "robots.txt fetch timeout")
	f.IntVar(&cfg.RobotsCacheSize, "robots.cache-size", cfg.RobotsCacheSize, "Origins kept in the robots cache")
	f.DurationVar(&cfg.RobotsCacheTTL, "robots.cache-ttl", cfg.RobotsCacheTTL, "Lifetime of a robots decision")
	f.IntVar(&cfg.MinTextLength, "min-text-length", cfg.MinTextLength, "Minimum characters for an extracted block")
	f.IntVar(&cfg.MaxContentLength, "max-content-length", cfg.MaxContentLength, "Maximum bytes of a rankable document")
	f.IntVar(&cfg.TopK, "top-k", cfg.TopK, "Documents used for grounding")
	f.BoolVar(&cfg.EnablePDF, "enable-pdf", false, "Crawl application/pdf results too")

	f.StringVar(&cfg.CacheDir, "cache.dir", cfg.CacheDir, "Cache directory for pages and generations (empty disables)")
	f.DurationVar(&cfg.CacheMaxAge, "cache.maxAge", 0, "Purge cache entries older than this")
	f.BoolVar(&cfg.CacheClear, "cache.clear", false, "Clear the cache before running")
	f.BoolVar(&cfg.CacheStrictPerms, "cache.strictPerms", false, "Create cache files with owner-only permissions")

	f.DurationVar(&cfg.PollInterval, "poll-interval", cfg.PollInterval, "Worker poll interval when the queue is empty")
	f.BoolVarP(&cfg.Verbose, "verbose", "v", false, "Debug logging")
}

// resolve layers config sources. Highest priority first: explicit flags,
// environment, config file, defaults.
func (c *cli) resolve(cmd *cobra.Command, _ []string) error {
	if err := app.LoadEnvFiles(c.envFiles...); err != nil {
		return configErrorf("load env files: %w", err)
	}
	if c.configPath != "" {
		fc, err := app.LoadConfigFile(c.configPath)
		if err != nil {
			return configErrorf("load config %s: %w", c.configPath, err)
		}
		if err := app.ApplyFileConfig(&c.cfg, fc); err != nil {
			return configErrorf("apply config %s: %w", c.configPath, err)
		}
	}
	flags := cmd.Flags()
	if err := app.ApplyEnvOverrides(&c.cfg, flags.Changed); err != nil {
		return configErrorf("%w", err)
	}

	if c.cfg.Verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
	log.Debug().Str("db", redactDSN(c.cfg.DatabaseDSN)).Str("search", c.cfg.SearchProvider).
		Str("model", c.cfg.LLMModel).Str("locale", c.cfg.Locale).Msg("configuration resolved")
	return nil
}

// redactDSN hides credentials in URL-style DSNs before logging.
func redactDSN(dsn string) string {
	if u, err := url.Parse(dsn); err == nil && u.User != nil {
		return u.Redacted()
	}
	return dsn
}

func configErrorf(format string, args ...any) error {
	return &configError{err: fmt.Errorf(format, args...)}
}
