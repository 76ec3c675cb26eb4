package app

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// envBinding ties an environment variable to the CLI flag that overrides it.
type envBinding struct {
	keys  []string // first non-empty wins
	flag  string
	apply func(cfg *Config, v string) error
}

var envBindings = []envBinding{
	{keys: []string{"DATABASE_URL"}, flag: "db", apply: setString(func(c *Config) *string { return &c.DatabaseDSN })},
	{keys: []string{"SEARCH_PROVIDER"}, flag: "search", apply: setString(func(c *Config) *string { return &c.SearchProvider })},
	{keys: []string{"BRAVE_URL"}, flag: "brave.url", apply: setString(func(c *Config) *string { return &c.BraveURL })},
	{keys: []string{"BRAVE_API_KEY"}, flag: "brave.key", apply: setString(func(c *Config) *string { return &c.BraveKey })},
	{keys: []string{"SEARX_URL", "SEARXNG_URL"}, flag: "searx.url", apply: setString(func(c *Config) *string { return &c.SearxURL })},
	{keys: []string{"SEARX_KEY", "SEARXNG_KEY"}, flag: "searx.key", apply: setString(func(c *Config) *string { return &c.SearxKey })},
	{keys: []string{"SEARCH_FILE"}, flag: "search.file", apply: setString(func(c *Config) *string { return &c.FileSearchPath })},
	{keys: []string{"SEARCH_COUNT"}, flag: "search.count", apply: setInt(func(c *Config) *int { return &c.SearchCount })},
	{keys: []string{"SEARCH_RPS"}, flag: "search.rps", apply: setFloat(func(c *Config) *float64 { return &c.SearchRPS })},
	{keys: []string{"LOCALE"}, flag: "locale", apply: setString(func(c *Config) *string { return &c.Locale })},
	{keys: []string{"LLM_BASE_URL"}, flag: "llm.base", apply: setString(func(c *Config) *string { return &c.LLMBaseURL })},
	{keys: []string{"LLM_MODEL"}, flag: "llm.model", apply: setString(func(c *Config) *string { return &c.LLMModel })},
	{keys: []string{"LLM_API_KEY", "OPENAI_API_KEY"}, flag: "llm.key", apply: setString(func(c *Config) *string { return &c.LLMAPIKey })},
	{keys: []string{"LLM_TEMPERATURE"}, flag: "llm.temperature", apply: setFloat(func(c *Config) *float64 { return &c.Temperature })},
	{keys: []string{"QUIZ_COUNT"}, flag: "quiz.count", apply: setInt(func(c *Config) *int { return &c.QuizCount })},
	{keys: []string{"USER_AGENT"}, flag: "user-agent", apply: setString(func(c *Config) *string { return &c.UserAgent })},
	{keys: []string{"INSECURE_TLS"}, flag: "insecure-tls", apply: setBool(func(c *Config) *bool { return &c.InsecureTLS })},
	{keys: []string{"CRAWL_TIMEOUT"}, flag: "crawl.timeout", apply: setDuration(func(c *Config) *time.Duration { return &c.CrawlTimeout })},
	{keys: []string{"CRAWL_CONCURRENCY"}, flag: "crawl.concurrency", apply: setInt(func(c *Config) *int { return &c.CrawlConcurrency })},
	{keys: []string{"ROBOTS_TIMEOUT"}, flag: "robots.timeout", apply: setDuration(func(c *Config) *time.Duration { return &c.RobotsTimeout })},
	{keys: []string{"ROBOTS_CACHE_SIZE"}, flag: "robots.cache-size", apply: setInt(func(c *Config) *int { return &c.RobotsCacheSize })},
	{keys: []string{"ROBOTS_CACHE_TTL"}, flag: "robots.cache-ttl", apply: setDuration(func(c *Config) *time.Duration { return &c.RobotsCacheTTL })},
	{keys: []string{"MIN_TEXT_LENGTH"}, flag: "min-text-length", apply: setInt(func(c *Config) *int { return &c.MinTextLength })},
	{keys: []string{"MAX_CONTENT_LENGTH"}, flag: "max-content-length", apply: setInt(func(c *Config) *int { return &c.MaxContentLength })},
	{keys: []string{"TOP_K"}, flag: "top-k", apply: setInt(func(c *Config) *int { return &c.TopK })},
	{keys: []string{"ENABLE_PDF"}, flag: "enable-pdf", apply: setBool(func(c *Config) *bool { return &c.EnablePDF })},
	{keys: []string{"CACHE_DIR"}, flag: "cache.dir", apply: setString(func(c *Config) *string { return &c.CacheDir })},
	{keys: []string{"CACHE_MAX_AGE"}, flag: "cache.maxAge", apply: setDuration(func(c *Config) *time.Duration { return &c.CacheMaxAge })},
	{keys: []string{"CACHE_CLEAR"}, flag: "cache.clear", apply: setBool(func(c *Config) *bool { return &c.CacheClear })},
	{keys: []string{"CACHE_STRICT_PERMS"}, flag: "cache.strictPerms", apply: setBool(func(c *Config) *bool { return &c.CacheStrictPerms })},
	{keys: []string{"POLL_INTERVAL"}, flag: "poll-interval", apply: setDuration(func(c *Config) *time.Duration { return &c.PollInterval })},
	{keys: []string{"VERBOSE"}, flag: "verbose", apply: setBool(func(c *Config) *bool { return &c.Verbose })},
}

// ApplyEnvOverrides sets cfg fields from the environment. Environment takes
// precedence over file and default values; a field whose flag was given on
// the command line is left alone. explicit may be nil.
func ApplyEnvOverrides(cfg *Config, explicit func(flag string) bool) error {
	if cfg == nil {
		return nil
	}
	for _, b := range envBindings {
		if explicit != nil && explicit(b.flag) {
			continue
		}
		key, v := lookupEnv(b.keys)
		if v == "" {
			continue
		}
		if err := b.apply(cfg, v); err != nil {
			return fmt.Errorf("env %s: %w", key, err)
		}
	}
	return nil
}

func lookupEnv(keys []string) (string, string) {
	for _, k := range keys {
		if v := strings.TrimSpace(os.Getenv(k)); v != "" {
			return k, v
		}
	}
	return "", ""
}

func setString(field func(*Config) *string) func(*Config, string) error {
	return func(c *Config, v string) error {
		*field(c) = v
		return nil
	}
}

func setInt(field func(*Config) *int) func(*Config, string) error {
	return func(c *Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		*field(c) = n
		return nil
	}
}

func setFloat(field func(*Config) *float64) func(*Config, string) error {
	return func(c *Config, v string) error {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return err
		}
		*field(c) = f
		return nil
	}
}

func setDuration(field func(*Config) *time.Duration) func(*Config, string) error {
	return func(c *Config, v string) error {
		d, err := time.ParseDuration(v)
		if err != nil {
			return err
		}
		*field(c) = d
		return nil
	}
}

func setBool(field func(*Config) *bool) func(*Config, string) error {
	return func(c *Config, v string) error {
		switch strings.ToLower(v) {
		case "1", "true", "yes", "on":
			*field(c) = true
		case "0", "false", "no", "off":
			*field(c) = false
		default:
			return fmt.Errorf("invalid boolean %q", v)
		}
		return nil
	}
}
