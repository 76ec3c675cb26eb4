package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	yaml "gopkg.in/yaml.v3"

	"github.com/hyperifyio/termforge/internal/search"
)

// FileConfig is the single-file configuration schema. Durations are strings
// such as "10s" so YAML and JSON read the same way.
type FileConfig struct {
	Database string `yaml:"database" json:"database"`
	Locale   string `yaml:"locale" json:"locale"`
	Verbose  bool   `yaml:"verbose" json:"verbose"`
	Insecure bool   `yaml:"insecureTLS" json:"insecureTLS"`

	Search struct {
		Provider string  `yaml:"provider" json:"provider"`
		File     string  `yaml:"file" json:"file"`
		Count    int     `yaml:"count" json:"count"`
		RPS      float64 `yaml:"rps" json:"rps"`
		Brave    struct {
			URL string `yaml:"url" json:"url"`
			Key string `yaml:"key" json:"key"`
		} `yaml:"brave" json:"brave"`
		Searx struct {
			URL string `yaml:"url" json:"url"`
			Key string `yaml:"key" json:"key"`
		} `yaml:"searx" json:"searx"`
	} `yaml:"search" json:"search"`

	LLM struct {
		BaseURL     string   `yaml:"base" json:"base"`
		Model       string   `yaml:"model" json:"model"`
		APIKey      string   `yaml:"key" json:"key"`
		Temperature *float64 `yaml:"temperature" json:"temperature"`
	} `yaml:"llm" json:"llm"`

	Quiz struct {
		Count int `yaml:"count" json:"count"`
	} `yaml:"quiz" json:"quiz"`

	Crawl struct {
		UserAgent        string `yaml:"userAgent" json:"userAgent"`
		Timeout          string `yaml:"timeout" json:"timeout"`
		Concurrency      int    `yaml:"concurrency" json:"concurrency"`
		MinTextLength    int    `yaml:"minTextLength" json:"minTextLength"`
		MaxContentLength int    `yaml:"maxContentLength" json:"maxContentLength"`
		TopK             int    `yaml:"topK" json:"topK"`
		EnablePDF        bool   `yaml:"enablePDF" json:"enablePDF"`
	} `yaml:"crawl" json:"crawl"`

	Robots struct {
		Timeout   string `yaml:"timeout" json:"timeout"`
		CacheSize int    `yaml:"cacheSize" json:"cacheSize"`
		CacheTTL  string `yaml:"cacheTTL" json:"cacheTTL"`
	} `yaml:"robots" json:"robots"`

	Cache struct {
		Dir         string `yaml:"dir" json:"dir"`
		MaxAge      string `yaml:"maxAge" json:"maxAge"`
		Clear       bool   `yaml:"clear" json:"clear"`
		StrictPerms bool   `yaml:"strictPerms" json:"strictPerms"`
	} `yaml:"cache" json:"cache"`

	Worker struct {
		PollInterval string `yaml:"pollInterval" json:"pollInterval"`
	} `yaml:"worker" json:"worker"`
}

// LoadConfigFile reads YAML or JSON into FileConfig.
func LoadConfigFile(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	switch ext := filepath.Ext(path); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse yaml: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse json: %w", err)
		}
	default:
		if err := yaml.Unmarshal(b, &fc); err != nil {
			if jerr := json.Unmarshal(b, &fc); jerr != nil {
				return fc, fmt.Errorf("parse config: %v (yaml) / %v (json)", err, jerr)
			}
		}
	}
	return fc, nil
}

// ApplyFileConfig overlays file values onto cfg. A field is overwritten only
// when it is empty or still holds its default, so explicit flags win.
func ApplyFileConfig(cfg *Config, fc FileConfig) error {
	if cfg == nil {
		return nil
	}
	overlayString(&cfg.DatabaseDSN, fc.Database, DefaultDatabaseDSN)
	overlayString(&cfg.Locale, fc.Locale, DefaultLocale)
	if fc.Verbose {
		cfg.Verbose = true
	}
	if fc.Insecure {
		cfg.InsecureTLS = true
	}

	overlayString(&cfg.SearchProvider, fc.Search.Provider, DefaultSearchProvider)
	overlayString(&cfg.FileSearchPath, fc.Search.File, "")
	overlayInt(&cfg.SearchCount, fc.Search.Count, DefaultSearchCount)
	if cfg.SearchRPS == 0 && fc.Search.RPS > 0 {
		cfg.SearchRPS = fc.Search.RPS
	}
	overlayString(&cfg.BraveURL, fc.Search.Brave.URL, "")
	overlayString(&cfg.BraveKey, fc.Search.Brave.Key, "")
	overlayString(&cfg.SearxURL, fc.Search.Searx.URL, "")
	overlayString(&cfg.SearxKey, fc.Search.Searx.Key, "")

	overlayString(&cfg.LLMBaseURL, fc.LLM.BaseURL, "")
	overlayString(&cfg.LLMModel, fc.LLM.Model, DefaultLLMModel)
	overlayString(&cfg.LLMAPIKey, fc.LLM.APIKey, "")
	if fc.LLM.Temperature != nil && cfg.Temperature == DefaultTemperature {
		cfg.Temperature = *fc.LLM.Temperature
	}
	overlayInt(&cfg.QuizCount, fc.Quiz.Count, DefaultQuizCount)

	overlayString(&cfg.UserAgent, fc.Crawl.UserAgent, "")
	overlayInt(&cfg.CrawlConcurrency, fc.Crawl.Concurrency, DefaultCrawlConcurrency)
	overlayInt(&cfg.MinTextLength, fc.Crawl.MinTextLength, DefaultMinTextLength)
	overlayInt(&cfg.MaxContentLength, fc.Crawl.MaxContentLength, DefaultMaxContentLength)
	overlayInt(&cfg.TopK, fc.Crawl.TopK, DefaultTopK)
	if fc.Crawl.EnablePDF {
		cfg.EnablePDF = true
	}
	overlayInt(&cfg.RobotsCacheSize, fc.Robots.CacheSize, DefaultRobotsCacheSize)

	overlayString(&cfg.CacheDir, fc.Cache.Dir, DefaultCacheDir)
	if fc.Cache.Clear {
		cfg.CacheClear = true
	}
	if fc.Cache.StrictPerms {
		cfg.CacheStrictPerms = true
	}

	durations := []struct {
		dst  *time.Duration
		src  string
		def  time.Duration
		name string
	}{
		{&cfg.CrawlTimeout, fc.Crawl.Timeout, DefaultCrawlTimeout, "crawl.timeout"},
		{&cfg.RobotsTimeout, fc.Robots.Timeout, DefaultRobotsTimeout, "robots.timeout"},
		{&cfg.RobotsCacheTTL, fc.Robots.CacheTTL, DefaultRobotsCacheTTL, "robots.cacheTTL"},
		{&cfg.CacheMaxAge, fc.Cache.MaxAge, 0, "cache.maxAge"},
		{&cfg.PollInterval, fc.Worker.PollInterval, DefaultPollInterval, "worker.pollInterval"},
	}
	for _, d := range durations {
		if strings.TrimSpace(d.src) == "" || (*d.dst != 0 && *d.dst != d.def) {
			continue
		}
		v, err := time.ParseDuration(d.src)
		if err != nil {
			return fmt.Errorf("%s: %w", d.name, err)
		}
		*d.dst = v
	}
	return nil
}

func overlayString(dst *string, v, def string) {
	if v != "" && (*dst == "" || *dst == def) {
		*dst = v
	}
}

func overlayInt(dst *int, v, def int) {
	if v > 0 && (*dst == 0 || *dst == def) {
		*dst = v
	}
}

// ValidateConfig checks required fields and basic ranges before any
// component is built.
func ValidateConfig(cfg Config) error {
	var errs []error
	if strings.TrimSpace(cfg.DatabaseDSN) == "" {
		errs = append(errs, errors.New("database DSN is required"))
	}
	switch cfg.SearchProvider {
	case "brave":
		if cfg.BraveKey == "" {
			errs = append(errs, errors.New("brave search requires BRAVE_API_KEY"))
		}
	case "searxng":
		if cfg.SearxURL == "" {
			errs = append(errs, errors.New("searxng search requires SEARX_URL"))
		}
	case "file":
		if cfg.FileSearchPath == "" {
			errs = append(errs, errors.New("file search requires a search file path"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown search provider %q", cfg.SearchProvider))
	}
	if _, err := search.ParseLocale(cfg.Locale); err != nil {
		errs = append(errs, err)
	}
	if cfg.LLMModel == "" {
		errs = append(errs, errors.New("LLM model is required"))
	}
	if cfg.TopK <= 0 {
		errs = append(errs, fmt.Errorf("top-k must be positive, got %d", cfg.TopK))
	}
	if cfg.MaxContentLength <= 0 {
		errs = append(errs, fmt.Errorf("max content length must be positive, got %d", cfg.MaxContentLength))
	}
	if cfg.MinTextLength < 0 {
		errs = append(errs, fmt.Errorf("min text length must not be negative, got %d", cfg.MinTextLength))
	}
	if cfg.QuizCount <= 0 {
		errs = append(errs, fmt.Errorf("quiz count must be positive, got %d", cfg.QuizCount))
	}
	if cfg.SearchRPS < 0 {
		errs = append(errs, fmt.Errorf("search rps must not be negative, got %v", cfg.SearchRPS))
	}
	return errors.Join(errs...)
}
