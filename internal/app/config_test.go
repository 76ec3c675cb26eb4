package app

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

func TestLoadConfigFile_YAML(t *testing.T) {
	p := writeFile(t, "termforge.yaml", `
database: postgres://localhost/termforge
locale: en-US
search:
  provider: searxng
  count: 10
  searx:
    url: http://searx.local
llm:
  base: http://llm.local/v1
  model: local-model
  temperature: 0
crawl:
  timeout: 3s
  topK: 5
  enablePDF: true
robots:
  cacheTTL: 30m
worker:
  pollInterval: 500ms
`)
	fc, err := LoadConfigFile(p)
	if err != nil {
		t.Fatalf("LoadConfigFile: %v", err)
	}
	cfg := DefaultConfig()
	if err := ApplyFileConfig(&cfg, fc); err != nil {
		t.Fatalf("ApplyFileConfig: %v", err)
	}
	if cfg.DatabaseDSN != "postgres://localhost/termforge" || cfg.Locale != "en-US" {
		t.Fatalf("unexpected db/locale: %q %q", cfg.DatabaseDSN, cfg.Locale)
	}
	if cfg.SearchProvider != "searxng" || cfg.SearxURL != "http://searx.local" || cfg.SearchCount != 10 {
		t.Fatalf("unexpected search config: %+v", cfg)
	}
	if cfg.LLMModel != "local-model" || cfg.Temperature != 0 {
		t.Fatalf("unexpected llm config: model=%q temp=%v", cfg.LLMModel, cfg.Temperature)
	}
	if cfg.CrawlTimeout != 3*time.Second || cfg.TopK != 5 || !cfg.EnablePDF {
		t.Fatalf("unexpected crawl config: %+v", cfg)
	}
	if cfg.RobotsCacheTTL != 30*time.Minute || cfg.PollInterval != 500*time.Millisecond {
		t.Fatalf("unexpected durations: ttl=%v poll=%v", cfg.RobotsCacheTTL, cfg.PollInterval)
	}
	// Untouched fields keep defaults.
	if cfg.RobotsCacheSize != DefaultRobotsCacheSize || cfg.MinTextLength != DefaultMinTextLength {
		t.Fatalf("defaults lost: %+v", cfg)
	}
}

func TestLoadConfigFile_JSON(t *testing.T) {
	p := writeFile(t, "termforge.json", `{"search":{"provider":"file","file":"results.json"},"cache":{"maxAge":"24h"}}`)
	fc, err := LoadConfigFile(p)
	if err != nil {
		t.Fatalf("LoadConfigFile: %v", err)
	}
	cfg := DefaultConfig()
	if err := ApplyFileConfig(&cfg, fc); err != nil {
		t.Fatalf("ApplyFileConfig: %v", err)
	}
	if cfg.SearchProvider != "file" || cfg.FileSearchPath != "results.json" {
		t.Fatalf("unexpected search config: %+v", cfg)
	}
	if cfg.CacheMaxAge != 24*time.Hour {
		t.Fatalf("CacheMaxAge=%v", cfg.CacheMaxAge)
	}
}

func TestApplyFileConfig_ExplicitValuesWin(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TopK = 3
	cfg.CrawlTimeout = time.Second
	var fc FileConfig
	fc.Crawl.TopK = 9
	fc.Crawl.Timeout = "20s"
	if err := ApplyFileConfig(&cfg, fc); err != nil {
		t.Fatalf("ApplyFileConfig: %v", err)
	}
	if cfg.TopK != 3 || cfg.CrawlTimeout != time.Second {
		t.Fatalf("file overrode explicit values: topK=%d timeout=%v", cfg.TopK, cfg.CrawlTimeout)
	}
}

func TestApplyFileConfig_BadDuration(t *testing.T) {
	cfg := DefaultConfig()
	var fc FileConfig
	fc.Robots.Timeout = "soon"
	if err := ApplyFileConfig(&cfg, fc); err == nil || !strings.Contains(err.Error(), "robots.timeout") {
		t.Fatalf("expected robots.timeout error, got %v", err)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "env.db")
	t.Setenv("SEARXNG_URL", "http://searx.env")
	t.Setenv("TOP_K", "4")
	t.Setenv("ENABLE_PDF", "yes")
	t.Setenv("ROBOTS_CACHE_TTL", "10m")
	t.Setenv("SEARCH_RPS", "1.5")

	cfg := DefaultConfig()
	explicit := func(flag string) bool { return flag == "top-k" }
	cfg.TopK = 11
	if err := ApplyEnvOverrides(&cfg, explicit); err != nil {
		t.Fatalf("ApplyEnvOverrides: %v", err)
	}
	if cfg.DatabaseDSN != "env.db" {
		t.Fatalf("DatabaseDSN=%q", cfg.DatabaseDSN)
	}
	if cfg.SearxURL != "http://searx.env" {
		t.Fatalf("SearxURL=%q, want fallback key honored", cfg.SearxURL)
	}
	if cfg.TopK != 11 {
		t.Fatalf("explicit flag lost: TopK=%d", cfg.TopK)
	}
	if !cfg.EnablePDF || cfg.RobotsCacheTTL != 10*time.Minute || cfg.SearchRPS != 1.5 {
		t.Fatalf("unexpected overrides: %+v", cfg)
	}
}

func TestApplyEnvOverrides_InvalidValue(t *testing.T) {
	t.Setenv("CACHE_CLEAR", "maybe")
	cfg := DefaultConfig()
	err := ApplyEnvOverrides(&cfg, nil)
	if err == nil || !strings.Contains(err.Error(), "CACHE_CLEAR") {
		t.Fatalf("expected CACHE_CLEAR error, got %v", err)
	}
}

func TestValidateConfig(t *testing.T) {
	valid := DefaultConfig()
	valid.BraveKey = "k"
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "missing brave key", mutate: func(c *Config) { c.BraveKey = "" }, wantErr: "BRAVE_API_KEY"},
		{name: "searx without url", mutate: func(c *Config) { c.SearchProvider = "searxng" }, wantErr: "SEARX_URL"},
		{name: "unknown provider", mutate: func(c *Config) { c.SearchProvider = "bing" }, wantErr: "unknown search provider"},
		{name: "bad locale", mutate: func(c *Config) { c.Locale = "not a locale!" }, wantErr: "locale"},
		{name: "zero topK", mutate: func(c *Config) { c.TopK = 0 }, wantErr: "top-k"},
		{name: "empty dsn", mutate: func(c *Config) { c.DatabaseDSN = " " }, wantErr: "DSN"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := ValidateConfig(cfg)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("want error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}
