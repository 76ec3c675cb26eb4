package app

import "time"

// Config holds runtime settings for every termforge command.
type Config struct {
	DatabaseDSN string

	// Search
	SearchProvider string // brave, searxng, or file
	BraveURL       string
	BraveKey       string
	SearxURL       string
	SearxKey       string
	FileSearchPath string
	SearchCount    int
	SearchRPS      float64
	Locale         string

	// LLM
	LLMBaseURL  string
	LLMModel    string
	LLMAPIKey   string
	Temperature float64
	QuizCount   int

	// Crawling and ranking
	UserAgent        string
	InsecureTLS      bool
	CrawlTimeout     time.Duration
	CrawlConcurrency int
	RobotsTimeout    time.Duration
	RobotsCacheSize  int
	RobotsCacheTTL   time.Duration
	MinTextLength    int
	MaxContentLength int
	TopK             int
	EnablePDF        bool

	// Cache
	CacheDir         string
	CacheMaxAge      time.Duration
	CacheClear       bool
	CacheStrictPerms bool

	// Worker
	PollInterval time.Duration

	Verbose bool
}

// Default values shared by flag registration and file overlays. A field
// still holding its default is treated as unset when a config file is applied.
const (
	DefaultDatabaseDSN      = "termforge.db"
	DefaultSearchProvider   = "brave"
	DefaultSearchCount      = 20
	DefaultLocale           = "ko-KR"
	DefaultLLMModel         = "gpt-4o-mini"
	DefaultTemperature      = 0.3
	DefaultQuizCount        = 3
	DefaultCrawlTimeout     = 10 * time.Second
	DefaultCrawlConcurrency = 8
	DefaultRobotsTimeout    = 5 * time.Second
	DefaultRobotsCacheSize  = 1000
	DefaultRobotsCacheTTL   = time.Hour
	DefaultMinTextLength    = 50
	DefaultMaxContentLength = 20000
	DefaultTopK             = 7
	DefaultCacheDir         = ".termforge-cache"
	DefaultPollInterval     = 2 * time.Second
)

// DefaultConfig returns a Config populated with the defaults above.
func DefaultConfig() Config {
	return Config{
		DatabaseDSN:      DefaultDatabaseDSN,
		SearchProvider:   DefaultSearchProvider,
		SearchCount:      DefaultSearchCount,
		Locale:           DefaultLocale,
		LLMModel:         DefaultLLMModel,
		Temperature:      DefaultTemperature,
		QuizCount:        DefaultQuizCount,
		CrawlTimeout:     DefaultCrawlTimeout,
		CrawlConcurrency: DefaultCrawlConcurrency,
		RobotsTimeout:    DefaultRobotsTimeout,
		RobotsCacheSize:  DefaultRobotsCacheSize,
		RobotsCacheTTL:   DefaultRobotsCacheTTL,
		MinTextLength:    DefaultMinTextLength,
		MaxContentLength: DefaultMaxContentLength,
		TopK:             DefaultTopK,
		CacheDir:         DefaultCacheDir,
		PollInterval:     DefaultPollInterval,
	}
}
