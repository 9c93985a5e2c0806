package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-pkgz/lgr"
	"gopkg.in/yaml.v3"
)

//go:generate go run ../../cmd/schema/main.go schema.json

// Config holds the application configuration. The file is YAML, and since
// YAML is a superset of JSON the legacy JSON config documents load unchanged.
type Config struct {
	NewsSources          []Source `yaml:"news_sources" json:"news_sources" jsonschema:"description=News feed sources to crawl"`
	Categories           []string `yaml:"categories" json:"categories" jsonschema:"description=Known article categories"`
	MaxArticlesPerSource int      `yaml:"max_articles_per_source" json:"max_articles_per_source" jsonschema:"default=5,description=Feed entries processed per source per crawl"`
	CacheExpiryHours     int      `yaml:"cache_expiry_hours" json:"cache_expiry_hours" jsonschema:"default=1,description=Article cache expiry in hours"`
	RequestDelay         int      `yaml:"request_delay" json:"request_delay" jsonschema:"default=2,description=Delay between article requests in seconds"`
	ExtractImages        bool     `yaml:"extract_images" json:"extract_images" jsonschema:"default=true,description=Extract article images"`
	MinArticleLength     int      `yaml:"min_article_length" json:"min_article_length" jsonschema:"default=200,description=Minimum extracted article length in characters"`
	MaxRetries           int      `yaml:"max_retries" json:"max_retries" jsonschema:"default=3,description=Maximum fetch attempts per article"`
	Timeout              int      `yaml:"timeout" json:"timeout" jsonschema:"default=10,description=HTTP request timeout in seconds"`
	CrawlConcurrency     int      `yaml:"crawl_concurrency" json:"crawl_concurrency" jsonschema:"default=4,description=Feeds crawled concurrently"`
	CacheFile            string   `yaml:"cache_file" json:"cache_file" jsonschema:"default=var/news_cache.json,description=Article cache file location"`
	HistoryFile          string   `yaml:"history_file" json:"history_file" jsonschema:"default=var/posting_history.json,description=Posting history file location"`

	Platforms map[string]Platform `yaml:"platforms" json:"platforms" jsonschema:"description=Social platform settings keyed by platform name"`
	Posting   Posting             `yaml:"posting" json:"posting" jsonschema:"description=Posting limits and timing"`
	Content   Content             `yaml:"content" json:"content" jsonschema:"description=Post content formatting"`

	LLM    LLM    `yaml:"llm" json:"llm" jsonschema:"description=Optional text/image generation service"`
	Server Server `yaml:"server" json:"server" jsonschema:"description=Optional operator HTTP server"`
}

// Source is a single configured news source, currently rss only
type Source struct {
	Name   string `yaml:"name" json:"name" jsonschema:"required,description=Source display name"`
	URL    string `yaml:"url" json:"url" jsonschema:"description=Feed URL"`
	RSSURL string `yaml:"rss_url" json:"rss_url,omitempty" jsonschema:"description=Feed URL (legacy key)"`
	Type   string `yaml:"type" json:"type" jsonschema:"default=rss,description=Source type"`
}

// Platform holds per-platform settings, credentials are opaque secrets
type Platform struct {
	Enabled bool `yaml:"enabled" json:"enabled" jsonschema:"description=Enable posting to this platform"`

	APIKey      string `yaml:"api_key" json:"api_key,omitempty" jsonschema:"description=API key"`
	APISecret   string `yaml:"api_secret" json:"api_secret,omitempty" jsonschema:"description=API secret"`
	AccessToken string `yaml:"access_token" json:"access_token,omitempty" jsonschema:"description=Access token"`
	TokenSecret string `yaml:"token_secret" json:"token_secret,omitempty" jsonschema:"description=Access token secret"`
	PageID      string `yaml:"page_id" json:"page_id,omitempty" jsonschema:"description=Page id (facebook)"`
	Username    string `yaml:"username" json:"username,omitempty" jsonschema:"description=Account username (instagram)"`
	Password    string `yaml:"password" json:"password,omitempty" jsonschema:"description=Account password (instagram)"`

	MaxLength       int  `yaml:"max_length" json:"max_length" jsonschema:"description=Maximum post length in characters"`
	IncludeLink     bool `yaml:"include_link" json:"include_link" jsonschema:"description=Append article link"`
	IncludeHashtags bool `yaml:"include_hashtags" json:"include_hashtags" jsonschema:"description=Append hashtags"`
	MaxHashtags     int  `yaml:"max_hashtags" json:"max_hashtags" jsonschema:"default=3,description=Maximum hashtags per post"`
	IncludeImage    bool `yaml:"include_image" json:"include_image" jsonschema:"description=Attach article image when available"`
	RequireImage    bool `yaml:"require_image" json:"require_image" jsonschema:"description=Refuse posts without an image"`
}

// Posting holds posting limits and timing
type Posting struct {
	MaxPostsPerDay           int      `yaml:"max_posts_per_day" json:"max_posts_per_day" jsonschema:"default=10,description=Daily post cap per platform"`
	MinIntervalMinutes       int      `yaml:"min_interval_minutes" json:"min_interval_minutes" jsonschema:"default=30,description=Minimum minutes between posts per platform"`
	BestTimes                []string `yaml:"best_times" json:"best_times" jsonschema:"description=Preferred posting times as HH:MM"`
	IncludeSourceAttribution bool     `yaml:"include_source_attribution" json:"include_source_attribution" jsonschema:"default=true,description=Append source attribution"`
	AddUTMParameters         bool     `yaml:"add_utm_parameters" json:"add_utm_parameters" jsonschema:"default=true,description=Tag outbound links with UTM parameters"`
}

// Content holds post formatting settings
type Content struct {
	TitleFormats     []string `yaml:"title_formats" json:"title_formats" jsonschema:"description=Title templates with {title} placeholder"`
	HashtagSources   []string `yaml:"hashtag_sources" json:"hashtag_sources" jsonschema:"description=Hashtag sources: categories trending custom"`
	CustomHashtags   []string `yaml:"custom_hashtags" json:"custom_hashtags" jsonschema:"description=Fixed hashtags added to every post"`
	MaxTitleLength   int      `yaml:"max_title_length" json:"max_title_length" jsonschema:"default=100,description=Maximum title length"`
	IncludeSummary   bool     `yaml:"include_summary" json:"include_summary" jsonschema:"default=true,description=Append article summary"`
	MaxSummaryLength int      `yaml:"max_summary_length" json:"max_summary_length" jsonschema:"default=100,description=Maximum summary length"`
	RewriteSummaries bool     `yaml:"rewrite_summaries" json:"rewrite_summaries" jsonschema:"default=false,description=Rewrite summaries via the generation service before posting"`
}

// LLM holds generation service configuration, used only when enabled
type LLM struct {
	Enabled     bool          `yaml:"enabled" json:"enabled" jsonschema:"default=false,description=Enable the generation service"`
	Endpoint    string        `yaml:"endpoint" json:"endpoint" jsonschema:"description=OpenAI-compatible API endpoint"`
	APIKey      string        `yaml:"api_key" json:"api_key" jsonschema:"description=API key (can use environment variable)"`
	Model       string        `yaml:"model" json:"model" jsonschema:"description=Model name"`
	Temperature float32       `yaml:"temperature" json:"temperature" jsonschema:"default=0.7,description=Temperature for response generation"`
	MaxTokens   int           `yaml:"max_tokens" json:"max_tokens" jsonschema:"default=500,description=Maximum tokens in response"`
	Timeout     time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=30s,description=Request timeout"`
}

// Server holds operator HTTP server configuration
type Server struct {
	Enabled bool          `yaml:"enabled" json:"enabled" jsonschema:"default=false,description=Enable the operator HTTP server"`
	Listen  string        `yaml:"listen" json:"listen" jsonschema:"default=:8080,description=HTTP server listen address"`
	Timeout time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=30s,description=HTTP server timeout"`
}

// Load reads configuration from a YAML or JSON file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // file path comes from CLI flag
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	// expand environment variables
	expanded := os.ExpandEnv(string(data))

	// bools defaulting to true are pre-set, absent keys keep them on
	cfg := Config{ExtractImages: true}
	cfg.Posting.IncludeSourceAttribution = true
	cfg.Posting.AddUTMParameters = true
	cfg.Content.IncludeSummary = true

	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	setDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	// verify against embedded schema
	if err := VerifyAgainstEmbeddedSchema(&cfg); err != nil {
		// log warning but don't fail - schema validation is supplementary
		lgr.Printf("[WARN] schema validation failed: %v", err)
	}

	return &cfg, nil
}

// setDefaults fills zero values with the stock configuration
func setDefaults(cfg *Config) {
	if len(cfg.NewsSources) == 0 {
		cfg.NewsSources = []Source{
			{Name: "BBC News", URL: "http://feeds.bbci.co.uk/news/rss.xml", Type: "rss"},
			{Name: "CNN", URL: "http://rss.cnn.com/rss/edition.rss", Type: "rss"},
			{Name: "Reuters", URL: "https://www.reutersagency.com/feed/", Type: "rss"},
			{Name: "New York Times", URL: "https://rss.nytimes.com/services/xml/rss/nyt/HomePage.xml", Type: "rss"},
			{Name: "The Guardian", URL: "https://www.theguardian.com/international/rss", Type: "rss"},
		}
	}
	for i := range cfg.NewsSources {
		if cfg.NewsSources[i].URL == "" { // legacy rss_url key
			cfg.NewsSources[i].URL = cfg.NewsSources[i].RSSURL
		}
		if cfg.NewsSources[i].Type == "" {
			cfg.NewsSources[i].Type = "rss"
		}
	}
	if len(cfg.Categories) == 0 {
		cfg.Categories = []string{"technology", "business", "politics", "health",
			"science", "sports", "entertainment", "world"}
	}
	if cfg.MaxArticlesPerSource == 0 {
		cfg.MaxArticlesPerSource = 5
	}
	if cfg.CacheExpiryHours == 0 {
		cfg.CacheExpiryHours = 1
	}
	if cfg.RequestDelay == 0 {
		cfg.RequestDelay = 2
	}
	if cfg.MinArticleLength == 0 {
		cfg.MinArticleLength = 200
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10
	}
	if cfg.CrawlConcurrency == 0 {
		cfg.CrawlConcurrency = 4
	}
	if cfg.CacheFile == "" {
		cfg.CacheFile = "var/news_cache.json"
	}
	if cfg.HistoryFile == "" {
		cfg.HistoryFile = "var/posting_history.json"
	}

	if cfg.Platforms == nil {
		cfg.Platforms = map[string]Platform{
			"twitter":   {Enabled: true, MaxLength: 280, IncludeLink: true, IncludeHashtags: true, MaxHashtags: 3},
			"facebook":  {IncludeImage: true, IncludeLink: true},
			"linkedin":  {IncludeImage: true, IncludeLink: true},
			"instagram": {RequireImage: true, IncludeImage: true},
		}
	}
	for name, p := range cfg.Platforms {
		if p.MaxHashtags == 0 {
			p.MaxHashtags = 3
			cfg.Platforms[name] = p
		}
	}

	if cfg.Posting.MaxPostsPerDay == 0 {
		cfg.Posting.MaxPostsPerDay = 10
	}
	if cfg.Posting.MinIntervalMinutes == 0 {
		cfg.Posting.MinIntervalMinutes = 30
	}
	if cfg.Posting.BestTimes == nil {
		cfg.Posting.BestTimes = []string{"8:00", "12:00", "17:00", "20:00"}
	}

	if len(cfg.Content.TitleFormats) == 0 {
		cfg.Content.TitleFormats = []string{"Breaking: {title}", "Just in: {title}", "{title}", "News: {title}"}
	}
	if len(cfg.Content.HashtagSources) == 0 {
		cfg.Content.HashtagSources = []string{"categories", "trending", "custom"}
	}
	if len(cfg.Content.CustomHashtags) == 0 {
		cfg.Content.CustomHashtags = []string{"news", "update", "trending"}
	}
	if cfg.Content.MaxTitleLength == 0 {
		cfg.Content.MaxTitleLength = 100
	}
	if cfg.Content.MaxSummaryLength == 0 {
		cfg.Content.MaxSummaryLength = 100
	}

	if cfg.LLM.Temperature == 0 {
		cfg.LLM.Temperature = 0.7
	}
	if cfg.LLM.MaxTokens == 0 {
		cfg.LLM.MaxTokens = 500
	}
	if cfg.LLM.Timeout == 0 {
		cfg.LLM.Timeout = 30 * time.Second
	}

	if cfg.Server.Listen == "" {
		cfg.Server.Listen = ":8080"
	}
	if cfg.Server.Timeout == 0 {
		cfg.Server.Timeout = 30 * time.Second
	}
}

// validate checks configuration for correctness
func validate(cfg *Config) error {
	for _, src := range cfg.NewsSources {
		if src.URL == "" {
			return fmt.Errorf("news source %q has no url", src.Name)
		}
		if src.Type != "rss" {
			return fmt.Errorf("news source %q has unsupported type %q", src.Name, src.Type)
		}
	}
	if cfg.MaxRetries < 1 {
		return fmt.Errorf("max_retries must be at least 1")
	}
	if cfg.Timeout < 1 {
		return fmt.Errorf("timeout must be at least 1 second")
	}
	if cfg.RequestDelay < 0 {
		return fmt.Errorf("request_delay must be non-negative")
	}
	if cfg.MinArticleLength < 0 {
		return fmt.Errorf("min_article_length must be non-negative")
	}

	if cfg.Posting.MaxPostsPerDay < 1 {
		return fmt.Errorf("posting.max_posts_per_day must be at least 1")
	}
	if cfg.Posting.MinIntervalMinutes < 0 {
		return fmt.Errorf("posting.min_interval_minutes must be non-negative")
	}
	for _, bt := range cfg.Posting.BestTimes {
		if _, err := ParseBestTime(bt); err != nil {
			return fmt.Errorf("posting.best_times: %w", err)
		}
	}

	if cfg.LLM.Enabled {
		if cfg.LLM.Endpoint == "" {
			return fmt.Errorf("llm.endpoint is required when llm is enabled")
		}
		if cfg.LLM.Model == "" {
			return fmt.Errorf("llm.model is required when llm is enabled")
		}
	}

	if cfg.Server.Enabled && cfg.Server.Timeout < time.Second {
		return fmt.Errorf("server.timeout must be at least 1 second")
	}

	return nil
}

// ParseBestTime parses an "HH:MM" best-time value into minutes from midnight
func ParseBestTime(s string) (int, error) {
	var hour, minute int
	if _, err := fmt.Sscanf(s, "%d:%d", &hour, &minute); err != nil {
		return 0, fmt.Errorf("invalid time %q: %w", s, err)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("invalid time %q", s)
	}
	return hour*60 + minute, nil
}

// RequestDelayDuration returns the politeness delay
func (c *Config) RequestDelayDuration() time.Duration {
	return time.Duration(c.RequestDelay) * time.Second
}

// TimeoutDuration returns the per-request HTTP timeout
func (c *Config) TimeoutDuration() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}

// CacheExpiry returns the article cache expiry
func (c *Config) CacheExpiry() time.Duration {
	return time.Duration(c.CacheExpiryHours) * time.Hour
}

// GetServerConfig returns server configuration
func (c *Config) GetServerConfig() (listen string, timeout time.Duration) {
	return c.Server.Listen, c.Server.Timeout
}
