package config

// AppConfig holds application-level settings.
type AppConfig struct {
	LogLevel    string `mapstructure:"log_level"`
	MetricsAddr string `mapstructure:"metrics_addr"` // e.g. ":9091"; empty disables the endpoint
}

// RedisConfig holds redis connection settings for the content store.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// PostgresConfig holds the relational store connection settings.
type PostgresConfig struct {
	DSN string `mapstructure:"dsn"`
}

// FeedConfig controls the Hacker News data source.
type FeedConfig struct {
	BaseAPI        string `mapstructure:"base_api"`
	RequestTimeout string `mapstructure:"request_timeout"` // duration string, e.g. "10s"
	MaxRetries     int    `mapstructure:"max_retries"`
}

// CollectorConfig controls the scheduled collection job.
type CollectorConfig struct {
	Schedule         string `mapstructure:"schedule"` // cron spec, default "@hourly"
	ScoreThreshold   int    `mapstructure:"score_threshold"`
	Limit            int    `mapstructure:"limit"`             // max items persisted per run
	FetchConcurrency int    `mapstructure:"fetch_concurrency"` // bounded worker pool size
	RunTimeout       string `mapstructure:"run_timeout"`       // duration string, e.g. "10m"
	ExtractTimeout   string `mapstructure:"extract_timeout"`   // per-item extraction budget
}

// WindowConfig controls per-user windowing.
type WindowConfig struct {
	GroupSize       int    `mapstructure:"group_size"`         // generic lookback window width
	MaxPostsPerUser int    `mapstructure:"max_posts_per_user"` // cap on one user's pass
	MinScore        int    `mapstructure:"min_score"`          // user-level score floor
	MaxPostAge      string `mapstructure:"max_post_age"`       // duration string, "" = unbounded
}

// DigestConfig controls the per-user digest builder.
type DigestConfig struct {
	Interval  string `mapstructure:"interval"` // how often to evaluate users
	OutputDir string `mapstructure:"output_dir"`
}

// OpenAIConfig holds summarizer credentials.
type OpenAIConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"`
}

// Config is the top-level configuration structure.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Postgres  PostgresConfig  `mapstructure:"postgres"`
	Feed      FeedConfig      `mapstructure:"feed"`
	Collector CollectorConfig `mapstructure:"collector"`
	Window    WindowConfig    `mapstructure:"window"`
	Digest    DigestConfig    `mapstructure:"digest"`
	OpenAI    OpenAIConfig    `mapstructure:"openai"`
}

// FillDefaults applies default values if not provided.
func (c *Config) FillDefaults() {
	if c.App.LogLevel == "" {
		c.App.LogLevel = "info"
	}
	if c.Redis.Addr == "" {
		c.Redis.Addr = "127.0.0.1:6379"
	}
	if c.Feed.BaseAPI == "" {
		c.Feed.BaseAPI = "https://hacker-news.firebaseio.com/v0"
	}
	if c.Feed.RequestTimeout == "" {
		c.Feed.RequestTimeout = "10s"
	}
	if c.Feed.MaxRetries == 0 {
		c.Feed.MaxRetries = 3
	}
	if c.Collector.Schedule == "" {
		c.Collector.Schedule = "@hourly"
	}
	if c.Collector.ScoreThreshold == 0 {
		c.Collector.ScoreThreshold = 50
	}
	if c.Collector.Limit == 0 {
		c.Collector.Limit = 64
	}
	if c.Collector.FetchConcurrency == 0 {
		c.Collector.FetchConcurrency = 8
	}
	if c.Collector.RunTimeout == "" {
		c.Collector.RunTimeout = "10m"
	}
	if c.Collector.ExtractTimeout == "" {
		c.Collector.ExtractTimeout = "20s"
	}
	if c.Window.GroupSize == 0 {
		c.Window.GroupSize = 50
	}
	if c.Window.MaxPostsPerUser == 0 {
		c.Window.MaxPostsPerUser = 10
	}
	if c.Digest.Interval == "" {
		c.Digest.Interval = "30m"
	}
	if c.Digest.OutputDir == "" {
		c.Digest.OutputDir = "./out"
	}
	if c.OpenAI.Model == "" {
		c.OpenAI.Model = "gpt-4o-mini"
	}
}
