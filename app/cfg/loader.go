package cfg

import (
	"cmp"
	"fmt"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Database configuration
	DBHost     string `long:"db-host" env:"DB_HOST" default:"localhost" description:"Database host"`
	DBPort     string `long:"db-port" env:"DB_PORT" default:"5432" description:"Database port"`
	DBUser     string `long:"db-user" env:"DB_USER" default:"viralcal_user" description:"Database user"`
	DBPassword string `long:"db-password" env:"DB_PASSWORD" description:"Database password (empty disables the remote store)"`
	DBName     string `long:"db-name" env:"DB_NAME" default:"viralcal" description:"Database name"`

	// Application configuration
	SourcesDir        string `long:"sources-dir" env:"SOURCES_DIR" default:"./sources" description:"Directory containing source configuration files"`
	CachePath         string `long:"cache-path" env:"CACHE_PATH" default:"./data/events_cache.json" description:"Path to the local events cache file"`
	Port              string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	BaseUrl           string `long:"base-url" env:"BASE_URL" description:"Public base URL for the service (e.g., https://viral.example.com)"`
	WorkerCount       int    `long:"worker-count" env:"WORKER_COUNT" default:"5" description:"Number of background workers for task processing"`
	SchedulerInterval int    `long:"scheduler-interval" env:"SCHEDULER_INTERVAL" default:"30" description:"Scheduler interval in seconds"`
	RefreshInterval   int    `long:"refresh-interval" env:"REFRESH_INTERVAL" default:"6" description:"Hours between automatic source refreshes"`
	APIAccessKey      string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for authentication (optional)"`
	CronSecret        string `long:"cron-secret" env:"CRON_SECRET" description:"Shared secret for the cron refresh endpoint (optional)"`

	// Source credentials
	RedditUserAgent    string `long:"reddit-user-agent" env:"REDDIT_USER_AGENT" description:"User agent for the Reddit API (empty disables the source)"`
	NewsAPIKey         string `long:"newsapi-key" env:"NEWSAPI_KEY" description:"NewsAPI key (empty disables the source)"`
	TwitterBearerToken string `long:"twitter-bearer-token" env:"TWITTER_BEARER_TOKEN" description:"Twitter API v2 bearer token (empty disables the source)"`

	// Import tuning
	ImportDelayMs  int `long:"import-delay-ms" env:"IMPORT_DELAY_MS" default:"2000" description:"Delay between historical import requests in milliseconds"`
	ImportMinScore int `long:"import-min-score" env:"IMPORT_MIN_SCORE" default:"1000" description:"Minimum score for historical imports"`
	ImportMaxPosts int `long:"import-max-posts" env:"IMPORT_MAX_POSTS" default:"500" description:"Approximate cap on posts per historical import"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"ViralCal/1.0" description:"User agent string for HTTP requests"`
	Timezone  string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, America/New_York)"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		DBHost:             raw.DBHost,
		DBPort:             raw.DBPort,
		DBUser:             raw.DBUser,
		DBPassword:         raw.DBPassword,
		DBName:             raw.DBName,
		SourcesDir:         raw.SourcesDir,
		CachePath:          raw.CachePath,
		Port:               raw.Port,
		BaseUrl:            raw.BaseUrl,
		WorkerCount:        raw.WorkerCount,
		SchedulerInterval:  raw.SchedulerInterval,
		RefreshInterval:    raw.RefreshInterval,
		APIAccessKey:       raw.APIAccessKey,
		CronSecret:         raw.CronSecret,
		RedditUserAgent:    raw.RedditUserAgent,
		NewsAPIKey:         raw.NewsAPIKey,
		TwitterBearerToken: raw.TwitterBearerToken,
		ImportDelayMs:      raw.ImportDelayMs,
		ImportMinScore:     raw.ImportMinScore,
		ImportMaxPosts:     raw.ImportMaxPosts,
		UserAgent:          raw.UserAgent,
		Timezone:           raw.Timezone,
		Debug:              raw.Debug,
		Version:            GetVersion(),
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

// RemoteStoreEnabled reports whether database credentials were provided
func (c *Cfg) RemoteStoreEnabled() bool {
	return c.DBPassword != ""
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
			fmt.Printf("Timezone configured: %s\n", timezone)
		}
	}
	return nil
}
