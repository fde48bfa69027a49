package cfg

import (
	"cmp"
	"fmt"
	"os"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Storage
	DBPath string `long:"db-path" env:"DB_PATH" default:"./data/news.db" description:"SQLite database file"`

	// Feed locations
	FeedURL           string `long:"feed-url" env:"FEED_URL" default:"https://elizaos.github.io/knowledge/the-council/facts/daily.json" description:"URL of the current day's feed document"`
	ArchiveListingURL string `long:"archive-listing-url" env:"ARCHIVE_LISTING_URL" default:"https://api.github.com/repos/elizaOS/knowledge/contents/the-council/facts" description:"Directory listing of archived feed documents"`
	ArchiveBaseURL    string `long:"archive-base-url" env:"ARCHIVE_BASE_URL" default:"https://elizaos.github.io/knowledge/the-council/facts" description:"Base URL archived documents are served from"`
	DayOffset         int    `long:"day-offset" env:"DAY_OFFSET" default:"-1" description:"Days added to the local date to get the date of the live feed"`
	SourcesDir        string `long:"sources-dir" env:"SOURCES_DIR" default:"./sources" description:"Directory containing RSS source configuration files"`

	// Application configuration
	Port              string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	BaseUrl           string `long:"base-url" env:"BASE_URL" description:"Public base URL for the service (e.g., https://news.example.com)"`
	WorkerCount       int    `long:"worker-count" env:"WORKER_COUNT" default:"3" description:"Number of background workers"`
	SchedulerInterval int    `long:"scheduler-interval" env:"SCHEDULER_INTERVAL" default:"60" description:"Scheduler interval in seconds"`
	SnapshotTTL       int    `long:"snapshot-ttl" env:"SNAPSHOT_TTL" default:"900" description:"Seconds before the archive listing and live feed snapshot are refreshed"`
	FetchTimeout      int    `long:"fetch-timeout" env:"FETCH_TIMEOUT" default:"30" description:"HTTP fetch timeout in seconds"`
	MaxBodySize       int64  `long:"max-body-size" env:"MAX_BODY_SIZE" default:"10485760" description:"Largest response body read from upstream, in bytes"`
	APIAccessKey      string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for mutating endpoints (optional)"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"News Browser/1.0" description:"User agent string for HTTP requests"`
	Timezone  string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone used to compute the current day (e.g., UTC, America/New_York)"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

// Load parses the process arguments and environment. It returns nil, nil
// when help was requested.
func Load() (*Cfg, error) {
	return LoadArgs(os.Args[1:])
}

func LoadArgs(args []string) (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)
	parser.Usage = "[OPTIONS] [serve | normalize <file> | dates]"

	rest, err := parser.ParseArgs(args)
	if err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	if raw.WorkerCount < 1 {
		return nil, fmt.Errorf("worker count must be positive, got %d", raw.WorkerCount)
	}
	if raw.MaxBodySize < 1 {
		return nil, fmt.Errorf("max body size must be positive, got %d", raw.MaxBodySize)
	}
	if raw.SchedulerInterval < 1 {
		return nil, fmt.Errorf("scheduler interval must be positive, got %d", raw.SchedulerInterval)
	}

	cfg := &Cfg{
		DBPath:            raw.DBPath,
		FeedURL:           raw.FeedURL,
		ArchiveListingURL: raw.ArchiveListingURL,
		ArchiveBaseURL:    raw.ArchiveBaseURL,
		DayOffset:         raw.DayOffset,
		SourcesDir:        raw.SourcesDir,
		Port:              raw.Port,
		BaseUrl:           raw.BaseUrl,
		WorkerCount:       raw.WorkerCount,
		SchedulerInterval: raw.SchedulerInterval,
		SnapshotTTL:       raw.SnapshotTTL,
		FetchTimeout:      raw.FetchTimeout,
		MaxBodySize:       raw.MaxBodySize,
		APIAccessKey:      raw.APIAccessKey,
		UserAgent:         raw.UserAgent,
		Timezone:          raw.Timezone,
		Debug:             raw.Debug,
		Version:           GetVersion(),
		Args:              rest,
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
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

func applyTimezone(timezone string) error {
	if timezone == "" {
		return nil
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return err
	}
	time.Local = loc
	return nil
}
