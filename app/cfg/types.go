package cfg

import "time"

type Cfg struct {
	// Storage
	DBPath string

	// Feed locations
	FeedURL           string
	ArchiveListingURL string
	ArchiveBaseURL    string
	DayOffset         int
	SourcesDir        string

	// Application configuration
	Port              string
	BaseUrl           string
	WorkerCount       int
	SchedulerInterval int
	SnapshotTTL       int
	FetchTimeout      int
	MaxBodySize       int64
	APIAccessKey      string

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string

	// Positional arguments left after flag parsing; the first one names
	// the command.
	Args []string
}

func (c *Cfg) Command() string {
	if len(c.Args) == 0 {
		return "serve"
	}
	return c.Args[0]
}

func (c *Cfg) SchedulerIntervalDuration() time.Duration {
	return time.Duration(c.SchedulerInterval) * time.Second
}

func (c *Cfg) SnapshotTTLDuration() time.Duration {
	return time.Duration(c.SnapshotTTL) * time.Second
}

func (c *Cfg) FetchTimeoutDuration() time.Duration {
	return time.Duration(c.FetchTimeout) * time.Second
}
