package cfg

type Cfg struct {
	// Database configuration (optional; the service falls back to the
	// local cache and mock data when unset)
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Application configuration
	SourcesDir        string
	CachePath         string
	Port              string
	BaseUrl           string
	WorkerCount       int
	SchedulerInterval int
	RefreshInterval   int
	APIAccessKey      string
	CronSecret        string

	// Source credentials
	RedditUserAgent    string
	NewsAPIKey         string
	TwitterBearerToken string

	// Import tuning
	ImportDelayMs  int
	ImportMinScore int
	ImportMaxPosts int

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}
