package config

const (
	defaultCacheDir           = "~/.cache/shotscout/search"
	defaultFallbackDir        = "~/.local/share/shotscout/fallback"
	defaultOutputDir          = "~/.local/share/shotscout/output"
	defaultLogDir             = "~/.local/share/shotscout/logs"
	defaultRunDBPath          = "~/.local/share/shotscout/runs.db"
	defaultArchiveOrgBaseURL  = "https://archive.org/advancedsearch.php"
	defaultWikimediaBaseURL   = "https://commons.wikimedia.org/w/api.php"
	defaultEuropeanaBaseURL   = "https://api.europeana.eu/record/v2/search.json"
	defaultMaxResultsPerQuery = 12
	defaultRequestTimeout     = 15
	defaultThrottleMillis     = 400
	defaultMaxConcurrent      = 4
	defaultCacheMaxAgeHours   = 0
	defaultMinValidQueries    = 3
	defaultRepairAttempts     = 2
	defaultMaxQueries         = 40
	defaultWeakOverlapMin     = 2
	defaultTopicSimilarity    = 0.12
	defaultProbeTimeout       = 20
	defaultMinWidth           = 480
	defaultMinHeight          = 360
	defaultPlannerBaseURL     = "https://openrouter.ai/api/v1/chat/completions"
	defaultPlannerModel       = "google/gemini-3-flash-preview"
	defaultPlannerTimeout     = 60
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			CacheDir:    defaultCacheDir,
			FallbackDir: defaultFallbackDir,
			OutputDir:   defaultOutputDir,
			LogDir:      defaultLogDir,
			RunDBPath:   defaultRunDBPath,
		},
		ArchiveOrg: ArchiveOrg{
			Enabled: true,
			BaseURL: defaultArchiveOrgBaseURL,
		},
		Wikimedia: Wikimedia{
			Enabled: true,
			BaseURL: defaultWikimediaBaseURL,
		},
		Europeana: Europeana{
			Enabled: false,
			BaseURL: defaultEuropeanaBaseURL,
		},
		Search: Search{
			MaxResultsPerQuery: defaultMaxResultsPerQuery,
			RequestTimeout:     defaultRequestTimeout,
			ThrottleMillis:     defaultThrottleMillis,
			MaxConcurrent:      defaultMaxConcurrent,
			CacheMaxAgeHours:   defaultCacheMaxAgeHours,
		},
		Guardrail: Guardrail{
			MinValidQueries: defaultMinValidQueries,
			RepairAttempts:  defaultRepairAttempts,
			MaxQueries:      defaultMaxQueries,
		},
		Relevance: Relevance{
			WeakOverlapMin:  defaultWeakOverlapMin,
			TopicValidation: true,
			TopicSimilarity: defaultTopicSimilarity,
		},
		FrameCheck: FrameCheck{
			Enabled:             true,
			FFprobeBinary:       "ffprobe",
			FFmpegBinary:        "ffmpeg",
			ProbeTimeoutSeconds: defaultProbeTimeout,
			MinWidth:            defaultMinWidth,
			MinHeight:           defaultMinHeight,
		},
		Planner: Planner{
			BaseURL:        defaultPlannerBaseURL,
			Model:          defaultPlannerModel,
			TimeoutSeconds: defaultPlannerTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
