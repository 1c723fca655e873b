package domain

const (
	DefaultPollIntervalHours     = 24
	DefaultRequestTimeoutSeconds = 10
	DefaultListenAddress         = "127.0.0.1:9184"

	// Feed-provided fetch_interval_hours outside this range is ignored.
	MinFeedIntervalHours = 1
	MaxFeedIntervalHours = 24 * 7
)
