package config

import "time"

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		DBPath:    "miniplan.db",
		TimeUnit:  "days",
		LogLevel:  "warn",
		LogFormat: "text",
		Gantt: GanttConfig{
			DayWidth: 3,
			MinDays:  20,
		},
		Batch: BatchConfig{
			Concurrency: 4,
		},
		StoreRetry: RetryConfig{
			InitialInterval: Duration(50 * time.Millisecond),
			MaxInterval:     Duration(1 * time.Second),
			MaxElapsedTime:  Duration(5 * time.Second),
		},
	}
}
