package config

import (
	"encoding/json"
	"fmt"
	"time"
)

// Duration is a time.Duration that reads and writes JSON as "500ms", "2s", ...
type Duration time.Duration

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("duration must be a string like \"500ms\": %w", err)
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// GanttConfig controls the chart renderer.
type GanttConfig struct {
	DayWidth int `json:"day_width"` // Terminal cells per time unit
	MinDays  int `json:"min_days"`  // Minimum timeline length drawn
}

// BatchConfig controls multi-file checking.
type BatchConfig struct {
	Concurrency int `json:"concurrency"` // Files scheduled in parallel
}

// RetryConfig is the exponential backoff applied to store writes.
type RetryConfig struct {
	InitialInterval Duration `json:"initial_interval"`
	MaxInterval     Duration `json:"max_interval"`
	MaxElapsedTime  Duration `json:"max_elapsed_time"`
}

// Config is the top-level configuration.
type Config struct {
	DBPath     string      `json:"db_path"`
	TimeUnit   string      `json:"time_unit"`  // Label for durations, e.g. "days"
	LogLevel   string      `json:"log_level"`  // debug, info, warn, error
	LogFormat  string      `json:"log_format"` // text or json
	Gantt      GanttConfig `json:"gantt"`
	Batch      BatchConfig `json:"batch"`
	StoreRetry RetryConfig `json:"store_retry"`
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.DBPath == "" {
		return fmt.Errorf("db_path must not be empty")
	}
	if c.TimeUnit == "" {
		return fmt.Errorf("time_unit must not be empty")
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("log_format must be \"text\" or \"json\", got %q", c.LogFormat)
	}
	if c.Gantt.DayWidth < 1 {
		return fmt.Errorf("gantt.day_width must be at least 1, got %d", c.Gantt.DayWidth)
	}
	if c.Gantt.MinDays < 0 {
		return fmt.Errorf("gantt.min_days must not be negative, got %d", c.Gantt.MinDays)
	}
	if c.Batch.Concurrency < 1 {
		return fmt.Errorf("batch.concurrency must be at least 1, got %d", c.Batch.Concurrency)
	}
	if c.StoreRetry.InitialInterval <= 0 || c.StoreRetry.MaxInterval < c.StoreRetry.InitialInterval {
		return fmt.Errorf("store_retry intervals must be positive with max_interval >= initial_interval")
	}
	return nil
}
