package config

import (
	"strconv"
	"time"
)

// Environment variables read by ApplyEnv.
const (
	EnvOutput       = "KHABAR_OUTPUT"
	EnvSQLite       = "KHABAR_SQLITE"
	EnvMetrics      = "KHABAR_METRICS_FILE"
	EnvMonths       = "KHABAR_MONTHS"
	EnvPerMonth     = "KHABAR_PER_MONTH"
	EnvLogLevel     = "KHABAR_LOG_LEVEL"
	EnvRequestDelay = "KHABAR_REQUEST_DELAY"
	EnvMaxRetries   = "KHABAR_MAX_RETRIES"
)

// ApplyEnv overrides settings from environment variables. lookup is normally
// os.LookupEnv. Values that fail to parse are ignored.
func (c *FileConfig) ApplyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvOutput); ok && v != "" {
		c.Output.Path = v
	}
	if v, ok := lookup(EnvSQLite); ok {
		c.Output.SQLitePath = v
	}
	if v, ok := lookup(EnvMetrics); ok {
		c.Output.MetricsPath = v
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.Logging.Level = v
	}
	if n, ok := lookupInt(lookup, EnvMonths); ok {
		c.Run.Months = n
	}
	if n, ok := lookupInt(lookup, EnvPerMonth); ok {
		c.Run.ArticlesPerMonth = n
	}
	if n, ok := lookupInt(lookup, EnvMaxRetries); ok {
		c.Scraper.MaxRetries = n
	}
	if v, ok := lookup(EnvRequestDelay); ok {
		if d, err := time.ParseDuration(v); err == nil {
			c.Scraper.RequestDelay = d
		}
	}
}

func lookupInt(lookup func(string) (string, bool), key string) (int, bool) {
	v, ok := lookup(key)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}
