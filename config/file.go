// Package config loads the harvester's settings from a YAML file and the
// environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/pevans/khabar/scraper"
)

// Validation errors.
var (
	ErrInvalidMonths      = errors.New("run.months must be at least 1")
	ErrInvalidPerMonth    = errors.New("run.articles_per_month must be at least 1")
	ErrInvalidMaxRetries  = errors.New("scraper.max_retries must be at least 1")
	ErrInvalidMaxPages    = errors.New("scraper.max_pages must be at least 1")
	ErrMissingSiteURL     = errors.New("scraper.site_url is required")
	ErrMissingOutputPath  = errors.New("output.path is required")
	ErrInvalidDiscovery   = errors.New("scraper.discovery_mode must be 'listing' or 'feed'")
	ErrNegativeDelay      = errors.New("scraper delays must be non-negative")
	ErrInvalidHTTPTimeout = errors.New("scraper.timeout must be positive")
)

// DefaultOutputPath is where a standalone run writes its articles.
const DefaultOutputPath = "onlinekhabar_scraped_articles.json"

// RunConfig controls how far back a run goes.
type RunConfig struct {
	Months           int `yaml:"months"`
	ArticlesPerMonth int `yaml:"articles_per_month"`
}

// OutputConfig names the files a run produces. Empty optional paths disable
// that output.
type OutputConfig struct {
	Path        string `yaml:"path"`
	SQLitePath  string `yaml:"sqlite_path"`
	MetricsPath string `yaml:"metrics_path"`
}

// LoggingConfig sets the log level.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// FileConfig represents the structure of the harvester's config.yaml.
type FileConfig struct {
	Scraper scraper.Config `yaml:"scraper"`
	Run     RunConfig      `yaml:"run"`
	Output  OutputConfig   `yaml:"output"`
	Logging LoggingConfig  `yaml:"logging"`
}

// Default returns the settings of a standalone run: six months, 100 articles
// per month, output to DefaultOutputPath.
func Default() *FileConfig {
	return &FileConfig{
		Scraper: *scraper.DefaultConfig(),
		Run: RunConfig{
			Months:           6,
			ArticlesPerMonth: 100,
		},
		Output: OutputConfig{
			Path: DefaultOutputPath,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// DefaultPath returns ~/.khabar/config.yaml.
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".khabar", "config.yaml"), nil
}

// LoadConfigFile reads path over the defaults. Keys missing from the file
// keep their default values. A missing file is not an error and yields the
// defaults; a file that exists but cannot be parsed is.
func LoadConfigFile(path string) (*FileConfig, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// Validate checks the settings a run depends on.
func (c *FileConfig) Validate() error {
	var errs []error

	if c.Run.Months < 1 {
		errs = append(errs, ErrInvalidMonths)
	}
	if c.Run.ArticlesPerMonth < 1 {
		errs = append(errs, ErrInvalidPerMonth)
	}
	if c.Scraper.MaxRetries < 1 {
		errs = append(errs, ErrInvalidMaxRetries)
	}
	if c.Scraper.MaxPages < 1 {
		errs = append(errs, ErrInvalidMaxPages)
	}
	if c.Scraper.SiteURL == "" {
		errs = append(errs, ErrMissingSiteURL)
	}
	if c.Scraper.Timeout <= 0 {
		errs = append(errs, ErrInvalidHTTPTimeout)
	}
	switch c.Scraper.DiscoveryMode {
	case scraper.ModeListing, scraper.ModeFeed:
	default:
		errs = append(errs, ErrInvalidDiscovery)
	}
	if c.Scraper.RequestDelay < 0 || c.Scraper.ArticleDelay < 0 || c.Scraper.MonthDelay < 0 ||
		c.Scraper.RequestJitter < 0 || c.Scraper.ArticleJitter < 0 || c.Scraper.MonthJitter < 0 {
		errs = append(errs, ErrNegativeDelay)
	}
	if c.Output.Path == "" {
		errs = append(errs, ErrMissingOutputPath)
	}

	return errors.Join(errs...)
}
