package config

import "time"

// Config is the YAML configuration file of a brief run.
type Config struct {
	Storage  Storage      `yaml:"storage"`
	Feeds    []FeedConfig `yaml:"feeds"`
	Delivery Delivery     `yaml:"delivery"`
	Timezone string       `yaml:"timezone,omitempty"`

	location *time.Location
}

type Storage struct {
	DBPath      string `yaml:"db_path"`
	ReportsDir  string `yaml:"reports_dir"`
	HTMLReports bool   `yaml:"html_reports,omitempty"`
}

// FeedConfig describes one subscribed feed
type FeedConfig struct {
	Name       string   `yaml:"name"`
	URL        string   `yaml:"url"`
	Category   string   `yaml:"category"`
	MaxEntries int      `yaml:"max_entries,omitempty"` // 0 means use the CLI cap
	Filters    []Filter `yaml:"filters,omitempty"`
}

// Filter represents a content filter rule
type Filter struct {
	Field    string   `yaml:"field"`
	Includes []string `yaml:"includes,omitempty"`
	Excludes []string `yaml:"excludes,omitempty"`
}

type Delivery struct {
	Telegram Telegram `yaml:"telegram"`
}

type Telegram struct {
	Enabled bool `yaml:"enabled"`
}

const (
	FilterFieldTitle   = "title"
	FilterFieldSummary = "summary"
	FilterFieldLink    = "link"
)

// Location returns the configured timezone, UTC when none is set.
func (c *Config) Location() *time.Location {
	if c.location == nil {
		return time.UTC
	}
	return c.location
}

// EntryCap returns the feed's own entry cap, or fallback when it has none.
func (f FeedConfig) EntryCap(fallback int) int {
	if f.MaxEntries > 0 {
		return f.MaxEntries
	}
	return fallback
}
