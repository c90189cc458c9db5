package config

import (
	"bytes"
	"errors"
	"fmt"
	"net/url"
	"os"
	"slices"
	"strings"
	"time"
	_ "time/tzdata"

	"gopkg.in/yaml.v3"
)

var ErrInvalidConfig = errors.New("invalid configuration")

var validFilterFields = []string{FilterFieldTitle, FilterFieldSummary, FilterFieldLink}

// Loader handles loading and validation of the configuration file
type Loader struct {
	path string
}

func NewLoader(path string) *Loader {
	return &Loader{path: path}
}

// Load reads, normalizes and validates the configuration file. Every failure
// wraps ErrInvalidConfig.
func (l *Loader) Load() (*Config, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: config file not found: %s", ErrInvalidConfig, l.path)
		}
		return nil, fmt.Errorf("%w: failed to read %s: %v", ErrInvalidConfig, l.path, err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("%w: %s is not valid YAML: %v", ErrInvalidConfig, l.path, err)
	}

	l.normalize(&config)

	if err := l.validate(&config); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	return &config, nil
}

func (l *Loader) normalize(config *Config) {
	config.Storage.DBPath = strings.TrimSpace(config.Storage.DBPath)
	config.Storage.ReportsDir = strings.TrimSpace(config.Storage.ReportsDir)
	config.Timezone = strings.TrimSpace(config.Timezone)

	for i := range config.Feeds {
		feed := &config.Feeds[i]
		feed.Name = strings.TrimSpace(feed.Name)
		feed.URL = strings.TrimSpace(feed.URL)
		feed.Category = strings.TrimSpace(feed.Category)
		for j := range feed.Filters {
			feed.Filters[j].Field = strings.ToLower(strings.TrimSpace(feed.Filters[j].Field))
		}
	}
}

func (l *Loader) validate(config *Config) error {
	if config.Storage.DBPath == "" {
		return fmt.Errorf("storage.db_path must be a non-empty string")
	}
	if config.Storage.ReportsDir == "" {
		return fmt.Errorf("storage.reports_dir must be a non-empty string")
	}

	if len(config.Feeds) == 0 {
		return fmt.Errorf("feeds must be a non-empty list")
	}

	for i, feed := range config.Feeds {
		prefix := fmt.Sprintf("feeds[%d]", i+1)
		if feed.Name == "" {
			return fmt.Errorf("%s.name must be a non-empty string", prefix)
		}
		if feed.URL == "" {
			return fmt.Errorf("%s.url must be a non-empty string", prefix)
		}
		if parsed, err := url.Parse(feed.URL); err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
			return fmt.Errorf("%s.url must be an http(s) URL: %s", prefix, feed.URL)
		}
		if feed.Category == "" {
			return fmt.Errorf("%s.category must be a non-empty string", prefix)
		}
		if feed.MaxEntries < 0 {
			return fmt.Errorf("%s.max_entries must be non-negative", prefix)
		}

		for j, filter := range feed.Filters {
			if !slices.Contains(validFilterFields, filter.Field) {
				return fmt.Errorf("%s.filters[%d]: invalid field %q", prefix, j+1, filter.Field)
			}
			if len(filter.Includes) == 0 && len(filter.Excludes) == 0 {
				return fmt.Errorf("%s.filters[%d] must have at least one include or exclude rule", prefix, j+1)
			}
		}
	}

	if config.Timezone != "" {
		location, err := time.LoadLocation(config.Timezone)
		if err != nil {
			return fmt.Errorf("invalid timezone %q", config.Timezone)
		}
		config.location = location
	}

	return nil
}

// Dump renders the configuration back to YAML. Credentials never live in the
// file, so the output is safe to print.
func (c *Config) Dump() ([]byte, error) {
	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(c); err != nil {
		return nil, fmt.Errorf("failed to encode configuration: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode configuration: %w", err)
	}
	return buf.Bytes(), nil
}
