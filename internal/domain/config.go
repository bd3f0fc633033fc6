package domain

import (
	"fmt"
	"time"
)

const (
	DefaultFetchTimeout     = 30 * time.Second
	DefaultFetchAttempts    = 3
	DefaultBackoffStep      = 2 * time.Second
	DefaultMaxContentBytes  = 2 << 20
	DefaultMaxEntryBytes    = 1 << 30
	DefaultSummaryLines     = 5
	DefaultSummaryLineWidth = 120
	DefaultCacheSize        = 64
)

// Config holds pipeline configuration loaded from .archlens.yaml.
type Config struct {
	ScratchDir string        `yaml:"scratch_dir"  json:"scratch_dir,omitempty"`
	Fetch      FetchConfig   `yaml:"fetch"        json:"fetch"`
	Extract    ExtractConfig `yaml:"extract"      json:"extract"`
	Collect    CollectConfig `yaml:"collect"      json:"collect"`
	Compare    CompareConfig `yaml:"compare"      json:"compare"`
	CacheSize  int           `yaml:"cache_size"   json:"cache_size"`
	Log        LogConfig     `yaml:"log"          json:"log"`
	Tracking   TrackConfig   `yaml:"tracking"     json:"tracking"`
	StoreDir   string        `yaml:"store_dir"    json:"store_dir,omitempty"`
}

type FetchConfig struct {
	Timeout     time.Duration `yaml:"timeout"      json:"timeout"`
	Attempts    int           `yaml:"attempts"     json:"attempts"`
	BackoffStep time.Duration `yaml:"backoff_step" json:"backoff_step"`
	UserAgent   string        `yaml:"user_agent"   json:"user_agent,omitempty"`
}

type ExtractConfig struct {
	Workers       int   `yaml:"workers"         json:"workers"`
	MaxEntryBytes int64 `yaml:"max_entry_bytes" json:"max_entry_bytes"`
}

type CollectConfig struct {
	MaxContentBytes int64    `yaml:"max_content_bytes" json:"max_content_bytes"`
	Exclude         []string `yaml:"exclude"           json:"exclude,omitempty"`
}

type CompareConfig struct {
	Workers          int `yaml:"workers"            json:"workers"`
	SummaryLines     int `yaml:"summary_lines"      json:"summary_lines"`
	SummaryLineWidth int `yaml:"summary_line_width" json:"summary_line_width"`
}

type LogConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file"  json:"file,omitempty"`
}

type TrackConfig struct {
	Actor        string `yaml:"actor"         json:"actor,omitempty"`
	JournalFile  string `yaml:"journal_file"  json:"journal_file,omitempty"`
	MetricsFile  string `yaml:"metrics_file"  json:"metrics_file,omitempty"`
	LinkTemplate string `yaml:"link_template" json:"link_template,omitempty"`
}

// DefaultExcludes drop archive metadata noise added by desktop zip tools.
var DefaultExcludes = []string{"__MACOSX/**", "**/.DS_Store"}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() Config {
	return Config{
		Fetch: FetchConfig{
			Timeout:     DefaultFetchTimeout,
			Attempts:    DefaultFetchAttempts,
			BackoffStep: DefaultBackoffStep,
			UserAgent:   "archlens/1.0",
		},
		Extract: ExtractConfig{
			Workers:       8,
			MaxEntryBytes: DefaultMaxEntryBytes,
		},
		Collect: CollectConfig{
			MaxContentBytes: DefaultMaxContentBytes,
			Exclude:         append([]string(nil), DefaultExcludes...),
		},
		Compare: CompareConfig{
			Workers:          8,
			SummaryLines:     DefaultSummaryLines,
			SummaryLineWidth: DefaultSummaryLineWidth,
		},
		CacheSize: DefaultCacheSize,
		Log:       LogConfig{Level: "info"},
		Tracking:  TrackConfig{Actor: "archlens"},
	}
}

var validLogLevels = []string{"debug", "info", "warn", "error"}

// Validate checks the config for invalid values and returns a descriptive error.
func (c Config) Validate() error {
	if c.Fetch.Timeout <= 0 {
		return fmt.Errorf("fetch.timeout must be positive, got %s", c.Fetch.Timeout)
	}
	if c.Fetch.Attempts < 1 {
		return fmt.Errorf("fetch.attempts must be at least 1, got %d", c.Fetch.Attempts)
	}
	if c.Fetch.BackoffStep < 0 {
		return fmt.Errorf("fetch.backoff_step must not be negative, got %s", c.Fetch.BackoffStep)
	}
	if c.Extract.Workers < 1 {
		return fmt.Errorf("extract.workers must be at least 1, got %d", c.Extract.Workers)
	}
	if c.Extract.MaxEntryBytes <= 0 {
		return fmt.Errorf("extract.max_entry_bytes must be positive, got %d", c.Extract.MaxEntryBytes)
	}
	if c.Collect.MaxContentBytes <= 0 {
		return fmt.Errorf("collect.max_content_bytes must be positive, got %d", c.Collect.MaxContentBytes)
	}
	if c.Compare.Workers < 1 {
		return fmt.Errorf("compare.workers must be at least 1, got %d", c.Compare.Workers)
	}
	if c.Compare.SummaryLines < 1 {
		return fmt.Errorf("compare.summary_lines must be at least 1, got %d", c.Compare.SummaryLines)
	}
	if c.Compare.SummaryLineWidth < 1 {
		return fmt.Errorf("compare.summary_line_width must be at least 1, got %d", c.Compare.SummaryLineWidth)
	}
	if c.CacheSize < 0 {
		return fmt.Errorf("cache_size must not be negative, got %d", c.CacheSize)
	}
	if c.Log.Level != "" {
		valid := false
		for _, l := range validLogLevels {
			if l == c.Log.Level {
				valid = true
				break
			}
		}
		if !valid {
			return fmt.Errorf("unknown log.level %q (valid: %v)", c.Log.Level, validLogLevels)
		}
	}
	return nil
}
