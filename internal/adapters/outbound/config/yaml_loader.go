package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/openkraft/archlens/internal/domain"
)

// FileName is the config file looked up when no explicit path is given.
const FileName = ".archlens.yaml"

const envPrefix = "ARCHLENS_"

// YAMLLoader implements domain.ConfigLoader by reading .archlens.yaml and
// applying ARCHLENS_* environment overrides.
type YAMLLoader struct {
	envFiles []string
	getenv   func(string) string
}

type Option func(*YAMLLoader)

// WithEnvFiles sets the dotenv files loaded before overrides are applied.
// Missing files are ignored.
func WithEnvFiles(files ...string) Option {
	return func(l *YAMLLoader) { l.envFiles = files }
}

// WithGetenv replaces the environment lookup.
func WithGetenv(fn func(string) string) Option {
	return func(l *YAMLLoader) { l.getenv = fn }
}

// New creates a YAMLLoader that reads .env from the working directory.
func New(opts ...Option) *YAMLLoader {
	l := &YAMLLoader{envFiles: []string{".env"}, getenv: os.Getenv}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load reads the config file at path, or .archlens.yaml when path is empty.
// A missing file yields DefaultConfig. Environment overrides win over file
// values and the merged result is validated.
func (l *YAMLLoader) Load(path string) (domain.Config, error) {
	if err := l.loadEnvFiles(); err != nil {
		return domain.Config{}, err
	}

	explicit := path != ""
	if !explicit {
		path = FileName
	}

	cfg := domain.DefaultConfig()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return domain.Config{}, fmt.Errorf("parsing %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return domain.Config{}, fmt.Errorf("reading %s: %w", path, err)
	}

	if err := l.applyEnv(&cfg); err != nil {
		return domain.Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return domain.Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// loadEnvFiles never overwrites variables already set in the process.
func (l *YAMLLoader) loadEnvFiles() error {
	for _, f := range l.envFiles {
		if _, err := os.Stat(f); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("loading %s: %w", f, err)
		}
	}
	return nil
}

func (l *YAMLLoader) applyEnv(cfg *domain.Config) error {
	strs := map[string]*string{
		"SCRATCH_DIR":   &cfg.ScratchDir,
		"STORE_DIR":     &cfg.StoreDir,
		"USER_AGENT":    &cfg.Fetch.UserAgent,
		"LOG_LEVEL":     &cfg.Log.Level,
		"LOG_FILE":      &cfg.Log.File,
		"TRACK_ACTOR":   &cfg.Tracking.Actor,
		"TRACK_JOURNAL": &cfg.Tracking.JournalFile,
		"TRACK_METRICS": &cfg.Tracking.MetricsFile,
		"TRACK_LINK":    &cfg.Tracking.LinkTemplate,
	}
	for key, dst := range strs {
		if v := l.getenv(envPrefix + key); v != "" {
			*dst = v
		}
	}

	ints := map[string]*int{
		"FETCH_ATTEMPTS":     &cfg.Fetch.Attempts,
		"EXTRACT_WORKERS":    &cfg.Extract.Workers,
		"COMPARE_WORKERS":    &cfg.Compare.Workers,
		"SUMMARY_LINES":      &cfg.Compare.SummaryLines,
		"SUMMARY_LINE_WIDTH": &cfg.Compare.SummaryLineWidth,
		"CACHE_SIZE":         &cfg.CacheSize,
	}
	for key, dst := range ints {
		v := l.getenv(envPrefix + key)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s%s: %w", envPrefix, key, err)
		}
		*dst = n
	}

	int64s := map[string]*int64{
		"MAX_CONTENT_BYTES": &cfg.Collect.MaxContentBytes,
		"MAX_ENTRY_BYTES":   &cfg.Extract.MaxEntryBytes,
	}
	for key, dst := range int64s {
		v := l.getenv(envPrefix + key)
		if v == "" {
			continue
		}
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return fmt.Errorf("%s%s: %w", envPrefix, key, err)
		}
		*dst = n
	}

	durations := map[string]*time.Duration{
		"FETCH_TIMEOUT": &cfg.Fetch.Timeout,
		"BACKOFF_STEP":  &cfg.Fetch.BackoffStep,
	}
	for key, dst := range durations {
		v := l.getenv(envPrefix + key)
		if v == "" {
			continue
		}
		d, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s%s: %w", envPrefix, key, err)
		}
		*dst = d
	}

	if v := l.getenv(envPrefix + "EXCLUDE"); v != "" {
		var patterns []string
		for _, p := range strings.Split(v, ",") {
			if p = strings.TrimSpace(p); p != "" {
				patterns = append(patterns, p)
			}
		}
		cfg.Collect.Exclude = patterns
	}
	return nil
}
