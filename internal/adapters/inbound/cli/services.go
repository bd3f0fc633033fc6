package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/openkraft/archlens/internal/adapters/outbound/checksum"
	"github.com/openkraft/archlens/internal/adapters/outbound/collector"
	"github.com/openkraft/archlens/internal/adapters/outbound/config"
	"github.com/openkraft/archlens/internal/adapters/outbound/extractor"
	"github.com/openkraft/archlens/internal/adapters/outbound/fetcher"
	"github.com/openkraft/archlens/internal/adapters/outbound/logging"
	"github.com/openkraft/archlens/internal/adapters/outbound/store"
	"github.com/openkraft/archlens/internal/adapters/outbound/tracker"
	"github.com/openkraft/archlens/internal/adapters/outbound/tui"
	"github.com/openkraft/archlens/internal/application"
	"github.com/openkraft/archlens/internal/domain"
)

// services is the wired object graph behind one command invocation.
type services struct {
	cfg      domain.Config
	logger   *zap.Logger
	pipeline *application.Pipeline
	journal  *tracker.Journal
	store    *store.Store
	metrics  *tracker.Metrics
}

func newServices(flags *globalFlags) (*services, error) {
	cfg, err := config.New().Load(flags.configPath)
	if err != nil {
		return nil, err
	}
	if flags.logLevel != "" {
		cfg.Log.Level = flags.logLevel
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	svc := &services{cfg: cfg, logger: logger}
	trackers := tracker.Multi{tracker.NewLog(logger)}
	if cfg.Tracking.JournalFile != "" {
		svc.journal = tracker.NewJournal(cfg.Tracking.JournalFile)
		trackers = append(trackers, svc.journal)
	}
	if cfg.Tracking.MetricsFile != "" {
		svc.metrics = tracker.NewMetrics()
		trackers = append(trackers, svc.metrics)
	}

	opts := []application.Option{
		application.WithLogger(logger),
		application.WithTracker(trackers),
		application.WithReportCache(cfg.CacheSize, checksum.File),
	}
	if cfg.StoreDir != "" {
		svc.store = store.New(cfg.StoreDir)
		opts = append(opts, application.WithStore(svc.store))
	}

	svc.pipeline = application.NewPipeline(cfg,
		fetcher.New(cfg.Fetch, fetcher.WithLogger(logger)),
		extractor.New(cfg.Extract, extractor.WithLogger(logger)),
		collector.New(cfg.Collect, collector.WithLogger(logger)),
		opts...,
	)
	return svc, nil
}

// close flushes the metrics textfile and the logger.
func (s *services) close() {
	if s.metrics != nil {
		if err := s.metrics.WriteTextfile(s.cfg.Tracking.MetricsFile); err != nil {
			s.logger.Warn("writing metrics textfile failed", zap.String("path", s.cfg.Tracking.MetricsFile), zap.Error(err))
		}
	}
	_ = s.logger.Sync()
}

func renderJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// renderOutcome prints a pipeline outcome in the requested format. A failed
// outcome is returned as a reportedError so Execute does not print it twice.
func renderOutcome[T any](cmd *cobra.Command, jsonOut bool, v T, err error, text func(T) string) error {
	if jsonOut {
		if rerr := renderJSON(cmd, domain.ResultOf(v, err)); rerr != nil {
			return rerr
		}
	} else if err == nil {
		fmt.Fprint(cmd.OutOrStdout(), text(v))
	} else {
		fmt.Fprint(cmd.ErrOrStderr(), tui.RenderError(err))
	}
	if err != nil {
		return reportedError{err: err}
	}
	return nil
}
