package application

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"runtime/debug"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/openkraft/archlens/internal/domain"
	"github.com/openkraft/archlens/internal/domain/analysis"
	"github.com/openkraft/archlens/internal/domain/compare"
)

// Pipeline orchestrates archive runs:
// download → extract → collect → analyze, or the first three twice → compare.
// Every run owns a temp root that is removed on every exit path.
type Pipeline struct {
	fetcher   domain.ArchiveFetcher
	extractor domain.ArchiveExtractor
	collector domain.TreeCollector
	engine    *compare.Engine

	tracker domain.StepTracker
	store   domain.ReportStore
	logger  *zap.Logger

	cache   *lru.Cache[string, domain.AnalysisReport]
	inspect func(path string) (domain.ArchiveMeta, error)

	scratchDir   string
	actor        string
	linkTemplate string

	newID   func() string
	analyze func([]domain.SourceFile) domain.AnalysisReport
}

type Option func(*Pipeline)

func WithTracker(t domain.StepTracker) Option {
	return func(p *Pipeline) { p.tracker = t }
}

func WithStore(s domain.ReportStore) Option {
	return func(p *Pipeline) { p.store = s }
}

func WithLogger(l *zap.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithReportCache memoizes analysis reports by archive identity. inspect
// computes that identity from the downloaded file.
func WithReportCache(size int, inspect func(path string) (domain.ArchiveMeta, error)) Option {
	return func(p *Pipeline) {
		if size <= 0 || inspect == nil {
			return
		}
		c, err := lru.New[string, domain.AnalysisReport](size)
		if err != nil {
			return
		}
		p.cache = c
		p.inspect = inspect
	}
}

// WithIDGenerator overrides run ID generation.
func WithIDGenerator(fn func() string) Option {
	return func(p *Pipeline) { p.newID = fn }
}

// WithAnalyzer overrides the report builder.
func WithAnalyzer(fn func([]domain.SourceFile) domain.AnalysisReport) Option {
	return func(p *Pipeline) { p.analyze = fn }
}

func NewPipeline(
	cfg domain.Config,
	fetcher domain.ArchiveFetcher,
	extractor domain.ArchiveExtractor,
	collector domain.TreeCollector,
	opts ...Option,
) *Pipeline {
	p := &Pipeline{
		fetcher:      fetcher,
		extractor:    extractor,
		collector:    collector,
		logger:       zap.NewNop(),
		scratchDir:   cfg.ScratchDir,
		actor:        cfg.Tracking.Actor,
		linkTemplate: cfg.Tracking.LinkTemplate,
		newID:        uuid.NewString,
		analyze:      analysis.Analyze,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.engine = compare.NewEngine(collector,
		compare.WithWorkers(cfg.Compare.Workers),
		compare.WithSummary(cfg.Compare.SummaryLines, cfg.Compare.SummaryLineWidth),
		compare.WithLogger(p.logger),
	)
	return p
}

// RunAnalysis downloads, unpacks and analyzes one archive.
func (p *Pipeline) RunAnalysis(ctx context.Context, ref domain.ArchiveRef) (report domain.AnalysisReport, err error) {
	r := p.begin(ctx, "analysis")
	defer func() { err = r.end(recover(), err) }()

	if err := p.extractor.CheckFormat(formatName(ref)); err != nil {
		return domain.AnalysisReport{}, err
	}
	root, release, err := p.tempRoot(r.id)
	if err != nil {
		return domain.AnalysisReport{}, err
	}
	defer release()

	archive, err := p.download(ctx, r, ref, root)
	if err != nil {
		return domain.AnalysisReport{}, err
	}

	key := p.cacheKey(archive)
	if key != "" {
		if cached, ok := p.cache.Get(key); ok {
			r.advance(domain.StateAnalyzing, map[string]any{"cached": true})
			r.advance(domain.StateCompleted, nil)
			p.saveAnalysis(ctx, r.id, ref, cached)
			return cached.Clone(), nil
		}
	}

	tree, err := p.unpack(ctx, r, archive, root)
	if err != nil {
		return domain.AnalysisReport{}, err
	}
	files := p.collector.Load(tree)

	r.advance(domain.StateAnalyzing, map[string]any{"files": len(files)})
	report, err = p.buildReport(files)
	if err != nil {
		return domain.AnalysisReport{}, err
	}
	if key != "" {
		p.cache.Add(key, report.Clone())
	}

	r.advance(domain.StateCompleted, nil)
	p.saveAnalysis(ctx, r.id, ref, report)
	return report, nil
}

// RunComparison acquires both archives concurrently and diffs their trees.
func (p *Pipeline) RunComparison(ctx context.Context, a, b domain.ArchiveRef) (result domain.ComparisonResult, err error) {
	r := p.begin(ctx, "comparison")
	defer func() { err = r.end(recover(), err) }()

	for _, ref := range []domain.ArchiveRef{a, b} {
		if err := p.extractor.CheckFormat(formatName(ref)); err != nil {
			return domain.ComparisonResult{}, err
		}
	}
	root, release, err := p.tempRoot(r.id)
	if err != nil {
		return domain.ComparisonResult{}, err
	}
	defer release()

	var trees [2]domain.ExtractedTree
	g, gctx := errgroup.WithContext(ctx)
	for i, ref := range []domain.ArchiveRef{a, b} {
		side := filepath.Join(root, sideNames[i])
		g.Go(guard("acquiring "+sideNames[i], func() error {
			archive, err := p.download(gctx, r, ref, side)
			if err != nil {
				return err
			}
			tree, err := p.unpack(gctx, r, archive, side)
			if err != nil {
				return err
			}
			trees[i] = tree
			return nil
		}))
	}
	if err := g.Wait(); err != nil {
		return domain.ComparisonResult{}, err
	}

	merged := domain.Merge(trees[0], trees[1])
	r.advance(domain.StateComparing, map[string]any{"paths": len(merged)})
	result, err = p.engine.Compare(ctx, merged)
	if err != nil {
		return domain.ComparisonResult{}, err
	}

	r.advance(domain.StateCompleted, map[string]any{
		"added":    len(result.AddedFiles),
		"removed":  len(result.RemovedFiles),
		"modified": len(result.ChangedFiles),
	})
	p.saveComparison(ctx, r.id, a, b, result)
	return result, nil
}

// PreviewComparison compares two archives by metadata alone.
func (p *Pipeline) PreviewComparison(a, b domain.ArchiveMeta) domain.ComparisonPreview {
	return compare.Preview(a, b)
}

var sideNames = [2]string{"a", "b"}

func (p *Pipeline) download(ctx context.Context, r *run, ref domain.ArchiveRef, dir string) (string, error) {
	r.advance(domain.StateDownloading, nil)
	dlDir := filepath.Join(dir, "download")
	if err := os.MkdirAll(dlDir, 0o750); err != nil {
		return "", fmt.Errorf("creating download directory: %w", err)
	}
	return p.fetcher.Fetch(ctx, ref.DownloadURL, dlDir)
}

func (p *Pipeline) unpack(ctx context.Context, r *run, archive, dir string) (domain.ExtractedTree, error) {
	r.advance(domain.StateExtracting, nil)
	outDir := filepath.Join(dir, "extract")
	if _, err := p.extractor.Extract(ctx, archive, outDir); err != nil {
		return domain.ExtractedTree{}, err
	}

	r.advance(domain.StateCollecting, nil)
	tree, err := p.collector.Collect(outDir)
	if err != nil {
		return domain.ExtractedTree{}, fmt.Errorf("collecting files: %w", err)
	}
	return tree, nil
}

// buildReport turns a panic in the analyzer into an AnalysisError.
func (p *Pipeline) buildReport(files []domain.SourceFile) (report domain.AnalysisReport, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = &domain.AnalysisError{Err: fmt.Errorf("%v", rec)}
		}
	}()
	return p.analyze(files), nil
}

func (p *Pipeline) cacheKey(archive string) string {
	if p.cache == nil {
		return ""
	}
	meta, err := p.inspect(archive)
	if err != nil || meta.Checksum == "" {
		p.logger.Debug("archive not cacheable", zap.Error(err))
		return ""
	}
	return fmt.Sprintf("%d:%s", meta.SizeBytes, meta.Checksum)
}

// tempRoot creates the per-run scratch directory and returns its release.
func (p *Pipeline) tempRoot(runID string) (string, func(), error) {
	root, err := os.MkdirTemp(p.scratchDir, "archlens-"+runID+"-")
	if err != nil {
		return "", nil, &domain.InternalError{Op: "creating scratch directory", Err: err}
	}
	release := func() {
		if err := os.RemoveAll(root); err != nil {
			p.logger.Error("removing scratch directory", zap.String("path", root), zap.Error(err))
		}
	}
	return root, release, nil
}

func (p *Pipeline) saveAnalysis(ctx context.Context, runID string, ref domain.ArchiveRef, report domain.AnalysisReport) {
	if p.store == nil {
		return
	}
	if err := p.store.SaveAnalysis(context.WithoutCancel(ctx), runID, ref, report); err != nil {
		p.logger.Warn("storing analysis failed", zap.String("run_id", runID), zap.Error(err))
	}
}

func (p *Pipeline) saveComparison(ctx context.Context, runID string, a, b domain.ArchiveRef, result domain.ComparisonResult) {
	if p.store == nil {
		return
	}
	if err := p.store.SaveComparison(context.WithoutCancel(ctx), runID, a, b, result); err != nil {
		p.logger.Warn("storing comparison failed", zap.String("run_id", runID), zap.Error(err))
	}
}

// formatName picks the name whose extension decides the archive format:
// the display name when it carries one, else the last URL path segment.
func formatName(ref domain.ArchiveRef) string {
	if filepath.Ext(ref.DisplayName) != "" {
		return ref.DisplayName
	}
	if u, err := url.Parse(ref.DownloadURL); err == nil {
		return path.Base(u.Path)
	}
	return ref.DownloadURL
}

// guard converts a panic inside a worker into an InternalError.
func guard(op string, fn func() error) func() error {
	return func() (err error) {
		defer func() {
			if rec := recover(); rec != nil {
				err = &domain.InternalError{Op: op, Err: fmt.Errorf("panic: %v\n%s", rec, debug.Stack())}
			}
		}()
		return fn()
	}
}

// classify guarantees that every error leaving the pipeline is a UserError.
func classify(err error) error {
	var ue domain.UserError
	if errors.As(err, &ue) {
		return err
	}
	return &domain.InternalError{Op: "pipeline", Err: err}
}
