// Package compare reconciles two collected file trees into added, removed
// and modified files with a bounded diff summary per modified file.
package compare

import (
	"context"
	"errors"
	"sort"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/openkraft/archlens/internal/domain"
)

// Engine compares merged trees. Contents are read through a
// domain.ContentReader, which applies the content size ceiling.
type Engine struct {
	reader       domain.ContentReader
	workers      int
	summaryLines int
	lineWidth    int
	logger       *zap.Logger
}

type Option func(*Engine)

func WithWorkers(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.workers = n
		}
	}
}

func WithSummary(lines, width int) Option {
	return func(e *Engine) {
		if lines > 0 {
			e.summaryLines = lines
		}
		if width > 0 {
			e.lineWidth = width
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

func NewEngine(reader domain.ContentReader, opts ...Option) *Engine {
	e := &Engine{
		reader:       reader,
		workers:      8,
		summaryLines: domain.DefaultSummaryLines,
		lineWidth:    domain.DefaultSummaryLineWidth,
		logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Compare classifies every path of merged. Output lists and changes are
// sorted by path regardless of the order in which diffs complete.
func (e *Engine) Compare(ctx context.Context, merged domain.MergedTree) (domain.ComparisonResult, error) {
	paths := make([]string, 0, len(merged))
	for p := range merged {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	slots := make([]*domain.FileChange, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i, p := range paths {
		pair := merged[p]
		switch {
		case pair.A != nil && pair.B == nil:
			slots[i] = &domain.FileChange{Path: p, ChangeType: domain.ChangeRemoved}
		case pair.A == nil && pair.B != nil:
			slots[i] = &domain.FileChange{Path: p, ChangeType: domain.ChangeAdded}
		case pair.A != nil && pair.B != nil:
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				change, err := e.diffPair(p, *pair.A, *pair.B)
				if err != nil {
					var re *domain.ReadError
					if errors.As(err, &re) {
						e.logger.Warn("skipping unreadable file", zap.String("path", p), zap.Error(err))
						return nil
					}
					return err
				}
				slots[i] = change
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return domain.ComparisonResult{}, err
	}

	result := domain.ComparisonResult{
		TotalFilesCompared: len(paths),
		AddedFiles:         []string{},
		RemovedFiles:       []string{},
		ChangedFiles:       []string{},
		Changes:            []domain.FileChange{},
	}
	for _, c := range slots {
		if c == nil {
			continue
		}
		switch c.ChangeType {
		case domain.ChangeAdded:
			result.AddedFiles = append(result.AddedFiles, c.Path)
		case domain.ChangeRemoved:
			result.RemovedFiles = append(result.RemovedFiles, c.Path)
		case domain.ChangeModified:
			result.ChangedFiles = append(result.ChangedFiles, c.Path)
		}
		result.Changes = append(result.Changes, *c)
	}
	return result, nil
}

// diffPair returns nil when both sides have no line-level difference.
func (e *Engine) diffPair(path string, a, b domain.EntryMeta) (*domain.FileChange, error) {
	contentA, err := e.reader.ReadContent(a)
	if err != nil {
		return nil, asReadError(path, err)
	}
	contentB, err := e.reader.ReadContent(b)
	if err != nil {
		return nil, asReadError(path, err)
	}
	if contentA == contentB {
		return nil, nil
	}

	runs := DiffLines(contentA, contentB)
	if CountChanges(runs) == 0 {
		return nil, nil
	}
	return &domain.FileChange{
		Path:       path,
		ChangeType: domain.ChangeModified,
		Summary:    Summarize(runs, e.summaryLines, e.lineWidth),
	}, nil
}

func asReadError(path string, err error) error {
	var re *domain.ReadError
	if errors.As(err, &re) {
		return err
	}
	return &domain.ReadError{Path: path, Err: err}
}

// Preview compares two archives by metadata alone. Empty checksums never
// count as equal.
func Preview(a, b domain.ArchiveMeta) domain.ComparisonPreview {
	diff := a.SizeBytes - b.SizeBytes
	if diff < 0 {
		diff = -diff
	}
	return domain.ComparisonPreview{
		DiffSizeBytes: diff,
		SameChecksum:  a.Checksum != "" && strings.EqualFold(a.Checksum, b.Checksum),
	}
}
