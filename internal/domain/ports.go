package domain

import "context"

// ArchiveFetcher downloads a remote archive into destDir and returns the local path.
type ArchiveFetcher interface {
	Fetch(ctx context.Context, downloadURL, destDir string) (string, error)
}

// ArchiveExtractor unpacks an archive into destDir.
type ArchiveExtractor interface {
	// CheckFormat rejects unsupported archive names without touching the filesystem.
	CheckFormat(name string) error
	Extract(ctx context.Context, archivePath, destDir string) ([]string, error)
}

// TreeCollector turns an extraction directory into an ExtractedTree and
// materializes file contents under the configured size ceiling.
type TreeCollector interface {
	Collect(rootDir string) (ExtractedTree, error)
	Load(tree ExtractedTree) []SourceFile
	ContentReader
}

// ContentReader reads one collected file, substituting a placeholder marker
// for files above the content ceiling.
type ContentReader interface {
	ReadContent(meta EntryMeta) (string, error)
}

// StepTracker receives progress checkpoints. Calls are best effort.
type StepTracker interface {
	Track(ctx context.Context, cp Checkpoint) error
}

// ReportStore persists pipeline outputs. The pipeline never reads them back.
type ReportStore interface {
	SaveAnalysis(ctx context.Context, runID string, ref ArchiveRef, report AnalysisReport) error
	SaveComparison(ctx context.Context, runID string, a, b ArchiveRef, result ComparisonResult) error
}

// ConfigLoader loads pipeline configuration.
type ConfigLoader interface {
	Load(path string) (Config, error)
}
