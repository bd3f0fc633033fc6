package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/server"

	"github.com/openkraft/archlens/internal/adapters/outbound/store"
	"github.com/openkraft/archlens/internal/domain"
)

// Pipeline is the archive pipeline surface exposed to MCP clients.
type Pipeline interface {
	RunAnalysis(ctx context.Context, ref domain.ArchiveRef) (domain.AnalysisReport, error)
	RunComparison(ctx context.Context, a, b domain.ArchiveRef) (domain.ComparisonResult, error)
	PreviewComparison(a, b domain.ArchiveMeta) domain.ComparisonPreview
}

// RunJournal looks up the checkpoints recorded for a run.
type RunJournal interface {
	Run(runID string) ([]domain.Checkpoint, error)
}

// RecordReader loads persisted pipeline outputs.
type RecordReader interface {
	LoadAnalysis(runID string) (*store.AnalysisRecord, error)
	LoadComparison(runID string) (*store.ComparisonRecord, error)
}

type serverDeps struct {
	pipeline Pipeline
	config   *domain.Config
	journal  RunJournal
	records  RecordReader
}

type Option func(*serverDeps)

// WithConfig exposes the effective configuration as a resource.
func WithConfig(cfg domain.Config) Option {
	return func(d *serverDeps) { d.config = &cfg }
}

// WithJournal exposes recorded run checkpoints as a resource template.
func WithJournal(j RunJournal) Option {
	return func(d *serverDeps) { d.journal = j }
}

// WithRecords exposes stored analyses and comparisons as resource templates.
func WithRecords(r RecordReader) Option {
	return func(d *serverDeps) { d.records = r }
}

// NewArchlensMCPServer creates an MCP server with the archlens tools
// registered. Resources are registered for each optional source provided.
func NewArchlensMCPServer(p Pipeline, opts ...Option) *server.MCPServer {
	deps := &serverDeps{pipeline: p}
	for _, opt := range opts {
		opt(deps)
	}

	s := server.NewMCPServer(
		"archlens",
		"0.1.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, false),
	)

	registerTools(s, deps.pipeline)
	registerResources(s, deps)

	return s
}
