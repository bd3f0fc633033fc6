package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/openkraft/archlens/internal/domain"
)

// AnalysisRecord is the persisted form of a finished analysis run.
type AnalysisRecord struct {
	RunID   string                `json:"run_id"`
	Archive domain.ArchiveRef     `json:"archive"`
	Report  domain.AnalysisReport `json:"report"`
	SavedAt time.Time             `json:"saved_at"`
}

// ComparisonRecord is the persisted form of a finished comparison run.
type ComparisonRecord struct {
	RunID   string                  `json:"run_id"`
	A       domain.ArchiveRef       `json:"a"`
	B       domain.ArchiveRef       `json:"b"`
	Result  domain.ComparisonResult `json:"result"`
	SavedAt time.Time               `json:"saved_at"`
}

// Store is a file-based implementation of domain.ReportStore. Each run is
// written to its own JSON file under dir.
type Store struct {
	dir string
	now func() time.Time
}

// New creates a store rooted at dir.
func New(dir string) *Store {
	return &Store{dir: dir, now: time.Now}
}

func (s *Store) SaveAnalysis(_ context.Context, runID string, ref domain.ArchiveRef, report domain.AnalysisReport) error {
	return s.write(analysisPath(s.dir, runID), AnalysisRecord{
		RunID:   runID,
		Archive: ref,
		Report:  report,
		SavedAt: s.now().UTC(),
	})
}

func (s *Store) SaveComparison(_ context.Context, runID string, a, b domain.ArchiveRef, result domain.ComparisonResult) error {
	return s.write(comparisonPath(s.dir, runID), ComparisonRecord{
		RunID:   runID,
		A:       a,
		B:       b,
		Result:  result,
		SavedAt: s.now().UTC(),
	})
}

// LoadAnalysis reads a stored analysis. Returns (nil, nil) if none exists.
func (s *Store) LoadAnalysis(runID string) (*AnalysisRecord, error) {
	var rec AnalysisRecord
	ok, err := read(analysisPath(s.dir, runID), &rec)
	if !ok || err != nil {
		return nil, err
	}
	return &rec, nil
}

// LoadComparison reads a stored comparison. Returns (nil, nil) if none exists.
func (s *Store) LoadComparison(runID string) (*ComparisonRecord, error) {
	var rec ComparisonRecord
	ok, err := read(comparisonPath(s.dir, runID), &rec)
	if !ok || err != nil {
		return nil, err
	}
	return &rec, nil
}

// write goes through a temp file so readers never see a half-written record.
func (s *Store) write(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("storing %s: %w", filepath.Base(path), err)
	}
	return nil
}

func read(path string, v any) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, err
	}
	return true, nil
}

func analysisPath(dir, runID string) string {
	return filepath.Join(dir, "analyses", filepath.Base(runID)+".json")
}

func comparisonPath(dir, runID string) string {
	return filepath.Join(dir, "comparisons", filepath.Base(runID)+".json")
}
