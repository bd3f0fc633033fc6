package tracker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/openkraft/archlens/internal/domain"
)

// Journal implements domain.StepTracker by appending checkpoints to a JSON
// array on disk.
type Journal struct {
	path string
	mu   sync.Mutex
}

func NewJournal(path string) *Journal {
	return &Journal{path: path}
}

func (j *Journal) Track(_ context.Context, cp domain.Checkpoint) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	entries, err := j.load()
	if err != nil {
		return err
	}
	entries = append(entries, cp)

	if err := os.MkdirAll(filepath.Dir(j.path), 0o755); err != nil {
		return fmt.Errorf("creating journal directory: %w", err)
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	return j.replace(data)
}

// replace swaps the journal for data through a temp file in the same
// directory so readers in other processes never see a torn file.
func (j *Journal) replace(data []byte) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(j.path), "."+filepath.Base(j.path)+"-*.tmp")
	if err != nil {
		return fmt.Errorf("creating journal temp file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("writing journal: %w", err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), j.path); err != nil {
		return fmt.Errorf("replacing journal %s: %w", filepath.Base(j.path), err)
	}
	return nil
}

// Load returns every recorded checkpoint, oldest first.
func (j *Journal) Load() ([]domain.Checkpoint, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.load()
}

// Run returns the checkpoints recorded for one run.
func (j *Journal) Run(runID string) ([]domain.Checkpoint, error) {
	all, err := j.Load()
	if err != nil {
		return nil, err
	}
	var out []domain.Checkpoint
	for _, cp := range all {
		if cp.RunID == runID {
			out = append(out, cp)
		}
	}
	return out, nil
}

func (j *Journal) load() ([]domain.Checkpoint, error) {
	data, err := os.ReadFile(j.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var entries []domain.Checkpoint
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parsing journal %s: %w", filepath.Base(j.path), err)
	}
	return entries, nil
}
