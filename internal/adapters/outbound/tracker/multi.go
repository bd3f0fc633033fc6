package tracker

import (
	"context"
	"errors"

	"github.com/openkraft/archlens/internal/domain"
)

// Multi fans a checkpoint out to every tracker. A failing tracker does not
// stop the others; their errors are joined.
type Multi []domain.StepTracker

func (m Multi) Track(ctx context.Context, cp domain.Checkpoint) error {
	var errs []error
	for _, t := range m {
		if t == nil {
			continue
		}
		if err := t.Track(ctx, cp); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
