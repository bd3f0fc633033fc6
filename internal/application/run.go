package application

import (
	"context"
	"fmt"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/openkraft/archlens/internal/domain"
)

// run tracks one pipeline invocation. Its state only moves forward; the
// two sides of a comparison share it, so the first side to reach a state
// advances the run.
type run struct {
	id      string
	kind    string
	started time.Time
	ctx     context.Context
	p       *Pipeline

	mu    sync.Mutex
	state domain.RunState
}

func (p *Pipeline) begin(ctx context.Context, kind string) *run {
	r := &run{
		id:      p.newID(),
		kind:    kind,
		started: time.Now(),
		ctx:     context.WithoutCancel(ctx),
		p:       p,
		state:   domain.StatePending,
	}
	r.emit(domain.StatePending, domain.OutcomePending, map[string]any{"kind": kind})
	p.logger.Debug("run started", zap.String("run_id", r.id), zap.String("kind", kind))
	return r
}

// advance moves the run to state to. Transitions to an earlier or equal
// state, or out of a terminal state, are ignored.
func (r *run) advance(to domain.RunState, payload map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state.Terminal() || to <= r.state || to == domain.StateFailed {
		return
	}
	from := r.state
	r.state = to

	r.emit(from, domain.OutcomeDone, nil)
	outcome := domain.OutcomeRunning
	if to == domain.StateCompleted {
		outcome = domain.OutcomeDone
		if payload == nil {
			payload = map[string]any{}
		}
		payload["duration_ms"] = time.Since(r.started).Milliseconds()
	}
	r.emit(to, outcome, payload)
}

func (r *run) fail(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state.Terminal() {
		return
	}
	from := r.state
	r.state = domain.StateFailed
	r.emit(domain.StateFailed, domain.OutcomeError, map[string]any{
		"failed_step": from.String(),
		"kind":        string(domain.KindOf(err)),
		"message":     domain.UserMessage(err),
		"duration_ms": time.Since(r.started).Milliseconds(),
	})
}

// end finalizes the run. A recovered panic becomes an InternalError and any
// error is classified before the Failed checkpoint is emitted.
func (r *run) end(recovered any, err error) error {
	if recovered != nil {
		err = &domain.InternalError{Op: r.kind, Err: fmt.Errorf("panic: %v", recovered)}
		r.p.logger.Error("run panicked",
			zap.String("run_id", r.id),
			zap.Any("panic", recovered),
			zap.ByteString("stack", debug.Stack()),
		)
	}
	if err == nil {
		return nil
	}

	err = classify(err)
	r.fail(err)
	r.p.logger.Warn("run failed",
		zap.String("run_id", r.id),
		zap.String("kind", string(domain.KindOf(err))),
		zap.Error(err),
	)
	return err
}

// emit must be called with r.mu held, except from begin.
func (r *run) emit(state domain.RunState, outcome domain.Outcome, payload map[string]any) {
	if r.p.tracker == nil {
		return
	}
	cp := domain.Checkpoint{
		RunID:     r.id,
		Step:      state.String(),
		Payload:   payload,
		Actor:     r.p.actor,
		Link:      r.link(),
		Outcome:   outcome,
		Timestamp: time.Now().UTC(),
	}
	if err := r.track(cp); err != nil {
		r.p.logger.Warn("checkpoint not recorded",
			zap.String("run_id", r.id),
			zap.String("step", cp.Step),
			zap.Error(err),
		)
	}
}

// track shields the run from a misbehaving tracker.
func (r *run) track(cp domain.Checkpoint) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("tracker panic: %v", rec)
		}
	}()
	return r.p.tracker.Track(r.ctx, cp)
}

func (r *run) link() string {
	if r.p.linkTemplate == "" {
		return ""
	}
	return strings.ReplaceAll(r.p.linkTemplate, "{run_id}", r.id)
}
