package tracker

import (
	"context"

	"go.uber.org/zap"

	"github.com/openkraft/archlens/internal/domain"
)

// LogTracker writes every checkpoint as a structured log line.
type LogTracker struct {
	logger *zap.Logger
}

func NewLog(logger *zap.Logger) *LogTracker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogTracker{logger: logger}
}

func (t *LogTracker) Track(_ context.Context, cp domain.Checkpoint) error {
	fields := []zap.Field{
		zap.String("run_id", cp.RunID),
		zap.String("step", cp.Step),
		zap.String("outcome", string(cp.Outcome)),
	}
	if cp.Actor != "" {
		fields = append(fields, zap.String("actor", cp.Actor))
	}
	if cp.Link != "" {
		fields = append(fields, zap.String("link", cp.Link))
	}
	if len(cp.Payload) > 0 {
		fields = append(fields, zap.Any("payload", cp.Payload))
	}

	if cp.Outcome == domain.OutcomeError {
		t.logger.Warn("checkpoint", fields...)
		return nil
	}
	t.logger.Info("checkpoint", fields...)
	return nil
}
