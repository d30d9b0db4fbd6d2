package notifier

import (
	"context"

	"github.com/jmehdipour/overdue-notifier/internal/model"
	"github.com/jmehdipour/overdue-notifier/internal/repository"
	"go.uber.org/zap"
)

// Sink receives operator diagnostics. Implementations must not fail the caller.
type Sink interface {
	Record(ctx context.Context, d model.Diagnostic)
}

// ZapSink writes diagnostics to the process log.
type ZapSink struct {
	Log *zap.Logger
}

func (s ZapSink) Record(_ context.Context, d model.Diagnostic) {
	fields := []zap.Field{
		zap.String("title", d.Title),
		zap.String("detail", d.Detail),
		zap.String("diagnostic_id", d.ID),
	}
	if d.EventID != "" {
		fields = append(fields, zap.String("event_id", d.EventID))
	}

	switch d.Level {
	case model.LevelError:
		s.Log.Error(d.Title, fields...)
	case model.LevelAudit:
		s.Log.Info(d.Title, fields...)
	default:
		s.Log.Debug(d.Title, fields...)
	}
}

// StoreSink persists diagnostics to ClickHouse; write errors go to Log.
type StoreSink struct {
	Repo repository.DiagnosticsRepository
	Log  *zap.Logger
}

func (s StoreSink) Record(ctx context.Context, d model.Diagnostic) {
	if err := s.Repo.InsertBatch(ctx, []model.Diagnostic{d}); err != nil {
		s.Log.Warn("diagnostic store write failed",
			zap.String("diagnostic_id", d.ID),
			zap.Error(err),
		)
	}
}

// Tee fans a diagnostic out to every sink in order.
type Tee []Sink

func (t Tee) Record(ctx context.Context, d model.Diagnostic) {
	for _, s := range t {
		s.Record(ctx, d)
	}
}
