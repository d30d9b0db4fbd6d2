package notifier

import (
	"context"
	"fmt"
	"time"

	"github.com/jmehdipour/overdue-notifier/internal/metrics"
	"github.com/jmehdipour/overdue-notifier/internal/model"
	"github.com/jmehdipour/overdue-notifier/internal/util"
	"go.uber.org/zap"
)

// Evaluator is satisfied by *Notifier.
type Evaluator interface {
	Evaluate(ctx context.Context, ev model.RecordEvent) Outcome
}

// Hook is the platform-facing after-submit adapter. It runs the rule,
// records exactly one diagnostic for sent or failed outcomes, and never
// lets a failure escape to the caller.
type Hook struct {
	eval Evaluator
	sink Sink
	log  *zap.Logger
	now  func() time.Time
}

func NewHook(eval Evaluator, sink Sink, log *zap.Logger) *Hook {
	return &Hook{eval: eval, sink: sink, log: log, now: time.Now}
}

// AfterSubmit handles one record event.
func (h *Hook) AfterSubmit(ctx context.Context, ev model.RecordEvent) Outcome {
	out := h.evaluate(ctx, ev)

	switch out.Status {
	case StatusSent:
		h.record(ctx, ev.ID, model.LevelDebug, TitleSent,
			"Overdue balance alert email sent to "+out.Email.Recipient)
	case StatusFailed:
		h.record(ctx, ev.ID, model.LevelError, TitleFailed, out.Err.Error())
	default:
		h.log.Debug("overdue balance hook skipped",
			zap.String("event_id", ev.ID),
			zap.String("record_id", ev.Record.ID),
			zap.String("reason", out.Reason.String()),
		)
	}

	metrics.EventsTotal.WithLabelValues(out.Status.String(), out.Reason.String()).Inc()
	return out
}

func (h *Hook) evaluate(ctx context.Context, ev model.RecordEvent) (out Outcome) {
	defer func() {
		if r := recover(); r != nil {
			out = failed(opErr("hook", fmt.Errorf("panic: %v", r)))
		}
	}()

	return h.eval.Evaluate(ctx, ev)
}

func (h *Hook) record(ctx context.Context, eventID string, level model.DiagnosticLevel, title, detail string) {
	h.sink.Record(ctx, model.Diagnostic{
		ID:      util.New(),
		At:      h.now().UTC(),
		Level:   level,
		Title:   title,
		Detail:  detail,
		EventID: eventID,
	})
}
