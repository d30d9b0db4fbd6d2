package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jmehdipour/overdue-notifier/internal/kafka"
	"github.com/jmehdipour/overdue-notifier/internal/model"
	"github.com/jmehdipour/overdue-notifier/internal/notifier"
	"go.uber.org/zap"
)

// AfterSubmitter is satisfied by *notifier.Hook.
type AfterSubmitter interface {
	AfterSubmit(ctx context.Context, ev model.RecordEvent) notifier.Outcome
}

// EventsKafka feeds record lifecycle events from Kafka into the after-submit hook.
type EventsKafka struct {
	Consumer kafka.Source
	Hook     AfterSubmitter
	Log      *zap.Logger
	Workers  int // number of goroutines processing events

	// HandleTimeout bounds one event once picked up; it is not cut short by shutdown.
	HandleTimeout time.Duration
}

func NewEventsKafka(consumer kafka.Source, hook AfterSubmitter, log *zap.Logger) *EventsKafka {
	return &EventsKafka{
		Consumer: consumer,
		Hook:     hook,
		Log:      log,
		Workers:  4,

		HandleTimeout: 15 * time.Second,
	}
}

// Run starts the worker and blocks until ctx is cancelled and in-flight events
// finish. Messages still buffered at cancellation are left uncommitted.
func (w *EventsKafka) Run(ctx context.Context) error {
	if w.Hook == nil || w.Consumer == nil {
		return errors.New("events-kafka: missing hook or consumer")
	}
	if w.Workers <= 0 {
		w.Workers = 4
	}

	msgCh := fetchLoop(ctx, w.Consumer, w.Workers*2, w.Log)

	var wg sync.WaitGroup
	for i := 0; i < w.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			consume(ctx, msgCh, func(m kafka.Message) {
				hctx, cancel := detached(ctx, w.HandleTimeout)
				defer cancel()
				w.processOne(hctx, m)
			})
		}()
	}

	wg.Wait()
	return nil
}

func (w *EventsKafka) processOne(ctx context.Context, m kafka.Message) {
	var ev model.RecordEvent
	if err := json.Unmarshal(m.Value, &ev); err != nil {
		w.Log.Warn("bad record event json, skipping",
			zap.String("topic", m.Topic),
			zap.Int("partition", m.Partition),
			zap.Int64("offset", m.Offset),
			zap.Error(err),
		)
		w.commit(ctx, m) // poison → commit, skip
		return
	}

	// redeliveries of the same offset keep the same id, so the claim still dedupes
	if ev.ID == "" {
		ev.ID = fmt.Sprintf("kafka:%s:%d:%d", m.Topic, m.Partition, m.Offset)
	}

	out := w.Hook.AfterSubmit(ctx, ev)
	w.Log.Debug("record event handled",
		zap.String("event_id", ev.ID),
		zap.String("status", out.Status.String()),
		zap.String("reason", out.Reason.String()),
	)

	// Always commit: hook failures are recorded as diagnostics, never retried.
	w.commit(ctx, m)
}

func (w *EventsKafka) commit(ctx context.Context, m kafka.Message) {
	if err := w.Consumer.Commit(ctx, m); err != nil {
		w.Log.Error("kafka commit failed", zap.Int64("offset", m.Offset), zap.Error(err))
	}
}

// fetchLoop reads messages until ctx is cancelled, then closes the returned channel.
func fetchLoop(ctx context.Context, src kafka.Source, buf int, log *zap.Logger) <-chan kafka.Message {
	out := make(chan kafka.Message, buf)
	go func() {
		defer close(out)
		for {
			m, err := src.Fetch(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				log.Warn("kafka fetch failed", zap.Error(err))
				select {
				case <-ctx.Done():
					return
				case <-time.After(200 * time.Millisecond):
				}
				continue
			}
			select {
			case out <- m:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// consume hands messages from in to handle until in is closed or ctx is done.
// A message received after cancellation is dropped unhandled so Kafka redelivers it.
func consume(ctx context.Context, in <-chan kafka.Message, handle func(kafka.Message)) {
	for {
		select {
		case <-ctx.Done():
			return
		case m, ok := <-in:
			if !ok || ctx.Err() != nil {
				return
			}
			handle(m)
		}
	}
}

// detached returns a context that survives cancellation of parent but ends after d.
func detached(parent context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		d = 15 * time.Second
	}
	return context.WithTimeout(context.WithoutCancel(parent), d)
}
