package worker

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/jmehdipour/overdue-notifier/internal/kafka"
	"github.com/jmehdipour/overdue-notifier/internal/metrics"
	"github.com/jmehdipour/overdue-notifier/internal/model"
	"github.com/jmehdipour/overdue-notifier/internal/repository"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// MailDispatcher is satisfied by *dispatcher.Dispatcher.
type MailDispatcher interface {
	Send(ctx context.Context, e model.Email) error
}

// SenderKafka:
// - fetches mail envelopes from Kafka,
// - dispatches them via mail providers,
// - batches notification status updates (size/time based flush).
type SenderKafka struct {
	// Dependencies
	DB            *sqlx.DB
	Consumer      kafka.Source
	Notifications repository.NotificationsRepository
	Dispatch      MailDispatcher
	Log           *zap.Logger

	// Behavior
	Workers   int           // number of goroutines delivering mail
	BatchSize int           // max buffered updates per flush (items)
	BatchWait time.Duration // max time to wait before flush

	HandleTimeout time.Duration // bound on one delivery once picked up
}

// NewSenderKafka builds a worker with sane defaults.
func NewSenderKafka(
	db *sqlx.DB,
	consumer kafka.Source,
	notificationsRepo repository.NotificationsRepository,
	dispatch MailDispatcher,
	log *zap.Logger,
) *SenderKafka {
	return &SenderKafka{
		DB:            db,
		Consumer:      consumer,
		Notifications: notificationsRepo,
		Dispatch:      dispatch,
		Log:           log,
		Workers:       8,
		BatchSize:     100,
		BatchWait:     500 * time.Millisecond,
		HandleTimeout: 15 * time.Second,
	}
}

type updateItem struct {
	id     string
	status model.NotificationStatus // sent | failed
}

// Run starts the worker and blocks until ctx is cancelled and pending updates are flushed.
func (w *SenderKafka) Run(ctx context.Context) error {
	if w.DB == nil || w.Consumer == nil || w.Dispatch == nil || w.Notifications == nil {
		return errors.New("sender-kafka: missing dependency")
	}
	if w.Workers <= 0 {
		w.Workers = 8
	}
	if w.BatchSize <= 0 {
		w.BatchSize = 100
	}
	if w.BatchWait <= 0 {
		w.BatchWait = 500 * time.Millisecond
	}

	updates := make(chan updateItem, w.BatchSize*2)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		w.runBatchWriter(ctx, updates)
	}()

	msgCh := fetchLoop(ctx, w.Consumer, w.Workers*2, w.Log)

	var wg sync.WaitGroup
	for i := 0; i < w.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			consume(ctx, msgCh, func(m kafka.Message) {
				hctx, cancel := detached(ctx, w.HandleTimeout)
				defer cancel()
				w.processOne(hctx, m, updates)
			})
		}()
	}

	wg.Wait()
	close(updates)
	<-writerDone
	return nil
}

func (w *SenderKafka) processOne(ctx context.Context, m kafka.Message, out chan<- updateItem) {
	// Parse envelope: { id, event_id, email:{author,recipient,subject,body} }
	var env model.MailEnvelope
	if err := json.Unmarshal(m.Value, &env); err != nil || env.ID == "" {
		// poison → commit, skip
		if cerr := w.Consumer.Commit(ctx, m); cerr != nil {
			w.Log.Error("kafka commit failed", zap.Int64("offset", m.Offset), zap.Error(cerr))
		}
		if err != nil {
			w.Log.Warn("bad mail envelope json", zap.Error(err))
		} else {
			w.Log.Warn("mail envelope missing id", zap.Int64("offset", m.Offset))
		}
		return
	}

	if derr := w.Dispatch.Send(ctx, env.Email); derr == nil {
		metrics.MailTotal.WithLabelValues(model.StatusSent.String()).Inc()
		out <- updateItem{id: env.ID, status: model.StatusSent}
	} else {
		metrics.MailTotal.WithLabelValues(model.StatusFailed.String()).Inc()
		w.Log.Warn("mail dispatch failed",
			zap.String("notification_id", env.ID),
			zap.String("event_id", env.EventID),
			zap.Error(derr),
		)
		out <- updateItem{id: env.ID, status: model.StatusFailed}
	}

	// Always commit (at-least-once; a failed send is recorded, not retried)
	if err := w.Consumer.Commit(ctx, m); err != nil {
		w.Log.Error("kafka commit failed", zap.Int64("offset", m.Offset), zap.Error(err))
	}
}

// runBatchWriter flushes status updates in one transaction per batch until in is closed.
func (w *SenderKafka) runBatchWriter(ctx context.Context, in <-chan updateItem) {
	tick := time.NewTicker(w.BatchWait)
	defer tick.Stop()

	// outlive ctx so the shutdown flush can still write
	dbCtx := context.WithoutCancel(ctx)

	var sentIDs, failedIDs []string

	flush := func() {
		if len(sentIDs) == 0 && len(failedIDs) == 0 {
			return
		}
		if err := w.writeStatuses(dbCtx, sentIDs, failedIDs); err != nil {
			w.Log.Error("notification status flush failed",
				zap.Int("sent", len(sentIDs)),
				zap.Int("failed", len(failedIDs)),
				zap.Error(err),
			)
		} else {
			w.Log.Info("notification statuses flushed",
				zap.Int("sent", len(sentIDs)),
				zap.Int("failed", len(failedIDs)),
			)
		}
		sentIDs = sentIDs[:0]
		failedIDs = failedIDs[:0]
	}

	for {
		select {
		case u, ok := <-in:
			if !ok {
				flush()
				return
			}
			switch u.status {
			case model.StatusSent:
				sentIDs = append(sentIDs, u.id)
			case model.StatusFailed:
				failedIDs = append(failedIDs, u.id)
			}

			if len(sentIDs)+len(failedIDs) >= w.BatchSize {
				flush()
			}

		case <-tick.C:
			flush()
		}
	}
}

func (w *SenderKafka) writeStatuses(ctx context.Context, sentIDs, failedIDs []string) error {
	tx, err := w.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := w.Notifications.BatchUpdateStatus(ctx, tx, sentIDs, model.StatusSent); err != nil {
		return err
	}
	if err := w.Notifications.BatchUpdateStatus(ctx, tx, failedIDs, model.StatusFailed); err != nil {
		return err
	}

	return tx.Commit()
}
