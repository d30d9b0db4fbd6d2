package worker

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jmehdipour/overdue-notifier/internal/db"
	"github.com/jmehdipour/overdue-notifier/internal/dispatcher"
	"github.com/jmehdipour/overdue-notifier/internal/kafka"
	"github.com/jmehdipour/overdue-notifier/internal/metrics"
	"github.com/jmehdipour/overdue-notifier/internal/repository"
	"github.com/jmehdipour/overdue-notifier/internal/service/mailqueue"
	"github.com/jmehdipour/overdue-notifier/internal/worker"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var senderCmd = &cobra.Command{
	Use:   "sender",
	Short: "Deliver queued notification emails through mail providers",
	RunE:  runSender,
}

func runSender(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	metrics.MustRegister(prometheus.DefaultRegisterer)

	dbx, err := db.NewMySQLConnection(cfg.MySQL.DSN, db.PoolOptsFrom(cfg.MySQL))
	if err != nil {
		return fmt.Errorf("mysql connect: %w", err)
	}
	defer dbx.Close()

	// providers -> dispatcher
	var provs []dispatcher.Provider
	for _, pc := range cfg.Providers {
		if !pc.Enabled || strings.TrimSpace(pc.BaseURL) == "" {
			continue
		}
		provs = append(provs,
			dispatcher.NewHTTPProvider(
				pc.Name,
				strings.TrimRight(pc.BaseURL, "/"),
				pc.SendPath,
				pc.TimeoutMs,
				pc.Breaker.FailThreshold,
				pc.Breaker.OpenForMs,
			),
		)
	}
	if len(provs) == 0 {
		return fmt.Errorf("no providers enabled in config")
	}
	disp := dispatcher.NewDispatcher(provs, cfg.Dispatcher.MaxRetryAttempts)

	topic := cfg.Kafka.MailTopic
	if topic == "" {
		topic = mailqueue.DefaultTopic
	}
	kc := kafka.ConfigFrom(cfg.Kafka, topic, "sender")
	consumer, err := kafka.NewConsumer(kc, log)
	if err != nil {
		return fmt.Errorf("kafka consumer: %w", err)
	}
	defer consumer.Close()

	w := worker.NewSenderKafka(dbx, consumer, repository.NewNotificationsRepository(dbx), disp, log)

	// tune knobs
	if cfg.Dispatcher.WorkerCount > 0 {
		w.Workers = cfg.Dispatcher.WorkerCount
	}
	if cfg.Dispatcher.BatchSize > 0 {
		w.BatchSize = cfg.Dispatcher.BatchSize
	}
	if cfg.Dispatcher.BatchWait > 0 {
		w.BatchWait = cfg.Dispatcher.BatchWait
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("sender started",
		zap.String("topic", topic),
		zap.String("group", kc.GroupID),
		zap.Int("providers", len(provs)),
		zap.Int("workers", w.Workers),
		zap.Int("batch_size", w.BatchSize),
		zap.Duration("batch_wait", w.BatchWait),
	)

	return w.Run(ctx)
}
