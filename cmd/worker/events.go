package worker

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jmehdipour/overdue-notifier/internal/bootstrap"
	"github.com/jmehdipour/overdue-notifier/internal/db"
	"github.com/jmehdipour/overdue-notifier/internal/kafka"
	"github.com/jmehdipour/overdue-notifier/internal/metrics"
	"github.com/jmehdipour/overdue-notifier/internal/repository"
	"github.com/jmehdipour/overdue-notifier/internal/worker"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Consume record lifecycle events and run the after-submit hook",
	RunE:  runEvents,
}

func runEvents(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	metrics.MustRegister(prometheus.DefaultRegisterer)

	mysqlDB, err := db.NewMySQLConnection(cfg.MySQL.DSN, db.PoolOptsFrom(cfg.MySQL))
	if err != nil {
		return fmt.Errorf("mysql connect: %w", err)
	}
	defer mysqlDB.Close()

	redisClient, err := db.NewRedisClient(cfg.Redis)
	if err != nil {
		return fmt.Errorf("redis connect: %w", err)
	}
	defer func() { _ = redisClient.Close() }()

	chDB, err := db.NewClickHouseConnection(cfg.ClickHouse.DSN, db.PoolOptsFrom(cfg.ClickHouse))
	if err != nil {
		return fmt.Errorf("clickhouse connect: %w", err)
	}
	defer func() { _ = chDB.Close() }()

	hook := bootstrap.NewHook(cfg, mysqlDB, redisClient, repository.NewDiagnosticsRepository(chDB), log)

	topic := cfg.Kafka.EventsTopic
	if topic == "" {
		topic = "erp.record.events"
	}
	kc := kafka.ConfigFrom(cfg.Kafka, topic, "events")
	consumer, err := kafka.NewConsumer(kc, log)
	if err != nil {
		return fmt.Errorf("kafka consumer: %w", err)
	}
	defer consumer.Close()

	w := worker.NewEventsKafka(consumer, hook, log)
	if cfg.Dispatcher.WorkerCount > 0 {
		w.Workers = cfg.Dispatcher.WorkerCount
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("events worker started",
		zap.String("topic", topic),
		zap.String("group", kc.GroupID),
		zap.Int("workers", w.Workers),
	)

	return w.Run(ctx)
}
