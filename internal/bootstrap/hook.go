package bootstrap

import (
	"github.com/jmehdipour/overdue-notifier/internal/config"
	"github.com/jmehdipour/overdue-notifier/internal/dedupe"
	"github.com/jmehdipour/overdue-notifier/internal/notifier"
	"github.com/jmehdipour/overdue-notifier/internal/repository"
	"github.com/jmehdipour/overdue-notifier/internal/service/mailqueue"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// NewHook wires the notifier to its MySQL, Redis and ClickHouse collaborators.
// serve and worker events share this graph.
func NewHook(
	cfg config.Config,
	mysqlDB *sqlx.DB,
	rdb redis.Cmdable,
	diagnostics repository.DiagnosticsRepository,
	log *zap.Logger,
) *notifier.Hook {
	mailer := mailqueue.New(
		mysqlDB,
		repository.NewNotificationsRepository(mysqlDB),
		repository.NewOutboxRepository(mysqlDB),
		cfg.Kafka.MailTopic,
	)

	n := notifier.New(
		repository.NewCustomersRepository(mysqlDB),
		repository.NewEmployeesRepository(mysqlDB),
		mailer,
		dedupe.NewRedisClaimer(rdb, cfg.Dedupe.KeyPrefix, cfg.Dedupe.TTL),
	)

	sink := notifier.Tee{
		notifier.ZapSink{Log: log},
		notifier.StoreSink{Repo: diagnostics, Log: log},
	}

	return notifier.NewHook(n, sink, log)
}
