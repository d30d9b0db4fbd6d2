package mailqueue

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jmehdipour/overdue-notifier/internal/metrics"
	"github.com/jmehdipour/overdue-notifier/internal/model"
	"github.com/jmehdipour/overdue-notifier/internal/repository"
	"github.com/jmehdipour/overdue-notifier/internal/util"
	"github.com/jmoiron/sqlx"
)

const DefaultTopic = "mail.outbound"

var ErrInvalidRecipient = errors.New("invalid recipient address")

// Beginner starts the transaction notifications and outbox rows share.
type Beginner interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

// Service queues notification emails: a notifications row and an outbox
// event are written in one transaction, and the sender worker delivers
// them asynchronously.
type Service struct {
	db            Beginner
	notifications repository.NotificationsRepository
	outbox        repository.OutboxRepository
	topic         string
}

// New constructs the mail queue service.
func New(
	db Beginner,
	notificationsRepo repository.NotificationsRepository,
	outboxRepo repository.OutboxRepository,
	topic string,
) *Service {
	if topic == "" {
		topic = DefaultTopic
	}
	return &Service{
		db:            db,
		notifications: notificationsRepo,
		outbox:        outboxRepo,
		topic:         topic,
	}
}

// Send implements notifier.Mailer. A nil error means the email is durably
// queued; delivery happens later and its result is not reported back.
func (s *Service) Send(ctx context.Context, eventID string, e model.Email) error {
	_, err := s.Enqueue(ctx, eventID, e)
	return err
}

// Enqueue persists the notification and its outbox event and returns the
// generated notification id.
func (s *Service) Enqueue(ctx context.Context, eventID string, e model.Email) (string, error) {
	recipient := util.NormalizeEmail(e.Recipient)
	if recipient == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidRecipient, e.Recipient)
	}
	e.Recipient = recipient

	id := util.New()

	n := model.Notification{
		ID:        id,
		EventID:   eventID,
		Author:    e.Author,
		Recipient: e.Recipient,
		Subject:   e.Subject,
		Body:      e.Body,
		Status:    model.StatusQueued,
	}

	payload, err := json.Marshal(model.MailEnvelope{ID: id, EventID: eventID, Email: e})
	if err != nil {
		return "", fmt.Errorf("marshal envelope: %w", err)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer func() { _ = tx.Rollback() }()

	if err := s.notifications.InsertQueued(ctx, tx, n); err != nil {
		return "", fmt.Errorf("insert notification queued: %w", err)
	}

	if err := s.outbox.Insert(ctx, tx, model.OutboxEvent{
		Aggregate:   "notification",
		AggregateID: id,
		Topic:       s.topic,
		Payload:     payload,
	}); err != nil {
		return "", fmt.Errorf("insert outbox: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}

	metrics.MailTotal.WithLabelValues(model.StatusQueued.String()).Inc()
	return id, nil
}
