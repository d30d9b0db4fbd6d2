package repository

import (
	"context"

	"github.com/jmehdipour/overdue-notifier/internal/model"
	"github.com/jmoiron/sqlx"
)

// NotificationsRepository defines persistence for the notifications table.
type NotificationsRepository interface {
	InsertQueued(ctx context.Context, tx *sqlx.Tx, n model.Notification) error
	BatchUpdateStatus(ctx context.Context, tx *sqlx.Tx, ids []string, status model.NotificationStatus) error
}

type NotificationsRepositoryImpl struct {
	db *sqlx.DB
}

func NewNotificationsRepository(db *sqlx.DB) *NotificationsRepositoryImpl {
	return &NotificationsRepositoryImpl{db: db}
}

var _ NotificationsRepository = (*NotificationsRepositoryImpl)(nil)

// InsertQueued inserts a new notification row with status=queued.
func (r *NotificationsRepositoryImpl) InsertQueued(ctx context.Context, tx *sqlx.Tx, n model.Notification) error {
	const q = `
		INSERT INTO notifications
		    (id, event_id, author, recipient, subject, body, status, created_at, updated_at)
		VALUES
		    (?,  ?,        ?,      ?,         ?,       ?,    'queued', NOW(),    NOW())
	`
	return withTx(ctx, r.db, tx, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, q,
			n.ID, n.EventID, n.Author, n.Recipient, n.Subject, n.Body,
		)
		return err
	})
}

// BatchUpdateStatus updates status for many notifications using a single statement.
func (r *NotificationsRepositoryImpl) BatchUpdateStatus(ctx context.Context, tx *sqlx.Tx, ids []string, status model.NotificationStatus) error {
	if len(ids) == 0 {
		return nil
	}
	const base = `UPDATE notifications SET status = ?, updated_at = NOW() WHERE id IN (?)`
	query, args, err := sqlx.In(base, status.String(), ids)
	if err != nil {
		return err
	}
	query = r.db.Rebind(query)

	return withTx(ctx, r.db, tx, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, query, args...)
		return err
	})
}
