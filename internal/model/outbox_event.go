package model

import "time"

type OutboxEvent struct {
	ID          int64     `db:"id"`
	Aggregate   string    `db:"aggregate"`    // e.g. "notification"
	AggregateID string    `db:"aggregate_id"` // notification.ID
	Topic       string    `db:"topic"`
	Payload     []byte    `db:"payload"`
	CreatedAt   time.Time `db:"created_at"`
}
