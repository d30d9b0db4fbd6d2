package model

import "time"

type NotificationStatus string

const (
	StatusQueued NotificationStatus = "queued"
	StatusSent   NotificationStatus = "sent"
	StatusFailed NotificationStatus = "failed"
)

func (s NotificationStatus) String() string {
	return string(s)
}

func (s NotificationStatus) Valid() bool {
	return s == StatusQueued || s == StatusSent || s == StatusFailed
}

// Email is the message handed to the notification service.
type Email struct {
	Author    string `json:"author"`
	Recipient string `json:"recipient"`
	Subject   string `json:"subject"`
	Body      string `json:"body"`
}

// Notification is the DB entity persisted in the notifications table.
type Notification struct {
	ID        string             `db:"id"`
	EventID   string             `db:"event_id"`
	Author    string             `db:"author"`
	Recipient string             `db:"recipient"`
	Subject   string             `db:"subject"`
	Body      string             `db:"body"`
	Status    NotificationStatus `db:"status"`
	CreatedAt time.Time          `db:"created_at"`
	UpdatedAt time.Time          `db:"updated_at"`
}
