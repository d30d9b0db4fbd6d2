package model

// MailEnvelope is the payload published to Kafka (via Debezium outbox SMT).
type MailEnvelope struct {
	ID      string `json:"id"`       // notification ULID
	EventID string `json:"event_id"` // originating record event, may be empty
	Email   Email  `json:"email"`
}
