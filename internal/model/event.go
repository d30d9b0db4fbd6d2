package model

import "strings"

// EventType is the lifecycle trigger reported by the ERP platform.
type EventType string

const (
	EventCreate EventType = "create"
	EventEdit   EventType = "edit"
	EventXEdit  EventType = "xedit"
	EventDelete EventType = "delete"
	EventCopy   EventType = "copy"
)

func (t EventType) String() string { return string(t) }

// RecordType identifies the kind of business record an event refers to.
type RecordType string

const (
	RecordSalesOrder RecordType = "salesorder"
	RecordCustomer   RecordType = "customer"
	RecordEmployee   RecordType = "employee"
	RecordInvoice    RecordType = "invoice"
)

func (t RecordType) String() string { return string(t) }

// Record is the subset of a newly submitted record the hook reads.
type Record struct {
	Type   RecordType `json:"type"`
	ID     string     `json:"id"`
	Entity string     `json:"entity"` // customer reference on transactions
}

// RecordEvent is delivered once per record submission, by webhook or Kafka.
type RecordEvent struct {
	ID     string    `json:"id"`
	Type   EventType `json:"type"`
	Record Record    `json:"record"`
}

// Normalize trims identifiers and lower-cases the type tags.
func (e RecordEvent) Normalize() RecordEvent {
	e.ID = strings.TrimSpace(e.ID)
	e.Type = EventType(strings.ToLower(strings.TrimSpace(string(e.Type))))
	e.Record.Type = RecordType(strings.ToLower(strings.TrimSpace(string(e.Record.Type))))
	e.Record.ID = strings.TrimSpace(e.Record.ID)
	e.Record.Entity = strings.TrimSpace(e.Record.Entity)
	return e
}

// IsSalesOrderCreate reports whether the event is the creation of a sales order.
func (e RecordEvent) IsSalesOrderCreate() bool {
	return e.Type == EventCreate && e.Record.Type == RecordSalesOrder
}
