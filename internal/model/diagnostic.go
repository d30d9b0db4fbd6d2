package model

import "time"

type DiagnosticLevel string

const (
	LevelDebug DiagnosticLevel = "debug"
	LevelAudit DiagnosticLevel = "audit"
	LevelError DiagnosticLevel = "error"
)

func (l DiagnosticLevel) String() string { return string(l) }

func (l DiagnosticLevel) Valid() bool {
	return l == LevelDebug || l == LevelAudit || l == LevelError
}

// Diagnostic is one operator-facing log entry written by the hook.
type Diagnostic struct {
	ID      string          `db:"id" json:"id"`
	At      time.Time       `db:"at" json:"at"`
	Level   DiagnosticLevel `db:"level" json:"level"`
	Title   string          `db:"title" json:"title"`
	Detail  string          `db:"detail" json:"detail"`
	EventID string          `db:"event_id" json:"event_id"`
}
