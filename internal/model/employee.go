package model

import (
	"strings"
	"time"
)

type Employee struct {
	ID           string    `db:"id"`
	Name         string    `db:"name"`
	Email        *string   `db:"email"`         // nullable
	SupervisorID *string   `db:"supervisor_id"` // nullable
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

// Supervisor is the result row of a sales rep's supervisor lookup.
// Both fields may be absent: the rep can have no supervisor, or the
// supervisor can have no email on file.
type Supervisor struct {
	ID    *string `db:"supervisor_id"`
	Email *string `db:"supervisor_email"`
}

// Contact returns the supervisor id and email when both are present and non-blank.
func (s Supervisor) Contact() (id, email string, ok bool) {
	if s.ID == nil || s.Email == nil {
		return "", "", false
	}
	id = strings.TrimSpace(*s.ID)
	email = strings.TrimSpace(*s.Email)
	if id == "" || email == "" {
		return "", "", false
	}
	return id, email, true
}
