package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Customer struct {
	ID             string          `db:"id"`
	Name           string          `db:"name"`
	OverdueBalance decimal.Decimal `db:"overdue_balance"`
	SalesRepID     *string         `db:"sales_rep_id"` // nullable
	CreatedAt      time.Time       `db:"created_at"`
	UpdatedAt      time.Time       `db:"updated_at"`
}

// HasOverdueBalance is true only for a strictly positive balance.
func (c Customer) HasOverdueBalance() bool {
	return c.OverdueBalance.IsPositive()
}
