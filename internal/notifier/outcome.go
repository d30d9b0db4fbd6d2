package notifier

import "github.com/jmehdipour/overdue-notifier/internal/model"

type Status string

const (
	StatusSent    Status = "sent"
	StatusSkipped Status = "skipped"
	StatusFailed  Status = "failed"
)

func (s Status) String() string { return string(s) }

// Reason explains a skipped outcome.
type Reason string

const (
	ReasonNone             Reason = ""
	ReasonNotTriggered     Reason = "not_sales_order_create"
	ReasonNoOverdueBalance Reason = "no_overdue_balance"
	ReasonNoSalesRep       Reason = "no_sales_rep"
	ReasonNoSupervisor     Reason = "no_supervisor"
	ReasonDuplicate        Reason = "duplicate"
)

func (r Reason) String() string { return string(r) }

// Outcome is the result of evaluating one record event.
// Email is set only when Status is sent; Err only when Status is failed.
type Outcome struct {
	Status Status
	Reason Reason
	Email  model.Email
	Err    error
}

func sent(e model.Email) Outcome { return Outcome{Status: StatusSent, Email: e} }

func skipped(r Reason) Outcome { return Outcome{Status: StatusSkipped, Reason: r} }

func failed(err error) Outcome { return Outcome{Status: StatusFailed, Err: err} }
