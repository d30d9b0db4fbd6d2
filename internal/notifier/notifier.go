// Package notifier holds the overdue-balance alert rule: when a sales order
// is created for a customer with an overdue balance, email the supervisor of
// the customer's sales rep.
package notifier

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jmehdipour/overdue-notifier/internal/model"
	"github.com/shopspring/decimal"
)

const (
	AlertSubject = "Sales Order Created for Customer with Overdue Balance"

	TitleSent   = "Email Sent"
	TitleFailed = "Error Sending Overdue Balance Alert"
)

// CustomerLoader fetches a customer by id; (nil, nil) means not found.
type CustomerLoader interface {
	GetByID(ctx context.Context, id string) (*model.Customer, error)
}

// SupervisorFinder returns the first match of a single-result lookup keyed on
// the sales rep id, or (nil, nil) when nothing matched. If several rows could
// match, which one is returned is up to the implementation.
type SupervisorFinder interface {
	FindSupervisor(ctx context.Context, salesRepID string) (*model.Supervisor, error)
}

// Mailer hands an email to the notification service. Delivery is
// fire-and-forget: a nil error means accepted, not delivered.
type Mailer interface {
	Send(ctx context.Context, eventID string, e model.Email) error
}

// Claimer records that an event id has been acted on. Claim returns false if
// the id was already claimed. Release drops a claim whose send did not happen.
type Claimer interface {
	Claim(ctx context.Context, eventID string) (bool, error)
	Release(ctx context.Context, eventID string) error
}

// Notifier evaluates record events. It performs no logging; callers turn the
// returned Outcome into diagnostics.
type Notifier struct {
	Customers   CustomerLoader
	Supervisors SupervisorFinder
	Mailer      Mailer
	Claims      Claimer // optional; nil disables de-duplication
}

func New(customers CustomerLoader, supervisors SupervisorFinder, mailer Mailer, claims Claimer) *Notifier {
	return &Notifier{
		Customers:   customers,
		Supervisors: supervisors,
		Mailer:      mailer,
		Claims:      claims,
	}
}

// Evaluate runs the rule for one event and sends at most one email.
func (n *Notifier) Evaluate(ctx context.Context, ev model.RecordEvent) Outcome {
	ev = ev.Normalize()
	if !ev.IsSalesOrderCreate() {
		return skipped(ReasonNotTriggered)
	}

	customerID := ev.Record.Entity
	if customerID == "" {
		return failed(opErr("load customer", fmt.Errorf("%w: order %s", ErrNoCustomerRef, ev.Record.ID)))
	}

	customer, err := n.Customers.GetByID(ctx, customerID)
	if err != nil {
		return failed(opErr("load customer "+customerID, err))
	}
	if customer == nil {
		return failed(opErr("load customer "+customerID, ErrCustomerNotFound))
	}

	if !customer.HasOverdueBalance() {
		return skipped(ReasonNoOverdueBalance)
	}

	if customer.SalesRepID == nil || strings.TrimSpace(*customer.SalesRepID) == "" {
		return skipped(ReasonNoSalesRep)
	}
	salesRep := strings.TrimSpace(*customer.SalesRepID)

	sup, err := n.Supervisors.FindSupervisor(ctx, salesRep)
	if err != nil {
		return failed(opErr("find supervisor of "+salesRep, err))
	}
	if sup == nil {
		return skipped(ReasonNoSupervisor)
	}
	_, recipient, ok := sup.Contact()
	if !ok {
		return skipped(ReasonNoSupervisor)
	}

	email := ComposeAlert(customerID, ev.Record.ID, customer.OverdueBalance, salesRep, recipient)

	claimed := false
	if n.Claims != nil && ev.ID != "" {
		first, err := n.Claims.Claim(ctx, ev.ID)
		if err != nil {
			return failed(opErr("claim event "+ev.ID, err))
		}
		if !first {
			return skipped(ReasonDuplicate)
		}
		claimed = true
	}

	if err := n.Mailer.Send(ctx, ev.ID, email); err != nil {
		sendErr := opErr("send email to "+recipient, err)
		// a retry of the same event must be able to send; the caller's ctx may already be gone
		if claimed {
			if rerr := n.Claims.Release(context.WithoutCancel(ctx), ev.ID); rerr != nil {
				return failed(errors.Join(sendErr, opErr("release claim "+ev.ID, rerr)))
			}
		}
		return failed(sendErr)
	}

	return sent(email)
}

// ComposeAlert renders the fixed alert template.
func ComposeAlert(customerID, orderID string, overdue decimal.Decimal, author, recipient string) model.Email {
	var b strings.Builder
	b.WriteString("A new sales order has been created for a customer with an overdue balance.\n\n")
	fmt.Fprintf(&b, "Customer ID: %s\n", customerID)
	fmt.Fprintf(&b, "Sales Order ID: %s\n", orderID)
	fmt.Fprintf(&b, "Overdue Balance: %s\n", overdue.String())

	return model.Email{
		Author:    author,
		Recipient: recipient,
		Subject:   AlertSubject,
		Body:      b.String(),
	}
}
