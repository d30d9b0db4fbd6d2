package notifier

import (
	"context"
	"sync"

	"github.com/jmehdipour/overdue-notifier/internal/model"
	"github.com/shopspring/decimal"
)

type fakeCustomers struct {
	byID  map[string]*model.Customer
	err   error
	calls int
}

func (f *fakeCustomers) GetByID(_ context.Context, id string) (*model.Customer, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.byID[id], nil
}

type fakeSupervisors struct {
	byRep map[string]*model.Supervisor
	err   error
	calls int
	panic bool
}

func (f *fakeSupervisors) FindSupervisor(_ context.Context, rep string) (*model.Supervisor, error) {
	f.calls++
	if f.panic {
		panic("search service exploded")
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.byRep[rep], nil
}

type sentMail struct {
	eventID string
	email   model.Email
}

type fakeMailer struct {
	sent []sentMail
	err  error
}

func (f *fakeMailer) Send(_ context.Context, eventID string, e model.Email) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentMail{eventID: eventID, email: e})
	return nil
}

type fakeClaims struct {
	mu         sync.Mutex
	seen       map[string]bool
	err        error
	releaseErr error
	released   []string
}

func (f *fakeClaims) Claim(_ context.Context, id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return false, f.err
	}
	if f.seen == nil {
		f.seen = map[string]bool{}
	}
	if f.seen[id] {
		return false, nil
	}
	f.seen[id] = true
	return true, nil
}

func (f *fakeClaims) Release(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.released = append(f.released, id)
	if f.releaseErr != nil {
		return f.releaseErr
	}
	delete(f.seen, id)
	return nil
}

type recordingSink struct {
	got []model.Diagnostic
}

func (s *recordingSink) Record(_ context.Context, d model.Diagnostic) {
	s.got = append(s.got, d)
}

func strptr(s string) *string { return &s }

// fixture wires the C001/E42/E10 world plus a zero-balance C002.
type fixture struct {
	customers   *fakeCustomers
	supervisors *fakeSupervisors
	mailer      *fakeMailer
	claims      *fakeClaims
	n           *Notifier
}

func newFixture() *fixture {
	f := &fixture{
		customers: &fakeCustomers{byID: map[string]*model.Customer{
			"C001": {ID: "C001", OverdueBalance: decimal.NewFromInt(150), SalesRepID: strptr("E42")},
			"C002": {ID: "C002", OverdueBalance: decimal.Zero, SalesRepID: strptr("E42")},
			"C003": {ID: "C003", OverdueBalance: decimal.RequireFromString("-20.00"), SalesRepID: strptr("E42")},
			"C004": {ID: "C004", OverdueBalance: decimal.RequireFromString("0.01"), SalesRepID: strptr("E43")},
			"C005": {ID: "C005", OverdueBalance: decimal.NewFromInt(75), SalesRepID: strptr("E44")},
			"C006": {ID: "C006", OverdueBalance: decimal.NewFromInt(75), SalesRepID: nil},
			"C007": {ID: "C007", OverdueBalance: decimal.NewFromInt(75), SalesRepID: strptr("E99")},
		}},
		supervisors: &fakeSupervisors{byRep: map[string]*model.Supervisor{
			"E42": {ID: strptr("E10"), Email: strptr("m@x.com")},
			"E43": {ID: strptr("E11"), Email: nil},
			"E44": {ID: nil, Email: nil},
		}},
		mailer: &fakeMailer{},
		claims: &fakeClaims{},
	}
	f.n = New(f.customers, f.supervisors, f.mailer, f.claims)
	return f
}

func orderCreated(eventID, orderID, customerID string) model.RecordEvent {
	return model.RecordEvent{
		ID:   eventID,
		Type: model.EventCreate,
		Record: model.Record{
			Type:   model.RecordSalesOrder,
			ID:     orderID,
			Entity: customerID,
		},
	}
}
