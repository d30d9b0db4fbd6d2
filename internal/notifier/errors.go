package notifier

import "errors"

var (
	ErrCustomerNotFound = errors.New("customer not found")
	ErrNoCustomerRef    = errors.New("sales order has no customer reference")
)

// OperationError is any failure raised by a collaborator while handling an
// event. Op names the step: load customer, find supervisor, claim event,
// send email, or hook (recovered panic).
type OperationError struct {
	Op  string
	Err error
}

func (e *OperationError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *OperationError) Unwrap() error { return e.Err }

func opErr(op string, err error) error {
	return &OperationError{Op: op, Err: err}
}
