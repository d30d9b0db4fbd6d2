package dispatcher

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/jmehdipour/overdue-notifier/internal/model"
)

var (
	ErrNoHealthy = errors.New("no healthy providers")
	ErrNoAcquire = errors.New("provider not acquired")
)

// Dispatcher spreads emails round-robin over healthy providers and retries
// on another provider up to maxAttempts times.
type Dispatcher struct {
	providers         []Provider
	roundRobinCounter atomic.Uint64
	maxAttempts       int
}

func NewDispatcher(provs []Provider, maxAttempts int) *Dispatcher {
	if maxAttempts < 1 {
		maxAttempts = 3
	}

	return &Dispatcher{providers: provs, maxAttempts: maxAttempts}
}

func (d *Dispatcher) selectProvider() (Provider, error) {
	healthy := make([]Provider, 0, len(d.providers))
	for _, p := range d.providers {
		if p.Ready() {
			healthy = append(healthy, p)
		}
	}

	if len(healthy) == 0 {
		return nil, ErrNoHealthy
	}

	x := d.roundRobinCounter.Add(1)
	idx := int((x - 1) % uint64(len(healthy)))

	return healthy[idx], nil
}

// Send delivers e, returning the last error when all attempts fail.
func (d *Dispatcher) Send(ctx context.Context, e model.Email) error {
	var last error
	for i := 0; i < d.maxAttempts; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		p, err := d.selectProvider()
		if err != nil {
			return err
		}

		if err := p.Send(ctx, e); err == nil {
			return nil
		} else {
			last = err
		}
	}

	if last == nil {
		last = errors.New("send email failed")
	}

	return last
}
