package dispatcher

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jmehdipour/overdue-notifier/internal/model"
	"github.com/sony/gobreaker"
)

// Provider is one outbound mail API.
type Provider interface {
	Name() string
	Ready() bool
	Send(ctx context.Context, e model.Email) error
}

// HTTPProvider POSTs emails as JSON to baseURL+sendPath behind a circuit breaker.
type HTTPProvider struct {
	name     string
	baseURL  string
	sendPath string
	client   *http.Client
	br       *gobreaker.CircuitBreaker
}

func NewHTTPProvider(name, baseURL, sendPath string, timeoutMs, failThreshold, openForMs int) *HTTPProvider {
	if timeoutMs <= 0 {
		timeoutMs = 3000
	}

	if failThreshold <= 0 {
		failThreshold = 3
	}

	if openForMs <= 0 {
		openForMs = 15000
	}

	threshold := uint32(failThreshold)
	br := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1, // single probe while half-open
		Timeout:     time.Duration(openForMs) * time.Millisecond,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= threshold
		},
	})

	return &HTTPProvider{
		name:     name,
		baseURL:  baseURL,
		sendPath: sendPath,
		client:   &http.Client{Timeout: time.Duration(timeoutMs) * time.Millisecond},
		br:       br,
	}
}

func (p *HTTPProvider) Name() string { return p.name }

// Ready is false while the breaker is open.
func (p *HTTPProvider) Ready() bool { return p.br.State() != gobreaker.StateOpen }

func (p *HTTPProvider) Send(ctx context.Context, e model.Email) error {
	_, err := p.br.Execute(func() (interface{}, error) {
		return nil, p.post(ctx, e)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("provider=%s: %w", p.name, ErrNoAcquire)
	}
	return err
}

func (p *HTTPProvider) post(ctx context.Context, e model.Email) error {
	b, err := json.Marshal(e)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+p.sendPath, bytes.NewReader(b))
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json")

	res, err := p.client.Do(req)
	if err != nil {
		return err
	}

	defer res.Body.Close()

	if res.StatusCode/100 != 2 {
		return fmt.Errorf("provider=%s path=%s status=%d", p.name, p.sendPath, res.StatusCode)
	}

	return nil
}
