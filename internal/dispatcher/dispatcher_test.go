package dispatcher

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/jmehdipour/overdue-notifier/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct {
	name  string
	ready bool
	err   error
	calls int
}

func (s *stubProvider) Name() string { return s.name }
func (s *stubProvider) Ready() bool  { return s.ready }
func (s *stubProvider) Send(context.Context, model.Email) error {
	s.calls++
	return s.err
}

var email = model.Email{Author: "E42", Recipient: "m@x.com", Subject: "s", Body: "b"}

func TestDispatcherRoundRobin(t *testing.T) {
	a := &stubProvider{name: "a", ready: true}
	b := &stubProvider{name: "b", ready: true}
	d := NewDispatcher([]Provider{a, b}, 2)

	for i := 0; i < 4; i++ {
		require.NoError(t, d.Send(context.Background(), email))
	}

	assert.Equal(t, 2, a.calls)
	assert.Equal(t, 2, b.calls)
}

func TestDispatcherRetriesOnNextProvider(t *testing.T) {
	bad := &stubProvider{name: "bad", ready: true, err: errors.New("503")}
	good := &stubProvider{name: "good", ready: true}
	d := NewDispatcher([]Provider{bad, good}, 2)

	require.NoError(t, d.Send(context.Background(), email))
	assert.Equal(t, 1, bad.calls)
	assert.Equal(t, 1, good.calls)
}

func TestDispatcherStopsAtAttemptCap(t *testing.T) {
	bad := &stubProvider{name: "bad", ready: true, err: errors.New("503")}
	d := NewDispatcher([]Provider{bad}, 3)

	err := d.Send(context.Background(), email)
	assert.EqualError(t, err, "503")
	assert.Equal(t, 3, bad.calls)
}

func TestDispatcherSkipsUnhealthy(t *testing.T) {
	down := &stubProvider{name: "down", ready: false}
	up := &stubProvider{name: "up", ready: true}
	d := NewDispatcher([]Provider{down, up}, 1)

	require.NoError(t, d.Send(context.Background(), email))
	assert.Zero(t, down.calls)
	assert.Equal(t, 1, up.calls)

	none := NewDispatcher([]Provider{down}, 3)
	assert.ErrorIs(t, none.Send(context.Background(), email), ErrNoHealthy)
}

func TestDispatcherHonoursCancelledContext(t *testing.T) {
	p := &stubProvider{name: "p", ready: true}
	d := NewDispatcher([]Provider{p}, 3)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, d.Send(ctx, email), context.Canceled)
	assert.Zero(t, p.calls)
}

func TestHTTPProviderPostsJSON(t *testing.T) {
	var got model.Email
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/mail/send", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	p := NewHTTPProvider("primary", srv.URL, "/v1/mail/send", 1000, 3, 1000)
	require.NoError(t, p.Send(context.Background(), email))
	assert.Equal(t, email, got)
}

func TestHTTPProviderBreakerOpensAfterThreshold(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	p := NewHTTPProvider("flaky", srv.URL, "/send", 1000, 2, 60_000)

	for i := 0; i < 2; i++ {
		err := p.Send(context.Background(), email)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "status=502")
	}

	assert.False(t, p.Ready())
	err := p.Send(context.Background(), email)
	assert.ErrorIs(t, err, ErrNoAcquire)
	assert.Equal(t, int32(2), hits.Load())
}
