package notifier

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jmehdipour/overdue-notifier/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newTestHook(f *fixture) (*Hook, *recordingSink) {
	sink := &recordingSink{}
	h := NewHook(f.n, sink, zap.NewNop())
	h.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	return h, sink
}

func TestHookRecordsSuccessDiagnostic(t *testing.T) {
	f := newFixture()
	h, sink := newTestHook(f)

	out := h.AfterSubmit(context.Background(), orderCreated("ev-1", "O900", "C001"))

	assert.Equal(t, StatusSent, out.Status)
	require.Len(t, sink.got, 1)
	d := sink.got[0]
	assert.Equal(t, model.LevelDebug, d.Level)
	assert.Equal(t, TitleSent, d.Title)
	assert.Equal(t, "Overdue balance alert email sent to m@x.com", d.Detail)
	assert.Equal(t, "ev-1", d.EventID)
	assert.NotEmpty(t, d.ID)
	assert.Equal(t, time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC), d.At)
}

func TestHookSkipsRecordNoDiagnostic(t *testing.T) {
	f := newFixture()
	h, sink := newTestHook(f)

	h.AfterSubmit(context.Background(), orderCreated("ev-2", "O901", "C002"))
	h.AfterSubmit(context.Background(), model.RecordEvent{Type: model.EventEdit})

	assert.Empty(t, sink.got)
	assert.Empty(t, f.mailer.sent)
}

func TestHookRecordsExactlyOneFailureDiagnostic(t *testing.T) {
	boom := errors.New("SSS_RECORD_NOT_FOUND")

	inject := map[string]func(f *fixture){
		"fetch": func(f *fixture) { f.customers.err = boom },
		"query": func(f *fixture) { f.supervisors.err = boom },
		"send":  func(f *fixture) { f.mailer.err = boom },
		"panic": func(f *fixture) { f.supervisors.panic = true },
	}

	for name, mutate := range inject {
		t.Run(name, func(t *testing.T) {
			f := newFixture()
			mutate(f)
			h, sink := newTestHook(f)

			var out Outcome
			assert.NotPanics(t, func() {
				out = h.AfterSubmit(context.Background(), orderCreated("ev-3", "O902", "C001"))
			})

			assert.Equal(t, StatusFailed, out.Status)
			require.Len(t, sink.got, 1)
			assert.Equal(t, model.LevelError, sink.got[0].Level)
			assert.Equal(t, "Error Sending Overdue Balance Alert", sink.got[0].Title)
			assert.Equal(t, out.Err.Error(), sink.got[0].Detail)
			assert.Empty(t, f.mailer.sent)
		})
	}
}

func TestHookPanicDetail(t *testing.T) {
	f := newFixture()
	f.supervisors.panic = true
	h, sink := newTestHook(f)

	h.AfterSubmit(context.Background(), orderCreated("ev", "O1", "C001"))

	require.Len(t, sink.got, 1)
	assert.Equal(t, "hook: panic: search service exploded", sink.got[0].Detail)
}

func TestZapSinkLevels(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	s := ZapSink{Log: zap.New(core)}

	s.Record(context.Background(), model.Diagnostic{ID: "d1", Level: model.LevelError, Title: TitleFailed, Detail: "x", EventID: "ev"})
	s.Record(context.Background(), model.Diagnostic{ID: "d2", Level: model.LevelDebug, Title: TitleSent, Detail: "y"})

	entries := logs.AllUntimed()
	require.Len(t, entries, 2)

	assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
	assert.Equal(t, TitleFailed, entries[0].Message)
	assert.Equal(t, "x", entries[0].ContextMap()["detail"])
	assert.Equal(t, "ev", entries[0].ContextMap()["event_id"])

	assert.Equal(t, zapcore.DebugLevel, entries[1].Level)
	_, hasEvent := entries[1].ContextMap()["event_id"]
	assert.False(t, hasEvent)
}

type failingDiagnostics struct{ calls int }

func (f *failingDiagnostics) InsertBatch(context.Context, []model.Diagnostic) error {
	f.calls++
	return errors.New("clickhouse down")
}

func (f *failingDiagnostics) List(context.Context, model.DiagnosticLevel, int, int) ([]model.Diagnostic, error) {
	return nil, nil
}

func TestTeeContinuesPastFailingStore(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := zap.New(core)
	repo := &failingDiagnostics{}
	rec := &recordingSink{}

	sink := Tee{StoreSink{Repo: repo, Log: log}, rec}
	sink.Record(context.Background(), model.Diagnostic{ID: "d1", Level: model.LevelError, Title: TitleFailed})

	assert.Equal(t, 1, repo.calls)
	assert.Len(t, rec.got, 1)
	assert.Equal(t, 1, logs.FilterMessage("diagnostic store write failed").Len())
}
