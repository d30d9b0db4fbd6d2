package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	EventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "onotify_events_total",
			Help: "Record events handled by the overdue balance hook, by outcome",
		},
		[]string{"outcome", "reason"}, // sent|skipped|failed , skip reason or ""
	)

	MailTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "onotify_mail_total",
			Help: "Notification email lifecycle counter by stage",
		},
		[]string{"stage"}, // queued|sent|failed
	)

	registerOnce sync.Once
)

// MustRegister registers the collectors once; serve and worker commands may both call it.
func MustRegister(r prometheus.Registerer) {
	registerOnce.Do(func() {
		r.MustRegister(
			EventsTotal,
			MailTotal,
		)
	})
}
