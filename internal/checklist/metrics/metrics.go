// Package metrics provides Prometheus instrumentation for the checklist service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Refresh request outcomes.
const (
	RefreshQueued  = "queued"
	RefreshDropped = "dropped"
	RefreshSent    = "sent"
	RefreshFailed  = "failed"
)

// Metrics tracks toggles, backfills, refresh requests and directory latency.
type Metrics struct {
	Toggles              *prometheus.CounterVec
	EntriesBackfilled    prometheus.Counter
	RefreshRequests      *prometheus.CounterVec
	DirectoryListSeconds prometheus.Histogram
}

// New registers all checklist metrics on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Toggles: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "checklist_toggles_total",
			Help: "Checklist entry toggles by resulting state",
		}, []string{"state"}),
		EntriesBackfilled: factory.NewCounter(prometheus.CounterOpts{
			Name: "checklist_entries_backfilled_total",
			Help: "Checklist entries created by lazy backfill",
		}),
		RefreshRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "checklist_refresh_requests_total",
			Help: "Submission refresh requests by outcome",
		}, []string{"outcome"}),
		DirectoryListSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "checklist_directory_list_duration_seconds",
			Help:    "Duration of company directory listings",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

// ObserveToggle records a toggle that left the entry completed or not.
func (m *Metrics) ObserveToggle(completed bool) {
	state := "cleared"
	if completed {
		state = "completed"
	}
	m.Toggles.WithLabelValues(state).Inc()
}

func (m *Metrics) AddBackfilled(n int64) {
	if n > 0 {
		m.EntriesBackfilled.Add(float64(n))
	}
}

func (m *Metrics) ObserveRefresh(outcome string) {
	m.RefreshRequests.WithLabelValues(outcome).Inc()
}

// ObserveList records a directory listing. Call with time.Now() taken at the start.
func (m *Metrics) ObserveList(start time.Time) {
	m.DirectoryListSeconds.Observe(time.Since(start).Seconds())
}
