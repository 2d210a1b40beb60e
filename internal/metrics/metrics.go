// Package metrics exposes Prometheus counters for hunt activity.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors registered for one server instance
type Metrics struct {
	registry    *prometheus.Registry
	submissions *prometheus.CounterVec
	responses   *prometheus.CounterVec
	resets      *prometheus.CounterVec
	visitors    prometheus.Counter
}

// New creates the collectors on a fresh registry
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "scavenger",
			Name:      "fourbyfour_submissions_total",
			Help:      "FourByFour selection submissions by puzzle and outcome.",
		}, []string{"puzzle", "outcome"}),
		responses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "scavenger",
			Name:      "responses_total",
			Help:      "Recorded puzzle responses by puzzle and correctness.",
		}, []string{"puzzle", "correct"}),
		resets: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "scavenger",
			Name:      "puzzle_resets_total",
			Help:      "Puzzle state resets requested by visitors.",
		}, []string{"puzzle"}),
		visitors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "scavenger",
			Name:      "visitors_registered_total",
			Help:      "Visitors registered from the pool.",
		}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.submissions,
		m.responses,
		m.resets,
		m.visitors,
	)
	return m
}

// Registry returns the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveSubmission counts a FourByFour submission
func (m *Metrics) ObserveSubmission(puzzle, outcome string) {
	if m == nil {
		return
	}
	m.submissions.WithLabelValues(puzzle, outcome).Inc()
}

// ObserveResponse counts a recorded response
func (m *Metrics) ObserveResponse(puzzle string, correct bool) {
	if m == nil {
		return
	}
	label := "false"
	if correct {
		label = "true"
	}
	m.responses.WithLabelValues(puzzle, label).Inc()
}

// ObserveReset counts a puzzle reset
func (m *Metrics) ObserveReset(puzzle string) {
	if m == nil {
		return
	}
	m.resets.WithLabelValues(puzzle).Inc()
}

// ObserveRegistration counts a new visitor
func (m *Metrics) ObserveRegistration() {
	if m == nil {
		return
	}
	m.visitors.Inc()
}
