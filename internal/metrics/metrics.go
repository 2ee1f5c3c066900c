// Package metrics holds the prometheus collectors of the link service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "url_shortener"

// Metrics groups the collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	linksCreated    *prometheus.CounterVec
	codeCollisions  prometheus.Counter
	exhausted       prometheus.Counter
	textURLs        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		linksCreated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "links_created_total",
				Help:      "Number of links created.",
			},
			[]string{"code"},
		),
		codeCollisions: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "code_collisions_total",
				Help:      "Number of generated short codes that were already taken.",
			},
		),
		exhausted: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "code_generation_exhausted_total",
				Help:      "Number of creations that ran out of attempts.",
			},
		),
		textURLs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "text_urls_total",
				Help:      "URLs found in processed text, by outcome.",
			},
			[]string{"result"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency distributions.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route", "status"},
		),
	}

	reg.MustRegister(
		m.linksCreated,
		m.codeCollisions,
		m.exhausted,
		m.textURLs,
		m.requestDuration,
	)

	return m
}

// LinkCreated counts a created link. preferred tells whether the caller chose the code.
func (m *Metrics) LinkCreated(preferred bool) {
	if m == nil {
		return
	}
	label := "generated"
	if preferred {
		label = "preferred"
	}
	m.linksCreated.WithLabelValues(label).Inc()
}

func (m *Metrics) CodeCollision() {
	if m == nil {
		return
	}
	m.codeCollisions.Inc()
}

func (m *Metrics) GenerationExhausted() {
	if m == nil {
		return
	}
	m.exhausted.Inc()
}

// TextURL counts one URL found by the text processor.
func (m *Metrics) TextURL(shortened bool) {
	if m == nil {
		return
	}
	label := "shortened"
	if !shortened {
		label = "skipped"
	}
	m.textURLs.WithLabelValues(label).Inc()
}

// ObserveRequest records the duration of one HTTP request.
func (m *Metrics) ObserveRequest(method, route, status string, seconds float64) {
	if m == nil {
		return
	}
	m.requestDuration.WithLabelValues(method, route, status).Observe(seconds)
}
