package httpapi

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// metrics is a private registry so several servers can coexist in one
// process.
type metrics struct {
	registry *prometheus.Registry

	requests     *prometheus.CounterVec
	duration     *prometheus.HistogramVec
	messagesSent prometheus.Counter
	registered   prometheus.Counter
	logins       *prometheus.CounterVec
}

func newMetrics() *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "defcomm",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route pattern and status code.",
		}, []string{"method", "route", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "defcomm",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route pattern.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		messagesSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "defcomm",
			Name:      "messages_sent_total",
			Help:      "Ciphertext messages accepted.",
		}),
		registered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "defcomm",
			Name:      "users_registered_total",
			Help:      "Accounts created through registration.",
		}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "defcomm",
			Name:      "logins_total",
			Help:      "Login attempts by outcome.",
		}, []string{"outcome"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests,
		m.duration,
		m.messagesSent,
		m.registered,
		m.logins,
	)
	return m
}

func (m *metrics) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
