package obs

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"stayhost/internal/domain/rooms"
)

// Metrics groups the service collectors on a private registry.
type Metrics struct {
	Registry        *prometheus.Registry
	HTTPRequests    *prometheus.CounterVec
	HTTPDuration    *prometheus.HistogramVec
	Commands        *prometheus.CounterVec
	CommandDuration *prometheus.HistogramVec
	Queries         *prometheus.CounterVec
	Published       *prometheus.CounterVec
	Bookings        *prometheus.CounterVec
	NightsResolved  prometheus.Histogram
	PanicsRecovered prometheus.Counter
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)
	return &Metrics{
		Registry: reg,
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "stayhost_http_requests_total",
			Help: "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		HTTPDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "stayhost_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.3, 1, 3},
		}, []string{"method", "route"}),
		Commands: f.NewCounterVec(prometheus.CounterOpts{
			Name: "stayhost_commands_total",
			Help: "Dispatched commands by key and outcome.",
		}, []string{"command", "outcome"}),
		CommandDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "stayhost_command_duration_seconds",
			Help:    "Command handling latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"command"}),
		Queries: f.NewCounterVec(prometheus.CounterOpts{
			Name: "stayhost_queries_total",
			Help: "Answered queries by key and outcome.",
		}, []string{"query", "outcome"}),
		Published: f.NewCounterVec(prometheus.CounterOpts{
			Name: "stayhost_outbox_published_total",
			Help: "Outbox publish attempts by topic and outcome.",
		}, []string{"topic", "outcome"}),
		Bookings: f.NewCounterVec(prometheus.CounterOpts{
			Name: "stayhost_booking_events_total",
			Help: "Consumed booking events by outcome.",
		}, []string{"outcome"}),
		NightsResolved: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "stayhost_resolved_nights",
			Help:    "Nights per resolved range.",
			Buckets: []float64{1, 3, 7, 14, 31, 62, 92, 183, 366},
		}),
		PanicsRecovered: f.NewCounter(prometheus.CounterOpts{
			Name: "stayhost_http_panics_recovered_total",
			Help: "HTTP requests recovered from a panic.",
		}),
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

func (m *Metrics) ObserveHTTP(method, route, status string, elapsed time.Duration) {
	m.HTTPRequests.WithLabelValues(method, route, status).Inc()
	m.HTTPDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveCommand(key string, elapsed time.Duration, err error) {
	m.Commands.WithLabelValues(key, Outcome(err)).Inc()
	m.CommandDuration.WithLabelValues(key).Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveQuery(key string, _ time.Duration, err error) {
	m.Queries.WithLabelValues(key, Outcome(err)).Inc()
}

func (m *Metrics) ObservePublish(topic string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.Published.WithLabelValues(topic, outcome).Inc()
}

func (m *Metrics) ObserveNights(n int) {
	m.NightsResolved.Observe(float64(n))
}

func (m *Metrics) ObserveBookingEvent(outcome string) {
	m.Bookings.WithLabelValues(outcome).Inc()
}

// Outcome buckets an error by its domain kind.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, rooms.ErrInvalidRange), errors.Is(err, rooms.ErrInvalid):
		return "invalid"
	case errors.Is(err, rooms.ErrNotFound):
		return "not_found"
	case errors.Is(err, rooms.ErrConflict):
		return "conflict"
	case errors.Is(err, rooms.ErrForbidden):
		return "forbidden"
	default:
		return "error"
	}
}
