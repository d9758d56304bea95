// Package metrics exposes the Prometheus collectors for the service.
package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "quiniela",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "quiniela",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "quiniela",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "path"},
	)

	ticketsSold = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "quiniela",
			Subsystem: "tickets",
			Name:      "sold_total",
			Help:      "Total number of finalized tickets.",
		},
	)

	ticketsDeleted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "quiniela",
			Subsystem: "tickets",
			Name:      "deleted_total",
			Help:      "Total number of deleted tickets.",
		},
	)

	drawsGenerated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "quiniela",
			Subsystem: "draws",
			Name:      "generated_total",
			Help:      "Total number of draw result tables generated.",
		},
		[]string{"draw"},
	)

	salesAmount = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "quiniela",
			Subsystem: "tickets",
			Name:      "sales_amount_total",
			Help:      "Cumulative face value of finalized tickets.",
		},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		ticketsSold,
		ticketsDeleted,
		drawsGenerated,
		salesAmount,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered collectors.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// RecordTicketSold records a finalized ticket and its face value.
func RecordTicketSold(total float64) {
	ticketsSold.Inc()
	if total > 0 {
		salesAmount.Add(total)
	}
}

// RecordTicketDeleted records a hard delete.
func RecordTicketDeleted() {
	ticketsDeleted.Inc()
}

// RecordDrawGenerated records the creation of a draw's result table.
func RecordDrawGenerated(draw string) {
	drawsGenerated.WithLabelValues(draw).Inc()
}

// RecordHTTPRequest records one handled request.
func RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	method = strings.ToUpper(method)
	httpRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// IncInFlight marks a request as started.
func IncInFlight() { httpInFlight.Inc() }

// DecInFlight marks a request as finished.
func DecInFlight() { httpInFlight.Dec() }
