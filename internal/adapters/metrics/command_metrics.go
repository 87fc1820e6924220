package metrics

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Request outcomes. A rejected request was handled without error but the
// farm refused it (full queue, missing input, nothing to cancel).
const (
	outcomeOK       = "ok"
	outcomeRejected = "rejected"
	outcomeError    = "error"
)

// CommandMetricsCollector tracks the mediator traffic reaching the farm
type CommandMetricsCollector struct {
	latency  *prometheus.HistogramVec
	handled  *prometheus.CounterVec
	inFlight prometheus.Gauge
}

func NewCommandMetricsCollector() *CommandMetricsCollector {
	return &CommandMetricsCollector{
		// Requests run on the simulation loop, so latency includes the
		// wait for the next free slot between ticks.
		latency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "request_latency_seconds",
				Help:      "Time from sending a farm request to its response",
				Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
			},
			[]string{"request", "kind"},
		),
		handled: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "requests_total",
				Help:      "Farm requests handled, by outcome",
			},
			[]string{"request", "kind", "outcome"},
		),
		inFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "requests_in_flight",
				Help:      "Farm requests waiting on or running in the simulation loop",
			},
		),
	}
}

func (c *CommandMetricsCollector) Register() error {
	return register(c.latency, c.handled, c.inFlight)
}

// Begin marks a request as in flight. The returned func records its
// outcome and must be called exactly once.
func (c *CommandMetricsCollector) Begin(request string) func(outcome string) {
	kind := requestKind(request)
	start := time.Now()
	c.inFlight.Inc()

	return func(outcome string) {
		c.inFlight.Dec()
		c.latency.WithLabelValues(request, kind).Observe(time.Since(start).Seconds())
		c.handled.WithLabelValues(request, kind, outcome).Inc()
	}
}

// requestKind splits reads from writes by the naming convention of the
// application layer
func requestKind(request string) string {
	if strings.HasSuffix(request, "Query") {
		return "query"
	}
	return "command"
}
