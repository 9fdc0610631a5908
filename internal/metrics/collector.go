// Package metrics instruments a running simulation with Prometheus
// metrics and produces the final human-readable report printed to
// stdout at the end of every run.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "netsim"

// Label names used across netsim metrics.
const (
	labelAlgorithm = "algorithm"
	labelReason    = "reason"
	labelFromState = "from_state"
	labelToState   = "to_state"
)

// Collector holds every Prometheus metric the simulation driver
// instruments as it runs. Unlike the stdout report (see report.go),
// these are live gauges/counters meant to be scraped during a long
// sweep via netsim run --metrics-addr.
type Collector struct {
	// PacketsInFlight tracks packets currently in transit or buffered
	// anywhere in the network, per algorithm.
	PacketsInFlight *prometheus.GaugeVec

	// QueueDepth tracks the number of workload packets queued inside a
	// single medium's protocol buffers, per medium id.
	QueueDepth *prometheus.GaugeVec

	// Drops counts packets permanently lost, labeled by reason (medium
	// full, random loss, routing queue full, no route, ...).
	Drops *prometheus.CounterVec

	// StateTransitions counts routing-protocol state changes a variant
	// chooses to report (e.g. AODV route discovered/expired, BGP-lite
	// neighbor up/down), labeled by algorithm and from/to state.
	StateTransitions *prometheus.CounterVec

	// TicksExecuted counts simulated time steps advanced, per
	// algorithm, so a scraped series shows run progress.
	TicksExecuted *prometheus.CounterVec
}

// NewCollector creates a Collector with every netsim metric registered
// against reg. If reg is nil, prometheus.DefaultRegisterer is used.
func NewCollector(reg prometheus.Registerer) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	c := newMetrics()

	reg.MustRegister(
		c.PacketsInFlight,
		c.QueueDepth,
		c.Drops,
		c.StateTransitions,
		c.TicksExecuted,
	)

	return c
}

// newMetrics creates all Prometheus metric vectors without registering them.
func newMetrics() *Collector {
	return &Collector{
		PacketsInFlight: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "packets_in_flight",
			Help:      "Packets currently in transit or buffered, per algorithm.",
		}, []string{labelAlgorithm}),

		QueueDepth: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "queue_depth",
			Help:      "Workload packets queued in a medium's protocol buffers.",
		}, []string{"medium_id"}),

		Drops: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "drops_total",
			Help:      "Total packets permanently lost, by reason.",
		}, []string{labelReason}),

		StateTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "state_transitions_total",
			Help:      "Total routing-protocol state transitions.",
		}, []string{labelAlgorithm, labelFromState, labelToState}),

		TicksExecuted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ticks_executed_total",
			Help:      "Total simulated time steps advanced.",
		}, []string{labelAlgorithm}),
	}
}

// SetPacketsInFlight records the current in-flight packet count for
// algorithm.
func (c *Collector) SetPacketsInFlight(algorithm string, n int) {
	c.PacketsInFlight.WithLabelValues(algorithm).Set(float64(n))
}

// SetQueueDepth records the current buffered workload depth for a single
// medium id.
func (c *Collector) SetQueueDepth(mediumID int, n int) {
	c.QueueDepth.WithLabelValues(strconv.Itoa(mediumID)).Set(float64(n))
}

// IncDrop increments the drop counter for reason.
func (c *Collector) IncDrop(reason string) {
	c.Drops.WithLabelValues(reason).Inc()
}

// RecordStateTransition increments the transition counter for a
// protocol's from->to state change.
func (c *Collector) RecordStateTransition(algorithm, from, to string) {
	c.StateTransitions.WithLabelValues(algorithm, from, to).Inc()
}

// IncTick increments the ticks-executed counter for algorithm.
func (c *Collector) IncTick(algorithm string) {
	c.TicksExecuted.WithLabelValues(algorithm).Inc()
}
