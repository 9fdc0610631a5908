package metrics_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/trevorKirkby/network-routing-simulation/internal/metrics"
)

func TestNewCollector(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	c := metrics.NewCollector(reg)

	if c.PacketsInFlight == nil {
		t.Error("PacketsInFlight is nil")
	}
	if c.QueueDepth == nil {
		t.Error("QueueDepth is nil")
	}
	if c.Drops == nil {
		t.Error("Drops is nil")
	}
	if c.StateTransitions == nil {
		t.Error("StateTransitions is nil")
	}
	if c.TicksExecuted == nil {
		t.Error("TicksExecuted is nil")
	}

	if _, err := reg.Gather(); err != nil {
		t.Fatalf("Gather() error: %v", err)
	}
}

func TestPacketsInFlight(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	c := metrics.NewCollector(reg)

	c.SetPacketsInFlight("aodv", 7)

	if got := gaugeValue(t, c.PacketsInFlight, "aodv"); got != 7 {
		t.Errorf("PacketsInFlight = %v, want 7", got)
	}

	c.SetPacketsInFlight("aodv", 3)
	if got := gaugeValue(t, c.PacketsInFlight, "aodv"); got != 3 {
		t.Errorf("PacketsInFlight after update = %v, want 3", got)
	}
}

func TestQueueDepth(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	c := metrics.NewCollector(reg)

	c.SetQueueDepth(4, 12)

	if got := gaugeValue(t, c.QueueDepth, "4"); got != 12 {
		t.Errorf("QueueDepth = %v, want 12", got)
	}
}

func TestDrops(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	c := metrics.NewCollector(reg)

	c.IncDrop("medium is full")
	c.IncDrop("medium is full")
	c.IncDrop("random loss")

	if got := counterValue(t, c.Drops, "medium is full"); got != 2 {
		t.Errorf("Drops(medium is full) = %v, want 2", got)
	}
	if got := counterValue(t, c.Drops, "random loss"); got != 1 {
		t.Errorf("Drops(random loss) = %v, want 1", got)
	}
}

func TestStateTransitions(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	c := metrics.NewCollector(reg)

	c.RecordStateTransition("aodv", "unknown", "active")
	c.RecordStateTransition("aodv", "unknown", "active")

	if got := counterValue(t, c.StateTransitions, "aodv", "unknown", "active"); got != 2 {
		t.Errorf("StateTransitions = %v, want 2", got)
	}
}

func TestTicksExecuted(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	c := metrics.NewCollector(reg)

	c.IncTick("bgp_lite")
	c.IncTick("bgp_lite")
	c.IncTick("bgp_lite")

	if got := counterValue(t, c.TicksExecuted, "bgp_lite"); got != 3 {
		t.Errorf("TicksExecuted = %v, want 3", got)
	}
}

// -------------------------------------------------------------------------
// Helpers
// -------------------------------------------------------------------------

func gaugeValue(t *testing.T, vec *prometheus.GaugeVec, labels ...string) float64 {
	t.Helper()

	gauge, err := vec.GetMetricWithLabelValues(labels...)
	if err != nil {
		t.Fatalf("GetMetricWithLabelValues(%v): %v", labels, err)
	}

	m := &dto.Metric{}
	if err := gauge.Write(m); err != nil {
		t.Fatalf("Write metric: %v", err)
	}

	return m.GetGauge().GetValue()
}

func counterValue(t *testing.T, vec *prometheus.CounterVec, labels ...string) float64 {
	t.Helper()

	counter, err := vec.GetMetricWithLabelValues(labels...)
	if err != nil {
		t.Fatalf("GetMetricWithLabelValues(%v): %v", labels, err)
	}

	m := &dto.Metric{}
	if err := counter.Write(m); err != nil {
		t.Fatalf("Write metric: %v", err)
	}

	return m.GetCounter().GetValue()
}
