// Package sim implements the simulation driver: it wires a parsed
// topology and workload into a live medium.Network, runs the tick loop
// to termination, and produces the run's metrics report.
package sim

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/trevorKirkby/network-routing-simulation/internal/medium"
	"github.com/trevorKirkby/network-routing-simulation/internal/metrics"
	"github.com/trevorKirkby/network-routing-simulation/internal/noise"
	"github.com/trevorKirkby/network-routing-simulation/internal/packet"
	"github.com/trevorKirkby/network-routing-simulation/internal/router"
	"github.com/trevorKirkby/network-routing-simulation/internal/scenario"
	"github.com/trevorKirkby/network-routing-simulation/internal/topology"
)

// Options describes one simulation run.
type Options struct {
	Topology topology.Topology
	Workload []topology.WorkloadEntry

	// Algorithm is the single routing-protocol variant every
	// router-flagged medium in Topology is constructed with. A topology
	// row never names its own algorithm (spec.md §6); the run does.
	Algorithm router.Name

	Scenario      scenario.Name
	Ticks         int
	Hurst         float64
	RateDeviation float64
	Seed          int64
	QueueCap      int

	// Collector, if non-nil, is live-instrumented as the run proceeds.
	// The stdout report (see Result.Report) is produced regardless.
	Collector *metrics.Collector

	// Logger, if nil, discards every log line.
	Logger *slog.Logger
}

// Result is the outcome of a completed simulation run.
type Result struct {
	Algorithm string
	Ticks     int // ticks actually executed, <= Options.Ticks
	Report    metrics.Report
	Packets   []*packet.Packet // every workload packet injected this run
}

// seed component tags, mixed into the per-medium derived seed so that
// throughput noise, drop noise, transit-loss RNG, and protocol RNG never
// share a stream even for the same medium id.
const (
	componentThroughputNoise = 1
	componentDropNoise       = 2
	componentLossRNG         = 3
	componentProtocolRNG     = 4
	componentScenarioRNG     = 5
)

// deriveSeed mixes the run seed, a medium id, and a component tag into a
// single independent seed. Distinct (id, component) pairs never collide
// for any seed in the int64 range actually used by CLI/config (small
// positive integers), which is all the determinism contract (spec §8)
// requires.
func deriveSeed(base int64, id int, component int64) int64 {
	return base*1_000_003 + int64(id)*97 + component
}

// Run executes one simulation to termination (or until Options.Ticks is
// exhausted) and returns its metrics report. ctx cancellation is checked
// once per tick. The report is built from the injected workload packets
// only; control packets are not collected, so its LossRate equals its
// DataLossRate.
func Run(ctx context.Context, opts Options) (Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	net, err := buildNetwork(opts, logger)
	if err != nil {
		return Result{}, err
	}

	scen, err := scenario.New(opts.Scenario, net, opts.Ticks, deriveSeed(opts.Seed, 0, componentScenarioRNG))
	if err != nil {
		return Result{}, fmt.Errorf("sim: %w", err)
	}

	algorithm := string(opts.Algorithm)
	workload := opts.Workload
	packets := make([]*packet.Packet, 0, len(workload))

	idx := 0
	executed := 0

	for t := 0; t < opts.Ticks; t++ {
		select {
		case <-ctx.Done():
			return Result{}, ctx.Err()
		default:
		}

		for idx < len(workload) && workload[idx].Tick == t {
			entry := workload[idx]
			idx++

			src, ok := net.Lookup(entry.Source)
			if !ok {
				return Result{}, fmt.Errorf("sim: workload tick %d: unknown source medium %d", entry.Tick, entry.Source)
			}
			p := packet.New(entry.Source, entry.Dest, entry.ByteSize)
			p.TimeSent = t
			packets = append(packets, p)
			src.Receive(net, p, medium.NoUpstream)
		}

		for _, m := range net.Media() {
			m.Tick(net, t)
		}

		scen.Tick(net, t)
		executed = t + 1

		if opts.Collector != nil {
			instrument(opts.Collector, net, algorithm)
		}

		if idx >= len(workload) && networkIdle(net) {
			break
		}
	}

	return Result{
		Algorithm: algorithm,
		Ticks:     executed,
		Report:    metrics.BuildReport(packets, executed),
		Packets:   packets,
	}, nil
}

// buildNetwork constructs every medium named by opts.Topology (pass 1),
// then wires the bidirectional connections named by its inline edges
// (pass 2), matching spec.md §4.8's two-pass construction.
func buildNetwork(opts Options, logger *slog.Logger) (*medium.Network, error) {
	oracle := noise.New(opts.Hurst)
	net := medium.NewNetwork()

	for _, spec := range opts.Topology.Media {
		throughput := scaleRate(spec.ByteRate, opts.RateDeviation,
			oracle.Sample(deriveSeed(opts.Seed, spec.ID, componentThroughputNoise), opts.Ticks))
		drop := scaleUnitRate(spec.DropRate, opts.RateDeviation,
			oracle.Sample(deriveSeed(opts.Seed, spec.ID, componentDropNoise), opts.Ticks))

		var logic medium.RouterLogic
		if spec.IsRouter() {
			var err error
			logic, err = router.New(opts.Algorithm, spec.ID, deriveSeed(opts.Seed, spec.ID, componentProtocolRNG), opts.QueueCap, logger)
			if err != nil {
				return nil, fmt.Errorf("sim: medium %d: %w", spec.ID, err)
			}
		}

		m := medium.New(
			spec.ID, spec.Pathways, spec.Overhead,
			spec.ByteRate, spec.DropRate,
			throughput, drop,
			deriveSeed(opts.Seed, spec.ID, componentLossRNG),
			logic, logger,
		)
		net.Add(m)
	}

	// A link medium is itself a degree-2 node in the graph: its own
	// Connections become its two declared endpoints, and each endpoint
	// gains the link's id as one of its own connections (spec.md §4.8).
	for _, e := range opts.Topology.Edges {
		link, ok := net.Lookup(e.Link)
		if !ok {
			return nil, fmt.Errorf("sim: edge [%d %d]: unknown link medium %d", e.A, e.B, e.Link)
		}
		a, ok := net.Lookup(e.A)
		if !ok {
			return nil, fmt.Errorf("sim: edge [%d %d]: unknown medium %d", e.A, e.B, e.A)
		}
		b, ok := net.Lookup(e.B)
		if !ok {
			return nil, fmt.Errorf("sim: edge [%d %d]: unknown medium %d", e.A, e.B, e.B)
		}
		link.Connections = append(link.Connections, a.ID, b.ID)
		a.Connections = append(a.Connections, link.ID)
		b.Connections = append(b.Connections, link.ID)
	}

	if opts.Collector != nil {
		for _, m := range net.Media() {
			m.SetOnDrop(func(reason string) { opts.Collector.IncDrop(reason) })
		}
	}

	return net, nil
}

// scaleRate perturbs a nominal positive rate (throughput) around its
// mean by deviation*noise[t], floored at zero: noise has unit standard
// deviation and is clamped to [-3, 3] (noise.Oracle's normalization), so
// deviation is the fraction of the nominal rate a one-standard-deviation
// sample swings it by, and a sample at the clamp swings it by three
// times that.
func scaleRate(nominal, deviation float64, noiseSamples []float64) []float64 {
	out := make([]float64, len(noiseSamples))
	for i, n := range noiseSamples {
		v := nominal * (1 + deviation*n)
		if v < 0 {
			v = 0
		}
		out[i] = v
	}
	return out
}

// scaleUnitRate is scaleRate additionally clamped to [0, 1], for
// probabilities (drop rate).
func scaleUnitRate(nominal, deviation float64, noiseSamples []float64) []float64 {
	out := scaleRate(nominal, deviation, noiseSamples)
	for i, v := range out {
		if v > 1 {
			out[i] = 1
		}
	}
	return out
}

// networkIdle reports whether every medium has drained: no packet in
// transit, and no router holding anything in its protocol buffers. Used
// by the termination check alongside "every workload packet injected",
// per spec.md §4.8.
func networkIdle(net *medium.Network) bool {
	for _, m := range net.Media() {
		if len(m.InTransit) > 0 {
			return false
		}
		if m.CountBuffers() > 0 {
			return false
		}
	}
	return true
}

// instrument updates the live Prometheus gauges after a tick: in-flight
// packet count and per-router queue depth.
func instrument(c *metrics.Collector, net *medium.Network, algorithm string) {
	inFlight := 0
	for _, m := range net.Media() {
		inFlight += len(m.InTransit) + m.CountBuffers()
		if m.IsRouter() {
			c.SetQueueDepth(m.ID, m.CountBuffers())
		}
	}
	c.SetPacketsInFlight(algorithm, inFlight)
	c.IncTick(algorithm)
}
