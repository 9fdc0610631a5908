// Package medium implements the simulation substrate shared by every
// routing protocol: hosts, routers, and physical links are all a Medium,
// ticked once per simulated time step, carrying packets that drain at a
// stochastic, time-varying rate.
package medium

import (
	"log/slog"
	"math/rand"

	"github.com/trevorKirkby/network-routing-simulation/internal/packet"
)

// TransitEntry is one packet currently being serviced by a Medium: the
// packet itself, the neighbor it arrived from (or NoUpstream), and the
// service work remaining before it finishes transiting this medium.
type TransitEntry struct {
	Packet    *packet.Packet
	Upstream  int
	Remaining float64
}

// NoUpstream marks a packet with no originating neighbor (freshly
// injected workload, or locally generated control traffic).
const NoUpstream = -1

// RouterLogic is the capability set a routing-protocol variant plugs
// into a Medium. The zero value of Medium (Logic == nil) behaves like a
// passive physical link: it drops on overflow and broadcasts to every
// neighbor except the upstream sender.
type RouterLogic interface {
	// AdmitClear decides whether an incoming packet proceeds to
	// queueing admission, or is silently discarded before that (loop
	// suppression / flood deduplication). Most protocols always return
	// true; AODV and the flooding broadcaster override this to drop
	// already-seen traffic without logging it as an error.
	AdmitClear(net *Network, m *Medium, p *packet.Packet, upstream int) bool

	// ReceiveFull handles a packet that arrived while every pathway was
	// already occupied. Protocol variants buffer it; the base Medium
	// (Logic == nil) drops it instead.
	ReceiveFull(net *Network, m *Medium, p *packet.Packet, upstream int)

	// Process handles a packet whose service time has just elapsed.
	Process(net *Network, m *Medium, p *packet.Packet, upstream int, tick int)

	// Tick performs this protocol's periodic bookkeeping (queue drains,
	// hello/keepalive emission, route or neighbor expiry) once per
	// medium per simulated tick, after the base service accounting.
	Tick(net *Network, m *Medium, tick int)

	// CountBuffers returns the number of queued workload (non-control)
	// packets this protocol is currently holding, for backpressure
	// metrics and the driver's termination check.
	CountBuffers() int
}

// Medium is a generic transport element: a host, router, or physical
// link. Routers are Media with a non-nil Logic implementing a specific
// routing protocol; everything else behaves as a passive physical link.
type Medium struct {
	ID int

	// Pathways is the number of concurrent service slots.
	Pathways int

	// Overhead is the fixed per-packet service cost, in the same units
	// as ByteRate, charged once per traversal.
	Overhead int

	// ByteRate is the mean service rate, split evenly across active
	// pathways each tick.
	ByteRate float64

	// DropRate is the mean per-traversal loss probability for workload
	// packets.
	DropRate float64

	// Operational gates ticking entirely; a disrupted medium does not
	// advance any in-flight packet until re-enabled.
	Operational bool

	// Logic is nil for a physical link, or the protocol implementation
	// for a router.
	Logic RouterLogic

	// Connections lists neighbor medium ids in a fixed, deterministic
	// order (tie-break order for broadcast/flood fan-out).
	Connections []int

	// InTransit holds packets currently being serviced.
	InTransit []TransitEntry

	// Throughput and Drop are precomputed, per-tick perturbed rates
	// (length >= the simulation's tick limit), deterministic given the
	// medium's (id, seed).
	Throughput []float64
	Drop       []float64

	logger  *slog.Logger
	lossRNG *rand.Rand
	onDrop  func(reason string)
}

// SetOnDrop registers a callback invoked whenever DropPacket permanently
// discards a workload packet, for live metrics instrumentation. nil
// disables the callback.
func (m *Medium) SetOnDrop(fn func(reason string)) {
	m.onDrop = fn
}

// New constructs a Medium. throughput and drop must already be
// perturbed, non-negative sequences of at least the simulation's tick
// limit, generated once by the driver's noise.Oracle. logic is nil for a
// plain physical link.
func New(
	id, pathways, overhead int,
	byteRate, dropRate float64,
	throughput, drop []float64,
	lossSeed int64,
	logic RouterLogic,
	logger *slog.Logger,
) *Medium {
	return &Medium{
		ID:          id,
		Pathways:    pathways,
		Overhead:    overhead,
		ByteRate:    byteRate,
		DropRate:    dropRate,
		Operational: true,
		Logic:       logic,
		Throughput:  throughput,
		Drop:        drop,
		logger:      logger,
		lossRNG:     rand.New(rand.NewSource(lossSeed)), //nolint:gosec // reproducibility, not security.
	}
}

// IsRouter reports whether this medium owns routing-protocol logic, i.e.
// spec's "logic" field.
func (m *Medium) IsRouter() bool {
	return m.Logic != nil
}

// CanAcceptImmediately reports whether target has a free pathway right
// now, or is a router (routers buffer rather than reject, so sends to
// them never need to wait on a free pathway). Every router variant's
// "send" helper is built on this check.
func CanAcceptImmediately(target *Medium) bool {
	return len(target.InTransit) < target.Pathways || target.IsRouter()
}

// Receive admits packet p arriving from upstream (NoUpstream if none).
// If a pathway is free, it proceeds to queueing admission (ReceiveClear);
// otherwise it is handed to ReceiveFull (buffered by routers, dropped by
// plain links).
func (m *Medium) Receive(net *Network, p *packet.Packet, upstream int) {
	if len(m.InTransit) < m.Pathways {
		m.ReceiveClear(net, p, upstream)
		return
	}
	if m.Logic != nil {
		m.Logic.ReceiveFull(net, m, p, upstream)
		return
	}
	m.DropPacket(p, "medium is full")
}

// ReceiveClear admits a packet into service. If Logic is set, it first
// gets a chance to silently discard the packet (AdmitClear) for loop
// suppression or deduplication before the packet is actually queued.
func (m *Medium) ReceiveClear(net *Network, p *packet.Packet, upstream int) {
	if m.Logic != nil && !m.Logic.AdmitClear(net, m, p, upstream) {
		return
	}
	m.InTransit = append(m.InTransit, TransitEntry{
		Packet:    p,
		Upstream:  upstream,
		Remaining: float64(p.ByteSize) + float64(m.Overhead)*m.ByteRate,
	})
}

// Tick advances the medium by one simulated time step: drains service
// time from every in-flight packet at a fair per-pathway share of
// Throughput[t], applies random transit loss to finished workload
// packets, marks arrivals, and hands every finished packet to Process.
// Then, if this medium is a router, its protocol's periodic Tick runs.
//
// A disrupted (non-Operational) medium does not advance at all: its
// in-flight packets are frozen until it is re-enabled or the simulation
// ends.
func (m *Medium) Tick(net *Network, t int) {
	if !m.Operational {
		return
	}

	n := len(m.InTransit)
	if n > 0 {
		rate := m.Throughput[t]
		share := rate / float64(n)
		kept := make([]TransitEntry, 0, n)

		for _, entry := range m.InTransit {
			entry.Remaining -= share
			if entry.Remaining > 0 {
				kept = append(kept, entry)
				continue
			}

			p := entry.Packet
			if !p.IsControl() && m.lossRNG.Float64() < m.Drop[t] {
				m.DropPacket(p, "random loss")
				continue
			}
			if p.Dest == m.ID {
				p.TimeArrived = t
			}
			m.process(net, p, entry.Upstream, t)
		}

		m.InTransit = kept
	}

	if m.Logic != nil {
		m.Logic.Tick(net, m, t)
	}
}

// process dispatches a packet whose service has finished to the
// protocol's Process implementation, or to the default link broadcast
// behavior if this medium has no logic.
func (m *Medium) process(net *Network, p *packet.Packet, upstream int, t int) {
	if m.Logic != nil {
		m.Logic.Process(net, m, p, upstream, t)
		return
	}
	m.broadcastExcept(net, p, upstream)
}

// broadcastExcept is the default physical-link behavior: forward to
// every connection except the upstream sender. Packets already at their
// destination are not re-forwarded.
func (m *Medium) broadcastExcept(net *Network, p *packet.Packet, upstream int) {
	if p.Dest == m.ID {
		return
	}
	for _, id := range m.Connections {
		if id == upstream {
			continue
		}
		if neighbor, ok := net.Lookup(id); ok {
			neighbor.Receive(net, p, m.ID)
		}
	}
}

// DropPacket marks p as permanently lost. Only workload (non-control)
// drops are logged, matching the original simulator's accounting: control
// traffic loss is routine protocol churn, not a reportable event.
func (m *Medium) DropPacket(p *packet.Packet, reason string) {
	p.TimeArrived = packet.Unset
	if p.IsControl() {
		return
	}
	if m.logger != nil {
		m.logger.Debug("packet dropped",
			slog.Int("medium_id", m.ID),
			slog.Int("source", p.Source),
			slog.Int("dest", p.Dest),
			slog.String("reason", reason),
		)
	}
	if m.onDrop != nil {
		m.onDrop(reason)
	}
}

// CountBuffers returns the total number of workload packets queued
// anywhere in this medium's protocol buffers. Plain links never buffer.
func (m *Medium) CountBuffers() int {
	if m.Logic == nil {
		return 0
	}
	return m.Logic.CountBuffers()
}

// Logger returns the medium's structured logger, for use by RouterLogic
// implementations that want to log protocol events (route discovery,
// neighbor expiry, and so on) with consistent fields.
func (m *Medium) Logger() *slog.Logger {
	return m.logger
}
