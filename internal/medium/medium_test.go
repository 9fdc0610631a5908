package medium

import (
	"testing"

	"github.com/trevorKirkby/network-routing-simulation/internal/packet"
)

func flatRates(n int, rate float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = rate
	}
	return out
}

func newLink(id, pathways int, byteRate float64, n int) *Medium {
	return New(id, pathways, 0, byteRate, 0, flatRates(n, byteRate), flatRates(n, 0), int64(id), nil, nil)
}

func TestPlainLinkBroadcastsExceptUpstream(t *testing.T) {
	net := NewNetwork()
	a := newLink(0, 4, 100, 10)
	b := newLink(1, 4, 100, 10)
	c := newLink(2, 4, 100, 10)
	a.Connections = []int{1, 2}
	net.Add(a)
	net.Add(b)
	net.Add(c)

	p := packet.New(0, 2, 10)
	a.Receive(net, p, NoUpstream)
	if len(a.InTransit) != 1 {
		t.Fatalf("expected 1 in-transit entry, got %d", len(a.InTransit))
	}

	a.Tick(net, 0)
	if len(b.InTransit) != 1 {
		t.Fatalf("expected broadcast to reach neighbor 1, got %d entries", len(b.InTransit))
	}
	if len(c.InTransit) != 1 {
		t.Fatalf("expected broadcast to reach neighbor 2, got %d entries", len(c.InTransit))
	}
}

func TestPlainLinkDropsOnFullPathways(t *testing.T) {
	net := NewNetwork()
	a := newLink(0, 1, 1, 5)
	net.Add(a)

	held := packet.New(0, 9, 1000)
	a.Receive(net, held, NoUpstream)

	overflow := packet.New(0, 9, 10)
	a.Receive(net, overflow, NoUpstream)

	if overflow.Delivered() {
		t.Fatalf("expected overflow packet to not be delivered")
	}
	if overflow.TimeArrived != packet.Unset {
		t.Fatalf("expected dropped packet TimeArrived to remain Unset, got %d", overflow.TimeArrived)
	}
}

func TestTickMarksArrivalAtDestination(t *testing.T) {
	net := NewNetwork()
	a := newLink(5, 2, 100, 3)
	net.Add(a)

	p := packet.New(1, 5, 10)
	a.Receive(net, p, NoUpstream)
	a.Tick(net, 0)

	if !p.Delivered() {
		t.Fatalf("expected packet destined for this medium to be marked delivered")
	}
	if p.TimeArrived != 0 {
		t.Fatalf("expected TimeArrived = 0, got %d", p.TimeArrived)
	}
	if len(a.InTransit) != 0 {
		t.Fatalf("expected in-transit to be drained after arrival, got %d", len(a.InTransit))
	}
}

func TestDeterministicLossGivenSameSeed(t *testing.T) {
	n := 50
	drop := flatRates(n, 1) // always drop

	run := func(seed int64) []bool {
		net := NewNetwork()
		a := New(0, 10, 0, 100, 1, flatRates(n, 100), drop, seed, nil, nil)
		net.Add(a)
		var dropped []bool
		for t := 0; t < n; t++ {
			p := packet.New(0, 99, 1)
			a.Receive(net, p, NoUpstream)
			a.Tick(net, t)
			dropped = append(dropped, p.TimeArrived == packet.Unset)
		}
		return dropped
	}

	first := run(42)
	second := run(42)
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("non-deterministic loss sequence at tick %d", i)
		}
	}
}

func TestCountBuffersZeroForPlainLink(t *testing.T) {
	a := newLink(0, 1, 1, 1)
	if got := a.CountBuffers(); got != 0 {
		t.Fatalf("expected 0 buffered packets for a plain link, got %d", got)
	}
}
