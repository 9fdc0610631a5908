package router

import (
	"math"

	"github.com/trevorKirkby/network-routing-simulation/internal/medium"
	"github.com/trevorKirkby/network-routing-simulation/internal/packet"
)

// Omniscient is the greedy shortest-path baseline: every router has full
// visibility into the live network graph and, for each packet, runs a
// fresh Dijkstra search weighted by each candidate medium's current
// service time (including its queued backlog) to pick the next hop.
// Its own queues are unbounded, standing in for a baseline with
// effectively unlimited buffering.
type Omniscient struct {
	in  *boundedQueue
	out *boundedQueue
}

// NewOmniscient constructs an omniscient greedy router with unbounded
// buffers.
func NewOmniscient() *Omniscient {
	return &Omniscient{
		in:  newBoundedQueue(0),
		out: newBoundedQueue(0),
	}
}

func (o *Omniscient) AdmitClear(_ *medium.Network, _ *medium.Medium, _ *packet.Packet, _ int) bool {
	return true
}

func (o *Omniscient) ReceiveFull(_ *medium.Network, _ *medium.Medium, p *packet.Packet, _ int) {
	o.in.push(Queued{Packet: p, Target: -1})
}

func (o *Omniscient) Process(net *medium.Network, m *medium.Medium, p *packet.Packet, _ int, _ int) {
	if p.Dest == m.ID {
		return
	}
	hop, ok := shortestPathNextHop(net, m, p)
	if !ok {
		m.DropPacket(p, "no route")
		return
	}
	sendOrBuffer(net, m, hop, p, o.out)
}

func (o *Omniscient) Tick(net *medium.Network, m *medium.Medium, _ int) {
	if head, ok := o.in.peekFront(); ok && len(m.InTransit) < m.Pathways {
		o.in.popFront()
		m.ReceiveClear(net, head.Packet, m.ID)
	}
	retryOut(net, m, o.out)
}

func (o *Omniscient) CountBuffers() int {
	return o.in.dataLen() + o.out.dataLen()
}

// serviceTime estimates how long p would take to clear m, accounting for
// both packets already in flight and m's current queue backlog, so a
// Dijkstra search steers around congested as well as slow links.
func serviceTime(p *packet.Packet, m *medium.Medium) float64 {
	denom := float64(len(m.InTransit) + m.CountBuffers() + 1)
	rate := m.ByteRate / denom
	if rate <= 0 {
		return math.Inf(1)
	}
	return math.Ceil(float64(p.ByteSize)/rate) + float64(m.Overhead)
}

// shortestPathNextHop runs Dijkstra from m over the network's current
// live graph, weighting each edge by serviceTime of the medium being
// entered, and returns the first hop on the cheapest path to p.Dest.
func shortestPathNextHop(net *medium.Network, m *medium.Medium, p *packet.Packet) (int, bool) {
	dist := map[int]float64{m.ID: 0}
	firstHop := map[int]int{}
	visited := map[int]bool{}

	for {
		cur := -1
		best := math.Inf(1)
		for id, d := range dist {
			if visited[id] {
				continue
			}
			if d < best {
				best = d
				cur = id
			}
		}
		if cur == -1 {
			break
		}
		visited[cur] = true
		if cur == p.Dest {
			break
		}

		curMedium, ok := net.Lookup(cur)
		if !ok {
			continue
		}
		for _, nb := range curMedium.Connections {
			if visited[nb] {
				continue
			}
			nbMedium, ok := net.Lookup(nb)
			if !ok {
				continue
			}
			weight := serviceTime(p, nbMedium)
			candidate := dist[cur] + weight
			if existing, seen := dist[nb]; !seen || candidate < existing {
				dist[nb] = candidate
				if cur == m.ID {
					firstHop[nb] = nb
				} else {
					firstHop[nb] = firstHop[cur]
				}
			}
		}
	}

	hop, ok := firstHop[p.Dest]
	return hop, ok
}
