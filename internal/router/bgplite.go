package router

import (
	"math/rand"

	"github.com/trevorKirkby/network-routing-simulation/internal/medium"
	"github.com/trevorKirkby/network-routing-simulation/internal/packet"
)

// BGPLite is a path-vector protocol loosely modeled on BGP: neighbors
// exchange KEEPALIVE to establish direct adjacency and UPDATE to
// advertise or withdraw full autonomous-path routes, preferring the
// shortest known path (by hop count) to each destination.
type BGPLite struct {
	links            map[int]int // neighbor router id -> adjacent link medium id
	routes           map[int][][]int
	advertisedRoutes [][]int
	routesToAdvertise []bgpRoute
	neighborTimers   map[int]int

	lastSent       int
	lastAdvertised int
	timeout        int

	routeRNG *rand.Rand

	in      *boundedQueue
	routing *boundedQueue
	out     *boundedQueue
}

// NewBGPLite constructs a BGP-lite router for medium id, with keepalive
// timeout jitter deterministically derived from seed. queueCap bounds
// its in/routing/out buffers; 0 selects DefaultQueueCap.
func NewBGPLite(id int, seed int64, queueCap int) *BGPLite {
	if queueCap <= 0 {
		queueCap = DefaultQueueCap
	}
	rng := rand.New(rand.NewSource(seed)) //nolint:gosec // reproducibility, not security.
	return &BGPLite{
		links:          make(map[int]int),
		routes:         make(map[int][][]int),
		neighborTimers: make(map[int]int),
		lastSent:       -60,
		lastAdvertised: -60,
		timeout:        200 + rng.Intn(41) - 20,
		routeRNG:       rand.New(rand.NewSource(seed + 1)), //nolint:gosec // reproducibility, not security.
		in:             newBoundedQueue(queueCap),
		routing:        newBoundedQueue(queueCap),
		out:            newBoundedQueue(queueCap),
	}
}

func (b *BGPLite) AdmitClear(_ *medium.Network, _ *medium.Medium, _ *packet.Packet, _ int) bool {
	return true
}

func (b *BGPLite) ReceiveFull(_ *medium.Network, m *medium.Medium, p *packet.Packet, _ int) {
	if !b.in.push(Queued{Packet: p, Target: -1}) {
		m.DropPacket(p, "incoming queue full")
	}
}

func (b *BGPLite) addNeighbor(m *medium.Medium, neighborID, linkID int) {
	b.links[neighborID] = linkID
	b.routes[neighborID] = [][]int{{neighborID}}
	b.neighborTimers[neighborID] = b.timeout
	b.routesToAdvertise = append(b.routesToAdvertise, bgpRoute{Path: []int{m.ID, neighborID}, Sign: true})
}

func (b *BGPLite) removeNeighbor(m *medium.Medium, neighborID int) {
	delete(b.routes, neighborID)
	delete(b.links, neighborID)
	delete(b.neighborTimers, neighborID)
	withdrawal := []int{m.ID, neighborID}
	b.advertisedRoutes = removePath(b.advertisedRoutes, withdrawal)
	b.routesToAdvertise = append(b.routesToAdvertise, bgpRoute{Path: withdrawal, Sign: false})
}

func (b *BGPLite) Process(net *medium.Network, m *medium.Medium, p *packet.Packet, upstream int, _ int) {
	if !p.IsControl() {
		b.processData(net, m, p)
		return
	}
	if p.Content == typeKeepalive {
		b.addNeighbor(m, p.Source, upstream)
		return
	}
	if routes, ok := decodeUpdate(p.Content); ok {
		b.processUpdate(m, routes)
	}
}

func (b *BGPLite) processUpdate(m *medium.Medium, routes []bgpRoute) {
	for _, r := range routes {
		if len(r.Path) == 0 {
			continue
		}
		dest := r.Path[len(r.Path)-1]
		existing, known := b.routes[dest]

		if known && len(existing) > 0 {
			if !r.Sign {
				var kept [][]int
				for _, myRoute := range existing {
					if len(r.Path) <= len(myRoute) && pathsEqual(myRoute[len(myRoute)-len(r.Path):], r.Path) {
						withdrawn := append([]int{m.ID}, myRoute...)
						b.routesToAdvertise = append(b.routesToAdvertise, bgpRoute{Path: withdrawn, Sign: false})
						b.advertisedRoutes = removePath(b.advertisedRoutes, withdrawn)
						continue
					}
					kept = append(kept, myRoute)
				}
				if len(kept) == 0 {
					delete(b.routes, dest)
				} else {
					b.routes[dest] = kept
				}
				continue
			}

			if containsPath(existing, r.Path) {
				continue
			}
			shortest := len(existing[0])
			for _, myRoute := range existing {
				if len(myRoute) < shortest {
					shortest = len(myRoute)
				}
			}
			switch {
			case len(r.Path) < shortest:
				b.routes[dest] = [][]int{append([]int{}, r.Path...)}
				b.routesToAdvertise = append(b.routesToAdvertise, bgpRoute{Path: append([]int{m.ID}, r.Path...), Sign: true})
			case len(r.Path) <= shortest:
				b.routes[dest] = append(b.routes[dest], append([]int{}, r.Path...))
				b.routesToAdvertise = append(b.routesToAdvertise, bgpRoute{Path: append([]int{m.ID}, r.Path...), Sign: true})
			}
			continue
		}

		if r.Sign {
			b.routes[dest] = [][]int{append([]int{}, r.Path...)}
			b.routesToAdvertise = append(b.routesToAdvertise, bgpRoute{Path: append([]int{m.ID}, r.Path...), Sign: true})
		}
	}
}

func (b *BGPLite) processData(net *medium.Network, m *medium.Medium, p *packet.Packet) {
	if p.Dest == m.ID {
		return
	}
	if paths, ok := b.routes[p.Dest]; ok && len(paths) > 0 {
		b.routeData(net, m, p, paths)
		return
	}
	if !b.routing.push(Queued{Packet: p, Target: -1}) {
		m.DropPacket(p, "routing queue full")
	}
}

func (b *BGPLite) routeData(net *medium.Network, m *medium.Medium, p *packet.Packet, paths [][]int) {
	path := paths[b.routeRNG.Intn(len(paths))]
	linkID, ok := b.links[path[0]]
	if !ok {
		m.DropPacket(p, "missing neighbor")
		return
	}
	sendOrBuffer(net, m, linkID, p, b.out)
}

func (b *BGPLite) Tick(net *medium.Network, m *medium.Medium, tick int) {
	routable := b.routing.drainMatching(func(q Queued) bool {
		paths, ok := b.routes[q.Packet.Dest]
		return ok && len(paths) > 0
	})
	for _, q := range routable {
		b.routeData(net, m, q.Packet, b.routes[q.Packet.Dest])
	}

	if head, ok := b.in.peekFront(); ok && len(m.InTransit) < m.Pathways {
		b.in.popFront()
		m.ReceiveClear(net, head.Packet, m.ID)
	}
	retryOut(net, m, b.out)

	if tick-b.lastSent >= b.timeout/4 {
		b.lastSent = tick
		for _, linkID := range m.Connections {
			sendOrBuffer(net, m, linkID, packet.NewControl(m.ID, packet.Broadcast, typeKeepalive), b.out)
		}
	}

	for neighborID := range b.neighborTimers {
		b.neighborTimers[neighborID]--
	}
	var expired []int
	for neighborID, remaining := range b.neighborTimers {
		if remaining <= 0 {
			expired = append(expired, neighborID)
		}
	}
	for _, neighborID := range expired {
		b.removeNeighbor(m, neighborID)
	}

	if tick-b.lastAdvertised >= b.timeout/10 {
		b.lastAdvertised = tick
		trimmed := make([]bgpRoute, 0, len(b.routesToAdvertise))
		for _, r := range b.routesToAdvertise {
			if !r.Sign || !containsPath(b.advertisedRoutes, r.Path) {
				trimmed = append(trimmed, r)
			}
		}
		if len(trimmed) > 0 {
			content := encodeUpdate(trimmed)
			for _, linkID := range m.Connections {
				sendOrBuffer(net, m, linkID, packet.NewControl(m.ID, packet.Broadcast, content), b.out)
			}
			for _, r := range trimmed {
				if r.Sign {
					b.advertisedRoutes = append(b.advertisedRoutes, r.Path)
				}
			}
		}
		b.routesToAdvertise = nil
	}
}

func (b *BGPLite) CountBuffers() int {
	return b.in.dataLen() + b.routing.dataLen() + b.out.dataLen()
}

func containsPath(paths [][]int, target []int) bool {
	for _, p := range paths {
		if pathsEqual(p, target) {
			return true
		}
	}
	return false
}

func pathsEqual(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func removePath(paths [][]int, target []int) [][]int {
	out := paths[:0]
	for _, p := range paths {
		if !pathsEqual(p, target) {
			out = append(out, p)
		}
	}
	return out
}
