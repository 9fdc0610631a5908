package router

import (
	"testing"

	"github.com/trevorKirkby/network-routing-simulation/internal/medium"
	"github.com/trevorKirkby/network-routing-simulation/internal/packet"
)

func flat(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func newPlainLink(id, n int) *medium.Medium {
	return medium.New(id, 4, 0, 10000, 0, flat(n, 10000), flat(n, 0), int64(id), nil, nil)
}

func newRouterMedium(id int, logic medium.RouterLogic, n int) *medium.Medium {
	return medium.New(id, 4, 0, 10000, 0, flat(n, 10000), flat(n, 0), int64(id)+1000, logic, nil)
}

func tickAll(net *medium.Network, t int) {
	for _, m := range net.Media() {
		m.Tick(net, t)
	}
}

func TestFloodingDeliversAcrossTriangleWithoutLooping(t *testing.T) {
	const n = 100
	net := medium.NewNetwork()
	r0 := newRouterMedium(0, NewFlooding(0), n)
	r1 := newRouterMedium(1, NewFlooding(0), n)
	r2 := newRouterMedium(2, NewFlooding(0), n)
	r0.Connections = []int{1, 2}
	r1.Connections = []int{0, 2}
	r2.Connections = []int{0, 1}
	net.Add(r0)
	net.Add(r1)
	net.Add(r2)

	p := packet.New(0, 2, 16)
	r0.Receive(net, p, medium.NoUpstream)
	p.TimeSent = 0

	for tick := 0; tick < n-1; tick++ {
		tickAll(net, tick)
	}

	if !p.Delivered() {
		t.Fatalf("expected packet to be delivered via flooding")
	}
	for _, m := range net.Media() {
		if len(m.InTransit) != 0 || m.CountBuffers() != 0 {
			t.Fatalf("expected the flood to die out, medium %d still holds %d in transit and %d buffered", m.ID, len(m.InTransit), m.CountBuffers())
		}
	}
}

func TestAODVDiscoversMultiHopRoute(t *testing.T) {
	const n = 300
	net := medium.NewNetwork()

	a := newRouterMedium(0, NewAODV(0, 1, 0, nil), n)
	l1 := newPlainLink(1, n)
	b := newRouterMedium(2, NewAODV(2, 2, 0, nil), n)
	l2 := newPlainLink(3, n)
	c := newRouterMedium(4, NewAODV(4, 3, 0, nil), n)

	a.Connections = []int{1}
	l1.Connections = []int{0, 2}
	b.Connections = []int{1, 3}
	l2.Connections = []int{2, 4}
	c.Connections = []int{3}

	for _, m := range []*medium.Medium{a, l1, b, l2, c} {
		net.Add(m)
	}

	// Let HELLO exchanges establish direct-neighbor routes first.
	for tick := 0; tick < 20; tick++ {
		tickAll(net, tick)
	}

	p := packet.New(0, 4, 32)
	a.Receive(net, p, medium.NoUpstream)
	p.TimeSent = 20

	for tick := 20; tick < n-1; tick++ {
		tickAll(net, tick)
		if p.Delivered() {
			break
		}
	}

	if !p.Delivered() {
		t.Fatalf("expected AODV to discover a route and deliver the packet within %d ticks", n)
	}
}

func TestBGPLiteEstablishesAdjacencyAndForwards(t *testing.T) {
	const n = 400
	net := medium.NewNetwork()

	a := newRouterMedium(0, NewBGPLite(0, 1, 0), n)
	link := newPlainLink(1, n)
	b := newRouterMedium(2, NewBGPLite(2, 2, 0), n)

	a.Connections = []int{1}
	link.Connections = []int{0, 2}
	b.Connections = []int{1}

	net.Add(a)
	net.Add(link)
	net.Add(b)

	for tick := 0; tick < 100; tick++ {
		tickAll(net, tick)
	}

	p := packet.New(0, 2, 16)
	a.Receive(net, p, medium.NoUpstream)
	p.TimeSent = 100

	for tick := 100; tick < n-1; tick++ {
		tickAll(net, tick)
		if p.Delivered() {
			break
		}
	}

	if !p.Delivered() {
		t.Fatalf("expected BGP-lite to establish adjacency and deliver the packet")
	}
}

func TestOmniscientPrefersFasterPath(t *testing.T) {
	const n = 50
	net := medium.NewNetwork()

	// Router 0 can reach router 2 either directly over a slow link (id 1)
	// or via router r1 (id 5) over two fast links (ids 3, 4). The greedy search
	// should prefer the faster multi-hop path.
	r0 := newRouterMedium(0, NewOmniscient(), n)
	slow := medium.New(1, 4, 0, 1, 0, flat(n, 1), flat(n, 0), 1, nil, nil)
	r2 := newRouterMedium(2, NewOmniscient(), n)
	r1 := newRouterMedium(5, NewOmniscient(), n)
	fastA := newPlainLink(3, n)
	fastB := newPlainLink(4, n)

	r0.Connections = []int{1, 3}
	slow.Connections = []int{0, 2}
	r2.Connections = []int{1, 4}
	r1.Connections = []int{3, 4}
	fastA.Connections = []int{0, 5}
	fastB.Connections = []int{5, 2}

	for _, m := range []*medium.Medium{r0, slow, r2, r1, fastA, fastB} {
		net.Add(m)
	}

	p := packet.New(0, 2, 1000)
	r0.Receive(net, p, medium.NoUpstream)
	p.TimeSent = 0

	for tick := 0; tick < n-1; tick++ {
		tickAll(net, tick)
		if p.Delivered() {
			break
		}
	}

	if !p.Delivered() {
		t.Fatalf("expected packet to be delivered")
	}
	if p.Latency() >= 1000 {
		t.Fatalf("expected the greedy router to avoid the slow direct link, latency was %d", p.Latency())
	}
}

// TestAODVCachedRouteReplyUsesFreshBroadcastTag guards against a regression
// where a router answering an RREQ from a route it already holds (as
// opposed to being the destination itself) reused its last-sent
// broadcast-tag count instead of incrementing it. A reused tag is
// indistinguishable from a duplicate of the router's last real flood, so
// the upstream neighbor's AdmitClear dedup would silently drop the reply.
func TestAODVCachedRouteReplyUsesFreshBroadcastTag(t *testing.T) {
	const n = 10
	a := NewAODV(2, 1, 0, nil)

	// Simulate this router having already flooded once before (e.g. an
	// earlier hello/RREQ/RREP of its own), so broadcastCount is nonzero.
	a.broadcastCount = 7
	a.routes[99] = routeEntry{timestamp: 0, sequence: 5, nextHop: 3, distance: 1}

	net := medium.NewNetwork()
	self := newRouterMedium(2, a, n)
	upstreamLink := newPlainLink(1, n)
	downstreamLink := newPlainLink(3, n)
	self.Connections = []int{1, 3}
	upstreamLink.Connections = []int{2}
	downstreamLink.Connections = []int{2}
	net.Add(self)
	net.Add(upstreamLink)
	net.Add(downstreamLink)

	req := packet.NewControl(0, packet.Broadcast, encodeRREQ(99, 10, broadcastTag{Source: 0, Count: 1}))
	a.Process(net, self, req, upstreamLink.ID, 0)

	if a.broadcastCount != 8 {
		t.Fatalf("expected broadcastCount to be incremented to 8, got %d", a.broadcastCount)
	}

	if len(upstreamLink.InTransit) != 1 {
		t.Fatalf("expected exactly one reply queued toward upstream, got %d", len(upstreamLink.InTransit))
	}
	reply, ok := decodeRREP(upstreamLink.InTransit[0].Packet.Content)
	if !ok {
		t.Fatalf("expected an RREP, got %q", upstreamLink.InTransit[0].Packet.Content)
	}
	if reply.Tag.Count != 8 {
		t.Fatalf("expected the reply's tag count to be the freshly incremented 8, got %d (a stale/reused tag a dedup check would mistake for an already-seen flood)", reply.Tag.Count)
	}
}
