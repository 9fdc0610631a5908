package router

import (
	"log/slog"
	"math"
	"math/rand"
	"sort"

	"github.com/trevorKirkby/network-routing-simulation/internal/medium"
	"github.com/trevorKirkby/network-routing-simulation/internal/packet"
)

// helloDelayWindow bounds how many recent HELLO delay samples (receipt
// tick minus the HELLO's TimeSent) feed the adaptive hello-timeout
// recompute.
const helloDelayWindow = 20

// pollFrequencyInverse is 1/poll_frequency, folded into the adaptive
// hello-timeout formula as a multiplier rather than a division by 0.01.
const pollFrequencyInverse = 100

type routeEntry struct {
	timestamp int
	sequence  int
	nextHop   int
	distance  int
}

type neighborEntry struct {
	lastHello int
	linkID    int
}

// AODV implements a reactive distance-vector routing protocol: routes
// are discovered on demand via broadcast RREQ/RREP exchanges, kept alive
// by periodic HELLO beacons between directly connected neighbors, and
// torn down with RERR once a neighbor or route goes stale.
type AODV struct {
	id int

	routes         map[int]routeEntry
	neighbors      map[int]neighborEntry
	broadcastsSeen map[int]int

	sequenceCount  int
	broadcastCount int

	helloTimeout  int
	helloDelays   []int
	lastHelloSent int

	routeTimeout int

	inQueue           *boundedQueue
	outQueue          *boundedQueue
	routePendingQueue *boundedQueue

	logger *slog.Logger
}

// NewAODV constructs an AODV router for medium id, with hello/route
// timeout jitter deterministically derived from seed. queueCap bounds
// its in/out/route-pending buffers; 0 selects DefaultQueueCap.
func NewAODV(id int, seed int64, queueCap int, logger *slog.Logger) *AODV {
	if queueCap <= 0 {
		queueCap = DefaultQueueCap
	}
	rng := rand.New(rand.NewSource(seed)) //nolint:gosec // reproducibility, not security.
	a := &AODV{
		id:                id,
		routes:            make(map[int]routeEntry),
		neighbors:         make(map[int]neighborEntry),
		broadcastsSeen:    make(map[int]int),
		helloTimeout:      100 + rng.Intn(21) - 10,
		routeTimeout:      1000 + rng.Intn(201) - 100,
		lastHelloSent:     math.MinInt32 / 2,
		inQueue:           newBoundedQueue(queueCap),
		outQueue:          newBoundedQueue(queueCap),
		routePendingQueue: newBoundedQueue(queueCap),
		logger:            logger,
	}
	a.routes[id] = routeEntry{timestamp: -1, sequence: -1, nextHop: -1, distance: 0}
	return a
}

func (a *AODV) registerBroadcast(source, count int) bool {
	prev, seen := a.broadcastsSeen[source]
	if !seen || count > prev {
		a.broadcastsSeen[source] = count
		return true
	}
	return false
}

// AdmitClear suppresses re-admission of a flooded message this router
// has already seen an equal-or-newer copy of. HELLO is never tagged and
// always passes through; unicast data always passes through.
func (a *AODV) AdmitClear(_ *medium.Network, _ *medium.Medium, p *packet.Packet, _ int) bool {
	if !p.IsControl() || p.Content == helloContent {
		return true
	}
	tag, ok := broadcastTagOf(p.Content)
	if !ok {
		return true
	}
	return a.registerBroadcast(tag.Source, tag.Count)
}

func (a *AODV) ReceiveFull(_ *medium.Network, m *medium.Medium, p *packet.Packet, _ int) {
	if !a.inQueue.push(Queued{Packet: p, Target: -1}) {
		m.DropPacket(p, "incoming queue full")
	}
}

func (a *AODV) getNeighborLink(neighborID int) (int, bool) {
	entry, ok := a.neighbors[neighborID]
	if !ok {
		return 0, false
	}
	return entry.linkID, true
}

func (a *AODV) broadcast(net *medium.Network, m *medium.Medium, p *packet.Packet, upstreamLink int) {
	for _, linkID := range m.Connections {
		if linkID == upstreamLink {
			continue
		}
		sendOrBuffer(net, m, linkID, p, a.outQueue)
	}
}

// initBroadcast originates a fresh flooded message (as opposed to
// relaying one already in flight): it always reaches every connection,
// since there is no "upstream" to avoid echoing back to.
func (a *AODV) initBroadcast(net *medium.Network, m *medium.Medium, build func(broadcastTag) string) {
	a.broadcastCount++
	tag := broadcastTag{Source: m.ID, Count: a.broadcastCount}
	p := packet.NewControl(m.ID, packet.Broadcast, build(tag))
	a.broadcast(net, m, p, medium.NoUpstream)
}

func (a *AODV) Process(net *medium.Network, m *medium.Medium, p *packet.Packet, upstream int, tick int) {
	if !p.IsControl() {
		a.processData(net, m, p)
		return
	}
	if p.Content == helloContent {
		a.processHello(m, p, upstream, tick)
		return
	}
	if msg, ok := decodeRREQ(p.Content); ok {
		a.processRREQ(net, m, p, msg, upstream)
		return
	}
	if msg, ok := decodeRREP(p.Content); ok {
		a.processRREP(net, m, msg, upstream, tick)
		return
	}
	if msg, ok := decodeRERR(p.Content); ok {
		a.processRERR(net, m, msg, upstream)
	}
}

func (a *AODV) processData(net *medium.Network, m *medium.Medium, p *packet.Packet) {
	if p.Dest == m.ID {
		return
	}
	if route, ok := a.routes[p.Dest]; ok {
		if linkID, ok2 := a.getNeighborLink(route.nextHop); ok2 {
			sendOrBuffer(net, m, linkID, p, a.outQueue)
		} else {
			m.DropPacket(p, "missing neighbor")
		}
		return
	}
	if a.routePendingQueue.push(Queued{Packet: p, Target: -1}) {
		a.requestRoute(net, m, p)
	} else {
		m.DropPacket(p, "routing queue full")
	}
}

func (a *AODV) requestRoute(net *medium.Network, m *medium.Medium, p *packet.Packet) {
	if p.Source == m.ID {
		a.sequenceCount++
		a.initBroadcast(net, m, func(tag broadcastTag) string {
			return encodeRREQ(p.Dest, a.sequenceCount, tag)
		})
		return
	}
	delete(a.routes, p.Dest)
	a.initBroadcast(net, m, func(tag broadcastTag) string {
		return encodeRERR([]int{p.Dest}, tag)
	})
}

func (a *AODV) processHello(m *medium.Medium, p *packet.Packet, upstreamLink, tick int) {
	neighborID := p.Source
	a.neighbors[neighborID] = neighborEntry{lastHello: tick, linkID: upstreamLink}
	a.routes[neighborID] = routeEntry{timestamp: tick, sequence: -1, nextHop: neighborID, distance: 1}

	delay := a.helloTimeout
	if p.TimeSent != packet.Unset {
		delay = tick - p.TimeSent
	}
	a.helloDelays = append(a.helloDelays, delay)
	if len(a.helloDelays) > helloDelayWindow {
		a.helloDelays = a.helloDelays[len(a.helloDelays)-helloDelayWindow:]
	}

	sum := 0
	for _, d := range a.helloDelays {
		sum += d
	}
	n := len(a.helloDelays)
	meanPlusOne := (float64(sum) + float64(n)) / float64(n)
	a.helloTimeout = int((math.Ceil(meanPlusOne) + 10) * pollFrequencyInverse)
}

func (a *AODV) processRREQ(net *medium.Network, m *medium.Medium, p *packet.Packet, msg rreqMsg, upstream int) {
	if msg.Dest == m.ID {
		if msg.Sequence > a.sequenceCount {
			a.sequenceCount = msg.Sequence
		}
		a.sequenceCount++
		a.initBroadcast(net, m, func(tag broadcastTag) string {
			return encodeRREP(m.ID, a.sequenceCount, m.ID, 1, tag)
		})
		return
	}
	if route, ok := a.routes[msg.Dest]; ok && msg.Sequence > route.sequence {
		a.broadcastCount++
		tag := broadcastTag{Source: m.ID, Count: a.broadcastCount}
		content := encodeRREP(msg.Dest, route.sequence, m.ID, route.distance+1, tag)
		reply := packet.NewControl(m.ID, packet.Broadcast, content)
		sendOrBuffer(net, m, upstream, reply, a.outQueue)
		return
	}
	a.broadcast(net, m, p, upstream)
}

func (a *AODV) processRREP(net *medium.Network, m *medium.Medium, msg rrepMsg, upstream, tick int) {
	route, known := a.routes[msg.Target]
	accept := !known || msg.Sequence > route.sequence ||
		(msg.Sequence == route.sequence && msg.Distance < route.distance)
	if !accept {
		return
	}

	forwardContent := encodeRREP(msg.Target, msg.Sequence, m.ID, msg.Distance+1, msg.Tag)
	forward := packet.NewControl(m.ID, packet.Broadcast, forwardContent)
	a.broadcast(net, m, forward, upstream)

	a.routes[msg.Target] = routeEntry{timestamp: tick, sequence: msg.Sequence, nextHop: msg.NextHop, distance: msg.Distance}
}

func (a *AODV) processRERR(net *medium.Network, m *medium.Medium, msg rerrMsg, upstream int) {
	removed := a.removeRoutes(msg.Removed)
	if len(removed) == 0 {
		return
	}
	sort.Ints(removed)
	content := encodeRERR(removed, msg.Tag)
	p := packet.NewControl(m.ID, packet.Broadcast, content)
	a.broadcast(net, m, p, upstream)
}

// removeRoutes deletes any route whose destination or next hop appears
// in ids, returning the list of destinations actually removed.
func (a *AODV) removeRoutes(ids []int) []int {
	idSet := make(map[int]struct{}, len(ids))
	for _, id := range ids {
		idSet[id] = struct{}{}
	}
	var removed []int
	for dest, entry := range a.routes {
		_, destIn := idSet[dest]
		_, hopIn := idSet[entry.nextHop]
		if destIn || hopIn {
			delete(a.routes, dest)
			removed = append(removed, dest)
		}
	}
	return removed
}

func (a *AODV) expireAndReport(net *medium.Network, m *medium.Medium, tick int) {
	deletedSet := map[int]struct{}{}
	var deleted []int

	addDeleted := func(ids []int) {
		for _, id := range ids {
			if _, ok := deletedSet[id]; !ok {
				deletedSet[id] = struct{}{}
				deleted = append(deleted, id)
			}
		}
	}

	for id, entry := range a.neighbors {
		if tick-entry.lastHello <= a.helloTimeout {
			continue
		}
		delete(a.neighbors, id)
		if a.logger != nil {
			a.logger.Debug("aodv neighbor expired", slog.Int("medium_id", m.ID), slog.Int("neighbor", id))
		}
		addDeleted(a.removeRoutes([]int{id}))
	}

	for dest, entry := range a.routes {
		if dest == m.ID {
			continue
		}
		if _, isNeighbor := a.neighbors[dest]; isNeighbor {
			continue
		}
		if tick-entry.timestamp > a.routeTimeout {
			delete(a.routes, dest)
			addDeleted([]int{dest})
		}
	}

	if len(deleted) == 0 {
		return
	}
	sort.Ints(deleted)
	a.initBroadcast(net, m, func(tag broadcastTag) string {
		return encodeRERR(deleted, tag)
	})
}

func (a *AODV) Tick(net *medium.Network, m *medium.Medium, tick int) {
	routable := a.routePendingQueue.drainMatching(func(q Queued) bool {
		_, ok := a.routes[q.Packet.Dest]
		return ok
	})
	for _, q := range routable {
		a.processData(net, m, q.Packet)
	}

	if head, ok := a.inQueue.peekFront(); ok && len(m.InTransit) < m.Pathways {
		a.inQueue.popFront()
		m.ReceiveClear(net, head.Packet, m.ID)
	}

	retryOut(net, m, a.outQueue)

	if tick-a.lastHelloSent > a.helloTimeout/3 {
		a.lastHelloSent = tick
		hello := packet.NewControl(m.ID, packet.Broadcast, helloContent)
		hello.TimeSent = tick
		a.broadcast(net, m, hello, medium.NoUpstream)
	}

	a.expireAndReport(net, m, tick)
}

func (a *AODV) CountBuffers() int {
	return a.inQueue.dataLen() + a.outQueue.dataLen() + a.routePendingQueue.dataLen()
}
