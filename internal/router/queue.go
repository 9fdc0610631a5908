// Package router implements the routing-protocol variants that plug into
// a medium.Medium as its RouterLogic: flooding, omniscient-greedy
// forwarding, AODV, and BGP-lite.
package router

import "github.com/trevorKirkby/network-routing-simulation/internal/packet"

// DefaultQueueCap is the default bound on every protocol buffer, matching
// the original simulator's queue_max.
const DefaultQueueCap = 200

// Queued is one entry in a router's internal buffer: a packet awaiting
// service, and the neighbor id it should be sent to once a pathway frees
// up. Target is -1 for buffers that don't yet know a destination (an
// inbound queue awaiting a forwarding decision).
type Queued struct {
	Packet *packet.Packet
	Target int
}

// boundedQueue is a capacity-limited FIFO, the shared primitive behind
// every router variant's in/out/routing-style buffers. A zero cap means
// unbounded, used by the omniscient baseline.
type boundedQueue struct {
	items []Queued
	cap   int
}

func newBoundedQueue(capacity int) *boundedQueue {
	return &boundedQueue{cap: capacity}
}

func (q *boundedQueue) push(item Queued) bool {
	if q.cap > 0 && len(q.items) >= q.cap {
		return false
	}
	q.items = append(q.items, item)
	return true
}

func (q *boundedQueue) popFront() (Queued, bool) {
	if len(q.items) == 0 {
		return Queued{}, false
	}
	item := q.items[0]
	q.items = q.items[1:]
	return item, true
}

func (q *boundedQueue) peekFront() (Queued, bool) {
	if len(q.items) == 0 {
		return Queued{}, false
	}
	return q.items[0], true
}

func (q *boundedQueue) len() int { return len(q.items) }

// dataLen returns the count of entries carrying workload (non-control)
// packets: what CountBuffers reports for backpressure accounting.
func (q *boundedQueue) dataLen() int {
	n := 0
	for _, item := range q.items {
		if !item.Packet.IsControl() {
			n++
		}
	}
	return n
}

// drainMatching removes and returns every entry satisfying pred, in
// order, preserving the relative order of what remains. Used for
// route-pending style buffers that re-check all entries once new
// routing information arrives.
func (q *boundedQueue) drainMatching(pred func(Queued) bool) []Queued {
	var removed, kept []Queued
	for _, item := range q.items {
		if pred(item) {
			removed = append(removed, item)
		} else {
			kept = append(kept, item)
		}
	}
	q.items = kept
	return removed
}
