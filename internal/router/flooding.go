package router

import (
	"github.com/trevorKirkby/network-routing-simulation/internal/medium"
	"github.com/trevorKirkby/network-routing-simulation/internal/packet"
)

// Flooding is the simplest router: every packet not addressed to it is
// rebroadcast to every neighbor but the one it arrived from. A bounded
// FIFO of recently seen packets suppresses infinite rebroadcast loops.
type Flooding struct {
	seen     map[*packet.Packet]struct{}
	seenFIFO []*packet.Packet
	seenCap  int

	in  *boundedQueue
	out *boundedQueue
}

// NewFlooding constructs a flooding router. queueCap bounds its in/out
// buffers and the seen-packet dedup cache; 0 selects DefaultQueueCap.
func NewFlooding(queueCap int) *Flooding {
	if queueCap <= 0 {
		queueCap = DefaultQueueCap
	}
	return &Flooding{
		seen:    make(map[*packet.Packet]struct{}),
		seenCap: queueCap,
		in:      newBoundedQueue(queueCap),
		out:     newBoundedQueue(queueCap),
	}
}

// AdmitClear drops a packet this router has already flooded once,
// identified by reference identity rather than content equality.
func (f *Flooding) AdmitClear(_ *medium.Network, _ *medium.Medium, p *packet.Packet, _ int) bool {
	if _, ok := f.seen[p]; ok {
		return false
	}
	f.seen[p] = struct{}{}
	f.seenFIFO = append(f.seenFIFO, p)
	if len(f.seenFIFO) > f.seenCap {
		evicted := f.seenFIFO[0]
		f.seenFIFO = f.seenFIFO[1:]
		delete(f.seen, evicted)
	}
	return true
}

func (f *Flooding) ReceiveFull(_ *medium.Network, m *medium.Medium, p *packet.Packet, _ int) {
	if !f.in.push(Queued{Packet: p, Target: -1}) {
		m.DropPacket(p, "medium is full")
	}
}

func (f *Flooding) Process(net *medium.Network, m *medium.Medium, p *packet.Packet, upstream int, _ int) {
	if p.Dest == m.ID {
		return
	}
	broadcastExceptUpstream(net, m, p, upstream, f.out)
}

func (f *Flooding) Tick(net *medium.Network, m *medium.Medium, _ int) {
	if head, ok := f.in.peekFront(); ok && len(m.InTransit) < m.Pathways {
		f.in.popFront()
		m.ReceiveClear(net, head.Packet, m.ID)
	}
	retryOut(net, m, f.out)
}

func (f *Flooding) CountBuffers() int {
	return f.in.dataLen() + f.out.dataLen()
}
