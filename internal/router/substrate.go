package router

import (
	"github.com/trevorKirkby/network-routing-simulation/internal/medium"
	"github.com/trevorKirkby/network-routing-simulation/internal/packet"
)

// sendOrBuffer is the shared "send" primitive every router variant uses
// to hand a packet to a specific neighbor: deliver immediately if the
// neighbor has a free pathway (or is itself a router, which always
// buffers rather than rejecting), otherwise queue it in out for a later
// tick's retry, dropping it if out is already full.
func sendOrBuffer(net *medium.Network, self *medium.Medium, targetID int, p *packet.Packet, out *boundedQueue) {
	target, ok := net.Lookup(targetID)
	if !ok {
		self.DropPacket(p, "missing neighbor")
		return
	}
	if medium.CanAcceptImmediately(target) {
		target.Receive(net, p, self.ID)
		return
	}
	if !out.push(Queued{Packet: p, Target: targetID}) {
		self.DropPacket(p, "outgoing queue full")
	}
}

// retryOut attempts to deliver the head of out, if any, leaving it queued
// if the target still has no room. Only the head is attempted per tick,
// matching the original simulator's single-slot retry.
func retryOut(net *medium.Network, self *medium.Medium, out *boundedQueue) {
	head, ok := out.peekFront()
	if !ok {
		return
	}
	target, ok := net.Lookup(head.Target)
	if !ok {
		out.popFront()
		self.DropPacket(head.Packet, "missing neighbor")
		return
	}
	if !medium.CanAcceptImmediately(target) {
		return
	}
	out.popFront()
	target.Receive(net, head.Packet, self.ID)
}

// broadcastExceptUpstream forwards p to every one of self's connections
// other than upstream, each individually subject to sendOrBuffer's
// capacity-or-buffer-or-drop logic.
func broadcastExceptUpstream(net *medium.Network, self *medium.Medium, p *packet.Packet, upstream int, out *boundedQueue) {
	for _, id := range self.Connections {
		if id == upstream {
			continue
		}
		sendOrBuffer(net, self, id, p, out)
	}
}
