// Package packet defines the data carrier that flows through the
// simulated network.
package packet

// Broadcast is the sentinel destination id meaning "every neighbor".
const Broadcast = -1

// Unset marks a timestamp field that has not happened yet.
const Unset = -1

// Packet is a chunk of data moving through the simulated network, either
// routing-protocol control traffic or simulated workload traffic.
//
// A Packet is immutable after construction except for the two timestamp
// fields, which are set exactly once each as the packet is injected and
// as it is delivered (or permanently dropped). Identity is by reference:
// two packets built with identical fields are still distinct packets for
// accounting purposes.
type Packet struct {
	// Source is the originating host id. Meaning is protocol-defined.
	Source int

	// Dest is the destination host id, or Broadcast.
	Dest int

	// Content is a short textual tag identifying control traffic
	// (HELLO, RREQ, ...). Empty for workload data packets.
	Content string

	// ByteSize is the size of the packet in bytes. Positive for workload
	// packets; derived from Content's UTF-8 length for control packets.
	ByteSize int

	// TimeSent is the tick at which the packet was injected into the
	// network, or Unset before that happens.
	TimeSent int

	// TimeArrived is the tick at which the packet reached its
	// destination, or Unset if it never arrived (dropped, or still in
	// flight when the simulation ended).
	TimeArrived int
}

// New constructs a workload data packet of byteSize bytes.
func New(source, dest, byteSize int) *Packet {
	return &Packet{
		Source:      source,
		Dest:        dest,
		ByteSize:    byteSize,
		TimeSent:    Unset,
		TimeArrived: Unset,
	}
}

// NewControl constructs a control packet carrying the given textual
// content. ByteSize is derived from content's UTF-8 length, matching the
// original simulator's accounting of control-traffic overhead.
func NewControl(source, dest int, content string) *Packet {
	return &Packet{
		Source:      source,
		Dest:        dest,
		Content:     content,
		ByteSize:    len(content),
		TimeSent:    Unset,
		TimeArrived: Unset,
	}
}

// IsControl reports whether p is routing-protocol control traffic
// (non-empty Content), as opposed to workload data.
func (p *Packet) IsControl() bool {
	return p.Content != ""
}

// IsBroadcast reports whether p targets every neighbor rather than a
// specific destination.
func (p *Packet) IsBroadcast() bool {
	return p.Dest == Broadcast
}

// Delivered reports whether p reached its destination.
func (p *Packet) Delivered() bool {
	return p.TimeArrived != Unset
}

// Latency returns the time p spent in transit. Only meaningful once
// Delivered reports true.
func (p *Packet) Latency() int {
	return p.TimeArrived - p.TimeSent
}
