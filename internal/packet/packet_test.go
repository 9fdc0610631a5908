package packet

import "testing"

func TestNewIsDataPacket(t *testing.T) {
	p := New(1, 2, 64)
	if p.IsControl() {
		t.Fatalf("expected workload packet to not be control")
	}
	if p.ByteSize != 64 {
		t.Fatalf("expected ByteSize 64, got %d", p.ByteSize)
	}
	if p.Delivered() {
		t.Fatalf("expected freshly constructed packet to not be delivered")
	}
}

func TestNewControlDerivesByteSizeFromContent(t *testing.T) {
	p := NewControl(1, Broadcast, "HELLO")
	if !p.IsControl() {
		t.Fatalf("expected control packet")
	}
	if p.ByteSize != len("HELLO") {
		t.Fatalf("expected ByteSize derived from content length, got %d", p.ByteSize)
	}
	if !p.IsBroadcast() {
		t.Fatalf("expected broadcast destination")
	}
}

func TestLatencyAfterDelivery(t *testing.T) {
	p := New(0, 1, 10)
	p.TimeSent = 5
	p.TimeArrived = 12
	if !p.Delivered() {
		t.Fatalf("expected delivered packet")
	}
	if got := p.Latency(); got != 7 {
		t.Fatalf("expected latency 7, got %d", got)
	}
}
