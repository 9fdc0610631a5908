package metrics

import (
	"fmt"
	"io"

	"github.com/trevorKirkby/network-routing-simulation/internal/packet"
)

// Report is the four-line, human-readable summary printed to stdout at
// the end of every run, regardless of whether the Prometheus endpoint
// is enabled.
type Report struct {
	LossRate       float64
	DataLossRate   float64
	MeanLatency    float64
	TailLatency    float64
	MeanThroughput float64
}

// BuildReport computes a Report from every packet the simulation ever
// constructed (control and workload) and the number of ticks the run
// advanced. TailLatency is the maximum delivered workload packet
// latency (spec's "max of that difference"). MeanThroughput is
// delivered bytes divided by the sum of each delivered packet's own
// transit time, not by ticks.
func BuildReport(packets []*packet.Packet, ticks int) Report {
	if len(packets) == 0 {
		return Report{}
	}

	var total, delivered int
	var dataTotal, dataDelivered int
	var latencies []int
	var bytesDelivered, transitTime int

	for _, p := range packets {
		total++
		if p.Delivered() {
			delivered++
		}
		if p.IsControl() {
			continue
		}
		dataTotal++
		if p.Delivered() {
			dataDelivered++
			latencies = append(latencies, p.Latency())
			bytesDelivered += p.ByteSize
			transitTime += p.Latency()
		}
	}

	r := Report{}
	if total > 0 {
		r.LossRate = 1 - float64(delivered)/float64(total)
	}
	if dataTotal > 0 {
		r.DataLossRate = 1 - float64(dataDelivered)/float64(dataTotal)
	}
	if len(latencies) > 0 {
		r.MeanLatency = mean(latencies)
		r.TailLatency = float64(maxOf(latencies))
	}
	if transitTime > 0 {
		r.MeanThroughput = float64(bytesDelivered) / float64(transitTime)
	}
	return r
}

// Print writes the report as four lines, matching spec §4.9/§6's
// reporting format.
func (r Report) Print(w io.Writer) {
	fmt.Fprintf(w, "loss rate: %.4f\n", r.LossRate)
	fmt.Fprintf(w, "data loss rate: %.4f\n", r.DataLossRate)
	fmt.Fprintf(w, "latency: mean=%.2f max=%.2f\n", r.MeanLatency, r.TailLatency)
	fmt.Fprintf(w, "throughput: mean=%.2f bytes/tick\n", r.MeanThroughput)
}

func mean(xs []int) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum int
	for _, x := range xs {
		sum += x
	}
	return float64(sum) / float64(len(xs))
}

func maxOf(xs []int) int {
	m := xs[0]
	for _, x := range xs[1:] {
		if x > m {
			m = x
		}
	}
	return m
}
