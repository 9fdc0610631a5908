package scenario

import (
	"math/rand"

	"github.com/trevorKirkby/network-routing-simulation/internal/medium"
)

// Disruption periodically takes a random medium out of service by
// clearing its Operational flag. Once disabled a medium stays disabled
// for the rest of the run, matching the original simulator: this models
// a permanent outage rather than a flapping link.
type Disruption struct {
	rng      *rand.Rand
	interval int
	counter  int
}

// NewDisruption builds a Disruption scenario for a network of the given
// size over a run of duration ticks, deterministically seeded.
func NewDisruption(net *medium.Network, duration int, seed int64) *Disruption {
	iv := interval(net.Len(), duration)
	return &Disruption{
		rng:      rand.New(rand.NewSource(seed)), //nolint:gosec // reproducibility, not security.
		interval: iv,
		counter:  iv,
	}
}

func (d *Disruption) Tick(net *medium.Network, _ int) {
	d.counter--
	if d.counter > 0 {
		return
	}
	d.counter = d.interval

	media := net.Media()
	if len(media) == 0 {
		return
	}
	media[d.rng.Intn(len(media))].Operational = false
}
