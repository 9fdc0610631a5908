// Package scenario implements the optional per-tick network disturbances
// a simulation run can layer on top of its topology: randomly disabling
// a medium, or randomly rewiring a link's endpoints.
package scenario

import (
	"github.com/trevorKirkby/network-routing-simulation/internal/medium"
)

// fraction is the share of eligible media disturbed over one run,
// matching the original simulator's hardcoded N = 0.2 (i.e. a fifth of
// eligible media are disturbed, spread evenly across the run).
const fraction = 0.2

// Scenario is a per-tick hook the simulation driver runs after every
// medium has ticked.
type Scenario interface {
	Tick(net *medium.Network, t int)
}

// None is the no-op scenario, used when a run requests no disturbance.
type None struct{}

func (None) Tick(*medium.Network, int) {}

// interval computes how many ticks should elapse between disturbances,
// given the number of eligible media and the total run duration: a
// fixed fraction of eligible media are disturbed, evenly spread across
// duration ticks.
func interval(eligible, duration int) int {
	if eligible <= 0 {
		return duration + 1
	}
	count := round(float64(eligible) * fraction)
	if count <= 0 {
		count = 1
	}
	return round(float64(duration) / float64(count))
}

func round(f float64) int {
	if f < 0 {
		return int(f - 0.5)
	}
	return int(f + 0.5)
}
