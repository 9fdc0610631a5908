package scenario

import (
	"fmt"

	"github.com/trevorKirkby/network-routing-simulation/internal/medium"
)

// Name identifies a scenario by the name used in the command-line
// interface and configuration files.
type Name string

const (
	NameNone           Name = "none"
	NameDisruption     Name = "disruption"
	NameTopologyShift  Name = "topology_shift"
)

// New builds the named scenario against net, over a run of duration
// ticks, deterministically seeded.
func New(name Name, net *medium.Network, duration int, seed int64) (Scenario, error) {
	switch name {
	case "", NameNone:
		return None{}, nil
	case NameDisruption:
		return NewDisruption(net, duration, seed), nil
	case NameTopologyShift:
		return NewTopologyShift(net, duration, seed), nil
	default:
		return nil, fmt.Errorf("scenario: unknown scenario %q", name)
	}
}
