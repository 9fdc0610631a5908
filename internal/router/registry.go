package router

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/trevorKirkby/network-routing-simulation/internal/medium"
)

// Name identifies a routing-protocol variant by the name used in
// configuration files and the command-line interface.
type Name string

const (
	NameFlooding   Name = "flooding"
	NameOmniscient Name = "omniscient"
	NameAODV       Name = "aodv"
	NameBGPLite    Name = "bgp_lite"
)

// Factory builds a fresh medium.RouterLogic instance for medium id,
// deterministically seeded from seed, with its buffers bounded by
// queueCap (0 selects DefaultQueueCap).
type Factory func(id int, seed int64, queueCap int, logger *slog.Logger) medium.RouterLogic

var registry = map[Name]Factory{
	NameFlooding: func(_ int, _ int64, queueCap int, _ *slog.Logger) medium.RouterLogic {
		return NewFlooding(queueCap)
	},
	NameOmniscient: func(int, int64, int, *slog.Logger) medium.RouterLogic {
		return NewOmniscient()
	},
	NameAODV: func(id int, seed int64, queueCap int, logger *slog.Logger) medium.RouterLogic {
		return NewAODV(id, seed, queueCap, logger)
	},
	NameBGPLite: func(id int, seed int64, queueCap int, _ *slog.Logger) medium.RouterLogic {
		return NewBGPLite(id, seed, queueCap)
	},
}

// New builds the RouterLogic for the named protocol. It replaces the
// original simulator's directory-listing-based algorithm discovery with
// an explicit, statically known registry.
func New(name Name, id int, seed int64, queueCap int, logger *slog.Logger) (medium.RouterLogic, error) {
	factory, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("router: unknown algorithm %q (known: %v)", name, Names())
	}
	return factory(id, seed, queueCap, logger), nil
}

// Names returns every registered algorithm name, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, string(n))
	}
	sort.Strings(names)
	return names
}
