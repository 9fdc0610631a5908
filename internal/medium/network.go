package medium

import "sort"

// Network is the arena owning every Medium in a simulation run. Media
// reference each other by id rather than by direct pointer, so that
// rewiring a link (see the topology_shift scenario) is a matter of
// editing two id slices rather than juggling shared ownership.
type Network struct {
	media map[int]*Medium
	ids   []int
}

// NewNetwork returns an empty arena.
func NewNetwork() *Network {
	return &Network{media: make(map[int]*Medium)}
}

// Add registers m under its own id. It panics on a duplicate id, since
// topology loading assigns ids up front and a collision is a loader bug,
// not a runtime condition callers should need to handle.
func (n *Network) Add(m *Medium) {
	if _, exists := n.media[m.ID]; exists {
		panic("medium: duplicate id registered in network")
	}
	n.media[m.ID] = m
	n.ids = append(n.ids, m.ID)
	sort.Ints(n.ids)
}

// Lookup returns the medium with the given id, if any.
func (n *Network) Lookup(id int) (*Medium, bool) {
	m, ok := n.media[id]
	return m, ok
}

// MustLookup is Lookup for callers that have already validated id exists
// (e.g. iterating Media()); it panics otherwise.
func (n *Network) MustLookup(id int) *Medium {
	m, ok := n.media[id]
	if !ok {
		panic("medium: lookup of unregistered id")
	}
	return m
}

// Media returns every registered medium, ordered by ascending id. This is
// the iteration order the simulation driver uses each tick, so that a run
// is reproducible independent of map iteration order.
func (n *Network) Media() []*Medium {
	out := make([]*Medium, len(n.ids))
	for i, id := range n.ids {
		out[i] = n.media[id]
	}
	return out
}

// Len returns the number of registered media.
func (n *Network) Len() int {
	return len(n.ids)
}
