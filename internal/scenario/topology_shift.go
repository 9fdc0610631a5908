package scenario

import (
	"math/rand"

	"github.com/trevorKirkby/network-routing-simulation/internal/medium"
)

// TopologyShift periodically rewires a random link medium onto a fresh
// pair of routers, detaching it from its previous endpoints.
type TopologyShift struct {
	rng       *rand.Rand
	interval  int
	counter   int
	linkIDs   []int
	routerIDs []int
}

// NewTopologyShift builds a TopologyShift scenario. The interval between
// rewirings is computed from the number of plain (non-router) media, the
// only ones eligible to be picked as the link being rewired.
func NewTopologyShift(net *medium.Network, duration int, seed int64) *TopologyShift {
	var links, routers []int
	for _, m := range net.Media() {
		if m.IsRouter() {
			routers = append(routers, m.ID)
		} else {
			links = append(links, m.ID)
		}
	}
	iv := interval(len(links), duration)
	return &TopologyShift{
		rng:       rand.New(rand.NewSource(seed)), //nolint:gosec // reproducibility, not security.
		interval:  iv,
		counter:   iv,
		linkIDs:   links,
		routerIDs: routers,
	}
}

func (s *TopologyShift) Tick(net *medium.Network, _ int) {
	s.counter--
	if s.counter > 0 {
		return
	}
	s.counter = s.interval

	if len(s.linkIDs) == 0 || len(s.routerIDs) < 2 {
		return
	}

	link := net.MustLookup(s.linkIDs[s.rng.Intn(len(s.linkIDs))])

	sourceID := s.routerIDs[s.rng.Intn(len(s.routerIDs))]
	targetID := sourceID
	for targetID == sourceID {
		targetID = s.routerIDs[s.rng.Intn(len(s.routerIDs))]
	}
	source := net.MustLookup(sourceID)
	target := net.MustLookup(targetID)

	for _, oldID := range link.Connections {
		if old, ok := net.Lookup(oldID); ok {
			old.Connections = removeID(old.Connections, link.ID)
		}
	}
	link.Connections = []int{source.ID, target.ID}
	source.Connections = append(source.Connections, link.ID)
	target.Connections = append(target.Connections, link.ID)
}

func removeID(ids []int, target int) []int {
	out := ids[:0]
	for _, id := range ids {
		if id != target {
			out = append(out, id)
		}
	}
	return out
}
