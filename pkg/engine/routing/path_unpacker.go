package routing

import (
	da "github.com/lintang-b-s/streetscan/pkg/datastructure"
)

// unpackEdge expands a contracted edge into the road edges it stands for.
func (re *ChRoutingEngine) unpackEdge(id da.Index) []da.Index {
	e := re.cg.GetEdge(id)
	if !e.IsShortcut() {
		return []da.Index{e.GetOrigEdge()}
	}

	// github.com/hashicorp/golang-lru/v2 is thread-safe
	if cached, ok := re.puCache.Get(id); ok {
		return cached
	}

	c1, c2 := e.GetChildren()
	first := re.unpackEdge(c1)
	second := re.unpackEdge(c2)
	unpacked := make([]da.Index, 0, len(first)+len(second))
	unpacked = append(unpacked, first...)
	unpacked = append(unpacked, second...)

	re.puCache.Add(id, unpacked)
	return unpacked
}

// firstRoadEdge is the first road edge of a contracted edge.
func (re *ChRoutingEngine) firstRoadEdge(id da.Index) da.Index {
	e := re.cg.GetEdge(id)
	for e.IsShortcut() {
		c1, _ := e.GetChildren()
		e = re.cg.GetEdge(c1)
	}
	return e.GetOrigEdge()
}

// lastRoadEdge is the last road edge of a contracted edge.
func (re *ChRoutingEngine) lastRoadEdge(id da.Index) da.Index {
	e := re.cg.GetEdge(id)
	for e.IsShortcut() {
		_, c2 := e.GetChildren()
		e = re.cg.GetEdge(c2)
	}
	return e.GetOrigEdge()
}
