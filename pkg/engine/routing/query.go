package routing

import (
	"math"

	da "github.com/lintang-b-s/streetscan/pkg/datastructure"
)

// UpwardSearch runs a dijkstra from root that only relaxes edges towards
// higher ranked vertices. The forward search follows edges out of root, the
// backward search follows them into it.
func (re *ChRoutingEngine) UpwardSearch(root da.Index, forward bool) *SearchSpace {
	ss := &SearchSpace{
		root:    root,
		forward: forward,
		info:    make(map[da.Index]VertexInfo),
	}

	dist := map[da.Index]float64{root: 0}
	parent := map[da.Index]da.Index{root: da.INVALID_INDEX}
	pq := da.NewFourAryHeap[da.Index]()
	pq.Insert(da.NewPriorityQueueNode(0, root))

	for !pq.IsEmpty() {
		top, _ := pq.ExtractMin()
		u := top.GetItem()
		if _, settled := ss.info[u]; settled || top.GetRank() > dist[u] {
			continue
		}
		ss.info[u] = NewVertexInfo(top.GetRank(), parent[u])

		relax := func(id da.Index, next da.Index, weight float64) {
			nd := top.GetRank() + weight
			if d, ok := dist[next]; !ok || nd < d {
				dist[next] = nd
				parent[next] = id
				pq.Insert(da.NewPriorityQueueNode(nd, next))
			}
		}
		if forward {
			re.cg.ForUpwardOutEdges(u, func(id da.Index, e *da.ShortcutEdge) {
				relax(id, e.GetTo(), e.GetWeight())
			})
		} else {
			re.cg.ForUpwardInEdges(u, func(id da.Index, e *da.ShortcutEdge) {
				relax(id, e.GetFrom(), e.GetWeight())
			})
		}
	}
	return ss
}

// meet returns the vertex minimizing the forward plus backward distance.
func meet(fwd, bwd *SearchSpace) (da.Index, float64, bool) {
	small, large := fwd, bwd
	if bwd.Size() < fwd.Size() {
		small, large = bwd, fwd
	}

	best := math.Inf(1)
	bestV := da.INVALID_INDEX
	for v, a := range small.info {
		b, ok := large.info[v]
		if !ok {
			continue
		}
		if d := a.dist + b.dist; d < best || (d == best && v < bestV) {
			best = d
			bestV = v
		}
	}
	return bestV, best, bestV != da.INVALID_INDEX
}

// contractedPath returns the contracted edges from the forward root to the
// backward root through m.
func (re *ChRoutingEngine) contractedPath(fwd, bwd *SearchSpace, m da.Index) []da.Index {
	path := make([]da.Index, 0)
	for v := m; ; {
		vi := fwd.info[v]
		if vi.parent == da.INVALID_INDEX {
			break
		}
		path = append(path, vi.parent)
		v = re.cg.GetEdge(vi.parent).GetFrom()
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}

	for v := m; ; {
		vi := bwd.info[v]
		if vi.parent == da.INVALID_INDEX {
			break
		}
		path = append(path, vi.parent)
		v = re.cg.GetEdge(vi.parent).GetTo()
	}
	return path
}

// Path is a shortest path as a sequence of road edges. Weight is in the
// profile metric, Dist in meters and Time in seconds.
type Path struct {
	Source da.Index
	Target da.Index
	Weight float64
	Dist   float64
	Time   float64
	Edges  []da.Index
}

// ShortestPath. bidirectional upward search from s and t. ok is false when t
// is not reachable from s.
func (re *ChRoutingEngine) ShortestPath(s, t da.Index) (Path, bool) {
	return re.pathBetween(re.UpwardSearch(s, true), re.UpwardSearch(t, false))
}

func (re *ChRoutingEngine) pathBetween(fwd, bwd *SearchSpace) (Path, bool) {
	path := Path{Source: fwd.root, Target: bwd.root, Edges: make([]da.Index, 0)}
	if fwd.root == bwd.root {
		return path, true
	}

	m, weight, ok := meet(fwd, bwd)
	if !ok {
		return path, false
	}
	path.Weight = weight

	for _, ce := range re.contractedPath(fwd, bwd, m) {
		path.Edges = append(path.Edges, re.unpackEdge(ce)...)
	}
	for _, e := range path.Edges {
		edge := re.graph.GetEdge(e)
		path.Dist += edge.GetDist()
		path.Time += edge.GetTravelTime()
	}
	return path, true
}
