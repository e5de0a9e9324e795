package routing

import da "github.com/lintang-b-s/streetscan/pkg/datastructure"

// VertexInfo is the settled label of a vertex in an upward search. parent is
// the contracted edge the vertex was reached by.
type VertexInfo struct {
	dist   float64
	parent da.Index
}

func NewVertexInfo(dist float64, parent da.Index) VertexInfo {
	return VertexInfo{dist: dist, parent: parent}
}

func (vi VertexInfo) GetDist() float64 {
	return vi.dist
}

func (vi VertexInfo) GetParent() da.Index {
	return vi.parent
}

// SearchSpace holds every vertex settled by a full upward search.
type SearchSpace struct {
	root    da.Index
	forward bool
	info    map[da.Index]VertexInfo
}

func (ss *SearchSpace) GetRoot() da.Index {
	return ss.root
}

func (ss *SearchSpace) Get(v da.Index) (VertexInfo, bool) {
	vi, ok := ss.info[v]
	return vi, ok
}

func (ss *SearchSpace) Size() int {
	return len(ss.info)
}
