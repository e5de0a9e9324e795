package datastructure

// ShortcutEdge is an edge of the contracted graph. Original edges reference
// the road edge they were built from through origEdge; shortcuts bridge a
// contracted vertex and point at the two edges they replace.
type ShortcutEdge struct {
	from     Index
	to       Index
	weight   float64
	child1   int32
	child2   int32
	origEdge int32
}

func NewOriginalEdge(from, to Index, weight float64, origEdge Index) ShortcutEdge {
	return ShortcutEdge{from: from, to: to, weight: weight, child1: -1, child2: -1, origEdge: int32(origEdge)}
}

func NewShortcutEdge(from, to Index, weight float64, child1, child2 Index) ShortcutEdge {
	return ShortcutEdge{from: from, to: to, weight: weight, child1: int32(child1), child2: int32(child2), origEdge: -1}
}

func (e *ShortcutEdge) GetFrom() Index {
	return e.from
}

func (e *ShortcutEdge) GetTo() Index {
	return e.to
}

func (e *ShortcutEdge) GetWeight() float64 {
	return e.weight
}

func (e *ShortcutEdge) IsShortcut() bool {
	return e.origEdge < 0
}

func (e *ShortcutEdge) GetChildren() (Index, Index) {
	return Index(e.child1), Index(e.child2)
}

func (e *ShortcutEdge) GetOrigEdge() Index {
	return Index(e.origEdge)
}

// ContractedGraph is the fast-query index of one profile: a contraction
// order plus original and shortcut edges. Searches only relax edges towards
// higher ranked vertices; forward search uses upOut, backward search upIn.
type ContractedGraph struct {
	rank  []Index
	edges []ShortcutEdge

	firstUpOut []Index
	upOut      []Index
	firstUpIn  []Index
	upIn       []Index
}

func NewContractedGraph(rank []Index, edges []ShortcutEdge) *ContractedGraph {
	cg := &ContractedGraph{
		rank:  rank,
		edges: edges,
	}
	cg.buildUpwardLists()
	return cg
}

func (cg *ContractedGraph) buildUpwardLists() {
	n := len(cg.rank)
	outCount := make([]Index, n+1)
	inCount := make([]Index, n+1)
	for i := range cg.edges {
		e := &cg.edges[i]
		if cg.rank[e.to] > cg.rank[e.from] {
			outCount[e.from+1]++
		} else {
			inCount[e.to+1]++
		}
	}
	for v := 1; v <= n; v++ {
		outCount[v] += outCount[v-1]
		inCount[v] += inCount[v-1]
	}
	cg.firstUpOut = outCount
	cg.firstUpIn = inCount
	cg.upOut = make([]Index, outCount[n])
	cg.upIn = make([]Index, inCount[n])

	outPos := make([]Index, n)
	inPos := make([]Index, n)
	copy(outPos, outCount[:n])
	copy(inPos, inCount[:n])
	for i := range cg.edges {
		e := &cg.edges[i]
		if cg.rank[e.to] > cg.rank[e.from] {
			cg.upOut[outPos[e.from]] = Index(i)
			outPos[e.from]++
		} else {
			cg.upIn[inPos[e.to]] = Index(i)
			inPos[e.to]++
		}
	}
}

func (cg *ContractedGraph) NumberOfVertices() int {
	return len(cg.rank)
}

func (cg *ContractedGraph) NumberOfEdges() int {
	return len(cg.edges)
}

func (cg *ContractedGraph) GetRank(v Index) Index {
	return cg.rank[v]
}

func (cg *ContractedGraph) GetEdge(e Index) *ShortcutEdge {
	return &cg.edges[e]
}

// ForUpwardOutEdges visits edges u->w with rank(w) > rank(u).
func (cg *ContractedGraph) ForUpwardOutEdges(u Index, handle func(id Index, e *ShortcutEdge)) {
	for i := cg.firstUpOut[u]; i < cg.firstUpOut[u+1]; i++ {
		id := cg.upOut[i]
		handle(id, &cg.edges[id])
	}
}

// ForUpwardInEdges visits edges w->u with rank(w) > rank(u).
func (cg *ContractedGraph) ForUpwardInEdges(u Index, handle func(id Index, e *ShortcutEdge)) {
	for i := cg.firstUpIn[u]; i < cg.firstUpIn[u+1]; i++ {
		id := cg.upIn[i]
		handle(id, &cg.edges[id])
	}
}
