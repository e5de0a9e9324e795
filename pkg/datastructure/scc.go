package datastructure

// RunKosaraju. runs kosaraju's algorithm and returns the strongly connected
// component of every vertex. Components are numbered in discovery order of
// the second pass.
func (g *Graph) RunKosaraju() []Index {
	n := g.NumberOfVertices()

	order := make([]Index, 0, n)
	visited := make([]bool, n)
	for v := 0; v < n; v++ {
		if !visited[v] {
			g.dfsFinishOrder(Index(v), visited, &order)
		}
	}

	// reversed adjacency, in CSR form
	firstIn := make([]Index, n+1)
	g.ForEdges(func(e *Edge) {
		firstIn[e.head+1]++
	})
	for v := 1; v <= n; v++ {
		firstIn[v] += firstIn[v-1]
	}
	tails := make([]Index, g.NumberOfEdges())
	pos := make([]Index, n)
	copy(pos, firstIn[:n])
	g.ForEdges(func(e *Edge) {
		tails[pos[e.head]] = e.tail
		pos[e.head]++
	})

	sccs := make([]Index, n)
	for i := range sccs {
		sccs[i] = INVALID_INDEX
	}
	component := Index(0)
	stack := make([]Index, 0)
	for i := len(order) - 1; i >= 0; i-- {
		root := order[i]
		if sccs[root] != INVALID_INDEX {
			continue
		}
		sccs[root] = component
		stack = append(stack[:0], root)
		for len(stack) > 0 {
			u := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			for j := firstIn[u]; j < firstIn[u+1]; j++ {
				w := tails[j]
				if sccs[w] == INVALID_INDEX {
					sccs[w] = component
					stack = append(stack, w)
				}
			}
		}
		component++
	}
	return sccs
}

type dfsFrame struct {
	v    Index
	next Index
}

// dfsFinishOrder appends vertices reachable from s in post order.
func (g *Graph) dfsFinishOrder(s Index, visited []bool, order *[]Index) {
	visited[s] = true
	stack := []dfsFrame{{v: s, next: g.vertices[s].firstOut}}
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		end := g.vertices[top.v+1].firstOut
		pushed := false
		for top.next < end {
			head := g.edges[top.next].head
			top.next++
			if !visited[head] {
				visited[head] = true
				stack = append(stack, dfsFrame{v: head, next: g.vertices[head].firstOut})
				pushed = true
				break
			}
		}
		if !pushed {
			*order = append(*order, top.v)
			stack = stack[:len(stack)-1]
		}
	}
}

// LargestComponent flags the vertices of the biggest strongly connected
// component. Ties go to the lower component number.
func (g *Graph) LargestComponent() []bool {
	sccs := g.RunKosaraju()
	sizes := make(map[Index]int)
	for _, c := range sccs {
		sizes[c]++
	}
	best := INVALID_INDEX
	for c, size := range sizes {
		if best == INVALID_INDEX || size > sizes[best] || (size == sizes[best] && c < best) {
			best = c
		}
	}
	inLargest := make([]bool, len(sccs))
	for v, c := range sccs {
		inLargest[v] = c == best
	}
	return inLargest
}
