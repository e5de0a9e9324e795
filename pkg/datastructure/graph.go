package datastructure

import (
	"sort"

	"github.com/lintang-b-s/streetscan/pkg/geo"
)

type Index uint32

const INVALID_INDEX = ^Index(0)

type Vertex struct {
	lat      float64
	lon      float64
	firstOut Index // index of the first outEdge of this vertex in graph.edges
	id       Index
	osmId    int64
}

func NewVertex(lat, lon float64, id Index, osmId int64) Vertex {
	return Vertex{
		lat:   lat,
		lon:   lon,
		id:    id,
		osmId: osmId,
	}
}

func (v *Vertex) GetID() Index {
	return v.id
}

func (v *Vertex) GetLat() float64 {
	return v.lat
}

func (v *Vertex) GetLon() float64 {
	return v.lon
}

func (v *Vertex) GetOsmID() int64 {
	return v.osmId
}

func (v *Vertex) GetFirstOut() Index {
	return v.firstOut
}

// Edge is one directed road segment between two junctions. dist is in meters,
// travelTime in seconds. The segment geometry is points[startPointsIndex:endPointsIndex]
// of the owning graph, ordered from tail to head.
type Edge struct {
	edgeId           Index
	tail             Index
	head             Index
	dist             float64
	travelTime       float64
	roadClass        uint8
	startPointsIndex Index
	endPointsIndex   Index
}

func NewEdge(tail, head Index, dist, travelTime float64, roadClass uint8, startPointsIndex, endPointsIndex Index) Edge {
	return Edge{
		tail:             tail,
		head:             head,
		dist:             dist,
		travelTime:       travelTime,
		roadClass:        roadClass,
		startPointsIndex: startPointsIndex,
		endPointsIndex:   endPointsIndex,
	}
}

func (e *Edge) GetEdgeId() Index {
	return e.edgeId
}

func (e *Edge) GetTail() Index {
	return e.tail
}

func (e *Edge) GetHead() Index {
	return e.head
}

func (e *Edge) GetDist() float64 {
	return e.dist
}

func (e *Edge) GetTravelTime() float64 {
	return e.travelTime
}

func (e *Edge) GetRoadClass() uint8 {
	return e.roadClass
}

func (e *Edge) GetPointsRange() (Index, Index) {
	return e.startPointsIndex, e.endPointsIndex
}

// Graph is a directed road graph in compressed sparse row form: the out edges
// of vertex v are edges[vertices[v].firstOut:vertices[v+1].firstOut]. The last
// vertex is a sentinel.
type Graph struct {
	vertices    []Vertex
	edges       []Edge
	points      []geo.Coordinate
	roadClasses []string
}

// NewGraph sorts edges by tail, assigns edge ids in that order and builds the
// first-out offsets.
func NewGraph(vertices []Vertex, edges []Edge, points []geo.Coordinate, roadClasses []string) *Graph {
	sort.SliceStable(edges, func(i, j int) bool {
		return edges[i].tail < edges[j].tail
	})

	numV := len(vertices)
	vs := make([]Vertex, numV+1)
	copy(vs, vertices)
	vs[numV] = NewVertex(0, 0, Index(numV), -1)

	e := 0
	for v := 0; v <= numV; v++ {
		vs[v].firstOut = Index(e)
		for e < len(edges) && int(edges[e].tail) == v {
			edges[e].edgeId = Index(e)
			e++
		}
	}

	return &Graph{
		vertices:    vs,
		edges:       edges,
		points:      points,
		roadClasses: roadClasses,
	}
}

func (g *Graph) NumberOfVertices() int {
	return len(g.vertices) - 1
}

func (g *Graph) NumberOfEdges() int {
	return len(g.edges)
}

func (g *Graph) GetVertex(v Index) *Vertex {
	return &g.vertices[v]
}

func (g *Graph) GetVertexCoordinates(v Index) (float64, float64) {
	return g.vertices[v].lat, g.vertices[v].lon
}

func (g *Graph) GetEdge(e Index) *Edge {
	return &g.edges[e]
}

func (g *Graph) GetRoadClass(e Index) string {
	rc := g.edges[e].roadClass
	if int(rc) >= len(g.roadClasses) {
		return ""
	}
	return g.roadClasses[rc]
}

func (g *Graph) GetRoadClasses() []string {
	return g.roadClasses
}

// GetEdgeGeometry returns the polyline of edge e from tail to head.
func (g *Graph) GetEdgeGeometry(e Index) []geo.Coordinate {
	start, end := g.edges[e].GetPointsRange()
	return g.points[start:end]
}

func (g *Graph) ForOutEdgesOf(u Index, handle func(e *Edge)) {
	for i := g.vertices[u].firstOut; i < g.vertices[u+1].firstOut; i++ {
		handle(&g.edges[i])
	}
}

func (g *Graph) ForEdges(handle func(e *Edge)) {
	for i := range g.edges {
		handle(&g.edges[i])
	}
}
