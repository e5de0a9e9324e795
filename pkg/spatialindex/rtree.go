package spatialindex

import (
	"math"

	"github.com/lintang-b-s/streetscan/pkg/datastructure"
	"github.com/lintang-b-s/streetscan/pkg/geo"
	"github.com/tidwall/rtree"
	"go.uber.org/zap"
)

type Rtree struct {
	tr    *rtree.RTreeG[datastructure.Index]
	graph *datastructure.Graph
}

func NewRtree() *Rtree {
	var tr rtree.RTreeG[datastructure.Index]
	return &Rtree{
		tr: &tr,
	}
}

// Build. indexes the bounding box of every edge geometry whose endpoints
// both lie in the largest strongly connected component, so that any two
// snapped locations can reach each other.
func (rt *Rtree) Build(graph *datastructure.Graph, log *zap.Logger) {
	log.Info("Building R-tree spatial index...")
	rt.graph = graph
	inLargest := graph.LargestComponent()

	count := 0
	graph.ForEdges(func(e *datastructure.Edge) {
		if !inLargest[e.GetTail()] || !inLargest[e.GetHead()] {
			return
		}
		minLat, minLon := math.Inf(1), math.Inf(1)
		maxLat, maxLon := math.Inf(-1), math.Inf(-1)
		for _, p := range rt.edgePoints(e) {
			minLat = math.Min(minLat, p.Lat)
			minLon = math.Min(minLon, p.Lon)
			maxLat = math.Max(maxLat, p.Lat)
			maxLon = math.Max(maxLon, p.Lon)
		}
		rt.tr.Insert([2]float64{minLon, minLat}, [2]float64{maxLon, maxLat}, e.GetEdgeId())
		count++
	})

	log.Info("R-tree spatial index built.", zap.Int("edges", count))
}

func (rt *Rtree) edgePoints(e *datastructure.Edge) []geo.Coordinate {
	points := rt.graph.GetEdgeGeometry(e.GetEdgeId())
	if len(points) >= 2 {
		return points
	}
	tLat, tLon := rt.graph.GetVertexCoordinates(e.GetTail())
	hLat, hLon := rt.graph.GetVertexCoordinates(e.GetHead())
	return []geo.Coordinate{geo.NewCoordinate(tLat, tLon), geo.NewCoordinate(hLat, hLon)}
}

// SearchWithinRadius returns the ids of edges whose bounding box intersects
// the square of half side radius (in meters) around (qLat, qLon).
func (rt *Rtree) SearchWithinRadius(qLat, qLon, radius float64) []datastructure.Index {
	radiusKm := radius / 1000
	maxLat, _ := geo.GetDestinationPoint(qLat, qLon, 0, radiusKm)
	minLat, _ := geo.GetDestinationPoint(qLat, qLon, 180, radiusKm)
	_, maxLon := geo.GetDestinationPoint(qLat, qLon, 90, radiusKm)
	_, minLon := geo.GetDestinationPoint(qLat, qLon, 270, radiusKm)

	results := make([]datastructure.Index, 0, 10)
	rt.tr.Search([2]float64{minLon, minLat}, [2]float64{maxLon, maxLat},
		func(_, _ [2]float64, data datastructure.Index) bool {
			results = append(results, data)
			return true
		})
	return results
}

// SnapResult is a location mapped onto the road network.
type SnapResult struct {
	Edge     datastructure.Index
	Vertex   datastructure.Index
	Distance float64 // meters from the query point to the edge
}

// Snap maps (qLat, qLon) to the nearest indexed edge within radius meters and
// picks the endpoint of that edge closest to the projected point. ok is false
// when no edge is close enough.
func (rt *Rtree) Snap(qLat, qLon, radius float64) (SnapResult, bool) {
	q := geo.NewCoordinate(qLat, qLon)
	best := SnapResult{Edge: datastructure.INVALID_INDEX, Vertex: datastructure.INVALID_INDEX, Distance: math.Inf(1)}
	var bestProjection geo.Coordinate

	for _, id := range rt.SearchWithinRadius(qLat, qLon, radius) {
		e := rt.graph.GetEdge(id)
		points := rt.edgePoints(e)
		for i := 1; i < len(points); i++ {
			proj := geo.ProjectPointToLineCoord(points[i-1], points[i], q)
			d := geo.DistanceMeters(q, proj)
			if d < best.Distance || (d == best.Distance && id < best.Edge) {
				best.Distance = d
				best.Edge = id
				bestProjection = proj
			}
		}
	}
	if best.Edge == datastructure.INVALID_INDEX || best.Distance > radius {
		return best, false
	}

	e := rt.graph.GetEdge(best.Edge)
	tLat, tLon := rt.graph.GetVertexCoordinates(e.GetTail())
	hLat, hLon := rt.graph.GetVertexCoordinates(e.GetHead())
	if geo.DistanceMeters(bestProjection, geo.NewCoordinate(tLat, tLon)) <=
		geo.DistanceMeters(bestProjection, geo.NewCoordinate(hLat, hLon)) {
		best.Vertex = e.GetTail()
	} else {
		best.Vertex = e.GetHead()
	}
	return best, true
}
