package routing

import (
	"context"
	"math"
	"runtime"

	da "github.com/lintang-b-s/streetscan/pkg/datastructure"
	"github.com/lintang-b-s/streetscan/pkg/geo"
	"golang.org/x/sync/errgroup"
)

// Leg summarizes the shortest path between two locations. DepartBearing is
// the heading of its first road edge, ArriveBearing the heading of the last,
// both NaN for an empty leg.
type Leg struct {
	Weight        float64
	DepartBearing float64
	ArriveBearing float64
	Found         bool
}

// ManyToMany computes the legs between all pairs of vertices. The upward
// searches of every vertex run concurrently.
func (re *ChRoutingEngine) ManyToMany(ctx context.Context, vertices []da.Index) ([][]Leg, error) {
	n := len(vertices)
	fwd := make([]*SearchSpace, n)
	bwd := make([]*SearchSpace, n)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, v := range vertices {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			fwd[i] = re.UpwardSearch(v, true)
			bwd[i] = re.UpwardSearch(v, false)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	legs := make([][]Leg, n)
	for i := range vertices {
		legs[i] = make([]Leg, n)
		for j := range vertices {
			legs[i][j] = re.leg(fwd[i], bwd[j])
		}
	}
	return legs, nil
}

func (re *ChRoutingEngine) leg(fwd, bwd *SearchSpace) Leg {
	leg := Leg{
		Weight:        math.Inf(1),
		DepartBearing: math.NaN(),
		ArriveBearing: math.NaN(),
	}
	if fwd.root == bwd.root {
		leg.Weight = 0
		leg.Found = true
		return leg
	}

	m, weight, ok := meet(fwd, bwd)
	if !ok {
		return leg
	}
	leg.Weight = weight
	leg.Found = true

	path := re.contractedPath(fwd, bwd, m)
	if len(path) == 0 {
		return leg
	}
	leg.DepartBearing = re.edgeBearing(re.firstRoadEdge(path[0]), true)
	leg.ArriveBearing = re.edgeBearing(re.lastRoadEdge(path[len(path)-1]), false)
	return leg
}

// edgeBearing is the heading of a road edge at its tail (start) or head.
func (re *ChRoutingEngine) edgeBearing(e da.Index, start bool) float64 {
	points := re.graph.GetEdgeGeometry(e)
	if len(points) < 2 {
		tail := re.graph.GetEdge(e).GetTail()
		head := re.graph.GetEdge(e).GetHead()
		tLat, tLon := re.graph.GetVertexCoordinates(tail)
		hLat, hLon := re.graph.GetVertexCoordinates(head)
		return geo.BearingTo(tLat, tLon, hLat, hLon)
	}
	if start {
		return geo.BearingTo(points[0].Lat, points[0].Lon, points[1].Lat, points[1].Lon)
	}
	k := len(points)
	return geo.BearingTo(points[k-2].Lat, points[k-2].Lon, points[k-1].Lat, points[k-1].Lon)
}
